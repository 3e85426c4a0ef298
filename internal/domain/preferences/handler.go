package preferences

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/preferences", func(pr chi.Router) {
		pr.Get("/{key}", getPreferenceHandler(svc))
		pr.Put("/", updatePreferencesHandler(svc))
	})
}

type preferenceResponse struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

type updatePreferencesRequest struct {
	Location    string   `json:"location"`
	State       string   `json:"state"`
	Country     string   `json:"country"`
	AnimalTypes []string `json:"animal_types"`
}

func getPreferenceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := VisitorFromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		key, err := ParseKey(chi.URLParam(r, "key"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		val, err := svc.Resolve(r.Context(), visitor, key)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, preferenceResponse{Key: string(key), Value: val})
	}
}

// updatePreferencesHandler aplica en una sola pasada los campos presentes
// del form de preferencias (equivalente del form de búsqueda del sitio).
func updatePreferencesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := VisitorFromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var req updatePreferencesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// location compuesta primero: state/country sueltos la pisan después
		writes := []struct {
			key   Key
			value Value
			skip  bool
		}{
			{KeyLocation, TextValue(req.Location), req.Location == ""},
			{KeyState, TextValue(req.State), req.State == ""},
			{KeyCountry, TextValue(req.Country), req.Country == ""},
			{KeyAnimalTypes, ListValue(req.AnimalTypes), len(req.AnimalTypes) == 0},
		}

		wrote := false
		for _, wr := range writes {
			if wr.skip {
				continue
			}
			if err := svc.Write(r.Context(), visitor, wr.key, wr.value); err != nil {
				writeError(w, err)
				return
			}
			wrote = true
		}
		if !wrote {
			http.Error(w, "no preference fields provided", http.StatusBadRequest)
			return
		}

		// devolver el estado resuelto para que la UI refresque sin otro GET
		loc, _ := svc.Resolve(r.Context(), visitor, KeyLocation)
		types, _ := svc.Resolve(r.Context(), visitor, KeyAnimalTypes)

		render.JSON(w, r, map[string]Value{
			"location":     loc,
			"animal_types": types,
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPersistence):
		http.Error(w, "could not save preference", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
