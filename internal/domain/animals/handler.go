package animals

import (
	"net/http"
	"strconv"
	"strings"

	"far-fetched/internal/domain/preferences"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", searchAnimalsHandler(svc))
		ar.Get("/top", topResultsHandler(svc))
		ar.Get("/org-counts", orgCountsHandler(svc))
	})

	r.Get("/organizations", organizationsHandler(svc))
}

type searchResponse struct {
	Count   int      `json:"count"`
	Animals []Animal `json:"animals"`
}

// searchInputFromQuery arma los overrides desde la query string;
// lo que no venga se resuelve por preferencias en el service.
func searchInputFromQuery(r *http.Request) SearchInput {
	q := r.URL.Query()

	in := SearchInput{
		Location: q.Get("location"),
		Country:  q.Get("country"),
		State:    q.Get("state"),
		Sort:     q.Get("sort"),
	}
	if t := strings.TrimSpace(q.Get("type")); t != "" {
		in.Types = strings.Split(t, ",")
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		in.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		in.Page = n
	}
	return in
}

func searchAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := preferences.VisitorFromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		records, err := svc.Search(r.Context(), visitor, searchInputFromQuery(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, searchResponse{Count: len(records), Animals: records})
	}
}

func topResultsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := preferences.VisitorFromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		top, err := svc.TopResults(r.Context(), visitor, searchInputFromQuery(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, top)
	}
}

func orgCountsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := preferences.VisitorFromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		counts, err := svc.OrgCounts(r.Context(), visitor, searchInputFromQuery(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{"organizations": counts})
	}
}

func organizationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor, ok := preferences.VisitorFromContext(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ids, err := svc.Organizations(r.Context(), visitor)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]any{"organizations": ids})
	}
}
