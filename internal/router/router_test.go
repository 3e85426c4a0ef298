package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"far-fetched/internal/adapters/petfinder"
	memsess "far-fetched/internal/adapters/session/memory"
	"far-fetched/internal/router"
)

// fakePetfinderAPI simula la API externa: token OAuth + animales + orgs.
func fakePetfinderAPI(t *testing.T) *httptest.Server {
	t.Helper()

	recent := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02T15:04:05") + "+0000"
	old := time.Now().UTC().Add(-30 * 24 * time.Hour).Format("2006-01-02T15:04:05") + "+0000"

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token_type":   "Bearer",
			"expires_in":   3600,
			"access_token": "tok-test",
		})
	})
	mux.HandleFunc("/animals", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-test" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"animals": []map[string]any{
				{
					"id":              1,
					"organization_id": "ON100",
					"type":            "Dog",
					"name":            "Milo",
					"breeds":          map[string]any{"primary": "Husky", "mixed": true},
					"colors":          map[string]any{"primary": "Black"},
					"photos":          []map[string]any{{"full": "https://cdn.example.com/milo.jpg"}},
					"contact": map[string]any{
						"address": map[string]any{"city": "Toronto", "state": "ON", "country": "CA"},
					},
					"published_at": recent,
					"distance":     1.2,
				},
				{
					"id":              2,
					"organization_id": "ON100",
					"type":            "Dog",
					"name":            "Rex",
					"breeds":          map[string]any{"unknown": true},
					"published_at":    old,
					"distance":        50.0,
				},
			},
		})
	})
	mux.HandleFunc("/organizations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organizations": []map[string]any{
				{"id": "ON100", "name": "Toronto Rescue", "distance": 3.1},
				{"id": "ON200", "name": "GTA Shelter", "distance": 9.8},
			},
		})
	})
	return httptest.NewServer(mux)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	api := fakePetfinderAPI(t)
	t.Cleanup(api.Close)

	// sin DB_DSN el router cae solo al repo de preferencias in-memory
	h := router.NewRouter(router.Options{
		AuthVerifier: nil,
		Sessions:     memsess.New(),
		Search:       petfinder.NewClient(petfinder.Config{BaseURL: api.URL, Key: "k", Secret: "s"}),
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_AnonymousFlow(t *testing.T) {
	ts := newTestServer(t)
	client := newCookieClient(t)

	// 1) Health
	{
		st, _ := doReq(t, client, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 health, got %d", st)
		}
	}

	// 2) Preferencia por defecto (sin sesión previa ni env)
	{
		st, body := doReq(t, client, ts.URL, "GET", "/preferences/location", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get preference, got %d body=%s", st, string(body))
		}
		var resp struct {
			Key   string `json:"key"`
			Value struct {
				Text string `json:"text"`
			} `json:"value"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Value.Text != "Toronto,ON" {
			t.Fatalf("expected default location Toronto,ON, got %q", resp.Value.Text)
		}
	}

	// 3) Escritura anónima: animal_types se trunca a una especie
	{
		st, body := doReq(t, client, ts.URL, "PUT", "/preferences/", "", map[string]any{
			"animal_types": []string{"dog", "cat", "bird"},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update prefs, got %d body=%s", st, string(body))
		}
		var resp map[string]struct {
			List []string `json:"list"`
		}
		_ = json.Unmarshal(body, &resp)
		if got := resp["animal_types"].List; len(got) != 1 || got[0] != "dog" {
			t.Fatalf("expected truncated [dog], got %#v", got)
		}
	}

	// 4) Búsqueda: registros normalizados
	{
		st, body := doReq(t, client, ts.URL, "GET", "/animals", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 search, got %d body=%s", st, string(body))
		}
		var resp struct {
			Count   int `json:"count"`
			Animals []struct {
				ID       int64   `json:"id"`
				Breed    string  `json:"breed"`
				Color    string  `json:"color"`
				Photo    string  `json:"photo"`
				Distance float64 `json:"distance"`
			} `json:"animals"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Count != 2 || len(resp.Animals) != 2 {
			t.Fatalf("expected 2 animals, got %s", string(body))
		}
		if resp.Animals[0].Breed != "Husky Mix" {
			t.Fatalf("expected flattened breed Husky Mix, got %q", resp.Animals[0].Breed)
		}
		if resp.Animals[1].Breed != "Super Mutt" {
			t.Fatalf("expected Super Mutt for unknown breeds, got %q", resp.Animals[1].Breed)
		}
		if resp.Animals[1].Color != "Unknown Color" {
			t.Fatalf("expected Unknown Color default, got %q", resp.Animals[1].Color)
		}
		if resp.Animals[1].Photo != "/static/images/graphics/dog-freepik.png" {
			t.Fatalf("expected default dog graphic, got %q", resp.Animals[1].Photo)
		}
	}

	// 5) Top results: extremos por distancia y antigüedad
	{
		st, body := doReq(t, client, ts.URL, "GET", "/animals/top", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 top, got %d body=%s", st, string(body))
		}
		var top struct {
			Oldest struct {
				ID int64 `json:"id"`
			} `json:"oldest"`
			Closest struct {
				ID int64 `json:"id"`
			} `json:"closest"`
		}
		_ = json.Unmarshal(body, &top)
		if top.Oldest.ID != 2 {
			t.Fatalf("expected oldest id 2, got %d", top.Oldest.ID)
		}
		if top.Closest.ID != 1 {
			t.Fatalf("expected closest id 1, got %d", top.Closest.ID)
		}
	}

	// 6) Conteo por organización
	{
		st, body := doReq(t, client, ts.URL, "GET", "/animals/org-counts", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 org-counts, got %d body=%s", st, string(body))
		}
		var resp struct {
			Organizations []struct {
				OrganizationID string `json:"organization_id"`
				Count          int    `json:"count"`
			} `json:"organizations"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Organizations) != 1 || resp.Organizations[0].OrganizationID != "ON100" || resp.Organizations[0].Count != 2 {
			t.Fatalf("unexpected org counts: %s", string(body))
		}
	}

	// 7) Organizaciones cercanas
	{
		st, body := doReq(t, client, ts.URL, "GET", "/organizations", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 organizations, got %d body=%s", st, string(body))
		}
		var resp struct {
			Organizations []string `json:"organizations"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Organizations) != 2 || resp.Organizations[0] != "ON100" {
			t.Fatalf("unexpected organizations: %s", string(body))
		}
	}

	// 8) Key desconocida => 400
	{
		st, _ := doReq(t, client, ts.URL, "GET", "/preferences/favorite_color", "", nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown key, got %d", st)
		}
	}
}

func TestHTTP_AuthenticatedPreferences_SurviveRequests(t *testing.T) {
	ts := newTestServer(t)
	client := newCookieClient(t)

	userID := "user-1"

	// 1) Usuario escribe location y animal_types (modo dev via header)
	{
		st, body := doReq(t, client, ts.URL, "PUT", "/preferences/", userID, map[string]any{
			"location":     "Montreal,QC",
			"animal_types": []string{"cat", "bird"},
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update prefs, got %d body=%s", st, string(body))
		}
	}

	// 2) Cliente nuevo (sin cookie de sesión): las preferencias salen del store
	fresh := newCookieClient(t)
	{
		st, body := doReq(t, fresh, ts.URL, "GET", "/preferences/animal_types", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, string(body))
		}
		var resp struct {
			Value struct {
				List []string `json:"list"`
			} `json:"value"`
		}
		_ = json.Unmarshal(body, &resp)
		if got := resp.Value.List; len(got) != 2 || got[0] != "cat" || got[1] != "bird" {
			t.Fatalf("expected persisted [cat bird], got %#v", got)
		}
	}
	{
		st, body := doReq(t, fresh, ts.URL, "GET", "/preferences/location", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, string(body))
		}
		var resp struct {
			Value struct {
				Text string `json:"text"`
			} `json:"value"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Value.Text != "Montreal,QC" {
			t.Fatalf("expected persisted Montreal,QC, got %q", resp.Value.Text)
		}
	}

	// 3) Otro usuario no ve esas preferencias
	{
		st, body := doReq(t, newCookieClient(t), ts.URL, "GET", "/preferences/location", "user-2", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, string(body))
		}
		var resp struct {
			Value struct {
				Text string `json:"text"`
			} `json:"value"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Value.Text != "Toronto,ON" {
			t.Fatalf("expected defaults for other user, got %q", resp.Value.Text)
		}
	}
}

func TestHTTP_UpdatePreferences_RejectsBadInput(t *testing.T) {
	ts := newTestServer(t)
	client := newCookieClient(t)

	// especie desconocida => 400
	{
		st, _ := doReq(t, client, ts.URL, "PUT", "/preferences/", "", map[string]any{
			"animal_types": []string{"dragon"},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown species, got %d", st)
		}
	}

	// body sin campos => 400
	{
		st, _ := doReq(t, client, ts.URL, "PUT", "/preferences/", "", map[string]any{})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty update, got %d", st)
		}
	}
}

func newCookieClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doReq(t *testing.T, client *http.Client, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
