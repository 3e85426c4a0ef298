package petfinder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"far-fetched/internal/platform/httpclient"
)

// margen antes del expiry real para no usar un token al borde
const tokenSlack = 30 * time.Second

// tokenSource maneja el token OAuth2 client-credentials de Petfinder:
// lo pide a /oauth2/token, lo cachea hasta cerca del expiry y lo
// refresca bajo mutex (el server HTTP es concurrente).
type tokenSource struct {
	mu sync.Mutex

	http   *httpclient.Client
	key    string
	secret string

	token   string
	expires time.Time
	now     func() time.Time
}

func newTokenSource(baseURL, key, secret string, timeout time.Duration) *tokenSource {
	hc, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		hc = httpclient.New(timeout)
	}
	return &tokenSource{
		http:   hc,
		key:    strings.TrimSpace(key),
		secret: strings.TrimSpace(secret),
		now:    time.Now,
	}
}

func (t *tokenSource) configured() bool {
	return t != nil && t.key != "" && t.secret != ""
}

// Token devuelve un access token vigente, refrescando si hace falta.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	if !t.configured() {
		return "", ErrNotConfigured
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expires.Add(-tokenSlack)) {
		return t.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.key)
	form.Set("client_secret", t.secret)

	var out struct {
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
		AccessToken string `json:"access_token"`
	}
	if err := t.http.DoForm(ctx, http.MethodPost, "/oauth2/token", nil, form, &out); err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("%w: token request: %v", ErrUpstream, err)
	}

	if strings.TrimSpace(out.AccessToken) == "" {
		return "", fmt.Errorf("%w: token response missing access_token", ErrUpstream)
	}

	t.token = out.AccessToken
	if out.ExpiresIn > 0 {
		t.expires = t.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	} else {
		t.expires = t.now().Add(time.Hour)
	}

	return t.token, nil
}

// invalidate fuerza refresh en el próximo Token().
func (t *tokenSource) invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
	t.expires = time.Time{}
}
