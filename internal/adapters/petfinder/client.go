package petfinder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"far-fetched/internal/platform/env"
	"far-fetched/internal/ports/search"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

var (
	ErrNotConfigured = errors.New("petfinder client not configured")
	ErrUnauthorized  = errors.New("petfinder unauthorized")
	ErrUpstream      = errors.New("petfinder upstream error")
)

const (
	defaultBaseURL = "https://api.petfinder.com/v2"
	maxPayload     = 4 << 20 // 4MB guard
)

// Config del cliente Petfinder. Key/Secret normalmente salen de
// API_KEY / API_SECRET; BaseURL de PETFINDER_API_URL (tests la apuntan
// a un httptest.Server).
type Config struct {
	BaseURL string
	Key     string
	Secret  string

	Timeout time.Duration

	// Rate limit client-side para cuidar la cuota de la API.
	// Cero => defaults (5 req/s, burst 10).
	RequestsPerSecond float64
	Burst             int
}

// Client implementa search.Client contra la API Petfinder v2.
// Lleva retry con backoff (retryablehttp) y un token bucket propio
// además del token OAuth cacheado.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	limiter *rate.Limiter
	tokens  *tokenSource
}

var _ search.Client = (*Client)(nil)

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	// la URL puede venir sin esquema por env
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}

	return &Client{
		baseURL: base,
		http:    rc,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		tokens:  newTokenSource(base, cfg.Key, cfg.Secret, timeout),
	}
}

// NewFromEnv arma el cliente desde env (API_KEY, API_SECRET, PETFINDER_API_URL).
func NewFromEnv() *Client {
	return NewClient(Config{
		BaseURL: env.Get("PETFINDER_API_URL", defaultBaseURL),
		Key:     env.Get("API_KEY", ""),
		Secret:  env.Get("API_SECRET", ""),
	})
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.tokens.configured()
}

// SearchAnimals llama GET /animals con los parámetros resueltos.
// La API acepta un solo type por request: mandamos type solo si hay
// exactamente uno; el filtrado multi-especie es client-side en el dominio.
func (c *Client) SearchAnimals(ctx context.Context, q search.AnimalQuery) ([]byte, error) {
	params := url.Values{}
	if q.Location != "" {
		params.Set("location", q.Location)
		if q.Sort != "" {
			params.Set("sort", q.Sort) // sort=distance solo vale con location
		}
	}
	if len(q.Types) == 1 {
		params.Set("type", q.Types[0])
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	return c.get(ctx, "/animals", params)
}

// SearchOrganizations llama GET /organizations cerca de la ubicación.
func (c *Client) SearchOrganizations(ctx context.Context, q search.OrganizationQuery) ([]byte, error) {
	params := url.Values{}
	if q.Location != "" {
		params.Set("location", q.Location)
		if q.Sort != "" {
			params.Set("sort", q.Sort)
		}
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	return c.get(ctx, "/organizations", params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// token vencido o revocado: invalidar para refrescar en el próximo call
		c.tokens.invalidate()
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	return readAllLimit(resp.Body, maxPayload)
}

func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitReader(r, limit+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: payload too large", ErrUpstream)
	}
	return b, nil
}
