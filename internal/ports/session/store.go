package session

import (
	"context"
	"time"
)

// Store es un K/V efímero scoped por sesión de visitante.
// Los valores son strings (el dominio serializa lo que necesite).
type Store interface {
	// Get devuelve (valor, existe, error). Clave ausente no es error.
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID, key string) error
}
