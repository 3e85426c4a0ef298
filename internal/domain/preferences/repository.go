package preferences

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los adapters cuando el usuario no tiene
// preferencia persistida (distinto de un error duro de storage).
var ErrNotFound = errors.New("preference not found")

type Repository interface {
	GetLocation(ctx context.Context, userID string) (Location, error)
	SaveLocation(ctx context.Context, userID string, loc Location) error

	GetAnimalTypes(ctx context.Context, userID string) ([]string, error)
	SaveAnimalTypes(ctx context.Context, userID string, types []string) error
}
