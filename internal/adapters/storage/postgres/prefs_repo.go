package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"far-fetched/internal/domain/preferences"
)

// PrefsRepo implementa preferences.Repository sobre Postgres.
// Una fila por usuario en user_locations y en user_animal_preferences;
// escrituras son upserts single-row, sin coordinación cross-row.
type PrefsRepo struct {
	db  *sql.DB
	now func() time.Time
}

var _ preferences.Repository = (*PrefsRepo)(nil)

func NewPrefsRepo(db *sql.DB) *PrefsRepo {
	return &PrefsRepo{db: db, now: time.Now}
}

func (r *PrefsRepo) GetLocation(ctx context.Context, userID string) (preferences.Location, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return preferences.Location{}, preferences.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT city, state, country
		FROM user_locations
		WHERE user_id = $1
	`, userID)

	var loc preferences.Location
	if err := row.Scan(&loc.City, &loc.State, &loc.Country); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return preferences.Location{}, preferences.ErrNotFound
		}
		return preferences.Location{}, err
	}
	return loc, nil
}

func (r *PrefsRepo) SaveLocation(ctx context.Context, userID string, loc preferences.Location) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_locations (user_id, city, state, country, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			country = EXCLUDED.country,
			updated_at = EXCLUDED.updated_at
	`, userID, loc.City, loc.State, loc.Country, r.now())
	return err
}

func (r *PrefsRepo) GetAnimalTypes(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, preferences.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT animal_types
		FROM user_animal_preferences
		WHERE user_id = $1
	`, userID)

	var joined string
	if err := row.Scan(&joined); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, preferences.ErrNotFound
		}
		return nil, err
	}
	return splitTypes(joined), nil
}

func (r *PrefsRepo) SaveAnimalTypes(ctx context.Context, userID string, types []string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_animal_preferences (user_id, animal_types, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			animal_types = EXCLUDED.animal_types,
			updated_at = EXCLUDED.updated_at
	`, userID, strings.Join(types, ","), r.now())
	return err
}

// animal_types se guarda como TEXT separado por comas: database/sql no
// escanea arrays de Postgres sin helpers extra y la lista es chica.
func splitTypes(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
