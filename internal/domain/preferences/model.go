package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidKey   = errors.New("unknown preference key")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("preference persistence failed")
)

// Key identifica una preferencia de búsqueda.
// @Enum location, country, state, animal_types
type Key string

const (
	KeyLocation    Key = "location"
	KeyCountry     Key = "country"
	KeyState       Key = "state"
	KeyAnimalTypes Key = "animal_types"
)

var allKeys = []Key{KeyLocation, KeyCountry, KeyState, KeyAnimalTypes}

// ParseKey valida una key que viene de afuera (path param, form).
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allKeys {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
}

// Value es el valor de una preferencia: escalar (location/state/country)
// o lista (animal_types). Nunca ambos a la vez.
type Value struct {
	Text string   `json:"text,omitempty"`
	List []string `json:"list,omitempty"`
}

func TextValue(s string) Value { return Value{Text: s} }

func ListValue(xs []string) Value { return Value{List: xs} }

func (v Value) IsZero() bool { return v.Text == "" && len(v.List) == 0 }

// Location es la ubicación persistida de un usuario.
type Location struct {
	City    string
	State   string
	Country string
}

func (l Location) IsZero() bool {
	return l.City == "" && l.State == "" && l.Country == ""
}

// Display arma el string de ubicación para queries/templates:
// "City,ST" > "ST,CC" > "CC".
func (l Location) Display() string {
	switch {
	case l.City != "" && l.State != "":
		return l.City + "," + l.State
	case l.State != "" && l.Country != "":
		return l.State + "," + l.Country
	case l.Country != "":
		return l.Country
	default:
		return ""
	}
}

// Visitor es el contexto per-request del visitante. Reemplaza el estado
// global de sesión/request: se arma en el middleware y se pasa explícito.
// No es seguro compartirlo entre requests (y no hay razón para hacerlo).
type Visitor struct {
	SessionID string
	UserID    string // vacío => anónimo

	scratch map[Key]Value
}

func NewVisitor(sessionID, userID string) *Visitor {
	return &Visitor{
		SessionID: sessionID,
		UserID:    userID,
		scratch:   make(map[Key]Value),
	}
}

func (v *Visitor) Authenticated() bool {
	return v != nil && strings.TrimSpace(v.UserID) != ""
}

// Scratch es el cache per-request: una key resuelta no se vuelve a buscar
// dentro del mismo request.
func (v *Visitor) Scratch(key Key) (Value, bool) {
	if v == nil || v.scratch == nil {
		return Value{}, false
	}
	val, ok := v.scratch[key]
	return val, ok
}

func (v *Visitor) SetScratch(key Key, val Value) {
	if v == nil {
		return
	}
	if v.scratch == nil {
		v.scratch = make(map[Key]Value)
	}
	v.scratch[key] = val
}

type ctxKey string

const visitorKey ctxKey = "visitor"

// WithVisitor cuelga el visitante del contexto del request.
// Lo setea el middleware; los handlers lo leen con VisitorFromContext.
func WithVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, visitorKey, v)
}

func VisitorFromContext(ctx context.Context) (*Visitor, bool) {
	v, ok := ctx.Value(visitorKey).(*Visitor)
	return v, ok && v != nil
}
