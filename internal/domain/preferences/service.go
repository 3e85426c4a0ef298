package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"far-fetched/internal/platform/logger"
	"far-fetched/internal/ports/session"
)

// DefaultSort es el sort que mandamos a la API cuando hay location.
const DefaultSort = "distance"

// TTL de los valores de preferencia en sesión.
const sessionTTL = 24 * time.Hour

// defaults estáticos, último eslabón de la cadena de resolución.
var defaultValues = map[Key]Value{
	KeyLocation:    TextValue("Toronto,ON"),
	KeyState:       TextValue("ON"),
	KeyCountry:     TextValue("CA"),
	KeyAnimalTypes: ListValue([]string{"dog"}),
}

// Copia local del set cerrado de especies. Duplicado a propósito respecto
// de domain/animals para no invertir la dependencia entre los dos módulos.
var knownAnimalTypes = map[string]bool{
	"dog":               true,
	"cat":               true,
	"rabbit":            true,
	"small-furry":       true,
	"horse":             true,
	"bird":              true,
	"scales-fins-other": true,
	"barnyard":          true,
}

// Service resuelve y escribe preferencias de búsqueda por visitante.
// Resolución = cadena de estrategias en orden fijo; la primera que
// encuentra valor gana (ver chain en Resolve).
type Service struct {
	repo     Repository
	sessions session.Store
	log      logger.Logger

	env func(string) string // inyectable para tests
}

func NewService(repo Repository, sessions session.Store, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		log:      log,
		env:      os.Getenv,
	}
}

type resolverFunc func(ctx context.Context, v *Visitor, key Key) (Value, bool, error)

// Resolve devuelve el valor de key para el visitante.
//
// Anónimo:     scratch -> sesión -> env -> defaults.
// Autenticado: scratch -> mirror de sesión -> store persistido -> env -> defaults,
// y si el store no tenía fila, el valor resuelto se backfillea best-effort
// (la persistencia acá es una optimización, no correctness: fallo se loguea y sigue).
//
// El mirror de sesión va antes que el store para que una escritura reciente
// no pague un segundo round-trip a la base. Env va a propósito antes que los
// defaults: con los defaults primero, la estrategia de env sería inalcanzable
// (los defaults responden las cuatro keys).
func (s *Service) Resolve(ctx context.Context, v *Visitor, key Key) (Value, error) {
	key, err := ParseKey(string(key))
	if err != nil {
		return Value{}, err
	}
	if v == nil {
		return Value{}, fmt.Errorf("%w: nil visitor", ErrInvalidInput)
	}

	chain := []resolverFunc{s.fromScratch, s.fromSession}
	backfillFrom := -1
	if v.Authenticated() {
		chain = append(chain, s.fromStore)
		backfillFrom = len(chain) // un hit de acá en adelante vino de fallback
	}
	chain = append(chain, s.fromEnv, s.fromDefaults)

	for i, strat := range chain {
		val, ok, err := strat(ctx, v, key)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			continue
		}

		v.SetScratch(key, val)
		if backfillFrom >= 0 && i >= backfillFrom {
			s.backfill(ctx, v, key, val)
		}
		return val, nil
	}

	// inalcanzable: defaults cubre las cuatro keys
	return Value{}, nil
}

func (s *Service) fromScratch(_ context.Context, v *Visitor, key Key) (Value, bool, error) {
	val, ok := v.Scratch(key)
	return val, ok, nil
}

func (s *Service) fromSession(ctx context.Context, v *Visitor, key Key) (Value, bool, error) {
	if s.sessions == nil || v.SessionID == "" {
		return Value{}, false, nil
	}

	raw, ok, err := s.sessions.Get(ctx, v.SessionID, sessionKey(key))
	if err != nil {
		// la sesión es un cache: si el store está caído degradamos al
		// siguiente eslabón en vez de romper el request
		s.log.Warn("session read failed", map[string]any{"key": string(key), "error": err.Error()})
		return Value{}, false, nil
	}
	if !ok {
		return Value{}, false, nil
	}

	var val Value
	if err := json.Unmarshal([]byte(raw), &val); err != nil || val.IsZero() {
		return Value{}, false, nil
	}
	return val, true, nil
}

func (s *Service) fromStore(ctx context.Context, v *Visitor, key Key) (Value, bool, error) {
	if s.repo == nil {
		return Value{}, false, nil
	}

	switch key {
	case KeyAnimalTypes:
		types, err := s.repo.GetAnimalTypes(ctx, v.UserID)
		if errors.Is(err, ErrNotFound) {
			return Value{}, false, nil
		}
		if err != nil {
			return Value{}, false, err
		}
		if len(types) == 0 {
			return Value{}, false, nil
		}
		return ListValue(types), true, nil

	default:
		loc, err := s.repo.GetLocation(ctx, v.UserID)
		if errors.Is(err, ErrNotFound) {
			return Value{}, false, nil
		}
		if err != nil {
			return Value{}, false, err
		}

		var text string
		switch key {
		case KeyLocation:
			text = loc.Display()
		case KeyState:
			text = loc.State
		case KeyCountry:
			text = loc.Country
		}
		if text == "" {
			return Value{}, false, nil
		}
		return TextValue(text), true, nil
	}
}

func (s *Service) fromEnv(_ context.Context, _ *Visitor, key Key) (Value, bool, error) {
	raw := strings.TrimSpace(s.env(envName(key)))
	if raw == "" {
		return Value{}, false, nil
	}
	if key == KeyAnimalTypes {
		return ListValue(splitList(raw)), true, nil
	}
	return TextValue(raw), true, nil
}

func (s *Service) fromDefaults(_ context.Context, _ *Visitor, key Key) (Value, bool, error) {
	def, ok := defaultValues[key]
	if !ok {
		return Value{}, false, nil
	}
	// copiar la lista para que nadie mute el default compartido
	if len(def.List) > 0 {
		def.List = append([]string(nil), def.List...)
	}
	return def, true, nil
}

// envName mapea la key a su env var (location usa CURR_LOCATION, heredado).
func envName(key Key) string {
	if key == KeyLocation {
		return "CURR_LOCATION"
	}
	return string(key)
}

func sessionKey(key Key) string {
	return "pref:" + string(key)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// backfill persiste un valor resuelto por fallback para el próximo request.
// Best-effort: el resolve ya tiene su valor, un fallo acá solo se loguea.
func (s *Service) backfill(ctx context.Context, v *Visitor, key Key, val Value) {
	if err := s.persist(ctx, v.UserID, key, val); err != nil {
		s.log.Warn("preference backfill failed", map[string]any{
			"user_id": v.UserID,
			"key":     string(key),
			"error":   err.Error(),
		})
	}
}

// Write guarda una preferencia para el visitante.
//
// Anónimo: solo sesión; animal_types se trunca a un elemento (los anónimos
// trackean una sola especie, restricción de diseño, no bug).
// Autenticado: persistir primero, después espejar en sesión, después
// refrescar el scratch derivado. Si persistir falla, el mirror NO se toca
// (evita divergencia entre vista y estado persistido) y se devuelve
// ErrPersistence.
func (s *Service) Write(ctx context.Context, v *Visitor, key Key, value Value) error {
	key, err := ParseKey(string(key))
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("%w: nil visitor", ErrInvalidInput)
	}

	value, err = normalizeValue(key, value)
	if err != nil {
		return err
	}

	if !v.Authenticated() {
		if key == KeyAnimalTypes && len(value.List) > 1 {
			value.List = value.List[:1]
		}
		if err := s.mirror(ctx, v, key, value); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		s.refreshScratch(ctx, v, key, value)
		return nil
	}

	if err := s.persist(ctx, v.UserID, key, value); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// el mirror es cache de lectura: fallo no invalida la escritura persistida
	if err := s.mirror(ctx, v, key, value); err != nil {
		s.log.Warn("session mirror failed", map[string]any{
			"user_id": v.UserID,
			"key":     string(key),
			"error":   err.Error(),
		})
	}
	s.refreshScratch(ctx, v, key, value)
	return nil
}

// normalizeValue limpia y valida el valor según la key.
func normalizeValue(key Key, value Value) (Value, error) {
	if key == KeyAnimalTypes {
		list := value.List
		if len(list) == 0 && value.Text != "" {
			list = []string{value.Text} // tolerar escalar suelto
		}
		if len(list) == 0 {
			return Value{}, fmt.Errorf("%w: empty animal_types", ErrInvalidInput)
		}
		clean := make([]string, 0, len(list))
		for _, t := range list {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if !knownAnimalTypes[t] {
				return Value{}, fmt.Errorf("%w: unknown animal type %q", ErrInvalidInput, t)
			}
			clean = append(clean, t)
		}
		if len(clean) == 0 {
			return Value{}, fmt.Errorf("%w: empty animal_types", ErrInvalidInput)
		}
		return ListValue(clean), nil
	}

	text := strings.TrimSpace(value.Text)
	if text == "" {
		return Value{}, fmt.Errorf("%w: empty %s", ErrInvalidInput, key)
	}
	if (key == KeyState || key == KeyCountry) && len(text) == 2 {
		text = strings.ToUpper(text)
	}
	return TextValue(text), nil
}

func (s *Service) mirror(ctx context.Context, v *Visitor, key Key, value Value) error {
	if s.sessions == nil || v.SessionID == "" {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.sessions.Set(ctx, v.SessionID, sessionKey(key), string(b), sessionTTL)
}

// persist escribe en el store relacional: state/country/location van a la
// fila de ubicación del usuario (read-modify-write), animal_types a la suya.
func (s *Service) persist(ctx context.Context, userID string, key Key, value Value) error {
	if s.repo == nil {
		return errors.New("no repository configured")
	}

	if key == KeyAnimalTypes {
		return s.repo.SaveAnimalTypes(ctx, userID, value.List)
	}

	loc, err := s.repo.GetLocation(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	switch key {
	case KeyState:
		loc.State = value.Text
	case KeyCountry:
		loc.Country = value.Text
	case KeyLocation:
		merged := parseLocationText(value.Text)
		if merged.City != "" {
			loc.City = merged.City
		}
		if merged.State != "" {
			loc.State = merged.State
		}
		if merged.Country != "" {
			loc.Country = merged.Country
		}
	}
	return s.repo.SaveLocation(ctx, userID, loc)
}

// parseLocationText interpreta el string compuesto de location:
// "A,B" con ambos tokens de 2 letras => state,country; si no => city,state.
// Un token solo de 2 letras se toma como country; si no, como city.
func parseLocationText(text string) Location {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) >= 2 && parts[0] != "" && parts[1] != "":
		if len(parts[0]) == 2 && len(parts[1]) == 2 {
			return Location{State: strings.ToUpper(parts[0]), Country: strings.ToUpper(parts[1])}
		}
		return Location{City: parts[0], State: strings.ToUpper(parts[1])}
	case len(parts) >= 1 && parts[0] != "":
		if len(parts[0]) == 2 {
			return Location{Country: strings.ToUpper(parts[0])}
		}
		return Location{City: parts[0]}
	default:
		return Location{}
	}
}

// refreshScratch actualiza el contexto per-request después de una escritura:
// la key escrita, y el location derivado cuando cambió state/country/location.
func (s *Service) refreshScratch(ctx context.Context, v *Visitor, key Key, value Value) {
	v.SetScratch(key, value)
	if key == KeyAnimalTypes {
		return
	}

	var loc Location
	if v.Authenticated() && s.repo != nil {
		stored, err := s.repo.GetLocation(ctx, v.UserID)
		if err == nil {
			loc = stored
		}
	}
	if loc.IsZero() {
		// derivar de lo que ya hay en scratch (caso anónimo)
		if st, ok := v.Scratch(KeyState); ok {
			loc.State = st.Text
		}
		if cc, ok := v.Scratch(KeyCountry); ok {
			loc.Country = cc.Text
		}
		if key == KeyLocation {
			merged := parseLocationText(value.Text)
			loc.City = merged.City
			if merged.State != "" {
				loc.State = merged.State
			}
			if merged.Country != "" {
				loc.Country = merged.Country
			}
		}
	}

	display := loc.Display()
	if display == "" {
		return
	}
	v.SetScratch(KeyLocation, TextValue(display))
	if loc.State != "" {
		v.SetScratch(KeyState, TextValue(loc.State))
	}
	if loc.Country != "" {
		v.SetScratch(KeyCountry, TextValue(loc.Country))
	}

	// espejar el display compuesto en sesión (equivalente del viejo CURR_LOCATION)
	if err := s.mirror(ctx, v, KeyLocation, TextValue(display)); err != nil {
		s.log.Warn("session mirror failed", map[string]any{"key": "location", "error": err.Error()})
	}
}
