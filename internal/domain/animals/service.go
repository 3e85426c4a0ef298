package animals

import (
	"context"
	"strings"
	"time"

	"far-fetched/internal/domain/preferences"
	"far-fetched/internal/platform/logger"
	"far-fetched/internal/ports/search"
)

const defaultPageSize = 20

// SearchInput son overrides opcionales del request; todo campo vacío
// se completa con la preferencia resuelta del visitante.
type SearchInput struct {
	Location string
	Country  string
	State    string
	Types    []string
	Sort     string
	Limit    int
	Page     int
}

// Service arma búsquedas contra la API externa a partir de las
// preferencias del visitante y normaliza los resultados.
type Service struct {
	client search.Client
	prefs  *preferences.Service
	log    logger.Logger
	now    func() time.Time
}

func NewService(client search.Client, prefs *preferences.Service, log logger.Logger) *Service {
	return &Service{
		client: client,
		prefs:  prefs,
		log:    log,
		now:    time.Now,
	}
}

// Search resuelve preferencias, consulta la API y devuelve el set
// normalizado, filtrado por especie.
//
// Fallos del upstream degradan a lista vacía con diagnóstico logueado:
// una grilla vacía renderiza, un 502 no.
func (s *Service) Search(ctx context.Context, v *preferences.Visitor, in SearchInput) ([]Animal, error) {
	q, types, err := s.buildQuery(ctx, v, in)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.SearchAnimals(ctx, q)
	if err != nil {
		s.log.Warn("animal search upstream failed", map[string]any{
			"location": q.Location,
			"error":    err.Error(),
		})
		return []Animal{}, nil
	}

	raws := DecodeAnimals(raw)
	parsed := Normalize(raws, s.now())
	if skipped := len(raws) - len(parsed); skipped > 0 {
		s.log.Warn("dropped malformed animal records", map[string]any{"skipped": skipped})
	}

	return filterByTypes(parsed, types), nil
}

// TopResults corre la misma búsqueda y selecciona los extremos.
func (s *Service) TopResults(ctx context.Context, v *preferences.Visitor, in SearchInput) (TopResults, error) {
	records, err := s.Search(ctx, v, in)
	if err != nil {
		return TopResults{}, err
	}
	return SelectTop(records), nil
}

// OrgCounts agrupa la búsqueda por organización.
func (s *Service) OrgCounts(ctx context.Context, v *preferences.Visitor, in SearchInput) ([]OrgCount, error) {
	records, err := s.Search(ctx, v, in)
	if err != nil {
		return nil, err
	}
	return CountByOrganization(records), nil
}

// Organizations devuelve los IDs de organizaciones de rescate cerca de la
// ubicación resuelta, ordenadas por distancia.
func (s *Service) Organizations(ctx context.Context, v *preferences.Visitor) ([]string, error) {
	loc, err := s.prefs.Resolve(ctx, v, preferences.KeyLocation)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.SearchOrganizations(ctx, search.OrganizationQuery{
		Location: loc.Text,
		Sort:     preferences.DefaultSort,
		Limit:    defaultPageSize,
	})
	if err != nil {
		s.log.Warn("organization search upstream failed", map[string]any{
			"location": loc.Text,
			"error":    err.Error(),
		})
		return []string{}, nil
	}

	orgs := DecodeOrganizations(raw)
	ids := make([]string, 0, len(orgs))
	for _, org := range orgs {
		if org.ID != "" {
			ids = append(ids, org.ID)
		}
	}
	return ids, nil
}

// buildQuery mezcla overrides del request con preferencias resueltas
// (el override gana; lo que falte sale del resolver). La API solo acepta
// location: state/country sueltos del request se colapsan en una location
// sintetizada antes de caer al resolver.
func (s *Service) buildQuery(ctx context.Context, v *preferences.Visitor, in SearchInput) (search.AnimalQuery, []string, error) {
	q := search.AnimalQuery{
		Location: strings.TrimSpace(in.Location),
		Sort:     strings.TrimSpace(in.Sort),
		Limit:    in.Limit,
		Page:     in.Page,
	}

	if q.Location == "" {
		q.Location = overrideLocation(in.State, in.Country)
	}
	if q.Location == "" {
		val, err := s.prefs.Resolve(ctx, v, preferences.KeyLocation)
		if err != nil {
			return search.AnimalQuery{}, nil, err
		}
		q.Location = val.Text
	}

	types := cleanTypes(in.Types)
	if len(types) == 0 {
		val, err := s.prefs.Resolve(ctx, v, preferences.KeyAnimalTypes)
		if err != nil {
			return search.AnimalQuery{}, nil, err
		}
		types = cleanTypes(val.List)
	}
	q.Types = types

	if q.Sort == "" {
		q.Sort = preferences.DefaultSort
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q, types, nil
}

// overrideLocation sintetiza "ST,CC" (o "CC") a partir de state/country
// sueltos del request. State solo no arma una location usable y se ignora.
func overrideLocation(state, country string) string {
	loc := preferences.Location{State: upperCode(state), Country: upperCode(country)}
	return loc.Display()
}

func upperCode(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 2 {
		return strings.ToUpper(s)
	}
	return s
}

func cleanTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && ValidSpecies(t) {
			out = append(out, t)
		}
	}
	return out
}

// filterByTypes re-filtra client-side: la API solo acepta un type por
// query, así que con preferencias multi-especie filtramos acá.
func filterByTypes(records []Animal, types []string) []Animal {
	if len(types) == 0 {
		return records
	}

	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	out := make([]Animal, 0, len(records))
	for _, a := range records {
		if want[a.Type] {
			out = append(out, a)
		}
	}
	return out
}
