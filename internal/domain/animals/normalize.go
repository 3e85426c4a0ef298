package animals

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biter777/countries"
)

var (
	ErrInvalidAction      = errors.New("unsupported publish date action")
	ErrMissingPublishDate = errors.New("publish date is required")
)

// DateAction es la operación pedida sobre published_at.
type DateAction string

const (
	ActionDelta  DateAction = "delta"  // días entre now(UTC) y la fecha
	ActionFormat DateAction = "format" // DD/MM/YYYY
)

// ParseBreed aplana el objeto breeds de un registro de animal.
// unknown siempre gana sobre mixed.
func ParseBreed(b *RawBreeds) string {
	if b == nil || b.Unknown {
		return "Super Mutt" // breed por defecto
	}

	if b.Mixed {
		if b.Secondary != "" {
			return fmt.Sprintf("%s %s mix", b.Primary, b.Secondary)
		}
		return fmt.Sprintf("%s Mix", b.Primary)
	}
	return b.Primary
}

// ParseColor aplana el objeto colors.
// Con tertiary presente se concatena primary + secondary solamente;
// el tertiary nunca entra al label (comportamiento heredado que los
// templates ya asumen).
func ParseColor(c *RawColors) string {
	if c == nil || c.Primary == "" {
		return "Unknown Color" // color por defecto
	}

	if c.Tertiary != "" {
		if c.Secondary != "" {
			return fmt.Sprintf("%s, %s", c.Primary, c.Secondary)
		}
		return c.Primary
	}
	return c.Primary
}

// gráficos por defecto cuando el animal no trae fotos
var defaultGraphics = map[Species]string{
	SpeciesDog:        "/static/images/graphics/dog-freepik.png",
	SpeciesCat:        "/static/images/graphics/cat-freepik.png",
	SpeciesHorse:      "/static/images/graphics/horse-freepik.png",
	SpeciesBird:       "/static/images/graphics/bird-eucalyp.png",
	SpeciesSmallFurry: "/static/images/graphics/small-furry-freepik.png",
	SpeciesScales:     "/static/images/graphics/scales-smashicons.png",
	SpeciesBarnyard:   "/static/images/graphics/barnyard-freepik.png",
	SpeciesRabbit:     "/static/images/graphics/rabbit-freepik.png",
	SpeciesMisc:       "/static/images/graphics/tracks_freepik.png",
}

// ParsePhotos devuelve la URL full de la primera foto, o el gráfico
// por defecto de la especie si el animal no trae fotos.
// Species desconocida cae al bucket misc.
func ParsePhotos(photos []RawPhoto, species string) string {
	sp := Species(strings.ToLower(strings.TrimSpace(species)))
	if !ValidSpecies(string(sp)) {
		sp = SpeciesMisc
	}

	if len(photos) == 0 {
		return defaultGraphics[sp]
	}
	return photos[0].Full
}

// ParseLocation aplana el address del contact.
// Sin país resoluble no hay ubicación (nil). Una city sin state cae a la
// rama state/country: la city sola no alcanza para armar un location usable.
func ParseLocation(addr *RawAddress) *Location {
	if addr == nil {
		return nil
	}

	country := resolveCountry(addr.Country)
	if country == "" {
		return nil
	}

	city := strings.TrimSpace(addr.City)
	state := normalizeRegionCode(addr.State)

	if city != "" && state != "" {
		return &Location{
			Location: fmt.Sprintf("%s,%s", city, state),
			City:     city,
			State:    state,
			Country:  country,
		}
	}
	if state != "" {
		return &Location{
			Location: fmt.Sprintf("%s,%s", state, country),
			State:    state,
			Country:  country,
		}
	}
	return &Location{
		Location: country,
		Country:  country,
	}
}

// resolveCountry lleva el país a código ISO 3166-1 alpha-2.
// Códigos de 2 letras pasan tal cual (upper); nombres completos se
// resuelven con el lookup de countries. Irresoluble => "".
func resolveCountry(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) == 2 {
		return strings.ToUpper(raw)
	}

	cc := countries.ByName(raw)
	if cc == countries.Unknown {
		return ""
	}
	return cc.Alpha2()
}

// normalizeRegionCode solo acepta códigos de provincia/estado de 2 letras;
// nombres largos se tratan como ausentes.
func normalizeRegionCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) != 2 {
		return ""
	}
	return strings.ToUpper(raw)
}

// publishedAtLayouts: la API manda offset "+0000" literal; toleramos
// también RFC3339 con "Z".
var publishedAtLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

func parsePublishTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range publishedAtLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParsePublishDate parsea published_at según la acción pedida:
// - ActionFormat => (formatted DD/MM/YYYY, 0, nil)
// - ActionDelta  => ("", días entre now y la fecha, nil)
// Acción desconocida => ErrInvalidAction.
// Fecha vacía => ErrMissingPublishDate (un registro sin fecha de publicación
// no es renderizable; mejor error explícito que un null silencioso).
func ParsePublishDate(pubDate string, action DateAction, now time.Time) (string, int, error) {
	if action != ActionDelta && action != ActionFormat {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidAction, string(action))
	}
	if strings.TrimSpace(pubDate) == "" {
		return "", 0, ErrMissingPublishDate
	}

	t, err := parsePublishTime(pubDate)
	if err != nil {
		return "", 0, fmt.Errorf("parse published_at %q: %w", pubDate, err)
	}

	if action == ActionDelta {
		delta := int(now.UTC().Sub(t) / (24 * time.Hour))
		return "", delta, nil
	}
	return t.Format("02/01/2006"), 0, nil
}

// Normalize aplana cada registro crudo: breeds => breed, colors => color,
// photos => photo, contact => location, y calcula published_date/date_delta.
// Registros con published_at inválido se saltan (el caller loguea el conteo);
// videos nunca se copia.
func Normalize(raws []RawAnimal, now time.Time) []Animal {
	out := make([]Animal, 0, len(raws))

	for _, raw := range raws {
		a, ok := normalizeOne(raw, now)
		if !ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func normalizeOne(raw RawAnimal, now time.Time) (Animal, bool) {
	a := Animal{
		ID:             raw.ID,
		Name:           raw.Name,
		Type:           strings.ToLower(strings.TrimSpace(raw.Type)),
		Emoji:          Emoji(raw.Type),
		OrganizationID: raw.OrganizationID,
		Age:            raw.Age,
		Gender:         raw.Gender,
		Status:         raw.Status,
		URL:            raw.URL,
	}
	if raw.Distance != nil {
		a.Distance = *raw.Distance
	}

	// Registro ya aplanado: passthrough en vez de re-derivar
	// (los objetos anidados ya no están; re-parsearlos pisaría los labels).
	if raw.Breeds == nil && raw.Breed != "" {
		a.Breed = raw.Breed
	} else {
		a.Breed = ParseBreed(raw.Breeds)
	}
	if raw.Colors == nil && raw.Color != "" {
		a.Color = raw.Color
	} else {
		a.Color = ParseColor(raw.Colors)
	}
	if len(raw.Photos) == 0 && raw.Photo != "" {
		a.Photo = raw.Photo
	} else {
		a.Photo = ParsePhotos(raw.Photos, raw.Type)
	}
	if raw.Contact == nil && raw.Location != nil {
		a.Location = raw.Location
	} else {
		var addr *RawAddress
		if raw.Contact != nil {
			addr = &raw.Contact.Address
		}
		a.Location = ParseLocation(addr)
	}

	if raw.PublishedAt == "" && raw.PublishedDate != "" && raw.DateDelta != nil {
		a.PublishedDate = raw.PublishedDate
		a.DateDelta = *raw.DateDelta
		return a, true
	}

	formatted, _, err := ParsePublishDate(raw.PublishedAt, ActionFormat, now)
	if err != nil {
		return Animal{}, false
	}
	_, delta, err := ParsePublishDate(raw.PublishedAt, ActionDelta, now)
	if err != nil {
		return Animal{}, false
	}
	a.PublishedDate = formatted
	a.DateDelta = delta

	return a, true
}
