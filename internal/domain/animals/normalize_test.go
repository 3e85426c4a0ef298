package animals

import (
	"errors"
	"testing"
	"time"
)

func TestParseBreed_UnknownWinsOverMixed(t *testing.T) {
	got := ParseBreed(&RawBreeds{Primary: "Husky", Secondary: "Labrador", Mixed: true, Unknown: true})
	if got != "Super Mutt" {
		t.Fatalf("expected Super Mutt for unknown breed, got %q", got)
	}
	if got := ParseBreed(nil); got != "Super Mutt" {
		t.Fatalf("expected Super Mutt for nil breeds, got %q", got)
	}
}

func TestParseBreed_MixedVariants(t *testing.T) {
	// mixed con secondary => "P S mix"
	got := ParseBreed(&RawBreeds{Primary: "Husky", Secondary: "Labrador", Mixed: true})
	if got != "Husky Labrador mix" {
		t.Fatalf("expected %q, got %q", "Husky Labrador mix", got)
	}

	// mixed sin secondary => "P Mix"
	got = ParseBreed(&RawBreeds{Primary: "Husky", Mixed: true})
	if got != "Husky Mix" {
		t.Fatalf("expected %q, got %q", "Husky Mix", got)
	}

	// puro => primary tal cual
	got = ParseBreed(&RawBreeds{Primary: "Husky"})
	if got != "Husky" {
		t.Fatalf("expected %q, got %q", "Husky", got)
	}
}

func TestParseColor(t *testing.T) {
	if got := ParseColor(nil); got != "Unknown Color" {
		t.Fatalf("expected Unknown Color for nil colors, got %q", got)
	}
	if got := ParseColor(&RawColors{}); got != "Unknown Color" {
		t.Fatalf("expected Unknown Color for empty primary, got %q", got)
	}

	// tertiary presente => "primary, secondary" (el tertiary no entra al label)
	got := ParseColor(&RawColors{Primary: "Black", Secondary: "White", Tertiary: "Brown"})
	if got != "Black, White" {
		t.Fatalf("expected %q, got %q", "Black, White", got)
	}

	// sin tertiary => solo primary, aunque haya secondary
	got = ParseColor(&RawColors{Primary: "Black", Secondary: "White"})
	if got != "Black" {
		t.Fatalf("expected %q, got %q", "Black", got)
	}
}

func TestParsePhotos(t *testing.T) {
	// con fotos => la URL full de la primera
	got := ParsePhotos([]RawPhoto{{Full: "https://cdn.example.com/a.jpg"}, {Full: "https://cdn.example.com/b.jpg"}}, "dog")
	if got != "https://cdn.example.com/a.jpg" {
		t.Fatalf("expected first full photo, got %q", got)
	}

	// sin fotos => gráfico por defecto de la especie
	got = ParsePhotos(nil, "cat")
	if got != "/static/images/graphics/cat-freepik.png" {
		t.Fatalf("expected cat default graphic, got %q", got)
	}

	// especie desconocida => bucket misc
	got = ParsePhotos(nil, "dragon")
	if got != "/static/images/graphics/tracks_freepik.png" {
		t.Fatalf("expected misc graphic for unknown species, got %q", got)
	}
}

func TestParseLocation(t *testing.T) {
	// city + state + country
	loc := ParseLocation(&RawAddress{City: "Toronto", State: "ON", Country: "CA"})
	if loc == nil || loc.Location != "Toronto,ON" || loc.Country != "CA" {
		t.Fatalf("unexpected location: %#v", loc)
	}

	// sin city => state,country
	loc = ParseLocation(&RawAddress{State: "on", Country: "Canada"})
	if loc == nil || loc.Location != "ON,CA" {
		t.Fatalf("expected ON,CA, got %#v", loc)
	}

	// solo país, nombre completo resuelto a alpha-2
	loc = ParseLocation(&RawAddress{Country: "United States"})
	if loc == nil || loc.Location != "US" || loc.Country != "US" {
		t.Fatalf("expected US, got %#v", loc)
	}

	// city sin state cae a la rama de país
	loc = ParseLocation(&RawAddress{City: "Toronto", Country: "CA"})
	if loc == nil || loc.Location != "CA" || loc.City != "" {
		t.Fatalf("expected country-only location, got %#v", loc)
	}

	// país irresoluble => nil
	if loc := ParseLocation(&RawAddress{City: "Atlantis", Country: "Atlantis"}); loc != nil {
		t.Fatalf("expected nil for unresolvable country, got %#v", loc)
	}
	if loc := ParseLocation(nil); loc != nil {
		t.Fatalf("expected nil for nil address, got %#v", loc)
	}
}

func TestParsePublishDate(t *testing.T) {
	now := time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)

	// format => DD/MM/YYYY
	formatted, _, err := ParsePublishDate("2024-05-01T09:15:00+0000", ActionFormat, now)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}
	if formatted != "01/05/2024" {
		t.Fatalf("expected 01/05/2024, got %q", formatted)
	}

	// delta => días entre now y la fecha
	_, delta, err := ParsePublishDate("2024-05-01T09:15:00+0000", ActionDelta, now)
	if err != nil {
		t.Fatalf("delta error: %v", err)
	}
	if delta != 10 {
		t.Fatalf("expected delta 10, got %d", delta)
	}

	// acción desconocida => ErrInvalidAction
	_, _, err = ParsePublishDate("2024-05-01T09:15:00+0000", DateAction("sideways"), now)
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	// fecha vacía => ErrMissingPublishDate
	_, _, err = ParsePublishDate("", ActionDelta, now)
	if !errors.Is(err, ErrMissingPublishDate) {
		t.Fatalf("expected ErrMissingPublishDate, got %v", err)
	}
}

func TestNormalize_FlattensRecord(t *testing.T) {
	now := time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)
	dist := 12.5

	raws := []RawAnimal{{
		ID:             101,
		Name:           "Milo",
		Type:           "Dog",
		OrganizationID: "ON123",
		Breeds:         &RawBreeds{Primary: "Husky", Mixed: true},
		Colors:         &RawColors{Primary: "Black"},
		Photos:         []RawPhoto{{Full: "https://cdn.example.com/milo.jpg"}},
		Contact:        &RawContact{Address: RawAddress{City: "Toronto", State: "ON", Country: "CA"}},
		PublishedAt:    "2024-05-01T09:15:00+0000",
		Distance:       &dist,
	}}

	out := Normalize(raws, now)
	if len(out) != 1 {
		t.Fatalf("expected 1 normalized record, got %d", len(out))
	}

	a := out[0]
	if a.Breed != "Husky Mix" {
		t.Fatalf("breed: got %q", a.Breed)
	}
	if a.Color != "Black" {
		t.Fatalf("color: got %q", a.Color)
	}
	if a.Photo != "https://cdn.example.com/milo.jpg" {
		t.Fatalf("photo: got %q", a.Photo)
	}
	if a.Location == nil || a.Location.Location != "Toronto,ON" {
		t.Fatalf("location: got %#v", a.Location)
	}
	if a.PublishedDate != "01/05/2024" || a.DateDelta != 10 {
		t.Fatalf("publish date: got %q delta %d", a.PublishedDate, a.DateDelta)
	}
	if a.Emoji != "🐶" {
		t.Fatalf("emoji: got %q", a.Emoji)
	}
	if a.Distance != 12.5 {
		t.Fatalf("distance: got %v", a.Distance)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	// re-procesar un registro ya aplanado no debe pisar los labels
	now := time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)
	delta := 10
	raws := []RawAnimal{{
		ID:            101,
		Name:          "Milo",
		Type:          "dog",
		Breed:         "Husky Mix",
		Color:         "Black",
		Photo:         "https://cdn.example.com/milo.jpg",
		Location:      &Location{Location: "Toronto,ON", City: "Toronto", State: "ON", Country: "CA"},
		PublishedDate: "01/05/2024",
		DateDelta:     &delta,
	}}

	out := Normalize(raws, now)
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	a := out[0]
	if a.Breed != "Husky Mix" || a.Color != "Black" || a.Photo != "https://cdn.example.com/milo.jpg" {
		t.Fatalf("flattened fields changed: %#v", a)
	}
	if a.PublishedDate != "01/05/2024" || a.DateDelta != 10 {
		t.Fatalf("publish date changed: %q / %d", a.PublishedDate, a.DateDelta)
	}
}

func TestNormalize_SkipsRecordsWithBadPublishDate(t *testing.T) {
	now := time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)
	raws := []RawAnimal{
		{ID: 1, Type: "dog", PublishedAt: "not-a-date"},
		{ID: 2, Type: "dog"},
		{ID: 3, Type: "dog", PublishedAt: "2024-05-01T09:15:00+0000"},
	}

	out := Normalize(raws, now)
	if len(out) != 1 || out[0].ID != 3 {
		t.Fatalf("expected only the valid record, got %#v", out)
	}
}

func TestDecodeAnimals_Tolerant(t *testing.T) {
	// envelope estándar
	got := DecodeAnimals([]byte(`{"animals":[{"id":1,"type":"dog"}]}`))
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("envelope: got %#v", got)
	}

	// lista directa
	got = DecodeAnimals([]byte(`[{"id":2,"type":"cat"}]`))
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("bare list: got %#v", got)
	}

	// payload malformado => vacío, nunca panic
	if got := DecodeAnimals([]byte(`{"animals": "nope"`)); got != nil {
		t.Fatalf("malformed: expected nil, got %#v", got)
	}
	if got := DecodeAnimals(nil); got != nil {
		t.Fatalf("empty: expected nil, got %#v", got)
	}
}
