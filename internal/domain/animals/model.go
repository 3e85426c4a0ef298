package animals

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Species define las especies soportadas por la API de adopción.
// @Enum dog, cat, rabbit, small-furry, horse, bird, scales-fins-other, barnyard
type Species string

const (
	SpeciesDog        Species = "dog"
	SpeciesCat        Species = "cat"
	SpeciesRabbit     Species = "rabbit"
	SpeciesSmallFurry Species = "small-furry"
	SpeciesHorse      Species = "horse"
	SpeciesBird       Species = "bird"
	SpeciesScales     Species = "scales-fins-other"
	SpeciesBarnyard   Species = "barnyard"

	// SpeciesMisc no es una especie de la API: es el bucket para types
	// desconocidos al elegir gráficos por defecto.
	SpeciesMisc Species = "misc"
)

var allSpecies = []Species{
	SpeciesDog,
	SpeciesCat,
	SpeciesRabbit,
	SpeciesSmallFurry,
	SpeciesHorse,
	SpeciesBird,
	SpeciesScales,
	SpeciesBarnyard,
}

// ValidSpecies acepta el type ya lowercased.
func ValidSpecies(s string) bool {
	for _, sp := range allSpecies {
		if s == string(sp) {
			return true
		}
	}
	return false
}

var speciesEmojis = map[Species]string{
	SpeciesDog:        "🐶",
	SpeciesCat:        "🐱",
	SpeciesRabbit:     "🐰",
	SpeciesSmallFurry: "🐹",
	SpeciesHorse:      "🐴",
	SpeciesBird:       "🐦",
	SpeciesScales:     "🦎",
	SpeciesBarnyard:   "🐄",
}

// Emoji devuelve el emoji de la especie, o "" si no la conocemos.
func Emoji(species string) string {
	return speciesEmojis[Species(strings.ToLower(strings.TrimSpace(species)))]
}

// --- shapes crudos de la API externa ---

type RawBreeds struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Mixed     bool   `json:"mixed"`
	Unknown   bool   `json:"unknown"`
}

type RawColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

type RawPhoto struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
	Full   string `json:"full"`
}

type RawAddress struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

type RawContact struct {
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	Address RawAddress `json:"address"`
}

// RawAnimal es un registro de animal tal como lo devuelve la API.
// Los campos planos (breed, color, photo, ...) normalmente vienen vacíos;
// existen para que re-procesar un registro ya normalizado sea un no-op
// en vez de corromper datos (guard contra doble procesamiento).
type RawAnimal struct {
	ID             int64  `json:"id"`
	OrganizationID string `json:"organization_id"`
	URL            string `json:"url"`
	Type           string `json:"type"`
	Age            string `json:"age"`
	Gender         string `json:"gender"`
	Size           string `json:"size"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Status         string `json:"status"`

	Breeds  *RawBreeds  `json:"breeds,omitempty"`
	Colors  *RawColors  `json:"colors,omitempty"`
	Photos  []RawPhoto  `json:"photos,omitempty"`
	Contact *RawContact `json:"contact,omitempty"`

	PublishedAt string   `json:"published_at,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`

	// Videos se descarta siempre: nunca se expone río abajo.
	Videos json.RawMessage `json:"videos,omitempty"`

	// campos planos de un registro ya normalizado (ver nota del struct)
	Breed         string    `json:"breed,omitempty"`
	Color         string    `json:"color,omitempty"`
	Photo         string    `json:"photo,omitempty"`
	Location      *Location `json:"location,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	DateDelta     *int      `json:"date_delta,omitempty"`
}

// Location es la ubicación ya aplanada, lista para templates.
type Location struct {
	Location string `json:"location"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country"`
}

// Animal es el registro normalizado que consumen handlers y templates.
// Se construye una vez por respuesta de la API y no se muta después.
type Animal struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Emoji          string    `json:"emoji,omitempty"`
	Breed          string    `json:"breed"`
	Color          string    `json:"color"`
	Photo          string    `json:"photo"`
	Location       *Location `json:"location,omitempty"`
	PublishedDate  string    `json:"published_date"`
	DateDelta      int       `json:"date_delta"`
	Distance       float64   `json:"distance"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Age            string    `json:"age,omitempty"`
	Gender         string    `json:"gender,omitempty"`
	Status         string    `json:"status,omitempty"`
	URL            string    `json:"url,omitempty"`
}

// Organization es lo mínimo que usamos de una organización de rescate.
type Organization struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// DecodeAnimals decodifica el payload crudo de la API de forma tolerante.
// Acepta el envelope {"animals": [...]} o una lista directa.
// Payload malformado => lista vacía (la grilla de resultados no es crítica,
// preferimos degradar a no renderizar nada antes que cortar el request).
func DecodeAnimals(raw []byte) []RawAnimal {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var root struct {
		Animals []RawAnimal `json:"animals"`
	}
	if err := json.Unmarshal(raw, &root); err == nil && root.Animals != nil {
		return root.Animals
	}

	var list []RawAnimal
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	return nil
}

// DecodeOrganizations hace lo mismo para el payload de organizaciones.
func DecodeOrganizations(raw []byte) []Organization {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var root struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := json.Unmarshal(raw, &root); err == nil && root.Organizations != nil {
		return root.Organizations
	}

	var list []Organization
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	return nil
}
