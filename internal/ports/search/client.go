package search

import "context"

// AnimalQuery son los parámetros de búsqueda ya resueltos
// (el dominio resuelve preferencias antes de armar el query).
// La API solo entiende location: state/country sueltos se colapsan
// en Location antes de llegar acá.
type AnimalQuery struct {
	Location string   // "City,ST", "ST,CC" o "CC"
	Types    []string // especies; si hay más de una, el filtrado fino es client-side
	Sort     string   // p.ej. "distance"
	Limit    int
	Page     int
}

// OrganizationQuery busca organizaciones de rescate cerca de una ubicación.
type OrganizationQuery struct {
	Location string
	Sort     string
	Limit    int
}

// Client es el port hacia la API externa de adopción.
// Devuelve el payload crudo; el dominio decide cómo decodificarlo
// (payloads malformados degradan a lista vacía, no cortan el request).
type Client interface {
	SearchAnimals(ctx context.Context, q AnimalQuery) ([]byte, error)
	SearchOrganizations(ctx context.Context, q OrganizationQuery) ([]byte, error)
}
