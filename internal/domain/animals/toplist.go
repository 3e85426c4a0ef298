package animals

import "sort"

// TopResults son los registros extremos de un set normalizado.
// Keys en nil se omiten del JSON (set vacío => objeto vacío).
type TopResults struct {
	Oldest   *Animal `json:"oldest,omitempty"`
	Newest   *Animal `json:"newest,omitempty"`
	Closest  *Animal `json:"closest,omitempty"`
	Furthest *Animal `json:"furthest,omitempty"`
}

// SelectTop arma el bundle de top-results en un solo pase por key.
// oldest/newest por date_delta (delta más grande = publicado hace más tiempo),
// closest/furthest por distance. En empates gana el primero en orden de entrada.
func SelectTop(records []Animal) TopResults {
	if len(records) == 0 {
		return TopResults{}
	}

	oldest, newest := findHighestLowest(records, func(a Animal) float64 { return float64(a.DateDelta) })
	furthest, closest := findHighestLowest(records, func(a Animal) float64 { return a.Distance })

	return TopResults{
		Oldest:   oldest,
		Newest:   newest,
		Closest:  closest,
		Furthest: furthest,
	}
}

// findHighestLowest hace un scan lineal estable: solo un valor estrictamente
// mayor/menor desplaza al candidato actual.
func findHighestLowest(records []Animal, key func(Animal) float64) (highest, lowest *Animal) {
	if len(records) == 0 {
		return nil, nil
	}

	hi, lo := 0, 0
	for i := 1; i < len(records); i++ {
		switch {
		case key(records[i]) > key(records[hi]):
			hi = i
		case key(records[i]) < key(records[lo]):
			lo = i
		}
	}
	return &records[hi], &records[lo]
}

// OrgCount es el conteo de animales por organización de rescate.
type OrgCount struct {
	OrganizationID string `json:"organization_id"`
	Count          int    `json:"count"`
}

// CountByOrganization agrupa un set normalizado por organization_id,
// ordenado por conteo desc (empates por id para salida estable).
func CountByOrganization(records []Animal) []OrgCount {
	counts := make(map[string]int)
	for _, a := range records {
		if a.OrganizationID == "" {
			continue
		}
		counts[a.OrganizationID]++
	}

	out := make([]OrgCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, OrgCount{OrganizationID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].OrganizationID < out[j].OrganizationID
	})
	return out
}
