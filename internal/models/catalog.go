package models

// Catalog is the fixed unit→team enumeration registrations are validated
// against. The zero value is an empty catalog that rejects everything.
type Catalog map[string][]string

// DefaultCatalog mirrors the deployed unit/team structure.
func DefaultCatalog() Catalog {
	return Catalog{
		"הבשור": {"צוות 1", "צוות 2", "צוות 3"},
		"רמון":  {"צוות 4", "צוות 5", "צוות 6"},
		"תמר":   {"צוות 7", "צוות 8", "צוות 9"},
		"צין":   {"צוות 10", "צוות 11", "צוות 12"},
		"פארן":  {"צוות 13", "צוות 14", "צוות 15"},
	}
}

// HasUnit reports whether the unit exists in the catalog.
func (c Catalog) HasUnit(unit string) bool {
	_, ok := c[unit]
	return ok
}

// Valid reports whether team is a member of the team set of unit.
func (c Catalog) Valid(unit, team string) bool {
	teams, ok := c[unit]
	if !ok {
		return false
	}
	for _, t := range teams {
		if t == team {
			return true
		}
	}
	return false
}
