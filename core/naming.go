package core

import (
	"strings"
	"summarycube/criteria"
	"summarycube/cubeerr"
)

// Pluralize maps a canonical column name to its query-facing form. The
// organism field is singular on both sides.
func Pluralize(name string) string {
	if name == "" || name == criteria.OrganismOntologyTermID || strings.HasSuffix(name, "s") {
		return name
	}
	return name + "s"
}

func Depluralize(name string) string {
	if name == criteria.OrganismOntologyTermID || !strings.HasSuffix(name, "s") {
		return name
	}
	return name[:len(name)-1]
}

// NameMap is the lookup between query-facing criteria field names and
// canonical cube column names. It is built once per snapshot.
type NameMap struct {
	canonical map[string]string
	plural    map[string]string
}

// NewNameMap registers every canonical column name and every field of the
// given criteria variants. Two canonical names that share a query-facing
// name are a schema mismatch.
func NewNameMap(columns []string, variants []*criteria.Variant) (*NameMap, error) {
	names := &NameMap{
		canonical: make(map[string]string),
		plural:    make(map[string]string),
	}
	for _, column := range columns {
		if err := names.add(column, column); err != nil {
			return nil, err
		}
		if err := names.add(Pluralize(column), column); err != nil {
			return nil, err
		}
		names.plural[column] = Pluralize(column)
	}
	for _, variant := range variants {
		for _, spec := range variant.Fields {
			canonical := spec.Name
			if !spec.Scalar {
				canonical = Depluralize(spec.Name)
			}
			if err := names.add(spec.Name, canonical); err != nil {
				return nil, err
			}
		}
	}
	return names, nil
}

func (names *NameMap) add(field, canonical string) error {
	if existing, ok := names.canonical[field]; ok && existing != canonical {
		return cubeerr.SchemaMismatchf("name %q maps to both %q and %q", field, existing, canonical)
	}
	names.canonical[field] = canonical
	return nil
}

// Canonical resolves a criteria field name to a cube column name.
func (names *NameMap) Canonical(field string) (string, bool) {
	canonical, ok := names.canonical[field]
	return canonical, ok
}

// Plural returns the query-facing name of a canonical column.
func (names *NameMap) Plural(canonical string) (string, bool) {
	plural, ok := names.plural[canonical]
	return plural, ok
}

// Candidates lists the criteria field names that may constrain a canonical
// column, singular first.
func (names *NameMap) Candidates(canonical string) []string {
	plural, ok := names.plural[canonical]
	if !ok || plural == canonical {
		return []string{canonical}
	}
	return []string{canonical, plural}
}
