// Package lookup resolves raw hex identifiers to display data from static
// reference tables. Resolution never fails: a miss yields an empty Record.
package lookup

import "sort"

// Reference table names.
const (
	TableSpecies   = "species"
	TableMoves     = "moves"
	TableItems     = "items"
	TableBadges    = "badges"
	TableMapGroups = "map_groups"
	TableMaps      = "maps"
)

// Tables lists every reference table.
var Tables = []string{TableSpecies, TableMoves, TableItems, TableBadges, TableMapGroups, TableMaps}

// Record is one resolved row.
type Record struct {
	Found  bool
	Fields map[string]string
}

// Field returns the named field, or fallback when the record or field is missing.
func (r Record) Field(name, fallback string) string {
	if !r.Found {
		return fallback
	}
	v, ok := r.Fields[name]
	if !ok || v == "" {
		return fallback
	}
	return v
}

// Service resolves a key in a table.
type Service interface {
	Resolve(table, key string) Record
}

// Entry is one row of a table, used to copy tables between backends.
type Entry struct {
	Table  string
	Key    string
	Fields map[string]string
}

// Enumerator lists all rows of a backend.
type Enumerator interface {
	Entries() []Entry
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
