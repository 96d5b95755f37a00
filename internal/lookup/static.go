package lookup

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Reference file names inside the data directory.
const (
	MapsFile    = "maps.json"
	SpeciesFile = "pokemon_data.json"
	MovesFile   = "moves_data.json"
	BadgesFile  = "badges.csv"
	ItemsFile   = "items.csv"
)

// Static is an in-memory Service loaded from the reference files.
type Static struct {
	tables map[string]map[string]map[string]string
}

// NewStatic returns an empty store.
func NewStatic() *Static {
	s := &Static{tables: make(map[string]map[string]map[string]string, len(Tables))}
	for _, t := range Tables {
		s.tables[t] = make(map[string]map[string]string)
	}
	return s
}

// LoadDir loads every reference file from dir. A missing or malformed file is
// logged and leaves its table empty.
func LoadDir(dir string, logger *slog.Logger) *Static {
	s := NewStatic()
	loaders := []struct {
		file string
		load func(io.Reader) error
	}{
		{MapsFile, s.LoadMaps},
		{SpeciesFile, func(r io.Reader) error { return s.LoadJSONTable(TableSpecies, r) }},
		{MovesFile, func(r io.Reader) error { return s.LoadJSONTable(TableMoves, r) }},
		{BadgesFile, func(r io.Reader) error { return s.LoadCSVTable(TableBadges, "icon", r) }},
		{ItemsFile, func(r io.Reader) error { return s.LoadCSVTable(TableItems, "name", r) }},
	}

	for _, l := range loaders {
		path := filepath.Join(dir, l.file)
		if err := loadFile(path, l.load); err != nil {
			logger.Warn("Reference data unavailable", "file", path, "error", err)
			continue
		}
	}

	for _, t := range Tables {
		logger.Debug("Reference table loaded", "table", t, "rows", s.Len(t))
	}
	return s
}

func loadFile(path string, load func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return load(f)
}

// Set stores a row, replacing any existing one.
func (s *Static) Set(table, key string, fields map[string]string) {
	t, ok := s.tables[table]
	if !ok {
		t = make(map[string]map[string]string)
		s.tables[table] = t
	}
	t[key] = fields
}

// Len returns the number of rows in a table.
func (s *Static) Len(table string) int {
	return len(s.tables[table])
}

// Resolve implements Service.
func (s *Static) Resolve(table, key string) Record {
	fields, ok := s.tables[table][key]
	if !ok {
		return Record{}
	}
	return Record{Found: true, Fields: fields}
}

// Entries implements Enumerator in table then key order.
func (s *Static) Entries() []Entry {
	var out []Entry
	for _, table := range sortedKeys(s.tables) {
		rows := s.tables[table]
		for _, key := range sortedKeys(rows) {
			out = append(out, Entry{Table: table, Key: key, Fields: rows[key]})
		}
	}
	return out
}

// LoadJSONTable reads an object keyed by hex id whose values are objects of
// scalar fields.
func (s *Static) LoadJSONTable(table string, r io.Reader) error {
	var raw map[string]map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("decoding %s: %w", table, err)
	}
	for key, obj := range raw {
		fields := make(map[string]string, len(obj))
		for name, v := range obj {
			fields[name] = scalarString(v)
		}
		s.Set(table, key, fields)
	}
	return nil
}

type mapGroup struct {
	Name string            `json:"name"`
	Maps map[string]string `json:"maps"`
}

// LoadMaps reads the map table: groups keyed by hex id, each naming its maps.
// Rows land in map_groups (key GG) and maps (key GG/II).
func (s *Static) LoadMaps(r io.Reader) error {
	var raw map[string]mapGroup
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("decoding maps: %w", err)
	}
	for group, g := range raw {
		s.Set(TableMapGroups, group, map[string]string{"name": g.Name})
		for id, name := range g.Maps {
			s.Set(TableMaps, group+"/"+id, map[string]string{"name": name})
		}
	}
	return nil
}

// LoadCSVTable reads key,value rows. Rows with fewer than two columns are skipped.
func (s *Static) LoadCSVTable(table, field string, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", table, err)
		}
		if len(row) < 2 {
			continue
		}
		s.Set(table, row[0], map[string]string{field: row[1]})
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
