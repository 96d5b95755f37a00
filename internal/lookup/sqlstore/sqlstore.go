// Package sqlstore serves reference lookups from a SQL table through gorm,
// with a read-through cache in front.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wramwatch/wramwatch/internal/cache"
	"github.com/wramwatch/wramwatch/internal/lookup"
)

// ReferenceEntry is one row of any reference table.
type ReferenceEntry struct {
	ID     uint              `gorm:"primarykey"`
	Table  string            `gorm:"column:ref_table;size:32;uniqueIndex:idx_reference_row"`
	Key    string            `gorm:"column:ref_key;size:16;uniqueIndex:idx_reference_row"`
	Fields datatypes.JSONMap `gorm:"column:fields"`
}

func (ReferenceEntry) TableName() string {
	return "reference_entries"
}

// Store implements lookup.Service over a gorm database.
type Store struct {
	db    *gorm.DB
	cache *cache.LookupCache[lookup.Record]
	log   *slog.Logger
}

// New migrates the schema and returns a store.
func New(db *gorm.DB, log *slog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&ReferenceEntry{}); err != nil {
		return nil, fmt.Errorf("migrating reference table: %w", err)
	}
	return &Store{
		db:    db,
		cache: cache.NewLookupCache[lookup.Record](),
		log:   log,
	}, nil
}

// Import upserts every entry of src and returns the number written.
func (s *Store) Import(ctx context.Context, src lookup.Enumerator) (int, error) {
	entries := src.Entries()
	if len(entries) == 0 {
		return 0, nil
	}

	rows := make([]ReferenceEntry, 0, len(entries))
	for _, e := range entries {
		fields := make(datatypes.JSONMap, len(e.Fields))
		for k, v := range e.Fields {
			fields[k] = v
		}
		rows = append(rows, ReferenceEntry{Table: e.Table, Key: e.Key, Fields: fields})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ref_table"}, {Name: "ref_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"fields"}),
		}).
		CreateInBatches(rows, 500).Error
	if err != nil {
		return 0, fmt.Errorf("importing reference entries: %w", err)
	}

	s.cache.Reset()
	return len(rows), nil
}

// Resolve implements lookup.Service. Database errors are logged and treated as misses.
func (s *Store) Resolve(table, key string) lookup.Record {
	if rec, ok := s.cache.Get(table, key); ok {
		return rec
	}

	var row ReferenceEntry
	err := s.db.Where("ref_table = ? AND ref_key = ?", table, key).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.cache.Set(table, key, lookup.Record{})
		return lookup.Record{}
	case err != nil:
		s.log.Warn("Reference lookup failed", "table", table, "key", key, "error", err)
		return lookup.Record{}
	}

	rec := lookup.Record{Found: true, Fields: make(map[string]string, len(row.Fields))}
	for k, v := range row.Fields {
		rec.Fields[k] = fmt.Sprint(v)
	}
	s.cache.Set(table, key, rec)
	return rec
}

// Count returns the number of rows in a table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&ReferenceEntry{}).Where("ref_table = ?", table).Count(&n).Error
	return n, err
}

// CacheStats returns cache hits and misses.
func (s *Store) CacheStats() (hits, misses int) {
	return s.cache.Hits.Value(), s.cache.Misses.Value()
}
