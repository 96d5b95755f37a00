// Package database opens the gorm connections used by the SQL lookup store.
package database

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wramwatch/wramwatch/internal/config"
)

// MemoryDSN is a shared in-memory SQLite database.
const MemoryDSN = "file::memory:?cache=shared"

// sqlitePragmas tune SQLite for a small, read-mostly reference table.
var sqlitePragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA cache_size = -8000;",
	"PRAGMA temp_store = MEMORY;",
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

// PostgresDSN builds a libpq connection string.
func PostgresDSN(cfg config.DBConfig) string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
}

// OpenPostgres connects and pings a Postgres database.
func OpenPostgres(cfg config.DBConfig, log *slog.Logger) (*gorm.DB, error) {
	log.Debug("Connecting to Postgres", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database file. An empty path opens an in-memory database.
func OpenSQLite(path string, log *slog.Logger) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = MemoryDSN
	}

	cfg := gormConfig()
	cfg.PrepareStmt = true
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", dsn, err)
	}

	pragmas := sqlitePragmas
	if path == "" {
		// WAL is not available for memory databases
		pragmas = pragmas[2:]
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	if err := ping(db); err != nil {
		return nil, err
	}
	log.Info("Using SQLite lookup database", "path", dsn)
	return db, nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
