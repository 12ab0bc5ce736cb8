package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Antoney20/archives/internal/server/config"
	"github.com/Antoney20/archives/internal/server/repositories/repomanager"
)

// driverNames maps configured drivers to database/sql driver names.
var driverNames = map[string]string{
	config.DriverPostgres: "pgx",
	config.DriverSQLite:   "sqlite",
}

// openDB opens the metadata store, checks it is reachable and brings the
// schema up to date.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
	var m repomanager.RepositoryManager
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		m = repomanager.NewPostgresRepositoryManager()
	case config.DriverSQLite:
		m = repomanager.NewSQLiteRepositoryManager()
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := sql.Open(driverNames[cfg.DatabaseDriver], cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if cfg.DatabaseDriver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}
	return db, m, nil
}
