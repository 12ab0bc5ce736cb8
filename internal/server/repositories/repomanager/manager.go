// Package repomanager vends dialect-specific repositories bound to a
// dbx.DBTX and runs the embedded goose migrations for that dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Antoney20/archives/internal/dbx"
	"github.com/Antoney20/archives/internal/server/migrations"
	"github.com/Antoney20/archives/internal/server/repositories/apps"
	"github.com/Antoney20/archives/internal/server/repositories/files"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Apps(db dbx.DBTX) apps.Repository
	Files(db dbx.DBTX) files.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// runMigrations points goose at the embedded migrations for dialect and
// applies everything under dir.
func runMigrations(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, dir)
}
