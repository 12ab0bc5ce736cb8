package repomanager

import (
	"context"
	"database/sql"

	"github.com/Antoney20/archives/internal/dbx"
	"github.com/Antoney20/archives/internal/server/migrations"
	"github.com/Antoney20/archives/internal/server/repositories/apps"
	"github.com/Antoney20/archives/internal/server/repositories/files"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. SQLite allows a
// single writer, so callers should cap the pool at one open connection and
// use only the transaction handle inside dbx.WithTx.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Apps(db dbx.DBTX) apps.Repository {
	return apps.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, goose.DialectSQLite3, migrations.SQLiteDir)
}

func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}
