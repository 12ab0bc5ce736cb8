// Package apps persists registered tenants. Implementations exist for
// PostgreSQL and SQLite; both are bound to a dbx.DBTX so they can run inside
// a transaction.
package apps

import (
	"context"

	"github.com/Antoney20/archives/internal/server/models"
)

type Repository interface {
	// Create inserts app. A duplicate name or token digest is
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, app *models.App) (*models.App, error)
	GetByName(ctx context.Context, name string) (*models.App, error)
	TokenHashExists(ctx context.Context, hash []byte) (bool, error)
	UpdateTokenHash(ctx context.Context, id string, hash []byte) error
	SetActive(ctx context.Context, name string, active bool) (*models.App, error)
	// Toggle flips is_active in a single statement and returns the new row.
	Toggle(ctx context.Context, name string) (*models.App, error)
	List(ctx context.Context) ([]*models.App, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(row rowScanner) (*models.App, error) {
	app := &models.App{}
	if err := row.Scan(&app.ID, &app.Name, &app.TokenHash, &app.IsActive, &app.CreatedAt); err != nil {
		return nil, err
	}
	return app, nil
}
