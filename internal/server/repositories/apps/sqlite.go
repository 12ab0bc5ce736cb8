package apps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/dbx"
	"github.com/Antoney20/archives/internal/server/models"
	"github.com/google/uuid"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, app *models.App) (*models.App, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO apps (id, name, token_hash, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, app.ID, app.Name, app.TokenHash, app.IsActive, app.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return app, nil
}

func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*models.App, error) {
	query :=
		`SELECT id, name, token_hash, is_active, created_at FROM apps
		 WHERE name = ?`

	app, err := scanApp(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return app, nil
}

func (r *SQLiteRepository) TokenHashExists(ctx context.Context, hash []byte) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM apps WHERE token_hash = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, hash).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *SQLiteRepository) UpdateTokenHash(ctx context.Context, id string, hash []byte) error {
	query := `UPDATE apps SET token_hash = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	ok, err := dbx.AffectedOne(res)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return common.ErrorNotFound
	}

	return nil
}

func (r *SQLiteRepository) SetActive(ctx context.Context, name string, active bool) (*models.App, error) {
	query :=
		`UPDATE apps SET is_active = ?
		 WHERE name = ?
		 RETURNING id, name, token_hash, is_active, created_at`

	return r.updateReturning(ctx, query, active, name)
}

func (r *SQLiteRepository) Toggle(ctx context.Context, name string) (*models.App, error) {
	query :=
		`UPDATE apps SET is_active = NOT is_active
		 WHERE name = ?
		 RETURNING id, name, token_hash, is_active, created_at`

	return r.updateReturning(ctx, query, name)
}

func (r *SQLiteRepository) updateReturning(ctx context.Context, query string, args ...any) (*models.App, error) {
	app, err := scanApp(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return app, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.App, error) {
	query :=
		`SELECT id, name, token_hash, is_active, created_at FROM apps
		 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.App, 0)
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
