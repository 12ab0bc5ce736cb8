package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/dbx"
	"github.com/Antoney20/archives/internal/server/models"
)

// PostgresRepository implements the metadata index over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.StoredFile) error {
	query := `
		INSERT INTO stored_files (id, app_id, app_name, original_name, stored_name, category,
			mime_type, size_bytes, relative_path, uploaded_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false)
	`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.AppID, f.AppName, f.OriginalName, f.StoredName, string(f.Category),
		f.MimeType, f.SizeBytes, f.RelativePath, f.UploadedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetActive(ctx context.Context, id, appID string) (*models.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM stored_files
		WHERE id = $1 AND app_id = $2 AND is_deleted = false`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, appID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// MarkDeleted is a conditional update, so of two concurrent callers exactly
// one sees a changed row.
func (r *PostgresRepository) MarkDeleted(ctx context.Context, id, appID string) error {
	query := `UPDATE stored_files SET is_deleted = true
		WHERE id = $1 AND app_id = $2 AND is_deleted = false`

	res, err := r.db.ExecContext(ctx, query, id, appID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ok, err := dbx.AffectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, appID string, category models.Category) ([]*models.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM stored_files
		WHERE app_id = $1 AND is_deleted = false`
	args := []any{appID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, string(category))
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context, f Filter) ([]*models.StoredFile, error) {
	where, args := f.clause(func(n int) string { return fmt.Sprintf("$%d", n) }, "ILIKE")
	query := `SELECT ` + fileColumns + ` FROM stored_files` + where + ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
