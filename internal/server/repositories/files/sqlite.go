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

// SQLiteRepository implements the metadata index for single-node deployments.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, f *models.StoredFile) error {
	query := `
		INSERT INTO stored_files (id, app_id, app_name, original_name, stored_name, category,
			mime_type, size_bytes, relative_path, uploaded_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
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

func (r *SQLiteRepository) GetActive(ctx context.Context, id, appID string) (*models.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM stored_files
		WHERE id = ? AND app_id = ? AND is_deleted = 0`

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
func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id, appID string) error {
	query := `UPDATE stored_files SET is_deleted = 1
		WHERE id = ? AND app_id = ? AND is_deleted = 0`

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

func (r *SQLiteRepository) List(ctx context.Context, appID string, category models.Category) ([]*models.StoredFile, error) {
	query := `SELECT ` + fileColumns + ` FROM stored_files
		WHERE app_id = ? AND is_deleted = 0`
	args := []any{appID}
	if category != "" {
		query += ` AND category = ?`
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

// ListAll relies on SQLite's LIKE being case-insensitive for ASCII.
func (r *SQLiteRepository) ListAll(ctx context.Context, f Filter) ([]*models.StoredFile, error) {
	where, args := f.clause(func(int) string { return "?" }, "LIKE")
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
