// Package files is the metadata index for stored files. Every lookup is
// scoped to the owning app and ignores soft-deleted rows.
package files

import (
	"context"
	"fmt"
	"strings"

	"github.com/Antoney20/archives/internal/server/models"
)

type Repository interface {
	// Create inserts a row for bytes already on disk.
	Create(ctx context.Context, file *models.StoredFile) error
	// GetActive returns the non-deleted file id owned by appID, or
	// common.ErrorNotFound.
	GetActive(ctx context.Context, id, appID string) (*models.StoredFile, error)
	// MarkDeleted flips is_deleted for a live row. A missing, foreign or
	// already deleted row is common.ErrorNotFound.
	MarkDeleted(ctx context.Context, id, appID string) error
	// List returns live rows for appID, newest first. An empty category means
	// no filter.
	List(ctx context.Context, appID string, category models.Category) ([]*models.StoredFile, error)
	// ListAll returns rows of every app matching f, deleted ones included
	// unless f says otherwise, newest first.
	ListAll(ctx context.Context, f Filter) ([]*models.StoredFile, error)
}

// Filter narrows ListAll. Zero values match everything.
type Filter struct {
	AppName  string
	Category models.Category
	// Deleted selects live (false) or soft-deleted (true) rows; nil is both.
	Deleted *bool
	// Search is a case-insensitive substring of original_name or app_name.
	Search string
}

// clause renders f as a WHERE clause. placeholder formats the n-th bind
// parameter and like is the dialect's case-insensitive match operator.
func (f Filter) clause(placeholder func(n int) string, like string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, vals ...any) {
		ph := make([]any, len(vals))
		for i, v := range vals {
			args = append(args, v)
			ph[i] = placeholder(len(args))
		}
		conds = append(conds, fmt.Sprintf(format, ph...))
	}

	if f.AppName != "" {
		add("app_name = %s", f.AppName)
	}
	if f.Category != "" {
		add("category = %s", string(f.Category))
	}
	if f.Deleted != nil {
		add("is_deleted = %s", *f.Deleted)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		add("(original_name "+like+" %s ESCAPE '\\' OR app_name "+like+" %s ESCAPE '\\')", pattern, pattern)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const fileColumns = `id, app_id, app_name, original_name, stored_name, category, mime_type,
		 size_bytes, relative_path, uploaded_at, is_deleted`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.StoredFile, error) {
	f := &models.StoredFile{}
	err := row.Scan(&f.ID, &f.AppID, &f.AppName, &f.OriginalName, &f.StoredName, &f.Category,
		&f.MimeType, &f.SizeBytes, &f.RelativePath, &f.UploadedAt, &f.IsDeleted)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func collect(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*models.StoredFile, error) {
	result := make([]*models.StoredFile, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
