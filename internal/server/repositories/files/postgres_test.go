package files

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/server/models"
	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "app_id", "app_name", "original_name", "stored_name", "category",
	"mime_type", "size_bytes", "relative_path", "uploaded_at", "is_deleted"}

func sampleFile(uploaded time.Time) *models.StoredFile {
	return &models.StoredFile{
		ID:           "f1",
		AppID:        "a1",
		AppName:      "alpha",
		OriginalName: "photo.png",
		StoredName:   "0123456789abcdef0123456789abcdef.png",
		Category:     models.CategoryImages,
		MimeType:     "image/png",
		SizeBytes:    2048,
		RelativePath: "alpha/images/0123456789abcdef0123456789abcdef.png",
		UploadedAt:   uploaded,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+stored_files\s*\(.*\)\s*VALUES\s*\(\$1,.*\$10,\s*false\)\s*$`
	now := time.Now().UTC()
	f := sampleFile(now)

	mock.ExpectExec(q).
		WithArgs(f.ID, f.AppID, f.AppName, f.OriginalName, f.StoredName, "images",
			f.MimeType, f.SizeBytes, f.RelativePath, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+stored_files`).
		WillReturnError(errors.New("insert fail"))

	err := repo.Create(context.Background(), sampleFile(time.Now()))
	if err == nil || !regexp.MustCompile(`db error: .*insert fail`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetActive(t *testing.T) {
	q := `(?s)^SELECT\s+id,.*FROM\s+stored_files\s+WHERE\s+id\s*=\s*\$1\s+AND\s+app_id\s*=\s*\$2\s+AND\s+is_deleted\s*=\s*false\s*$`

	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		now := time.Now().UTC()
		f := sampleFile(now)
		mock.ExpectQuery(q).
			WithArgs("f1", "a1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(f.ID, f.AppID, f.AppName, f.OriginalName,
				f.StoredName, "images", f.MimeType, f.SizeBytes, f.RelativePath, now, false))

		got, err := repo.GetActive(context.Background(), "f1", "a1")
		if err != nil {
			t.Fatalf("GetActive error: %v", err)
		}
		if got.Category != models.CategoryImages || got.SizeBytes != 2048 || got.RelativePath != f.RelativePath {
			t.Fatalf("unexpected file: %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("f1", "other").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetActive(context.Background(), "f1", "other")
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("want common.ErrorNotFound, got %v", err)
		}
	})
}

func TestMarkDeleted(t *testing.T) {
	q := `(?s)^UPDATE\s+stored_files\s+SET\s+is_deleted\s*=\s*true\s+WHERE\s+id\s*=\s*\$1\s+AND\s+app_id\s*=\s*\$2\s+AND\s+is_deleted\s*=\s*false\s*$`

	tests := []struct {
		name    string
		result  func(m sqlmock.Sqlmock)
		wantErr error
		wantMsg string
	}{
		{
			name: "flipped",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(q).WithArgs("f1", "a1").WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already deleted",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(q).WithArgs("f1", "a1").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: common.ErrorNotFound,
		},
		{
			name: "too many rows",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(q).WithArgs("f1", "a1").WillReturnResult(sqlmock.NewResult(0, 2))
			},
			wantMsg: `unexpected rows affected: 2`,
		},
		{
			name: "exec error",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec(q).WithArgs("f1", "a1").WillReturnError(errors.New("update failed"))
			},
			wantMsg: `db error: .*update failed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()
			tt.result(mock)

			err := repo.MarkDeleted(context.Background(), "f1", "a1")
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
			case tt.wantMsg != "":
				if err == nil || !regexp.MustCompile(tt.wantMsg).MatchString(err.Error()) {
					t.Fatalf("want error matching %q, got %v", tt.wantMsg, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestList_NoFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+stored_files\s+WHERE\s+app_id\s*=\s*\$1\s+AND\s+is_deleted\s*=\s*false\s+ORDER\s+BY\s+uploaded_at\s+DESC$`
	now := time.Now().UTC()
	mock.ExpectQuery(q).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("f2", "a1", "alpha", "b.txt", "s2.txt", "text", "text/plain", int64(3), "alpha/text/s2.txt", now, false).
			AddRow("f1", "a1", "alpha", "a.png", "s1.png", "images", "image/png", int64(5), "alpha/images/s1.png", now.Add(-time.Minute), false))

	got, err := repo.List(context.Background(), "a1", "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "f2" || got[1].Category != models.CategoryImages {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestList_CategoryFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*WHERE\s+app_id\s*=\s*\$1\s+AND\s+is_deleted\s*=\s*false\s+AND\s+category\s*=\s*\$2\s+ORDER\s+BY\s+uploaded_at\s+DESC$`
	mock.ExpectQuery(q).
		WithArgs("a1", "documents").
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background(), "a1", models.CategoryDocuments)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+stored_files`).WillReturnError(errors.New("select fail"))

	_, err := repo.List(context.Background(), "a1", "")
	if err == nil || !regexp.MustCompile(`failed to select files: .*select fail`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}

func TestList_RowsError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("f1", "a1", "alpha", "a.png", "s1.png", "images", "image/png", int64(5), "p", time.Now(), false).
		RowError(0, errors.New("row broke"))
	mock.ExpectQuery(`(?s)SELECT.*FROM\s+stored_files`).WillReturnRows(rows)

	_, err := repo.List(context.Background(), "a1", "")
	if err == nil || !regexp.MustCompile(`db error: .*row broke`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped rows error, got %v", err)
	}
}

func TestListAll_NoFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+stored_files\s+ORDER\s+BY\s+uploaded_at\s+DESC$`
	mock.ExpectQuery(q).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("f1", "a2", "beta", "a.png", "s1.png", "images", "image/png", int64(5), "beta/images/s1.png", time.Now(), true))

	got, err := repo.ListAll(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(got) != 1 || !got[0].IsDeleted || got[0].AppName != "beta" {
		t.Fatalf("unexpected list: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAll_AllFilters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+stored_files\s+WHERE\s+app_name\s*=\s*\$1\s+AND\s+category\s*=\s*\$2\s+AND\s+is_deleted\s*=\s*\$3\s+AND\s+\(original_name\s+ILIKE\s+\$4\s+ESCAPE\s+'\\'\s+OR\s+app_name\s+ILIKE\s+\$5\s+ESCAPE\s+'\\'\)\s+ORDER\s+BY\s+uploaded_at\s+DESC$`
	mock.ExpectQuery(q).
		WithArgs("alpha", "images", false, `%50\%_off%`, `%50\%_off%`).
		WillReturnRows(sqlmock.NewRows(columns))

	deleted := false
	got, err := repo.ListAll(context.Background(), Filter{
		AppName:  "alpha",
		Category: models.CategoryImages,
		Deleted:  &deleted,
		Search:   "50%_off",
	})
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAll_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+stored_files`).WillReturnError(errors.New("select fail"))

	_, err := repo.ListAll(context.Background(), Filter{AppName: "alpha"})
	if err == nil || !regexp.MustCompile(`failed to select files: .*select fail`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped select error, got %v", err)
	}
}
