package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/logging"
	"github.com/Antoney20/archives/internal/server/auth"
	"github.com/Antoney20/archives/internal/server/category"
	"github.com/Antoney20/archives/internal/server/metrics"
	"github.com/Antoney20/archives/internal/server/models"
	"github.com/Antoney20/archives/internal/server/repositories/files"
	"github.com/Antoney20/archives/internal/server/repositories/repomanager"
	"github.com/Antoney20/archives/internal/server/storage"
	"github.com/google/uuid"
)

// Credentials identify the calling app.
type Credentials struct {
	AppName string
	Token   string
}

type UploadRequest struct {
	Credentials
	Origin string

	// Body is the payload; nil means no file was sent.
	Body        io.Reader
	Filename    string
	ContentType string
	// DeclaredSize is the client's claimed length, 0 when unknown. It is
	// only compared against the bytes written, never stored.
	DeclaredSize int64
}

type DeleteRequest struct {
	Credentials
	Origin string
	FileID string
}

type ListRequest struct {
	Credentials
	// Category filters the listing; empty lists everything.
	Category string
}

// FileDescriptor is what clients see of a stored file.
type FileDescriptor struct {
	ID           string          `json:"id"`
	URL          string          `json:"url"`
	OriginalName string          `json:"original_name"`
	Category     models.Category `json:"category"`
	MimeType     string          `json:"mime_type"`
	SizeBytes    int64           `json:"size_bytes"`
	UploadedAt   time.Time       `json:"uploaded_at"`
}

type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

type FileList struct {
	Count int               `json:"count"`
	Files []*FileDescriptor `json:"files"`
}

// AdminFileEntry is the management view of a stored file, deleted or not.
type AdminFileEntry struct {
	*FileDescriptor
	AppName      string `json:"app"`
	StoredName   string `json:"stored_name"`
	RelativePath string `json:"relative_path"`
	IsDeleted    bool   `json:"is_deleted"`
}

type AdminFileList struct {
	Count int               `json:"count"`
	Files []*AdminFileEntry `json:"files"`
}

// OriginPolicy decides which request origins may mutate storage. A request
// without an Origin is always allowed.
type OriginPolicy struct {
	allowed map[string]struct{}
}

func NewOriginPolicy(origins []string) OriginPolicy {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return OriginPolicy{allowed: allowed}
}

func (p OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return true
	}
	_, ok := p.allowed[origin]
	return ok
}

// PublicURL joins the media base URL and a relative path with one slash.
func PublicURL(base, relPath string) string {
	return strings.TrimRight(base, "/") + "/" + relPath
}

// FileService runs the storage pipeline: upload, delete and listing of
// tenant files.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	apps        *AppService
	disk        *storage.Disk
	origins     OriginPolicy
	baseURL     string
	observer    metrics.Observer
	logger      logging.Logger
}

type FileServiceOptions struct {
	Disk         *storage.Disk
	Origins      OriginPolicy
	BaseMediaURL string
	Observer     metrics.Observer
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, apps *AppService, opts FileServiceOptions, logger logging.Logger) *FileService {
	observer := opts.Observer
	if observer == nil {
		observer = metrics.NopObserver{}
	}
	return &FileService{
		db:          db,
		repomanager: m,
		apps:        apps,
		disk:        opts.Disk,
		origins:     opts.Origins,
		baseURL:     opts.BaseMediaURL,
		observer:    observer,
		logger:      logger.With("module", "files"),
	}
}

// Upload stores the payload under app/category/stored_name and records its
// metadata. Bytes reach disk before the row is inserted; if the insert
// fails the bytes are removed again.
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (desc *FileDescriptor, err error) {
	start := time.Now()
	var cat models.Category
	var written int64
	defer func() {
		s.observer.RecordUpload(time.Since(start), string(cat), written, err)
	}()

	app, err := s.admit(ctx, req.Credentials, req.Origin, true)
	if err != nil {
		return nil, err
	}
	if req.Body == nil {
		return nil, fmt.Errorf("%w: no file provided", common.ErrorInvalidInput)
	}

	cat = category.Resolve(req.ContentType)
	id := uuid.New()
	storedName := strings.ReplaceAll(id.String(), "-", "") + "." + storedExtension(req.Filename)
	relPath := app.Name + "/" + string(cat) + "/" + storedName

	written, err = s.disk.Write(ctx, relPath, req.Body)
	if err != nil {
		s.logger.Error(ctx, "write failed", "app", app.Name, "path", relPath, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorStorageIO, err)
	}
	if req.DeclaredSize > 0 && req.DeclaredSize != written {
		s.logger.Debug(ctx, "declared size ignored", "declared", req.DeclaredSize, "written", written)
	}

	file := &models.StoredFile{
		ID:           id.String(),
		AppID:        app.ID,
		AppName:      app.Name,
		OriginalName: req.Filename,
		StoredName:   storedName,
		Category:     cat,
		MimeType:     req.ContentType,
		SizeBytes:    written,
		RelativePath: relPath,
		UploadedAt:   now(),
	}
	if err = s.repomanager.Files(s.db).Create(ctx, file); err != nil {
		if rmErr := s.disk.Remove(relPath); rmErr != nil {
			s.logger.Error(ctx, "orphan cleanup failed", "path", relPath, "error", rmErr)
		}
		return nil, internalError("record file", err)
	}

	s.logger.Info(ctx, "file stored", "app", app.Name, "id", file.ID, "category", cat, "size_bytes", written)
	return s.describe(file), nil
}

// Delete removes a file's bytes and soft-deletes its row. A file that is
// missing, deleted or owned by another app is common.ErrorNotFound.
func (s *FileService) Delete(ctx context.Context, req DeleteRequest) (res *DeleteResult, err error) {
	start := time.Now()
	defer func() { s.observer.RecordDelete(time.Since(start), err) }()

	app, err := s.admit(ctx, req.Credentials, req.Origin, true)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Files(s.db)
	file, err := repo.GetActive(ctx, req.FileID, app.ID)
	if err != nil {
		return nil, classify("lookup file", err)
	}

	// Bytes go first; a retry after a crash here still succeeds because a
	// missing file is tolerated.
	if rmErr := s.disk.Remove(file.RelativePath); rmErr != nil {
		s.logger.Warn(ctx, "remove failed", "app", app.Name, "path", file.RelativePath, "error", rmErr)
	}

	if err = repo.MarkDeleted(ctx, file.ID, app.ID); err != nil {
		return nil, classify("mark deleted", err)
	}

	s.logger.Info(ctx, "file deleted", "app", app.Name, "id", file.ID)
	return &DeleteResult{Deleted: true, ID: file.ID}, nil
}

// List returns the app's live files, newest first. No origin check is done
// here, unlike Upload and Delete.
func (s *FileService) List(ctx context.Context, req ListRequest) (res *FileList, err error) {
	start := time.Now()
	defer func() { s.observer.RecordList(time.Since(start), err) }()

	app, err := s.admit(ctx, req.Credentials, "", false)
	if err != nil {
		return nil, err
	}

	rows, err := s.repomanager.Files(s.db).List(ctx, app.ID, models.Category(req.Category))
	if err != nil {
		return nil, internalError("list files", err)
	}

	out := &FileList{Count: len(rows), Files: make([]*FileDescriptor, 0, len(rows))}
	for _, f := range rows {
		out.Files = append(out.Files, s.describe(f))
	}
	return out, nil
}

// AdminList returns stored files across all apps for management and
// auditing. Soft-deleted rows are included unless the filter excludes them.
func (s *FileService) AdminList(ctx context.Context, role auth.Role, f files.Filter) (*AdminFileList, error) {
	if !role.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	f.AppName = strings.TrimSpace(f.AppName)
	f.Search = strings.TrimSpace(f.Search)

	rows, err := s.repomanager.Files(s.db).ListAll(ctx, f)
	if err != nil {
		return nil, internalError("list all files", err)
	}

	out := &AdminFileList{Count: len(rows), Files: make([]*AdminFileEntry, 0, len(rows))}
	for _, r := range rows {
		out.Files = append(out.Files, &AdminFileEntry{
			FileDescriptor: s.describe(r),
			AppName:        r.AppName,
			StoredName:     r.StoredName,
			RelativePath:   r.RelativePath,
			IsDeleted:      r.IsDeleted,
		})
	}
	return out, nil
}

// Admit runs the origin and credential checks of Upload and Delete without
// touching storage, so callers can reject a request before reading its body.
func (s *FileService) Admit(ctx context.Context, creds Credentials, origin string) error {
	_, err := s.admit(ctx, creds, origin, true)
	return err
}

func (s *FileService) admit(ctx context.Context, creds Credentials, origin string, checkOrigin bool) (*models.App, error) {
	if checkOrigin && !s.origins.Allows(origin) {
		s.logger.Warn(ctx, "origin rejected", "origin", origin)
		return nil, common.ErrorOriginDenied
	}
	app, err := s.apps.Authenticate(ctx, creds.AppName, creds.Token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Debug(ctx, "credentials rejected", "app", creds.AppName)
		}
		return nil, err
	}
	return app, nil
}

// storedExtension is category.Extension, with separators ruled out so the
// stored name stays a single path element.
func storedExtension(filename string) string {
	ext := category.Extension(filename)
	if strings.ContainsAny(ext, "/\\\x00") {
		return common.DefaultExtension
	}
	return ext
}

func (s *FileService) describe(f *models.StoredFile) *FileDescriptor {
	return &FileDescriptor{
		ID:           f.ID,
		URL:          PublicURL(s.baseURL, f.RelativePath),
		OriginalName: f.OriginalName,
		Category:     f.Category,
		MimeType:     f.MimeType,
		SizeBytes:    f.SizeBytes,
		UploadedAt:   f.UploadedAt,
	}
}
