package services

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Antoney20/archives/internal/dbx"
	"github.com/Antoney20/archives/internal/logging"
	"github.com/Antoney20/archives/internal/server/auth"
	"github.com/Antoney20/archives/internal/server/models"
	"github.com/Antoney20/archives/internal/server/repositories/files"
	"github.com/Antoney20/archives/internal/server/repositories/repomanager"
	"github.com/Antoney20/archives/internal/server/storage"
	"github.com/Antoney20/archives/internal/server/testdb"
	"github.com/stretchr/testify/require"
)

const testMediaURL = "http://cdn.test/media/"

type harness struct {
	db    *sql.DB
	root  string
	apps  *AppService
	files *FileService
}

func newHarness(t *testing.T) *harness {
	return newHarnessWith(t, repomanager.NewSQLiteRepositoryManager(), []string{"https://allowed.test"})
}

func newHarnessWith(t *testing.T, m repomanager.RepositoryManager, origins []string) *harness {
	t.Helper()
	db := testdb.OpenSQLite(t)
	root := t.TempDir()
	logger := logging.NewNopLogger()

	appSvc := NewAppService(db, m, logger)
	fileSvc := NewFileService(db, m, appSvc, FileServiceOptions{
		Disk:         storage.NewDisk(root),
		Origins:      NewOriginPolicy(origins),
		BaseMediaURL: testMediaURL,
	}, logger)

	return &harness{db: db, root: root, apps: appSvc, files: fileSvc}
}

func (h *harness) register(t *testing.T, name string) Credentials {
	t.Helper()
	app, token, err := h.apps.Register(context.Background(), auth.RoleAdmin, name)
	require.NoError(t, err)
	return Credentials{AppName: app.Name, Token: token}
}

func (h *harness) upload(t *testing.T, creds Credentials, filename, contentType, body string) *FileDescriptor {
	t.Helper()
	desc, err := h.files.Upload(context.Background(), UploadRequest{
		Credentials:  creds,
		Body:         strings.NewReader(body),
		Filename:     filename,
		ContentType:  contentType,
		DeclaredSize: int64(len(body)),
	})
	require.NoError(t, err)
	return desc
}

func (h *harness) countRows(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, h.db.QueryRow(`SELECT COUNT(*) FROM stored_files`).Scan(&n))
	return n
}

// diskFiles lists every regular file under the storage root, slash separated.
func (h *harness) diskFiles(t *testing.T) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(h.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(h.root, p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

// stubClock makes now() tick one second per call.
func stubClock(t *testing.T) {
	t.Helper()
	var mu sync.Mutex
	cur := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
	t.Cleanup(func() { now = orig })
}

// stubTokens makes newAppToken return the given tokens in order.
func stubTokens(t *testing.T, tokens ...string) {
	t.Helper()
	var mu sync.Mutex
	orig := newAppToken
	newAppToken = func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(tokens) == 0 {
			return orig()
		}
		tok := tokens[0]
		if len(tokens) > 1 {
			tokens = tokens[1:]
		}
		return tok, nil
	}
	t.Cleanup(func() { newAppToken = orig })
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

var _ io.Reader = failingReader{}

// createFailingManager wraps a real manager so that file inserts fail.
type createFailingManager struct {
	repomanager.RepositoryManager
	err error
}

func (m createFailingManager) Files(db dbx.DBTX) files.Repository {
	return createFailingRepo{Repository: m.RepositoryManager.Files(db), err: m.err}
}

type createFailingRepo struct {
	files.Repository
	err error
}

func (r createFailingRepo) Create(context.Context, *models.StoredFile) error { return r.err }
