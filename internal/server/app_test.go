package server

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Antoney20/archives/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	dir := t.TempDir()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.DatabaseDSN = "file:" + filepath.Join(dir, "app.db")
	cfg.StorageRoot = filepath.Join(dir, "media")
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func TestNewApp_RunAndStop(t *testing.T) {
	var logs bytes.Buffer
	app, err := NewApp(context.Background(), testConfig(t), &logs)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Contains(t, logs.String(), "App stopped")
	assert.Error(t, app.db.Ping(), "db must be closed")
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "mysql"

	_, err := NewApp(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenDB_UnreachablePostgres(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = config.DriverPostgres
	cfg.DatabaseDSN = "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1"

	_, _, err := openDB(context.Background(), cfg)
	assert.ErrorContains(t, err, "db ping error")
}
