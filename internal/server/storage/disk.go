// Package storage writes and removes tenant files under a single root
// directory on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("path escapes storage root")

// Disk stores files below root. Relative paths use forward slashes on every
// platform.
type Disk struct {
	root     string
	dirMode  fs.FileMode
	fileMode fs.FileMode
}

func NewDisk(root string) *Disk {
	return &Disk{root: root, dirMode: 0o755, fileMode: 0o644}
}

func (d *Disk) Root() string {
	return d.root
}

// Path resolves relPath to a filesystem path, rejecting anything that would
// land outside the root.
func (d *Disk) Path(relPath string) (string, error) {
	clean := path.Clean("/" + relPath)
	if clean == "/" || clean != "/"+relPath {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, relPath)
	}
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Write streams r into relPath and returns the number of bytes written. The
// parent directory is created if needed. Data lands in a temp file in the
// same directory and is renamed into place only after fsync, so a failed
// write never leaves a partial file at relPath.
func (d *Disk) Write(ctx context.Context, relPath string, r io.Reader) (int64, error) {
	dst, err := d.Path(relPath)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, d.dirMode); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, writeErr := func() (int64, error) {
		n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
		if err != nil {
			_ = tmp.Close()
			return n, err
		}
		if err := tmp.Chmod(d.fileMode); err != nil {
			_ = tmp.Close()
			return n, err
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return n, err
		}
		return n, tmp.Close()
	}()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("write file: %w", writeErr)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("finalize file: %w", err)
	}

	return n, nil
}

// Remove deletes relPath. A file that is already gone is not an error.
func (d *Disk) Remove(relPath string) error {
	p, err := d.Path(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
