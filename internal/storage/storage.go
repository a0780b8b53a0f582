// Package storage persists uploaded files (expense receipts) and hands
// back opaque URLs for the owning records.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage saves an uploaded file and returns the URL to reference it by.
type Storage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// LocalDisk stores uploads under BaseDir and serves them under URLPrefix.
type LocalDisk struct {
	BaseDir   string
	URLPrefix string
}

// NewLocalDisk creates the upload directory if needed.
func NewLocalDisk(baseDir, urlPrefix string) (*LocalDisk, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", baseDir, err)
	}
	return &LocalDisk{BaseDir: baseDir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save writes the file under a random name, keeping only the original
// extension so client-supplied names never touch the filesystem. A
// cancelled context aborts before anything is written.
func (l *LocalDisk) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	path := filepath.Join(l.BaseDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("flush upload %s: %w", path, err)
	}
	return l.URLPrefix + "/" + name, nil
}
