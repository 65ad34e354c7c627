package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirStorage writes snapshot objects below a local directory. It stands in for
// S3 when no bucket is configured.
type DirStorage struct {
	root string
}

// NewDirStorage creates root if needed.
func NewDirStorage(root string) (*DirStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("dir storage: root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("dir storage: create root: %w", err)
	}
	return &DirStorage{root: root}, nil
}

// Save writes r to root/name atomically and returns the file path.
func (d *DirStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := filepath.Clean(filepath.FromSlash(strings.TrimLeft(name, "/")))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("dir storage: invalid name %q", name)
	}

	target := filepath.Join(d.root, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("dir storage: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("dir storage: create temp: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("dir storage: write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("dir storage: close %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("dir storage: rename %s: %w", rel, err)
	}
	return target, nil
}
