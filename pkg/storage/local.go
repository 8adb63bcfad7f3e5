package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// localDisk is the local-filesystem driver.
type localDisk struct {
	root    string
	baseURL string
}

// NewLocal returns a disk rooted at root. A relative root is resolved
// against the working directory.
func NewLocal(root, baseURL string) Disk {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &localDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *localDisk) abs(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(filepath.Clean("/"+path)))
}

func (d *localDisk) Put(_ context.Context, path string, content []byte, _ string) error {
	full := d.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	// Write then rename so readers never see a half-written file.
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		return fmt.Errorf("storage/local: rename %s: %w", path, err)
	}
	return nil
}

func (d *localDisk) Get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(d.abs(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: get %s: %w", path, err)
	}
	return data, nil
}

func (d *localDisk) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(d.abs(path))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (d *localDisk) Delete(_ context.Context, path string) error {
	err := os.Remove(d.abs(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *localDisk) URL(path string) string {
	clean := strings.TrimLeft(filepath.ToSlash(path), "/")
	if d.baseURL == "" {
		return "/" + clean
	}
	return d.baseURL + "/" + clean
}
