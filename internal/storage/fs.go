package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileExt is appended to every key to form its file name.
const fileExt = ".json"

// FS implements Provider with one file per key under a data directory.
type FS struct {
	root string // absolute path to data directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute data directory.
func (f *FS) Root() string {
	return f.root
}

// keyPath maps a key to its file, rejecting keys that would leave the root.
func (f *FS) keyPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("storage: empty key")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("storage: invalid key: %q", key)
	}
	return filepath.Join(f.root, key+fileExt), nil
}

// Location returns the file backing key.
func (f *FS) Location(key string) (string, error) {
	return f.keyPath(key)
}

// Read returns the contents of the file backing key.
func (f *FS) Read(key string) ([]byte, error) {
	p, err := f.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Write atomically writes value: tmp file → fsync → rename.
func (f *FS) Write(key string, value []byte) error {
	p, err := f.keyPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".metas-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the file backing key.
func (f *FS) Delete(key string) error {
	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
