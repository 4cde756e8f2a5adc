package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempDir(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempDir(t)
	content := []byte(`[{"id":1}]`)
	if err := s.Write("gestorMetasApp", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("gestorMetasApp")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "gestorMetasApp.json")); err != nil {
		t.Errorf("backing file missing: %v", err)
	}
}

func TestReadMissingIsNotExist(t *testing.T) {
	s := tempDir(t)
	_, err := s.Read("absent")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempDir(t)
	_ = s.Write("del", []byte("bye"))
	if err := s.Delete("del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del"); err == nil {
		t.Error("expected error reading deleted key")
	}
	if err := s.Delete("del"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	s := tempDir(t)

	cases := []string{
		"",
		"../outside",
		"a/b",
		`a\b`,
		"..",
	}
	for _, k := range cases {
		if _, err := s.Read(k); err == nil {
			t.Errorf("expected error for key %q", k)
		}
		if err := s.Write(k, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", k)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempDir(t)
	_ = s.Write("atomic", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, ".metas-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestLocation(t *testing.T) {
	s := tempDir(t)
	loc, err := s.Location("k")
	if err != nil {
		t.Fatal(err)
	}
	if loc != filepath.Join(s.Root(), "k.json") {
		t.Errorf("location = %s", loc)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/metas-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "metas-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
