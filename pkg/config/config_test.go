package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("METAS_TEST_NAME", "from-env")
	p := writeFile(t, "name: ${METAS_TEST_NAME}\nport: 9090\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" || s.Port != 9090 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadValidates(t *testing.T) {
	p := writeFile(t, "port: 0\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Name: "default", Port: 8080}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if s.Name != "default" {
		t.Errorf("defaults overwritten: %+v", s)
	}

	p := writeFile(t, "port: 7070\n")
	found, err = LoadOptional(p, &s)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if s.Port != 7070 || s.Name != "default" {
		t.Errorf("got %+v", s)
	}
}
