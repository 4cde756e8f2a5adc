package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestStorageConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
	}{
		{"fs", StorageConfig{Driver: "fs", Path: "./data", Key: "k"}, false},
		{"empty driver defaults to fs", StorageConfig{Path: "./data", Key: "k"}, false},
		{"memory needs no path", StorageConfig{Driver: "memory", Key: "k"}, false},
		{"sqlite needs path", StorageConfig{Driver: "sqlite", Key: "k"}, true},
		{"unknown driver", StorageConfig{Driver: "redis", Path: "x", Key: "k"}, true},
		{"missing key", StorageConfig{Driver: "fs", Path: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStorageConfig_EmptyDriverNormalised(t *testing.T) {
	cfg := StorageConfig{Path: "./data", Key: "k"}
	_ = cfg.Validate()
	if cfg.Driver != StorageFS {
		t.Errorf("driver = %q, want %q", cfg.Driver, StorageFS)
	}
}

func TestAIConfig(t *testing.T) {
	cfg := AIConfig{}
	if err := cfg.Validate(); err != nil || cfg.Enabled() {
		t.Errorf("empty AI config: err=%v enabled=%v", err, cfg.Enabled())
	}
	cfg = AIConfig{APIKey: "k"}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled AI config without model should fail")
	}
	cfg = AIConfig{APIKey: "k", Model: "m", Timeout: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative timeout should fail")
	}
}
