package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BackendURL != "http://localhost:5000" {
		t.Errorf("expected default backend_url %q, got %q", "http://localhost:5000", cfg.BackendURL)
	}
	if cfg.UploadField != "pdf" {
		t.Errorf("expected default upload_field %q, got %q", "pdf", cfg.UploadField)
	}
	if cfg.NotificationTTL.Std() != 5*time.Second {
		t.Errorf("expected default notification_ttl 5s, got %s", cfg.NotificationTTL)
	}
	if cfg.RecentLimit != 5 {
		t.Errorf("expected default recent_limit 5, got %d", cfg.RecentLimit)
	}
	if cfg.MaxUploadBytes() != 50<<20 {
		t.Errorf("expected 50MB upload limit, got %d", cfg.MaxUploadBytes())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.pdfqa.yml")

	original := DefaultConfig()
	original.BackendURL = "http://gpu-box:5000"
	original.NotificationTTL = Duration(1500 * time.Millisecond)
	original.RecentLimit = 8
	original.LogFormat = "json"
	original.LogFile = "/tmp/pdfqa.log"

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.BackendURL != original.BackendURL {
		t.Errorf("backend_url: got %q, want %q", loaded.BackendURL, original.BackendURL)
	}
	if loaded.NotificationTTL != original.NotificationTTL {
		t.Errorf("notification_ttl: got %s, want %s", loaded.NotificationTTL, original.NotificationTTL)
	}
	if loaded.RecentLimit != original.RecentLimit {
		t.Errorf("recent_limit: got %d, want %d", loaded.RecentLimit, original.RecentLimit)
	}
	if loaded.LogFormat != original.LogFormat {
		t.Errorf("log_format: got %q, want %q", loaded.LogFormat, original.LogFormat)
	}
	if loaded.LogFile != original.LogFile {
		t.Errorf("log_file: got %q, want %q", loaded.LogFile, original.LogFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.BackendURL != "http://localhost:5000" {
		t.Errorf("expected default backend_url, got %q", cfg.BackendURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("PDFQA_BACKEND_URL", "http://10.0.0.2:5000")
	t.Setenv("PDFQA_NOTIFICATION_TTL", "2s")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BackendURL != "http://10.0.0.2:5000" {
		t.Errorf("env override failed: got %q", loaded.BackendURL)
	}
	if loaded.NotificationTTL.Std() != 2*time.Second {
		t.Errorf("env ttl override failed: got %s", loaded.NotificationTTL)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty backend", func(c *Config) { c.BackendURL = "" }},
		{"relative backend", func(c *Config) { c.BackendURL = "localhost:5000" }},
		{"ftp backend", func(c *Config) { c.BackendURL = "ftp://host" }},
		{"empty upload field", func(c *Config) { c.UploadField = "" }},
		{"zero ttl", func(c *Config) { c.NotificationTTL = 0 }},
		{"huge ttl", func(c *Config) { c.NotificationTTL = Duration(time.Hour) }},
		{"zero recent", func(c *Config) { c.RecentLimit = 0 }},
		{"too many recent", func(c *Config) { c.RecentLimit = 51 }},
		{"bad port", func(c *Config) { c.ListenPort = 70000 }},
		{"no upload size", func(c *Config) { c.MaxUploadMB = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("750ms")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Std() != 750*time.Millisecond {
		t.Errorf("got %s", d)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidatePort(t *testing.T) {
	for _, s := range []string{"1", "8501", "65535"} {
		if err := validatePort(s); err != nil {
			t.Errorf("validatePort(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "0", "abc", "70000"} {
		if err := validatePort(s); err == nil {
			t.Errorf("validatePort(%q) should fail", s)
		}
	}
}
