package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./data/links.db" {
		t.Errorf("DBPath = %q, want ./data/links.db", cfg.DBPath)
	}
	if cfg.MaxTokenBytes != 65536 {
		t.Errorf("MaxTokenBytes = %d, want 65536", cfg.MaxTokenBytes)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BILLSPLIT_PORT", "9090")
	t.Setenv("BILLSPLIT_STATIC_PATH", "/srv/static")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.StaticPath != "/srv/static" {
		t.Errorf("StaticPath = %q, want /srv/static", cfg.StaticPath)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		contains string
	}{
		{"not a number", "eighty", "parse env:"},
		{"out of range", "70000", "invalid port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BILLSPLIT_PORT", tt.port)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error = %q, want to contain %q", err, tt.contains)
			}
		})
	}
}
