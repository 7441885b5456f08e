package main

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.RedisURL != "redis:6379" {
		t.Errorf("redis url = %q, want redis:6379", cfg.RedisURL)
	}
	if cfg.SessionTTLHours != 720 {
		t.Errorf("session ttl = %d, want 720", cfg.SessionTTLHours)
	}
	if cfg.DatabaseURL == "" {
		t.Error("database url is empty")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SPENDY_PORT", "9000")
	t.Setenv("SPENDY_DATABASE_URL", "postgresql://u:p@localhost:5432/spendy")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	// postgresql:// scheme is rewritten and sslmode appended
	want := "postgres://u:p@localhost:5432/spendy?sslmode=disable"
	if cfg.DatabaseURL != want {
		t.Errorf("database url = %q, want %q", cfg.DatabaseURL, want)
	}
}

func TestNormalizeDatabaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://h/db?sslmode=require", "postgres://h/db?sslmode=require"},
		{"postgres://h/db", "postgres://h/db?sslmode=disable"},
		{"postgres://h/db?x=1", "postgres://h/db?x=1&sslmode=disable"},
		{"postgresql://h/db?sslmode=verify-full", "postgres://h/db?sslmode=verify-full"},
	}

	for _, tt := range tests {
		if got := normalizeDatabaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeDatabaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
