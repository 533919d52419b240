package config

import (
	"os"
	"testing"
)

func TestLoadReadsEnvironment(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("PORT", "4000")
	os.Setenv("RATE_LIMIT_PER_MINUTE", "12")

	cfg := Load()

	if cfg.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.AppPort != "4000" {
		t.Errorf("AppPort = %q, want 4000", cfg.AppPort)
	}
	if cfg.RateLimitPerMinute != 12 {
		t.Errorf("RateLimitPerMinute = %d, want 12", cfg.RateLimitPerMinute)
	}
	// Unset keys fall back to defaults.
	if cfg.DBName != "vitclubs" {
		t.Errorf("DBName = %q, want vitclubs", cfg.DBName)
	}
	if cfg.LogMaxSizeMB != 100 {
		t.Errorf("LogMaxSizeMB = %d, want 100", cfg.LogMaxSizeMB)
	}
}

func TestGetReturnsSameConfig(t *testing.T) {
	a := Get()
	b := Get()
	if a != b {
		t.Error("Get should return the load-once configuration")
	}
}
