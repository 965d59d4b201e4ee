package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port == "" {
		t.Fatal("expected default port")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development default, got %q", cfg.Env)
	}
	if cfg.StrictCallbacks {
		t.Fatal("strict callbacks must default off")
	}
	if cfg.DefaultUserID != "guest-user" {
		t.Fatalf("expected guest-user default, got %q", cfg.DefaultUserID)
	}
	if cfg.AdminJWTTTL != 24*time.Hour {
		t.Fatalf("expected 24h admin token ttl, got %s", cfg.AdminJWTTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("STRICT_CALLBACKS", "true")
	t.Setenv("ADMIN_JWT_TTL", "2h")
	t.Setenv("ALLOWED_ORIGINS", "https://app.granadaos.org, https://admin.granadaos.org")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if !cfg.StrictCallbacks {
		t.Fatal("expected strict callbacks on")
	}
	if cfg.AdminJWTTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", cfg.AdminJWTTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://admin.granadaos.org" {
		t.Fatalf("expected trimmed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestParseHelpers(t *testing.T) {
	if parseDuration("bogus") != 24*time.Hour {
		t.Fatal("expected fallback duration")
	}
	if parseBool("yes-please", true) != true {
		t.Fatal("expected fallback bool")
	}
	if got := parseStringSlice(""); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}
