package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("ACCESS_TOKEN_PRIVATE_KEY_PATH", "access_priv.pem")
	t.Setenv("ACCESS_TOKEN_PUBLIC_KEY_PATH", "access_pub.pem")
	t.Setenv("REFRESH_TOKEN_PRIVATE_KEY_PATH", "refresh_priv.pem")
	t.Setenv("REFRESH_TOKEN_PUBLIC_KEY_PATH", "refresh_pub.pem")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("REFRESH_TOKEN_TTL", "168h")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("PASSWORD_PEPPER", "pepper")
}

func TestLoad_Success(t *testing.T) {
	setRequired(t)
	t.Setenv("COOKIE_DOMAIN", "example.com")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("ALLOW_CREDENTIALS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("AccessTokenTTL want 15m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("RefreshTokenTTL want 168h, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("SessionTTL want 1h, got %v", cfg.SessionTTL)
	}
	if cfg.HTTPAddress != ":8080" {
		t.Fatalf("HTTPAddress default want :8080, got %s", cfg.HTTPAddress)
	}
	if !cfg.CookieSecure {
		t.Fatal("CookieSecure want true")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("PASSWORD_PEPPER", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error due to missing PASSWORD_PEPPER, got nil")
	}
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error due to zero SESSION_TTL, got nil")
	}
}
