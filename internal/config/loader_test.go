package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Auth.Issuer != "campuskit-core" {
		t.Errorf("expected issuer campuskit-core, got %s", cfg.Auth.Issuer)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("expected redis disabled by default, got %s", cfg.Redis.Addr)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
auth:
  issuer: "sso.example.com"
logging:
  level: "debug"
redis:
  addr: "localhost:6379"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.Auth.Issuer != "sso.example.com" {
		t.Errorf("expected issuer sso.example.com, got %s", cfg.Auth.Issuer)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Auth.Audience != "campuskit" {
		t.Errorf("expected default audience, got %s", cfg.Auth.Audience)
	}
	if cfg.Redis.Prefix != "campuskit" {
		t.Errorf("expected default redis prefix, got %s", cfg.Redis.Prefix)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("CAMPUSKIT_PORT", "7070")
	t.Setenv("CAMPUSKIT_JWT_SECRET", "an-env-supplied-secret-of-32-bytes!!")
	t.Setenv("CAMPUSKIT_LOG_LEVEL", "warn")
	t.Setenv("CAMPUSKIT_BREAKER_TIMEOUT", "1m")
	t.Setenv("CAMPUSKIT_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("CAMPUSKIT_TOKEN_CACHE_ENTRIES", "500")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "an-env-supplied-secret-of-32-bytes!!" {
		t.Errorf("jwt secret not overridden")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Breaker.Timeout != time.Minute {
		t.Errorf("expected breaker timeout 1m, got %v", cfg.Breaker.Timeout)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("expected redis addr override, got %s", cfg.Redis.Addr)
	}
	if cfg.Auth.TokenCacheEntries != 500 {
		t.Errorf("expected token cache 500, got %d", cfg.Auth.TokenCacheEntries)
	}
}

func TestEnvIgnoresInvalidValues(t *testing.T) {
	cfg := Defaults()

	t.Setenv("CAMPUSKIT_BREAKER_MAX_FAILURES", "not-a-number")
	t.Setenv("CAMPUSKIT_BREAKER_TIMEOUT", "soon")

	loadEnv(&cfg)

	if cfg.Breaker.MaxFailures != 5 {
		t.Errorf("invalid int should keep default, got %d", cfg.Breaker.MaxFailures)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("invalid duration should keep default, got %v", cfg.Breaker.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"empty port", func(c *Config) { c.Server.Port = "" }, "server.port"},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "32 bytes"},
		{"zero breaker", func(c *Config) { c.Breaker.MaxFailures = 0 }, "max_failures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFullHierarchy(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "campuskit.yaml")
	content := `
server:
  port: "9090"
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAMPUSKIT_PORT", "7070")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	// ENV beats YAML beats defaults.
	if cfg.Server.Port != "7070" {
		t.Errorf("expected env port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected yaml level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Service != "campuskit-api" {
		t.Errorf("expected default service name, got %s", cfg.Logging.Service)
	}
}
