package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "campuskit.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CAMPUSKIT_PORT")
	setString(&cfg.Server.CORSOrigin, "CAMPUSKIT_CORS_ORIGIN")
	setDuration(&cfg.Server.ShutdownTimeout, "CAMPUSKIT_SHUTDOWN_TIMEOUT")
	setString(&cfg.Logging.Level, "CAMPUSKIT_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CAMPUSKIT_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "CAMPUSKIT_LOG_ASYNC")
	setString(&cfg.Auth.JWTSecret, "CAMPUSKIT_JWT_SECRET")
	setString(&cfg.Auth.Issuer, "CAMPUSKIT_JWT_ISSUER")
	setString(&cfg.Auth.Audience, "CAMPUSKIT_JWT_AUDIENCE")
	setInt64(&cfg.Auth.TokenCacheEntries, "CAMPUSKIT_TOKEN_CACHE_ENTRIES")
	setDuration(&cfg.Rate.CleanupInterval, "CAMPUSKIT_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "CAMPUSKIT_RATE_MAX_IDLE_TIME")
	setString(&cfg.Redis.Addr, "CAMPUSKIT_REDIS_ADDR")
	setString(&cfg.Redis.Prefix, "CAMPUSKIT_REDIS_PREFIX")
	setInt(&cfg.Breaker.MaxFailures, "CAMPUSKIT_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "CAMPUSKIT_BREAKER_TIMEOUT")
	setString(&cfg.Metrics.OTLPEndpoint, "CAMPUSKIT_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 bytes")
	}
	if cfg.Auth.TokenCacheEntries < 1 {
		return errors.New("auth.token_cache_entries must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
