// Package config provides hierarchical configuration loading for CampusKit.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the CampusKit API service.
type Config struct {
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
	Auth    Auth    `yaml:"auth"`
	Rate    Rate    `yaml:"rate"`
	Redis   Redis   `yaml:"redis"`
	Breaker Breaker `yaml:"breaker"`
	Metrics Metrics `yaml:"metrics"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port            string        `yaml:"port"`
	CORSOrigin      string        `yaml:"cors_origin"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Auth holds token verification configuration.
type Auth struct {
	JWTSecret         string `yaml:"jwt_secret"`
	Issuer            string `yaml:"issuer"`
	Audience          string `yaml:"audience"`
	TokenCacheEntries int64  `yaml:"token_cache_entries"`
}

// Rate holds rate limiter store configuration.
type Rate struct {
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MaxIdleTime     time.Duration `yaml:"max_idle_time"`
}

// Redis holds the optional shared rate-limit counter backend. An empty Addr
// keeps counting in process memory.
type Redis struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// Breaker holds circuit breaker configuration for the Redis failover.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Metrics holds OpenTelemetry export configuration. An empty endpoint
// disables export.
type Metrics struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:            "8080",
			CORSOrigin:      "http://localhost:3000",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: Logging{
			Level:   "info",
			Service: "campuskit-api",
		},
		Auth: Auth{
			JWTSecret:         "dev-secret-change-me-before-deploying",
			Issuer:            "campuskit-core",
			Audience:          "campuskit",
			TokenCacheEntries: 10000,
		},
		Rate: Rate{
			CleanupInterval: time.Minute,
			MaxIdleTime:     10 * time.Minute,
		},
		Redis: Redis{
			Prefix: "campuskit",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
	}
}
