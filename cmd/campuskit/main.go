package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/campuskit/campuskit/internal/adapter/hs256"
	ckhttp "github.com/campuskit/campuskit/internal/adapter/http"
	"github.com/campuskit/campuskit/internal/adapter/memcatalog"
	ckotel "github.com/campuskit/campuskit/internal/adapter/otel"
	"github.com/campuskit/campuskit/internal/adapter/redisrate"
	"github.com/campuskit/campuskit/internal/adapter/verifycache"
	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/config"
	"github.com/campuskit/campuskit/internal/handler"
	"github.com/campuskit/campuskit/internal/logger"
	"github.com/campuskit/campuskit/internal/middleware"
	"github.com/campuskit/campuskit/internal/ratelimit"
	"github.com/campuskit/campuskit/internal/resilience"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging, os.Stdout)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"redis", cfg.Redis.Addr != "",
	)

	ctx := context.Background()

	// --- Metrics ---
	shutdownMeter, err := ckotel.InitMeter(ctx, cfg.Logging.Service, cfg.Metrics.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownMeter(flushCtx)
	}()

	metrics, err := ckotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics instruments: %w", err)
	}

	// --- Token verification ---
	var verifier apictx.TokenVerifier = hs256.NewVerifier(
		[]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.Audience)
	cached, err := verifycache.New(verifier, cfg.Auth.TokenCacheEntries)
	if err != nil {
		return fmt.Errorf("token cache: %w", err)
	}
	defer cached.Close()
	verifier = cached

	// --- Rate-limit counters ---
	local := ratelimit.NewMemoryStore()
	stopCleanup := local.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	var store ratelimit.CounterStore = local
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer func() { _ = client.Close() }()
		remote := redisrate.New(client, cfg.Redis.Prefix)
		breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
		store = ratelimit.NewFailoverStore(remote, local, breaker)
		slog.Info("rate limiting via redis", "addr", cfg.Redis.Addr)
	}

	// --- HTTP ---
	factory := handler.NewFactory(verifier, store, metrics)
	handlers := ckhttp.NewHandlers(factory, memcatalog.New())

	r := chi.NewRouter()
	r.Use(ckhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(ckhttp.SecurityHeaders)
	r.Use(ckhttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.MaxInFlight(1024))

	ckhttp.MountRoutes(r, handlers, verifier)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
