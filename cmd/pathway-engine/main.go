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

	"github.com/terra-clan/pathway-engine/internal/advisor"
	"github.com/terra-clan/pathway-engine/internal/api"
	"github.com/terra-clan/pathway-engine/internal/cache"
	"github.com/terra-clan/pathway-engine/internal/catalog"
	"github.com/terra-clan/pathway-engine/internal/config"
	"github.com/terra-clan/pathway-engine/internal/health"
	"github.com/terra-clan/pathway-engine/internal/matching"
	"github.com/terra-clan/pathway-engine/internal/models"
	"github.com/terra-clan/pathway-engine/internal/reload"
	"github.com/terra-clan/pathway-engine/internal/storage"
)

// devAPIKey is seeded into the in-memory store so a local run is usable
const devAPIKey = "pw_dev_0123456789abcdef"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		slog.Warn("unknown log level, using info", "level", cfg.Log.Level)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting pathway-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"catalog_dir", cfg.Catalog.Dir,
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	checks := health.NewRegistry(2 * time.Second)

	repo, err := openRepository(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to open repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	checks.Register("database", repo)

	resultCache, closeCache := openCache(initCtx, cfg.Redis)
	defer closeCache()
	checks.Register("cache", resultCache)

	// Load catalog; a broken catalog at startup is fatal
	loader := catalog.NewLoader()
	if err := loader.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Error("failed to load catalog", "dir", cfg.Catalog.Dir, "error", err)
		os.Exit(1)
	}

	manager := advisor.NewManager(loader, repo, resultCache, matching.Weights{
		Skill:    cfg.Matching.SkillWeight,
		Interest: cfg.Matching.InterestWeight,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Catalog.ReloadInterval > 0 {
		reload.NewReloader(loader, resultCache, cfg.Catalog.ReloadInterval).Start(ctx)
	}

	server := api.NewServer(cfg.Server, manager, checks, repo)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Stop the reloader before draining requests
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("pathway-engine stopped")
}

// openRepository returns the in-memory store for DSN "memory", otherwise
// connects to PostgreSQL and applies pending migrations.
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	if cfg.DSN == config.MemoryDSN {
		repo := storage.NewMemoryRepository()
		repo.AddClient(models.ApiClient{
			Name:        "dev",
			ApiKey:      devAPIKey,
			IsActive:    true,
			Permissions: []string{"*"},
		})
		slog.Warn("using in-memory repository, data is lost on restart", "dev_key_prefix", models.MaskKey(devAPIKey))
		return repo, nil
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.DSN,
		MaxOpenConns: int32(cfg.MaxOpenConns),
		MaxIdleConns: int32(cfg.MaxIdleConns),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("running database migrations", "dir", cfg.MigrationsDir)
	if err := storage.RunMigrations(ctx, repo.Pool(), cfg.MigrationsDir); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("database connected successfully")
	return repo, nil
}

// openCache prefers Redis and falls back to an in-process cache when Redis
// is disabled or unreachable; results are recomputable, so this never fails.
func openCache(ctx context.Context, cfg config.RedisConfig) (cache.Cache, func()) {
	if cfg.Enabled {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Address:  cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
			TTL:      cfg.TTL,
		})
		if err == nil {
			slog.Info("redis cache connected", "address", cfg.Address)
			return rc, func() {
				if err := rc.Close(); err != nil {
					slog.Error("redis close error", "error", err)
				}
			}
		}
		slog.Warn("redis unavailable, falling back to in-memory cache", "address", cfg.Address, "error", err)
	}
	return cache.NewMemoryCache(cfg.TTL), func() {}
}
