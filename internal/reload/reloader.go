// Package reload polls the catalog directory and drops cached results
// when a new catalog version appears.
package reload

import (
	"context"
	"log/slog"
	"time"

	"github.com/terra-clan/pathway-engine/internal/metrics"
)

// Source re-reads catalog data and reports whether its version changed
type Source interface {
	Reload() (bool, error)
}

// Invalidator drops cached results
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Reloader handles periodic catalog reloads
type Reloader struct {
	source   Source
	cache    Invalidator
	interval time.Duration
}

// NewReloader creates a new reload worker
func NewReloader(source Source, cache Invalidator, interval time.Duration) *Reloader {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Reloader{
		source:   source,
		cache:    cache,
		interval: interval,
	}
}

// Start begins the reload worker in a goroutine
func (r *Reloader) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Reloader) run(ctx context.Context) {
	slog.Info("catalog reload worker started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog reload worker stopped")
			return
		case <-ticker.C:
			r.ReloadOnce(ctx)
		}
	}
}

// ReloadOnce runs a single reload cycle and reports whether the catalog changed
func (r *Reloader) ReloadOnce(ctx context.Context) bool {
	changed, err := r.source.Reload()
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		slog.Error("catalog reload failed, keeping previous version", "error", err)
		return false
	}

	if !changed {
		metrics.CatalogReloads.WithLabelValues("unchanged").Inc()
		slog.Debug("catalog unchanged")
		return false
	}

	metrics.CatalogReloads.WithLabelValues("changed").Inc()
	if err := r.cache.InvalidateAll(ctx); err != nil {
		// versioned keys keep stale entries unreachable even if this fails
		slog.Warn("failed to invalidate result cache", "error", err)
	}
	return true
}
