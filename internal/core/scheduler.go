package core

// scheduler.go provides background maintenance for the Service.
//
// The session sweeper evicts sessions that have been idle longer than the
// configured TTL. Evicting a session drops its in-memory filters, queued
// notifications and unfetched exports; persisted column settings remain in
// the store and are reloaded when the session comes back.

import (
	"context"
	"log/slog"
	"time"
)

// SweeperConfig holds configuration for the session sweeper.
// Zero values fall back to the defaults.
type SweeperConfig struct {
	TTL           time.Duration // Idle time before eviction (default: 12h)
	CheckInterval time.Duration // How often to sweep (default: 10m)
}

const (
	defaultSessionTTL    = 12 * time.Hour
	defaultSweepInterval = 10 * time.Minute
)

// StartSessionSweeper periodically evicts idle sessions until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, cfg SweeperConfig) {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultSweepInterval
	}

	slog.Info("session sweeper started",
		"ttl", cfg.TTL,
		"interval", cfg.CheckInterval,
	)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(cfg.TTL)
		}
	}
}

// runSweep performs one eviction pass.
func (s *Service) runSweep(ttl time.Duration) {
	start := time.Now()
	removed := s.SweepSessions(ttl)
	if removed == 0 {
		slog.Debug("session sweep found nothing to evict")
		return
	}
	slog.Info("evicted idle sessions",
		"sessions_evicted", removed,
		"sessions_remaining", s.SessionCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
