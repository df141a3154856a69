// Package store implements the key-value settings store behind table views.
//
// Three backends satisfy core.Store:
//
//   - memory: a map, for development and tests; nothing survives a restart.
//   - sqlite: a single-file database through the pure Go modernc driver.
//   - postgres: a pgx connection pool.
//
// The SQL backends keep every key in the view_settings table, created by
// the embedded migrations on Open.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/core"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend is a settings store that holds resources.
type Backend interface {
	core.Store

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases connections. The backend is unusable afterwards.
	Close() error
}

// Open connects to the configured backend and applies migrations.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	backend := strings.ToLower(cfg.Backend)
	slog.Info("opening settings store", "backend", backend)

	switch backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
