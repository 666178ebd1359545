// Package storage persists the journal state as a single versioned blob.
//
// Two backends are provided: a JSON file written atomically, and a single
// row in a SQLite database. Both read and write the whole state at once;
// there are no per-record operations.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/leaderlog/internal/config"
	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
)

// Gateway loads and saves the whole journal state.
//
// Load always returns a usable state. When the blob is absent it returns the
// empty state and a nil error; when the blob cannot be read it returns the
// empty state together with the error.
type Gateway interface {
	Load(ctx context.Context) (journal.AppState, error)
	Save(ctx context.Context, state journal.AppState) error
	Close() error
}

// DefaultPath returns the default location of the blob for backend.
func DefaultPath(backend string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	dir := filepath.Join(home, ".local", "share", "leaderlog")

	switch backend {
	case config.BackendSQLite:
		return filepath.Join(dir, "leaderlog.db"), nil
	default:
		return filepath.Join(dir, StateKey+".json"), nil
	}
}

// Open creates the gateway selected by cfg.Backend.
//
//   - "file" (default): a JSON file, written via temp file and rename
//   - "sqlite": one row in a SQLite database (modernc.org/sqlite, no cgo)
func Open(ctx context.Context, cfg config.StorageConfig, logger *logging.Logger) (Gateway, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	path := cfg.Path
	if path == "" {
		p, err := DefaultPath(cfg.Backend)
		if err != nil {
			return nil, err
		}
		path = p
	}

	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileGateway(path, logger), nil
	case config.BackendSQLite:
		return OpenSQLite(ctx, path, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: %s, %s)", cfg.Backend, config.BackendFile, config.BackendSQLite)
	}
}
