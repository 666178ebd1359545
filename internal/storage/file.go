package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
)

// FileGateway stores the blob as one JSON file.
type FileGateway struct {
	path   string
	logger *logging.Logger

	// rename is os.Rename outside of tests.
	rename func(oldpath, newpath string) error
}

// NewFileGateway returns a gateway for the file at path. The file and its
// directory are created on first save.
func NewFileGateway(path string, logger *logging.Logger) *FileGateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileGateway{
		path:   path,
		logger: logger.Named("storage.file"),
		rename: os.Rename,
	}
}

// Path returns the file location.
func (g *FileGateway) Path() string {
	return g.path
}

// Load reads the file. A missing file yields the empty state.
func (g *FileGateway) Load(ctx context.Context) (journal.AppState, error) {
	data, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		g.logger.Debug(ctx, "no state file, starting empty", zap.String("path", g.path))
		return journal.Empty(), nil
	}
	if err != nil {
		return journal.Empty(), fmt.Errorf("read state file: %w", err)
	}

	state, err := Decode(data)
	if err != nil {
		g.logger.Warn(ctx, "state file unreadable, starting empty", zap.String("path", g.path), zap.Error(err))
		return journal.Empty(), err
	}
	reportInvalid(ctx, g.logger, state)
	return state, nil
}

// Save replaces the file contents with state. The new contents are written
// to a temp file in the same directory and renamed over the old file, so a
// failed save leaves the previous snapshot in place.
func (g *FileGateway) Save(ctx context.Context, state journal.AppState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := g.rename(tmpPath, g.path); err != nil {
		cleanup()
		return fmt.Errorf("replace state file: %w", err)
	}

	g.logger.Debug(ctx, "state saved", zap.String("path", g.path), zap.Int("bytes", len(data)))
	return nil
}

// Close is a no-op for files.
func (g *FileGateway) Close() error {
	return nil
}
