package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
)

func TestFileGateway_LoadMissing(t *testing.T) {
	g := NewFileGateway(filepath.Join(t.TempDir(), "state.json"), nil)

	state, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, journal.Empty(), state)
}

func TestFileGateway_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	g := NewFileGateway(path, nil)
	ctx := context.Background()

	require.NoError(t, g.Save(ctx, sampleState()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), got)

	// A second gateway on the same path sees the same state.
	again, err := NewFileGateway(path, nil).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(), again)
}

func TestFileGateway_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{\"reflections\": [tru"), 0600))

	state, err := NewFileGateway(path, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, journal.Empty(), state)
}

func TestFileGateway_FailedSaveKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	g := NewFileGateway(path, nil)
	ctx := context.Background()

	require.NoError(t, g.Save(ctx, sampleState()))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	g.rename = func(string, string) error { return errors.New("device full") }

	err = g.Save(ctx, journal.Empty())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device full")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be removed after a failed save")
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	g, err := Open(ctx, configFor("file", filepath.Join(dir, "s.json")), nil)
	require.NoError(t, err)
	assert.IsType(t, &FileGateway{}, g)
	require.NoError(t, g.Close())

	g, err = Open(ctx, configFor("sqlite", filepath.Join(dir, "s.db")), nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteGateway{}, g)
	require.NoError(t, g.Close())

	_, err = Open(ctx, configFor("redis", ""), nil)
	assert.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := DefaultPath("file")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "leaderlog", "leadership_tracker_v1.json"), p)

	p, err = DefaultPath("sqlite")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", "leaderlog", "leaderlog.db"), p)
}

func TestFileGateway_LoadKeepsInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	blob := `{"reflections":[],"triggers":[{"id":"t1","timestamp":"2025-03-01T10:00:00Z","trigger":"Late deploy","notes":"","intensity":15}],"accomplishments":[{"id":"a1","title":"Undated win","details":""}]}`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0600))

	logger := logging.NewTestLogger()
	state, err := NewFileGateway(path, logger.Logger).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Triggers, 1)
	assert.Len(t, state.Accomplishments, 1)
	logger.AssertLogged(t, zapcore.WarnLevel, "journal contains invalid records")
}

func TestFileGateway_LoadValidStateDoesNotWarn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	logger := logging.NewTestLogger()
	g := NewFileGateway(path, logger.Logger)
	require.NoError(t, g.Save(context.Background(), sampleState()))

	_, err := g.Load(context.Background())
	require.NoError(t, err)
	logger.AssertNotLogged(t, zapcore.WarnLevel, "invalid records")
}
