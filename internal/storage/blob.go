package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
)

// SchemaVersion is the blob layout version written by Encode.
//
// Version 0 is the original unversioned layout: the same three arrays with
// no "version" field. It is read unchanged and rewritten as version 1 on the
// next save.
const SchemaVersion = 1

// StateKey names the blob. It is the SQLite row key and the default file name.
const StateKey = "leadership_tracker_v1"

var (
	// ErrCorrupt indicates the stored blob is not a readable journal state.
	ErrCorrupt = errors.New("state blob corrupted")

	// ErrUnsupportedVersion indicates a blob written by a newer leaderlog.
	ErrUnsupportedVersion = errors.New("unsupported state version")
)

// document is the on-disk layout.
type document struct {
	Version int `json:"version"`
	journal.AppState
}

// Encode serializes state as a versioned blob. Nil collections are written
// as empty arrays.
func Encode(state journal.AppState) ([]byte, error) {
	data, err := json.MarshalIndent(document{
		Version:  SchemaVersion,
		AppState: state.Normalize(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a blob of any supported version. On error the returned
// state is empty, never partial.
func Decode(data []byte) (journal.AppState, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return journal.Empty(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	version := 0
	if probe.Version != nil {
		version = *probe.Version
	}
	if version < 0 || version > SchemaVersion {
		return journal.Empty(), fmt.Errorf("%w: %d (max %d)", ErrUnsupportedVersion, version, SchemaVersion)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return journal.Empty(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return migrate(version, doc.AppState)
}

// migrate upgrades a decoded state from version to SchemaVersion.
func migrate(version int, state journal.AppState) (journal.AppState, error) {
	switch version {
	case 0, SchemaVersion:
		// v0 shares the v1 record layout.
		return state.Normalize(), nil
	default:
		return journal.Empty(), fmt.Errorf("%w: no migration from %d", ErrUnsupportedVersion, version)
	}
}

// reportInvalid logs records that input validation would reject, such as a
// zero date or an out-of-range intensity from an old blob. They are kept so
// the next save does not drop anything the user wrote.
func reportInvalid(ctx context.Context, logger *logging.Logger, state journal.AppState) {
	if err := state.Validate(); err != nil {
		logger.Warn(ctx, "journal contains invalid records", zap.Error(err))
	}
}
