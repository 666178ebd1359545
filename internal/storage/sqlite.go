package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
	"github.com/fyrsmithlabs/leaderlog/internal/logging"
)

// dbSchemaVersion is the table layout version recorded in schema_migrations.
// It is independent of the blob SchemaVersion.
const dbSchemaVersion = 1

// SQLiteGateway stores the blob as one row of a key-value table.
type SQLiteGateway struct {
	db     *sql.DB
	logger *logging.Logger
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string, logger *logging.Logger) (*SQLiteGateway, error) {
	if path == "" {
		return nil, fmt.Errorf("open: empty db path")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("open: create db dir: %w", err)
	}

	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: sql open: %w", err)
	}
	// One writer; the blob is always rewritten whole.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: ping: %w", err)
	}

	if err := migrateDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: migrate: %w", err)
	}

	return &SQLiteGateway{db: db, logger: logger.Named("storage.sqlite")}, nil
}

// sqliteDSN builds a file: URI for path. The path is escaped, so names
// containing '?', '#' or '%' are not read as URI syntax.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve db path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: "mode=rwc&_pragma=busy_timeout(5000)",
	}
	return u.String(), nil
}

func migrateDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("read current version: %w", err)
	}
	if current >= dbSchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?);`, dbSchemaVersion); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}

// Load reads the state row. A missing row yields the empty state.
func (g *SQLiteGateway) Load(ctx context.Context) (journal.AppState, error) {
	var value string
	err := g.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?;`, StateKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		g.logger.Debug(ctx, "no state row, starting empty")
		return journal.Empty(), nil
	}
	if err != nil {
		return journal.Empty(), fmt.Errorf("load state: query: %w", err)
	}

	state, err := Decode([]byte(value))
	if err != nil {
		g.logger.Warn(ctx, "state row unreadable, starting empty", zap.Error(err))
		return journal.Empty(), err
	}
	reportInvalid(ctx, g.logger, state)
	return state, nil
}

// Save upserts the state row in a single statement.
func (g *SQLiteGateway) Save(ctx context.Context, state journal.AppState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`, StateKey, string(data), now)
	if err != nil {
		return fmt.Errorf("save state: upsert: %w", err)
	}

	g.logger.Debug(ctx, "state saved", zap.Int("bytes", len(data)))
	return nil
}

// Close closes the database.
func (g *SQLiteGateway) Close() error {
	if g.db == nil {
		return nil
	}
	return g.db.Close()
}
