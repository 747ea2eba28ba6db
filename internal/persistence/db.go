// Package persistence provides SQLite-based storage for economy history.
package persistence

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for the history store.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer (the engine) and the API readers share a single connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resource_history (
		run_id TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		resource TEXT NOT NULL,
		amount REAL NOT NULL,
		produced REAL NOT NULL,
		consumed REAL NOT NULL,
		PRIMARY KEY (run_id, cycle, resource)
	);

	CREATE TABLE IF NOT EXISTS cycles (
		run_id TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		producers INTEGER NOT NULL,
		active_producers INTEGER NOT NULL,
		upgrades INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		assigned_workers INTEGER NOT NULL,
		PRIMARY KEY (run_id, cycle)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		kind TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		building TEXT NOT NULL,
		level INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, id);
	CREATE INDEX IF NOT EXISTS idx_history_resource ON resource_history(run_id, resource, cycle);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunInfo describes one simulation session.
type RunInfo struct {
	RunID     string    `db:"run_id" json:"run_id"`
	StartedAt time.Time `db:"-" json:"started_at"`
	Started   string    `db:"started_at" json:"-"`
	Seed      int64     `db:"seed" json:"seed"`
	Width     int       `db:"width" json:"width"`
	Height    int       `db:"height" json:"height"`
}

// SaveRun records the start of a session.
func (db *DB) SaveRun(r RunInfo) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO runs (run_id, started_at, seed, width, height) VALUES (?, ?, ?, ?, ?)",
		r.RunID, r.StartedAt.UTC().Format(time.RFC3339), r.Seed, r.Width, r.Height,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	return nil
}

// Runs returns every recorded session, newest first.
func (db *DB) Runs() ([]RunInfo, error) {
	var runs []RunInfo
	err := db.conn.Select(&runs,
		"SELECT run_id, started_at, seed, width, height FROM runs ORDER BY started_at DESC, run_id")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for i := range runs {
		runs[i].StartedAt, _ = time.Parse(time.RFC3339, runs[i].Started)
	}
	return runs, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
