// Package sqlite implements the store contracts on top of an embedded
// SQLite database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/fleetopt/core/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS vehicles (
    id TEXT PRIMARY KEY,
    plate TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'available',
    capacity INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS trips (
    id TEXT PRIMARY KEY,
    origin TEXT NOT NULL,
    destination TEXT NOT NULL,
    departure INTEGER NOT NULL,
    seat_capacity INTEGER NOT NULL DEFAULT 0,
    price REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'scheduled',
    vehicle_id TEXT NOT NULL DEFAULT '',
    driver_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS trips_departure ON trips (departure);
CREATE TABLE IF NOT EXISTS reservations (
    id TEXT PRIMARY KEY,
    trip_id TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    seats INTEGER NOT NULL DEFAULT 1,
    amount REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'confirmed',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS reservations_trip ON reservations (trip_id);
CREATE INDEX IF NOT EXISTS reservations_created ON reservations (created_at);
CREATE TABLE IF NOT EXISTS incidents (
    id TEXT PRIMARY KEY,
    trip_id TEXT NOT NULL DEFAULT '',
    severity TEXT NOT NULL DEFAULT 'low',
    status TEXT NOT NULL DEFAULT 'open',
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS search_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    term TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS optimization_rules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    enabled INTEGER NOT NULL DEFAULT 1,
    route_pattern TEXT NOT NULL DEFAULT '',
    threshold REAL NOT NULL DEFAULT 0,
    auto_apply INTEGER NOT NULL DEFAULT 0,
    min_rest_hours REAL NOT NULL DEFAULT 0,
    service_window TEXT NOT NULL DEFAULT '',
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS optimization_recommendations (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    route_from TEXT NOT NULL,
    route_to TEXT NOT NULL,
    priority INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    reviewed_at INTEGER,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS recommendations_status ON optimization_recommendations (status);
`

// Store persists fleet data and optimization results in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the clock used for the trend window, the forecast horizon
// and "today" totals.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the database at dsn and ensures the schema. Use
// "file:name?mode=memory&cache=shared" for an in-memory database.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
