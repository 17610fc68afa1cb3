package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrationStep is one versioned, idempotent schema change.
type migrationStep struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order inside individual transactions. Versions
// already recorded in schema_migrations are skipped, making Migrate safe to
// run on every startup.
var migrations = []migrationStep{
	{
		Version: 1,
		Name:    "create_users",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				username      TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				role          TEXT NOT NULL CHECK (role IN ('admin', 'student')),
				active        INTEGER NOT NULL DEFAULT 1,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_rooms",
		SQL: `
			CREATE TABLE IF NOT EXISTS rooms (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL UNIQUE,
				capacity   INTEGER NOT NULL CHECK (capacity > 0),
				equipment  TEXT NOT NULL DEFAULT '',
				status     TEXT NOT NULL CHECK (status IN ('Available', 'Occupied')),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_bookings",
		SQL: `
			CREATE TABLE IF NOT EXISTS bookings (
				id         TEXT PRIMARY KEY,
				room_id    TEXT NOT NULL REFERENCES rooms (id),
				user_id    TEXT NOT NULL REFERENCES users (id),
				date       TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time   TEXT NOT NULL,
				purpose    TEXT NOT NULL DEFAULT '',
				status     TEXT NOT NULL CHECK (status IN ('Confirmed', 'Cancelled')),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (start_time < end_time)
			);
			CREATE INDEX IF NOT EXISTS idx_bookings_room_date ON bookings (room_id, date);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_slot_start
				ON bookings (room_id, date, start_time) WHERE status = 'Confirmed';
		`,
	},
	{
		Version: 4,
		Name:    "create_sessions",
		SQL: `
			CREATE TABLE IF NOT EXISTS sessions (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users (id),
				expires_at TEXT NOT NULL,
				revoked_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);
		`,
	},
}

// Migrate applies all pending schema migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, step := range migrations {
		applied, err := cp.migrationApplied(ctx, step.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		step := step
		err = cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(step.SQL); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", step.Version, step.Name, err)
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				step.Version, step.Name, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (cp *ConnectionPool) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := cp.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema_migrations: %w", err)
	}
	return count > 0, nil
}
