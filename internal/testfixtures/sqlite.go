package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool     *sqlite.ConnectionPool
	Users    persistence.UserRepository
	Rooms    persistence.RoomRepository
	Bookings persistence.BookingRepository
	Sessions persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a migrated database under t.TempDir and wires the
// concrete repositories. The harness closes itself when the test finishes.
func NewSQLiteHarness(t *testing.T) *SQLiteHarness {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "roombook-test.db")
	pool, err := sqlite.Open(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("failed to migrate sqlite database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:     pool,
		Users:    sqlite.NewUserRepository(pool),
		Rooms:    sqlite.NewRoomRepository(pool),
		Bookings: sqlite.NewBookingRepository(pool),
		Sessions: sqlite.NewSessionRepository(pool),
		cleanup: func() {
			pool.Close()
		},
	}
	t.Cleanup(harness.Close)
	return harness
}
