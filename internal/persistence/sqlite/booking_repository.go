package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
//
// The overlap invariant is enforced here: CreateBooking reads the confirmed
// bookings for the target room and date, runs the half-open overlap scan, and
// inserts, all inside one write transaction on the pool's single connection,
// so two concurrent attempts cannot both pass the check. A partial unique
// index on (room_id, date, start_time) backs the scan as a last line of
// defence and is surfaced as an OverlapError, never a generic failure.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = "id, room_id, user_id, date, start_time, end_time, purpose, status, created_at, updated_at"

// CreateBooking inserts a booking after verifying no confirmed booking for
// the same room and date overlaps it, then marks the room occupied. The room
// must exist; a missing room yields ErrNotFound.
func (r *BookingRepository) CreateBooking(ctx context.Context, b persistence.Booking) (persistence.Booking, error) {
	if b.ID == "" || b.RoomID == "" || b.Date == "" || b.StartTime == "" || b.EndTime == "" {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}
	if b.Status == "" {
		b.Status = persistence.BookingConfirmed
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var roomStatus string
		err := tx.QueryRow("SELECT status FROM rooms WHERE id = ?", b.RoomID).Scan(&roomStatus)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		existing, err := confirmedEntriesTx(tx, b.RoomID, b.Date)
		if err != nil {
			return err
		}

		candidate := booking.Slot{Start: booking.ClockTime(b.StartTime), End: booking.ClockTime(b.EndTime)}
		if conflict := booking.FindConflict(existing, candidate); conflict != nil {
			return &persistence.OverlapError{
				BookingID: conflict.BookingID,
				StartTime: conflict.Slot.Start.String(),
				EndTime:   conflict.Slot.End.String(),
			}
		}

		_, err = tx.Exec(`
			INSERT INTO bookings (id, room_id, user_id, date, start_time, end_time, purpose, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			b.ID, b.RoomID, b.UserID, b.Date, b.StartTime, b.EndTime, b.Purpose,
			string(b.Status),
			b.CreatedAt.Format(time.RFC3339),
			b.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			mapped := mapError(err)
			if errors.Is(mapped, persistence.ErrDuplicate) && strings.Contains(err.Error(), "idx_bookings_slot_start") {
				return &persistence.OverlapError{StartTime: b.StartTime, EndTime: b.EndTime}
			}
			return mapped
		}

		return setRoomStatusTx(tx, b.RoomID, persistence.RoomOccupied, now)
	})
	if err != nil {
		return persistence.Booking{}, err
	}

	return b, nil
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	return scanBooking(row)
}

// ListBookings returns bookings matching the filter, ordered by start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings"

	var conditions []string
	var args []any
	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking and recomputes the room's status from the
// remaining confirmed bookings within the same transaction.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var roomID string
		err := tx.QueryRow("SELECT room_id FROM bookings WHERE id = ?", id).Scan(&roomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		result, err := tx.Exec("DELETE FROM bookings WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		// The room stays occupied while other confirmed bookings remain;
		// the status is recomputed rather than hard-reset.
		var remaining int
		err = tx.QueryRow(
			"SELECT COUNT(*) FROM bookings WHERE room_id = ? AND status = ?",
			roomID, string(persistence.BookingConfirmed),
		).Scan(&remaining)
		if err != nil {
			return mapError(err)
		}

		status := persistence.RoomAvailable
		if remaining > 0 {
			status = persistence.RoomOccupied
		}
		return setRoomStatusTx(tx, roomID, status, time.Now().UTC())
	})
}

func confirmedEntriesTx(tx *sql.Tx, roomID, date string) ([]booking.Entry, error) {
	rows, err := tx.Query(`
		SELECT id, start_time, end_time
		FROM bookings
		WHERE room_id = ? AND date = ? AND status = ?
		ORDER BY start_time ASC
	`, roomID, date, string(persistence.BookingConfirmed))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []booking.Entry
	for rows.Next() {
		var id, start, end string
		if err := rows.Scan(&id, &start, &end); err != nil {
			return nil, mapError(err)
		}
		entries = append(entries, booking.Entry{
			BookingID: id,
			Slot:      booking.Slot{Start: booking.ClockTime(start), End: booking.ClockTime(end)},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

func setRoomStatusTx(tx *sql.Tx, roomID string, status persistence.RoomStatus, now time.Time) error {
	result, err := tx.Exec(
		"UPDATE rooms SET status = ?, updated_at = ? WHERE id = ?",
		string(status), now.Format(time.RFC3339), roomID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var b persistence.Booking
	var status string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.UserID,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Purpose,
		&status,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, mapError(err)
	}

	b.Status = persistence.BookingStatus(status)

	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return b, nil
}
