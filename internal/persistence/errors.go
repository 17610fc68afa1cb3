package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a check constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)

// OverlapError reports that a candidate booking collides with an existing
// confirmed booking on the same room and date.
type OverlapError struct {
	BookingID string
	StartTime string
	EndTime   string
}

// Error implements the error interface.
func (e *OverlapError) Error() string {
	return fmt.Sprintf("persistence: booking overlaps %s (%s-%s)", e.BookingID, e.StartTime, e.EndTime)
}
