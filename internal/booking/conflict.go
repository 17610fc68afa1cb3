package booking

import (
	"fmt"
	"time"
)

// ClockTime is a zero-padded HH:MM wall-clock value. The fixed-width format
// makes lexicographic comparison equivalent to temporal ordering, which the
// persistence layer relies on when comparing stored time columns.
type ClockTime string

// ParseClockTime validates a zero-padded HH:MM value.
func ParseClockTime(value string) (ClockTime, error) {
	if len(value) != 5 || value[2] != ':' {
		return "", fmt.Errorf("booking: invalid clock time %q", value)
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return "", fmt.Errorf("booking: invalid clock time %q", value)
	}
	return ClockTime(value), nil
}

// Before reports whether t is strictly earlier than other.
func (t ClockTime) Before(other ClockTime) bool {
	return string(t) < string(other)
}

// String returns the HH:MM representation.
func (t ClockTime) String() string {
	return string(t)
}

// ParseDate validates a strict ISO calendar date (YYYY-MM-DD).
func ParseDate(value string) (string, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return "", fmt.Errorf("booking: invalid date %q", value)
	}
	return parsed.Format("2006-01-02"), nil
}

// Slot is a half-open [Start, End) interval within a single day.
type Slot struct {
	Start ClockTime
	End   ClockTime
}

// Validate rejects slots whose start does not precede their end.
func (s Slot) Validate() error {
	if !s.Start.Before(s.End) {
		return fmt.Errorf("booking: start %s must be before end %s", s.Start, s.End)
	}
	return nil
}

// Overlaps implements the half-open overlap predicate: two slots overlap iff
// startA < endB and startB < endA. Adjacent slots (endA == startB) do not
// overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Entry is a booked slot within one (room, date) bucket.
type Entry struct {
	BookingID string
	Slot      Slot
}

// Conflict names the existing entry a candidate slot collides with.
type Conflict struct {
	BookingID string
	Slot      Slot
}

// FindConflict scans existing entries for the first one overlapping the
// candidate. Callers are expected to pass only the confirmed entries of a
// single room and date; the scan is O(n) over that bucket.
func FindConflict(existing []Entry, candidate Slot) *Conflict {
	for _, entry := range existing {
		if entry.Slot.Overlaps(candidate) {
			return &Conflict{BookingID: entry.BookingID, Slot: entry.Slot}
		}
	}
	return nil
}
