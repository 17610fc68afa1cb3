package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// BookingLedger captures the persistence interactions needed by the service.
type BookingLedger interface {
	CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error)
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// RoomCatalog exposes the room lookup needed before accepting a booking.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
}

// BookingService orchestrates validation, authorization, and conflict-checked
// persistence for bookings. Creation and cancellation for one room/date pass
// through a per-key mutex, so the repository's read-check-write sequence is
// additionally serialized at the application level.
type BookingService struct {
	bookings    BookingLedger
	rooms       RoomCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(bookings BookingLedger, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// lockSlot acquires the mutex guarding one (room, date) bucket.
func (s *BookingService) lockSlot(roomID, date string) func() {
	key := roomID + "|" + date
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// CreateBooking validates input, checks the room exists, and inserts the
// booking unless it overlaps an existing confirmed booking for the same room
// and date. Creation is restricted to administrators.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (result Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking ledger not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
		"date", params.Input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.ID).InfoContext(ctx, "booking created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	input, vErr := validateBookingInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	unlock := s.lockSlot(input.RoomID, input.Date)
	defer unlock()

	if s.rooms != nil {
		if _, roomErr := s.rooms.GetRoom(ctx, input.RoomID); roomErr != nil {
			err = mapBookingRepoError(roomErr, input)
			return
		}
	}

	createdAt := s.now()
	candidate := persistence.Booking{
		ID:        s.idGenerator(),
		RoomID:    input.RoomID,
		UserID:    params.Principal.UserID,
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Purpose:   strings.TrimSpace(input.Purpose),
		Status:    persistence.BookingConfirmed,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	persisted, createErr := s.bookings.CreateBooking(ctx, candidate)
	if createErr != nil {
		err = mapBookingRepoError(createErr, input)
		return
	}

	result = toBooking(persisted)
	return
}

// ListBookings returns the bookings for a date, optionally narrowed to one
// room. Any authenticated user may list.
func (s *BookingService) ListBookings(ctx context.Context, params ListBookingsParams) (results []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking ledger not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListBookings",
		"principal_id", params.Principal.UserID,
		"date", params.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !params.Principal.IsAuthenticated() {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	date := strings.TrimSpace(params.Date)
	if date == "" {
		vErr.add("date", "date is required")
	} else if parsed, parseErr := booking.ParseDate(date); parseErr != nil {
		vErr.add("date", "date must use the YYYY-MM-DD format")
	} else {
		date = parsed
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	records, listErr := s.bookings.ListBookings(ctx, persistence.BookingFilter{
		Date:   date,
		RoomID: strings.TrimSpace(params.RoomID),
		Status: persistence.BookingConfirmed,
	})
	if listErr != nil {
		err = listErr
		return
	}

	results = make([]Booking, 0, len(records))
	for _, record := range records {
		results = append(results, toBooking(record))
	}
	return
}

// CancelBooking removes a booking and reconciles the room status. Like
// creation, cancellation is restricted to administrators.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID string) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking ledger not configured")
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		err = ErrNotFound
		return
	}

	existing, getErr := s.bookings.GetBooking(ctx, bookingID)
	if getErr != nil {
		if errors.Is(getErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = getErr
		return
	}

	unlock := s.lockSlot(existing.RoomID, existing.Date)
	defer unlock()

	if deleteErr := s.bookings.DeleteBooking(ctx, bookingID); deleteErr != nil {
		if errors.Is(deleteErr, persistence.ErrNotFound) {
			err = ErrNotFound
			return
		}
		err = deleteErr
		return
	}
	return
}

// validateBookingInput normalizes and validates caller provided fields.
func validateBookingInput(input BookingInput) (BookingInput, *ValidationError) {
	vErr := &ValidationError{}

	input.RoomID = strings.TrimSpace(input.RoomID)
	if input.RoomID == "" {
		vErr.add("room_id", "room is required")
	}

	input.Date = strings.TrimSpace(input.Date)
	if input.Date == "" {
		vErr.add("date", "date is required")
	} else if parsed, err := booking.ParseDate(input.Date); err != nil {
		vErr.add("date", "date must use the YYYY-MM-DD format")
	} else {
		input.Date = parsed
	}

	start, startErr := booking.ParseClockTime(strings.TrimSpace(input.StartTime))
	if startErr != nil {
		vErr.add("start_time", "start time must use the zero-padded HH:MM format")
	}
	end, endErr := booking.ParseClockTime(strings.TrimSpace(input.EndTime))
	if endErr != nil {
		vErr.add("end_time", "end time must use the zero-padded HH:MM format")
	}
	if startErr == nil && endErr == nil {
		slot := booking.Slot{Start: start, End: end}
		if err := slot.Validate(); err != nil {
			vErr.add("time", "start time must be before end time")
		}
		input.StartTime = start.String()
		input.EndTime = end.String()
	}

	return input, vErr
}

func mapBookingRepoError(err error, input BookingInput) error {
	if err == nil {
		return nil
	}

	var overlap *persistence.OverlapError
	if errors.As(err, &overlap) {
		return &ConflictError{
			BookingID: overlap.BookingID,
			RoomID:    input.RoomID,
			Date:      input.Date,
			StartTime: overlap.StartTime,
			EndTime:   overlap.EndTime,
		}
	}
	if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start time must be before end time")
		return vErr
	}
	return err
}

func toBooking(record persistence.Booking) Booking {
	return Booking{
		ID:        record.ID,
		RoomID:    record.RoomID,
		UserID:    record.UserID,
		Date:      record.Date,
		StartTime: record.StartTime,
		EndTime:   record.EndTime,
		Purpose:   record.Purpose,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
