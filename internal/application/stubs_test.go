package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

var fixedNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	}
}

type stubUserStore struct {
	mu    sync.Mutex
	users map[string]persistence.User
}

func newStubUserStore(users ...persistence.User) *stubUserStore {
	store := &stubUserStore{users: make(map[string]persistence.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *stubUserStore) CreateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) UpdateUser(_ context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) GetUser(_ context.Context, id string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *stubUserStore) GetUserByUsername(_ context.Context, username string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (s *stubUserStore) ListUsers(_ context.Context) ([]persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

type stubRoomStore struct {
	mu    sync.Mutex
	rooms map[string]persistence.Room
}

func newStubRoomStore(rooms ...persistence.Room) *stubRoomStore {
	store := &stubRoomStore{rooms: make(map[string]persistence.Room)}
	for _, room := range rooms {
		store.rooms[room.ID] = room
	}
	return store
}

func (s *stubRoomStore) CreateRoom(_ context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rooms {
		if existing.Name == room.Name {
			return persistence.ErrDuplicate
		}
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *stubRoomStore) UpdateRoom(_ context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *stubRoomStore) GetRoom(_ context.Context, id string) (persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (s *stubRoomStore) ListRooms(_ context.Context) ([]persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *stubRoomStore) DeleteRoom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

// stubBookingLedger enforces the same overlap invariant as the real
// repository so service tests exercise conflict mapping end to end.
type stubBookingLedger struct {
	mu       sync.Mutex
	bookings map[string]persistence.Booking
}

func newStubBookingLedger(bookings ...persistence.Booking) *stubBookingLedger {
	ledger := &stubBookingLedger{bookings: make(map[string]persistence.Booking)}
	for _, record := range bookings {
		ledger.bookings[record.ID] = record
	}
	return ledger
}

func (s *stubBookingLedger) CreateBooking(_ context.Context, candidate persistence.Booking) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, err := booking.ParseClockTime(candidate.StartTime)
	if err != nil {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}
	end, err := booking.ParseClockTime(candidate.EndTime)
	if err != nil {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}
	slot := booking.Slot{Start: start, End: end}
	if err := slot.Validate(); err != nil {
		return persistence.Booking{}, persistence.ErrConstraintViolation
	}

	existing := make([]booking.Entry, 0, len(s.bookings))
	for _, record := range s.bookings {
		if record.RoomID != candidate.RoomID || record.Date != candidate.Date || record.Status != persistence.BookingConfirmed {
			continue
		}
		recordStart, parseErr := booking.ParseClockTime(record.StartTime)
		if parseErr != nil {
			continue
		}
		recordEnd, parseErr := booking.ParseClockTime(record.EndTime)
		if parseErr != nil {
			continue
		}
		existing = append(existing, booking.Entry{
			BookingID: record.ID,
			Slot:      booking.Slot{Start: recordStart, End: recordEnd},
		})
	}
	if conflict := booking.FindConflict(existing, slot); conflict != nil {
		return persistence.Booking{}, &persistence.OverlapError{
			BookingID: conflict.BookingID,
			StartTime: conflict.Slot.Start.String(),
			EndTime:   conflict.Slot.End.String(),
		}
	}

	s.bookings[candidate.ID] = candidate
	return candidate, nil
}

func (s *stubBookingLedger) GetBooking(_ context.Context, id string) (persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return record, nil
}

func (s *stubBookingLedger) ListBookings(_ context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]persistence.Booking, 0, len(s.bookings))
	for _, record := range s.bookings {
		if filter.Date != "" && record.Date != filter.Date {
			continue
		}
		if filter.RoomID != "" && record.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *stubBookingLedger) DeleteBooking(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *stubBookingLedger) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]persistence.Session
}

func newStubSessionStore(sessions ...persistence.Session) *stubSessionStore {
	store := &stubSessionStore{sessions: make(map[string]persistence.Session)}
	for _, session := range sessions {
		store.sessions[session.ID] = session
	}
	return store
}

func (s *stubSessionStore) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = fixedNow
	}
	session.UpdatedAt = session.CreatedAt
	s.sessions[session.ID] = session
	return session, nil
}

func (s *stubSessionStore) GetSession(_ context.Context, id string) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *stubSessionStore) RevokeSession(_ context.Context, id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[id] = session
	return nil
}

func (s *stubSessionStore) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(reference) {
			delete(s.sessions, id)
		}
	}
	return nil
}
