package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// WithUserID pins the generated user identifier.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) { u.ID = id }
}

// WithUsername pins the generated username.
func WithUsername(username string) UserOption {
	return func(u *persistence.User) { u.Username = username }
}

// WithPasswordHash pins the stored password hash.
func WithPasswordHash(hash string) UserOption {
	return func(u *persistence.User) { u.PasswordHash = hash }
}

// WithRole pins the account role.
func WithRole(role persistence.Role) UserOption {
	return func(u *persistence.User) { u.Role = role }
}

// Inactive marks the generated account as deactivated.
func Inactive() UserOption {
	return func(u *persistence.User) { u.Active = false }
}

// NewUser materialises a deterministic user record. Each call yields a unique
// identifier and username unless the options pin them.
func NewUser(opts ...UserOption) persistence.User {
	n := atomic.AddUint64(&userCounter, 1)
	user := persistence.User{
		ID:           fmt.Sprintf("user-%d", n),
		Username:     fmt.Sprintf("user%d", n),
		PasswordHash: "hash:password",
		Role:         persistence.RoleStudent,
		Active:       true,
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// NewAdmin materialises a deterministic administrator account.
func NewAdmin(opts ...UserOption) persistence.User {
	base := append([]UserOption{WithRole(persistence.RoleAdmin)}, opts...)
	return NewUser(base...)
}

// RoomOption configures a generated room fixture.
type RoomOption func(*persistence.Room)

// WithRoomID pins the generated room identifier.
func WithRoomID(id string) RoomOption {
	return func(r *persistence.Room) { r.ID = id }
}

// WithRoomName pins the room name.
func WithRoomName(name string) RoomOption {
	return func(r *persistence.Room) { r.Name = name }
}

// WithCapacity pins the room capacity.
func WithCapacity(capacity int) RoomOption {
	return func(r *persistence.Room) { r.Capacity = capacity }
}

// WithEquipment pins the room equipment description.
func WithEquipment(equipment string) RoomOption {
	return func(r *persistence.Room) { r.Equipment = equipment }
}

// WithRoomStatus pins the derived occupancy status.
func WithRoomStatus(status persistence.RoomStatus) RoomOption {
	return func(r *persistence.Room) { r.Status = status }
}

// NewRoom materialises a deterministic room record.
func NewRoom(opts ...RoomOption) persistence.Room {
	n := atomic.AddUint64(&roomCounter, 1)
	room := persistence.Room{
		ID:        fmt.Sprintf("room-%d", n),
		Name:      fmt.Sprintf("会議室%d", n),
		Capacity:  8,
		Equipment: "プロジェクター, ホワイトボード",
		Status:    persistence.RoomAvailable,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// BookingOption configures a generated booking fixture.
type BookingOption func(*persistence.Booking)

// WithBookingID pins the generated booking identifier.
func WithBookingID(id string) BookingOption {
	return func(b *persistence.Booking) { b.ID = id }
}

// ForRoom assigns the booking to a room.
func ForRoom(roomID string) BookingOption {
	return func(b *persistence.Booking) { b.RoomID = roomID }
}

// ForUser assigns the booking owner.
func ForUser(userID string) BookingOption {
	return func(b *persistence.Booking) { b.UserID = userID }
}

// OnDate pins the booking date (YYYY-MM-DD).
func OnDate(date string) BookingOption {
	return func(b *persistence.Booking) { b.Date = date }
}

// DuringSlot pins the booked interval (zero-padded HH:MM).
func DuringSlot(start, end string) BookingOption {
	return func(b *persistence.Booking) {
		b.StartTime = start
		b.EndTime = end
	}
}

// WithPurpose pins the booking purpose.
func WithPurpose(purpose string) BookingOption {
	return func(b *persistence.Booking) { b.Purpose = purpose }
}

// Cancelled marks the booking as removed from the active ledger.
func Cancelled() BookingOption {
	return func(b *persistence.Booking) { b.Status = persistence.BookingCancelled }
}

// NewBooking materialises a deterministic confirmed booking.
func NewBooking(opts ...BookingOption) persistence.Booking {
	n := atomic.AddUint64(&bookingCounter, 1)
	booking := persistence.Booking{
		ID:        fmt.Sprintf("booking-%d", n),
		RoomID:    "room-1",
		UserID:    "user-1",
		Date:      "2025-04-02",
		StartTime: "10:00",
		EndTime:   "11:00",
		Purpose:   "定例会",
		Status:    persistence.BookingConfirmed,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// SessionOption configures a generated session fixture.
type SessionOption func(*persistence.Session)

// WithSessionID pins the generated session identifier.
func WithSessionID(id string) SessionOption {
	return func(s *persistence.Session) { s.ID = id }
}

// OwnedBy assigns the session owner.
func OwnedBy(userID string) SessionOption {
	return func(s *persistence.Session) { s.UserID = userID }
}

// ExpiresAt pins the session expiry.
func ExpiresAt(expiry time.Time) SessionOption {
	return func(s *persistence.Session) { s.ExpiresAt = expiry }
}

// Revoked marks the session as revoked at the given time.
func Revoked(at time.Time) SessionOption {
	return func(s *persistence.Session) { s.RevokedAt = &at }
}

// NewSession materialises a deterministic session record valid for one day
// past the reference time.
func NewSession(opts ...SessionOption) persistence.Session {
	n := atomic.AddUint64(&sessionCounter, 1)
	session := persistence.Session{
		ID:        fmt.Sprintf("session-%d", n),
		UserID:    "user-1",
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}
