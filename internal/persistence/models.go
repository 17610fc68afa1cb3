package persistence

import "time"

// Role identifies the authorization level of a user account.
type Role string

const (
	// RoleAdmin grants room management and booking create/cancel rights.
	RoleAdmin Role = "admin"
	// RoleStudent grants read access to rooms and bookings.
	RoleStudent Role = "student"
)

// RoomStatus is the derived occupancy flag maintained by the booking ledger.
type RoomStatus string

const (
	// RoomAvailable indicates the room has no confirmed bookings.
	RoomAvailable RoomStatus = "Available"
	// RoomOccupied indicates at least one confirmed booking exists.
	RoomOccupied RoomStatus = "Occupied"
)

// BookingStatus distinguishes live bookings from cancelled ones.
type BookingStatus string

const (
	// BookingConfirmed marks a booking that participates in conflict checks.
	BookingConfirmed BookingStatus = "Confirmed"
	// BookingCancelled marks a booking removed from the active ledger.
	BookingCancelled BookingStatus = "Cancelled"
)

// User represents an account in the booking domain.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable room catalog entry.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Equipment string
	Status    RoomStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents a reserved time slot stored in the ledger. Date is an
// ISO calendar date (YYYY-MM-DD); StartTime and EndTime are zero-padded HH:MM
// strings whose lexicographic order matches temporal order.
type Booking struct {
	ID        string
	RoomID    string
	UserID    string
	Date      string
	StartTime string
	EndTime   string
	Purpose   string
	Status    BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session represents server-side state for an issued session token. The
// opaque token handed to clients is a signed envelope referencing the session
// by ID, so no token value is stored here.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
