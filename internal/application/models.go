package application

import (
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   string
	Username string
	Role     persistence.Role
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == persistence.RoleAdmin
}

// IsAuthenticated reports whether the principal resolved from a valid session.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != ""
}

// User represents an account exposed by the application services. The
// password hash never leaves the service layer.
type User struct {
	ID        string
	Username  string
	Role      persistence.Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserInput captures caller provided attributes for a new user.
type UserInput struct {
	Username string
	Password string
	Role     persistence.Role
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// SetUserActiveParams wraps the data required to toggle an account's active flag.
type SetUserActiveParams struct {
	Principal Principal
	UserID    string
	Active    bool
}

// Room represents a bookable room exposed by the application services.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Equipment string
	Status    persistence.RoomStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Capacity  int
	Equipment string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// Booking represents a reserved slot exposed by the application services.
type Booking struct {
	ID        string
	RoomID    string
	UserID    string
	Date      string
	StartTime string
	EndTime   string
	Purpose   string
	Status    persistence.BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingInput captures caller provided booking fields. Date uses the
// YYYY-MM-DD format; StartTime and EndTime use zero-padded HH:MM.
type BookingInput struct {
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
	Purpose   string
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// ListBookingsParams wraps the data required to list bookings for a date.
type ListBookingsParams struct {
	Principal Principal
	Date      string
	RoomID    string
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Username string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication
// attempt. Token is the signed session envelope handed to the client.
type AuthenticateResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
