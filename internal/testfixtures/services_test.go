package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

func TestServiceFactoryBookingFlow(t *testing.T) {
	harness := NewSQLiteHarness(t)
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("fx")))
	ctx := context.Background()

	admin := application.Principal{UserID: "user-admin", Username: "admin", Role: persistence.RoleAdmin}

	roomSvc := factory.RoomService(harness.Rooms)
	room, err := roomSvc.CreateRoom(ctx, application.CreateRoomParams{
		Principal: admin,
		Input:     application.RoomInput{Name: "第1会議室", Capacity: 8},
	})
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	bookingSvc := factory.BookingService(harness.Bookings, harness.Rooms)
	created, err := bookingSvc.CreateBooking(ctx, application.CreateBookingParams{
		Principal: admin,
		Input: application.BookingInput{
			RoomID: room.ID, Date: "2025-04-02",
			StartTime: "10:00", EndTime: "11:00", Purpose: "定例会",
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}

	occupied, err := roomSvc.GetRoom(ctx, admin, room.ID)
	if err != nil {
		t.Fatalf("GetRoom returned error: %v", err)
	}
	if occupied.Status != persistence.RoomOccupied {
		t.Fatalf("expected room to be %q after booking, got %q", persistence.RoomOccupied, occupied.Status)
	}

	_, err = bookingSvc.CreateBooking(ctx, application.CreateBookingParams{
		Principal: admin,
		Input: application.BookingInput{
			RoomID: room.ID, Date: "2025-04-02",
			StartTime: "10:30", EndTime: "11:30",
		},
	})
	var conflict *application.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for an overlapping slot, got %v", err)
	}
	if conflict.BookingID != created.ID {
		t.Fatalf("expected conflict with %q, got %q", created.ID, conflict.BookingID)
	}

	if _, err := bookingSvc.CreateBooking(ctx, application.CreateBookingParams{
		Principal: admin,
		Input: application.BookingInput{
			RoomID: room.ID, Date: "2025-04-02",
			StartTime: "11:00", EndTime: "12:00",
		},
	}); err != nil {
		t.Fatalf("expected the adjacent slot to be accepted, got %v", err)
	}

	listed, err := bookingSvc.ListBookings(ctx, application.ListBookingsParams{
		Principal: admin, Date: "2025-04-02", RoomID: room.ID,
	})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(listed))
	}

	if err := bookingSvc.CancelBooking(ctx, admin, created.ID); err != nil {
		t.Fatalf("CancelBooking returned error: %v", err)
	}
	listed, err = bookingSvc.ListBookings(ctx, application.ListBookingsParams{
		Principal: admin, Date: "2025-04-02", RoomID: room.ID,
	})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 booking after cancellation, got %d", len(listed))
	}
}

func TestServiceFactoryAuthFlow(t *testing.T) {
	harness := NewSQLiteHarness(t)
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("fx")))
	ctx := context.Background()

	hash, err := application.CreatePasswordHash("correct horse", application.DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash returned error: %v", err)
	}
	user := NewUser(WithUsername("alice"), WithPasswordHash(hash), WithRole(persistence.RoleAdmin))
	if err := harness.Users.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	authSvc, _, err := factory.AuthService(harness.Users, harness.Sessions, []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("AuthService returned error: %v", err)
	}

	result, err := authSvc.Authenticate(ctx, application.AuthenticateParams{Username: "alice", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	principal, err := authSvc.ValidateSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("ValidateSession returned error: %v", err)
	}
	if principal.UserID != user.ID || !principal.IsAdmin() {
		t.Fatalf("unexpected principal %+v", principal)
	}

	if _, err := authSvc.Authenticate(ctx, application.AuthenticateParams{Username: "alice", Password: "wrong"}); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := authSvc.RevokeSession(ctx, result.Token); err != nil {
		t.Fatalf("RevokeSession returned error: %v", err)
	}
	if _, err := authSvc.ValidateSession(ctx, result.Token); !errors.Is(err, application.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}
