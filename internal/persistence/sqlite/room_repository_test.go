package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

func TestRoomRepository(t *testing.T) {
	t.Run("round trips a room", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()

		room := seedRoom(t, harness, testfixtures.WithRoomName("第1会議室"), testfixtures.WithCapacity(8))

		stored, err := harness.Rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom returned error: %v", err)
		}
		if stored.Name != "第1会議室" || stored.Capacity != 8 {
			t.Fatalf("unexpected room %+v", stored)
		}
		if stored.Status != persistence.RoomAvailable {
			t.Fatalf("expected %q, got %q", persistence.RoomAvailable, stored.Status)
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		seedRoom(t, harness, testfixtures.WithRoomName("第1会議室"))

		err := harness.Rooms.CreateRoom(context.Background(), testfixtures.NewRoom(testfixtures.WithRoomName("第1会議室")))
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("updates room attributes", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		room := seedRoom(t, harness)

		room.Name = "大会議室"
		room.Capacity = 20
		if err := harness.Rooms.UpdateRoom(ctx, room); err != nil {
			t.Fatalf("UpdateRoom returned error: %v", err)
		}

		stored, err := harness.Rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom returned error: %v", err)
		}
		if stored.Name != "大会議室" || stored.Capacity != 20 {
			t.Fatalf("unexpected room after update %+v", stored)
		}
	})

	t.Run("lists rooms ordered by name", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		seedRoom(t, harness, testfixtures.WithRoomName("B会議室"))
		seedRoom(t, harness, testfixtures.WithRoomName("A会議室"))

		rooms, err := harness.Rooms.ListRooms(context.Background())
		if err != nil {
			t.Fatalf("ListRooms returned error: %v", err)
		}
		if len(rooms) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(rooms))
		}
		if rooms[0].Name != "A会議室" {
			t.Fatalf("expected A会議室 first, got %q", rooms[0].Name)
		}
	})

	t.Run("refuses to delete a room with bookings", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		room := seedRoom(t, harness)
		user := seedUser(t, harness)

		if _, err := harness.Bookings.CreateBooking(ctx, testfixtures.NewBooking(
			testfixtures.ForRoom(room.ID),
			testfixtures.ForUser(user.ID),
		)); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}

		err := harness.Rooms.DeleteRoom(ctx, room.ID)
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("deletes unbooked rooms", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		room := seedRoom(t, harness)

		if err := harness.Rooms.DeleteRoom(ctx, room.ID); err != nil {
			t.Fatalf("DeleteRoom returned error: %v", err)
		}
		if _, err := harness.Rooms.GetRoom(ctx, room.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
