package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-booking/internal/persistence"
)

func newTestRoomService(store *stubRoomStore) *RoomService {
	return NewRoomService(store, sequentialIDs("room"), fixedClock, nil)
}

func TestRoomService_CreateRoom(t *testing.T) {
	t.Parallel()

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		svc := newTestRoomService(newStubRoomStore())

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: studentPrincipal(),
			Input:     RoomInput{Name: "第1会議室", Capacity: 8},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates name and capacity", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name  string
			input RoomInput
			field string
		}{
			{name: "missing name", input: RoomInput{Capacity: 8}, field: "name"},
			{name: "blank name", input: RoomInput{Name: "   ", Capacity: 8}, field: "name"},
			{name: "zero capacity", input: RoomInput{Name: "第1会議室"}, field: "capacity"},
			{name: "negative capacity", input: RoomInput{Name: "第1会議室", Capacity: -3}, field: "capacity"},
		}
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				svc := newTestRoomService(newStubRoomStore())

				_, err := svc.CreateRoom(context.Background(), CreateRoomParams{Principal: adminPrincipal(), Input: tc.input})
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if _, ok := vErr.FieldErrors[tc.field]; !ok {
					t.Fatalf("expected a field error for %q, got %v", tc.field, vErr.FieldErrors)
				}
			})
		}
	})

	t.Run("persists available rooms for administrators", func(t *testing.T) {
		t.Parallel()
		svc := newTestRoomService(newStubRoomStore())

		room, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: adminPrincipal(),
			Input:     RoomInput{Name: "  第1会議室  ", Capacity: 8, Equipment: "プロジェクター"},
		})
		if err != nil {
			t.Fatalf("CreateRoom returned error: %v", err)
		}
		if room.Name != "第1会議室" {
			t.Fatalf("expected trimmed name, got %q", room.Name)
		}
		if room.Status != persistence.RoomAvailable {
			t.Fatalf("expected new room to be %q, got %q", persistence.RoomAvailable, room.Status)
		}
	})

	t.Run("maps duplicate names to ErrAlreadyExists", func(t *testing.T) {
		t.Parallel()
		svc := newTestRoomService(newStubRoomStore(testRoom("room-1", "第1会議室")))

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: adminPrincipal(),
			Input:     RoomInput{Name: "第1会議室", Capacity: 8},
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestRoomService_UpdateRoom(t *testing.T) {
	t.Parallel()

	t.Run("propagates ErrNotFound for unknown rooms", func(t *testing.T) {
		t.Parallel()
		svc := newTestRoomService(newStubRoomStore())

		_, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: adminPrincipal(),
			RoomID:    "room-missing",
			Input:     RoomInput{Name: "第1会議室", Capacity: 8},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("applies changes for administrators", func(t *testing.T) {
		t.Parallel()
		store := newStubRoomStore(testRoom("room-1", "第1会議室"))
		svc := newTestRoomService(store)

		updated, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: adminPrincipal(),
			RoomID:    "room-1",
			Input:     RoomInput{Name: "大会議室", Capacity: 20, Equipment: "ホワイトボード"},
		})
		if err != nil {
			t.Fatalf("UpdateRoom returned error: %v", err)
		}
		if updated.Name != "大会議室" || updated.Capacity != 20 {
			t.Fatalf("unexpected room after update: %+v", updated)
		}
	})
}

func TestRoomService_ListRooms(t *testing.T) {
	t.Parallel()

	t.Run("requires an authenticated principal", func(t *testing.T) {
		t.Parallel()
		svc := newTestRoomService(newStubRoomStore(testRoom("room-1", "第1会議室")))

		if _, err := svc.ListRooms(context.Background(), Principal{}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("returns the catalog for any authenticated user", func(t *testing.T) {
		t.Parallel()
		svc := newTestRoomService(newStubRoomStore(testRoom("room-1", "第1会議室"), testRoom("room-2", "第2会議室")))

		rooms, err := svc.ListRooms(context.Background(), studentPrincipal())
		if err != nil {
			t.Fatalf("ListRooms returned error: %v", err)
		}
		if len(rooms) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(rooms))
		}
	})
}

func TestRoomService_DeleteRoom(t *testing.T) {
	t.Parallel()

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		svc := newTestRoomService(newStubRoomStore(testRoom("room-1", "第1会議室")))

		if err := svc.DeleteRoom(context.Background(), studentPrincipal(), "room-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("removes rooms for administrators", func(t *testing.T) {
		t.Parallel()
		store := newStubRoomStore(testRoom("room-1", "第1会議室"))
		svc := newTestRoomService(store)

		if err := svc.DeleteRoom(context.Background(), adminPrincipal(), "room-1"); err != nil {
			t.Fatalf("DeleteRoom returned error: %v", err)
		}
		if _, err := store.GetRoom(context.Background(), "room-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatal("expected the room to be removed")
		}
	})
}
