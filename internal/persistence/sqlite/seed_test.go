package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/testfixtures"
)

func TestMigrateIsIdempotent(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	if err := harness.Pool.Migrate(context.Background()); err != nil {
		t.Fatalf("expected a second migration run to succeed, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	t.Run("populates an empty database once", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		gen := testfixtures.NewIDGenerator("seed")

		cfg := sqlite.SeedConfig{
			AdminUsername:     "admin",
			AdminPasswordHash: "hash:first-login",
			Rooms:             sqlite.DefaultRooms(),
			IDGenerator:       gen.NextFunc(),
		}

		if err := sqlite.Seed(ctx, harness.Pool, cfg); err != nil {
			t.Fatalf("Seed returned error: %v", err)
		}

		users, err := harness.Users.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers returned error: %v", err)
		}
		if len(users) != 1 || users[0].Role != persistence.RoleAdmin {
			t.Fatalf("expected a single admin account, got %+v", users)
		}

		rooms, err := harness.Rooms.ListRooms(ctx)
		if err != nil {
			t.Fatalf("ListRooms returned error: %v", err)
		}
		if len(rooms) != len(sqlite.DefaultRooms()) {
			t.Fatalf("expected %d rooms, got %d", len(sqlite.DefaultRooms()), len(rooms))
		}

		if err := sqlite.Seed(ctx, harness.Pool, cfg); err != nil {
			t.Fatalf("second Seed returned error: %v", err)
		}
		users, err = harness.Users.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers returned error: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("expected seeding to stay idempotent, got %d users", len(users))
		}
	})

	t.Run("requires admin credentials for an empty database", func(t *testing.T) {
		harness := testfixtures.NewSQLiteHarness(t)
		gen := testfixtures.NewIDGenerator("seed")

		err := sqlite.Seed(context.Background(), harness.Pool, sqlite.SeedConfig{
			Rooms:       sqlite.DefaultRooms(),
			IDGenerator: gen.NextFunc(),
		})
		if err == nil {
			t.Fatal("expected an error when admin credentials are missing")
		}
	})
}
