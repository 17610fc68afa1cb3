package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// SeedConfig describes the initial records inserted into an empty database.
type SeedConfig struct {
	AdminUsername     string
	AdminPasswordHash string
	Rooms             []persistence.Room
	IDGenerator       func() string
}

// Seed inserts the administrator account and the default room catalog. The
// step is idempotent: users are only seeded while the users table is empty,
// and rooms only while the rooms table is empty, so restarting the process
// never duplicates records.
func Seed(ctx context.Context, pool *ConnectionPool, cfg SeedConfig) error {
	if cfg.IDGenerator == nil {
		return fmt.Errorf("seed: id generator is required")
	}

	users := NewUserRepository(pool)
	rooms := NewRoomRepository(pool)

	existingUsers, err := users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: failed to inspect users: %w", err)
	}
	if len(existingUsers) == 0 {
		username := strings.TrimSpace(cfg.AdminUsername)
		if username == "" || cfg.AdminPasswordHash == "" {
			return fmt.Errorf("seed: admin credentials are required for an empty database")
		}
		err := users.CreateUser(ctx, persistence.User{
			ID:           cfg.IDGenerator(),
			Username:     username,
			PasswordHash: cfg.AdminPasswordHash,
			Role:         persistence.RoleAdmin,
			Active:       true,
		})
		if err != nil {
			return fmt.Errorf("seed: failed to create admin user: %w", err)
		}
	}

	existingRooms, err := rooms.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("seed: failed to inspect rooms: %w", err)
	}
	if len(existingRooms) == 0 {
		for _, room := range cfg.Rooms {
			room.ID = cfg.IDGenerator()
			if room.Status == "" {
				room.Status = persistence.RoomAvailable
			}
			if err := rooms.CreateRoom(ctx, room); err != nil {
				return fmt.Errorf("seed: failed to create room %q: %w", room.Name, err)
			}
		}
	}

	return nil
}

// DefaultRooms is the room catalog seeded into a fresh installation.
func DefaultRooms() []persistence.Room {
	return []persistence.Room{
		{Name: "101", Capacity: 30, Equipment: "プロジェクター, ホワイトボード"},
		{Name: "102", Capacity: 30, Equipment: "ホワイトボード"},
		{Name: "201", Capacity: 50, Equipment: "プロジェクター, マイク"},
		{Name: "202", Capacity: 12, Equipment: "モニター"},
	}
}
