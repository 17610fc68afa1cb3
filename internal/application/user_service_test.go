package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-booking/internal/persistence"
)

func newTestUserService(store *stubUserStore) *UserService {
	hash := func(password string) (string, error) { return "hash:" + password, nil }
	return NewUserService(store, hash, sequentialIDs("user"), fixedClock, nil)
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(newStubUserStore())

		_, err := svc.CreateUser(context.Background(), CreateUserParams{
			Principal: studentPrincipal(),
			Input:     UserInput{Username: "bob", Password: "secret"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates username, password, and role", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name  string
			input UserInput
			field string
		}{
			{name: "missing username", input: UserInput{Password: "secret"}, field: "username"},
			{name: "missing password", input: UserInput{Username: "bob"}, field: "password"},
			{name: "unknown role", input: UserInput{Username: "bob", Password: "secret", Role: "janitor"}, field: "role"},
		}
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				svc := newTestUserService(newStubUserStore())

				_, err := svc.CreateUser(context.Background(), CreateUserParams{Principal: adminPrincipal(), Input: tc.input})
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

	t.Run("stores hashed passwords and defaults to the student role", func(t *testing.T) {
		t.Parallel()
		store := newStubUserStore()
		svc := newTestUserService(store)

		created, err := svc.CreateUser(context.Background(), CreateUserParams{
			Principal: adminPrincipal(),
			Input:     UserInput{Username: "bob", Password: "secret"},
		})
		if err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}
		if created.Role != persistence.RoleStudent {
			t.Fatalf("expected default role %q, got %q", persistence.RoleStudent, created.Role)
		}
		if !created.Active {
			t.Fatal("expected new accounts to be active")
		}

		record, err := store.GetUser(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("GetUser returned error: %v", err)
		}
		if record.PasswordHash != "hash:secret" {
			t.Fatalf("expected the stored password to be hashed, got %q", record.PasswordHash)
		}
	})

	t.Run("maps duplicate usernames to ErrAlreadyExists", func(t *testing.T) {
		t.Parallel()
		store := newStubUserStore(seedUser("user-1", "bob", "secret", persistence.RoleStudent, true))
		svc := newTestUserService(store)

		_, err := svc.CreateUser(context.Background(), CreateUserParams{
			Principal: adminPrincipal(),
			Input:     UserInput{Username: "bob", Password: "another"},
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()

	store := newStubUserStore(
		seedUser("user-1", "alice", "secret", persistence.RoleAdmin, true),
		seedUser("user-2", "bob", "secret", persistence.RoleStudent, true),
	)

	t.Run("users may read their own account", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(store)

		self := Principal{UserID: "user-2", Username: "bob", Role: persistence.RoleStudent}
		user, err := svc.GetUser(context.Background(), self, "user-2")
		if err != nil {
			t.Fatalf("GetUser returned error: %v", err)
		}
		if user.Username != "bob" {
			t.Fatalf("expected bob, got %q", user.Username)
		}
	})

	t.Run("students may not read other accounts", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(store)

		other := Principal{UserID: "user-2", Username: "bob", Role: persistence.RoleStudent}
		if _, err := svc.GetUser(context.Background(), other, "user-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("administrators may read any account", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(store)

		admin := Principal{UserID: "user-1", Username: "alice", Role: persistence.RoleAdmin}
		if _, err := svc.GetUser(context.Background(), admin, "user-2"); err != nil {
			t.Fatalf("GetUser returned error: %v", err)
		}
	})
}

func TestUserService_ListUsers(t *testing.T) {
	t.Parallel()

	store := newStubUserStore(
		seedUser("user-1", "alice", "secret", persistence.RoleAdmin, true),
		seedUser("user-2", "bob", "secret", persistence.RoleStudent, true),
	)

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(store)

		if _, err := svc.ListUsers(context.Background(), studentPrincipal()); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("returns every account for administrators", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(store)

		users, err := svc.ListUsers(context.Background(), adminPrincipal())
		if err != nil {
			t.Fatalf("ListUsers returned error: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
	})
}

func TestUserService_SetUserActive(t *testing.T) {
	t.Parallel()

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		store := newStubUserStore(seedUser("user-2", "bob", "secret", persistence.RoleStudent, true))
		svc := newTestUserService(store)

		_, err := svc.SetUserActive(context.Background(), SetUserActiveParams{
			Principal: studentPrincipal(),
			UserID:    "user-2",
			Active:    false,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound for unknown accounts", func(t *testing.T) {
		t.Parallel()
		svc := newTestUserService(newStubUserStore())

		_, err := svc.SetUserActive(context.Background(), SetUserActiveParams{
			Principal: adminPrincipal(),
			UserID:    "user-missing",
			Active:    false,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deactivates and reactivates accounts", func(t *testing.T) {
		t.Parallel()
		store := newStubUserStore(seedUser("user-2", "bob", "secret", persistence.RoleStudent, true))
		svc := newTestUserService(store)

		deactivated, err := svc.SetUserActive(context.Background(), SetUserActiveParams{
			Principal: adminPrincipal(),
			UserID:    "user-2",
			Active:    false,
		})
		if err != nil {
			t.Fatalf("SetUserActive returned error: %v", err)
		}
		if deactivated.Active {
			t.Fatal("expected the account to be inactive")
		}

		reactivated, err := svc.SetUserActive(context.Background(), SetUserActiveParams{
			Principal: adminPrincipal(),
			UserID:    "user-2",
			Active:    true,
		})
		if err != nil {
			t.Fatalf("SetUserActive returned error: %v", err)
		}
		if !reactivated.Active {
			t.Fatal("expected the account to be active again")
		}
	})
}
