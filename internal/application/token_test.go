package application

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTokenSigner(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenSigner(nil, "room-booking-test", fixedClock); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
	if _, err := NewTokenSigner([]byte("secret"), "room-booking-test", fixedClock); err != nil {
		t.Fatalf("NewTokenSigner returned error: %v", err)
	}
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewTokenSigner([]byte("secret"), "room-booking-test", fixedClock)
	if err != nil {
		t.Fatalf("NewTokenSigner returned error: %v", err)
	}

	token, err := signer.Sign("session-1", "alice", fixedNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	claims, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.SessionID != "session-1" {
		t.Fatalf("expected session-1, got %q", claims.SessionID)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
}

func TestTokenSigner_Parse(t *testing.T) {
	t.Parallel()

	signer, err := NewTokenSigner([]byte("secret"), "room-booking-test", fixedClock)
	if err != nil {
		t.Fatalf("NewTokenSigner returned error: %v", err)
	}
	token, err := signer.Sign("session-1", "alice", fixedNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	t.Run("rejects tampered payloads", func(t *testing.T) {
		t.Parallel()
		parts := strings.Split(token, ".")
		if len(parts) != 3 {
			t.Fatalf("expected a three part token, got %d parts", len(parts))
		}
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		if _, err := signer.Parse(tampered); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects tokens from another signer", func(t *testing.T) {
		t.Parallel()
		other, err := NewTokenSigner([]byte("another secret"), "room-booking-test", fixedClock)
		if err != nil {
			t.Fatalf("NewTokenSigner returned error: %v", err)
		}
		foreign, err := other.Sign("session-1", "alice", fixedNow.Add(time.Hour))
		if err != nil {
			t.Fatalf("Sign returned error: %v", err)
		}
		if _, err := signer.Parse(foreign); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		t.Parallel()
		expired, err := signer.Sign("session-1", "alice", fixedNow.Add(-time.Minute))
		if err != nil {
			t.Fatalf("Sign returned error: %v", err)
		}
		if _, err := signer.Parse(expired); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects tokens without a session reference", func(t *testing.T) {
		t.Parallel()
		blank, err := signer.Sign("", "alice", fixedNow.Add(time.Hour))
		if err != nil {
			t.Fatalf("Sign returned error: %v", err)
		}
		if _, err := signer.Parse(blank); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
