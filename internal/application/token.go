package application

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the signed session envelope handed to
// clients. The session ID references server-side state so revocation remains
// possible; the username is carried for logging only and is re-validated
// against the credential store on every request.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies HMAC-signed session envelopes. A token is
// unforgeable without the server secret; tampering invalidates the signature.
type TokenSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenSigner constructs a signer for the given server secret.
func NewTokenSigner(secret []byte, issuer string, now func() time.Time) (*TokenSigner, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token signer requires a non-empty secret")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{secret: secret, issuer: issuer, now: now}, nil
}

// Sign produces a compact signed envelope for the session.
func (s *TokenSigner) Sign(sessionID, username string, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies the envelope signature and expiry. Any failure (malformed,
// tampered, expired, or signed with a different key) yields
// ErrInvalidCredentials rather than a detailed reason.
func (s *TokenSigner) Parse(tokenValue string) (SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenValue, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrSessionExpired
		}
		return SessionClaims{}, ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return SessionClaims{}, ErrInvalidCredentials
	}
	return *claims, nil
}
