package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// CredentialStore exposes the user lookups required by the auth service.
type CredentialStore interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByUsername(ctx context.Context, username string) (persistence.User, error)
}

// SessionStore captures the persistence interactions for issued sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error)
	GetSession(ctx context.Context, id string) (persistence.Session, error)
	RevokeSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates authentication: credential verification, session
// issuance as a signed envelope, and session resolution on later requests.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionStore
	signer         *TokenSigner
	verifyPassword PasswordVerifier
	idGenerator    func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions SessionStore, signer *TokenSigner, verify PasswordVerifier, idGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		signer:         signer,
		verifyPassword: verify,
		idGenerator:    idGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates credentials and issues a signed session token. Every
// rejection (unknown username, wrong password, inactive account) reports the
// same ErrInvalidCredentials so callers cannot probe for usernames.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.sessions == nil || s.signer == nil {
		err = fmt.Errorf("auth service not fully configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := s.loggerWith(ctx, "Authenticate", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	user, lookupErr := s.credentials.GetUserByUsername(ctx, username)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = lookupErr
		return
	}

	if !user.Active {
		err = ErrInvalidCredentials
		return
	}

	if verifyErr := s.verifyPassword(user.PasswordHash, params.Password); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	if pruneErr := s.sessions.DeleteExpiredSessions(ctx, now); pruneErr != nil {
		err = pruneErr
		return
	}

	session, createErr := s.sessions.CreateSession(ctx, persistence.Session{
		ID:        s.idGenerator(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if createErr != nil {
		err = createErr
		return
	}

	token, signErr := s.signer.Sign(session.ID, user.Username, session.ExpiresAt)
	if signErr != nil {
		err = signErr
		return
	}

	result = AuthenticateResult{
		User:      toUser(user),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}
	return
}

// ValidateSession verifies the signed envelope, checks the server-side
// session state, and re-validates the account before returning its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil || s.sessions == nil || s.signer == nil {
		err = fmt.Errorf("auth service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", strings.TrimSpace(token) != "")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).InfoContext(ctx, "session validated")
	}()

	claims, parseErr := s.signer.Parse(strings.TrimSpace(token))
	if parseErr != nil {
		err = parseErr
		return
	}

	session, getErr := s.sessions.GetSession(ctx, claims.SessionID)
	if getErr != nil {
		if errors.Is(getErr, persistence.ErrNotFound) {
			err = ErrUnauthorized
			return
		}
		err = getErr
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		err = ErrSessionExpired
		return
	}

	user, userErr := s.credentials.GetUser(ctx, session.UserID)
	if userErr != nil {
		if errors.Is(userErr, persistence.ErrNotFound) {
			err = ErrUnauthorized
			return
		}
		err = userErr
		return
	}
	if !user.Active {
		err = ErrUnauthorized
		return
	}

	principal = Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
	return
}

// RevokeSession invalidates the session referenced by the signed envelope.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.sessions == nil || s.signer == nil {
		return fmt.Errorf("auth service not fully configured")
	}

	logger := s.loggerWith(ctx, "RevokeSession", "token_provided", strings.TrimSpace(token) != "")

	claims, err := s.signer.Parse(strings.TrimSpace(token))
	if err != nil {
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.RevokeSession(ctx, claims.SessionID, s.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to revoke session", "error", ErrInvalidCredentials, "error_kind", ErrorKind(ErrInvalidCredentials))
			return ErrInvalidCredentials
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session revoked")
	return nil
}

func toUser(user persistence.User) User {
	return User{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
