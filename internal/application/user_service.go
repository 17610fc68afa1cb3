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

// UserStore captures the persistence operations needed by the service.
type UserStore interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByUsername(ctx context.Context, username string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
}

// PasswordHasher derives a storable hash from a plain password.
type PasswordHasher func(password string) (string, error)

// UserService orchestrates account management. Accounts are created by
// administrators (or the seed step); plain passwords are hashed before they
// reach persistence and are never readable back.
type UserService struct {
	users        UserStore
	hashPassword PasswordHasher
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
func NewUserService(users UserStore, hashPassword PasswordHasher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if hashPassword == nil {
		hashPassword = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:        users,
		hashPassword: hashPassword,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser registers a new account for administrators. A taken username
// yields ErrAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	vErr := &ValidationError{}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		vErr.add("username", "username is required")
	}
	if input.Password == "" {
		vErr.add("password", "password is required")
	}
	role := input.Role
	if role == "" {
		role = persistence.RoleStudent
	}
	if role != persistence.RoleAdmin && role != persistence.RoleStudent {
		vErr.add("role", "role must be admin or student")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hash, hashErr := s.hashPassword(input.Password)
	if hashErr != nil {
		err = hashErr
		return
	}

	createdAt := s.now()
	record := persistence.User{
		ID:           s.idGenerator(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if createErr := s.users.CreateUser(ctx, record); createErr != nil {
		err = mapUserRepoError(createErr)
		return
	}

	user = toUser(record)
	return
}

// GetUser retrieves a single account. Users may read their own account; only
// administrators may read others.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}
	if !principal.IsAuthenticated() {
		err = ErrUnauthorized
		return
	}

	userID = strings.TrimSpace(userID)
	if userID != principal.UserID && !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	record, getErr := s.users.GetUser(ctx, userID)
	if getErr != nil {
		err = mapUserRepoError(getErr)
		return
	}

	user = toUser(record)
	return
}

// ListUsers enumerates all accounts for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) (users []User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	records, listErr := s.users.ListUsers(ctx)
	if listErr != nil {
		err = mapUserRepoError(listErr)
		return
	}

	users = make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, toUser(record))
	}
	return
}

// SetUserActive toggles an account's active flag for administrators. An
// inactive account can no longer authenticate or resolve sessions.
func (s *UserService) SetUserActive(ctx context.Context, params SetUserActiveParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetUserActive",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
		"active", params.Active,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update account state", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "account state updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	record, getErr := s.users.GetUser(ctx, strings.TrimSpace(params.UserID))
	if getErr != nil {
		err = mapUserRepoError(getErr)
		return
	}

	record.Active = params.Active
	record.UpdatedAt = s.now()

	if updateErr := s.users.UpdateUser(ctx, record); updateErr != nil {
		err = mapUserRepoError(updateErr)
		return
	}

	user = toUser(record)
	return
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("username", "username is required")
		return vErr
	}
	return err
}
