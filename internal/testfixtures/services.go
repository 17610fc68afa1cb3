package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Clock = clock }
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(gen *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.IDGenerator = gen }
}

// WithLogger overrides the logger injected into constructed services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Logger = logger }
}

// AuthService builds an auth service with a signer derived from the secret.
func (f *ServiceFactory) AuthService(credentials application.CredentialStore, sessions application.SessionStore, secret []byte, ttl time.Duration) (*application.AuthService, *application.TokenSigner, error) {
	signer, err := application.NewTokenSigner(secret, "room-booking-test", f.Clock.NowFunc())
	if err != nil {
		return nil, nil, err
	}
	svc := application.NewAuthService(credentials, sessions, signer, nil, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), ttl, f.Logger)
	return svc, signer, nil
}

// BookingService builds a booking service wired to the given stores.
func (f *ServiceFactory) BookingService(bookings application.BookingLedger, rooms application.RoomCatalog) *application.BookingService {
	return application.NewBookingService(bookings, rooms, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// RoomService builds a room service wired to the given store.
func (f *ServiceFactory) RoomService(rooms application.RoomStore) *application.RoomService {
	return application.NewRoomService(rooms, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// UserService builds a user service wired to the given store. Passwords are
// hashed with a cheap deterministic scheme to keep tests fast.
func (f *ServiceFactory) UserService(users application.UserStore) *application.UserService {
	hash := func(password string) (string, error) { return "hash:" + password, nil }
	return application.NewUserService(users, hash, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}
