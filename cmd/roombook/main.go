package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	idGenerator := uuid.NewString

	adminHash, err := application.CreatePasswordHash(cfg.SeedAdminPassword, application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}
	if err := sqlite.Seed(ctx, pool, sqlite.SeedConfig{
		AdminUsername:     cfg.SeedAdminUsername,
		AdminPasswordHash: adminHash,
		Rooms:             sqlite.DefaultRooms(),
		IDGenerator:       idGenerator,
	}); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	signer, err := application.NewTokenSigner([]byte(cfg.SessionSecret), "room-booking", time.Now)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}

	userRepo := sqlite.NewUserRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	bookingRepo := sqlite.NewBookingRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	authService := application.NewAuthService(userRepo, sessionRepo, signer, nil, idGenerator, time.Now, cfg.SessionTTL, logger)
	bookingService := application.NewBookingService(bookingRepo, roomRepo, idGenerator, time.Now, logger)
	roomService := application.NewRoomService(roomRepo, idGenerator, time.Now, logger)
	userService := application.NewUserService(userRepo, nil, idGenerator, time.Now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Users:    httptransport.NewUserHandler(userService, logger),
		Rooms:    httptransport.NewRoomHandler(roomService, logger),
		Bookings: httptransport.NewBookingHandler(bookingService, logger),
		Session:  httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
