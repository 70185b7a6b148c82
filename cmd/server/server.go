package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leemorgale/sms-chat/internal/config"
	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/events"
	"github.com/leemorgale/sms-chat/internal/handlers"
	"github.com/leemorgale/sms-chat/internal/services"
	"github.com/leemorgale/sms-chat/internal/transport"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"github.com/leemorgale/sms-chat/router"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// SetupServer initializes and returns a configured HTTP server.
// The returned cleanup closes the event publisher and the database.
func SetupServer(cfg *config.Config) (*http.Server, func() error, error) {
	if cfg == nil {
		return nil, nil, errors.New("configuration is required")
	}

	if cfg.Server.Port <= 0 {
		return nil, nil, errors.New("invalid server port")
	}

	// Initialize database
	database, err := db.NewDatabase(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sender, err := transport.New(cfg.Transport)
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to initialize transport: %w", err), database.Close())
	}

	publisher, err := events.New(cfg.Events.NATSURL, cfg.Events.Subject)
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to initialize events: %w", err), database.Close())
	}

	// Initialize repositories
	userRepo := db.NewUserRepository(database)
	groupRepo := db.NewGroupRepository(database)
	phoneRepo := db.NewPhoneRepository(database)
	messageRepo := db.NewMessageRepository(database)
	otpRepo := db.NewOTPRepository(database)

	// Initialize services
	poolService := services.NewPhonePoolService(phoneRepo)
	fanoutService := services.NewFanoutService(groupRepo, sender, cfg.Transport, cfg.Fanout.Concurrency)
	userService := services.NewUserService(userRepo, groupRepo)
	groupService := services.NewGroupService(groupRepo, userRepo, messageRepo, poolService, fanoutService, publisher, cfg.Messages.HistoryLimit)
	inboundRouter := services.NewInboundRouter(userRepo, groupRepo, phoneRepo, messageRepo, fanoutService, publisher)
	otpService := services.NewOTPService(otpRepo, userRepo, fanoutService, cfg.Transport.Mock, cfg.Security.OTPEncryptionKey)

	r, err := router.NewRouter(cfg, router.Handlers{
		Users:  handlers.NewUserHandler(userService),
		Auth:   handlers.NewAuthHandler(cfg, otpService, userService),
		Groups: handlers.NewGroupHandler(groupService),
		Admin:  handlers.NewAdminHandler(poolService, groupService),
		SMS:    handlers.NewSMSHandler(inboundRouter),
	}, database)
	if err != nil {
		return nil, nil, multierr.Combine(err, publisher.Close(), database.Close())
	}

	// Create server with security timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Server configured",
		zap.String("addr", srv.Addr),
		zap.String("database_driver", database.Driver()),
		zap.String("transport", sender.Name()),
		zap.Bool("events_enabled", cfg.Events.NATSURL != ""),
	)

	cleanup := func() error {
		return multierr.Combine(publisher.Close(), database.Close())
	}
	return srv, cleanup, nil
}

// StartServer runs srv until SIGINT or SIGTERM
func StartServer(srv *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return StartServerWithContext(ctx, srv)
}

// StartServerWithContext runs srv until ctx is cancelled, then shuts it down
func StartServerWithContext(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
