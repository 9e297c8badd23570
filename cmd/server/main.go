package main

import (
	"chat-live/auth"
	"chat-live/infrastructure/httpapi"
	"chat-live/infrastructure/ws"
	"chat-live/internal"
	"chat-live/observability"
	"chat-live/repositories"
	"chat-live/runtime"
	"chat-live/runtime/workers"
	"chat-live/services"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. Calling os.Exit here directly would skip
// the deferred database cleanup.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB) holding the account records
	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Ensures the database lock is released and buffers are flushed.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Auth stack: user directory + token codec
	userRepository := repositories.NewUserRepository(db)
	codec := auth.NewTokenCodec(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, codec)

	// 4. Messaging runtime: registry, engine, supervised workers
	monitoring := observability.NewMonitoring()
	supervisor := workers.NewSupervisor(logger)
	registry := runtime.NewRegistry()
	engine := runtime.NewEngine(logger, supervisor, registry, monitoring,
		config.BufferSize, config.SinkTimeout, config.MetricInterval, charReplacement)
	chatService := services.NewChatService(engine)

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- engine.Start(ctx)
	}()

	// 5. HTTP surface: auth endpoints + websocket entry point
	wsHandler := ws.NewHandler(logger, codec, chatService,
		config.ConnectionBufferSize, config.MaxMessageSize)
	api := httpapi.NewServer(logger, authService, chatService, monitoring)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: addr, Handler: api.Router(wsHandler)}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Chat node listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-engineErr:
		if err != nil {
			return exitRuntime, fmt.Errorf("engine failed: %w", err)
		}
	case err := <-serverErr:
		return exitRuntime, fmt.Errorf("http server failed: %w", err)
	}

	// Graceful shutdown: stop accepting requests, then stop the workers.
	// All sessions are dropped; clients must reconnect and re-authenticate.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	engine.Stop()

	return exitOK, nil
}
