package main

import (
	grpcserver "chat-room/infrastructure/grpc/server"
	httpserver "chat-room/infrastructure/http/server"
	"chat-room/internal"
	"chat-room/repositories"
	"chat-room/runtime"
	"chat-room/runtime/workers"
	"chat-room/services"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and keeps the deferred cleanups (store, sequence)
// on the exit path, whatever the outcome.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	sequencer, err := repositories.NewSequencer(db)
	if err != nil {
		return fmt.Errorf("message sequence failed: %w", err)
	}
	defer func() { _ = sequencer.Release() }()

	// 3. Services
	censor, err := newCensor(log, config)
	if err != nil {
		return err
	}
	participantRepository := repositories.NewParticipantRepository(db, log, sequencer)
	messageRepository := repositories.NewMessageRepository(db, log, sequencer)
	presenceService := services.NewPresenceService(log, participantRepository, services.SystemClock)
	messageService := services.NewMessageService(log, messageRepository, participantRepository, services.SystemClock, censor)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervision of the sweeper
	healthServer := grpcserver.NewHealthServer(log)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewSweeperWorker(log, presenceService, healthServer, services.SystemClock,
		config.SweepInterval, config.SweepTimeout, config.ExpiryThreshold))
	supervised := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervised)
	}()
	// The sweeper must be done with the store before it is closed
	defer func() {
		sup.Stop()
		<-supervised
	}()

	// 6. Transports
	errChan := make(chan error, 3)
	chatServer := httpserver.NewChatServer(log, presenceService, messageService, healthServer, config.ShutdownTimeout)
	go func() {
		errChan <- chatServer.ListenAndServe(ctx, fmt.Sprintf("%s:%d", config.Host, config.Port))
	}()
	go func() {
		errChan <- healthServer.ListenAndServe(ctx, fmt.Sprintf("%s:%d", config.Host, config.GrpcPort))
	}()
	transports := 2
	if config.DebugPort > 0 {
		transports++
		go func() {
			errChan <- internal.StartDebugServer(ctx, log, db, config.DebugPort,
				internal.RecordMapper, internal.ProcessStats(log))
		}()
	}

	// 7. Wait for Stop or Error
	var serverErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case serverErr = <-errChan:
		stop()
		transports--
	}
	for range transports {
		if err := <-errChan; err != nil {
			log.Warn("Server stopped with error", "error", err)
		}
	}
	if serverErr != nil {
		return fmt.Errorf("server error: %w", serverErr)
	}
	log.Info("Program stopped cleanly")
	return nil
}

// newCensor returns nil when moderation is disabled.
func newCensor(log *slog.Logger, config Config) (services.Censor, error) {
	if !config.EnableModeration {
		return nil, nil
	}
	char, err := runtime.CharacterRune(config.CharacterReplacement)
	if err != nil {
		return nil, err
	}
	moderator, err := runtime.NewModerator(log, char)
	if err != nil {
		return nil, fmt.Errorf("moderation setup failed: %w", err)
	}
	return moderator, nil
}
