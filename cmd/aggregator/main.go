package main

import (
	"chat-aggregator/aggregator"
	"chat-aggregator/auth"
	"chat-aggregator/broker"
	"chat-aggregator/contract"
	"chat-aggregator/errors"
	"chat-aggregator/infrastructure/postgres"
	"chat-aggregator/infrastructure/websocket"
	"chat-aggregator/internal"
	"chat-aggregator/repositories"
	"chat-aggregator/runtime"
	"chat-aggregator/runtime/workers"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// gateways groups the four entity gateways behind one backend.
type gateways struct {
	messages contract.MessageGateway
	channels contract.ChannelGateway
	rosters  contract.RosterGateway
	users    contract.UserGateway
	close    func() error
}

// run wires the process and blocks until SIGINT/SIGTERM or a server failure.
// Returning instead of exiting lets every defer release its resource.
func run() error {
	// 1. Configuration & Logger
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	policy, err := runtime.ParseFailurePolicy(config.FailurePolicy)
	if err != nil {
		return err
	}

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage
	store, err := openGateways(ctx, log, config)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing store...")
		if err := store.close(); err != nil {
			log.Warn("Closing store failed", "error", err)
		}
	}()

	// 4. Reflection
	registry := runtime.NewRegistry()
	fanout := runtime.NewFanout(log, registry, config.SinkTimeout)
	options := []aggregator.Option{
		aggregator.WithNotifier(fanout),
		aggregator.WithTimeout(config.GatewayTimeout),
	}

	// 5. Aggregators & listeners
	chat := aggregator.NewChatAggregator(log, store.messages, store.channels, store.rosters, options...)
	identity := aggregator.NewIdentityAggregator(log, store.users, options...)

	readerConfig := broker.ReaderConfig{
		Brokers: config.Brokers(),
		GroupID: config.KafkaGroupID,
		Topics:  []string{config.ChatTopic, config.IdentityTopic},
	}
	stats := &runtime.Stats{}
	sup := workers.NewSupervisor(log, config.RestartInterval)
	for i := range config.ConsumerWorkers {
		listener := runtime.NewListener(
			log.With("listener", i),
			broker.Opener(log, readerConfig),
			policy, config.MaxAttempts, config.RetryBackoff,
		).Route(config.ChatTopic, chat).Route(config.IdentityTopic, identity).WithStats(stats)
		sup.Add(listener)
	}
	if config.HeartbeatInterval > 0 {
		sup.Add(workers.NewHeartbeatWorker(log, stats, config.HeartbeatInterval))
	}

	supCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	supervised := make(chan struct{})
	go func() {
		defer close(supervised)
		sup.Run(supCtx)
	}()

	// 6. WebSocket server
	var verifier *auth.TokenVerifier
	if config.JWTSecret != "" {
		verifier = auth.NewTokenVerifier(config.JWTSecret)
	}
	address := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	server := &http.Server{
		Addr:              address,
		Handler:           websocket.NewServer(log, registry, config.ConnectionBufferSize, config.WriteTimeout).Handler(verifier),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
	}

	// 8. Final Cleanup
	stopWorkers()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown failed", "error", err)
	}
	<-supervised
	log.Info("Program stopped cleanly")

	return runErr
}

func openGateways(ctx context.Context, log *slog.Logger, config internal.Config) (gateways, error) {
	switch config.StoreDriver {
	case "badger":
		db, err := repositories.OpenDB(config.BadgerFilepath)
		if err != nil {
			return gateways{}, fmt.Errorf("database opening failed: %w", err)
		}
		store := repositories.NewStore(db, log)
		return gateways{messages: store, channels: store, rosters: store, users: store, close: db.Close}, nil
	case "postgres":
		pg, err := postgres.Connect(config.PostgresDSN)
		if err != nil {
			return gateways{}, fmt.Errorf("database opening failed: %w", err)
		}
		if err = pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return gateways{}, fmt.Errorf("migration failed: %w", err)
		}
		gateway := postgres.NewGateway(pg.DB, log)
		return gateways{messages: gateway, channels: gateway, rosters: gateway, users: gateway, close: pg.Close}, nil
	default:
		return gateways{}, fmt.Errorf("%w: %q", errors.ErrUnknownStoreDriver, config.StoreDriver)
	}
}
