// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/agora/internal/api"
	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/chats"
	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/realtime"
	"github.com/tomtom215/agora/internal/store"
	"github.com/tomtom215/agora/internal/supervisor"
	"github.com/tomtom215/agora/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Driver).
		Str("relay_mode", cfg.Realtime.RelayMode).
		Msg("Starting Agora with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Agora stopped")
}

//nolint:gocyclo // Sequential wiring of every component
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := InitStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return err
	}
	sessions := auth.NewJWTSessionValidator(jwtManager, st)
	authenticator := auth.NewSocketAuthenticator(sessions, cfg.Security.RelaySecret)

	registry := realtime.NewRegistry()
	socketServer := realtime.NewServer(&cfg.Realtime, cfg.Security.CORSOrigins, authenticator, st, registry)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: shutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddMessagingService(services.NewRealtimeService(socketServer))

	var relay realtime.Relay
	switch cfg.Realtime.RelayMode {
	case config.RelayModeSocket:
		socketRelay := realtime.NewSocketRelay(&cfg.Realtime, cfg.Security.RelaySecret)
		tree.AddMessagingService(services.NewRelayDrainService(socketRelay))
		relay = socketRelay

	case config.RelayModeBus:
		bus, err := InitEventBus(&cfg.Events)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			bus.Close(closeCtx)
		}()
		consumer := realtime.NewBusConsumer(bus.Subscriber, cfg.Events.Topic, socketServer)
		tree.AddMessagingService(services.NewRelayConsumerService(consumer))
		relay = realtime.NewBusRelay(bus.Publisher, cfg.Events.Topic)

	default:
		logging.Warn().Msg("Event relay disabled; REST changes will not reach open sockets")
		relay = realtime.NopRelay{}
	}

	handler := api.NewHandler(st, chats.NewEngine(st, st), relay)
	middleware := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, socketServer, sessions, middleware)

	// No WriteTimeout: it would also cap the lifetime of upgraded sockets.
	// ReadTimeout only bounds the upgrade request; readPump replaces the
	// connection deadline right after the handshake.
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}
	tree.AddAPIService(services.NewHTTPServerService(httpServer, shutdownTimeout))

	return tree.Run(ctx)
}
