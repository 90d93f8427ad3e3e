// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
)

// EventBus carries relay envelopes between REST handlers and the socket
// server when the relay runs in bus mode.
type EventBus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	server *natsserver.Server
}

// InitEventBus builds the bus selected by cfg.Backend. The gochannel backend
// only reaches sockets held by this process; nats reaches every instance
// connected to the same server.
func InitEventBus(cfg *config.EventsConfig) (*EventBus, error) {
	logger := logging.NewWatermillLogger()

	switch cfg.Backend {
	case config.BackendGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		logging.Info().Str("backend", cfg.Backend).Str("topic", cfg.Topic).Msg("Event bus ready")
		return &EventBus{Publisher: ch, Subscriber: ch}, nil

	case config.BackendNATS:
		return initNATSBus(cfg, logger)

	default:
		return nil, fmt.Errorf("unknown event backend %q", cfg.Backend)
	}
}

func initNATSBus(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*EventBus, error) {
	bus := &EventBus{}
	url := cfg.NATSURL

	if cfg.EmbeddedServer {
		ns, err := startEmbeddedNATS(cfg.ServerPort)
		if err != nil {
			return nil, err
		}
		bus.server = ns
		url = ns.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	} else {
		logging.Info().Str("url", url).Msg("Using external NATS server")
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("agora-relay"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	// Relay events are only useful to sockets that are open right now, so
	// core NATS delivery is enough and nothing is persisted.
	publisher, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		bus.Close(context.Background())
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	bus.Publisher = publisher

	subscriber, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		bus.Close(context.Background())
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	bus.Subscriber = subscriber

	logging.Info().
		Str("backend", cfg.Backend).
		Str("topic", cfg.Topic).
		Str("queue_group", cfg.QueueGroup).
		Msg("Event bus ready")
	return bus, nil
}

func startEmbeddedNATS(port int) (*natsserver.Server, error) {
	ns, err := natsserver.NewServer(&natsserver.Options{
		ServerName: "agora-events",
		Host:       "127.0.0.1",
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1 << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("NATS server not ready within timeout")
	}
	return ns, nil
}

// Close shuts the bus down. Subscriber and publisher close before the
// embedded server so their connections drain cleanly.
func (b *EventBus) Close(ctx context.Context) {
	if b == nil {
		return
	}
	if b.Subscriber != nil {
		if err := b.Subscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event subscriber")
		}
	}
	// gochannel uses one value for both sides; closing it twice is a no-op.
	if b.Publisher != nil {
		if err := b.Publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	if b.server != nil {
		b.server.Shutdown()
		done := make(chan struct{})
		go func() {
			b.server.WaitForShutdown()
			close(done)
		}()
		select {
		case <-done:
			logging.Info().Msg("Embedded NATS server stopped")
		case <-ctx.Done():
			logging.Warn().Err(ctx.Err()).Msg("Embedded NATS server shutdown timed out")
		}
	}
}
