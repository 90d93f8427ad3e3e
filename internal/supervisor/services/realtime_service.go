// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package services

import (
	"context"
)

// ContextRunner is anything with a blocking, context-aware run loop.
//
// Satisfied by *realtime.Server (closes every socket with 1001 on shutdown)
// and *realtime.BusConsumer (consumes relay envelopes from the event bus).
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RealtimeService supervises the socket server. When the tree stops, the
// server closes all registered clients so they reconnect elsewhere.
//
//	srv := realtime.NewServer(&cfg.Realtime, cfg.Security.CORSOrigins, authenticator, st, registry)
//	tree.AddMessagingService(services.NewRealtimeService(srv))
type RealtimeService struct {
	server ContextRunner
	name   string
}

// NewRealtimeService creates a supervised wrapper for the socket server.
func NewRealtimeService(server ContextRunner) *RealtimeService {
	return &RealtimeService{
		server: server,
		name:   "realtime-server",
	}
}

// Serve implements suture.Service.
func (s *RealtimeService) Serve(ctx context.Context) error {
	return s.server.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
func (s *RealtimeService) String() string {
	return s.name
}

// RelayConsumerService supervises the event bus consumer that turns relay
// envelopes into broadcasts. A closed subscription returns an error, which
// suture answers with a restart and a fresh Subscribe.
type RelayConsumerService struct {
	consumer ContextRunner
	name     string
}

// NewRelayConsumerService creates a supervised wrapper for a bus consumer.
func NewRelayConsumerService(consumer ContextRunner) *RelayConsumerService {
	return &RelayConsumerService{
		consumer: consumer,
		name:     "relay-consumer",
	}
}

// Serve implements suture.Service.
func (s *RelayConsumerService) Serve(ctx context.Context) error {
	return s.consumer.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
func (s *RelayConsumerService) String() string {
	return s.name
}

// Drainer waits for background work to finish.
//
// Satisfied by *realtime.SocketRelay, whose deliveries run detached from the
// request that triggered them.
type Drainer interface {
	Wait()
}

// RelayDrainService holds shutdown open until in-flight socket relay
// deliveries have finished, bounded by the supervisor's shutdown timeout.
type RelayDrainService struct {
	relay Drainer
	name  string
}

// NewRelayDrainService creates a service that drains relay on shutdown.
func NewRelayDrainService(relay Drainer) *RelayDrainService {
	return &RelayDrainService{
		relay: relay,
		name:  "relay-drain",
	}
}

// Serve implements suture.Service.
func (s *RelayDrainService) Serve(ctx context.Context) error {
	<-ctx.Done()
	s.relay.Wait()
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *RelayDrainService) String() string {
	return s.name
}
