// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/metrics"
	"github.com/tomtom215/agora/internal/models"
)

// BusRelay publishes relay events to a Watermill topic instead of dialing
// the socket endpoints. A BusConsumer on the other side feeds them into
// Server.DispatchRelay.
type BusRelay struct {
	publisher message.Publisher
	topic     string
}

// NewBusRelay creates a relay publishing to topic.
func NewBusRelay(publisher message.Publisher, topic string) *BusRelay {
	return &BusRelay{publisher: publisher, topic: topic}
}

func (r *BusRelay) Enabled() bool { return true }

func (r *BusRelay) NotifyChatEvent(ctx context.Context, event ChatEvent) {
	r.publish(ctx, chatEnvelope(event))
}

func (r *BusRelay) NotifyNotificationEvent(ctx context.Context, n *models.Notification, status Status) {
	r.publish(ctx, notificationEnvelope(n, status))
}

func (r *BusRelay) publish(ctx context.Context, env RelayEnvelope) {
	err := r.doPublish(ctx, env)
	metrics.RecordRelayEvent("bus", err)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("kind", string(env.Kind)).
			Str("id", env.Frame.ID).
			Msg("relay publish failed")
	}
}

func (r *BusRelay) doPublish(ctx context.Context, env RelayEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal relay envelope: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.RequestIDFromContext(ctx)
	}
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}

	if err := r.publisher.Publish(r.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", r.topic, err)
	}
	return nil
}

// Dispatcher routes a relay envelope as if it had arrived on a relay socket.
type Dispatcher interface {
	DispatchRelay(ctx context.Context, env RelayEnvelope) error
}

// BusConsumer subscribes to the relay topic and hands every envelope to a
// Dispatcher. Delivery is at-most-once: messages are acked even when
// dispatch fails.
type BusConsumer struct {
	subscriber message.Subscriber
	topic      string
	dispatcher Dispatcher
}

// NewBusConsumer creates a consumer of topic.
func NewBusConsumer(subscriber message.Subscriber, topic string, dispatcher Dispatcher) *BusConsumer {
	return &BusConsumer{subscriber: subscriber, topic: topic, dispatcher: dispatcher}
}

// RunWithContext consumes until ctx is canceled. It is designed to run
// under a suture supervisor.
func (c *BusConsumer) RunWithContext(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	logging.Info().Str("topic", c.topic).Msg("relay bus consumer started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("topic", c.topic).Msg("relay bus consumer stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("relay subscription closed")
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *BusConsumer) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	if id := middleware.MessageCorrelationID(msg); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	var env RelayEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).Msg("failed to unmarshal relay envelope")
		return
	}

	if err := c.dispatcher.DispatchRelay(ctx, env); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("kind", string(env.Kind)).
			Str("id", env.Frame.ID).
			Msg("relay dispatch failed")
	}
}
