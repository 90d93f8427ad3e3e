// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/metrics"
	"github.com/tomtom215/agora/internal/models"
)

// ChatEvent describes a change to a chat message. ChatID is set for group
// messages; SenderID and ReceiverID for direct messages.
type ChatEvent struct {
	ChatID     primitive.ObjectID
	MessageID  primitive.ObjectID
	SenderID   primitive.ObjectID
	ReceiverID primitive.ObjectID
	Status     Status
}

// ChatEventFor builds the event for msg.
func ChatEventFor(msg *models.Message, status Status) ChatEvent {
	e := ChatEvent{MessageID: msg.ID, SenderID: msg.Sender, Status: status}
	if msg.Chat != nil {
		e.ChatID = *msg.Chat
	}
	if msg.Receiver != nil {
		e.ReceiverID = *msg.Receiver
	}
	return e
}

// Relay injects REST-side changes into the broadcast path. Delivery is
// fire-and-forget: failures are logged and counted, never returned.
type Relay interface {
	NotifyChatEvent(ctx context.Context, event ChatEvent)
	NotifyNotificationEvent(ctx context.Context, n *models.Notification, status Status)

	// Enabled reports whether events reach the socket layer at all.
	Enabled() bool
}

// RelayEnvelope is one relay event addressed like a socket connection: the
// endpoint kind, the /ws/chats/{id} path target, and the frame to send.
type RelayEnvelope struct {
	Kind   Kind         `json:"kind"`
	Target string       `json:"target,omitempty"`
	Frame  InboundFrame `json:"frame"`
}

func chatEnvelope(e ChatEvent) RelayEnvelope {
	env := RelayEnvelope{
		Kind:  KindChat,
		Frame: InboundFrame{Status: e.Status, ID: e.MessageID.Hex()},
	}
	switch {
	case !e.ChatID.IsZero():
		env.Target = e.ChatID.Hex()
		env.Frame.ChatID = env.Target
	case !e.ReceiverID.IsZero():
		env.Target = e.ReceiverID.Hex()
		env.Frame.SenderID = e.SenderID.Hex()
		env.Frame.ReceiverID = e.ReceiverID.Hex()
	}
	return env
}

func notificationEnvelope(n *models.Notification, status Status) RelayEnvelope {
	env := RelayEnvelope{
		Kind:  KindNotification,
		Frame: InboundFrame{Status: status, ID: n.ID.Hex()},
	}
	if status == StatusDeleted {
		env.Frame.ReceiverID = n.Receiver.Hex()
		env.Frame.NType = n.Type
	}
	return env
}

// NopRelay drops every event. It is used in tests and with relay_mode
// "disabled".
type NopRelay struct{}

func (NopRelay) NotifyChatEvent(context.Context, ChatEvent)                            {}
func (NopRelay) NotifyNotificationEvent(context.Context, *models.Notification, Status) {}
func (NopRelay) Enabled() bool                                                         { return false }

// SocketRelay dials the server's own socket endpoints with the relay secret
// and writes a single frame per event.
type SocketRelay struct {
	host    string
	secure  bool
	secret  string
	timeout time.Duration
	dialer  *websocket.Dialer
	breaker *gobreaker.CircuitBreaker[struct{}]
	wg      sync.WaitGroup
}

// NewSocketRelay creates a relay that dials cfg.RelayHost.
func NewSocketRelay(cfg *config.RealtimeConfig, secret string) *SocketRelay {
	return &SocketRelay{
		host:    cfg.RelayHost,
		secure:  cfg.RelaySecure,
		secret:  secret,
		timeout: cfg.RelayTimeout,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.RelayTimeout,
		},
		breaker: NewRelayBreaker("relay-socket", cfg),
	}
}

// NewRelayBreaker creates the circuit breaker guarding relay dials. It opens
// after cfg.BreakerMaxFailures consecutive failures and probes again after
// cfg.BreakerTimeout.
func NewRelayBreaker(name string, cfg *config.RealtimeConfig) *gobreaker.CircuitBreaker[struct{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("relay circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
}

func (r *SocketRelay) Enabled() bool { return true }

func (r *SocketRelay) NotifyChatEvent(ctx context.Context, event ChatEvent) {
	r.dispatch(ctx, chatEnvelope(event))
}

func (r *SocketRelay) NotifyNotificationEvent(ctx context.Context, n *models.Notification, status Status) {
	r.dispatch(ctx, notificationEnvelope(n, status))
}

// Wait blocks until every in-flight delivery has finished.
func (r *SocketRelay) Wait() {
	r.wg.Wait()
}

// dispatch delivers env in the background, detached from the caller's
// cancellation but bounded by the relay timeout.
func (r *SocketRelay) dispatch(ctx context.Context, env RelayEnvelope) {
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		_, err := r.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, r.deliver(ctx, env)
		})
		metrics.RecordRelayEvent("socket", err)
		if err != nil {
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("kind", string(env.Kind)).
				Str("id", env.Frame.ID).
				Msg("relay delivery failed")
		}
	}()
}

// endpoint returns the socket URL for env.
func (r *SocketRelay) endpoint(env RelayEnvelope) string {
	u := url.URL{Scheme: "ws", Host: r.host, Path: "/ws/notifications"}
	if r.secure {
		u.Scheme = "wss"
	}
	if env.Kind == KindChat {
		u.Path = "/ws/chats/" + env.Target
		u.RawPath = "/ws/chats/" + url.PathEscape(env.Target)
	}
	return u.String()
}

func (r *SocketRelay) deliver(ctx context.Context, env RelayEnvelope) error {
	raw, err := json.Marshal(env.Frame)
	if err != nil {
		return fmt.Errorf("marshal relay frame: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", r.secret)

	conn, resp, err := r.dialer.DialContext(ctx, r.endpoint(env), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial relay endpoint: %w", err)
	}
	defer func() { _ = conn.Close() }()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(r.timeout)
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set relay write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("write relay frame: %w", err)
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, deadline); err != nil {
		logging.Debug().Err(err).Msg("failed to close relay connection cleanly")
	}
	return nil
}
