// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/metrics"
)

// clientIDCounter gives clients a monotonically increasing id so broadcasts
// iterate in a stable order.
var clientIDCounter atomic.Uint64

// outbound is one queued write. A non-zero closeCode ends the connection
// after everything queued before it has been written.
type outbound struct {
	data      []byte
	closeCode int
	closeText string
}

// Client is one accepted socket. Principal and Scope are fixed at handshake.
type Client struct {
	id        uint64
	kind      Kind
	conn      *websocket.Conn
	send      chan outbound
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rate.Limiter
	cfg       *config.RealtimeConfig

	principal auth.Principal
	scope     Scope
}

func newClient(conn *websocket.Conn, kind Kind, cfg *config.RealtimeConfig) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		kind:    kind,
		conn:    conn,
		send:    make(chan outbound, cfg.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(cfg.InboundRate), cfg.InboundBurst),
		cfg:     cfg,
	}
}

// ID returns the client's connection id.
func (c *Client) ID() uint64 {
	return c.id
}

// Principal returns who authenticated the socket.
func (c *Client) Principal() auth.Principal {
	return c.principal
}

// Scope returns the chat or counterpart the socket is bound to.
func (c *Client) Scope() Scope {
	return c.scope
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send queues raw without blocking. It returns false when the client is
// closed or its buffer is full.
func (c *Client) Send(raw []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- outbound{data: raw}:
		return true
	default:
		metrics.WSDropped.WithLabelValues(string(c.kind)).Inc()
		logging.Warn().Uint64("conn_id", c.id).Str("kind", string(c.kind)).Msg("send buffer full, dropping frame")
		return false
	}
}

// sendFailure queues a failure frame and, for fatal kinds, the close that
// follows it.
func (c *Client) sendFailure(f *Failure) {
	metrics.WSErrors.WithLabelValues(string(f.Kind)).Inc()

	raw, err := f.MarshalFrame()
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal failure frame")
		return
	}

	if !f.Fatal() {
		c.Send(raw)
		return
	}

	if !c.Send(raw) {
		c.Close(f.CloseCode(), string(f.Kind))
		return
	}
	select {
	case c.send <- outbound{closeCode: f.CloseCode(), closeText: string(f.Kind)}:
	default:
		c.Close(f.CloseCode(), string(f.Kind))
	}
}

// reject writes a failure frame and closes the connection. It is only used
// during the handshake, before the write pump owns the connection.
func (c *Client) reject(f *Failure) {
	metrics.WSErrors.WithLabelValues(string(f.Kind)).Inc()

	if raw, err := f.MarshalFrame(); err == nil {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			logging.Debug().Err(err).Uint64("conn_id", c.id).Msg("failed to write rejection frame")
		}
	}
	c.Close(f.CloseCode(), string(f.Kind))
}

// Close sends a close frame with code and closes the connection. Only the
// first call has any effect.
func (c *Client) Close(code int, text string) {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(c.cfg.WriteWait)
		msg := websocket.FormatCloseMessage(code, text)
		if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			logging.Debug().Err(err).Uint64("conn_id", c.id).Msg("failed to write close message")
		}
		close(c.done)
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	})
}

// FrameHandler processes one inbound frame. A returned failure is sent back
// to the peer.
type FrameHandler func(ctx context.Context, c *Client, frame *InboundFrame) *Failure

// readPump reads frames until the connection fails or closes. Frames are
// handled one at a time in arrival order.
func (c *Client) readPump(ctx context.Context, handle FrameHandler) {
	defer c.Close(websocket.CloseNormalClosure, "")

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Ctx(ctx).Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.WithLabelValues(string(c.kind)).Inc()

		if messageType != websocket.TextMessage {
			c.sendFailure(NewFailure(ErrorInvalidEntry, "Frames must be JSON text"))
			c.awaitClose()
			return
		}

		if !c.limiter.Allow() {
			c.sendFailure(NewFailure(ErrorRateLimited, "Too many frames"))
			continue
		}

		frame, failure := ParseInboundFrame(data)
		if failure == nil {
			failure = handle(ctx, c, frame)
		}
		if failure == nil {
			continue
		}

		event := logging.Ctx(ctx).Debug()
		if failure.Kind == ErrorInternal {
			event = logging.Ctx(ctx).Error()
		}
		event.Err(failure.Err).Str("error_kind", string(failure.Kind)).Msg("frame rejected")

		c.sendFailure(failure)
		if failure.Fatal() {
			c.awaitClose()
			return
		}
	}
}

// awaitClose gives the write pump time to flush a queued failure frame and
// its close before readPump tears the connection down.
func (c *Client) awaitClose() {
	timer := time.NewTimer(c.cfg.WriteWait)
	defer timer.Stop()
	select {
	case <-c.done:
	case <-timer.C:
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case msg := <-c.send:
			if msg.closeCode != 0 {
				c.Close(msg.closeCode, msg.closeText)
				return
			}

			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				c.Close(websocket.CloseInternalServerErr, "")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
				logging.Debug().Err(err).Uint64("conn_id", c.id).Msg("failed to write frame")
				c.Close(websocket.CloseInternalServerErr, "")
				return
			}
			metrics.WSMessagesSent.WithLabelValues(string(c.kind)).Inc()

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				c.Close(websocket.CloseGoingAway, "")
				return
			}

		case <-c.done:
			return
		}
	}
}
