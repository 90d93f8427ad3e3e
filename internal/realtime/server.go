// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/store"
)

// Authenticator admits a connection from its Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (auth.Principal, error)
}

// Server accepts chat and notification sockets and routes their frames.
type Server struct {
	cfg           *config.RealtimeConfig
	origins       []string
	authenticator Authenticator
	resolver      *MembershipResolver
	registry      *Registry
	chats         *ChatRouter
	notifications *NotificationRouter
	upgrader      websocket.Upgrader
}

// NewServer wires the routers and resolver over st. Browser origins are
// checked against allowedOrigins ("*" allows any).
func NewServer(cfg *config.RealtimeConfig, allowedOrigins []string, authenticator Authenticator, st store.Store, registry *Registry) *Server {
	s := &Server{
		cfg:           cfg,
		origins:       allowedOrigins,
		authenticator: authenticator,
		resolver:      NewMembershipResolver(st, st),
		registry:      registry,
		chats:         NewChatRouter(registry, st, st),
		notifications: NewNotificationRouter(registry, st),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      s.checkOrigin,
	}
	return s
}

// Registry returns the registry the server registers sockets in.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Chats returns the chat broadcast router.
func (s *Server) Chats() *ChatRouter {
	return s.chats
}

// Notifications returns the notification broadcast router.
func (s *Server) Notifications() *NotificationRouter {
	return s.notifications
}

// checkOrigin accepts non-browser clients, which send no Origin, and
// browsers from an allowed origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// ServeChat handles GET /ws/chats/{id}.
func (s *Server) ServeChat(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, KindChat, chi.URLParam(r, "id"))
}

// ServeNotifications handles GET /ws/notifications.
func (s *Server) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, KindNotification, "")
}

// serve runs one connection from upgrade to close. Authentication and scope
// resolution happen after the upgrade so failures can be reported as failure
// frames. The read loop runs on the handler goroutine.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, kind Kind, target string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Str("kind", string(kind)).Msg("websocket upgrade error")
		return
	}

	c := newClient(conn, kind, s.cfg)
	ctx := logging.ContextWithConnectionID(r.Context(), c.id)

	principal, err := s.authenticator.Authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		s.rejectHandshake(ctx, c, authFailure(err))
		return
	}
	c.principal = principal

	if kind == KindChat {
		scope, failure := s.resolver.Resolve(ctx, target, principal)
		if failure != nil {
			s.rejectHandshake(ctx, c, failure)
			return
		}
		c.scope = scope
	}

	handle := s.chats.HandleFrame
	if kind == KindNotification {
		handle = s.notifications.HandleFrame
	}

	if !auth.IsRelay(principal) {
		s.registry.Add(c, kind)
		defer s.registry.Remove(c, kind)
	}

	logger := logging.CtxWith(ctx).
		Str("kind", string(kind)).
		Str("principal", principal.Kind()).
		Logger()
	if userID := auth.UserID(principal); !userID.IsZero() {
		logger = logger.With().Str("user_id", userID.Hex()).Logger()
	}
	if chatID := c.scope.ChatID(); !chatID.IsZero() {
		logger = logger.With().Str("chat_id", chatID.Hex()).Logger()
	}
	logger.Debug().Msg("websocket connection opened")

	go c.writePump()
	c.readPump(ctx, handle)

	logger.Debug().Msg("websocket connection closed")
}

func (s *Server) rejectHandshake(ctx context.Context, c *Client, f *Failure) {
	event := logging.Ctx(ctx).Info()
	if f.Kind == ErrorInternal {
		event = logging.Ctx(ctx).Error()
	}
	event.Err(f.Err).
		Str("kind", string(c.kind)).
		Str("error_kind", string(f.Kind)).
		Msg("websocket handshake rejected")
	c.reject(f)
}

// DispatchRelay routes env through the same path as a frame arriving on a
// relay socket. The bus consumer uses it in place of a network hop.
func (s *Server) DispatchRelay(ctx context.Context, env RelayEnvelope) error {
	if !env.Frame.Status.Valid() || env.Frame.ID == "" {
		return NewFailure(ErrorInvalidEntry, "Invalid relay frame")
	}

	c := &Client{
		id:        clientIDCounter.Add(1),
		kind:      env.Kind,
		principal: auth.RelayPrincipal{},
		scope:     Scope{Target: env.Target},
	}
	ctx = logging.ContextWithConnectionID(ctx, c.id)

	var failure *Failure
	switch env.Kind {
	case KindChat:
		failure = s.chats.HandleFrame(ctx, c, &env.Frame)
	case KindNotification:
		failure = s.notifications.HandleFrame(ctx, c, &env.Frame)
	default:
		return fmt.Errorf("unknown relay kind %q", env.Kind)
	}
	if failure != nil {
		return failure
	}
	return nil
}

// RunWithContext blocks until ctx is canceled, then closes every registered
// client. It is designed to run under a suture supervisor.
func (s *Server) RunWithContext(ctx context.Context) error {
	<-ctx.Done()

	closed := s.registry.CloseAll()
	logging.Info().
		Str("component", "realtime-server").
		Int("clients_closed", closed).
		Msg("realtime server stopped")
	return ctx.Err()
}
