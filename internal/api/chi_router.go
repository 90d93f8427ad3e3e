// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/agora/internal/auth"
)

// SocketServer serves the WebSocket endpoints.
type SocketServer interface {
	ServeChat(w http.ResponseWriter, r *http.Request)
	ServeNotifications(w http.ResponseWriter, r *http.Request)
}

// Router wires handlers, sockets and middleware into one http.Handler.
type Router struct {
	handler       *Handler
	sockets       SocketServer
	sessions      auth.SessionValidator
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, sockets SocketServer, sessions auth.SessionValidator, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		sockets:       sockets,
		sessions:      sessions,
		chiMiddleware: mw,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())

	// Sockets authenticate in the handshake, after the upgrade, so failures
	// can be reported with a close code.
	r.Route("/ws", func(r chi.Router) {
		r.Get("/chats/{id}", router.sockets.ServeChat)
		r.Get("/notifications", router.sockets.ServeNotifications)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Get("/health/live", router.handler.HealthLive)
		r.Get("/health/ready", router.handler.HealthReady)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(router.sessions))

			r.Patch("/chats/{id}/users", router.handler.UpdateChatMembers)
			r.Delete("/messages/{id}", router.handler.DeleteMessage)
			r.Delete("/notifications/{id}", router.handler.DeleteNotification)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return r
}
