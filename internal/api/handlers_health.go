// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/agora/internal/logging"
)

// readyTimeout bounds the store ping of a readiness probe.
const readyTimeout = 2 * time.Second

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 200 OK only when the document store answers a ping, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	rw := NewResponseWriter(w, r)
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed: store unreachable")
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service is not ready", map[string]any{
			"database_connected": false,
		})
		return
	}

	rw.Success(map[string]any{
		"database_connected": true,
		"relay_enabled":      h.relay.Enabled(),
		"uptime":             time.Since(h.startTime).Seconds(),
	})
}
