// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package api provides the HTTP layer of Agora: the handful of REST endpoints
that mutate realtime state, the health probes, and the routing that mounts the
WebSocket endpoints next to them.

Routes:

	GET    /api/v1/health/live           liveness probe
	GET    /api/v1/health/ready          readiness probe (store ping)
	PATCH  /api/v1/chats/{id}/users      add/remove group members (owner only)
	DELETE /api/v1/messages/{id}         delete a message (sender only)
	DELETE /api/v1/notifications/{id}    delete a notification (receiver only)
	GET    /ws/chats/{id}                chat socket
	GET    /ws/notifications             notification socket
	GET    /metrics                      Prometheus scrape endpoint

The /api/v1 routes are rate limited per client IP with go-chi/httprate. The
mutating routes require "Authorization: Bearer <jwt>"; the session user is
available to handlers through UserFromContext.

Deletions reach connected clients through a realtime.Relay. Message deletes
are relayed after the record is removed. Notification deletes are handed to
the socket layer, which removes the record after pushing the deletion to the
receiver; with the relay disabled the handler deletes the record itself.

Responses use a single envelope:

	{
	  "success": false,
	  "error": {"code": "FORBIDDEN", "message": "...", "request_id": "..."},
	  "metadata": {"request_id": "...", "timestamp": "...", "duration_ms": 0}
	}
*/
package api
