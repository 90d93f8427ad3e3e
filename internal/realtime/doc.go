// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package realtime implements the WebSocket fan-out layer: the client registry,
the connection handshake, and broadcast routing for chat and notification
sockets.

# Endpoints

	GET /ws/chats/{id}       {id} is a chat id, a username, or the caller's own id
	GET /ws/notifications

Both require an Authorization header holding either "Bearer <jwt>" or the
relay secret. The header is checked after the upgrade so that a rejected
connection receives a failure frame before it is closed.

# Connection Lifecycle

	CONNECTING -> AUTHENTICATING -> AUTHORIZING -> OPEN -> CLOSED
	                     |               |
	                     +--> REJECTED <-+

Chat sockets are bound to a Scope at handshake: a group chat the user owns
or belongs to, or a direct-message counterpart. The scope never changes
afterwards, but every inbound frame is checked again against the store.

# Frames

Inbound:

	{"status": "CREATED" | "UPDATED" | "DELETED", "id": "<message or notification id>"}

Relay deletions may add chatId, senderId and receiverId since the deleted
message can no longer be looked up.

Outbound events are the full resource with "status" merged in, or a minimal
{id, status, chatId} / {id, status, nType} for deletions. Failures look like:

	{"status": "failure", "error": "INVALID_MEMBER", "message": "...", "data": {...}}

# Close Codes

	4001  UNAUTHORIZED, INVALID_TOKEN
	4002  INVALID_PARAMETER
	4003  INVALID_MEMBER
	4004  INVALID_ENTRY
	1011  internal error during the handshake
	1001  server shutdown

INVALID_OWNER, NOT_ALLOWED, NOT_FOUND, RATE_LIMITED and INTERNAL are reported
per frame and leave the socket open.

# Relay

REST handlers publish changes through a Relay. SocketRelay dials the socket
endpoints with the relay secret behind a circuit breaker. BusRelay publishes
a RelayEnvelope to Watermill, and BusConsumer feeds it to
Server.DispatchRelay. Relay connections are never registered, so broadcasts
cannot reach them.

# Thread Safety

The Registry is guarded by a RWMutex and broadcasts iterate a snapshot.
Each Client has one read goroutine and one write goroutine; Send never
blocks and Close is idempotent.
*/
package realtime
