// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package main is the entry point for the Agora realtime server.

Agora serves the socket endpoints of a social network (group chats, direct
messages, notifications) and the small REST surface whose changes must be
pushed to open sockets.

# Application Architecture

	agora
	├── messaging-layer
	│   ├── realtime-server
	│   ├── relay-consumer   (RELAY_MODE=bus)
	│   └── relay-drain      (RELAY_MODE=socket)
	└── api-layer
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog
 3. Store: MongoDB, or in-memory with DB_DRIVER=memory
 4. Auth: JWT session validator and the socket authenticator
 5. Realtime server and client registry
 6. Event relay: socket dialer, Watermill bus (gochannel or NATS), or disabled
 7. HTTP router (chi) and the supervisor tree

# Configuration

Required:
  - JWT_SECRET: 32+ characters
  - RELAY_SECRET: 32+ characters, different from JWT_SECRET
  - MONGO_URI and MONGO_DATABASE when DB_DRIVER=mongo (the default)

Common:
  - HTTP_HOST, HTTP_PORT
  - RELAY_MODE: socket, bus or disabled
  - EVENTS_BACKEND: gochannel or nats; NATS_URL, NATS_EMBEDDED, NATS_PORT
  - CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - LOG_LEVEL, LOG_FORMAT

# Signal Handling

SIGINT and SIGTERM cancel the tree. Open sockets are closed with 1001, the
HTTP server drains REST requests for up to 10s, then the event bus and the
store are closed.

# Example

	export DB_DRIVER=memory
	export JWT_SECRET=$(openssl rand -base64 32)
	export RELAY_SECRET=$(openssl rand -base64 32)
	export RELAY_MODE=bus
	./agora
*/
package main
