// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package config provides centralized configuration management for Agora.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, or the first of DefaultConfigPaths found)
 3. Environment variables, through an explicit name mapping

Unknown environment variables are ignored so that the process environment
cannot leak into configuration by accident.

# Environment Variables

HTTP server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, ENVIRONMENT

Document store:
  - DB_DRIVER: mongo or memory (default: mongo)
  - MONGO_URI, MONGO_DATABASE, MONGO_CONNECT_TIMEOUT, MONGO_MAX_POOL_SIZE

Security:
  - JWT_SECRET: HS256 session secret (required, 32+ characters)
  - RELAY_SECRET: shared secret admitting the event relay (required, 32+ characters)
  - SESSION_TIMEOUT, CORS_ORIGINS (comma separated)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Realtime sockets:
  - RELAY_MODE: socket, bus or disabled (default: bus)
  - RELAY_HOST, RELAY_SECURE, RELAY_TIMEOUT
  - WS_PING_PERIOD, WS_PONG_WAIT, WS_WRITE_WAIT, WS_MAX_MESSAGE_SIZE, WS_SEND_BUFFER
  - WS_INBOUND_RATE, WS_INBOUND_BURST
  - RELAY_BREAKER_MAX_FAILURES, RELAY_BREAKER_TIMEOUT

Event bus:
  - EVENTS_BACKEND: gochannel or nats (default: gochannel)
  - NATS_URL, NATS_EMBEDDED, NATS_PORT, NATS_STORE_DIR, EVENTS_TOPIC, NATS_QUEUE_GROUP

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
