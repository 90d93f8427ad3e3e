// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package metrics provides Prometheus metrics for the realtime server.

All collectors are registered with the default registry through promauto and
are exposed at /metrics by the API router.

# Available Metrics

WebSocket Metrics:
  - agora_ws_connections: Registered sockets (gauge)
    Labels: kind (chat, notification)
  - agora_ws_messages_sent_total: Frames written to peers (counter)
  - agora_ws_messages_received_total: Inbound frames (counter)
  - agora_ws_errors_total: Failure frames and rejected handshakes (counter)
    Labels: error_kind
  - agora_ws_dropped_total: Deliveries dropped on a full send buffer (counter)

Relay Metrics:
  - agora_relay_events_total: Relay deliveries (counter)
    Labels: transport (socket, bus), result
  - agora_circuit_breaker_state: Relay dial breaker state (gauge)
  - agora_circuit_breaker_transitions_total: Breaker transitions (counter)

Group Chat Metrics:
  - agora_group_mutations_total: Membership updates (counter)
    Labels: result

HTTP Metrics:
  - agora_http_requests_total (counter), labels: method, status
  - agora_http_request_duration_seconds (histogram), labels: method

# Thread Safety

Prometheus collectors are safe for concurrent use.
*/
package metrics
