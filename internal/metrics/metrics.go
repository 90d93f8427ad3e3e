// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocket Metrics
	WSConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agora_ws_connections",
			Help: "Current number of registered WebSocket connections",
		},
		[]string{"kind"}, // "chat", "notification"
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_ws_messages_sent_total",
			Help: "Total number of frames written to WebSocket peers",
		},
		[]string{"kind"},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_ws_messages_received_total",
			Help: "Total number of inbound WebSocket frames",
		},
		[]string{"kind"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_ws_errors_total",
			Help: "Total number of failure frames and rejected handshakes",
		},
		[]string{"error_kind"},
	)

	WSDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_ws_dropped_total",
			Help: "Total number of deliveries dropped because a send buffer was full",
		},
		[]string{"kind"},
	)

	// Relay Metrics
	RelayEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_relay_events_total",
			Help: "Total number of relay events by transport and outcome",
		},
		[]string{"transport", "result"}, // transport: socket, bus; result: ok, error, rejected
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agora_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Group Chat Metrics
	GroupMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_group_mutations_total",
			Help: "Total number of group membership updates by outcome",
		},
		[]string{"result"}, // ok, invalid, forbidden, not_found, conflict, error
	)

	// API Endpoint Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agora_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agora_app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordRelayEvent records the outcome of one relay delivery.
func RecordRelayEvent(transport string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RelayEvents.WithLabelValues(transport, result).Inc()
}

// RecordCircuitBreakerTransition updates the state gauge and counts the transition.
// States follow gobreaker's numbering: 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
