// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// counterValue reads the current value of a counter child.
func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecordHTTPRequest(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("PATCH", "200")
	before := counterValue(t, c)

	RecordHTTPRequest("PATCH", 200, 15*time.Millisecond)

	if got := counterValue(t, c); got != before+1 {
		t.Errorf("agora_http_requests_total = %v, want %v", got, before+1)
	}
}

func TestRecordRelayEvent(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "ok"},
		{"failure", errors.New("dial refused"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := RelayEvents.WithLabelValues("socket", tt.result)
			before := counterValue(t, c)
			RecordRelayEvent("socket", tt.err)
			if got := counterValue(t, c); got != before+1 {
				t.Errorf("agora_relay_events_total{result=%q} = %v, want %v", tt.result, got, before+1)
			}
		})
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("relay-test", "closed", "open", 2)

	if got := gaugeValue(t, CircuitBreakerState.WithLabelValues("relay-test")); got != 2 {
		t.Errorf("agora_circuit_breaker_state = %v, want 2", got)
	}
	if got := counterValue(t, CircuitBreakerTransitions.WithLabelValues("relay-test", "closed", "open")); got < 1 {
		t.Errorf("agora_circuit_breaker_transitions_total = %v, want >= 1", got)
	}
}

func TestWebSocketConnectionGauge(t *testing.T) {
	g := WSConnections.WithLabelValues("chat")
	before := gaugeValue(t, g)

	g.Inc()
	g.Inc()
	g.Dec()

	if got := gaugeValue(t, g); got != before+1 {
		t.Errorf("agora_ws_connections = %v, want %v", got, before+1)
	}
	g.Dec()
}

func TestConcurrentMetricRecording(t *testing.T) {
	c := WSMessagesSent.WithLabelValues("notification")
	before := counterValue(t, c)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
			RecordHTTPRequest("GET", 200, time.Millisecond)
		}()
	}
	wg.Wait()

	if got := counterValue(t, c); got != before+50 {
		t.Errorf("agora_ws_messages_sent_total = %v, want %v", got, before+50)
	}
}

func TestMetricsRegistration(t *testing.T) {
	WSErrors.WithLabelValues("UNAUTHORIZED").Inc()
	WSDropped.WithLabelValues("chat").Inc()
	WSMessagesReceived.WithLabelValues("chat").Inc()
	GroupMutations.WithLabelValues("ok").Inc()
	AppInfo.WithLabelValues("test", "go").Set(1)
	WSConnections.WithLabelValues("chat").Add(0)
	WSMessagesSent.WithLabelValues("chat").Add(0)
	RecordRelayEvent("bus", nil)
	RecordHTTPRequest("GET", 204, time.Millisecond)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := make(map[string]bool, len(families))
	for _, f := range families {
		found[f.GetName()] = true
	}

	for _, name := range []string{
		"agora_ws_connections",
		"agora_ws_messages_sent_total",
		"agora_ws_messages_received_total",
		"agora_ws_errors_total",
		"agora_ws_dropped_total",
		"agora_relay_events_total",
		"agora_group_mutations_total",
		"agora_http_requests_total",
		"agora_http_request_duration_seconds",
		"agora_app_info",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
