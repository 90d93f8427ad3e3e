// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"testing"
	"time"

	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/models"
)

func init() {
	logging.SetLevelString("disabled")
}

func testConfig() *config.RealtimeConfig {
	return &config.RealtimeConfig{
		RelayMode:          config.RelayModeSocket,
		RelayTimeout:       2 * time.Second,
		PingPeriod:         54 * time.Second,
		PongWait:           60 * time.Second,
		WriteWait:          2 * time.Second,
		MaxMessageSize:     64 * 1024,
		SendBuffer:         16,
		InboundRate:        1000,
		InboundBurst:       1000,
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
	}
}

// detachedClient builds a client with no connection for router tests. Only
// Send may be used on it.
func detachedClient(kind Kind, p auth.Principal, scope Scope) *Client {
	return &Client{
		id:        clientIDCounter.Add(1),
		kind:      kind,
		send:      make(chan outbound, 16),
		done:      make(chan struct{}),
		cfg:       testConfig(),
		principal: p,
		scope:     scope,
	}
}

func userPrincipal(u *models.User) auth.Principal {
	return auth.UserPrincipal{User: u}
}

// queued returns the frames waiting in c's send buffer.
func queued(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg.data)
		default:
			return out
		}
	}
}

func requireFailure(t *testing.T, f *Failure, kind ErrorKind) {
	t.Helper()
	if f == nil {
		t.Fatalf("failure = nil, want %s", kind)
	}
	if f.Kind != kind {
		t.Errorf("failure kind = %s, want %s (%v)", f.Kind, kind, f)
	}
}
