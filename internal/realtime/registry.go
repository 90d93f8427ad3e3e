// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"sort"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/metrics"
)

// Kind separates chat sockets from notification sockets.
type Kind string

const (
	KindChat         Kind = "chat"
	KindNotification Kind = "notification"
)

// Registry holds the live sockets that fan-out may reach. Relay connections
// are never registered.
type Registry struct {
	mu      sync.RWMutex
	clients map[Kind]map[*Client]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: map[Kind]map[*Client]struct{}{
			KindChat:         make(map[*Client]struct{}),
			KindNotification: make(map[*Client]struct{}),
		},
	}
}

// Add registers c under kind. Adding a registered client is a no-op.
func (r *Registry) Add(c *Client, kind Kind) {
	r.mu.Lock()
	set, ok := r.clients[kind]
	if !ok {
		set = make(map[*Client]struct{})
		r.clients[kind] = set
	}
	_, exists := set[c]
	set[c] = struct{}{}
	total := len(set)
	r.mu.Unlock()

	if exists {
		return
	}
	metrics.WSConnections.WithLabelValues(string(kind)).Inc()
	logging.Debug().
		Uint64("conn_id", c.ID()).
		Str("kind", string(kind)).
		Int("total_clients", total).
		Msg("websocket client registered")
}

// Remove unregisters c. Removing an absent client is a no-op.
func (r *Registry) Remove(c *Client, kind Kind) {
	r.mu.Lock()
	_, exists := r.clients[kind][c]
	delete(r.clients[kind], c)
	total := len(r.clients[kind])
	r.mu.Unlock()

	if !exists {
		return
	}
	metrics.WSConnections.WithLabelValues(string(kind)).Dec()
	logging.Debug().
		Uint64("conn_id", c.ID()).
		Str("kind", string(kind)).
		Int("total_clients", total).
		Msg("websocket client unregistered")
}

// Snapshot returns the clients of kind ordered by id.
func (r *Registry) Snapshot(kind Kind) []*Client {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients[kind]))
	for c := range r.clients[kind] {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// Count returns the number of clients registered under kind.
func (r *Registry) Count(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients[kind])
}

// CloseAll closes and unregisters every client with a going-away close and
// returns how many were closed.
func (r *Registry) CloseAll() int {
	closed := 0
	for _, kind := range []Kind{KindChat, KindNotification} {
		for _, c := range r.Snapshot(kind) {
			c.Close(websocket.CloseGoingAway, "server shutting down")
			r.Remove(c, kind)
			closed++
		}
	}
	return closed
}
