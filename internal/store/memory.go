// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
)

// MemoryStore keeps every collection in maps guarded by one RWMutex.
// Documents are copied on the way in and out so callers never share state
// with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	usernames     map[string]primitive.ObjectID
	chats         map[primitive.ObjectID]models.Chat
	messages      map[primitive.ObjectID]models.Message
	notifications map[primitive.ObjectID]models.Notification
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[primitive.ObjectID]models.User),
		usernames:     make(map[string]primitive.ObjectID),
		chats:         make(map[primitive.ObjectID]models.Chat),
		messages:      make(map[primitive.ObjectID]models.Message),
		notifications: make(map[primitive.ObjectID]models.Notification),
	}
}

func (s *MemoryStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) UsersByUsernames(_ context.Context, usernames []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[primitive.ObjectID]struct{}, len(usernames))
	out := make([]models.User, 0, len(usernames))
	for _, name := range usernames {
		id, ok := s.usernames[name]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *MemoryStore) ChatByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Users = append([]primitive.ObjectID{}, c.Users...)
	return &c, nil
}

func (s *MemoryStore) ReplaceChatUsers(_ context.Context, chatID primitive.ObjectID, expected, next []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	if !sameIDs(c.Users, expected) {
		return ErrConflict
	}
	c.Users = append([]primitive.ObjectID{}, next...)
	c.UpdatedAt = time.Now().UTC()
	s.chats[chatID] = c
	return nil
}

func (s *MemoryStore) MessageByID(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) DeleteMessage(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *MemoryStore) NotificationByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (s *MemoryStore) DeleteNotification(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[id]; !ok {
		return ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// InsertUser stores u, assigning an id when u.ID is zero.
func (s *MemoryStore) InsertUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, taken := s.usernames[u.Username]; taken {
		return fmt.Errorf("username %q: %w", u.Username, ErrDuplicate)
	}
	if _, taken := s.users[u.ID]; taken {
		return fmt.Errorf("user %s: %w", u.ID.Hex(), ErrDuplicate)
	}
	s.users[u.ID] = *u
	s.usernames[u.Username] = u.ID
	return nil
}

// InsertChat stores c, assigning an id when c.ID is zero.
func (s *MemoryStore) InsertChat(_ context.Context, c *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, taken := s.chats[c.ID]; taken {
		return fmt.Errorf("chat %s: %w", c.ID.Hex(), ErrDuplicate)
	}
	stored := *c
	stored.Users = append([]primitive.ObjectID{}, c.Users...)
	s.chats[c.ID] = stored
	return nil
}

// InsertMessage stores m, assigning an id when m.ID is zero.
func (s *MemoryStore) InsertMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, taken := s.messages[m.ID]; taken {
		return fmt.Errorf("message %s: %w", m.ID.Hex(), ErrDuplicate)
	}
	s.messages[m.ID] = *m
	return nil
}

// InsertNotification stores n, assigning an id when n.ID is zero.
func (s *MemoryStore) InsertNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, taken := s.notifications[n.ID]; taken {
		return fmt.Errorf("notification %s: %w", n.ID.Hex(), ErrDuplicate)
	}
	s.notifications[n.ID] = *n
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op; the data lives as long as the process.
func (s *MemoryStore) Close(context.Context) error { return nil }
