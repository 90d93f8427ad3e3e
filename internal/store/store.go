// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

// Package store provides access to the document collections the realtime
// layer depends on.
//
// Two implementations satisfy Store: MongoStore for deployments and
// MemoryStore for tests and local development. Both return ErrNotFound for
// missing documents and ErrConflict when a compare-and-swap write loses a race.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned by ReplaceChatUsers when the stored member
	// list no longer matches the expected one.
	ErrConflict = errors.New("store: concurrent modification")

	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate key")
)

// UserStore looks up user profiles.
type UserStore interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)

	// UsersByUsernames returns the users matching any of usernames, each at
	// most once. Unknown names are skipped without error.
	UsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
}

// ChatStore reads chats and rewrites their member lists.
type ChatStore interface {
	ChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)

	// ReplaceChatUsers sets the chat's member list to next if and only if it
	// currently equals expected (same ids, same order).
	ReplaceChatUsers(ctx context.Context, chatID primitive.ObjectID, expected, next []primitive.ObjectID) error
}

// MessageStore reads and deletes chat messages.
type MessageStore interface {
	MessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
}

// NotificationStore reads and deletes notifications.
type NotificationStore interface {
	NotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
}

// Writer inserts documents. The CRUD layer owns document creation; Agora
// uses it for seeding and tests.
type Writer interface {
	InsertUser(ctx context.Context, u *models.User) error
	InsertChat(ctx context.Context, c *models.Chat) error
	InsertMessage(ctx context.Context, m *models.Message) error
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// Store is the full document store.
type Store interface {
	UserStore
	ChatStore
	MessageStore
	NotificationStore
	Writer

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// sameIDs reports whether a and b hold the same ids in the same order.
func sameIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// nonNilIDs returns ids, or an empty slice when ids is nil. BSON encodes a
// nil slice as null, which would never equal a stored empty array.
func nonNilIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
