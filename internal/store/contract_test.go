// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
)

// runStoreContract exercises the behavior every Store implementation must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	alice := &models.User{Username: "alice", Name: "Alice", CreatedAt: now}
	bob := &models.User{Username: "bob", Name: "Bob", CreatedAt: now}
	for _, u := range []*models.User{alice, bob} {
		if err := s.InsertUser(ctx, u); err != nil {
			t.Fatalf("InsertUser(%s) error = %v", u.Username, err)
		}
	}

	t.Run("users", func(t *testing.T) {
		got, err := s.UserByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("UserByUsername() error = %v", err)
		}
		if got.ID != alice.ID {
			t.Errorf("UserByUsername() id = %s, want %s", got.ID.Hex(), alice.ID.Hex())
		}

		if _, err := s.UserByID(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("UserByID(unknown) error = %v, want ErrNotFound", err)
		}

		err = s.InsertUser(ctx, &models.User{Username: "alice"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("InsertUser(duplicate username) error = %v, want ErrDuplicate", err)
		}

		users, err := s.UsersByUsernames(ctx, []string{"bob", "nobody", "alice", "bob"})
		if err != nil {
			t.Fatalf("UsersByUsernames() error = %v", err)
		}
		if len(users) != 2 {
			t.Errorf("UsersByUsernames() returned %d users, want 2", len(users))
		}
	})

	t.Run("chat users compare and swap", func(t *testing.T) {
		chat := &models.Chat{Name: "team", Owner: alice.ID, IsGroup: true, CreatedAt: now, UpdatedAt: now}
		if err := s.InsertChat(ctx, chat); err != nil {
			t.Fatalf("InsertChat() error = %v", err)
		}

		next := []primitive.ObjectID{bob.ID}
		if err := s.ReplaceChatUsers(ctx, chat.ID, nil, next); err != nil {
			t.Fatalf("ReplaceChatUsers(from empty) error = %v", err)
		}

		err := s.ReplaceChatUsers(ctx, chat.ID, nil, []primitive.ObjectID{})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("ReplaceChatUsers(stale expected) error = %v, want ErrConflict", err)
		}

		got, err := s.ChatByID(ctx, chat.ID)
		if err != nil {
			t.Fatalf("ChatByID() error = %v", err)
		}
		if len(got.Users) != 1 || got.Users[0] != bob.ID {
			t.Errorf("chat users = %v, want [bob]", got.Users)
		}

		err = s.ReplaceChatUsers(ctx, primitive.NewObjectID(), nil, next)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("ReplaceChatUsers(unknown chat) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("messages", func(t *testing.T) {
		msg := &models.Message{Sender: alice.ID, Receiver: &bob.ID, Text: "hi", CreatedAt: now, UpdatedAt: now}
		if err := s.InsertMessage(ctx, msg); err != nil {
			t.Fatalf("InsertMessage() error = %v", err)
		}
		got, err := s.MessageByID(ctx, msg.ID)
		if err != nil {
			t.Fatalf("MessageByID() error = %v", err)
		}
		if got.Text != "hi" || !got.IsDirect() {
			t.Errorf("MessageByID() = %+v", got)
		}
		if err := s.DeleteMessage(ctx, msg.ID); err != nil {
			t.Fatalf("DeleteMessage() error = %v", err)
		}
		if err := s.DeleteMessage(ctx, msg.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second DeleteMessage() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("notifications", func(t *testing.T) {
		n := &models.Notification{Receiver: bob.ID, Type: models.NotificationTypeComment, Text: "new comment", CreatedAt: now}
		if err := s.InsertNotification(ctx, n); err != nil {
			t.Fatalf("InsertNotification() error = %v", err)
		}
		got, err := s.NotificationByID(ctx, n.ID)
		if err != nil {
			t.Fatalf("NotificationByID() error = %v", err)
		}
		if got.Receiver != bob.ID || got.Type != models.NotificationTypeComment {
			t.Errorf("NotificationByID() = %+v", got)
		}
		if err := s.DeleteNotification(ctx, n.ID); err != nil {
			t.Fatalf("DeleteNotification() error = %v", err)
		}
		if _, err := s.NotificationByID(ctx, n.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("NotificationByID(deleted) error = %v, want ErrNotFound", err)
		}
	})
}
