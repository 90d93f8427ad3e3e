// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	member := primitive.NewObjectID()
	chat := &models.Chat{Owner: primitive.NewObjectID(), Users: []primitive.ObjectID{member}, IsGroup: true}
	if err := s.InsertChat(ctx, chat); err != nil {
		t.Fatalf("InsertChat() error = %v", err)
	}

	chat.Users[0] = primitive.NewObjectID()
	got, _ := s.ChatByID(ctx, chat.ID)
	if got.Users[0] != member {
		t.Error("mutating the inserted chat leaked into the store")
	}

	got.Users[0] = primitive.NewObjectID()
	again, _ := s.ChatByID(ctx, chat.ID)
	if again.Users[0] != member {
		t.Error("mutating a returned chat leaked into the store")
	}
}

func TestMemoryStoreConcurrentReplace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	chat := &models.Chat{Owner: primitive.NewObjectID(), IsGroup: true}
	if err := s.InsertChat(ctx, chat); err != nil {
		t.Fatalf("InsertChat() error = %v", err)
	}

	// Every writer starts from the same expected list; exactly one may win.
	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.ReplaceChatUsers(ctx, chat.ID, nil, []primitive.ObjectID{primitive.NewObjectID()})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("ReplaceChatUsers() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != writers-1 {
		t.Errorf("wins = %d, conflicts = %d; want 1 and %d", wins, conflicts, writers-1)
	}
}
