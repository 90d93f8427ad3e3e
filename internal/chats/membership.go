// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package chats

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/metrics"
	"github.com/tomtom215/agora/internal/models"
	"github.com/tomtom215/agora/internal/store"
)

// MaxGroupMembers is the cap on non-owner members of a group chat.
const MaxGroupMembers = 99

// maxApplyAttempts bounds the reload-and-retry loop when the member list
// changes between read and write.
const maxApplyAttempts = 3

const (
	fieldAdd    = "usernamesToAdd"
	fieldRemove = "usernamesToRemove"
)

// Delta is the resolved change to a chat's member list.
type Delta struct {
	Add    []primitive.ObjectID
	Remove []primitive.ObjectID
}

// Empty reports whether applying the delta would change nothing.
func (d *Delta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// Engine computes and applies group membership changes.
type Engine struct {
	users store.UserStore
	chats store.ChatStore
}

// NewEngine creates an Engine over the given stores.
func NewEngine(users store.UserStore, chats store.ChatStore) *Engine {
	return &Engine{users: users, chats: chats}
}

// ComputeMembershipDelta resolves usernames into the ids to add and remove.
// It reads users but never modifies chat.
func (e *Engine) ComputeMembershipDelta(ctx context.Context, chat *models.Chat, usernamesToAdd, usernamesToRemove []string) (*Delta, error) {
	if len(usernamesToRemove) > 0 && len(chat.Users) == 0 {
		return nil, &ValidationError{Field: fieldRemove, Message: "No users to remove"}
	}

	delta := &Delta{}

	if len(usernamesToAdd) > 0 {
		found, err := e.users.UsersByUsernames(ctx, usernamesToAdd)
		if err != nil {
			return nil, fmt.Errorf("resolve users to add: %w", err)
		}
		seen := make(map[primitive.ObjectID]struct{}, len(found))
		for _, u := range found {
			if u.ID == chat.Owner || chat.HasMember(u.ID) {
				continue
			}
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			delta.Add = append(delta.Add, u.ID)
		}
	}

	if len(usernamesToRemove) > 0 {
		found, err := e.users.UsersByUsernames(ctx, usernamesToRemove)
		if err != nil {
			return nil, fmt.Errorf("resolve users to remove: %w", err)
		}
		seen := make(map[primitive.ObjectID]struct{}, len(found))
		for _, u := range found {
			if u.ID == chat.Owner || !chat.HasMember(u.ID) {
				continue
			}
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			delta.Remove = append(delta.Remove, u.ID)
		}
	}

	if len(chat.Users)+len(delta.Add)-len(delta.Remove) > MaxGroupMembers {
		return nil, &ValidationError{Field: fieldAdd, Message: fmt.Sprintf("%d users limit reached", MaxGroupMembers)}
	}

	return delta, nil
}

// ApplyMembershipDelta writes (users ∪ add) − remove in one compare-and-swap
// against the member list chat was loaded with. It returns store.ErrConflict
// when the list changed since then.
func (e *Engine) ApplyMembershipDelta(ctx context.Context, chat *models.Chat, delta *Delta) (*models.Chat, error) {
	if delta.Empty() {
		return chat, nil
	}

	next := nextMembers(chat.Users, delta)
	if err := e.chats.ReplaceChatUsers(ctx, chat.ID, chat.Users, next); err != nil {
		return nil, err
	}

	updated := *chat
	updated.Users = next
	return &updated, nil
}

// nextMembers keeps the existing order and appends additions at the end.
func nextMembers(current []primitive.ObjectID, delta *Delta) []primitive.ObjectID {
	removed := make(map[primitive.ObjectID]struct{}, len(delta.Remove))
	for _, id := range delta.Remove {
		removed[id] = struct{}{}
	}

	next := make([]primitive.ObjectID, 0, len(current)+len(delta.Add))
	present := make(map[primitive.ObjectID]struct{}, len(current)+len(delta.Add))
	for _, id := range append(append([]primitive.ObjectID{}, current...), delta.Add...) {
		if _, gone := removed[id]; gone {
			continue
		}
		if _, dup := present[id]; dup {
			continue
		}
		present[id] = struct{}{}
		next = append(next, id)
	}
	return next
}

// UpdateMembers is the full membership edit requested by a user: it checks
// ownership, computes the delta, and applies it, reloading the chat when a
// concurrent edit wins the compare-and-swap.
func (e *Engine) UpdateMembers(ctx context.Context, chatID, requester primitive.ObjectID, usernamesToAdd, usernamesToRemove []string) (*models.Chat, error) {
	chat, err := e.updateMembers(ctx, chatID, requester, usernamesToAdd, usernamesToRemove)
	metrics.GroupMutations.WithLabelValues(mutationResult(err)).Inc()
	return chat, err
}

func (e *Engine) updateMembers(ctx context.Context, chatID, requester primitive.ObjectID, usernamesToAdd, usernamesToRemove []string) (*models.Chat, error) {
	if overlap := overlapping(usernamesToAdd, usernamesToRemove); overlap != "" {
		return nil, &ValidationError{
			Field:   fieldAdd,
			Message: "Users cannot be added and removed at the same time",
		}
	}

	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		chat, err := e.chats.ChatByID(ctx, chatID)
		if err != nil {
			return nil, fmt.Errorf("load chat %s: %w", chatID.Hex(), err)
		}
		if !chat.IsGroup {
			return nil, ErrNotGroup
		}
		if chat.Owner != requester {
			return nil, ErrNotOwner
		}

		delta, err := e.ComputeMembershipDelta(ctx, chat, usernamesToAdd, usernamesToRemove)
		if err != nil {
			return nil, err
		}

		updated, err := e.ApplyMembershipDelta(ctx, chat, delta)
		if errors.Is(err, store.ErrConflict) {
			logging.Debug().
				Str("chat_id", chatID.Hex()).
				Int("attempt", attempt).
				Msg("chat members changed concurrently, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update members of chat %s: %w", chatID.Hex(), err)
		}

		logging.Info().
			Str("chat_id", chatID.Hex()).
			Str("user_id", requester.Hex()).
			Int("added", len(delta.Add)).
			Int("removed", len(delta.Remove)).
			Int("members", len(updated.Users)).
			Msg("group members updated")
		return updated, nil
	}

	return nil, fmt.Errorf("update members of chat %s after %d attempts: %w", chatID.Hex(), maxApplyAttempts, store.ErrConflict)
}

// overlapping returns the first username present in both lists.
func overlapping(add, remove []string) string {
	if len(add) == 0 || len(remove) == 0 {
		return ""
	}
	adding := make(map[string]struct{}, len(add))
	for _, name := range add {
		adding[name] = struct{}{}
	}
	for _, name := range remove {
		if _, ok := adding[name]; ok {
			return name
		}
	}
	return ""
}

func mutationResult(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotGroup):
		return "forbidden"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
