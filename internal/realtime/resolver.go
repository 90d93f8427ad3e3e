// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/models"
	"github.com/tomtom215/agora/internal/store"
)

// Scope binds a chat socket to a group chat or to a direct-message
// counterpart. Relay sockets carry only the raw path Target.
type Scope struct {
	Chat        *models.Chat
	Counterpart *models.User
	Target      string
}

// ChatID returns the bound chat id, or NilObjectID.
func (s Scope) ChatID() primitive.ObjectID {
	if s.Chat == nil {
		return primitive.NilObjectID
	}
	return s.Chat.ID
}

// CounterpartID returns the bound counterpart id, or NilObjectID.
func (s Scope) CounterpartID() primitive.ObjectID {
	if s.Counterpart == nil {
		return primitive.NilObjectID
	}
	return s.Counterpart.ID
}

// MembershipResolver turns the {id} path segment of /ws/chats/{id} into a
// Scope and checks the principal may open it.
type MembershipResolver struct {
	users store.UserStore
	chats store.ChatStore
}

// NewMembershipResolver creates a resolver over the given stores.
func NewMembershipResolver(users store.UserStore, chats store.ChatStore) *MembershipResolver {
	return &MembershipResolver{users: users, chats: chats}
}

// Resolve looks id up as the principal's own id or username, then as a chat
// id, then as a username. Both the user's hex id and their own username
// bind the self inbox, where direct messages to and from the user arrive.
func (r *MembershipResolver) Resolve(ctx context.Context, id string, p auth.Principal) (Scope, *Failure) {
	switch p := p.(type) {
	case auth.RelayPrincipal:
		return Scope{Target: id}, nil
	case auth.UserPrincipal:
		return r.resolveForUser(ctx, id, p.User)
	default:
		return Scope{}, internalFailure(fmt.Errorf("unknown principal %T", p))
	}
}

func (r *MembershipResolver) resolveForUser(ctx context.Context, id string, user *models.User) (Scope, *Failure) {
	if id == "" {
		return Scope{}, NewFailure(ErrorInvalidParameter, "Missing chat id or username")
	}

	if id == user.ID.Hex() || id == user.Username {
		return Scope{Counterpart: user, Target: id}, nil
	}

	if primitive.IsValidObjectID(id) {
		oid, _ := primitive.ObjectIDFromHex(id)
		chat, err := r.chats.ChatByID(ctx, oid)
		switch {
		case err == nil:
			if !chat.IsParticipant(user.ID) {
				return Scope{}, NewFailure(ErrorInvalidMember, "You are not a member of this chat").WithData("chatId", id)
			}
			return Scope{Chat: chat, Target: id}, nil
		case !errors.Is(err, store.ErrNotFound):
			return Scope{}, internalFailure(fmt.Errorf("load chat %s: %w", id, err))
		}
	}

	counterpart, err := r.users.UserByUsername(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Scope{}, NewFailure(ErrorInvalidParameter, "No chat or user matches the given id").WithData("id", id)
	}
	if err != nil {
		return Scope{}, internalFailure(fmt.Errorf("load user %q: %w", id, err))
	}
	return Scope{Counterpart: counterpart, Target: id}, nil
}
