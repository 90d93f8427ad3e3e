// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/models"
	"github.com/tomtom215/agora/internal/store"
)

// ChatRouter fans chat message events out to chat sockets.
type ChatRouter struct {
	registry *Registry
	messages store.MessageStore
	users    store.UserStore
}

// NewChatRouter creates a router over the chat sockets of registry.
func NewChatRouter(registry *Registry, messages store.MessageStore, users store.UserStore) *ChatRouter {
	return &ChatRouter{registry: registry, messages: messages, users: users}
}

// BroadcastToChat delivers raw to every chat socket bound to chatID or to
// the counterpart userID, and returns the number of deliveries.
func (r *ChatRouter) BroadcastToChat(chatID, userID primitive.ObjectID, raw []byte) int {
	delivered := 0
	for _, c := range r.registry.Snapshot(KindChat) {
		matchChat := !chatID.IsZero() && c.scope.ChatID() == chatID
		matchUser := !userID.IsZero() && c.scope.CounterpartID() == userID
		if (matchChat || matchUser) && c.Send(raw) {
			delivered++
		}
	}
	return delivered
}

// BroadcastDirect delivers raw to the direct-message sockets of the pair
// {a, b}: a socket opened by a on b, by b on a, or by either of them on
// their own inbox.
func (r *ChatRouter) BroadcastDirect(a, b primitive.ObjectID, raw []byte) int {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	delivered := 0
	for _, c := range r.registry.Snapshot(KindChat) {
		owner := auth.UserID(c.principal)
		counterpart := c.scope.CounterpartID()
		if counterpart.IsZero() {
			continue
		}
		pair := (owner == a && counterpart == b) || (owner == b && counterpart == a)
		inbox := owner == counterpart && (owner == a || owner == b)
		if (pair || inbox) && c.Send(raw) {
			delivered++
		}
	}
	return delivered
}

// HandleFrame validates and routes one frame received on a chat socket.
func (r *ChatRouter) HandleFrame(ctx context.Context, c *Client, frame *InboundFrame) *Failure {
	switch p := c.principal.(type) {
	case auth.RelayPrincipal:
		return r.handleRelayFrame(ctx, c, frame)
	case auth.UserPrincipal:
		return r.handleUserFrame(ctx, c, p.User, frame)
	default:
		return internalFailure(fmt.Errorf("unknown principal %T", p))
	}
}

func (r *ChatRouter) handleUserFrame(ctx context.Context, c *Client, user *models.User, frame *InboundFrame) *Failure {
	if frame.Status == StatusDeleted {
		return NewFailure(ErrorNotAllowed, "Deletions can only be relayed by the server")
	}

	msg, failure := r.loadMessage(ctx, frame.ID)
	if failure != nil {
		return failure
	}

	if msg.Sender != user.ID {
		return NewFailure(ErrorInvalidOwner, "You are not the sender of this message").WithData("id", frame.ID)
	}

	if !inScope(msg, user.ID, c.scope) {
		return NewFailure(ErrorNotAllowed, "Message does not belong to this chat").WithData("id", frame.ID)
	}

	delivered, err := r.deliverMessage(msg, frame.Status)
	if err != nil {
		return internalFailure(err)
	}
	logging.Ctx(ctx).Debug().
		Str("message_id", frame.ID).
		Str("status", string(frame.Status)).
		Int("delivered", delivered).
		Msg("chat message broadcast")
	return nil
}

// inScope reports whether msg belongs to the chat or direct conversation the
// socket was opened on.
func inScope(msg *models.Message, userID primitive.ObjectID, scope Scope) bool {
	if scope.Chat != nil {
		return msg.Chat != nil && *msg.Chat == scope.Chat.ID
	}
	if scope.Counterpart != nil {
		return msg.Involves(userID, scope.Counterpart.ID)
	}
	return false
}

func (r *ChatRouter) handleRelayFrame(ctx context.Context, c *Client, frame *InboundFrame) *Failure {
	if frame.Status == StatusDeleted {
		return r.relayDeletion(ctx, c, frame)
	}

	msg, failure := r.loadMessage(ctx, frame.ID)
	if failure != nil {
		return failure
	}
	delivered, err := r.deliverMessage(msg, frame.Status)
	if err != nil {
		return internalFailure(err)
	}
	logging.Ctx(ctx).Debug().
		Str("message_id", frame.ID).
		Str("status", string(frame.Status)).
		Int("delivered", delivered).
		Msg("relayed chat message broadcast")
	return nil
}

// relayDeletion broadcasts a minimal deletion event. The message is usually
// gone already, so targets come from the frame or the socket path.
func (r *ChatRouter) relayDeletion(ctx context.Context, c *Client, frame *InboundFrame) *Failure {
	raw, err := json.Marshal(DeletedMessageEvent{ID: frame.ID, Status: StatusDeleted, ChatID: frame.ChatID})
	if err != nil {
		return internalFailure(err)
	}

	var delivered int
	switch {
	case primitive.IsValidObjectID(frame.ChatID):
		chatID, _ := primitive.ObjectIDFromHex(frame.ChatID)
		delivered = r.BroadcastToChat(chatID, primitive.NilObjectID, raw)

	case primitive.IsValidObjectID(frame.SenderID) && primitive.IsValidObjectID(frame.ReceiverID):
		sender, _ := primitive.ObjectIDFromHex(frame.SenderID)
		receiver, _ := primitive.ObjectIDFromHex(frame.ReceiverID)
		delivered = r.BroadcastDirect(sender, receiver, raw)

	case primitive.IsValidObjectID(c.scope.Target):
		target, _ := primitive.ObjectIDFromHex(c.scope.Target)
		delivered = r.BroadcastToChat(target, target, raw)

	case c.scope.Target != "":
		user, err := r.users.UserByUsername(ctx, c.scope.Target)
		if errors.Is(err, store.ErrNotFound) {
			return NewFailure(ErrorNotFound, "No chat or user matches the relay target").WithData("id", c.scope.Target)
		}
		if err != nil {
			return internalFailure(fmt.Errorf("load user %q: %w", c.scope.Target, err))
		}
		delivered = r.BroadcastToChat(primitive.NilObjectID, user.ID, raw)

	default:
		return NewFailure(ErrorNotFound, "Deletion has no chat or recipient").WithData("id", frame.ID)
	}

	logging.Ctx(ctx).Debug().
		Str("message_id", frame.ID).
		Int("delivered", delivered).
		Msg("relayed chat message deletion")
	return nil
}

func (r *ChatRouter) loadMessage(ctx context.Context, id string) (*models.Message, *Failure) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, NewFailure(ErrorNotFound, "Message not found").WithData("id", id)
	}
	msg, err := r.messages.MessageByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NewFailure(ErrorNotFound, "Message not found").WithData("id", id)
	}
	if err != nil {
		return nil, internalFailure(fmt.Errorf("load message %s: %w", id, err))
	}
	return msg, nil
}

// deliverMessage sends the full message to its group chat or to its direct
// pair.
func (r *ChatRouter) deliverMessage(msg *models.Message, status Status) (int, error) {
	raw, err := json.Marshal(MessageEvent{Message: msg, Status: status})
	if err != nil {
		return 0, fmt.Errorf("marshal message event: %w", err)
	}
	if msg.Chat != nil {
		return r.BroadcastToChat(*msg.Chat, primitive.NilObjectID, raw), nil
	}
	if msg.Receiver != nil {
		return r.BroadcastDirect(msg.Sender, *msg.Receiver, raw), nil
	}
	return 0, nil
}
