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

// NotificationRouter fans notification events out to notification sockets.
// Users only receive on these sockets; the relay is the only sender.
type NotificationRouter struct {
	registry      *Registry
	notifications store.NotificationStore
}

// NewNotificationRouter creates a router over the notification sockets of registry.
func NewNotificationRouter(registry *Registry, notifications store.NotificationStore) *NotificationRouter {
	return &NotificationRouter{registry: registry, notifications: notifications}
}

// BroadcastToNotificationReceivers delivers raw to the receiver's sockets,
// or to every user socket for broadcast notifications. It returns the
// number of deliveries.
func (r *NotificationRouter) BroadcastToNotificationReceivers(n *models.Notification, raw []byte) int {
	delivered := 0
	for _, c := range r.registry.Snapshot(KindNotification) {
		userID := auth.UserID(c.principal)
		if userID.IsZero() {
			continue
		}
		if (n.IsBroadcast() || userID == n.Receiver) && c.Send(raw) {
			delivered++
		}
	}
	return delivered
}

// HandleFrame validates and routes one frame received on a notification socket.
func (r *NotificationRouter) HandleFrame(ctx context.Context, c *Client, frame *InboundFrame) *Failure {
	switch p := c.principal.(type) {
	case auth.RelayPrincipal:
		return r.handleRelayFrame(ctx, frame)
	case auth.UserPrincipal:
		return NewFailure(ErrorNotAllowed, "Notification sockets are receive-only")
	default:
		return internalFailure(fmt.Errorf("unknown principal %T", p))
	}
}

func (r *NotificationRouter) handleRelayFrame(ctx context.Context, frame *InboundFrame) *Failure {
	oid, err := primitive.ObjectIDFromHex(frame.ID)
	if err != nil {
		return NewFailure(ErrorNotFound, "Notification not found").WithData("id", frame.ID)
	}
	n, err := r.notifications.NotificationByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) && frame.Status == StatusDeleted {
		n, err = deletedNotificationFromFrame(oid, frame)
	}
	if errors.Is(err, store.ErrNotFound) {
		return NewFailure(ErrorNotFound, "Notification not found").WithData("id", frame.ID)
	}
	if err != nil {
		return internalFailure(fmt.Errorf("load notification %s: %w", frame.ID, err))
	}

	var payload any = NotificationEvent{Notification: n, Status: frame.Status}
	if frame.Status == StatusDeleted {
		payload = DeletedNotificationEvent{ID: frame.ID, Status: StatusDeleted, Type: n.Type}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return internalFailure(fmt.Errorf("marshal notification event: %w", err))
	}

	delivered := r.BroadcastToNotificationReceivers(n, raw)
	logging.Ctx(ctx).Debug().
		Str("notification_id", frame.ID).
		Str("status", string(frame.Status)).
		Int("delivered", delivered).
		Msg("relayed notification broadcast")

	// Receivers get the event before the record disappears. Offline
	// receivers do not keep it alive.
	if frame.Status == StatusDeleted {
		if err := r.notifications.DeleteNotification(ctx, oid); err != nil && !errors.Is(err, store.ErrNotFound) {
			return internalFailure(fmt.Errorf("delete notification %s: %w", frame.ID, err))
		}
	}
	return nil
}

// deletedNotificationFromFrame rebuilds enough of an already removed
// notification to address its deletion event.
func deletedNotificationFromFrame(id primitive.ObjectID, frame *InboundFrame) (*models.Notification, error) {
	n := &models.Notification{ID: id, Type: frame.NType}
	if n.IsBroadcast() {
		return n, nil
	}
	receiver, err := primitive.ObjectIDFromHex(frame.ReceiverID)
	if err != nil {
		return nil, store.ErrNotFound
	}
	n.Receiver = receiver
	return n, nil
}
