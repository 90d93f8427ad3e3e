// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package api

import (
	"net/http"

	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/realtime"
)

// DeleteNotification removes a notification addressed to the caller.
//
// The record is always deleted here. With a relay the receiver's sockets are
// then told {id, status: DELETED, nType}; the relayed frame carries the
// receiver so it can be addressed after the record is gone.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user := UserFromContext(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	id, ok := pathObjectID(r)
	if !ok {
		rw.NotFound("Notification not found")
		return
	}

	n, err := h.store.NotificationByID(r.Context(), id)
	if isNotFound(err) {
		rw.NotFound("Notification not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if n.Receiver != user.ID {
		rw.Forbidden("Only the receiver can delete a notification")
		return
	}

	if err := h.store.DeleteNotification(r.Context(), id); err != nil && !isNotFound(err) {
		rw.DatabaseError(err)
		return
	}

	relayed := h.relay.Enabled()
	if relayed {
		h.relay.NotifyNotificationEvent(r.Context(), n, realtime.StatusDeleted)
	}

	logging.Ctx(r.Context()).Info().
		Str("notification_id", id.Hex()).
		Str("user_id", user.ID.Hex()).
		Bool("relayed", relayed).
		Msg("Notification deleted")

	rw.Success(map[string]any{"id": id.Hex()})
}
