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

// DeleteMessage deletes a message sent by the caller and tells the socket
// layer, which forwards {id, status: DELETED} to the chat or the DM pair.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user := UserFromContext(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	id, ok := pathObjectID(r)
	if !ok {
		rw.NotFound("Message not found")
		return
	}

	msg, err := h.store.MessageByID(r.Context(), id)
	if isNotFound(err) {
		rw.NotFound("Message not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if msg.Sender != user.ID {
		rw.Forbidden("Only the sender can delete a message")
		return
	}

	if err := h.store.DeleteMessage(r.Context(), id); err != nil {
		if isNotFound(err) {
			rw.NotFound("Message not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	h.relay.NotifyChatEvent(r.Context(), realtime.ChatEventFor(msg, realtime.StatusDeleted))

	logging.Ctx(r.Context()).Info().
		Str("message_id", id.Hex()).
		Str("user_id", user.ID.Hex()).
		Msg("Message deleted")

	rw.Success(map[string]any{"id": id.Hex()})
}
