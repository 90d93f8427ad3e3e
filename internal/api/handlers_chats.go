// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/agora/internal/chats"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/store"
)

// updateMembersRequest is the body of PATCH /api/v1/chats/{id}/users.
type updateMembersRequest struct {
	UsernamesToAdd    []string `json:"usernamesToAdd" validate:"max=100,dive,required,max=64"`
	UsernamesToRemove []string `json:"usernamesToRemove" validate:"max=100,dive,required,max=64"`
}

// UpdateChatMembers adds and removes group members. Only the owner may edit
// a group, and the group never exceeds chats.MaxGroupMembers members besides
// the owner.
func (h *Handler) UpdateChatMembers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	user := UserFromContext(r.Context())
	if user == nil {
		rw.Unauthorized("Authentication required")
		return
	}

	chatID, ok := pathObjectID(r)
	if !ok {
		rw.NotFound("Chat not found")
		return
	}

	var req updateMembersRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	chat, err := h.members.UpdateMembers(r.Context(), chatID, user.ID, req.UsernamesToAdd, req.UsernamesToRemove)
	var verr *chats.ValidationError
	switch {
	case err == nil:
		rw.Success(chat)
	case errors.As(err, &verr):
		rw.ErrorWithDetails(http.StatusBadRequest, "VALIDATION_ERROR", verr.Message, map[string]any{"field": verr.Field})
	case errors.Is(err, chats.ErrNotOwner):
		rw.Forbidden("Only the chat owner can change its members")
	case errors.Is(err, chats.ErrNotGroup):
		rw.BadRequest("Members can only be changed on group chats")
	case isNotFound(err):
		rw.NotFound("Chat not found")
	case errors.Is(err, store.ErrConflict):
		logging.Ctx(r.Context()).Warn().Err(err).Str("chat_id", chatID.Hex()).Msg("Membership update kept conflicting")
		rw.Conflict("Chat members changed concurrently, try again")
	default:
		rw.DatabaseError(err)
	}
}
