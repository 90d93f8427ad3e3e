// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
	"github.com/tomtom215/agora/internal/realtime"
	"github.com/tomtom215/agora/internal/store"
	"github.com/tomtom215/agora/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// MembershipEditor applies group membership edits on behalf of a user.
type MembershipEditor interface {
	UpdateMembers(ctx context.Context, chatID, requester primitive.ObjectID, usernamesToAdd, usernamesToRemove []string) (*models.Chat, error)
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, shared helpers (this file)
//   - handlers_health.go: liveness and readiness probes
//   - handlers_chats.go: group membership edits
//   - handlers_messages.go: message deletion
//   - handlers_notifications.go: notification deletion
type Handler struct {
	store     store.Store
	members   MembershipEditor
	relay     realtime.Relay
	startTime time.Time
}

// NewHandler creates the REST handler set. A nil relay is replaced with
// realtime.NopRelay.
func NewHandler(st store.Store, members MembershipEditor, relay realtime.Relay) *Handler {
	if relay == nil {
		relay = realtime.NopRelay{}
	}
	return &Handler{
		store:     st,
		members:   members,
		relay:     relay,
		startTime: time.Now(),
	}
}

// pathObjectID parses the {id} URL parameter. A malformed id cannot match
// any document, so callers answer it with 404.
func pathObjectID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// decodeAndValidate reads a JSON body into v and runs struct validation on
// it. It writes the error response itself and reports whether to continue.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		rw.BadRequest("Could not read request body")
		return false
	}
	if len(body) > maxBodyBytes {
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		rw.BadRequest("Request body must be valid JSON")
		return false
	}

	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// isNotFound reports whether err is the store's not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
