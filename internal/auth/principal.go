// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package auth

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
)

// Principal is the authenticated identity attached to a connection. The
// only implementations are UserPrincipal and RelayPrincipal.
type Principal interface {
	// Kind returns "user" or "relay" for logging.
	Kind() string
	principal()
}

// UserPrincipal is an end user admitted with a session token.
type UserPrincipal struct {
	User *models.User
}

// RelayPrincipal is trusted server-side code admitted with the relay secret.
type RelayPrincipal struct{}

func (UserPrincipal) Kind() string { return "user" }
func (UserPrincipal) principal()   {}

func (RelayPrincipal) Kind() string { return "relay" }
func (RelayPrincipal) principal()   {}

// UserID returns the user's id, or NilObjectID for the relay.
func UserID(p Principal) primitive.ObjectID {
	if u, ok := p.(UserPrincipal); ok && u.User != nil {
		return u.User.ID
	}
	return primitive.NilObjectID
}

// IsRelay reports whether p is the relay principal.
func IsRelay(p Principal) bool {
	_, ok := p.(RelayPrincipal)
	return ok
}
