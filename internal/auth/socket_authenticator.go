// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package auth

import (
	"context"
	"crypto/subtle"
	"strings"
)

// SocketAuthenticator admits WebSocket connections based on the raw
// Authorization header of the upgrade request.
type SocketAuthenticator struct {
	sessions    SessionValidator
	relaySecret []byte
}

// NewSocketAuthenticator creates an authenticator. An empty relaySecret
// disables relay admission entirely.
func NewSocketAuthenticator(sessions SessionValidator, relaySecret string) *SocketAuthenticator {
	return &SocketAuthenticator{
		sessions:    sessions,
		relaySecret: []byte(relaySecret),
	}
}

// Authenticate maps the header to a Principal:
//
//	""                 -> ErrNoCredentials
//	"Bearer <token>"   -> UserPrincipal, or an error wrapping ErrInvalidToken
//	"<relay secret>"   -> RelayPrincipal
//	anything else      -> ErrUnauthorized
//
// Errors from the session validator that are not token errors (store
// outages) are returned as-is.
func (a *SocketAuthenticator) Authenticate(ctx context.Context, header string) (Principal, error) {
	if strings.TrimSpace(header) == "" {
		return nil, ErrNoCredentials
	}

	if token, ok := BearerToken(header); ok {
		user, err := a.sessions.ValidateSession(ctx, token)
		if err != nil {
			return nil, err
		}
		return UserPrincipal{User: user}, nil
	}

	if a.matchesRelaySecret(header) {
		return RelayPrincipal{}, nil
	}

	return nil, ErrUnauthorized
}

func (a *SocketAuthenticator) matchesRelaySecret(header string) bool {
	if len(a.relaySecret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), a.relaySecret) == 1
}
