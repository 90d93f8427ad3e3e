// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package auth

import (
	"errors"
	"fmt"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates the Authorization header was absent or empty.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidToken indicates a bearer token that failed validation or
	// whose subject no longer exists.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken wraps ErrInvalidToken for tokens past their expiry.
	ErrExpiredToken = fmt.Errorf("%w: expired", ErrInvalidToken)

	// ErrUnauthorized indicates a credential in neither accepted form.
	ErrUnauthorized = errors.New("unauthorized")
)
