// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
	"github.com/tomtom215/agora/internal/store"
)

// SessionValidator resolves a session token to the user it belongs to.
// Errors wrap ErrInvalidToken when the token itself is at fault.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.User, error)
}

// JWTSessionValidator validates tokens with a JWTManager and loads the
// subject from the user store, so tokens for deleted accounts stop working.
type JWTSessionValidator struct {
	manager *JWTManager
	users   store.UserStore
}

// NewJWTSessionValidator creates a validator backed by manager and users.
func NewJWTSessionValidator(manager *JWTManager, users store.UserStore) *JWTSessionValidator {
	return &JWTSessionValidator{manager: manager, users: users}
}

// ValidateSession implements SessionValidator.
func (v *JWTSessionValidator) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := v.manager.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}

	user, err := v.users.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
