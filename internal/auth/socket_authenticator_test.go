// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/models"
	"github.com/tomtom215/agora/internal/store"
)

const testRelaySecret = "relay-secret-0123456789abcdef0123456789"

// seedValidator returns a JWT-backed validator over a memory store holding one user.
func seedValidator(t *testing.T, timeout time.Duration) (*JWTSessionValidator, *JWTManager, *models.User, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	user := &models.User{Username: "dana", Name: "Dana"}
	if err := st.InsertUser(context.Background(), user); err != nil {
		t.Fatalf("InsertUser() error = %v", err)
	}
	m := newTestManager(t, timeout)
	return NewJWTSessionValidator(m, st), m, user, st
}

func TestSocketAuthenticator(t *testing.T) {
	ctx := context.Background()
	sessions, m, user, _ := seedValidator(t, time.Hour)
	a := NewSocketAuthenticator(sessions, testRelaySecret)

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("missing header", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, ""); !errors.Is(err, ErrNoCredentials) {
			t.Errorf("error = %v, want ErrNoCredentials", err)
		}
	})

	t.Run("valid bearer token", func(t *testing.T) {
		p, err := a.Authenticate(ctx, "Bearer "+token)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		up, ok := p.(UserPrincipal)
		if !ok {
			t.Fatalf("principal = %T, want UserPrincipal", p)
		}
		if up.User.ID != user.ID || UserID(p) != user.ID {
			t.Errorf("principal user = %s, want %s", up.User.ID.Hex(), user.ID.Hex())
		}
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "bearer "+token); err != nil {
			t.Errorf("Authenticate() error = %v", err)
		}
	})

	t.Run("invalid bearer token", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "Bearer nope"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("relay secret", func(t *testing.T) {
		p, err := a.Authenticate(ctx, testRelaySecret)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if !IsRelay(p) {
			t.Errorf("principal = %T, want RelayPrincipal", p)
		}
		if UserID(p) != primitive.NilObjectID {
			t.Error("relay principal must not carry a user id")
		}
	})

	t.Run("relay secret as bearer is not relay", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "Bearer "+testRelaySecret); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("near miss secret", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, testRelaySecret+" "); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("unknown scheme", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "Basic dXNlcjpwYXNz"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestSocketAuthenticatorWithoutRelaySecret(t *testing.T) {
	sessions, _, _, _ := seedValidator(t, time.Hour)
	a := NewSocketAuthenticator(sessions, "")

	if _, err := a.Authenticate(context.Background(), "anything"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestJWTSessionValidator(t *testing.T) {
	ctx := context.Background()

	t.Run("expired token", func(t *testing.T) {
		sessions, m, user, _ := seedValidator(t, -time.Minute)
		token, _ := m.GenerateToken(user)
		_, err := sessions.ValidateSession(ctx, token)
		if !errors.Is(err, ErrExpiredToken) || !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrExpiredToken wrapping ErrInvalidToken", err)
		}
	})

	t.Run("unknown subject", func(t *testing.T) {
		sessions, m, _, _ := seedValidator(t, time.Hour)
		ghost := &models.User{ID: primitive.NewObjectID(), Username: "ghost"}
		token, _ := m.GenerateToken(ghost)
		if _, err := sessions.ValidateSession(ctx, token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, token, ok, tt.token, tt.ok)
		}
	}
}
