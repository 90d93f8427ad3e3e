// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/models"
)

func TestParseInboundFrame(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"created", `{"status":"CREATED","id":"abc"}`, false},
		{"deleted with extras", `{"status":"DELETED","id":"abc","chatId":"c","senderId":"s","receiverId":"r"}`, false},
		{"malformed json", `{"status":`, true},
		{"not an object", `"CREATED"`, true},
		{"missing id", `{"status":"CREATED"}`, true},
		{"missing status", `{"id":"abc"}`, true},
		{"unknown status", `{"status":"READ","id":"abc"}`, true},
		{"lowercase status", `{"status":"created","id":"abc"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, failure := ParseInboundFrame([]byte(tt.input))
			if tt.wantErr {
				requireFailure(t, failure, ErrorInvalidEntry)
				return
			}
			if failure != nil {
				t.Fatalf("ParseInboundFrame() failure = %v", failure)
			}
			if frame.ID != "abc" {
				t.Errorf("ID = %q, want abc", frame.ID)
			}
		})
	}
}

func TestMessageEventRoundTrip(t *testing.T) {
	chatID := primitive.NewObjectID()
	msg := &models.Message{ID: primitive.NewObjectID(), Chat: &chatID, Sender: primitive.NewObjectID(), Text: "round trip"}

	raw, err := json.Marshal(MessageEvent{Message: msg, Status: StatusUpdated})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	frame, failure := ParseInboundFrame(raw)
	if failure != nil {
		t.Fatalf("ParseInboundFrame() failure = %v", failure)
	}
	if frame.ID != msg.ID.Hex() || frame.Status != StatusUpdated {
		t.Errorf("frame = %+v, want id %s status UPDATED", frame, msg.ID.Hex())
	}

	var back MessageEvent
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Message == nil || back.Text != "round trip" || back.ID != msg.ID || back.Status != StatusUpdated {
		t.Errorf("decoded event = %+v", back)
	}
}

func TestFailureFrame(t *testing.T) {
	f := NewFailure(ErrorInvalidMember, "You are not a member of this chat").WithData("chatId", "c1")

	raw, err := f.MarshalFrame()
	if err != nil {
		t.Fatal(err)
	}
	var got FailureFrame
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "failure" || got.Error != ErrorInvalidMember || got.Data["chatId"] != "c1" {
		t.Errorf("failure frame = %+v", got)
	}
}

func TestFailureCloseCodes(t *testing.T) {
	tests := []struct {
		kind  ErrorKind
		fatal bool
		code  int
	}{
		{ErrorUnauthorized, true, CloseAuthFailed},
		{ErrorInvalidToken, true, CloseAuthFailed},
		{ErrorInvalidParameter, true, CloseInvalidParameter},
		{ErrorInvalidMember, true, CloseInvalidMember},
		{ErrorInvalidEntry, true, CloseInvalidEntry},
		{ErrorInvalidOwner, false, websocket.CloseInternalServerErr},
		{ErrorNotAllowed, false, websocket.CloseInternalServerErr},
		{ErrorNotFound, false, websocket.CloseInternalServerErr},
		{ErrorRateLimited, false, websocket.CloseInternalServerErr},
		{ErrorInternal, false, websocket.CloseInternalServerErr},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := NewFailure(tt.kind, "x")
			if f.Fatal() != tt.fatal {
				t.Errorf("Fatal() = %v, want %v", f.Fatal(), tt.fatal)
			}
			if f.CloseCode() != tt.code {
				t.Errorf("CloseCode() = %d, want %d", f.CloseCode(), tt.code)
			}
		})
	}
}

func TestAuthFailure(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{auth.ErrNoCredentials, ErrorUnauthorized},
		{auth.ErrUnauthorized, ErrorUnauthorized},
		{auth.ErrInvalidToken, ErrorInvalidToken},
		{auth.ErrExpiredToken, ErrorInvalidToken},
		{errors.New("store down"), ErrorInternal},
	}
	for _, tt := range tests {
		f := authFailure(tt.err)
		if f.Kind != tt.want {
			t.Errorf("authFailure(%v) = %s, want %s", tt.err, f.Kind, tt.want)
		}
		if !errors.Is(f, tt.err) {
			t.Errorf("authFailure(%v) does not wrap its cause", tt.err)
		}
	}
}
