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
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/agora/internal/auth"
	"github.com/tomtom215/agora/internal/chats"
	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/models"
	"github.com/tomtom215/agora/internal/realtime"
	"github.com/tomtom215/agora/internal/store"
)

func init() {
	logging.SetLevelString("disabled")
}

// recordingRelay captures relay events instead of dialing sockets.
type recordingRelay struct {
	mu            sync.Mutex
	enabled       bool
	chatEvents    []realtime.ChatEvent
	notifications []realtime.Status
	notified      []primitive.ObjectID
}

func (r *recordingRelay) NotifyChatEvent(_ context.Context, e realtime.ChatEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chatEvents = append(r.chatEvents, e)
}

func (r *recordingRelay) NotifyNotificationEvent(_ context.Context, n *models.Notification, status realtime.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, status)
	r.notified = append(r.notified, n.ID)
}

func (r *recordingRelay) Enabled() bool { return r.enabled }

func (r *recordingRelay) chats() []realtime.ChatEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.ChatEvent(nil), r.chatEvents...)
}

func (r *recordingRelay) notificationIDs() ([]primitive.ObjectID, []realtime.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]primitive.ObjectID(nil), r.notified...), append([]realtime.Status(nil), r.notifications...)
}

// stubSockets answers the socket routes with a marker status.
type stubSockets struct{}

func (stubSockets) ServeChat(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
}

func (stubSockets) ServeNotifications(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
}

// pingFailStore reports the store as unreachable.
type pingFailStore struct {
	store.Store
}

func (pingFailStore) Ping(context.Context) error { return errors.New("connection refused") }

type fixture struct {
	st     *store.MemoryStore
	relay  *recordingRelay
	jwt    *auth.JWTManager
	server *httptest.Server

	alice, bob, carol *models.User
	group             *models.Chat
	groupMsg          *models.Message
	directMsg         *models.Message
	bobNotification   *models.Notification
}

func newFixture(t *testing.T, relayEnabled bool) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		st:    store.NewMemoryStore(),
		relay: &recordingRelay{enabled: relayEnabled},
		alice: &models.User{Username: "alice", Name: "Alice"},
		bob:   &models.User{Username: "bob", Name: "Bob"},
		carol: &models.User{Username: "carol", Name: "Carol"},
	}
	for _, u := range []*models.User{f.alice, f.bob, f.carol} {
		if err := f.st.InsertUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	f.group = &models.Chat{Name: "team", Owner: f.alice.ID, Users: []primitive.ObjectID{f.bob.ID}, IsGroup: true}
	if err := f.st.InsertChat(ctx, f.group); err != nil {
		t.Fatal(err)
	}

	groupID := f.group.ID
	f.groupMsg = &models.Message{Chat: &groupID, Sender: f.bob.ID, Text: "hi team"}
	bobID := f.bob.ID
	f.directMsg = &models.Message{Sender: f.alice.ID, Receiver: &bobID, Text: "hi bob"}
	for _, m := range []*models.Message{f.groupMsg, f.directMsg} {
		if err := f.st.InsertMessage(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	f.bobNotification = &models.Notification{Receiver: f.bob.ID, Type: models.NotificationTypeFriendRequest, Text: "alice wants to be friends"}
	if err := f.st.InsertNotification(ctx, f.bobNotification); err != nil {
		t.Fatal(err)
	}

	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:      strings.Repeat("s", 40),
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	f.jwt = jwtManager

	handler := NewHandler(f.st, chats.NewEngine(f.st, f.st), f.relay)
	router := NewRouter(handler, stubSockets{}, auth.NewJWTSessionValidator(jwtManager, f.st), nil)
	f.server = httptest.NewServer(router.SetupChi())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) token(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := f.jwt.GenerateToken(u)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// do sends a request as user (nil for anonymous) and decodes the envelope.
func (f *fixture) do(t *testing.T, method, path string, user *models.User, body string) (int, APIResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+f.token(t, user))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var envelope APIResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
	}
	return resp.StatusCode, envelope
}

func errorCode(resp APIResponse) string {
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}
