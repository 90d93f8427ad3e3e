// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChatParticipants(t *testing.T) {
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	chat := &Chat{ID: primitive.NewObjectID(), Owner: owner, Users: []primitive.ObjectID{member}, IsGroup: true}

	if chat.HasMember(owner) {
		t.Error("owner must not count as a member")
	}
	if !chat.IsParticipant(owner) || !chat.IsParticipant(member) {
		t.Error("owner and member should be participants")
	}
	if chat.IsParticipant(stranger) {
		t.Error("stranger should not be a participant")
	}
}

func TestMessageInvolves(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	dm := &Message{ID: primitive.NewObjectID(), Sender: a, Receiver: &b}
	if !dm.IsDirect() {
		t.Fatal("expected direct message")
	}
	if !dm.Involves(a, b) || !dm.Involves(b, a) {
		t.Error("direct message should involve its pair in either order")
	}
	if dm.Involves(a, c) {
		t.Error("direct message should not involve a third user")
	}

	chatID := primitive.NewObjectID()
	group := &Message{ID: primitive.NewObjectID(), Chat: &chatID, Sender: a}
	if group.IsDirect() || group.Involves(a, b) {
		t.Error("group message is not direct")
	}
}

func TestNotificationIsBroadcast(t *testing.T) {
	if !(&Notification{Type: NotificationTypeAdmin}).IsBroadcast() {
		t.Error("admin notifications are broadcast")
	}
	if (&Notification{Type: NotificationTypeComment}).IsBroadcast() {
		t.Error("comment notifications are not broadcast")
	}
}
