// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message. A group message carries Chat; a direct
// message carries Receiver instead.
type Message struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	Chat      *primitive.ObjectID `bson:"chat,omitempty" json:"chat,omitempty"`
	Sender    primitive.ObjectID  `bson:"sender" json:"sender"`
	Receiver  *primitive.ObjectID `bson:"receiver,omitempty" json:"receiver,omitempty"`
	Text      string              `bson:"text" json:"text"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsDirect reports whether the message is between two users rather than in a chat.
func (m *Message) IsDirect() bool {
	return m.Chat == nil && m.Receiver != nil
}

// Involves reports whether the message is a direct message exchanged
// between a and b, in either direction.
func (m *Message) Involves(a, b primitive.ObjectID) bool {
	if !m.IsDirect() {
		return false
	}
	r := *m.Receiver
	return (m.Sender == a && r == b) || (m.Sender == b && r == a)
}
