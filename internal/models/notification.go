// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies a notification.
type NotificationType string

// Notification types. NotificationTypeAdmin is delivered to every connected
// user regardless of receiver.
const (
	NotificationTypeAdmin         NotificationType = "ADMIN"
	NotificationTypeFriendRequest NotificationType = "FRIEND_REQUEST"
	NotificationTypeFriendAccept  NotificationType = "FRIEND_ACCEPT"
	NotificationTypeComment       NotificationType = "COMMENT"
	NotificationTypeReaction      NotificationType = "REACTION"
	NotificationTypeMessage       NotificationType = "MESSAGE"
)

// Notification is addressed to one receiver, or to everyone for the admin type.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	Receiver  primitive.ObjectID  `bson:"receiver" json:"receiver"`
	Sender    *primitive.ObjectID `bson:"sender,omitempty" json:"sender,omitempty"`
	Type      NotificationType    `bson:"nType" json:"nType"`
	Text      string              `bson:"text" json:"text"`
	Read      bool                `bson:"read" json:"read"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// IsBroadcast reports whether the notification goes to all users.
func (n *Notification) IsBroadcast() bool {
	return n.Type == NotificationTypeAdmin
}
