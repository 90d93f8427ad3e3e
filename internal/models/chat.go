// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a group conversation. Users holds the non-owner members; the
// owner is never stored in it.
type Chat struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Owner     primitive.ObjectID   `bson:"owner" json:"owner"`
	Users     []primitive.ObjectID `bson:"users" json:"users"`
	IsGroup   bool                 `bson:"isGroup" json:"isGroup"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether id is in the member list. The owner is not a
// member in this sense.
func (c *Chat) HasMember(id primitive.ObjectID) bool {
	for _, u := range c.Users {
		if u == id {
			return true
		}
	}
	return false
}

// IsParticipant reports whether id is the owner or a member.
func (c *Chat) IsParticipant(id primitive.ObjectID) bool {
	return c.Owner == id || c.HasMember(id)
}
