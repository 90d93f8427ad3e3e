// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/agora/internal/models"
)

// Status is the lifecycle event carried by a frame.
type Status string

const (
	StatusCreated Status = "CREATED"
	StatusUpdated Status = "UPDATED"
	StatusDeleted Status = "DELETED"
)

// Valid reports whether s is one of the three event statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusUpdated, StatusDeleted:
		return true
	}
	return false
}

// failureStatus is the status field of every failure frame.
const failureStatus = "failure"

// InboundFrame is a client or relay frame. ChatID, SenderID and ReceiverID are
// only read from relay deletions, which cannot look the message up.
type InboundFrame struct {
	Status     Status `json:"status"`
	ID         string `json:"id"`
	ChatID     string `json:"chatId,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`

	// NType travels with notification deletions so receivers can be found
	// after the record is gone.
	NType models.NotificationType `json:"nType,omitempty"`
}

// ParseInboundFrame decodes and validates a text frame.
func ParseInboundFrame(data []byte) (*InboundFrame, *Failure) {
	var frame InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, &Failure{Kind: ErrorInvalidEntry, Message: "Invalid JSON", Err: err}
	}
	if frame.ID == "" {
		return nil, NewFailure(ErrorInvalidEntry, "Missing required field").WithData("field", "id")
	}
	if !frame.Status.Valid() {
		return nil, NewFailure(ErrorInvalidEntry, "Invalid status").WithData("field", "status")
	}
	return &frame, nil
}

// FailureFrame is the outbound shape of a Failure.
type FailureFrame struct {
	Status  string         `json:"status"`
	Error   ErrorKind      `json:"error"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (f *Failure) frame() FailureFrame {
	return FailureFrame{Status: failureStatus, Error: f.Kind, Message: f.Message, Data: f.Data}
}

// MarshalFrame encodes a failure for the wire.
func (f *Failure) MarshalFrame() ([]byte, error) {
	return json.Marshal(f.frame())
}

// MessageEvent is a full chat message with the event status merged in.
type MessageEvent struct {
	*models.Message
	Status Status `json:"status"`
}

// DeletedMessageEvent is sent for relay deletions.
type DeletedMessageEvent struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	ChatID string `json:"chatId,omitempty"`
}

// NotificationEvent is a full notification with the event status merged in.
type NotificationEvent struct {
	*models.Notification
	Status Status `json:"status"`
}

// DeletedNotificationEvent is sent when a notification is removed.
type DeletedNotificationEvent struct {
	ID     string                  `json:"id"`
	Status Status                  `json:"status"`
	Type   models.NotificationType `json:"nType"`
}
