// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package chats

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOwner is returned when someone other than the owner edits membership.
	ErrNotOwner = errors.New("only the chat owner can change its members")

	// ErrNotGroup is returned for membership changes on a direct chat.
	ErrNotGroup = errors.New("chat is not a group")
)

// ValidationError reports a rejected membership request against one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
