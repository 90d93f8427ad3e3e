// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package realtime

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/agora/internal/auth"
)

// ErrorKind is the error tag carried in a failure frame.
type ErrorKind string

const (
	ErrorUnauthorized     ErrorKind = "UNAUTHORIZED"
	ErrorInvalidToken     ErrorKind = "INVALID_TOKEN"
	ErrorInvalidParameter ErrorKind = "INVALID_PARAMETER"
	ErrorInvalidMember    ErrorKind = "INVALID_MEMBER"
	ErrorInvalidOwner     ErrorKind = "INVALID_OWNER"
	ErrorNotAllowed       ErrorKind = "NOT_ALLOWED"
	ErrorInvalidEntry     ErrorKind = "INVALID_ENTRY"
	ErrorNotFound         ErrorKind = "NOT_FOUND"
	ErrorRateLimited      ErrorKind = "RATE_LIMITED"
	ErrorInternal         ErrorKind = "INTERNAL"
)

// Application close codes. 4000-4999 is the private range of RFC 6455.
const (
	CloseAuthFailed       = 4001
	CloseInvalidParameter = 4002
	CloseInvalidMember    = 4003
	CloseInvalidEntry     = 4004
)

// closeCodes maps connection-fatal kinds to their close code. Kinds missing
// from the map are frame-level.
var closeCodes = map[ErrorKind]int{
	ErrorUnauthorized:     CloseAuthFailed,
	ErrorInvalidToken:     CloseAuthFailed,
	ErrorInvalidParameter: CloseInvalidParameter,
	ErrorInvalidMember:    CloseInvalidMember,
	ErrorInvalidEntry:     CloseInvalidEntry,
}

// Failure is a rejected handshake or frame. It is sent to the peer as a
// failure frame and, when Fatal, followed by a close.
type Failure struct {
	Kind    ErrorKind
	Message string
	Data    map[string]any

	// Err is the underlying cause. It is logged, never sent.
	Err error
}

// NewFailure creates a failure of the given kind.
func NewFailure(kind ErrorKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// internalFailure wraps a collaborator error.
func internalFailure(err error) *Failure {
	return &Failure{Kind: ErrorInternal, Message: "Internal server error", Err: err}
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fatal reports whether the failure ends the connection.
func (f *Failure) Fatal() bool {
	_, ok := closeCodes[f.Kind]
	return ok
}

// CloseCode returns the close code for the failure. Handshake failures of a
// frame-level kind close with 1011.
func (f *Failure) CloseCode() int {
	if code, ok := closeCodes[f.Kind]; ok {
		return code
	}
	return websocket.CloseInternalServerErr
}

// WithData attaches field-level detail to the failure frame.
func (f *Failure) WithData(key string, value any) *Failure {
	if f.Data == nil {
		f.Data = make(map[string]any, 1)
	}
	f.Data[key] = value
	return f
}

// authFailure maps an authenticator error onto the failure taxonomy.
func authFailure(err error) *Failure {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return &Failure{Kind: ErrorInvalidToken, Message: "Token has expired", Err: err}
	case errors.Is(err, auth.ErrInvalidToken):
		return &Failure{Kind: ErrorInvalidToken, Message: "Invalid token", Err: err}
	case errors.Is(err, auth.ErrNoCredentials):
		return &Failure{Kind: ErrorUnauthorized, Message: "Missing Authorization header", Err: err}
	case errors.Is(err, auth.ErrUnauthorized):
		return &Failure{Kind: ErrorUnauthorized, Message: "Unauthorized", Err: err}
	default:
		return internalFailure(err)
	}
}
