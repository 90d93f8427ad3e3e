// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

// Package logging provides the process-wide zerolog logger for Agora.
//
// All packages log through this wrapper so output format, level and field
// names are configured in one place:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("chat_id", id).Msg("Chat socket opened")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Relay dial failed")
//
// Always terminate event chains with .Msg() or .Send(); an unterminated
// chain is never written.
//
// Libraries that want a *slog.Logger (sutureslog) or a watermill.LoggerAdapter
// get adapters from NewSlogLogger and NewWatermillLogger, both writing
// through the same zerolog backend.
//
// Field naming conventions used across Agora:
//
//	conn_id       WebSocket connection id (uint64, per process)
//	kind          socket channel: chat or notification
//	user_id       authenticated user ObjectID (hex)
//	chat_id       chat ObjectID (hex)
//	error_kind    failure frame kind, e.g. INVALID_MEMBER
//	transport     relay transport: socket or bus
//	request_id    HTTP X-Request-ID
//	correlation_id short id tying a relay publish to its delivery
package logging
