// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

// Package models defines the persisted documents the realtime layer reads:
// users, chats, messages and notifications.
//
// The documents are owned by the CRUD layer; this package only fixes their
// BSON and JSON shape. Identifiers are MongoDB ObjectIDs and serialize to
// hex strings in JSON.
package models
