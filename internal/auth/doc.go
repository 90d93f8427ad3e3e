// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

// Package auth identifies who is on the other end of a request or socket.
//
// A connection is attributed to exactly one Principal:
//
//   - UserPrincipal: a user who presented a valid session token
//     (Authorization: Bearer <jwt>)
//   - RelayPrincipal: trusted server-side code that presented the shared
//     relay secret (Authorization: <secret>)
//
// Principal is a closed set; consumers switch on the concrete type:
//
//	switch p := principal.(type) {
//	case auth.UserPrincipal:
//	    // scoped to p.User
//	case auth.RelayPrincipal:
//	    // unscoped
//	}
//
// Token issuance is owned by the account service. JWTManager can mint
// tokens so tests and local tooling have something to present.
package auth
