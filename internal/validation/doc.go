// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

// Package validation provides struct validation for REST request bodies using
// go-playground/validator v10.
//
// A single validator instance is created on first use and shared by every
// handler, so struct metadata is parsed once. Error field names come from the
// json tag, which keeps messages in the vocabulary of the request body:
//
//	type membershipRequest struct {
//	    UsernamesToAdd    []string `json:"usernamesToAdd" validate:"max=100,dive,required,max=64"`
//	    UsernamesToRemove []string `json:"usernamesToRemove" validate:"max=100,dive,required,max=64"`
//	}
//
// # Custom Tags
//
//   - objectid: a 24 character hex MongoDB ObjectID
//   - username: letters, digits, '.', '_' and '-'
//
// # Error Format
//
// RequestValidationError.ToAPIError produces the VALIDATION_ERROR body used by
// the API envelope. A single failure reports field, tag and value in details.
// Several failures are listed under details.fields.
package validation
