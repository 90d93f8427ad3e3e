// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type membershipBody struct {
	UsernamesToAdd    []string `json:"usernamesToAdd" validate:"max=3,dive,required,max=8"`
	UsernamesToRemove []string `json:"usernamesToRemove" validate:"max=3,dive,required,max=8"`
}

type entityBody struct {
	ID       string `json:"id" validate:"required,objectid"`
	Username string `json:"username" validate:"omitempty,username"`
	Status   string `json:"status" validate:"required,oneof=CREATED UPDATED DELETED"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"empty membership body", &membershipBody{}},
		{"membership at limits", &membershipBody{
			UsernamesToAdd:    []string{"a", "b", "12345678"},
			UsernamesToRemove: []string{"c"},
		}},
		{"entity", &entityBody{ID: "507f1f77bcf86cd799439011", Username: "alice_01", Status: "DELETED"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "too many usernames",
			input:     &membershipBody{UsernamesToAdd: []string{"a", "b", "c", "d"}},
			wantField: "usernamesToAdd",
			wantTag:   "max",
			wantMsg:   "usernamesToAdd must be at most 3 items",
		},
		{
			name:      "empty username in list",
			input:     &membershipBody{UsernamesToRemove: []string{"a", ""}},
			wantField: "usernamesToRemove[1]",
			wantTag:   "required",
			wantMsg:   "usernamesToRemove[1] is required",
		},
		{
			name:      "username too long",
			input:     &membershipBody{UsernamesToAdd: []string{"123456789"}},
			wantField: "usernamesToAdd[0]",
			wantTag:   "max",
			wantMsg:   "usernamesToAdd[0] must be at most 8 characters",
		},
		{
			name:      "bad object id",
			input:     &entityBody{ID: "nope", Status: "CREATED"},
			wantField: "id",
			wantTag:   "objectid",
			wantMsg:   "id must be a valid id",
		},
		{
			name:      "bad username",
			input:     &entityBody{ID: "507f1f77bcf86cd799439011", Username: "a b", Status: "CREATED"},
			wantField: "username",
			wantTag:   "username",
		},
		{
			name:      "bad status",
			input:     &entityBody{ID: "507f1f77bcf86cd799439011", Status: "MOVED"},
			wantField: "status",
			wantTag:   "oneof",
			wantMsg:   "status must be one of: CREATED UPDATED DELETED",
		},

	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if verr == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if tt.wantMsg != "" && errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	verr := ValidateStruct(&entityBody{ID: "x", Status: "CREATED"})
	if verr == nil {
		t.Fatal("expected error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "id must be a valid id" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "id" {
		t.Errorf("Details[field] = %v, want id", apiErr.Details["field"])
	}
	if apiErr.Details["value"] != "x" {
		t.Errorf("Details[value] = %v, want x", apiErr.Details["value"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	verr := ValidateStruct(&entityBody{})
	if verr == nil {
		t.Fatal("expected error")
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	if !strings.Contains(apiErr.Message, "id: id is required") {
		t.Errorf("Message %q should mention id", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "status: status is required") {
		t.Errorf("Message %q should mention status", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]any)
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %#v", apiErr.Details["fields"])
	}
	if verr.Error() != "id is required; status is required" {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestToAPIError_Empty(t *testing.T) {
	verr := &RequestValidationError{}
	if verr.Error() != "validation failed" {
		t.Errorf("Error() = %q", verr.Error())
	}
	if got := verr.ToAPIError(); got.Message != "Validation failed" || got.Details != nil {
		t.Errorf("ToAPIError() = %+v", got)
	}
}
