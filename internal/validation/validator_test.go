// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type idRequest struct {
	UserID    string `json:"user_id" validate:"required,slug,max=16"`
	ProgramID string `json:"program_id" validate:"required,slug"`
	Limit     int    `koanf:"limit" validate:"min=1,max=50"`
	Mode      string `koanf:"mode" validate:"omitempty,oneof=any all"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     idRequest
		wantField string
		wantTag   string
	}{
		{
			name:  "valid",
			input: idRequest{UserID: "patient-42", ProgramID: "weightloss", Limit: 10},
		},
		{
			name:  "valid with dots and underscores",
			input: idRequest{UserID: "p_1.2", ProgramID: "w", Limit: 1, Mode: "all"},
		},
		{
			name:      "missing user",
			input:     idRequest{ProgramID: "weightloss", Limit: 10},
			wantField: "user_id",
			wantTag:   "required",
		},
		{
			name:  "mixed case program",
			input: idRequest{UserID: "Patient", ProgramID: "weightLoss", Limit: 10},
		},
		{
			name:      "whitespace",
			input:     idRequest{UserID: "pat ient", ProgramID: "weightloss", Limit: 10},
			wantField: "user_id",
			wantTag:   "slug",
		},
		{
			name:      "slug starting with dash",
			input:     idRequest{UserID: "-x", ProgramID: "weightloss", Limit: 10},
			wantField: "user_id",
			wantTag:   "slug",
		},
		{
			name:      "path traversal",
			input:     idRequest{UserID: "u1", ProgramID: "../etc", Limit: 10},
			wantField: "program_id",
			wantTag:   "slug",
		},
		{
			name:      "too long",
			input:     idRequest{UserID: "abcdefghijklmnopq", ProgramID: "w", Limit: 10},
			wantField: "user_id",
			wantTag:   "max",
		},
		{
			name:      "limit too low",
			input:     idRequest{UserID: "u1", ProgramID: "w"},
			wantField: "limit",
			wantTag:   "min",
		},
		{
			name:      "bad enum",
			input:     idRequest{UserID: "u1", ProgramID: "w", Limit: 1, Mode: "some"},
			wantField: "mode",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, e := range err.Errors() {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on field %s with tag %s, got: %v", tt.wantField, tt.wantTag, err)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := ValidateStruct(&idRequest{UserID: "b@d", ProgramID: "w", Limit: 1})
		if err == nil {
			t.Fatal("expected validation error")
		}
		apiErr := err.ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
		}
		if !strings.Contains(apiErr.Message, "user_id must be an identifier") {
			t.Errorf("Message = %q", apiErr.Message)
		}
		if apiErr.Details["field"] != "user_id" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := ValidateStruct(&idRequest{})
		if err == nil {
			t.Fatal("expected validation error")
		}
		apiErr := err.ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) < 3 {
			t.Fatalf("Details[fields] = %v, want at least 3 entries", apiErr.Details["fields"])
		}
		if !strings.Contains(apiErr.Message, "; ") {
			t.Errorf("Message = %q, want joined messages", apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}

func TestTranslateMessages(t *testing.T) {
	err := ValidateStruct(&idRequest{UserID: "u1", ProgramID: "w", Limit: 99})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := err.Error(); got != "limit must be at most 50" {
		t.Errorf("Error() = %q", got)
	}

	err = ValidateStruct(&idRequest{UserID: "u1", ProgramID: "w", Limit: 1, Mode: "x"})
	if got := err.Error(); got != "mode must be one of: any, all" {
		t.Errorf("Error() = %q", got)
	}
}
