// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared; it caches struct
// metadata so repeated validation of the same types is cheap. Failures are
// translated into human-readable messages and can be rendered in the ops
// API error format with ToAPIError.
//
// # Custom Tags
//
//   - slug: identifier made of letters, digits, '-', '_' and '.',
//     starting with a letter or digit. Used for user, program and content ids.
//
// # Example
//
//	type previewRequest struct {
//	    UserID    string `validate:"required,slug,max=128"`
//	    ProgramID string `validate:"required,slug,max=64"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
//	    return
//	}
package validation
