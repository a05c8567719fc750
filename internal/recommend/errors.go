// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCondition is returned for conditions that cannot be parsed.
	ErrMalformedCondition = errors.New("malformed condition")

	// ErrUnsupportedAttribute is returned for attribute paths outside user.* and progress.*.
	ErrUnsupportedAttribute = errors.New("unsupported attribute")

	// ErrInvalidArgument is returned when a required identifier is empty.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned by collaborators when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// Collaborator names used in DataFetchError.
const (
	CollaboratorProfile      = "profile"
	CollaboratorProgress     = "progress"
	CollaboratorInteractions = "interactions"
	CollaboratorStage        = "stage_content"
	CollaboratorRules        = "rules"
	CollaboratorLookup       = "content_lookup"
)

// DataFetchError reports a failed read from an external collaborator.
type DataFetchError struct {
	Collaborator string
	Err          error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Collaborator, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// RuleEvaluationError reports a rule whose condition could not be evaluated.
type RuleEvaluationError struct {
	RuleID string
	Clause string
	Err    error
}

func (e *RuleEvaluationError) Error() string {
	if e.Clause != "" {
		return fmt.Sprintf("rule %q: clause %q: %v", e.RuleID, e.Clause, e.Err)
	}
	return fmt.Sprintf("rule %q: %v", e.RuleID, e.Err)
}

func (e *RuleEvaluationError) Unwrap() error { return e.Err }

// CacheWriteError reports a failed write to the cache backing store.
type CacheWriteError struct {
	Key string
	Err error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("cache write %s: %v", e.Key, e.Err)
}

func (e *CacheWriteError) Unwrap() error { return e.Err }

// CompletionWriteError reports a completion that could not be recorded.
type CompletionWriteError struct {
	UserID    string
	ProgramID string
	ContentID string
	Err       error
}

func (e *CompletionWriteError) Error() string {
	return fmt.Sprintf("record completion of %s for user %s in %s: %v", e.ContentID, e.UserID, e.ProgramID, e.Err)
}

func (e *CompletionWriteError) Unwrap() error { return e.Err }
