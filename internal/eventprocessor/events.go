// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/careguide/internal/validation"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to Event.
const SchemaVersion = 1

// Event types.
const (
	TypeProgressUpdated  = "progress.updated"
	TypeContentViewed    = "content.viewed"
	TypeContentUpdated   = "content.updated"
	TypeContentCompleted = "content.completed"
)

// SubjectPrefix namespaces every Careguide topic.
const SubjectPrefix = "careguide."

// StreamSubjects returns the subjects captured by the JetStream stream.
func StreamSubjects() []string {
	return []string{SubjectPrefix + ">"}
}

// TopicFor returns the topic an event type is published on.
func TopicFor(eventType string) string {
	return SubjectPrefix + eventType
}

// Event is the envelope for all Careguide events. Which payload fields are
// required depends on Type.
type Event struct {
	SchemaVersion int       `json:"schema_version,omitempty"`
	EventID       string    `json:"event_id" validate:"required"`
	Type          string    `json:"type" validate:"oneof=progress.updated content.viewed content.updated content.completed"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`

	UserID    string `json:"user_id,omitempty" validate:"omitempty,slug"`
	ProgramID string `json:"program_id" validate:"required,slug"`
	ContentID string `json:"content_id,omitempty" validate:"omitempty,slug"`

	// progress.updated
	CurrentStage         int     `json:"current_stage,omitempty" validate:"min=0"`
	CompletionPercentage float64 `json:"completion_percentage,omitempty" validate:"min=0,max=100"`

	// content.viewed
	TimeSpentSeconds int `json:"time_spent_seconds,omitempty" validate:"min=0"`
}

// NewEvent creates an event of the given type with a fresh id.
func NewEvent(eventType string) *Event {
	return &Event{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
	}
}

// NewProgressUpdated reports a user's new position in a program.
func NewProgressUpdated(userID, programID string, stage int, completion float64) *Event {
	e := NewEvent(TypeProgressUpdated)
	e.UserID = userID
	e.ProgramID = programID
	e.CurrentStage = stage
	e.CompletionPercentage = completion
	return e
}

// NewContentViewed reports that a user opened a content item.
func NewContentViewed(userID, programID, contentID string, timeSpent time.Duration) *Event {
	e := NewEvent(TypeContentViewed)
	e.UserID = userID
	e.ProgramID = programID
	e.ContentID = contentID
	e.TimeSpentSeconds = int(timeSpent / time.Second)
	return e
}

// NewContentUpdated reports that a program's catalog changed.
func NewContentUpdated(programID string) *Event {
	e := NewEvent(TypeContentUpdated)
	e.ProgramID = programID
	return e
}

// NewContentCompleted reports a recorded completion.
func NewContentCompleted(userID, programID, contentID string) *Event {
	e := NewEvent(TypeContentCompleted)
	e.UserID = userID
	e.ProgramID = programID
	e.ContentID = contentID
	return e
}

// Topic returns the topic the event is published on.
func (e *Event) Topic() string {
	return TopicFor(e.Type)
}

// TimeSpent returns the view duration carried by a content.viewed event.
func (e *Event) TimeSpent() time.Duration {
	return time.Duration(e.TimeSpentSeconds) * time.Second
}

// InvalidFields returns the event fields named by a struct validation
// failure in err, or nil.
func InvalidFields(err error) []string {
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	fields := make([]string, 0, len(verr.Errors()))
	for _, fe := range verr.Errors() {
		fields = append(fields, fe.Field())
	}
	return fields
}

// Validate checks field formats and the fields each type requires.
func (e *Event) Validate() error {
	if verr := validation.ValidateStruct(e); verr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, verr)
	}

	switch e.Type {
	case TypeProgressUpdated:
		if e.UserID == "" {
			return fmt.Errorf("%w: user_id is required for %s", ErrInvalidEvent, e.Type)
		}
		if e.CurrentStage < 1 {
			return fmt.Errorf("%w: current_stage must be at least 1", ErrInvalidEvent)
		}
	case TypeContentViewed, TypeContentCompleted:
		if e.UserID == "" || e.ContentID == "" {
			return fmt.Errorf("%w: user_id and content_id are required for %s", ErrInvalidEvent, e.Type)
		}
	}
	return nil
}
