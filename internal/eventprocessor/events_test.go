// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package eventprocessor

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTopicFor(t *testing.T) {
	t.Parallel()

	if got := TopicFor(TypeProgressUpdated); got != "careguide.progress.updated" {
		t.Errorf("TopicFor() = %q", got)
	}
	if got := NewContentUpdated("weightloss").Topic(); got != "careguide.content.updated" {
		t.Errorf("Topic() = %q", got)
	}
	subjects := StreamSubjects()
	if len(subjects) != 1 || subjects[0] != "careguide.>" {
		t.Errorf("StreamSubjects() = %v", subjects)
	}
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	a := NewContentCompleted("user-1", "weightloss", "water-intake")
	b := NewContentCompleted("user-1", "weightloss", "water-intake")

	if a.EventID == "" || a.EventID == b.EventID {
		t.Errorf("event ids should be unique and non-empty: %q %q", a.EventID, b.EventID)
	}
	if a.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d", a.SchemaVersion)
	}
	if a.Timestamp.IsZero() || a.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp = %v, want UTC now", a.Timestamp)
	}

	viewed := NewContentViewed("user-1", "weightloss", "meal-prep", 90*time.Second+400*time.Millisecond)
	if viewed.TimeSpentSeconds != 90 || viewed.TimeSpent() != 90*time.Second {
		t.Errorf("TimeSpentSeconds = %d", viewed.TimeSpentSeconds)
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		event   func() *Event
		wantErr string
	}{
		{"progress valid", func() *Event { return NewProgressUpdated("user-1", "weightloss", 2, 40) }, ""},
		{"viewed valid", func() *Event { return NewContentViewed("user-1", "weightloss", "meal-prep", time.Minute) }, ""},
		{"updated valid", func() *Event { return NewContentUpdated("weightloss") }, ""},
		{"completed valid", func() *Event { return NewContentCompleted("user-1", "weightloss", "meal-prep") }, ""},
		{"unknown type", func() *Event { return NewEvent("user.deleted") }, "type"},
		{"missing program", func() *Event { return NewProgressUpdated("user-1", "", 1, 0) }, "program_id"},
		{"missing event id", func() *Event {
			e := NewContentUpdated("weightloss")
			e.EventID = ""
			return e
		}, "event_id"},
		{"bad user id", func() *Event { return NewProgressUpdated("User One", "weightloss", 1, 0) }, "user_id"},
		{"progress without user", func() *Event { return NewProgressUpdated("", "weightloss", 1, 0) }, "user_id"},
		{"progress stage zero", func() *Event { return NewProgressUpdated("user-1", "weightloss", 0, 0) }, "current_stage"},
		{"completion over 100", func() *Event { return NewProgressUpdated("user-1", "weightloss", 1, 101) }, "completion_percentage"},
		{"viewed without content", func() *Event { return NewContentViewed("user-1", "weightloss", "", 0) }, "content_id"},
		{"negative time", func() *Event {
			e := NewContentViewed("user-1", "weightloss", "meal-prep", 0)
			e.TimeSpentSeconds = -1
			return e
		}, "time_spent_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.event().Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("error should wrap ErrInvalidEvent: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestInvalidFields(t *testing.T) {
	t.Parallel()

	e := NewContentViewed("User One", "", "meal-prep", 0)
	fields := InvalidFields(e.Validate())
	if strings.Join(fields, ",") != "user_id,program_id" {
		t.Errorf("InvalidFields() = %v, want [user_id program_id]", fields)
	}

	if got := InvalidFields(NewContentViewed("user-1", "weightloss", "", 0).Validate()); got != nil {
		t.Errorf("InvalidFields(type rule error) = %v, want nil", got)
	}
	if got := InvalidFields(errors.New("boom")); got != nil {
		t.Errorf("InvalidFields(other error) = %v, want nil", got)
	}
}

func TestSerializer(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		in := NewProgressUpdated("user-1", "weightloss", 3, 62.5)
		in.CorrelationID = "corr-1"

		data, err := SerializeEvent(in)
		if err != nil {
			t.Fatalf("SerializeEvent() error = %v", err)
		}
		out, err := DeserializeEvent(data)
		if err != nil {
			t.Fatalf("DeserializeEvent() error = %v", err)
		}
		if out.EventID != in.EventID || out.CurrentStage != 3 || out.CompletionPercentage != 62.5 || out.CorrelationID != "corr-1" {
			t.Errorf("round trip mismatch: %+v", out)
		}
	})

	t.Run("refuses invalid event", func(t *testing.T) {
		t.Parallel()
		if _, err := SerializeEvent(NewProgressUpdated("user-1", "weightloss", 0, 0)); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("SerializeEvent() error = %v, want ErrInvalidEvent", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		if _, err := DeserializeEvent([]byte(`{"event_id":`)); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("DeserializeEvent() error = %v, want ErrInvalidEvent", err)
		}
	})

	t.Run("decoded but invalid", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{"event_id":"e1","type":"content.viewed","program_id":"weightloss","user_id":"u1"}`)
		if _, err := DeserializeEvent(payload); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("DeserializeEvent() error = %v, want ErrInvalidEvent", err)
		}
	})
}
