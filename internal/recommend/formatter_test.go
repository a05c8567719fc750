// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestFormat_EmptySectionFallsBackToBase(t *testing.T) {
	t.Parallel()

	stage := testStage()
	selected := map[Section][]ScoredContentItem{
		SectionRecommended: {scored("gradual-weight-loss", 0.9, nil, false)},
		SectionWeekFocus:   {},
	}

	out := Format(stage, selected, nil)

	if !out.Personalized || out.Fallback {
		t.Errorf("Personalized, Fallback = %v, %v, want true, false", out.Personalized, out.Fallback)
	}
	if got := out.SectionIDs(SectionRecommended); len(got) != 1 || got[0] != "gradual-weight-loss" {
		t.Errorf("recommended = %v, want [gradual-weight-loss]", got)
	}
	if got := out.SectionIDs(SectionWeekFocus); len(got) != 1 || got[0] != "managing-nausea" {
		t.Errorf("weekFocus = %v, want base content", got)
	}
	if got := out.SectionIDs(SectionQuickHelp); len(got) != 2 {
		t.Errorf("quickHelp = %v, want base content", got)
	}
	if _, ok := out.Sections[string(SectionComingUp)]; ok {
		t.Error("section not defined by the stage was emitted")
	}
}

func TestFormat_BaseFallbackCarriesCompletion(t *testing.T) {
	t.Parallel()

	stage := testStage()
	selected := map[Section][]ScoredContentItem{
		SectionRecommended: {scored("gradual-weight-loss", 0.9, nil, false)},
	}

	out := Format(stage, selected, map[string]bool{"managing-nausea": true})

	got := out.Sections[string(SectionWeekFocus)]
	if len(got) != 1 || got[0].ID != "managing-nausea" {
		t.Fatalf("weekFocus = %+v, want base content", got)
	}
	if !got[0].IsCompleted {
		t.Error("base fallback item reported IsCompleted=false for a completed id")
	}
	if stage.Sections[SectionWeekFocus][0].IsCompleted {
		t.Error("Format() mutated the stage")
	}
}

func TestFormat_SummaryFields(t *testing.T) {
	t.Parallel()

	stage := &Stage{
		ProgramID: "weightLoss",
		Index:     1,
		Title:     "Getting started",
		Sections:  map[Section][]ContentItem{SectionWeekFocus: {}},
	}
	item := ContentItem{
		ID:                 "injection-basics",
		Title:              "Your first injection",
		Description:        "Step by step.",
		ContentType:        ContentUsageGuide,
		ReadingTimeMinutes: 4,
		IsCompleted:        true,
		IsNew:              true,
		Tags:               []string{"injection"},
	}
	out := Format(stage, map[Section][]ScoredContentItem{SectionWeekFocus: {{Item: item, Score: 0.7}}}, nil)

	data, err := json.Marshal(out.Sections[string(SectionWeekFocus)][0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"id":"injection-basics"`,
		`"contentType":"usage_guide"`,
		`"readingTimeMinutes":4`,
		`"category":"how-to"`,
		`"isCompleted":true`,
		`"isNew":true`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "tags") || strings.Contains(s, "score") {
		t.Errorf("summary %s leaks internal fields", s)
	}
}

func TestContentType_Category(t *testing.T) {
	t.Parallel()

	tests := map[ContentType]string{
		ContentMedicationGuide: "medication",
		ContentUsageGuide:      "how-to",
		ContentSideEffect:      "side-effects",
		ContentConditionInfo:   "condition",
		ContentQuickTip:        "tips",
		ContentType("video"):   "general",
	}
	for typ, want := range tests {
		if got := typ.Category(); got != want {
			t.Errorf("%s.Category() = %q, want %q", typ, got, want)
		}
	}
}

func TestPersonalizedContent_Clone(t *testing.T) {
	t.Parallel()

	orig := FormatBase(testStage())
	c := orig.Clone()
	c.Sections[string(SectionRecommended)][0].Title = "changed"

	if orig.Sections[string(SectionRecommended)][0].Title == "changed" {
		t.Error("Clone() shares section slices")
	}
}
