// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func testStage() *Stage {
	return &Stage{
		ProgramID: "weightLoss",
		Index:     2,
		Title:     "Building habits",
		Sections: map[Section][]ContentItem{
			SectionRecommended: {
				{ID: "healthy-eating-basics", Title: "Healthy eating basics"},
				{ID: "gradual-weight-loss", Title: "Why gradual weight loss works"},
			},
			SectionWeekFocus: {
				{
					ID:          "managing-nausea",
					Title:       "Managing nausea",
					Description: "Small changes that help.",
					Variants: map[string]string{
						"older": "At {{user.age}}, {{item.title}} starts with smaller meals.",
					},
				},
			},
			SectionQuickHelp: {
				{ID: "storing-medication", Priority: intPtr(1)},
				{ID: "sharps-disposal"},
			},
		},
	}
}

func TestWorkingSet_CopiesBaseContent(t *testing.T) {
	t.Parallel()

	stage := testStage()
	ws := NewWorkingSet(stage)
	ws.Section(SectionRecommended)[0].Item.Title = "changed"

	if stage.Sections[SectionRecommended][0].Title == "changed" {
		t.Error("working set shares items with the stage")
	}
	if !ws.Contains("managing-nausea") || ws.Contains("quick-wins") {
		t.Error("Contains() does not reflect base content")
	}
}

func TestWorkingSet_Missing(t *testing.T) {
	t.Parallel()

	ws := NewWorkingSet(testStage())
	got := ws.Missing([]string{"quick-wins", "managing-nausea", "quick-wins", "eating-out"})
	want := []string{"quick-wins", "eating-out"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Missing() = %v, want %v", got, want)
	}
}

func TestWorkingSet_ApplyAddContent(t *testing.T) {
	t.Parallel()

	resolved := map[string]ContentPlacement{
		"metabolism-after-50": {Item: ContentItem{ID: "metabolism-after-50"}, StageIndex: 3, Section: SectionRecommended},
		"eating-out":          {Item: ContentItem{ID: "eating-out"}, StageIndex: 5, Section: SectionQuickHelp},
		"building-activity":   {Item: ContentItem{ID: "building-activity"}, StageIndex: 2, Section: SectionComingUp},
	}

	ws := NewWorkingSet(testStage())
	ws.Apply(Adjustments{
		AddContent: []string{"metabolism-after-50", "eating-out", "unknown-id", "managing-nausea", "building-activity"},
	}, resolved, nil)

	tests := []struct {
		section Section
		want    []string
	}{
		{SectionRecommended, []string{"healthy-eating-basics", "gradual-weight-loss", "metabolism-after-50", "building-activity"}},
		{SectionWeekFocus, []string{"managing-nausea"}},
		{SectionQuickHelp, []string{"storing-medication", "sharps-disposal", "eating-out"}},
	}
	for _, tt := range tests {
		if got := ws.IDs(tt.section); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.section, got, tt.want)
		}
	}

	added := ws.Section(SectionRecommended)[2]
	if !added.Added || added.Item.StageIndex != 3 {
		t.Errorf("added item = %+v, want Added with stage 3", added)
	}
	if ws.IDs(SectionComingUp) != nil && len(ws.IDs(SectionComingUp)) != 0 {
		t.Error("undefined section was created")
	}
}

func TestWorkingSet_ApplyModify(t *testing.T) {
	t.Parallel()

	ws := NewWorkingSet(testStage())
	vars := NewTemplateVars(&UserProfile{Age: 58}, &ProgramProgress{CurrentStage: 2})
	ws.Apply(Adjustments{Modify: map[string]string{
		"managing-nausea":       "older",
		"healthy-eating-basics": "missing-variant",
		"not-present":           "older",
	}}, nil, vars)

	got := ws.Section(SectionWeekFocus)[0].Item.Description
	want := "At 58, Managing nausea starts with smaller meals."
	if got != want {
		t.Errorf("Description = %q, want %q", got, want)
	}
	if d := ws.Section(SectionRecommended)[0].Item.Description; d != "" {
		t.Errorf("item without the variant changed: %q", d)
	}
}

func TestWorkingSet_ApplyPrioritize(t *testing.T) {
	t.Parallel()

	ws := NewWorkingSet(testStage())
	ws.Apply(Adjustments{Prioritize: []string{"sharps-disposal", "gradual-weight-loss", "not-present"}}, nil, nil)

	gradual := ws.Section(SectionRecommended)[1]
	if gradual.Item.Priority == nil || *gradual.Item.Priority != -1 || !gradual.Resurfaced {
		t.Errorf("gradual-weight-loss = %+v, want priority -1 and resurfaced", gradual)
	}

	sharps := ws.Section(SectionQuickHelp)[1]
	storing := ws.Section(SectionQuickHelp)[0]
	if sharps.Item.Priority == nil || *sharps.Item.Priority >= *storing.Item.Priority {
		t.Errorf("sharps-disposal priority %v not ahead of storing-medication %v", sharps.Item.Priority, *storing.Item.Priority)
	}
}

func TestWorkingSet_PrioritizeKeepsListOrder(t *testing.T) {
	t.Parallel()

	ws := NewWorkingSet(testStage())
	ws.Apply(Adjustments{Prioritize: []string{"gradual-weight-loss", "healthy-eating-basics"}}, nil, nil)

	items := ws.Section(SectionRecommended)
	if *items[1].Item.Priority >= *items[0].Item.Priority {
		t.Errorf("gradual-weight-loss priority %d, healthy-eating-basics %d, want gradual first",
			*items[1].Item.Priority, *items[0].Item.Priority)
	}
}

func TestWorkingSet_FalseRuleLeavesSetUnchanged(t *testing.T) {
	t.Parallel()

	stage := testStage()
	rule := PersonalizationRule{
		ID:          "age_based",
		Condition:   MustParseCondition("user.age >= 50"),
		Adjustments: Adjustments{AddContent: []string{"x"}, Prioritize: []string{"gradual-weight-loss"}},
	}

	ws := NewWorkingSet(stage)
	before := snapshot(ws)

	ok, err := NewEvaluator(MatchAny).Evaluate(rule.Condition, &UserProfile{Age: 30}, &ProgramProgress{})
	if err != nil || ok {
		t.Fatalf("Evaluate() = %v, %v, want false", ok, err)
	}
	if ok {
		ws.Apply(rule.Adjustments, nil, nil)
	}
	if after := snapshot(ws); !reflect.DeepEqual(before, after) {
		t.Errorf("working set changed: %v -> %v", before, after)
	}
}

func snapshot(ws *WorkingSet) map[Section][]string {
	out := map[Section][]string{}
	for _, sec := range SectionOrder {
		if ids := ws.IDs(sec); len(ids) > 0 {
			out[sec] = ids
		}
	}
	return out
}
