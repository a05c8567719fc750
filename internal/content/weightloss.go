// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package content

import "github.com/tomtom215/careguide/internal/recommend"

// WeightLossProgramID identifies the GLP-1 weight management program.
const WeightLossProgramID = "weightLoss"

type sections = map[recommend.Section][]recommend.ContentItem

func item(id, title, description string, typ recommend.ContentType, minutes int, tags ...string) recommend.ContentItem {
	return recommend.ContentItem{
		ID:                 id,
		Title:              title,
		Description:        description,
		ContentType:        typ,
		ReadingTimeMinutes: minutes,
		Tags:               tags,
	}
}

// WeightLoss returns the weightLoss program: six stages from the first
// injection to long-term maintenance, with its personalization rules.
func WeightLoss() Program {
	return Program{
		ID:    WeightLossProgramID,
		Title: "Weight management with GLP-1 therapy",
		Stages: []recommend.Stage{
			{
				Title: "Getting started",
				Sections: sections{
					recommend.SectionRecommended: {
						item("understanding-glp1", "Understanding GLP-1 medication",
							"How your medication works to support weight management.",
							recommend.ContentMedicationGuide, 5, "medication", "basics"),
					},
					recommend.SectionWeekFocus: {
						item("injection-basics", "Your first injection",
							"A step-by-step guide to preparing and giving your weekly injection.",
							recommend.ContentUsageGuide, 4, "injection", "basics"),
					},
					recommend.SectionQuickHelp: {
						item("injection-rotation", "Rotating injection sites",
							"Why and how to rotate between abdomen, thigh and upper arm.",
							recommend.ContentQuickTip, 2, "injection"),
						item("missed-dose", "If you miss a dose",
							"What to do when a weekly dose is late or missed.",
							recommend.ContentQuickTip, 2, "injection"),
					},
				},
			},
			{
				Title: "Building habits",
				Sections: sections{
					recommend.SectionRecommended: {
						item("healthy-eating-basics", "Healthy eating basics",
							"Building balanced meals that work with your medication.",
							recommend.ContentConditionInfo, 6, "nutrition"),
						item("gradual-weight-loss", "Why gradual weight loss works",
							"Steady progress is safer and easier to keep up.",
							recommend.ContentConditionInfo, 5, "motivation", "basics"),
					},
					recommend.SectionWeekFocus: {
						item("managing-nausea", "Managing nausea",
							"Small changes that ease the most common side effect.",
							recommend.ContentSideEffect, 4, "side-effects", "nutrition"),
					},
					recommend.SectionQuickHelp: {
						item("storing-medication", "Storing your medication",
							"Keeping pens at the right temperature at home and when travelling.",
							recommend.ContentQuickTip, 2, "medication"),
					},
					recommend.SectionComingUp: {
						item("activity-preview", "Getting ready to move",
							"What next stage's activity goals look like and how to prepare.",
							recommend.ContentQuickTip, 2, "exercise"),
					},
				},
			},
			{
				Title: "Staying active",
				Sections: sections{
					recommend.SectionRecommended: {
						item("metabolism-after-50", "Metabolism after 50",
							"How metabolism changes with age and what helps.",
							recommend.ContentConditionInfo, 6, "age", "nutrition"),
						item("joint-friendly-exercise", "Joint-friendly exercise",
							"Low-impact activities that protect your joints.",
							recommend.ContentUsageGuide, 5, "age", "exercise"),
					},
					recommend.SectionWeekFocus: {
						item("building-activity", "Building activity into your week",
							"Gentle ways to add movement as your energy returns.",
							recommend.ContentUsageGuide, 5, "exercise"),
					},
					recommend.SectionQuickHelp: {
						item("hydration-tips", "Staying hydrated",
							"How much to drink and easy ways to remember.",
							recommend.ContentQuickTip, 2, "nutrition"),
					},
				},
			},
			{
				Title: "Finding your rhythm",
				Sections: sections{
					recommend.SectionRecommended: {
						item("mindful-eating", "Mindful eating",
							"Noticing fullness signals that your medication strengthens.",
							recommend.ContentConditionInfo, 5, "nutrition", "motivation"),
						item("quick-wins", "Quick wins for this week",
							"Small achievable goals that keep momentum going.",
							recommend.ContentQuickTip, 3, "motivation"),
					},
					recommend.SectionWeekFocus: {
						item("dose-adjustments", "When your dose changes",
							"What to expect when your prescriber increases your dose.",
							recommend.ContentMedicationGuide, 4, "medication", "side-effects"),
					},
					recommend.SectionQuickHelp: {
						item("hydration-on-hot-days", "Hydration on hot days",
							"Drinking more when it is warm or you are more active.",
							recommend.ContentQuickTip, 2, "nutrition"),
					},
				},
			},
			{
				Title: "Breaking through",
				Sections: sections{
					recommend.SectionRecommended: {
						item("overcoming-plateaus", "Overcoming plateaus",
							"Why weight loss slows and how to move past it.",
							recommend.ContentConditionInfo, 6, "motivation"),
						item("motivation-strategies", "Motivation strategies",
							"Keeping going when progress feels slow.",
							recommend.ContentConditionInfo, 5, "motivation"),
					},
					recommend.SectionWeekFocus: {
						item("strength-training", "Adding strength training",
							"Preserving muscle while you lose weight.",
							recommend.ContentUsageGuide, 6, "exercise"),
					},
					recommend.SectionQuickHelp: {
						item("eating-out", "Eating out",
							"Making choices that suit your plan at restaurants.",
							recommend.ContentQuickTip, 2, "nutrition"),
					},
				},
			},
			{
				Title: "Maintenance",
				Sections: sections{
					recommend.SectionRecommended: {
						item("long-term-maintenance", "Maintaining your results",
							"Habits that help keep weight off for the long term.",
							recommend.ContentConditionInfo, 6, "motivation", "nutrition"),
					},
					recommend.SectionWeekFocus: {
						item("treatment-review", "Reviewing your treatment",
							"Preparing for the conversation about your next steps.",
							recommend.ContentMedicationGuide, 4, "medication"),
					},
					recommend.SectionQuickHelp: {
						item("when-to-call", "When to call your care team",
							"Symptoms that need prompt attention.",
							recommend.ContentQuickTip, 2, "side-effects"),
					},
				},
			},
		},
		Rules: []recommend.PersonalizationRule{
			{
				ID:        "age_based",
				Name:      "Content for patients over 50",
				Condition: recommend.MustParseCondition("user.age >= 50"),
				Adjustments: recommend.Adjustments{
					AddContent: []string{"metabolism-after-50", "joint-friendly-exercise"},
					Prioritize: []string{"gradual-weight-loss"},
				},
			},
			{
				ID:        "progress_based",
				Name:      "Support when progress slows",
				Condition: recommend.MustParseCondition("progress.stage >= 4 && progress.completion < 50%"),
				Adjustments: recommend.Adjustments{
					AddContent: []string{"motivation-strategies", "overcoming-plateaus"},
					Prioritize: []string{"quick-wins"},
				},
			},
			{
				ID:        "nausea_support",
				Name:      "Early side effect support",
				Condition: recommend.MustParseCondition("user.preferences == side-effects"),
				Adjustments: recommend.Adjustments{
					AddContent: []string{"managing-nausea"},
					Prioritize: []string{"managing-nausea"},
				},
			},
		},
	}
}
