// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

// Format maps the selected items onto the display contract. Every section
// the stage defines is present; a section left empty by personalization
// falls back to the stage's base content for it, with IsCompleted taken
// from the user's completed ids.
func Format(stage *Stage, selected map[Section][]ScoredContentItem, completed map[string]bool) *PersonalizedContent {
	out := &PersonalizedContent{
		ProgramID:    stage.ProgramID,
		StageIndex:   stage.Index,
		StageTitle:   stage.Title,
		Sections:     make(map[string][]ContentSummary, len(stage.Sections)),
		Personalized: true,
	}

	for _, sec := range stage.DefinedSections() {
		items := selected[sec]
		if len(items) == 0 {
			base := summarize(stage.Sections[sec])
			for i := range base {
				if completed[base[i].ID] {
					base[i].IsCompleted = true
				}
			}
			out.Sections[string(sec)] = base
			continue
		}
		summaries := make([]ContentSummary, len(items))
		for i := range items {
			summaries[i] = summary(&items[i].Item)
		}
		out.Sections[string(sec)] = summaries
	}
	return out
}

// FormatBase renders a stage's base content without personalization.
func FormatBase(stage *Stage) *PersonalizedContent {
	out := &PersonalizedContent{
		ProgramID:  stage.ProgramID,
		StageIndex: stage.Index,
		StageTitle: stage.Title,
		Sections:   make(map[string][]ContentSummary, len(stage.Sections)),
	}
	for _, sec := range stage.DefinedSections() {
		out.Sections[string(sec)] = summarize(stage.Sections[sec])
	}
	return out
}

func summarize(items []ContentItem) []ContentSummary {
	out := make([]ContentSummary, len(items))
	for i := range items {
		out[i] = summary(&items[i])
	}
	return out
}

func summary(item *ContentItem) ContentSummary {
	return ContentSummary{
		ID:                 item.ID,
		Title:              item.Title,
		Description:        item.Description,
		ContentType:        item.ContentType,
		ReadingTimeMinutes: item.ReadingTimeMinutes,
		Category:           item.ContentType.Category(),
		IsCompleted:        item.IsCompleted,
		IsNew:              item.IsNew,
	}
}

// Clone returns a copy that shares no section slices with p.
func (p *PersonalizedContent) Clone() *PersonalizedContent {
	out := *p
	out.Sections = make(map[string][]ContentSummary, len(p.Sections))
	for k, v := range p.Sections {
		out.Sections[k] = append([]ContentSummary(nil), v...)
	}
	return &out
}
