// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"sort"
	"strconv"
	"strings"
)

// WorkingItem is a content item placed in a section of the working set.
type WorkingItem struct {
	Item    ContentItem
	Section Section

	// Added marks items merged in by an addContent adjustment.
	Added bool

	// Resurfaced marks items promoted by a prioritize adjustment.
	Resurfaced bool
}

// WorkingSet is the mutable content set that matched rules reshape.
// It is owned by a single pipeline run and is not safe for concurrent use.
type WorkingSet struct {
	stage    *Stage
	sections map[Section][]*WorkingItem
	present  map[string]struct{}
}

// NewWorkingSet copies the base content of stage into a working set.
func NewWorkingSet(stage *Stage) *WorkingSet {
	ws := &WorkingSet{
		stage:    stage,
		sections: make(map[Section][]*WorkingItem, len(stage.Sections)),
		present:  make(map[string]struct{}),
	}
	for _, sec := range stage.DefinedSections() {
		items := stage.Sections[sec]
		list := make([]*WorkingItem, 0, len(items))
		for i := range items {
			list = append(list, &WorkingItem{Item: items[i].Clone(), Section: sec})
			ws.present[items[i].ID] = struct{}{}
		}
		ws.sections[sec] = list
	}
	return ws
}

// Contains reports whether id is anywhere in the working set.
func (ws *WorkingSet) Contains(id string) bool {
	_, ok := ws.present[id]
	return ok
}

// Missing returns the ids from ids that are not in the working set,
// preserving order and dropping duplicates.
func (ws *WorkingSet) Missing(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if ws.Contains(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Section returns the items of a section in their current order.
func (ws *WorkingSet) Section(sec Section) []*WorkingItem {
	return ws.sections[sec]
}

// IDs returns the ids of a section in their current order.
func (ws *WorkingSet) IDs(sec Section) []string {
	items := ws.sections[sec]
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Item.ID
	}
	return ids
}

// Items returns every item of the working set, section by section.
func (ws *WorkingSet) Items() []*WorkingItem {
	var out []*WorkingItem
	for _, sec := range SectionOrder {
		out = append(out, ws.sections[sec]...)
	}
	return out
}

// TemplateVars supplies the placeholder values used by modify variants.
type TemplateVars map[string]string

// NewTemplateVars exposes profile and progress attributes to variants.
func NewTemplateVars(user *UserProfile, progress *ProgramProgress) TemplateVars {
	vars := TemplateVars{}
	if user != nil {
		vars["user.age"] = strconv.Itoa(user.Age)
		vars["user.gender"] = user.Gender
	}
	if progress != nil {
		vars["progress.stage"] = strconv.Itoa(progress.CurrentStage)
		vars["progress.completion"] = strconv.FormatFloat(progress.CompletionPercentage, 'f', -1, 64)
	}
	return vars
}

// Apply merges one rule's adjustments into the working set. resolved holds
// placements for addContent ids looked up in the content repository; ids
// missing from it are dropped. Adjustments apply in the order add, modify,
// prioritize so that a rule can promote content it adds.
func (ws *WorkingSet) Apply(adj Adjustments, resolved map[string]ContentPlacement, vars TemplateVars) {
	ws.addContent(adj.AddContent, resolved)
	ws.modify(adj.Modify, vars)
	ws.prioritize(adj.Prioritize)
}

func (ws *WorkingSet) addContent(ids []string, resolved map[string]ContentPlacement) {
	for _, id := range ids {
		if ws.Contains(id) {
			continue
		}
		placement, ok := resolved[id]
		if !ok {
			continue
		}
		sec := ws.targetSection(placement.Section)
		if sec == "" {
			continue
		}
		item := placement.Item.Clone()
		if item.ID == "" {
			item.ID = id
		}
		if item.StageIndex == 0 {
			item.StageIndex = placement.StageIndex
		}
		ws.sections[sec] = append(ws.sections[sec], &WorkingItem{Item: item, Section: sec, Added: true})
		ws.present[id] = struct{}{}
	}
}

// targetSection maps an item's home section onto the current stage. A
// section the stage does not define falls back to the first defined one.
func (ws *WorkingSet) targetSection(home Section) Section {
	if _, ok := ws.sections[home]; ok {
		return home
	}
	defined := ws.stage.DefinedSections()
	if len(defined) == 0 {
		return ""
	}
	return defined[0]
}

func (ws *WorkingSet) modify(variants map[string]string, vars TemplateVars) {
	if len(variants) == 0 {
		return
	}
	for _, it := range ws.Items() {
		key, ok := variants[it.Item.ID]
		if !ok {
			continue
		}
		tmpl, ok := it.Item.Variants[key]
		if !ok {
			continue
		}
		it.Item.Description = renderVariant(tmpl, vars, &it.Item)
	}
}

func renderVariant(tmpl string, vars TemplateVars, item *ContentItem) string {
	pairs := make([]string, 0, 2*(len(vars)+1))
	pairs = append(pairs, "{{item.title}}", item.Title)
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func (ws *WorkingSet) prioritize(ids []string) {
	if len(ids) == 0 {
		return
	}
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}

	for _, sec := range SectionOrder {
		items := ws.sections[sec]
		if len(items) == 0 {
			continue
		}

		floor := 0
		var promoted []*WorkingItem
		for _, it := range items {
			if it.Item.Priority != nil && *it.Item.Priority < floor {
				floor = *it.Item.Priority
			}
			if _, ok := rank[it.Item.ID]; ok {
				promoted = append(promoted, it)
			}
		}
		if len(promoted) == 0 {
			continue
		}

		// Order promoted items by their position in the prioritize list,
		// then hand out priorities below the section minimum.
		sort.SliceStable(promoted, func(i, j int) bool {
			return rank[promoted[i].Item.ID] < rank[promoted[j].Item.ID]
		})
		k := len(promoted)
		for i, it := range promoted {
			p := floor - (k - i)
			it.Item.Priority = &p
			it.Resurfaced = true
		}
	}
}
