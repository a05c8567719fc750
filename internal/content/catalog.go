// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package content

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/careguide/internal/recommend"
)

// Program is an authored care program.
type Program struct {
	ID     string                          `json:"id"`
	Title  string                          `json:"title"`
	Stages []recommend.Stage               `json:"stages"`
	Rules  []recommend.PersonalizationRule `json:"rules,omitempty"`
}

// Catalog is an immutable set of programs. It is safe for concurrent use.
type Catalog struct {
	programs map[string]*Program
}

// NewCatalog creates a catalog from programs. Stage indexes and program ids
// are filled in on every stage so callers need not repeat them.
func NewCatalog(programs ...Program) *Catalog {
	c := &Catalog{programs: make(map[string]*Program, len(programs))}
	for i := range programs {
		p := programs[i]
		stages := make([]recommend.Stage, len(p.Stages))
		for j := range p.Stages {
			st := p.Stages[j].Clone()
			st.ProgramID = p.ID
			st.Index = j + 1
			for sec, items := range st.Sections {
				for k := range items {
					if items[k].StageIndex == 0 {
						items[k].StageIndex = st.Index
					}
				}
				st.Sections[sec] = items
			}
			stages[j] = *st
		}
		p.Stages = stages
		p.Rules = append([]recommend.PersonalizationRule(nil), p.Rules...)
		c.programs[p.ID] = &p
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return NewCatalog(WeightLoss())
}

// ProgramIDs returns the ids of all programs, sorted.
func (c *Catalog) ProgramIDs() []string {
	ids := make([]string, 0, len(c.programs))
	for id := range c.programs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Program returns the program with the given id.
func (c *Catalog) Program(id string) (*Program, bool) {
	p, ok := c.programs[id]
	return p, ok
}

// Stage returns a copy of a stage by its 1-based index.
func (c *Catalog) Stage(programID string, stageIndex int) (*recommend.Stage, bool) {
	p, ok := c.programs[programID]
	if !ok || stageIndex < 1 || stageIndex > len(p.Stages) {
		return nil, false
	}
	return p.Stages[stageIndex-1].Clone(), true
}

// DefaultStage implements recommend.DefaultContentProvider. An index past
// the last stage resolves to the last stage.
func (c *Catalog) DefaultStage(programID string, stageIndex int) (*recommend.Stage, bool) {
	p, ok := c.programs[programID]
	if !ok || len(p.Stages) == 0 {
		return nil, false
	}
	if stageIndex < 1 {
		stageIndex = 1
	}
	if stageIndex > len(p.Stages) {
		stageIndex = len(p.Stages)
	}
	return p.Stages[stageIndex-1].Clone(), true
}

// GetStageContent implements recommend.ContentRepository.
func (c *Catalog) GetStageContent(_ context.Context, programID string, stageIndex int) (*recommend.Stage, error) {
	st, ok := c.Stage(programID, stageIndex)
	if !ok {
		return nil, fmt.Errorf("stage %d of program %q: %w", stageIndex, programID, recommend.ErrNotFound)
	}
	return st, nil
}

// LookupContent implements recommend.ContentRepository. An id that appears
// in several stages resolves to its earliest occurrence.
func (c *Catalog) LookupContent(_ context.Context, programID string, ids []string) (map[string]recommend.ContentPlacement, error) {
	p, ok := c.programs[programID]
	if !ok {
		return nil, fmt.Errorf("program %q: %w", programID, recommend.ErrNotFound)
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	out := make(map[string]recommend.ContentPlacement, len(ids))
	for i := range p.Stages {
		st := &p.Stages[i]
		for _, sec := range st.DefinedSections() {
			for _, item := range st.Sections[sec] {
				if _, ok := want[item.ID]; !ok {
					continue
				}
				if _, seen := out[item.ID]; seen {
					continue
				}
				out[item.ID] = recommend.ContentPlacement{
					Item:       item.Clone(),
					StageIndex: st.Index,
					Section:    sec,
				}
			}
		}
	}
	return out, nil
}

// GetPersonalizationRules implements recommend.RuleRepository. Unknown
// programs have no rules.
func (c *Catalog) GetPersonalizationRules(_ context.Context, programID string) ([]recommend.PersonalizationRule, error) {
	p, ok := c.programs[programID]
	if !ok {
		return nil, nil
	}
	return append([]recommend.PersonalizationRule(nil), p.Rules...), nil
}
