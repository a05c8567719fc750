// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"context"
	"time"
)

// Section names a bucket within a Stage.
type Section string

const (
	SectionRecommended Section = "recommended"
	SectionWeekFocus   Section = "weekFocus"
	SectionQuickHelp   Section = "quickHelp"
	SectionComingUp    Section = "comingUp"
)

// SectionOrder is the canonical order sections are walked in.
var SectionOrder = []Section{SectionRecommended, SectionWeekFocus, SectionQuickHelp, SectionComingUp}

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	switch s {
	case SectionRecommended, SectionWeekFocus, SectionQuickHelp, SectionComingUp:
		return true
	}
	return false
}

// ContentType classifies a content item.
type ContentType string

const (
	ContentMedicationGuide ContentType = "medication_guide"
	ContentUsageGuide      ContentType = "usage_guide"
	ContentSideEffect      ContentType = "side_effect"
	ContentConditionInfo   ContentType = "condition_info"
	ContentQuickTip        ContentType = "quick_tip"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentMedicationGuide, ContentUsageGuide, ContentSideEffect, ContentConditionInfo, ContentQuickTip:
		return true
	}
	return false
}

// Category returns the display category for the content type.
func (t ContentType) Category() string {
	switch t {
	case ContentMedicationGuide:
		return "medication"
	case ContentUsageGuide:
		return "how-to"
	case ContentSideEffect:
		return "side-effects"
	case ContentConditionInfo:
		return "condition"
	case ContentQuickTip:
		return "tips"
	default:
		return "general"
	}
}

// UserProfile is an immutable snapshot of the patient for one cycle.
type UserProfile struct {
	ID          string   `json:"id"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	Preferences []string `json:"preferences"`
}

// ProgramProgress is the patient's position within a program.
type ProgramProgress struct {
	UserID               string  `json:"user_id"`
	ProgramID            string  `json:"program_id"`
	CurrentStage         int     `json:"current_stage"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// ContentItem is one unit of educational content.
type ContentItem struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	ContentType        ContentType `json:"content_type"`
	ReadingTimeMinutes int         `json:"reading_time_minutes"`
	Tags               []string    `json:"tags,omitempty"`

	// Priority orders items within a section; lower is more important.
	Priority *int `json:"priority,omitempty"`

	IsCompleted bool `json:"is_completed"`
	IsNew       bool `json:"is_new"`

	// StageIndex is the stage the item belongs to. Zero means unknown.
	StageIndex int `json:"stage_index,omitempty"`

	// Relevance is the authoring-time relevance signal in [0,1].
	Relevance *float64 `json:"relevance,omitempty"`

	// Variants maps a variant key to a description template.
	Variants map[string]string `json:"variants,omitempty"`
}

// Clone returns a copy that shares no mutable state with c.
//
//nolint:gocritic // value receiver keeps call sites simple
func (c ContentItem) Clone() ContentItem {
	out := c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Priority != nil {
		p := *c.Priority
		out.Priority = &p
	}
	if c.Relevance != nil {
		r := *c.Relevance
		out.Relevance = &r
	}
	if c.Variants != nil {
		out.Variants = make(map[string]string, len(c.Variants))
		for k, v := range c.Variants {
			out.Variants[k] = v
		}
	}
	return out
}

// Stage is one step of a program with its sectioned base content.
type Stage struct {
	ProgramID string                    `json:"program_id"`
	Index     int                       `json:"index"`
	Title     string                    `json:"title"`
	Sections  map[Section][]ContentItem `json:"sections"`
}

// DefinedSections returns the sections present in the stage in canonical order.
func (s *Stage) DefinedSections() []Section {
	out := make([]Section, 0, len(s.Sections))
	for _, sec := range SectionOrder {
		if _, ok := s.Sections[sec]; ok {
			out = append(out, sec)
		}
	}
	return out
}

// Clone returns a deep copy of the stage.
func (s *Stage) Clone() *Stage {
	out := &Stage{
		ProgramID: s.ProgramID,
		Index:     s.Index,
		Title:     s.Title,
		Sections:  make(map[Section][]ContentItem, len(s.Sections)),
	}
	for sec, items := range s.Sections {
		list := make([]ContentItem, len(items))
		for i := range items {
			list[i] = items[i].Clone()
		}
		out.Sections[sec] = list
	}
	return out
}

// ContentInteraction is the telemetry record for one (user, program, content).
type ContentInteraction struct {
	UserID           string    `json:"user_id"`
	ProgramID        string    `json:"program_id"`
	ContentID        string    `json:"content_id"`
	ViewCount        int       `json:"view_count"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	Completed        bool      `json:"completed"`
	LastViewedAt     time.Time `json:"last_viewed_at"`
}

// Adjustments are the effects of a matched rule.
type Adjustments struct {
	AddContent []string          `json:"add_content,omitempty"`
	Modify     map[string]string `json:"modify,omitempty"`
	Prioritize []string          `json:"prioritize,omitempty"`
}

// PersonalizationRule pairs a condition with adjustments.
type PersonalizationRule struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Condition   Condition   `json:"condition"`
	Adjustments Adjustments `json:"adjustments"`
}

// ContentPlacement locates a content item within its program.
type ContentPlacement struct {
	Item       ContentItem `json:"item"`
	StageIndex int         `json:"stage_index"`
	Section    Section     `json:"section"`
}

// ScoreBreakdown holds the six sub-scores, each in [0,1].
type ScoreBreakdown struct {
	Progress    float64 `json:"progress"`
	Preferences float64 `json:"preferences"`
	TimeSpent   float64 `json:"time_spent"`
	Completion  float64 `json:"completion"`
	Recency     float64 `json:"recency"`
	Relevance   float64 `json:"relevance"`
}

// ScoredContentItem is a content item with its total score and breakdown.
type ScoredContentItem struct {
	Item      ContentItem    `json:"item"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`

	// Resurfaced is set when a prioritize adjustment promoted the item.
	Resurfaced bool `json:"resurfaced,omitempty"`
}

// Options are the caller-supplied request options.
type Options struct {
	ForceRefresh     bool            `json:"force_refresh"`
	ExcludeCompleted bool            `json:"exclude_completed"`
	SectionCaps      map[Section]int `json:"section_caps,omitempty"`

	// Now is the reference time for recency decay. Zero means the engine clock.
	Now time.Time `json:"-"`
}

// ContentSummary is the display-ready view of a content item.
type ContentSummary struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	ContentType        ContentType `json:"contentType"`
	ReadingTimeMinutes int         `json:"readingTimeMinutes"`
	Category           string      `json:"category"`
	IsCompleted        bool        `json:"isCompleted"`
	IsNew              bool        `json:"isNew"`
}

// PersonalizedContent is the section-keyed result handed to the display surface.
type PersonalizedContent struct {
	UserID       string                      `json:"userId"`
	ProgramID    string                      `json:"programId"`
	StageIndex   int                         `json:"stageIndex"`
	StageTitle   string                      `json:"stageTitle"`
	Sections     map[string][]ContentSummary `json:"sections"`
	Personalized bool                        `json:"personalized"`
	Fallback     bool                        `json:"fallback"`
	GeneratedAt  time.Time                   `json:"generatedAt"`
}

// SectionIDs returns the content ids of a section in order.
func (p *PersonalizedContent) SectionIDs(section Section) []string {
	items := p.Sections[string(section)]
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

// ProfileService supplies user profiles.
type ProfileService interface {
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// ProgressService supplies program progress.
type ProgressService interface {
	GetProgramProgress(ctx context.Context, userID, programID string) (*ProgramProgress, error)
}

// InteractionService supplies content interactions keyed by content id.
type InteractionService interface {
	GetContentInteractions(ctx context.Context, userID, programID string) (map[string]ContentInteraction, error)
}

// ContentRepository supplies authored content.
type ContentRepository interface {
	// GetStageContent returns the base, unpersonalized content for a stage.
	GetStageContent(ctx context.Context, programID string, stageIndex int) (*Stage, error)

	// LookupContent resolves content ids to their placement in the program.
	// Unknown ids are absent from the result.
	LookupContent(ctx context.Context, programID string, ids []string) (map[string]ContentPlacement, error)
}

// RuleRepository supplies the ordered personalization rules of a program.
type RuleRepository interface {
	GetPersonalizationRules(ctx context.Context, programID string) ([]PersonalizationRule, error)
}

// TelemetryWriter records content completions.
type TelemetryWriter interface {
	RecordContentCompletion(ctx context.Context, userID, programID, contentID string) error
}

// DefaultContentProvider supplies the static fallback stage of a program.
type DefaultContentProvider interface {
	DefaultStage(programID string, stageIndex int) (*Stage, bool)
}

// CompletionNotifier is told about successful completions.
type CompletionNotifier interface {
	ContentCompleted(ctx context.Context, userID, programID, contentID string) error
}

// Dependencies bundles the collaborators an Engine is constructed with.
type Dependencies struct {
	Profiles     ProfileService
	Progress     ProgressService
	Interactions InteractionService
	Content      ContentRepository
	Rules        RuleRepository
	Telemetry    TelemetryWriter
	Defaults     DefaultContentProvider

	// Notifier is optional.
	Notifier CompletionNotifier
}

// Metrics is a snapshot of engine counters.
type Metrics struct {
	RequestCount     int64 `json:"request_count"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	Computations     int64 `json:"computations"`
	SharedFlights    int64 `json:"shared_flights"`
	Fallbacks        int64 `json:"fallbacks"`
	RuleErrors       int64 `json:"rule_errors"`
	CacheWriteErrors int64 `json:"cache_write_errors"`
	CompletionErrors int64 `json:"completion_errors"`
	Invalidations    int64 `json:"invalidations"`
}
