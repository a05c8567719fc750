// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Weights are the contributions of the six sub-scores to the total.
type Weights struct {
	Progress    float64 `json:"progress"`
	Preferences float64 `json:"preferences"`
	TimeSpent   float64 `json:"time_spent"`
	Completion  float64 `json:"completion"`
	Recency     float64 `json:"recency"`
	Relevance   float64 `json:"relevance"`
}

// scoringWeights are fixed; they sum to exactly 1.0.
var scoringWeights = Weights{
	Progress:    0.30,
	Preferences: 0.20,
	TimeSpent:   0.15,
	Completion:  0.15,
	Recency:     0.10,
	Relevance:   0.10,
}

// ScoringWeights returns the fixed scoring weights.
func ScoringWeights() Weights {
	return scoringWeights
}

// Sum returns the weights added in declaration order.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Sum() float64 {
	return w.Progress + w.Preferences + w.TimeSpent + w.Completion + w.Recency + w.Relevance
}

// Total combines a breakdown into a weighted score in [0,1].
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Total(b ScoreBreakdown) float64 {
	total := w.Progress*b.Progress +
		w.Preferences*b.Preferences +
		w.TimeSpent*b.TimeSpent +
		w.Completion*b.Completion +
		w.Recency*b.Recency +
		w.Relevance*b.Relevance
	return clamp01(total)
}

const (
	neutralScore         = 0.5
	completedScore       = 0.05
	resurfacedScore      = 0.5
	activeStageBase      = 0.7
	otherStageCeiling    = 0.6
	viewedRecencyCeiling = 0.5
)

// ScoringContext carries the per-cycle inputs shared by every item.
type ScoringContext struct {
	Profile      *UserProfile
	Progress     *ProgramProgress
	Interactions map[string]ContentInteraction
	Now          time.Time

	// tagsByID and secondsByID relate interactions to tag clusters.
	tagsByID    map[string][]string
	secondsByID map[string]int
}

// NewScoringContext prepares the scoring inputs. catalog lists every item
// known in this cycle and is used to relate interactions to tags.
func NewScoringContext(profile *UserProfile, progress *ProgramProgress, interactions map[string]ContentInteraction, catalog []ContentItem, now time.Time) *ScoringContext {
	sc := &ScoringContext{
		Profile:      profile,
		Progress:     progress,
		Interactions: interactions,
		Now:          now,
		tagsByID:     make(map[string][]string, len(catalog)),
		secondsByID:  make(map[string]int, len(interactions)),
	}
	for i := range catalog {
		if _, ok := sc.tagsByID[catalog[i].ID]; !ok {
			sc.tagsByID[catalog[i].ID] = normalizeTags(catalog[i].Tags)
		}
	}
	for id, in := range interactions {
		if in.TimeSpentSeconds > 0 {
			sc.secondsByID[id] += in.TimeSpentSeconds
		}
	}
	return sc
}

// Scorer computes multi-factor scores. It is stateless and safe for concurrent use.
type Scorer struct {
	weights Weights
	config  ScoringConfig
}

// NewScorer creates a scorer with the fixed weights and the given tuning.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{weights: scoringWeights, config: cfg}
}

// Score computes the breakdown and total for one item. The result is a
// pure function of its arguments.
func (s *Scorer) Score(item *ContentItem, resurfaced bool, sc *ScoringContext) ScoredContentItem {
	b := ScoreBreakdown{
		Progress:    s.progressScore(item, sc.Progress),
		Preferences: preferenceScore(item, sc.Profile),
		TimeSpent:   s.timeSpentScore(item, sc),
		Completion:  completionScore(item, sc.Interactions, resurfaced),
		Recency:     s.recencyScore(item, sc.Interactions, sc.Now),
		Relevance:   relevanceScore(item),
	}
	return ScoredContentItem{
		Item:       *item,
		Score:      s.weights.Total(b),
		Breakdown:  b,
		Resurfaced: resurfaced,
	}
}

// progressScore favors active-stage items, more so when the user is behind
// the expected completion for the stage.
func (s *Scorer) progressScore(item *ContentItem, progress *ProgramProgress) float64 {
	if progress == nil || item.StageIndex <= 0 || progress.CurrentStage <= 0 {
		return neutralScore
	}

	distance := item.StageIndex - progress.CurrentStage
	if distance < 0 {
		distance = -distance
	}
	if distance > 0 {
		return clamp01(otherStageCeiling / float64(1+distance))
	}

	expected := s.config.ExpectedCompletion
	behind := 0.0
	if expected > 0 {
		behind = clamp01((expected - progress.CompletionPercentage) / expected)
	}
	return clamp01(activeStageBase + (1-activeStageBase)*behind)
}

// preferenceScore is the share of the item's tags the user prefers.
func preferenceScore(item *ContentItem, profile *UserProfile) float64 {
	if profile == nil || len(item.Tags) == 0 || len(profile.Preferences) == 0 {
		return 0
	}
	prefs := make(map[string]struct{}, len(profile.Preferences))
	for _, p := range profile.Preferences {
		prefs[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}
	tags := normalizeTags(item.Tags)
	if len(tags) == 0 {
		return 0
	}
	matched := 0
	for _, t := range tags {
		if _, ok := prefs[t]; ok {
			matched++
		}
	}
	return clamp01(float64(matched) / float64(len(tags)))
}

// timeSpentScore sums engagement on the item and on every item sharing a
// tag with it, saturating at the configured ceiling.
func (s *Scorer) timeSpentScore(item *ContentItem, sc *ScoringContext) float64 {
	ceiling := s.config.TimeSpentCeiling.Seconds()
	if ceiling <= 0 || len(sc.secondsByID) == 0 {
		return 0
	}

	own := normalizeTags(item.Tags)
	total := sc.secondsByID[item.ID]
	for id, seconds := range sc.secondsByID {
		if id == item.ID {
			continue
		}
		if sharesTag(own, sc.tagsByID[id]) {
			total += seconds
		}
	}
	return clamp01(float64(total) / ceiling)
}

func completionScore(item *ContentItem, interactions map[string]ContentInteraction, resurfaced bool) float64 {
	completed := item.IsCompleted
	if in, ok := interactions[item.ID]; ok && in.Completed {
		completed = true
	}
	switch {
	case !completed:
		return 1
	case resurfaced:
		return resurfacedScore
	default:
		return completedScore
	}
}

// recencyScore is 1 for new or unseen items and halves every half-life
// after the last view, starting from viewedRecencyCeiling.
func (s *Scorer) recencyScore(item *ContentItem, interactions map[string]ContentInteraction, now time.Time) float64 {
	if item.IsNew {
		return 1
	}
	in, ok := interactions[item.ID]
	if !ok || (in.ViewCount == 0 && in.LastViewedAt.IsZero()) {
		return 1
	}
	if in.LastViewedAt.IsZero() {
		return viewedRecencyCeiling
	}

	halfLife := s.config.RecencyHalfLife
	if halfLife <= 0 {
		return viewedRecencyCeiling
	}
	age := now.Sub(in.LastViewedAt)
	if age < 0 {
		age = 0
	}
	decay := math.Exp2(-float64(age) / float64(halfLife))
	return clamp01(viewedRecencyCeiling * decay)
}

func relevanceScore(item *ContentItem) float64 {
	if item.Relevance == nil || math.IsNaN(*item.Relevance) {
		return neutralScore
	}
	return clamp01(*item.Relevance)
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// sharesTag reports whether two sorted tag lists intersect.
func sharesTag(a, b []string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
