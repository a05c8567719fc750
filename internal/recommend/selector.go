// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import "sort"

// Select de-duplicates, filters, orders, and caps scored items per section.
//
// Ordering within a section: items with an explicit priority come first,
// by priority ascending and then score descending; the rest follow by
// score descending. Remaining ties keep their input order.
//
//nolint:gocritic // opts passed by value for immutability
func Select(scored map[Section][]ScoredContentItem, opts Options) map[Section][]ScoredContentItem {
	keep := dedupeWinners(scored)

	out := make(map[Section][]ScoredContentItem, len(scored))
	for _, sec := range SectionOrder {
		items, ok := scored[sec]
		if !ok {
			continue
		}

		selected := make([]ScoredContentItem, 0, len(items))
		for i := range items {
			if keep[items[i].Item.ID] != occurrence(sec, i) {
				continue
			}
			if opts.ExcludeCompleted && items[i].Item.IsCompleted {
				continue
			}
			selected = append(selected, items[i])
		}

		sort.SliceStable(selected, func(i, j int) bool {
			return rankBefore(&selected[i], &selected[j])
		})

		if limit, ok := opts.SectionCaps[sec]; ok && limit > 0 && len(selected) > limit {
			selected = selected[:limit]
		}
		out[sec] = selected
	}
	return out
}

type occurrenceRef struct {
	section Section
	index   int
}

func occurrence(sec Section, i int) occurrenceRef {
	return occurrenceRef{section: sec, index: i}
}

// dedupeWinners picks, for every content id, the highest-scoring occurrence.
// Equal scores keep the earliest occurrence in canonical section order.
func dedupeWinners(scored map[Section][]ScoredContentItem) map[string]occurrenceRef {
	best := make(map[string]occurrenceRef)
	bestScore := make(map[string]float64)
	for _, sec := range SectionOrder {
		items := scored[sec]
		for i := range items {
			id := items[i].Item.ID
			if prev, ok := bestScore[id]; ok && items[i].Score <= prev {
				continue
			}
			best[id] = occurrence(sec, i)
			bestScore[id] = items[i].Score
		}
	}
	return best
}

func rankBefore(a, b *ScoredContentItem) bool {
	ap, bp := a.Item.Priority, b.Item.Priority
	switch {
	case ap != nil && bp == nil:
		return true
	case ap == nil && bp != nil:
		return false
	case ap != nil && bp != nil && *ap != *bp:
		return *ap < *bp
	default:
		return a.Score > b.Score
	}
}
