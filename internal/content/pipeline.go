package content

import (
	"sort"
	"time"
)

// FilterByAge drops items published before now - maxAge.
func FilterByAge(items []Item, now time.Time, maxAge time.Duration) []Item {
	cutoff := now.Add(-maxAge)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// FilterByPriority keeps items at or above threshold. PriorityAll keeps everything.
func FilterByPriority(items []Item, threshold string) []Item {
	if threshold == "" || threshold == PriorityAll {
		return items
	}
	level := Priority(threshold).Level()
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Priority.Level() <= level {
			out = append(out, it)
		}
	}
	return out
}

// SortItems orders items high, medium, low and newest first within a priority.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		li, lj := items[i].Priority.Level(), items[j].Priority.Level()
		if li != lj {
			return li < lj
		}
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}

// Pipeline applies the age filter, priority filter, deduplication, sort and
// truncation, in that order.
type Pipeline struct {
	dedup *Deduplicator
}

// NewPipeline creates a Pipeline around a Deduplicator.
func NewPipeline(dedup *Deduplicator) *Pipeline {
	if dedup == nil {
		dedup = NewDeduplicator(nil)
	}
	return &Pipeline{dedup: dedup}
}

// Run filters, deduplicates, sorts and truncates candidates for req.
// req is expected to be normalized.
func (p *Pipeline) Run(candidates []Item, req Request, now time.Time) []Item {
	items := FilterByAge(candidates, now, time.Duration(req.MaxAgeHours)*time.Hour)
	items = FilterByPriority(items, req.PriorityFilter)
	items = p.dedup.Deduplicate(items)
	SortItems(items)

	if req.MaxItems > 0 && len(items) > req.MaxItems {
		items = items[:req.MaxItems]
	}
	return items
}
