package content

import (
	"time"
)

// Category is a content tag from a closed set.
type Category string

const (
	CategoryBreaking     Category = "breaking"
	CategoryWeather      Category = "weather"
	CategorySevere       Category = "severe"
	CategoryLocal        Category = "local"
	CategoryGeneral      Category = "general"
	CategorySpace        Category = "space"
	CategoryAstronomy    Category = "astronomy"
	CategorySpaceWeather Category = "space-weather"
	CategoryAlerts       Category = "alerts"
	CategoryClimate      Category = "climate"
)

// DefaultCategory is used when a request names no categories.
const DefaultCategory = CategoryGeneral

// Categories lists every known category.
var Categories = []Category{
	CategoryBreaking, CategoryWeather, CategorySevere, CategoryLocal, CategoryGeneral,
	CategorySpace, CategoryAstronomy, CategorySpaceWeather, CategoryAlerts, CategoryClimate,
}

// Priority is assigned by adapters from domain heuristics.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityAll disables the priority filter.
const PriorityAll = "all"

// Level orders priorities: high is 0, low is 2. Unknown values sort after low.
func (p Priority) Level() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// SourceGroup groups adapters so callers can request a subset of them.
type SourceGroup string

const (
	GroupOfficial  SourceGroup = "official"
	GroupMedia     SourceGroup = "media"
	GroupCommunity SourceGroup = "community"
)

// Item is one normalized piece of content from a source adapter.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Author      string    `json:"author,omitempty"`

	// Adapter is the name of the adapter that produced the item.
	Adapter string `json:"adapter,omitempty"`
}

// SourceStats is the per-adapter diagnostic record of one aggregation.
type SourceStats struct {
	Fetched  int `json:"fetched"`
	Included int `json:"included"`
	Errors   int `json:"errors"`
}

// Result is the envelope returned by Service.Aggregate.
type Result struct {
	Items         []Item                 `json:"items"`
	Stats         map[string]SourceStats `json:"stats"`
	TotalFetched  int                    `json:"totalFetched"`
	TotalIncluded int                    `json:"totalIncluded"`
	CacheHit      bool                   `json:"cacheHit"`
	FetchedAt     time.Time              `json:"fetchedAt"`
}

// Clone returns a copy that shares no slices or maps with r.
func (r Result) Clone() Result {
	out := r
	if r.Items != nil {
		out.Items = make([]Item, len(r.Items))
		copy(out.Items, r.Items)
	}
	if r.Stats != nil {
		out.Stats = make(map[string]SourceStats, len(r.Stats))
		for k, v := range r.Stats {
			out.Stats[k] = v
		}
	}
	return out
}
