package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultMaxItems    = 30
	DefaultMaxAgeHours = 72
)

// ErrInvalidRequest is returned when a request cannot select any content.
var ErrInvalidRequest = errors.New("invalid aggregation request")

var validate = validator.New()

// Request describes one aggregation call.
type Request struct {
	Categories     []Category    `json:"categories" validate:"required,min=1,dive,oneof=breaking weather severe local general space astronomy space-weather alerts climate"`
	PriorityFilter string        `json:"priorityFilter" validate:"oneof=all high medium low"`
	Sources        []SourceGroup `json:"sources" validate:"dive,oneof=official media community"`
	MaxItems       int           `json:"maxItems" validate:"gte=1,lte=500"`
	MaxAgeHours    int           `json:"maxAgeHours" validate:"gte=1,lte=720"`
}

// Normalize fills defaults, trims and lowercases tags, and sorts and
// deduplicates the category and source sets. Zero limits take their defaults;
// negative limits are left for Validate to reject.
func (r Request) Normalize() Request {
	out := Request{
		PriorityFilter: strings.ToLower(strings.TrimSpace(r.PriorityFilter)),
		MaxItems:       r.MaxItems,
		MaxAgeHours:    r.MaxAgeHours,
	}

	if len(r.Categories) == 0 {
		out.Categories = []Category{DefaultCategory}
	} else {
		seen := make(map[Category]struct{}, len(r.Categories))
		for _, c := range r.Categories {
			c = Category(strings.ToLower(strings.TrimSpace(string(c))))
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out.Categories = append(out.Categories, c)
		}
		sort.Slice(out.Categories, func(i, j int) bool { return out.Categories[i] < out.Categories[j] })
	}

	seen := make(map[SourceGroup]struct{}, len(r.Sources))
	for _, s := range r.Sources {
		s = SourceGroup(strings.ToLower(strings.TrimSpace(string(s))))
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out.Sources = append(out.Sources, s)
	}
	sort.Slice(out.Sources, func(i, j int) bool { return out.Sources[i] < out.Sources[j] })

	if out.PriorityFilter == "" {
		out.PriorityFilter = PriorityAll
	}
	if out.MaxItems == 0 {
		out.MaxItems = DefaultMaxItems
	}
	if out.MaxAgeHours == 0 {
		out.MaxAgeHours = DefaultMaxAgeHours
	}
	return out
}

// Validate checks a normalized request.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// CacheKey is a canonical serialization of a normalized request.
func (r Request) CacheKey() string {
	cats := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		cats[i] = string(c)
	}
	srcs := make([]string, len(r.Sources))
	for i, s := range r.Sources {
		srcs[i] = string(s)
	}
	return fmt.Sprintf("categories=%s|priority=%s|sources=%s|max=%d|age=%d",
		strings.Join(cats, ","), r.PriorityFilter, strings.Join(srcs, ","), r.MaxItems, r.MaxAgeHours)
}

// HasCategory reports whether the request includes any of cats.
func (r Request) HasCategory(cats ...Category) bool {
	for _, have := range r.Categories {
		for _, want := range cats {
			if have == want {
				return true
			}
		}
	}
	return false
}

// wantsGroup reports whether adapters in group g are selected. An empty
// source set selects every group.
func (r Request) wantsGroup(g SourceGroup) bool {
	if len(r.Sources) == 0 {
		return true
	}
	for _, s := range r.Sources {
		if s == g {
			return true
		}
	}
	return false
}

// TTLFor picks a cache lifetime from the category mix of a request.
// The first matching tier wins.
func TTLFor(r Request) time.Duration {
	switch {
	case r.HasCategory(CategoryAlerts, CategoryBreaking):
		return 5 * time.Minute
	case r.HasCategory(CategoryWeather, CategorySevere):
		return 10 * time.Minute
	case r.HasCategory(CategorySpace, CategoryAstronomy, CategorySpaceWeather):
		return 60 * time.Minute
	default:
		return 30 * time.Minute
	}
}
