package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcAdapter struct {
	name  string
	fetch func(ctx context.Context, limit int) ([]Item, error)
}

func (f funcAdapter) Name() string           { return f.name }
func (f funcAdapter) Group() SourceGroup     { return GroupMedia }
func (f funcAdapter) Categories() []Category { return []Category{CategoryGeneral} }
func (f funcAdapter) Fetch(ctx context.Context, limit int) ([]Item, error) {
	return f.fetch(ctx, limit)
}

func TestOrchestrator_WaitsForAllAndTagsItems(t *testing.T) {
	slow := funcAdapter{name: "slow", fetch: func(ctx context.Context, limit int) ([]Item, error) {
		time.Sleep(30 * time.Millisecond)
		return []Item{{ID: "s", Title: "Slow"}}, nil
	}}
	fast := funcAdapter{name: "fast", fetch: func(ctx context.Context, limit int) ([]Item, error) {
		return []Item{{ID: "f1", Title: "Fast one"}, {ID: "f2", Title: "Fast two"}}, nil
	}}
	broken := funcAdapter{name: "broken", fetch: func(ctx context.Context, limit int) ([]Item, error) {
		return nil, errors.New("malformed payload")
	}}

	out := NewOrchestrator(time.Second).FetchAll(context.Background(), []Adapter{slow, fast, broken}, 10)

	require.Len(t, out.Items, 3)
	for _, it := range out.Items {
		switch it.ID {
		case "s":
			assert.Equal(t, "slow", it.Adapter)
		default:
			assert.Equal(t, "fast", it.Adapter)
		}
	}
	assert.Equal(t, SourceStats{Fetched: 1}, out.Stats["slow"])
	assert.Equal(t, SourceStats{Fetched: 2}, out.Stats["fast"])
	assert.Equal(t, SourceStats{Errors: 1}, out.Stats["broken"])
}

func TestOrchestrator_PassesLimitAndTimeout(t *testing.T) {
	var gotLimit int
	var hadDeadline bool
	a := funcAdapter{name: "a", fetch: func(ctx context.Context, limit int) ([]Item, error) {
		gotLimit = limit
		_, hadDeadline = ctx.Deadline()
		return nil, nil
	}}

	out := NewOrchestrator(0).FetchAll(context.Background(), []Adapter{a}, 7)

	assert.Equal(t, 7, gotLimit)
	assert.True(t, hadDeadline)
	assert.Equal(t, SourceStats{}, out.Stats["a"])
	assert.Empty(t, out.Items)
}
