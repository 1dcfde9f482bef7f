package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/i474232898/weather-news-aggregation/internal/metrics"
	"github.com/i474232898/weather-news-aggregation/internal/pkg/log"
)

// DefaultAdapterTimeout bounds each adapter call.
const DefaultAdapterTimeout = 10 * time.Second

// FetchOutcome is what the orchestrator collected from one round of adapter calls.
type FetchOutcome struct {
	Items []Item
	Stats map[string]SourceStats
}

// Orchestrator calls adapters concurrently and contains their failures.
type Orchestrator struct {
	timeout time.Duration
}

// NewOrchestrator creates an Orchestrator. A non-positive timeout uses DefaultAdapterTimeout.
func NewOrchestrator(timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultAdapterTimeout
	}
	return &Orchestrator{timeout: timeout}
}

// FetchAll calls every adapter in its own goroutine and waits for all of them.
// A failing, panicking or timed-out adapter contributes no items and one error
// to its stats; it never affects the others. Every adapter gets a stats entry.
func (o *Orchestrator) FetchAll(ctx context.Context, adapters []Adapter, limit int) FetchOutcome {
	const op = "content/orchestrator/FetchAll"

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = FetchOutcome{Stats: make(map[string]SourceStats, len(adapters))}
	)

	lg := log.From(ctx)

	for _, a := range adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()

			items, err := o.call(ctx, a, limit)

			mu.Lock()
			defer mu.Unlock()

			st := out.Stats[a.Name()]
			if err != nil {
				st.Errors++
				out.Stats[a.Name()] = st
				metrics.AdapterFetches.WithLabelValues(a.Name(), metrics.OutcomeError).Inc()
				lg.Warn("adapter_fetch_failed",
					slog.String("op", op),
					slog.String("adapter", a.Name()),
					slog.String("err", err.Error()),
				)
				return
			}

			outcome := metrics.OutcomeOK
			if len(items) == 0 {
				outcome = metrics.OutcomeEmpty
			}
			metrics.AdapterFetches.WithLabelValues(a.Name(), outcome).Inc()

			for i := range items {
				items[i].Adapter = a.Name()
			}
			st.Fetched += len(items)
			out.Stats[a.Name()] = st
			out.Items = append(out.Items, items...)
		}()
	}

	wg.Wait()

	lg.Debug("adapters_settled",
		slog.String("op", op),
		slog.Int("adapters", len(adapters)),
		slog.Int("candidates", len(out.Items)),
	)
	return out
}

// call runs one adapter under the per-adapter timeout and turns a panic into an error.
// A hung adapter is abandoned once the timeout fires; its goroutine exits when Fetch returns.
func (o *Orchestrator) call(ctx context.Context, a Adapter, limit int) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type result struct {
		items []Item
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("adapter %s panicked: %v", a.Name(), r)}
			}
		}()
		items, err := a.Fetch(ctx, limit)
		done <- result{items: items, err: err}
	}()

	select {
	case res := <-done:
		return res.items, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("adapter %s: %w", a.Name(), ctx.Err())
	}
}
