package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weather-news-aggregation/internal/metrics"
	"github.com/i474232898/weather-news-aggregation/internal/pkg/log"
)

// Service is the aggregation entry point: cache lookup, concurrent fetch,
// pipeline, cache store.
type Service struct {
	cache        Cache
	adapters     []Adapter
	orchestrator *Orchestrator
	pipeline     *Pipeline
	now          func() time.Time
	group        singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for age filtering and FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithAdapterTimeout bounds each adapter call.
func WithAdapterTimeout(d time.Duration) Option {
	return func(s *Service) { s.orchestrator = NewOrchestrator(d) }
}

// WithSourceRanks replaces the trust table used to resolve duplicates.
func WithSourceRanks(ranks SourceRanks) Option {
	return func(s *Service) { s.pipeline = NewPipeline(NewDeduplicator(ranks)) }
}

// NewService creates a new Service. cache may be nil, which disables caching.
func NewService(cache Cache, adapters []Adapter, opts ...Option) *Service {
	s := &Service{
		cache:        cache,
		adapters:     adapters,
		orchestrator: NewOrchestrator(DefaultAdapterTimeout),
		pipeline:     NewPipeline(nil),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Adapters returns the adapters req selects: group in req.Sources and at
// least one category shared with req.Categories.
func (s *Service) Adapters(req Request) []Adapter {
	var selected []Adapter
	for _, a := range s.adapters {
		if !req.wantsGroup(a.Group()) {
			continue
		}
		if req.HasCategory(a.Categories()...) {
			selected = append(selected, a)
		}
	}
	return selected
}

// Aggregate returns deduplicated, filtered, sorted content for req.
// Adapter failures only show up in Result.Stats; the returned error is
// non-nil only for an invalid request.
func (s *Service) Aggregate(ctx context.Context, req Request) (Result, error) {
	const op = "content/service/Aggregate"

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	key := req.CacheKey()
	lg := log.From(ctx).With(slog.String("op", op), slog.String("key", key))

	if res, ok := s.lookup(lg, key); ok {
		return res, nil
	}

	// Shared and cached: only the per-adapter timeout bounds the fetch.
	fetchCtx := context.WithoutCancel(ctx)
	v, _, shared := s.group.Do(key, func() (interface{}, error) {
		res := s.fetch(fetchCtx, req)
		s.store(lg, key, res, TTLFor(req))
		return res, nil
	})
	res := v.(Result)
	if shared {
		res = res.Clone()
	}
	return res, nil
}

func (s *Service) lookup(lg *slog.Logger, key string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}

	res, err := s.cache.Get(key)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		res.CacheHit = true
		return res, true
	case errors.Is(err, ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		lg.Warn("cache_get_failed", slog.String("err", err.Error()))
	}
	return Result{}, false
}

func (s *Service) store(lg *slog.Logger, key string, res Result, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(key, res, ttl); err != nil {
		lg.Warn("cache_set_failed", slog.String("err", err.Error()))
	}
}

func (s *Service) fetch(ctx context.Context, req Request) Result {
	start := time.Now()
	defer func() { metrics.AggregateDuration.Observe(time.Since(start).Seconds()) }()

	adapters := s.Adapters(req)
	fetched := s.orchestrator.FetchAll(ctx, adapters, req.MaxItems)

	now := s.now()
	items := s.pipeline.Run(fetched.Items, req, now)
	if items == nil {
		items = []Item{}
	}

	for _, it := range items {
		st := fetched.Stats[it.Adapter]
		st.Included++
		fetched.Stats[it.Adapter] = st
	}

	log.From(ctx).Info("aggregated",
		slog.String("op", "content/service/fetch"),
		slog.Int("adapters", len(adapters)),
		slog.Int("fetched", len(fetched.Items)),
		slog.Int("included", len(items)),
	)

	return Result{
		Items:         items,
		Stats:         fetched.Stats,
		TotalFetched:  len(fetched.Items),
		TotalIncluded: len(items),
		CacheHit:      false,
		FetchedAt:     now,
	}
}
