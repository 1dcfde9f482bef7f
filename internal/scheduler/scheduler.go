package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-news-aggregation/internal/content"
	"github.com/i474232898/weather-news-aggregation/internal/pkg/log"
)

// Aggregator is the part of content.Service the scheduler needs.
type Aggregator interface {
	Aggregate(ctx context.Context, req content.Request) (content.Result, error)
}

// Scheduler periodically re-aggregates a request so the dashboard's default
// view is served from a warm cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Aggregator
	request   content.Request
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(request content.Request, interval time.Duration, service Aggregator, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		request:   request,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the warming job and starts the underlying scheduler.
// A non-positive interval leaves warming disabled.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("cache warming disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.Warm)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Warm runs one aggregation for the configured request.
func (s *Scheduler) Warm() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = log.Into(ctx, s.logger)

	res, err := s.service.Aggregate(ctx, s.request)
	if err != nil {
		s.logger.Warn("warm_failed", slog.String("err", err.Error()))
		return
	}
	s.logger.Debug("warm_completed",
		slog.Bool("cache_hit", res.CacheHit),
		slog.Int("items", len(res.Items)),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
