package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-news-aggregation/internal/api/http"
	"github.com/i474232898/weather-news-aggregation/internal/config"
	"github.com/i474232898/weather-news-aggregation/internal/content"
	"github.com/i474232898/weather-news-aggregation/internal/content/sources"
	"github.com/i474232898/weather-news-aggregation/internal/pkg/log"
	"github.com/i474232898/weather-news-aggregation/internal/scheduler"
	"github.com/i474232898/weather-news-aggregation/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	lg := log.New(cfg.Env)
	slog.SetDefault(lg)

	// Shared HTTP client for outbound adapter calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Adapters with resilience (backoff + circuit breaker).
	var adapters []content.Adapter

	adapters = append(adapters, sources.NewNWSAlerts(httpClient, cfg.NWSArea, cfg.UserAgent))
	if cfg.SWPCEnabled {
		adapters = append(adapters, sources.NewSWPCAlerts(httpClient, cfg.UserAgent))
	}
	for _, feed := range cfg.Feeds {
		adapters = append(adapters, sources.NewRSSFeed(httpClient, feed, cfg.UserAgent))
	}

	// Core service: tiered cache in front of the adapters.
	cache := store.NewTieredCache(cfg.CacheCapacity, time.Now)
	service := content.NewService(cache, adapters, content.WithAdapterTimeout(cfg.AdapterTimeout))

	lg.Info("service_configured",
		slog.Int("adapters", len(adapters)),
		slog.Int("cache_capacity", cfg.CacheCapacity),
	)

	// Scheduler that keeps the default dashboard request warm.
	sched := scheduler.New(cfg.WarmRequest, cfg.WarmInterval, service, lg)
	if err := sched.Start(); err != nil {
		lg.Error("failed to start scheduler", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-news-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-news-aggregation",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service, lg)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", slog.String("err", err.Error()))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", slog.String("err", err.Error()))
	}
}
