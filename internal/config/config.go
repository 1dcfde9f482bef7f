package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-news-aggregation/internal/content"
	"github.com/i474232898/weather-news-aggregation/internal/content/sources"
)

type AppConfig struct {
	Env  string
	Port string

	// HTTPTimeout bounds every outbound provider request.
	HTTPTimeout time.Duration
	// AdapterTimeout bounds one adapter call including retries.
	AdapterTimeout time.Duration

	// Tiered cache capacity (entries).
	CacheCapacity int

	// WarmInterval controls how often the warm request is refreshed (0 = disabled).
	WarmInterval time.Duration
	WarmRequest  content.Request

	NWSArea     string
	UserAgent   string
	SWPCEnabled bool
	Feeds       []sources.FeedConfig
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Env = getenvDefault("ENV", "local")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.AdapterTimeout, err = getenvDuration("ADAPTER_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	cfg.CacheCapacity = getenvInt("CACHE_CAPACITY", 50)

	cfg.WarmRequest = content.Request{
		Categories: parseCategories(getenvDefault("WARM_CATEGORIES", "alerts,weather")),
	}.Normalize()
	if err := cfg.WarmRequest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid WARM_CATEGORIES: %w", err)
	}

	cfg.NWSArea = os.Getenv("NWS_AREA")
	cfg.UserAgent = getenvDefault("USER_AGENT", sources.DefaultUserAgent)
	cfg.SWPCEnabled = getenvBool("SWPC_ENABLED", true)

	feeds, err := parseFeeds(os.Getenv("RSS_FEEDS"))
	if err != nil {
		return nil, err
	}
	cfg.Feeds = feeds

	return cfg, nil
}

// parseFeeds reads "name|group|category|url" entries separated by ';'.
func parseFeeds(raw string) ([]sources.FeedConfig, error) {
	var feeds []sources.FeedConfig
	names := make(map[string]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid RSS_FEEDS entry %q: want name|group|category|url", entry)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		probe := content.Request{
			Categories: []content.Category{content.Category(parts[2])},
			Sources:    []content.SourceGroup{content.SourceGroup(parts[1])},
		}.Normalize()
		if err := probe.Validate(); err != nil {
			return nil, fmt.Errorf("invalid RSS_FEEDS entry %q: %w", entry, err)
		}

		feed := sources.FeedConfig{
			Name:     parts[0],
			Group:    probe.Sources[0],
			Category: probe.Categories[0],
			URL:      parts[3],
		}
		if feed.Name == "" {
			return nil, fmt.Errorf("invalid RSS_FEEDS entry %q: empty name", entry)
		}
		if prev, ok := names[feed.AdapterName()]; ok {
			return nil, fmt.Errorf("invalid RSS_FEEDS entry %q: name collides with %q", entry, prev)
		}
		names[feed.AdapterName()] = feed.Name
		feeds = append(feeds, feed)
	}
	return feeds, nil
}

func parseCategories(raw string) []content.Category {
	var cats []content.Category
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, content.Category(c))
		}
	}
	return cats
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
