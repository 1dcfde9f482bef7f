package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-news-aggregation/internal/common"
	"github.com/i474232898/weather-news-aggregation/internal/content"
)

// SWPCSource is the display name of NOAA space weather bulletins.
const SWPCSource = "NOAA Space Weather Prediction Center"

const swpcTimeLayout = "2006-01-02 15:04:05.000"

// SWPCAlerts implements content.Adapter for NOAA SWPC alerts, watches and warnings.
// Bulletins have no per-item page, so items carry no URL and are matched by
// fingerprint and title only.
type SWPCAlerts struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSWPCAlerts(client *http.Client, userAgent string) *SWPCAlerts {
	return &SWPCAlerts{
		name:    "swpc-alerts",
		baseURL: "https://services.swpc.noaa.gov/products/alerts.json",
		httpCfg: defaultHTTPConfig(client, userAgent),
		circuit: newCircuit("swpc-alerts"),
	}
}

func (a *SWPCAlerts) Name() string {
	return a.name
}

func (a *SWPCAlerts) Group() content.SourceGroup {
	return content.GroupOfficial
}

func (a *SWPCAlerts) Categories() []content.Category {
	return []content.Category{content.CategorySpaceWeather, content.CategorySpace}
}

func (a *SWPCAlerts) Fetch(ctx context.Context, limit int) ([]content.Item, error) {
	resp, err := getWithResilience(ctx, a.httpCfg, a.circuit, a.baseURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		ProductID     string `json:"product_id"`
		IssueDatetime string `json:"issue_datetime"`
		Message       string `json:"message"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("swpc: decode: %w", err)
	}

	items := make([]content.Item, 0, len(payload))
	for _, p := range payload {
		ts, err := time.ParseInLocation(swpcTimeLayout, p.IssueDatetime, time.UTC)
		if err != nil {
			continue
		}

		headline, serial := parseSWPCMessage(p.Message)
		if headline == "" {
			continue
		}

		items = append(items, content.Item{
			ID:          p.ProductID + "-" + serial,
			Title:       headline,
			Source:      SWPCSource,
			Category:    content.CategorySpaceWeather,
			Priority:    mapSWPCHeadline(headline),
			Timestamp:   ts,
			Description: common.Truncate(strings.Join(strings.Fields(p.Message), " "), 300),
		})
	}

	// The feed lists oldest first.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return truncate(items, limit), nil
}

// parseSWPCMessage extracts the headline line (ALERT:, WARNING:, WATCH:, ...)
// and the serial number from a bulletin.
func parseSWPCMessage(msg string) (headline, serial string) {
	for _, line := range strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Serial Number:"):
			serial = strings.TrimSpace(strings.TrimPrefix(line, "Serial Number:"))
		case headline == "" && isSWPCHeadline(line):
			headline = line
		}
	}
	return headline, serial
}

func isSWPCHeadline(line string) bool {
	for _, p := range []string{"ALERT:", "WARNING:", "EXTENDED WARNING:", "WATCH:", "SUMMARY:", "CANCEL"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func mapSWPCHeadline(headline string) content.Priority {
	switch {
	case strings.HasPrefix(headline, "WARNING:"), strings.HasPrefix(headline, "EXTENDED WARNING:"), strings.HasPrefix(headline, "ALERT:"):
		return content.PriorityHigh
	case strings.HasPrefix(headline, "WATCH:"):
		return content.PriorityMedium
	default:
		return content.PriorityLow
	}
}
