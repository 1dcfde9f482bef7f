package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-news-aggregation/internal/common"
	"github.com/i474232898/weather-news-aggregation/internal/content"
)

// NWSSource is the display name of National Weather Service alerts.
const NWSSource = "National Weather Service"

// NWSAlerts implements content.Adapter for the api.weather.gov active alerts feed.
type NWSAlerts struct {
	name    string
	area    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewNWSAlerts creates an adapter for active alerts. An empty area fetches
// national alerts; otherwise area is a two-letter state or marine zone code.
func NewNWSAlerts(client *http.Client, area, userAgent string) *NWSAlerts {
	return &NWSAlerts{
		name:    "nws-alerts",
		area:    strings.ToUpper(strings.TrimSpace(area)),
		baseURL: "https://api.weather.gov/alerts/active",
		httpCfg: defaultHTTPConfig(client, userAgent),
		circuit: newCircuit("nws-alerts"),
	}
}

func (a *NWSAlerts) Name() string {
	return a.name
}

func (a *NWSAlerts) Group() content.SourceGroup {
	return content.GroupOfficial
}

func (a *NWSAlerts) Categories() []content.Category {
	return []content.Category{content.CategoryAlerts}
}

func (a *NWSAlerts) Fetch(ctx context.Context, limit int) ([]content.Item, error) {
	u := a.baseURL
	if a.area != "" {
		u += "?" + url.Values{"area": {a.area}}.Encode()
	}

	resp, err := getWithResilience(ctx, a.httpCfg, a.circuit, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Features []struct {
			ID         string `json:"id"`
			Properties struct {
				ID          string `json:"id"`
				Headline    string `json:"headline"`
				Event       string `json:"event"`
				Description string `json:"description"`
				Severity    string `json:"severity"`
				Sent        string `json:"sent"`
				SenderName  string `json:"senderName"`
			} `json:"properties"`
		} `json:"features"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("nws: decode: %w", err)
	}

	items := make([]content.Item, 0, len(payload.Features))
	for _, f := range payload.Features {
		p := f.Properties

		title := strings.TrimSpace(p.Headline)
		if title == "" {
			title = strings.TrimSpace(p.Event)
		}
		if title == "" {
			continue
		}

		ts, err := time.Parse(time.RFC3339, p.Sent)
		if err != nil {
			continue
		}

		id := p.ID
		if id == "" {
			id = f.ID
		}

		items = append(items, content.Item{
			ID:          id,
			Title:       title,
			URL:         f.ID,
			Source:      NWSSource,
			Category:    content.CategoryAlerts,
			Priority:    mapNWSSeverity(p.Severity),
			Timestamp:   ts.UTC(),
			Description: common.Truncate(strings.Join(strings.Fields(p.Description), " "), 300),
			Author:      p.SenderName,
		})
	}

	return truncate(items, limit), nil
}

func mapNWSSeverity(severity string) content.Priority {
	switch severity {
	case "Extreme", "Severe":
		return content.PriorityHigh
	case "Moderate":
		return content.PriorityMedium
	default:
		return content.PriorityLow
	}
}
