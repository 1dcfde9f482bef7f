package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-aggregation/internal/content"
)

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const nwsFixture = `{
  "features": [
    {
      "id": "https://api.weather.gov/alerts/urn:oid:1",
      "properties": {
        "id": "urn:oid:1",
        "headline": "Tornado Warning issued October 15 at 11:02AM CDT by NWS Tulsa OK",
        "event": "Tornado Warning",
        "description": "At 1102 AM CDT, a severe thunderstorm\ncapable of producing a tornado was located near Tulsa.",
        "severity": "Extreme",
        "sent": "2026-10-15T11:02:00-05:00",
        "senderName": "NWS Tulsa OK"
      }
    },
    {
      "id": "https://api.weather.gov/alerts/urn:oid:2",
      "properties": {
        "id": "urn:oid:2",
        "headline": "",
        "event": "Wind Advisory",
        "severity": "Moderate",
        "sent": "2026-10-15T09:00:00-05:00"
      }
    },
    {
      "id": "https://api.weather.gov/alerts/urn:oid:3",
      "properties": {
        "id": "urn:oid:3",
        "headline": "Special Weather Statement",
        "severity": "Minor",
        "sent": "not a time"
      }
    }
  ]
}`

func TestNWSAlerts_Fetch(t *testing.T) {
	var gotArea, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotArea = r.URL.Query().Get("area")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(nwsFixture))
	}))
	t.Cleanup(srv.Close)

	a := NewNWSAlerts(srv.Client(), "ok", "")
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, "OK", gotArea)
	assert.Equal(t, DefaultUserAgent, gotUA)

	// The third alert has an unparseable timestamp and is dropped.
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Contains(t, a.Categories(), it.Category)
	}

	first := items[0]
	assert.Equal(t, "urn:oid:1", first.ID)
	assert.Equal(t, "https://api.weather.gov/alerts/urn:oid:1", first.URL)
	assert.Equal(t, NWSSource, first.Source)
	assert.Equal(t, content.CategoryAlerts, first.Category)
	assert.Equal(t, content.PriorityHigh, first.Priority)
	assert.Equal(t, time.Date(2026, 10, 15, 16, 2, 0, 0, time.UTC), first.Timestamp)
	assert.NotContains(t, first.Description, "\n")
	assert.Equal(t, "NWS Tulsa OK", first.Author)

	assert.Equal(t, "Wind Advisory", items[1].Title)
	assert.Equal(t, content.PriorityMedium, items[1].Priority)

	limited, err := a.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestNWSAlerts_Metadata(t *testing.T) {
	a := NewNWSAlerts(http.DefaultClient, "", "")

	assert.Equal(t, "nws-alerts", a.Name())
	assert.Equal(t, content.GroupOfficial, a.Group())
	assert.Equal(t, []content.Category{content.CategoryAlerts}, a.Categories())
}

const swpcFixture = `[
  {"product_id": "K04A", "issue_datetime": "2026-10-15 08:00:00.000",
   "message": "Space Weather Message Code: ALTK04\r\nSerial Number: 2101\r\nIssue Time: 2026 Oct 15 0800 UTC\r\n\r\nALERT: Geomagnetic K-index of 4\r\nThreshold Reached: 2026 Oct 15 0759 UTC"},
  {"product_id": "A20F", "issue_datetime": "2026-10-15 10:30:00.000",
   "message": "Space Weather Message Code: WATA20\r\nSerial Number: 1022\r\n\r\nWATCH: Geomagnetic Storm Category G1 Predicted"},
  {"product_id": "XXXX", "issue_datetime": "2026-10-15 11:00:00.000",
   "message": "no recognizable headline"}
]`

func TestSWPCAlerts_Fetch(t *testing.T) {
	srv := serve(t, "application/json", swpcFixture)

	a := NewSWPCAlerts(srv.Client(), "")
	a.baseURL = srv.URL

	items, err := a.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first.
	assert.Equal(t, "A20F-1022", items[0].ID)
	assert.Equal(t, "WATCH: Geomagnetic Storm Category G1 Predicted", items[0].Title)
	assert.Equal(t, content.PriorityMedium, items[0].Priority)
	assert.Equal(t, time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC), items[0].Timestamp)

	assert.Equal(t, "K04A-2101", items[1].ID)
	assert.Equal(t, content.PriorityHigh, items[1].Priority)
	assert.Equal(t, content.CategorySpaceWeather, items[1].Category)
	assert.Empty(t, items[1].URL)
	assert.Equal(t, SWPCSource, items[1].Source)
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Weather News</title>
    <link>https://news.example.com</link>
    <item>
      <title>Tornado Warning for Tulsa County</title>
      <link>https://news.example.com/tornado?utm_source=rss</link>
      <guid>tornado-1</guid>
      <description><![CDATA[<p>Take <b>shelter</b> now.</p>]]></description>
      <pubDate>Thu, 15 Oct 2026 10:00:00 +0000</pubDate>
      <enclosure url="https://news.example.com/radar.jpg" type="image/jpeg" length="1000"/>
    </item>
    <item>
      <title>Flood watch continues along the river</title>
      <link>https://news.example.com/flood</link>
      <pubDate>Thu, 15 Oct 2026 09:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Undated item</title>
      <link>https://news.example.com/undated</link>
    </item>
    <item>
      <title></title>
      <link>https://news.example.com/untitled</link>
      <pubDate>Thu, 15 Oct 2026 08:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSFeed_Fetch(t *testing.T) {
	srv := serve(t, "application/rss+xml", rssFixture)

	f := NewRSSFeed(srv.Client(), FeedConfig{
		Name:     "Example News",
		Group:    content.GroupMedia,
		Category: content.CategoryWeather,
		URL:      srv.URL,
	}, "")

	assert.Equal(t, "rss-example-news", f.Name())
	assert.Equal(t, content.GroupMedia, f.Group())
	assert.Equal(t, []content.Category{content.CategoryWeather}, f.Categories())

	items, err := f.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "tornado-1", first.ID)
	assert.Equal(t, "Example News", first.Source)
	assert.Equal(t, content.PriorityHigh, first.Priority)
	assert.Equal(t, "Take shelter now.", first.Description)
	assert.Equal(t, "https://news.example.com/radar.jpg", first.ImageURL)
	assert.Equal(t, time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC), first.Timestamp)

	second := items[1]
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://news.example.com/flood")).String(), second.ID)
	assert.Equal(t, content.PriorityMedium, second.Priority)
}

func TestRSSFeed_ParseError(t *testing.T) {
	srv := serve(t, "text/plain", "this is not a feed")

	f := NewRSSFeed(srv.Client(), FeedConfig{Name: "Broken", Group: content.GroupMedia, Category: content.CategoryGeneral, URL: srv.URL}, "")
	_, err := f.Fetch(context.Background(), 10)
	require.Error(t, err)
}

func TestGetWithResilience_ServerErrorRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cfg := defaultHTTPConfig(srv.Client(), "")
	cfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

	_, err := getWithResilience(context.Background(), cfg, newCircuit("test"), srv.URL)
	require.ErrorIs(t, err, errServerError)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetWithResilience_StatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusTooManyRequests: errRateLimited,
		http.StatusNotFound:        errUnexpected,
	}

	for status, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		cfg := defaultHTTPConfig(srv.Client(), "")
		cfg.Backoff.MaxRetries = 0

		_, err := getWithResilience(context.Background(), cfg, newCircuit("test"), srv.URL)
		assert.True(t, errors.Is(err, want), "status %d: %v", status, err)
		srv.Close()
	}
}

func TestGetWithResilience_InvalidConfig(t *testing.T) {
	_, err := getWithResilience(context.Background(), HTTPClientConfig{}, newCircuit("test"), "http://unused")
	require.ErrorIs(t, err, errNoHTTPClient)

	cfg := defaultHTTPConfig(http.DefaultClient, "")
	cfg.Backoff.InitialInterval = 0
	_, err = getWithResilience(context.Background(), cfg, newCircuit("test"), "http://unused")
	require.ErrorIs(t, err, errInvalidConfig)
}

func TestKeywordPriority(t *testing.T) {
	assert.Equal(t, content.PriorityHigh, keywordPriority("BREAKING: Hurricane makes landfall"))
	assert.Equal(t, content.PriorityMedium, keywordPriority("Winter storm to bring snow"))
	assert.Equal(t, content.PriorityLow, keywordPriority("Autumn colors peak this weekend"))
}

func TestMapNWSSeverity(t *testing.T) {
	assert.Equal(t, content.PriorityHigh, mapNWSSeverity("Severe"))
	assert.Equal(t, content.PriorityMedium, mapNWSSeverity("Moderate"))
	assert.Equal(t, content.PriorityLow, mapNWSSeverity("Unknown"))
}

func TestFeedConfig_AdapterName(t *testing.T) {
	assert.Equal(t, "rss-bbc-news", FeedConfig{Name: "BBC News"}.AdapterName())
	assert.Equal(t, "rss-bbc-news", FeedConfig{Name: " bbc  news "}.AdapterName())
	assert.NotEqual(t, FeedConfig{Name: "BBC News"}.AdapterName(), FeedConfig{Name: "BBC Weather"}.AdapterName())
}
