package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-news-aggregation/internal/common"
	"github.com/i474232898/weather-news-aggregation/internal/content"
)

// FeedConfig describes one RSS or Atom feed.
type FeedConfig struct {
	Name     string
	Group    content.SourceGroup
	Category content.Category
	URL      string
}

// AdapterName is the adapter name derived from the feed name. Distinct
// feeds must have distinct adapter names, since stats are keyed by them.
func (c FeedConfig) AdapterName() string {
	return "rss-" + strings.ToLower(strings.Join(strings.Fields(c.Name), "-"))
}

// RSSFeed implements content.Adapter for a single RSS or Atom feed. Item
// priority comes from headline keywords.
type RSSFeed struct {
	feed    FeedConfig
	parser  *gofeed.Parser
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewRSSFeed(client *http.Client, feed FeedConfig, userAgent string) *RSSFeed {
	return &RSSFeed{
		feed:    feed,
		parser:  gofeed.NewParser(),
		httpCfg: defaultHTTPConfig(client, userAgent),
		circuit: newCircuit(feed.AdapterName()),
	}
}

func (f *RSSFeed) Name() string {
	return f.feed.AdapterName()
}

func (f *RSSFeed) Group() content.SourceGroup {
	return f.feed.Group
}

func (f *RSSFeed) Categories() []content.Category {
	return []content.Category{f.feed.Category}
}

func (f *RSSFeed) Fetch(ctx context.Context, limit int) ([]content.Item, error) {
	resp, err := getWithResilience(ctx, f.httpCfg, f.circuit, f.feed.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rss %s: parse: %w", f.feed.Name, err)
	}

	items := make([]content.Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}

		ts, ok := itemTime(it)
		if !ok {
			continue
		}

		desc := it.Description
		if desc == "" {
			desc = it.Content
		}

		items = append(items, content.Item{
			ID:          itemID(it),
			Title:       title,
			URL:         strings.TrimSpace(it.Link),
			Source:      f.feed.Name,
			Category:    f.feed.Category,
			Priority:    keywordPriority(title),
			Timestamp:   ts,
			Description: common.Truncate(common.StripHTML(desc), 300),
			ImageURL:    itemImage(it),
			Author:      itemAuthor(it),
		})
	}

	return truncate(items, limit), nil
}

func itemTime(it *gofeed.Item) (time.Time, bool) {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC(), true
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC(), true
	default:
		return time.Time{}, false
	}
}

// itemID prefers the feed GUID and falls back to a name-based UUID of the link.
func itemID(it *gofeed.Item) string {
	if id := strings.TrimSpace(it.GUID); id != "" {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(it.Link)).String()
}

func itemImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, e := range it.Enclosures {
		if e != nil && strings.HasPrefix(e.Type, "image/") {
			return e.URL
		}
	}
	return ""
}

func itemAuthor(it *gofeed.Item) string {
	for _, a := range it.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}
