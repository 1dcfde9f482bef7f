package content

import (
	"strings"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

const (
	fingerprintChars  = 200
	titleChars        = 60
	minWordLen        = 4
	titleOverlapRatio = 0.70
	fuzzyWindow       = 2 * time.Hour
)

// NormalizeURL strips the query string, fragment and trailing slashes from
// the trimmed URL. Everything before them is kept byte for byte, case included.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}

// Fingerprint hashes the first 200 characters of title + " " + description.
func Fingerprint(title, description string) uint64 {
	text := []rune(title + " " + description)
	if len(text) > fingerprintChars {
		text = text[:fingerprintChars]
	}
	return xxhash.Sum64String(string(text))
}

// NormalizeTitle lowercases, strips punctuation, collapses whitespace and
// truncates to 60 characters.
func NormalizeTitle(title string) string {
	var b strings.Builder
	space := false
	for _, r := range norm.NFKC.String(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			space = true
		}
	}

	out := []rune(b.String())
	if len(out) > titleChars {
		out = out[:titleChars]
	}
	return strings.TrimSpace(string(out))
}

// TitleWords returns the set of words longer than three characters in a normalized title.
func TitleWords(normalized string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) >= minWordLen {
			words[w] = struct{}{}
		}
	}
	return words
}

// TitleOverlap returns |A∩B| / max(|A|,|B|) over the title word sets of a and b.
func TitleOverlap(a, b string) float64 {
	wa := TitleWords(NormalizeTitle(a))
	wb := TitleWords(NormalizeTitle(b))
	return overlap(wa, wb)
}

func overlap(a, b map[string]struct{}) float64 {
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	if larger == 0 {
		return 0
	}

	common := 0
	for w := range a {
		if _, ok := b[w]; ok {
			common++
		}
	}
	return float64(common) / float64(larger)
}

// SameStory reports whether two items have overlapping titles and were
// published within two hours of each other.
func SameStory(a, b Item) bool {
	if absDuration(a.Timestamp.Sub(b.Timestamp)) > fuzzyWindow {
		return false
	}
	return TitleOverlap(a.Title, b.Title) >= titleOverlapRatio
}

// IsAlert reports whether an item belongs to the alerts partition.
func IsAlert(it Item) bool {
	return it.Category == CategoryAlerts
}

// Deduplicator collapses items describing the same real-world event.
type Deduplicator struct {
	ranks SourceRanks
}

// NewDeduplicator creates a Deduplicator. A nil ranks table uses DefaultSourceRanks.
func NewDeduplicator(ranks SourceRanks) *Deduplicator {
	if ranks == nil {
		ranks = DefaultSourceRanks()
	}
	return &Deduplicator{ranks: ranks}
}

// Deduplicate partitions items into alerts and articles, collapses duplicates
// within each partition, and returns alerts followed by articles. Input order
// is otherwise preserved, with a winning duplicate taking its loser's slot.
func (d *Deduplicator) Deduplicate(items []Item) []Item {
	var alerts, articles []Item
	for _, it := range items {
		if IsAlert(it) {
			alerts = append(alerts, it)
		} else {
			articles = append(articles, it)
		}
	}

	out := make([]Item, 0, len(items))
	out = append(out, d.collapse(alerts)...)
	out = append(out, d.collapse(articles)...)
	return out
}

// collapse repeats single passes until nothing merges, so its output is a fixed point.
func (d *Deduplicator) collapse(items []Item) []Item {
	for {
		next := d.pass(items)
		if len(next) == len(items) {
			return next
		}
		items = next
	}
}

type keptItem struct {
	item  Item
	words map[string]struct{}
}

func (d *Deduplicator) pass(items []Item) []Item {
	var (
		kept   []keptItem
		byURL  = make(map[string]int)
		byHash = make(map[uint64]int)
	)

	for _, it := range items {
		u := NormalizeURL(it.URL)
		fp := Fingerprint(it.Title, it.Description)
		words := TitleWords(NormalizeTitle(it.Title))

		idx := -1
		if u != "" {
			if i, ok := byURL[u]; ok {
				idx = i
			}
		}
		if idx < 0 {
			if i, ok := byHash[fp]; ok {
				idx = i
			}
		}
		if idx < 0 {
			for i, k := range kept {
				if absDuration(it.Timestamp.Sub(k.item.Timestamp)) > fuzzyWindow {
					continue
				}
				if overlap(words, k.words) >= titleOverlapRatio {
					idx = i
					break
				}
			}
		}

		if idx < 0 {
			idx = len(kept)
			kept = append(kept, keptItem{item: it, words: words})
		} else if d.prefer(it, kept[idx].item) {
			kept[idx] = keptItem{item: it, words: words}
		}

		if u != "" {
			byURL[u] = idx
		}
		byHash[fp] = idx
	}

	out := make([]Item, len(kept))
	for i, k := range kept {
		out[i] = k.item
	}
	return out
}

// prefer reports whether candidate should replace current: higher source
// rank wins, then the later timestamp.
func (d *Deduplicator) prefer(candidate, current Item) bool {
	rc, rk := d.ranks.Rank(candidate.Source), d.ranks.Rank(current.Source)
	if rc != rk {
		return rc > rk
	}
	return candidate.Timestamp.After(current.Timestamp)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
