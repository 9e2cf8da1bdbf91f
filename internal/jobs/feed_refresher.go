package jobs

import (
	"context"
	"html"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"yuvai/internal/models"
)

// DefaultFeedInterval is used when no positive refresh interval is given.
const DefaultFeedInterval = 15 * time.Minute

const (
	feedTimeout    = 15 * time.Second
	itemsPerFeed   = 5
	maxBoardItems  = 12
	maxDescription = 200
)

// fallbackItem is shown while no feed has been fetched successfully.
var fallbackItem = models.NewsItem{
	Title:  "System Active",
	Desc:   "Connected to the verification server. Live headlines appear here once news feeds are configured.",
	Image:  "https://placehold.co/600x400/1e293b/white?text=YUVAi+Online",
	Type:   "System",
	Source: "Server",
	Date:   "Live",
}

// FeedRefresher keeps an in-memory board of recent headlines from RSS/Atom feeds.
type FeedRefresher struct {
	urls     []string
	interval time.Duration
	parser   *gofeed.Parser
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	items []models.NewsItem
}

// NewFeedRefresher creates a refresher for the given feed URLs. A non-positive
// interval falls back to DefaultFeedInterval.
func NewFeedRefresher(urls []string, interval time.Duration) *FeedRefresher {
	if interval <= 0 {
		interval = DefaultFeedInterval
	}
	return &FeedRefresher{
		urls:     urls,
		interval: interval,
		parser:   gofeed.NewParser(),
		policy:   bluemonday.StrictPolicy(),
	}
}

// Items returns a copy of the current board, or the fallback item when empty.
func (f *FeedRefresher) Items() []models.NewsItem {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.items) == 0 {
		return []models.NewsItem{fallbackItem}
	}
	out := make([]models.NewsItem, len(f.items))
	copy(out, f.items)
	return out
}

// Start begins the background refresh loop.
func (f *FeedRefresher) Start(ctx context.Context) {
	if len(f.urls) == 0 {
		log.Println("Feed refresher disabled (FEED_URLS not set)")
		return
	}
	log.Printf("Feed refresher started (%d feeds, interval: %v)", len(f.urls), f.interval)

	// Run immediately on start
	f.Refresh(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Feed refresher stopped")
			return
		case <-ticker.C:
			f.Refresh(ctx)
		}
	}
}

type datedItem struct {
	item      models.NewsItem
	published time.Time
}

// Refresh fetches every feed once. If all feeds fail the previous board is kept.
func (f *FeedRefresher) Refresh(ctx context.Context) {
	var collected []datedItem
	fetched := 0

	for _, url := range f.urls {
		select {
		case <-ctx.Done():
			return
		default:
		}

		feedCtx, cancel := context.WithTimeout(ctx, feedTimeout)
		feed, err := f.parser.ParseURLWithContext(url, feedCtx)
		cancel()
		if err != nil {
			log.Printf("Feed refresher: failed to fetch %s: %v", url, err)
			continue
		}
		fetched++

		for i, item := range feed.Items {
			if i == itemsPerFeed {
				break
			}
			collected = append(collected, f.convert(feed, item))
		}
	}

	if fetched == 0 {
		return
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].published.After(collected[j].published)
	})
	if len(collected) > maxBoardItems {
		collected = collected[:maxBoardItems]
	}

	items := make([]models.NewsItem, len(collected))
	for i, d := range collected {
		items[i] = d.item
	}

	f.mu.Lock()
	f.items = items
	f.mu.Unlock()

	log.Printf("Feed refresher: %d headlines from %d/%d feeds", len(items), fetched, len(f.urls))
}

func (f *FeedRefresher) convert(feed *gofeed.Feed, item *gofeed.Item) datedItem {
	d := datedItem{item: models.NewsItem{
		Title:  f.plain(item.Title),
		Desc:   truncate(f.plain(item.Description), maxDescription),
		Type:   "News",
		Source: feed.Title,
		Link:   item.Link,
		Date:   item.Published,
	}}

	if len(item.Categories) > 0 {
		d.item.Type = item.Categories[0]
	}

	switch {
	case item.Image != nil:
		d.item.Image = item.Image.URL
	case feed.Image != nil:
		d.item.Image = feed.Image.URL
	}
	for _, enc := range item.Enclosures {
		if d.item.Image == "" && strings.HasPrefix(enc.Type, "image/") {
			d.item.Image = enc.URL
		}
	}

	if item.PublishedParsed != nil {
		d.published = *item.PublishedParsed
		d.item.Date = d.published.Format("2006-01-02")
	}
	return d
}

// plain strips markup; templates escape the result again on output.
func (f *FeedRefresher) plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(s)))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}
