// Package feed parses source feeds (RSS/Atom; YouTube channels publish Atom).
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"clipvault/internal/domain/ports/adapter"
)

var _ adapter.FeedFetcher = (*RSSFetcher)(nil)

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher(timeout time.Duration) *RSSFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p := gofeed.NewParser()
	p.UserAgent = "clipvault/1.0"
	p.Client = &http.Client{Timeout: timeout}
	return &RSSFetcher{parser: p}
}

func (f *RSSFetcher) FetchFeed(ctx context.Context, feedURL string) ([]adapter.FeedEntry, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	entries := make([]adapter.FeedEntry, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		externalID := it.GUID
		if externalID == "" {
			externalID = it.Link
		}
		if externalID == "" {
			continue
		}
		var published time.Time
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		}
		entries = append(entries, adapter.FeedEntry{
			ExternalID:  externalID,
			Title:       it.Title,
			URL:         it.Link,
			PublishedAt: published,
		})
	}
	return entries, nil
}
