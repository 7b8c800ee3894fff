package adapter

import (
	"context"
	"time"
)

// FeedEntry is one entry of a source feed as seen by the watcher.
type FeedEntry struct {
	ExternalID  string
	Title       string
	URL         string
	PublishedAt time.Time
}

// FeedFetcher retrieves and parses a source's feed.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) ([]FeedEntry, error)
}
