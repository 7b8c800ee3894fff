package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"clipvault/internal/domain"
)

// Source is a tracked channel or feed. It is created on subscription and
// only mutated by the watcher (last-checked bump). Sources are never
// auto-deleted; removing one cascades to its items and their chunks.
type Source struct {
	ID            string
	Name          string
	FeedURL       string
	LastCheckedAt time.Time
	CreatedAt     time.Time
}

func NewSource(name, feedURL string) (*Source, error) {
	name = strings.TrimSpace(name)
	feedURL = strings.TrimSpace(feedURL)
	if name == "" || feedURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Source{
		ID:        uuid.NewString(),
		Name:      name,
		FeedURL:   feedURL,
		CreatedAt: time.Now().UTC(),
	}, nil
}
