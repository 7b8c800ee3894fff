package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"clipvault/internal/domain"
)

type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusProcessing ItemStatus = "processing"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusFailed     ItemStatus = "failed"
)

// Item is one discovered unit of content (typically a single video).
// Status moves pending -> processing -> completed|failed; failed -> pending
// only via an explicit re-queue. The status column doubles as the
// distributed lock token for the claim step.
type Item struct {
	ID           string
	SourceID     string
	ExternalID   string // unique per source, e.g. the feed entry GUID
	Title        string
	URL          string
	PublishedAt  time.Time
	DiscoveredAt time.Time
	EnqueuedAt   *time.Time // last successful enqueue, nil before the first
	Status       ItemStatus
	FailReason   string
}

func NewItem(sourceID, externalID, title, url string, publishedAt time.Time) (*Item, error) {
	if strings.TrimSpace(sourceID) == "" || strings.TrimSpace(externalID) == "" || strings.TrimSpace(url) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Item{
		ID:           uuid.NewString(),
		SourceID:     sourceID,
		ExternalID:   externalID,
		Title:        title,
		URL:          url,
		PublishedAt:  publishedAt,
		DiscoveredAt: time.Now().UTC(),
		Status:       ItemStatusPending,
	}, nil
}

// Retryable reports whether an explicit re-queue may reset this item.
func (i *Item) Retryable() bool { return i.Status == ItemStatusFailed }
