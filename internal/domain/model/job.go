package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Job is a transient "process this item" work unit. It lives only on the
// queue; an unacknowledged job is redelivered after the visibility timeout.
type Job struct {
	ID         string
	ItemID     string
	EnqueuedAt time.Time
}

func NewJob(itemID string) Job {
	return Job{
		ID:         ulid.Make().String(),
		ItemID:     itemID,
		EnqueuedAt: time.Now().UTC(),
	}
}
