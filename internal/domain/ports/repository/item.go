package repository

import (
	"context"
	"time"

	"clipvault/internal/domain/model"
)

type ItemRepository interface {
	// Insert registers a newly discovered item. A second sighting of the
	// same (source, external id) pair returns domain.ErrAlreadyExists.
	Insert(ctx context.Context, tx Tx, it *model.Item) error

	FindByID(ctx context.Context, tx Tx, id string) (*model.Item, error)
	ListBySource(ctx context.Context, tx Tx, sourceID string, limit, offset int) ([]*model.Item, error)

	// Claim conditionally transitions the item to processing. It succeeds
	// for exactly one concurrent caller; losers get domain.ErrClaimConflict.
	// An item is claimable from pending or failed (queue redelivery after a
	// crash may find either).
	Claim(ctx context.Context, tx Tx, id string) error

	// SetCompleted marks the item completed. Called inside the persist
	// transaction, never on its own.
	SetCompleted(ctx context.Context, tx Tx, id string) error

	// MarkFailed records a terminal-but-retryable failure with its reason.
	MarkFailed(ctx context.Context, tx Tx, id, reason string) error

	// ResetForRetry transitions failed -> pending. Returns
	// domain.ErrNotRetryable when the item is in any other state.
	ResetForRetry(ctx context.Context, tx Tx, id string) error

	// MarkEnqueued records a successful enqueue so the reconciliation
	// sweep can tell freshly enqueued items from orphaned ones.
	MarkEnqueued(ctx context.Context, tx Tx, id string, at time.Time) error

	// ListUnenqueuedPending returns pending items whose last enqueue marker
	// is absent or older than the cutoff. Input to the reconciliation sweep.
	ListUnenqueuedPending(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Item, error)

	Delete(ctx context.Context, tx Tx, id string) error
}
