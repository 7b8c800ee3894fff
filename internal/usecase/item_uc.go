package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/queue"
	"clipvault/internal/domain/ports/repository"
)

// ItemUseCase exposes item status for display plus the explicit actions a
// user can take: register a one-off video, retry a failed item, delete.
type ItemUseCase interface {
	Get(ctx context.Context, id string) (*model.Item, error)
	ListBySource(ctx context.Context, sourceID string, limit, offset int) ([]*model.Item, error)

	// Register inserts a directly submitted video and enqueues it; it joins
	// the same pipeline as feed-discovered items.
	Register(ctx context.Context, sourceID, url, title string) (*model.Item, error)

	// Retry resets a failed item to pending and re-enqueues it. Returns
	// domain.ErrNotRetryable unless the item is failed.
	Retry(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error
}

type itemUC struct {
	items repository.ItemRepository
	jobs  queue.JobQueue
	log   *zerolog.Logger
}

func NewItemUseCase(items repository.ItemRepository, jobs queue.JobQueue, log *zerolog.Logger) ItemUseCase {
	return &itemUC{items: items, jobs: jobs, log: log}
}

func (u *itemUC) Get(ctx context.Context, id string) (*model.Item, error) {
	return u.items.FindByID(ctx, nil, id)
}

func (u *itemUC) ListBySource(ctx context.Context, sourceID string, limit, offset int) ([]*model.Item, error) {
	return u.items.ListBySource(ctx, nil, sourceID, limit, offset)
}

func (u *itemUC) Register(ctx context.Context, sourceID, url, title string) (*model.Item, error) {
	// Direct submissions use the URL as external id; re-submitting the same
	// URL is a no-op at the registry level.
	it, err := model.NewItem(sourceID, url, title, url, time.Time{})
	if err != nil {
		return nil, err
	}
	if err := u.items.Insert(ctx, nil, it); err != nil {
		return nil, err
	}
	u.enqueue(ctx, it.ID)
	return it, nil
}

func (u *itemUC) Retry(ctx context.Context, id string) error {
	if err := u.items.ResetForRetry(ctx, nil, id); err != nil {
		return err
	}
	u.enqueue(ctx, id)
	u.log.Info().Str("item_id", id).Msg("failed item re-queued")
	return nil
}

func (u *itemUC) Delete(ctx context.Context, id string) error {
	return u.items.Delete(ctx, nil, id)
}

// enqueue is best-effort: a pending item whose enqueue was lost is picked
// up by the reconciliation sweep.
func (u *itemUC) enqueue(ctx context.Context, itemID string) {
	if err := u.jobs.Enqueue(ctx, model.NewJob(itemID)); err != nil {
		u.log.Error().Err(err).Str("item_id", itemID).Msg("enqueue failed; sweep will retry")
		return
	}
	if err := u.items.MarkEnqueued(ctx, nil, itemID, time.Now().UTC()); err != nil {
		u.log.Warn().Err(err).Str("item_id", itemID).Msg("enqueue marker update failed")
	}
}
