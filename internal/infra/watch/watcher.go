// Package watch polls tracked sources, registers newly discovered items
// and keeps the queue fed.
package watch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/adapter"
	"clipvault/internal/domain/ports/queue"
	"clipvault/internal/domain/ports/repository"
	"clipvault/internal/infra/logging"
	"clipvault/internal/infra/metrics"
)

// Watcher runs the discovery loop. Feed failures are logged and retried
// next cycle, never fatal to the loop.
type Watcher struct {
	sources  repository.SourceRepository
	items    repository.ItemRepository
	jobs     queue.JobQueue
	feeds    adapter.FeedFetcher
	interval time.Duration
	log      *zerolog.Logger
}

func NewWatcher(
	sources repository.SourceRepository,
	items repository.ItemRepository,
	jobs queue.JobQueue,
	feeds adapter.FeedFetcher,
	interval time.Duration,
	log *zerolog.Logger,
) *Watcher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Watcher{
		sources:  sources,
		items:    items,
		jobs:     jobs,
		feeds:    feeds,
		interval: interval,
		log:      log,
	}
}

func (w *Watcher) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("source watcher started")
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("source watcher stopping")
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	sources, err := w.sources.ListAll(ctx, nil)
	if err != nil {
		w.log.Error().Err(err).Msg("watcher: list sources failed")
		return
	}
	for _, src := range sources {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.Poll(ctx, src); err != nil {
			w.log.Warn().Err(err).Str("source_id", src.ID).Msg("watcher: poll failed")
		}
	}
}

// Poll fetches one source's feed, inserts unseen entries as pending items
// and enqueues one job per new item. Re-discovery of a known entry is a
// no-op. Returns the newly registered items.
func (w *Watcher) Poll(ctx context.Context, src *model.Source) ([]*model.Item, error) {
	ctx = logging.WithSourceID(ctx, src.ID)
	log := logging.With(ctx, w.log)

	entries, err := w.feeds.FetchFeed(ctx, src.FeedURL)
	if err != nil {
		return nil, err
	}

	var discovered []*model.Item
	for _, e := range entries {
		it, err := model.NewItem(src.ID, e.ExternalID, e.Title, e.URL, e.PublishedAt)
		if err != nil {
			log.Warn().Str("external_id", e.ExternalID).Msg("watcher: skipping malformed entry")
			continue
		}
		if err := w.items.Insert(ctx, nil, it); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return discovered, err
		}
		discovered = append(discovered, it)
		w.enqueue(ctx, it.ID)
	}

	if err := w.sources.UpdateLastChecked(ctx, nil, src.ID, time.Now().UTC()); err != nil {
		log.Warn().Err(err).Msg("watcher: last-checked update failed")
	}
	if len(discovered) > 0 {
		metrics.IncItemsDiscovered(len(discovered))
		log.Info().Int("count", len(discovered)).Msg("new items discovered")
	}
	return discovered, nil
}

// enqueue is best-effort: a crash between insert and enqueue leaves a
// pending item without a marker, which the reconciliation sweep re-enqueues.
func (w *Watcher) enqueue(ctx context.Context, itemID string) {
	if err := w.jobs.Enqueue(ctx, model.NewJob(itemID)); err != nil {
		w.log.Error().Err(err).Str("item_id", itemID).Msg("watcher: enqueue failed; sweep will retry")
		return
	}
	if err := w.items.MarkEnqueued(ctx, nil, itemID, time.Now().UTC()); err != nil {
		w.log.Warn().Err(err).Str("item_id", itemID).Msg("watcher: enqueue marker update failed")
	}
}
