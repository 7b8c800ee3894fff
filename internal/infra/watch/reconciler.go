package watch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/queue"
	"clipvault/internal/domain/ports/repository"
)

// Reconciler periodically re-enqueues pending items whose enqueue marker
// is missing or stale. This covers the crash window between registering an
// item and enqueuing its job, and enqueue calls that failed outright.
type Reconciler struct {
	items      repository.ItemRepository
	jobs       queue.JobQueue
	interval   time.Duration
	staleAfter time.Duration
	log        *zerolog.Logger
}

func NewReconciler(items repository.ItemRepository, jobs queue.JobQueue, interval, staleAfter time.Duration, log *zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Reconciler{items: items, jobs: jobs, interval: interval, staleAfter: staleAfter, log: log}
}

func (r *Reconciler) Start(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("reconciliation sweep started")
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reconciliation sweep stopping")
			return
		case <-t.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Re-enqueueing an item that does have a live job is
// harmless: the worker's claim step turns the duplicate into a no-op.
func (r *Reconciler) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.staleAfter)
	orphans, err := r.items.ListUnenqueuedPending(ctx, nil, cutoff, 200)
	if err != nil {
		r.log.Error().Err(err).Msg("sweep: list pending failed")
		return
	}
	for _, it := range orphans {
		if err := r.jobs.Enqueue(ctx, model.NewJob(it.ID)); err != nil {
			r.log.Error().Err(err).Str("item_id", it.ID).Msg("sweep: enqueue failed")
			continue
		}
		if err := r.items.MarkEnqueued(ctx, nil, it.ID, time.Now().UTC()); err != nil {
			r.log.Warn().Err(err).Str("item_id", it.ID).Msg("sweep: enqueue marker update failed")
		}
		r.log.Info().Str("item_id", it.ID).Msg("sweep: re-enqueued orphaned pending item")
	}
}
