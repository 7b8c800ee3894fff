package worker

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"clipvault/internal/config"
	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/adapter"
	"clipvault/internal/domain/ports/queue"
	"clipvault/internal/domain/ports/repository"
	"clipvault/internal/infra/logging"
	"clipvault/internal/infra/metrics"
	"clipvault/internal/transcript"
)

// Processor drives one item through fetch -> transcribe -> chunk -> embed
// -> persist. It is idempotent and crash-safe: the claim step turns
// duplicate deliveries into no-ops, collaborator failures resolve to a
// recorded failed status, and only a resolved outcome acknowledges the
// job. A crash mid-pipeline leaves the job unacked for redelivery.
type Processor struct {
	items    repository.ItemRepository
	chunks   repository.ChunkRepository
	tm       repository.TransactionManager
	jobs     queue.JobQueue
	fetcher  adapter.MediaFetcher
	stt      adapter.Transcriber
	embedder adapter.Embedder
	notifier adapter.Notifier
	packer   *transcript.Packer
	cfg      config.WorkerConfig
	log      *zerolog.Logger
}

func NewProcessor(
	items repository.ItemRepository,
	chunks repository.ChunkRepository,
	tm repository.TransactionManager,
	jobs queue.JobQueue,
	fetcher adapter.MediaFetcher,
	stt adapter.Transcriber,
	embedder adapter.Embedder,
	notifier adapter.Notifier,
	packer *transcript.Packer,
	cfg config.WorkerConfig,
	log *zerolog.Logger,
) *Processor {
	return &Processor{
		items:    items,
		chunks:   chunks,
		tm:       tm,
		jobs:     jobs,
		fetcher:  fetcher,
		stt:      stt,
		embedder: embedder,
		notifier: notifier,
		packer:   packer,
		cfg:      cfg,
		log:      log,
	}
}

// Run is one worker's consume loop; it returns when ctx is cancelled.
// Failures are never fatal to the loop.
func (p *Processor) Run(ctx context.Context, id int) {
	log := p.log.With().Int("worker", id).Logger()
	log.Info().Msg("worker started")
	for {
		if ctx.Err() != nil {
			log.Info().Msg("worker stopping")
			return
		}
		d, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNoJob) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error().Err(err).Msg("dequeue failed")
			time.Sleep(time.Second)
			continue
		}
		p.processDelivery(ctx, d, &log)
	}
}

func (p *Processor) processDelivery(ctx context.Context, d *queue.Delivery, log *zerolog.Logger) {
	ctx = logging.WithItemID(ctx, d.Job.ItemID)
	itemLog := logging.With(ctx, log).With().Str("job_id", d.Job.ID).Logger()
	defer logging.TraceDuration(&itemLog, "worker.processDelivery")()

	// Claim: the conditional status write that makes at-least-once
	// delivery safe. Losing the race (or a vanished item) is a no-op.
	if err := p.items.Claim(ctx, nil, d.Job.ItemID); err != nil {
		switch {
		case errors.Is(err, domain.ErrClaimConflict):
			metrics.IncItemProcessed("conflict")
			itemLog.Debug().Msg("claim lost; duplicate delivery dropped")
			p.ack(ctx, d, &itemLog)
		case errors.Is(err, domain.ErrNotFound):
			itemLog.Warn().Msg("job references deleted item")
			p.ack(ctx, d, &itemLog)
		default:
			// Registry unreachable: leave the job for redelivery.
			itemLog.Error().Err(err).Msg("claim failed; job left for redelivery")
		}
		return
	}

	item, err := p.items.FindByID(ctx, nil, d.Job.ItemID)
	if err != nil {
		itemLog.Error().Err(err).Msg("load claimed item failed; job left for redelivery")
		return
	}

	start := time.Now()
	chunks, err := p.runPipeline(ctx, item, &itemLog)
	if err != nil {
		p.resolveFailure(ctx, d, item, err, &itemLog)
		return
	}

	if err := p.persist(ctx, item.ID, chunks); err != nil {
		// The one condition that must NOT resolve to failed: the commit
		// outcome is unknown, so the job stays unacked and is redelivered.
		metrics.IncItemProcessed("redelivered")
		itemLog.Error().Err(err).Msg("persist failed; job left for redelivery")
		return
	}

	metrics.IncItemProcessed("completed")
	itemLog.Info().Int("chunks", len(chunks)).Dur("duration", time.Since(start)).Msg("item completed")
	p.ack(ctx, d, &itemLog)
	p.notifier.ItemCompleted(ctx, item, len(chunks))
}

// runPipeline executes the collaborator stages. Every returned error is a
// resolved pipeline failure (fetch/transcribe/embed), not a store problem.
func (p *Processor) runPipeline(ctx context.Context, item *model.Item, log *zerolog.Logger) ([]*model.Chunk, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()
	stageStart := time.Now()
	audioPath, err := p.fetcher.Fetch(fetchCtx, item.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer p.fetcher.Cleanup(audioPath)
	metrics.ObserveStage("fetch", time.Since(stageStart))

	sttCtx, cancel := context.WithTimeout(ctx, p.cfg.STTTimeout)
	defer cancel()
	stageStart = time.Now()
	segments, err := p.stt.Transcribe(sttCtx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscribeFailed, err)
	}
	metrics.ObserveStage("transcribe", time.Since(stageStart))

	chunks, err := p.packer.Pack(item.ID, segments)
	if err != nil {
		return nil, fmt.Errorf("%w: pack: %v", domain.ErrTranscribeFailed, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: transcript produced no chunks", domain.ErrTranscribeFailed)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embedCtx, cancel := context.WithTimeout(ctx, p.cfg.EmbedTimeout)
	defer cancel()
	stageStart = time.Now()
	vectors, err := p.embedder.Embed(embedCtx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedFailed, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedFailed, len(vectors), len(chunks))
	}
	metrics.ObserveStage("embed", time.Since(stageStart))
	for i, c := range chunks {
		c.Embedding = vectors[i]
	}
	return chunks, nil
}

// persist writes the chunk set and flips the item to completed as one
// transaction: either all chunks are visible and the item is completed, or
// neither happened.
func (p *Processor) persist(ctx context.Context, itemID string, chunks []*model.Chunk) error {
	stageStart := time.Now()
	err := p.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := p.chunks.ReplaceForItem(ctx, tx, itemID, chunks); err != nil {
			return err
		}
		return p.items.SetCompleted(ctx, tx, itemID)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	metrics.ObserveStage("persist", time.Since(stageStart))
	return nil
}

// maxFailReason caps the recorded failure reason.
const maxFailReason = 500

// resolveFailure records the reason, acknowledges the job and moves on.
func (p *Processor) resolveFailure(ctx context.Context, d *queue.Delivery, item *model.Item, cause error, log *zerolog.Logger) {
	reason := truncateReason(cause.Error(), maxFailReason)
	if err := p.items.MarkFailed(ctx, nil, item.ID, reason); err != nil {
		// Can't record the outcome; keep the job so redelivery retries.
		log.Error().Err(err).Msg("mark failed errored; job left for redelivery")
		return
	}
	metrics.IncItemProcessed("failed")
	log.Warn().Str("reason", reason).Msg("item failed")
	p.ack(ctx, d, log)
	p.notifier.ItemFailed(ctx, item, reason)
}

// truncateReason cuts on a rune boundary: a byte-offset slice can split a
// multi-byte rune and the resulting invalid UTF-8 would be rejected by the
// store, leaving the failure unrecorded.
func truncateReason(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (p *Processor) ack(ctx context.Context, d *queue.Delivery, log *zerolog.Logger) {
	if err := p.jobs.Ack(ctx, d); err != nil {
		log.Warn().Err(err).Msg("ack failed; claim guard absorbs the redelivery")
	}
}
