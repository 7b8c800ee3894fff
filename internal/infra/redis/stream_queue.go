package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"clipvault/internal/config"
	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/queue"
	"clipvault/internal/infra/metrics"
)

var _ queue.JobQueue = (*StreamQueue)(nil)

// StreamQueue is the at-least-once job queue on a Redis stream with a
// consumer group. A dequeued entry stays in the group's pending list until
// acked; entries idle past the visibility timeout are reclaimed by the
// next dequeuer (XAUTOCLAIM), which is what redelivers work lost to a
// crashed worker.
type StreamQueue struct {
	cli        *redis.Client
	stream     string
	group      string
	consumer   string
	visibility time.Duration
	block      time.Duration
	log        *zerolog.Logger
}

func NewStreamQueue(ctx context.Context, cli *redis.Client, cfg config.QueueConfig, consumer string, log *zerolog.Logger) (*StreamQueue, error) {
	q := &StreamQueue{
		cli:        cli,
		stream:     cfg.Stream,
		group:      cfg.Group,
		consumer:   consumer,
		visibility: cfg.VisibilityTimeout,
		block:      cfg.Block,
		log:        log,
	}
	err := cli.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	return q, nil
}

func (q *StreamQueue) Enqueue(ctx context.Context, job model.Job) error {
	err := q.cli.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"job_id":      job.ID,
			"item_id":     job.ItemID,
			"enqueued_at": job.EnqueuedAt.Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	metrics.IncJobEnqueued()
	return nil
}

// Dequeue first tries to reclaim an entry whose consumer went silent past
// the visibility timeout, then falls back to reading fresh entries.
func (q *StreamQueue) Dequeue(ctx context.Context) (*queue.Delivery, error) {
	msgs, _, err := q.cli.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.visibility,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("autoclaim: %w", err)
	}
	if len(msgs) > 0 {
		metrics.IncJobReclaimed()
		q.log.Warn().Str("entry_id", msgs[0].ID).Msg("redelivering job past visibility timeout")
		return q.toDelivery(msgs[0])
	}

	streams, err := q.cli.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    q.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoJob
		}
		return nil, fmt.Errorf("read group: %w", err)
	}
	for _, s := range streams {
		for _, m := range s.Messages {
			return q.toDelivery(m)
		}
	}
	return nil, domain.ErrNoJob
}

func (q *StreamQueue) Ack(ctx context.Context, d *queue.Delivery) error {
	if err := q.cli.XAck(ctx, q.stream, q.group, d.AckID).Err(); err != nil {
		return fmt.Errorf("ack job: %w", err)
	}
	// Acked entries are done for every group; trim them from the stream.
	_ = q.cli.XDel(ctx, q.stream, d.AckID).Err()
	return nil
}

// Nack makes the entry immediately reclaimable instead of waiting out the
// visibility timeout: ack the pending entry and re-add the job.
func (q *StreamQueue) Nack(ctx context.Context, d *queue.Delivery) error {
	if err := q.Ack(ctx, d); err != nil {
		return err
	}
	return q.Enqueue(ctx, d.Job)
}

func (q *StreamQueue) toDelivery(m redis.XMessage) (*queue.Delivery, error) {
	itemID, _ := m.Values["item_id"].(string)
	if itemID == "" {
		// Poison entry; drop it rather than wedging the consumer.
		_ = q.cli.XAck(context.Background(), q.stream, q.group, m.ID).Err()
		_ = q.cli.XDel(context.Background(), q.stream, m.ID).Err()
		return nil, domain.ErrNoJob
	}
	jobID, _ := m.Values["job_id"].(string)
	var enqueuedAt time.Time
	if raw, ok := m.Values["enqueued_at"].(string); ok {
		enqueuedAt, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return &queue.Delivery{
		Job:   model.Job{ID: jobID, ItemID: itemID, EnqueuedAt: enqueuedAt},
		AckID: m.ID,
	}, nil
}
