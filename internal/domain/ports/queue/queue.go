package queue

import (
	"context"

	"clipvault/internal/domain/model"
)

// Delivery is one dequeued job plus the handle needed to settle it.
type Delivery struct {
	Job   model.Job
	AckID string
}

// JobQueue is an at-least-once delivery channel for processing work.
// A delivery that is neither acked nor nacked becomes eligible for
// redelivery once the visibility timeout elapses; consumers must therefore
// be idempotent.
type JobQueue interface {
	Enqueue(ctx context.Context, job model.Job) error

	// Dequeue blocks up to the implementation's block interval and returns
	// domain.ErrNoJob when nothing arrived.
	Dequeue(ctx context.Context) (*Delivery, error)

	Ack(ctx context.Context, d *Delivery) error

	// Nack releases the delivery for redelivery without waiting out the
	// full visibility timeout.
	Nack(ctx context.Context, d *Delivery) error
}
