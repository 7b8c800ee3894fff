package adapter

import (
	"context"

	"clipvault/internal/domain/model"
)

// Notifier announces pipeline outcomes to an operator channel.
// Implementations must be non-blocking for the pipeline: errors are logged,
// never propagated into item state.
type Notifier interface {
	ItemCompleted(ctx context.Context, item *model.Item, chunkCount int)
	ItemFailed(ctx context.Context, item *model.Item, reason string)
}
