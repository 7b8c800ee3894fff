package repository

import (
	"context"

	"clipvault/internal/domain/model"
)

type ChunkRepository interface {
	// ReplaceForItem drops any existing chunks for the item and bulk
	// inserts the new set. Must run inside the caller's transaction so the
	// chunk set and the item's completed status become visible together.
	ReplaceForItem(ctx context.Context, tx Tx, itemID string, chunks []*model.Chunk) error

	ListByItem(ctx context.Context, tx Tx, itemID string) ([]*model.Chunk, error)
	CountByItem(ctx context.Context, tx Tx, itemID string) (int, error)

	// SearchSimilar runs a top-k cosine similarity search restricted to
	// chunks of completed items, best match first.
	SearchSimilar(ctx context.Context, tx Tx, vector []float32, k int) ([]*model.ScoredChunk, error)
}
