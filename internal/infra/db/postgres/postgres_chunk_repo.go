package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/repository"
)

var _ repository.ChunkRepository = (*chunkRepo)(nil)

type chunkRepo struct {
	pool *pgxpool.Pool
	dim  int
}

// NewChunkRepo builds the chunk store. dim is the embedding dimensionality
// the vector column was created with; mismatched vectors are rejected
// before they reach the database.
func NewChunkRepo(pool *pgxpool.Pool, dim int) *chunkRepo {
	return &chunkRepo{pool: pool, dim: dim}
}

func (r *chunkRepo) ReplaceForItem(ctx context.Context, tx repository.Tx, itemID string, chunks []*model.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) != r.dim {
			return fmt.Errorf("chunk %s: embedding has %d dimensions, store expects %d: %w",
				c.ID, len(c.Embedding), r.dim, domain.ErrInvalidArgument)
		}
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	// Drop any residue from a prior attempt, then bulk insert. Runs inside
	// the persist transaction together with the status flip to completed.
	if _, err := ex.Exec(ctx, `DELETE FROM chunks WHERE item_id = $1;`, itemID); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	const q = `
INSERT INTO chunks (id, item_id, text, start_sec, end_sec, embedding)
VALUES ($1, $2, $3, $4, $5, $6);`
	for _, c := range chunks {
		if _, err := ex.Exec(ctx, q,
			c.ID, itemID, c.Text, c.Start, c.End, pgvector.NewVector(c.Embedding),
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return nil
}

func (r *chunkRepo) ListByItem(ctx context.Context, tx repository.Tx, itemID string) ([]*model.Chunk, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, item_id, text, start_sec, end_sec, embedding
  FROM chunks
 WHERE item_id = $1
 ORDER BY start_sec;`
	rows, err := ex.Query(ctx, q, itemID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var out []*model.Chunk
	for rows.Next() {
		var (
			c   model.Chunk
			vec pgvector.Vector
		)
		if err := rows.Scan(&c.ID, &c.ItemID, &c.Text, &c.Start, &c.End, &vec); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Embedding = vec.Slice()
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *chunkRepo) CountByItem(ctx context.Context, tx repository.Tx, itemID string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT count(*) FROM chunks WHERE item_id = $1;`, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// SearchSimilar ranks by cosine similarity (1 - cosine distance) and only
// considers chunks whose parent item is completed, so half-processed or
// failed items never leak into answers.
func (r *chunkRepo) SearchSimilar(ctx context.Context, tx repository.Tx, vector []float32, k int) ([]*model.ScoredChunk, error) {
	if len(vector) != r.dim {
		return nil, fmt.Errorf("query vector has %d dimensions, store expects %d: %w",
			len(vector), r.dim, domain.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT c.id, c.item_id, c.text, c.start_sec, c.end_sec,
       i.title,
       1 - (c.embedding <=> $1) AS similarity
  FROM chunks c
  JOIN items i ON i.id = c.item_id
 WHERE i.status = 'completed'
 ORDER BY c.embedding <=> $1
 LIMIT $2;`
	rows, err := ex.Query(ctx, q, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var out []*model.ScoredChunk
	for rows.Next() {
		var sc model.ScoredChunk
		if err := rows.Scan(&sc.ID, &sc.ItemID, &sc.Text, &sc.Start, &sc.End, &sc.ItemTitle, &sc.Similarity); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		out = append(out, &sc)
	}
	return out, rows.Err()
}
