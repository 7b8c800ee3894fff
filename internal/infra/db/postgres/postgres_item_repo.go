package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/repository"
)

var _ repository.ItemRepository = (*itemRepo)(nil)

type itemRepo struct {
	pool *pgxpool.Pool
}

func NewItemRepo(pool *pgxpool.Pool) *itemRepo {
	return &itemRepo{pool: pool}
}

const itemColumns = `id, source_id, external_id, title, url, published_at, discovered_at, enqueued_at, status, fail_reason`

func (r *itemRepo) Insert(ctx context.Context, tx repository.Tx, it *model.Item) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO items (id, source_id, external_id, title, url, published_at, discovered_at, status, fail_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '');`
	if _, err := ex.Exec(ctx, q,
		it.ID, it.SourceID, it.ExternalID, it.Title, it.URL, nullableTime(it.PublishedAt), it.DiscoveredAt, it.Status,
	); err != nil {
		// The (source_id, external_id) unique index makes re-discovery a no-op
		// for callers that treat ErrAlreadyExists as such.
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *itemRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Item, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + itemColumns + ` FROM items WHERE id = $1;`
	return scanItem(ex.QueryRow(ctx, q, id))
}

func (r *itemRepo) ListBySource(ctx context.Context, tx repository.Tx, sourceID string, limit, offset int) ([]*model.Item, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + itemColumns + `
  FROM items
 WHERE source_id = $1
 ORDER BY published_at DESC NULLS LAST, discovered_at DESC
 LIMIT $2 OFFSET $3;`
	rows, err := ex.Query(ctx, q, sourceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// Claim is the distributed-lock write: a single conditional UPDATE that
// succeeds for exactly one concurrent claimant. Claimable from pending or
// failed so a redelivered job can pick up after a crash.
func (r *itemRepo) Claim(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
UPDATE items
   SET status = 'processing', fail_reason = ''
 WHERE id = $1
   AND status IN ('pending', 'failed');`
	tag, err := ex.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("claim item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, ferr := r.FindByID(ctx, tx, id); errors.Is(ferr, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.ErrClaimConflict
	}
	return nil
}

func (r *itemRepo) SetCompleted(ctx context.Context, tx repository.Tx, id string) error {
	return r.setStatus(ctx, tx, id, model.ItemStatusCompleted, "")
}

func (r *itemRepo) MarkFailed(ctx context.Context, tx repository.Tx, id, reason string) error {
	return r.setStatus(ctx, tx, id, model.ItemStatusFailed, reason)
}

func (r *itemRepo) setStatus(ctx context.Context, tx repository.Tx, id string, status model.ItemStatus, reason string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE items SET status = $2, fail_reason = $3 WHERE id = $1;`, id, status, reason)
	if err != nil {
		return fmt.Errorf("set item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *itemRepo) ResetForRetry(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
UPDATE items
   SET status = 'pending', fail_reason = '', enqueued_at = NULL
 WHERE id = $1
   AND status = 'failed';`
	tag, err := ex.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("reset item for retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, ferr := r.FindByID(ctx, tx, id); errors.Is(ferr, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.ErrNotRetryable
	}
	return nil
}

func (r *itemRepo) MarkEnqueued(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, `UPDATE items SET enqueued_at = $2 WHERE id = $1;`, id, at); err != nil {
		return fmt.Errorf("mark item enqueued: %w", err)
	}
	return nil
}

func (r *itemRepo) ListUnenqueuedPending(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Item, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + itemColumns + `
  FROM items
 WHERE status = 'pending'
   AND (enqueued_at IS NULL OR enqueued_at < $1)
 ORDER BY discovered_at
 LIMIT $2;`
	rows, err := ex.Query(ctx, q, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list unenqueued pending: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *itemRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM items WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*model.Item, error) {
	var (
		it        model.Item
		statusStr string
		published *time.Time
	)
	if err := row.Scan(
		&it.ID, &it.SourceID, &it.ExternalID, &it.Title, &it.URL,
		&published, &it.DiscoveredAt, &it.EnqueuedAt, &statusStr, &it.FailReason,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	if published != nil {
		it.PublishedAt = *published
	}
	it.Status = model.ItemStatus(statusStr)
	return &it, nil
}

func collectItems(rows pgx.Rows) ([]*model.Item, error) {
	var out []*model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
