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

// Ensure interface compliance
var _ repository.SourceRepository = (*sourceRepo)(nil)

type sourceRepo struct {
	pool *pgxpool.Pool
}

func NewSourceRepo(pool *pgxpool.Pool) *sourceRepo {
	return &sourceRepo{pool: pool}
}

func (r *sourceRepo) Save(ctx context.Context, tx repository.Tx, s *model.Source) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO sources (id, name, feed_url, last_checked_at, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET name            = EXCLUDED.name,
      feed_url        = EXCLUDED.feed_url,
      last_checked_at = EXCLUDED.last_checked_at;`
	if _, err := ex.Exec(ctx, q, s.ID, s.Name, s.FeedURL, nullableTime(s.LastCheckedAt), s.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save source: %w", err)
	}
	return nil
}

func (r *sourceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Source, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, name, feed_url, last_checked_at, created_at
  FROM sources
 WHERE id = $1;`
	return scanSource(ex.QueryRow(ctx, q, id))
}

func (r *sourceRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Source, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, name, feed_url, last_checked_at, created_at
  FROM sources
 ORDER BY created_at;`
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []*model.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sourceRepo) UpdateLastChecked(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE sources SET last_checked_at = $2 WHERE id = $1;`, id, at)
	if err != nil {
		return fmt.Errorf("update last checked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sourceRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM sources WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSource(row pgx.Row) (*model.Source, error) {
	var (
		s           model.Source
		lastChecked *time.Time
	)
	if err := row.Scan(&s.ID, &s.Name, &s.FeedURL, &lastChecked, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan source: %w", err)
	}
	if lastChecked != nil {
		s.LastCheckedAt = *lastChecked
	}
	return &s, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
