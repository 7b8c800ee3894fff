package repository

import (
	"context"
	"time"

	"clipvault/internal/domain/model"
)

type SourceRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Source) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Source, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Source, error)
	UpdateLastChecked(ctx context.Context, tx Tx, id string, at time.Time) error
	// Delete removes the source; items and their chunks cascade.
	Delete(ctx context.Context, tx Tx, id string) error
}
