package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/repository"
)

// SourceUseCase is the subscription surface the front-end talks to.
type SourceUseCase interface {
	Subscribe(ctx context.Context, name, feedURL string) (*model.Source, error)
	List(ctx context.Context) ([]*model.Source, error)
	Get(ctx context.Context, id string) (*model.Source, error)
	// Unsubscribe removes the source; its items and chunks cascade away.
	Unsubscribe(ctx context.Context, id string) error
}

type sourceUC struct {
	sources repository.SourceRepository
	log     *zerolog.Logger
}

func NewSourceUseCase(sources repository.SourceRepository, log *zerolog.Logger) SourceUseCase {
	return &sourceUC{sources: sources, log: log}
}

func (u *sourceUC) Subscribe(ctx context.Context, name, feedURL string) (*model.Source, error) {
	s, err := model.NewSource(name, feedURL)
	if err != nil {
		return nil, err
	}
	if err := u.sources.Save(ctx, nil, s); err != nil {
		return nil, err
	}
	u.log.Info().Str("source_id", s.ID).Str("feed_url", s.FeedURL).Msg("source subscribed")
	return s, nil
}

func (u *sourceUC) List(ctx context.Context) ([]*model.Source, error) {
	return u.sources.ListAll(ctx, nil)
}

func (u *sourceUC) Get(ctx context.Context, id string) (*model.Source, error) {
	return u.sources.FindByID(ctx, nil, id)
}

func (u *sourceUC) Unsubscribe(ctx context.Context, id string) error {
	if err := u.sources.Delete(ctx, nil, id); err != nil {
		return err
	}
	u.log.Info().Str("source_id", id).Msg("source unsubscribed")
	return nil
}
