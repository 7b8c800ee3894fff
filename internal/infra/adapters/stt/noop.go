package stt

import (
	"context"

	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/adapter"
)

var _ adapter.Transcriber = (*NoopTranscriber)(nil)

// NoopTranscriber returns a canned transcript; dev mode only.
type NoopTranscriber struct{}

func NewNoopTranscriber() *NoopTranscriber { return &NoopTranscriber{} }

func (NoopTranscriber) Transcribe(ctx context.Context, audioPath string) ([]model.Segment, error) {
	return []model.Segment{
		{Text: "placeholder transcript for " + audioPath, Start: 0, End: 5},
	}, nil
}
