package adapter

import (
	"context"

	"clipvault/internal/domain/model"
)

// MediaFetcher turns a source URL into a local audio file. Implementations
// wrap network errors, removed content and region locks into
// domain.ErrFetchFailed.
type MediaFetcher interface {
	Fetch(ctx context.Context, sourceURL string) (audioPath string, err error)
	// Cleanup removes the fetched file; best-effort.
	Cleanup(audioPath string)
}

// Transcriber converts a local audio file into timestamped text segments.
// An empty segment list is a valid result only for silent audio; callers
// decide how to treat it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]model.Segment, error)
}
