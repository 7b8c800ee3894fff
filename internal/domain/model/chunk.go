package model

import (
	"github.com/google/uuid"

	"clipvault/internal/domain"
)

// Segment is one timestamped span of transcript text as produced by the
// transcriber. Times are seconds from the start of the audio.
type Segment struct {
	Text  string
	Start float64
	End   float64
}

// Chunk is a contiguous span of transcript text belonging to one item,
// packed from consecutive segments. Chunks are written in bulk inside the
// item's persist transaction and never mutated afterwards.
type Chunk struct {
	ID        string
	ItemID    string
	Text      string
	Start     float64 // seconds
	End       float64 // seconds, End > Start
	Embedding []float32
}

func NewChunk(itemID, text string, start, end float64) (*Chunk, error) {
	if itemID == "" || text == "" || end <= start {
		return nil, domain.ErrInvalidArgument
	}
	return &Chunk{
		ID:     uuid.NewString(),
		ItemID: itemID,
		Text:   text,
		Start:  start,
		End:    end,
	}, nil
}

// ScoredChunk is a retrieval hit: a completed item's chunk plus its cosine
// similarity against the query vector and the parent title for citations.
type ScoredChunk struct {
	Chunk
	ItemTitle  string
	Similarity float64
}
