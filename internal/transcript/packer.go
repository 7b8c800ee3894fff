// Package transcript packs timestamped transcriber segments into bounded
// text chunks ready for embedding.
package transcript

import (
	"strings"

	"clipvault/internal/domain/model"
)

const DefaultMaxChunkChars = 500

// Packer folds a segment sequence into chunks bounded by a character
// budget. Boundaries never split a segment. When appending segment k would
// exceed the budget, the accumulated buffer is flushed as one chunk,
// segment k is emitted as its own chunk, and the following segment starts
// a fresh buffer.
type Packer struct {
	maxChars int
}

func NewPacker(maxChars int) *Packer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	return &Packer{maxChars: maxChars}
}

// Pack runs the fold over segments. Segments with empty text are skipped.
// A chunk's time range spans from its first segment's start to its last
// segment's end.
func (p *Packer) Pack(itemID string, segments []model.Segment) ([]*model.Chunk, error) {
	var (
		chunks []*model.Chunk
		buf    strings.Builder
		start  float64
		end    float64
	)

	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		c, err := model.NewChunk(itemID, buf.String(), start, end)
		if err != nil {
			return err
		}
		chunks = append(chunks, c)
		buf.Reset()
		return nil
	}

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if buf.Len() > 0 && buf.Len()+1+len(text) > p.maxChars {
			if err := flush(); err != nil {
				return nil, err
			}
			c, err := model.NewChunk(itemID, text, seg.Start, seg.End)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, c)
			continue
		}
		if buf.Len() == 0 {
			start = seg.Start
		} else {
			buf.WriteByte(' ')
		}
		buf.WriteString(text)
		end = seg.End
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return chunks, nil
}
