package ai

import (
	"context"
	"hash/fnv"
	"math"

	"clipvault/internal/domain/ports/adapter"
)

var (
	_ adapter.Embedder  = (*NoopAI)(nil)
	_ adapter.Generator = (*NoopAI)(nil)
)

// NoopAI is a deterministic stand-in for dev mode: embeddings are derived
// from a hash of the text so equal texts stay nearest neighbors, and
// generation echoes the context. Never use outside dev.
type NoopAI struct {
	dim int
}

func NewNoopAI(dim int) *NoopAI { return &NoopAI{dim: dim} }

func (n *NoopAI) Dim() int { return n.dim }

func (n *NoopAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(t))
		seed := h.Sum64()
		vec := make([]float32, n.dim)
		var norm float64
		for j := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			v := float32(int64(seed>>33))/float32(math.MaxInt32) - 0.5
			vec[j] = v
			norm += float64(v) * float64(v)
		}
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] = float32(float64(vec[j]) / norm)
		}
		out[i] = vec
	}
	return out, nil
}

func (n *NoopAI) Generate(ctx context.Context, contextBlock, query string) (string, error) {
	return "dev answer (no AI provider configured) for: " + query, nil
}
