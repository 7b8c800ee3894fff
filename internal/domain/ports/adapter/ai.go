package adapter

import "context"

// Embedder maps texts to fixed-dimensionality vectors. The same embedder
// must serve both chunk text and query text so vectors stay comparable.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dim is the dimensionality every returned vector has.
	Dim() int
}

// Generator produces an answer from an assembled context block and the
// original query. It must be instructed to answer only from the context.
type Generator interface {
	Generate(ctx context.Context, contextBlock, query string) (string, error)
}
