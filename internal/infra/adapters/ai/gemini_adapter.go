package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"clipvault/internal/domain"
	"clipvault/internal/domain/ports/adapter"
)

var (
	_ adapter.Embedder  = (*GeminiAdapter)(nil)
	_ adapter.Generator = (*GeminiAdapter)(nil)
)

// GeminiAdapter implements the embedder and generator collaborators with
// the official SDK.
type GeminiAdapter struct {
	client     *genai.Client
	embedModel string
	chatModel  string
	dim        int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, embedModel, chatModel string, dim int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}
	if chatModel == "" {
		chatModel = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, embedModel: embedModel, chatModel: chatModel, dim: dim}, nil
}

func (g *GeminiAdapter) Dim() int { return g.dim }

func (g *GeminiAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}
	dim := int32(g.dim)
	resp, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed: %v", domain.ErrEmbedFailed, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: gemini returned %d embeddings for %d inputs",
			domain.ErrEmbedFailed, len(resp.Embeddings), len(texts))
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

func (g *GeminiAdapter) Generate(ctx context.Context, contextBlock, query string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.chatModel,
		genai.Text(buildUserPrompt(contextBlock, query)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(answerSystemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %v", domain.ErrGenerateFailed, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned empty response", domain.ErrGenerateFailed)
	}
	return text, nil
}
