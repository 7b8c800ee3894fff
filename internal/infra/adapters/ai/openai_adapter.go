package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"clipvault/internal/domain"
	"clipvault/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies both ports
var (
	_ adapter.Embedder  = (*OpenAIAdapter)(nil)
	_ adapter.Generator = (*OpenAIAdapter)(nil)
)

// OpenAIAdapter implements the embedder and generator collaborators with
// the official client. The same embedding model serves chunk text and
// query text so vectors stay comparable.
type OpenAIAdapter struct {
	client     openai.Client
	embedModel string
	chatModel  string
	dim        int
}

func NewOpenAIAdapter(apiKey, embedModel, chatModel string, dim int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		embedModel: embedModel,
		chatModel:  chatModel,
		dim:        dim,
	}, nil
}

func (o *OpenAIAdapter) Dim() int { return o.dim }

func (o *OpenAIAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(o.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Dimensions: openai.Int(int64(o.dim)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embeddings: %v", domain.ErrEmbedFailed, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai returned %d embeddings for %d inputs",
			domain.ErrEmbedFailed, len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

func (o *OpenAIAdapter) Generate(ctx context.Context, contextBlock, query string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(answerSystemPrompt),
			openai.UserMessage(buildUserPrompt(contextBlock, query)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai chat: %v", domain.ErrGenerateFailed, err)
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", fmt.Errorf("%w: openai returned no choice content", domain.ErrGenerateFailed)
}
