package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"clipvault/internal/config"
	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/adapter"
	"clipvault/internal/domain/ports/repository"
	"clipvault/internal/infra/logging"
	"clipvault/internal/infra/metrics"
)

// NoAnswerText is returned when no chunk clears the similarity threshold.
// The generator is never called in that case.
const NoAnswerText = "No relevant information found in the library for this question."

// AnswerUseCase is the retrieval and answer-assembly engine.
type AnswerUseCase interface {
	Ask(ctx context.Context, query string) (*model.Answer, error)
}

// AnswerCache is the optional recent-answer cache (Redis in production).
type AnswerCache interface {
	Get(ctx context.Context, query string) (*model.Answer, error)
	Set(ctx context.Context, query string, ans *model.Answer) error
}

type answerUC struct {
	chunks    repository.ChunkRepository
	embedder  adapter.Embedder
	generator adapter.Generator
	cache     AnswerCache // nil disables caching
	cfg       config.RetrievalConfig
	encoder   *tiktoken.Tiktoken
	log       *zerolog.Logger
}

func NewAnswerUseCase(
	chunks repository.ChunkRepository,
	embedder adapter.Embedder,
	generator adapter.Generator,
	cache AnswerCache,
	cfg config.RetrievalConfig,
	log *zerolog.Logger,
) (AnswerUseCase, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &answerUC{
		chunks:    chunks,
		embedder:  embedder,
		generator: generator,
		cache:     cache,
		cfg:       cfg,
		encoder:   enc,
		log:       log,
	}, nil
}

func (u *answerUC) Ask(ctx context.Context, query string) (*model.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(ctx, u.log)
	start := time.Now()
	defer func() { metrics.ObserveQueryLatency(time.Since(start)) }()

	if u.cache != nil {
		if cached, err := u.cache.Get(ctx, query); err == nil && cached != nil {
			metrics.IncQuery("cached")
			return cached, nil
		}
	}

	vectors, err := u.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		metrics.IncQuery("error")
		log.Error().Err(err).Msg("query embedding failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	hits, err := u.chunks.SearchSimilar(ctx, nil, vectors[0], u.cfg.TopK)
	if err != nil {
		metrics.IncQuery("error")
		return nil, fmt.Errorf("%w: similarity search: %v", domain.ErrUnavailable, err)
	}

	// Drop hits under the threshold; short-circuit when nothing remains so
	// the generator never sees an empty context.
	grounded := hits[:0]
	for _, h := range hits {
		if h.Similarity >= u.cfg.MinSimilarity {
			grounded = append(grounded, h)
		}
	}
	if len(grounded) == 0 {
		metrics.IncQuery("no_answer")
		ans := &model.Answer{Text: NoAnswerText, Grounded: false, Citations: []model.Citation{}}
		u.cacheSet(ctx, query, ans)
		return ans, nil
	}

	contextBlock, used := u.assembleContext(grounded)

	text, err := u.generator.Generate(ctx, contextBlock, query)
	if err != nil {
		metrics.IncQuery("error")
		log.Error().Err(err).Msg("answer generation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	citations := make([]model.Citation, 0, len(used))
	for _, h := range used {
		citations = append(citations, model.Citation{
			ItemID:    h.ItemID,
			ItemTitle: h.ItemTitle,
			Start:     h.Start,
			End:       h.End,
		})
	}
	metrics.IncQuery("grounded")
	ans := &model.Answer{Text: text, Grounded: true, Citations: citations}
	u.cacheSet(ctx, query, ans)
	return ans, nil
}

// assembleContext concatenates hits best-first until the token budget is
// spent, returning the block plus the hits that actually made it in —
// only those are cited.
func (u *answerUC) assembleContext(hits []*model.ScoredChunk) (string, []*model.ScoredChunk) {
	var (
		sb     strings.Builder
		used   []*model.ScoredChunk
		budget = u.cfg.ContextTokens
	)
	for _, h := range hits {
		entry := fmt.Sprintf("%s [%s-%s]\n%s\n\n",
			h.ItemTitle, formatTimestamp(h.Start), formatTimestamp(h.End), h.Text)
		cost := len(u.encoder.Encode(entry, nil, nil))
		if len(used) > 0 && cost > budget {
			break
		}
		sb.WriteString(entry)
		used = append(used, h)
		budget -= cost
	}
	return strings.TrimRight(sb.String(), "\n"), used
}

func (u *answerUC) cacheSet(ctx context.Context, query string, ans *model.Answer) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Set(ctx, query, ans); err != nil {
		u.log.Warn().Err(err).Msg("answer cache write failed")
	}
}

func formatTimestamp(sec float64) string {
	total := int(sec)
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
