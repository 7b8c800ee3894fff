package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/queue"
	"clipvault/internal/domain/ports/repository"
)

type mockSourceRepo struct {
	mu      sync.Mutex
	sources map[string]*model.Source
	saveErr error
}

func newMockSourceRepo() *mockSourceRepo {
	return &mockSourceRepo{sources: make(map[string]*model.Source)}
}

func (r *mockSourceRepo) Save(ctx context.Context, tx repository.Tx, s *model.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *s
	r.sources[s.ID] = &cp
	return nil
}

func (r *mockSourceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *mockSourceRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Source
	for _, s := range r.sources {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *mockSourceRepo) UpdateLastChecked(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastCheckedAt = at
	return nil
}

func (r *mockSourceRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sources, id)
	return nil
}

type mockItemRepo struct {
	mu    sync.Mutex
	items map[string]*model.Item
}

func newMockItemRepo(items ...*model.Item) *mockItemRepo {
	r := &mockItemRepo{items: make(map[string]*model.Item)}
	for _, it := range items {
		cp := *it
		r.items[it.ID] = &cp
	}
	return r
}

func (r *mockItemRepo) Insert(ctx context.Context, tx repository.Tx, it *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.SourceID == it.SourceID && existing.ExternalID == it.ExternalID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *mockItemRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *mockItemRepo) ListBySource(ctx context.Context, tx repository.Tx, sourceID string, limit, offset int) ([]*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Item
	for _, it := range r.items {
		if it.SourceID == sourceID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *mockItemRepo) Claim(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Status != model.ItemStatusPending && it.Status != model.ItemStatusFailed {
		return domain.ErrClaimConflict
	}
	it.Status = model.ItemStatusProcessing
	return nil
}

func (r *mockItemRepo) SetCompleted(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Status = model.ItemStatusCompleted
	return nil
}

func (r *mockItemRepo) MarkFailed(ctx context.Context, tx repository.Tx, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Status = model.ItemStatusFailed
	it.FailReason = reason
	return nil
}

func (r *mockItemRepo) ResetForRetry(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Status != model.ItemStatusFailed {
		return domain.ErrNotRetryable
	}
	it.Status = model.ItemStatusPending
	it.EnqueuedAt = nil
	return nil
}

func (r *mockItemRepo) MarkEnqueued(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.EnqueuedAt = &at
	return nil
}

func (r *mockItemRepo) ListUnenqueuedPending(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Item, error) {
	return nil, nil
}

func (r *mockItemRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type mockQueue struct {
	mu       sync.Mutex
	enqueued []model.Job
}

func (q *mockQueue) Enqueue(ctx context.Context, job model.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *mockQueue) Dequeue(ctx context.Context) (*queue.Delivery, error) {
	return nil, domain.ErrNoJob
}

func (q *mockQueue) Ack(ctx context.Context, d *queue.Delivery) error  { return nil }
func (q *mockQueue) Nack(ctx context.Context, d *queue.Delivery) error { return nil }

// mockChunkSearcher serves canned similarity hits for the answer engine.
type mockChunkSearcher struct {
	hits      []*model.ScoredChunk
	searchErr error
	searches  int
}

func (r *mockChunkSearcher) ReplaceForItem(ctx context.Context, tx repository.Tx, itemID string, chunks []*model.Chunk) error {
	return errors.New("not used in answer tests")
}

func (r *mockChunkSearcher) ListByItem(ctx context.Context, tx repository.Tx, itemID string) ([]*model.Chunk, error) {
	return nil, nil
}

func (r *mockChunkSearcher) CountByItem(ctx context.Context, tx repository.Tx, itemID string) (int, error) {
	return 0, nil
}

func (r *mockChunkSearcher) SearchSimilar(ctx context.Context, tx repository.Tx, vector []float32, k int) ([]*model.ScoredChunk, error) {
	r.searches++
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if len(r.hits) > k {
		return r.hits[:k], nil
	}
	return r.hits, nil
}

type mockEmbedder struct {
	err   error
	calls int
}

func (e *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5, 0.5, 0}
	}
	return out, nil
}

func (e *mockEmbedder) Dim() int { return 3 }

type mockGenerator struct {
	answer      string
	err         error
	calls       int
	lastContext string
	lastQuery   string
}

func (g *mockGenerator) Generate(ctx context.Context, contextBlock, query string) (string, error) {
	g.calls++
	g.lastContext = contextBlock
	g.lastQuery = query
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

type mockAnswerCache struct {
	mu      sync.Mutex
	answers map[string]*model.Answer
	sets    int
}

func newMockAnswerCache() *mockAnswerCache {
	return &mockAnswerCache{answers: make(map[string]*model.Answer)}
}

func (c *mockAnswerCache) Get(ctx context.Context, query string) (*model.Answer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ans, ok := c.answers[query]
	if !ok {
		return nil, nil
	}
	return ans, nil
}

func (c *mockAnswerCache) Set(ctx context.Context, query string, ans *model.Answer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[query] = ans
	c.sets++
	return nil
}
