package web

import (
	"context"
	"sync"
	"time"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
)

type mockSourceUC struct {
	mu      sync.Mutex
	sources map[string]*model.Source
	err     error
}

func newMockSourceUC() *mockSourceUC {
	return &mockSourceUC{sources: make(map[string]*model.Source)}
}

func (m *mockSourceUC) Subscribe(ctx context.Context, name, feedURL string) (*model.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, err := model.NewSource(name, feedURL)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[s.ID] = s
	return s, nil
}

func (m *mockSourceUC) List(ctx context.Context) ([]*model.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Source
	for _, s := range m.sources {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSourceUC) Get(ctx context.Context, id string) (*model.Source, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSourceUC) Unsubscribe(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sources, id)
	return nil
}

type mockItemUC struct {
	mu      sync.Mutex
	items   map[string]*model.Item
	retried []string
}

func newMockItemUC(items ...*model.Item) *mockItemUC {
	m := &mockItemUC{items: make(map[string]*model.Item)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *mockItemUC) Get(ctx context.Context, id string) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

func (m *mockItemUC) ListBySource(ctx context.Context, sourceID string, limit, offset int) ([]*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Item
	for _, it := range m.items {
		if it.SourceID == sourceID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockItemUC) Register(ctx context.Context, sourceID, url, title string) (*model.Item, error) {
	it, err := model.NewItem(sourceID, url, title, url, time.Time{})
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.SourceID == sourceID && existing.ExternalID == url {
			return nil, domain.ErrAlreadyExists
		}
	}
	m.items[it.ID] = it
	return it, nil
}

func (m *mockItemUC) Retry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Status != model.ItemStatusFailed {
		return domain.ErrNotRetryable
	}
	it.Status = model.ItemStatusPending
	m.retried = append(m.retried, id)
	return nil
}

func (m *mockItemUC) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type mockAnswerUC struct {
	answer *model.Answer
	err    error
	asked  []string
}

func (m *mockAnswerUC) Ask(ctx context.Context, query string) (*model.Answer, error) {
	if query == "" {
		return nil, domain.ErrInvalidArgument
	}
	m.asked = append(m.asked, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}
