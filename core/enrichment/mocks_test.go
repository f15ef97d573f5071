package enrichment

import (
	"context"
	"errors"
	"sync"
	"time"

	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
)

// mockLLM counts calls and answers through completeFunc
type mockLLM struct {
	mu           sync.Mutex
	disabled     bool
	requests     []interfaces.ChatRequest
	completeFunc func(ctx context.Context, req interfaces.ChatRequest) (string, error)
}

func (m *mockLLM) Complete(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.completeFunc
	m.mu.Unlock()
	if fn == nil {
		return "ok", nil
	}
	return fn(ctx, req)
}

func (m *mockLLM) Enabled() bool { return !m.disabled }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// memCache is an in-memory interfaces.Cache
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type deepUpdate struct {
	id      int64
	summary string
	status  domain.DeepSummaryStatus
}

// mockStore records enrichment writes; unimplemented methods panic through the embedded nil interface
type mockStore struct {
	interfaces.ArticleStore

	mu        sync.Mutex
	pending   []*domain.Article
	deep      []*domain.Article
	articles  map[int64]*domain.Article
	statuses  map[int64]domain.ProcessingStatus
	summaries map[int64]string
	llmErrors map[int64]string
	keywords  map[int64][]string
	deepCalls []deepUpdate
	requested []int64

	// sticky keeps serving pending instead of handing it out once
	sticky     bool
	selects    int
	summaryErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		articles:  map[int64]*domain.Article{},
		statuses:  map[int64]domain.ProcessingStatus{},
		summaries: map[int64]string{},
		llmErrors: map[int64]string{},
		keywords:  map[int64][]string{},
	}
}

func (s *mockStore) SelectArticlesByStatus(ctx context.Context, status domain.ProcessingStatus, limit int) ([]*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selects++
	out := s.pending
	if !s.sticky {
		s.pending = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *mockStore) SelectDeepSummaryCandidates(ctx context.Context, limit int) ([]*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.deep
	s.deep = nil
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *mockStore) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, errors.New("article not found")
	}
	copied := *a
	return &copied, nil
}

func (s *mockStore) UpdateArticleStatus(ctx context.Context, id int64, status domain.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	return nil
}

func (s *mockStore) UpdateArticleSummary(ctx context.Context, id int64, summary, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summaryErr != nil {
		return s.summaryErr
	}
	s.summaries[id] = summary
	s.statuses[id] = domain.StatusProcessed
	return nil
}

func (s *mockStore) UpdateArticleLLMError(ctx context.Context, id int64, placeholder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llmErrors[id] = placeholder
	s.statuses[id] = domain.StatusLLMError
	return nil
}

func (s *mockStore) AddArticleKeywords(ctx context.Context, id int64, keywords []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords[id] = append(s.keywords[id], keywords...)
	return nil
}

func (s *mockStore) UpdateDeepSummary(ctx context.Context, id int64, summary string, status domain.DeepSummaryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deepCalls = append(s.deepCalls, deepUpdate{id: id, summary: summary, status: status})
	return nil
}

func (s *mockStore) RequestDeepSummary(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = append(s.requested, id)
	return nil
}
