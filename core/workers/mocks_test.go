package workers

import (
	"context"
	"sync"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	"aiml-digests/core/poller"
)

type mockPoller struct {
	mu    sync.Mutex
	calls int
	block chan struct{}
}

func (m *mockPoller) PollAll(ctx context.Context) (*poller.Summary, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &poller.Summary{}, nil
}

type mockEnricher struct {
	mu       sync.Mutex
	disabled bool
	batches  []int
	deep     []int64
}

func (m *mockEnricher) Enabled() bool { return !m.disabled }

func (m *mockEnricher) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (m *mockEnricher) RunOnce(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.batches) == 0 {
		return 0, nil
	}
	n := m.batches[0]
	m.batches = m.batches[1:]
	return n, nil
}

func (m *mockEnricher) GenerateDeepSummaryFor(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deep = append(m.deep, id)
	return nil
}

func (m *mockEnricher) remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockEnricher) deepCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.deep...)
}

type arxivCall struct {
	mode  string
	limit int
	id    int64
}

type mockArxiv struct {
	mu    sync.Mutex
	calls []arxivCall
}

func (m *mockArxiv) record(c arxivCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *mockArxiv) ProcessArticle(ctx context.Context, a *domain.Article) error {
	m.record(arxivCall{mode: "article", id: a.ID})
	return nil
}

func (m *mockArxiv) RunBatch(ctx context.Context, limit int) (int, error) {
	m.record(arxivCall{mode: "batch", limit: limit})
	return 0, nil
}

func (m *mockArxiv) RunContinuous(ctx context.Context, batchSize int) (int, error) {
	m.record(arxivCall{mode: "continuous", limit: batchSize})
	return 0, nil
}

func (m *mockArxiv) recorded() []arxivCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]arxivCall(nil), m.calls...)
}

// mockStore serves articles by ID; other methods panic
type mockStore struct {
	interfaces.ArticleStore
	articles map[int64]*domain.Article
}

func (m *mockStore) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	a, ok := m.articles[id]
	if !ok {
		return nil, &coreerrors.NotFoundError{Resource: "article", ID: "x"}
	}
	return a, nil
}

// queueStore serves one pending_llm article until its status changes
type queueStore struct {
	interfaces.ArticleStore

	mu      sync.Mutex
	article *domain.Article
	selects int
}

func (q *queueStore) SelectArticlesByStatus(ctx context.Context, status domain.ProcessingStatus, limit int) ([]*domain.Article, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.selects++
	if q.article.ProcessingStatus != status {
		return nil, nil
	}
	copied := *q.article
	return []*domain.Article{&copied}, nil
}

func (q *queueStore) SelectDeepSummaryCandidates(ctx context.Context, limit int) ([]*domain.Article, error) {
	return nil, nil
}

func (q *queueStore) UpdateArticleSummary(ctx context.Context, id int64, summary, model string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.article.Summary = summary
	q.article.ProcessingStatus = domain.StatusProcessed
	return nil
}

func (q *queueStore) AddArticleKeywords(ctx context.Context, id int64, keywords []string) error {
	return nil
}

func (q *queueStore) selectCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.selects
}

// gatedLLM blocks its first completion until release is closed
type gatedLLM struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func newGatedLLM() *gatedLLM {
	return &gatedLLM{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedLLM) Complete(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		close(g.entered)
		<-g.release
	}
	return "summary, keywords", nil
}

func (g *gatedLLM) Enabled() bool { return true }

func (g *gatedLLM) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
