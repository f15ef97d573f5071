package arxiv

import (
	"context"
	"io"
	"strings"
	"sync"

	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
)

// mockHTTPClient is a mock implementation of the HTTPClient interface
type mockHTTPClient struct {
	getFunc  func(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error)
	postFunc func(ctx context.Context, url string, body io.Reader, headers map[string]string) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, url, headers)
	}
	return nil, nil
}

func (m *mockHTTPClient) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (interfaces.Response, error) {
	if m.postFunc != nil {
		return m.postFunc(ctx, url, body, headers)
	}
	return nil, nil
}

// mockResponse is a mock implementation of the Response interface
type mockResponse struct {
	statusCode int
	body       string
	headers    map[string]string
}

func (m *mockResponse) StatusCode() int {
	return m.statusCode
}

func (m *mockResponse) Body() io.ReadCloser {
	return io.NopCloser(strings.NewReader(m.body))
}

func (m *mockResponse) Header(key string) string {
	if m.headers != nil {
		return m.headers[key]
	}
	return ""
}

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct {
	debugFunc func(msg string, fields map[string]interface{})
	infoFunc  func(msg string, fields map[string]interface{})
	warnFunc  func(msg string, fields map[string]interface{})
	errorFunc func(msg string, fields map[string]interface{})
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {
	if m.debugFunc != nil {
		m.debugFunc(msg, fields)
	}
}

func (m *mockLogger) Info(msg string, fields map[string]interface{}) {
	if m.infoFunc != nil {
		m.infoFunc(msg, fields)
	}
}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	if m.warnFunc != nil {
		m.warnFunc(msg, fields)
	}
}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	if m.errorFunc != nil {
		m.errorFunc(msg, fields)
	}
}

// mockStore implements the ArticleStore methods the runner uses; anything else panics
type mockStore struct {
	interfaces.ArticleStore

	mu         sync.Mutex
	candidates func(limit int) []*domain.Article
	arxivCalls []arxivUpdate
	contents   map[int64]string
	updateErr  error
}

type arxivUpdate struct {
	id      int64
	arxivID string
	status  domain.FullContentStatus
}

func newMockStore() *mockStore {
	return &mockStore{contents: make(map[int64]string)}
}

func (m *mockStore) SelectArxivCandidates(ctx context.Context, limit int) ([]*domain.Article, error) {
	if m.candidates == nil {
		return nil, nil
	}
	return m.candidates(limit), nil
}

func (m *mockStore) UpdateArticleArxivFields(ctx context.Context, id int64, arxivID string, status domain.FullContentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arxivCalls = append(m.arxivCalls, arxivUpdate{id: id, arxivID: arxivID, status: status})
	return m.updateErr
}

func (m *mockStore) UpdateArticleFullContent(ctx context.Context, id int64, content string, status domain.FullContentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[id] = content
	m.arxivCalls = append(m.arxivCalls, arxivUpdate{id: id, status: status})
	return m.updateErr
}

// mockFetcher returns canned text per ArXiv ID
type mockFetcher struct {
	fetchFunc func(ctx context.Context, id string) (string, Source, error)
	calls     []string
}

func (m *mockFetcher) FetchFullText(ctx context.Context, id string) (string, Source, error) {
	m.calls = append(m.calls, id)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, id)
	}
	return "paper text", SourceHTML, nil
}
