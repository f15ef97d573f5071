package poller

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
)

// mockFetcher serves canned items per feed URL
type mockFetcher struct {
	mu        sync.Mutex
	fetchFunc func(ctx context.Context, url string) ([]domain.FeedItem, error)
	calls     []string
}

func (m *mockFetcher) FetchFeed(ctx context.Context, url string) ([]domain.FeedItem, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return nil, nil
}

// mockExtractor returns content derived from the item unless extractFunc says otherwise
type mockExtractor struct {
	mu          sync.Mutex
	extractFunc func(item domain.FeedItem) string
	calls       []string
}

func (m *mockExtractor) Extract(ctx context.Context, item domain.FeedItem) string {
	m.mu.Lock()
	m.calls = append(m.calls, item.ID())
	m.mu.Unlock()
	if m.extractFunc != nil {
		return m.extractFunc(item)
	}
	return "content of " + item.ID()
}

// mockStore keeps feeds and articles in memory; unimplemented methods panic
type mockStore struct {
	interfaces.FeedStore
	interfaces.ArticleStore

	mu         sync.Mutex
	feeds      map[int64]*domain.Feed
	articles   map[int64]*domain.Article
	byGUID     map[string]int64
	nextID     int64
	watermarks []string
	pruned     map[int64]int
	listErr    error
	// failInsert holds how many more inserts of a GUID should fail
	failInsert map[string]int
}

func newMockStore(feeds ...*domain.Feed) *mockStore {
	s := &mockStore{
		feeds:    map[int64]*domain.Feed{},
		articles: map[int64]*domain.Article{},
		byGUID:   map[string]int64{},
		pruned:   map[int64]int{},

		failInsert: map[string]int{},
	}
	for _, f := range feeds {
		s.feeds[f.ID] = f
	}
	return s
}

func (s *mockStore) ListFeeds(ctx context.Context, enabledOnly bool) ([]*domain.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*domain.Feed
	for _, f := range s.feeds {
		if enabledOnly && !f.Enabled {
			continue
		}
		copied := *f
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *mockStore) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feeds[id]
	if !ok {
		return nil, &coreerrors.NotFoundError{Resource: "feed", ID: "x"}
	}
	copied := *f
	return &copied, nil
}

func (s *mockStore) setFeed(f *domain.Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[f.ID] = f
}

func (s *mockStore) deleteFeed(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feeds, id)
}

func (s *mockStore) UpsertFeedWatermark(ctx context.Context, id int64, guid string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermarks = append(s.watermarks, guid)
	f := s.feeds[id]
	f.LastPolledItemGUID = guid
	f.LastSuccessfulPoll = &ts
	f.ErrorCount = 0
	return nil
}

func (s *mockStore) IncrementFeedErrorCount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[id].ErrorCount++
	return nil
}

func (s *mockStore) InsertArticleIfAbsent(ctx context.Context, a domain.NewArticle) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert[a.GUID] > 0 {
		s.failInsert[a.GUID]--
		return 0, false, errors.New("database is locked")
	}
	if id, ok := s.byGUID[a.GUID]; ok {
		return id, false, nil
	}
	s.nextID++
	s.articles[s.nextID] = &domain.Article{
		ID:                s.nextID,
		FeedID:            a.FeedID,
		GUID:              a.GUID,
		Link:              a.Link,
		Title:             a.Title,
		PublishedDate:     a.PublishedDate,
		ProcessingStatus:  a.Status,
		FullContentStatus: domain.FullContentNotApplicable,
	}
	s.byGUID[a.GUID] = s.nextID
	return s.nextID, true, nil
}

// seed inserts an existing article in the given status
func (s *mockStore) seed(guid string, status domain.ProcessingStatus) int64 {
	id, _, _ := s.InsertArticleIfAbsent(context.Background(), domain.NewArticle{GUID: guid, Link: guid, Status: status})
	return id
}

func (s *mockStore) article(guid string) *domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byGUID[guid]
	if !ok {
		return nil
	}
	return s.articles[id]
}

func (s *mockStore) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, &coreerrors.NotFoundError{Resource: "article", ID: "x"}
	}
	copied := *a
	return &copied, nil
}

func (s *mockStore) UpdateArticleArxivFields(ctx context.Context, id int64, arxivID string, status domain.FullContentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[id].ArxivID = arxivID
	s.articles[id].FullContentStatus = status
	return nil
}

func (s *mockStore) UpdateArticleStatus(ctx context.Context, id int64, status domain.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[id].ProcessingStatus = status
	return nil
}

func (s *mockStore) UpdateArticleContent(ctx context.Context, id int64, content string, status domain.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[id].RawContent = content
	s.articles[id].ProcessingStatus = status
	return nil
}

func (s *mockStore) PruneFeedArticles(ctx context.Context, feedID int64, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruned[feedID] = keep
	return 0, nil
}

// mockMetrics counts poll outcomes
type mockMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	ingested int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{outcomes: map[string]int{}}
}

func (m *mockMetrics) FeedPolled(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *mockMetrics) ArticlesIngested(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested += n
}

func (m *mockMetrics) PollDuration(float64)        {}
func (m *mockMetrics) LLMCall(string, bool, error) {}
func (m *mockMetrics) ArxivExtracted(string, bool) {}

// mockFeedPoller records polls per feed for scheduler tests
type mockFeedPoller struct {
	mu       sync.Mutex
	polls    map[int64]int
	pollFunc func(ctx context.Context, feed *domain.Feed) (int, error)
}

func newMockFeedPoller() *mockFeedPoller {
	return &mockFeedPoller{polls: map[int64]int{}}
}

func (m *mockFeedPoller) PollOne(ctx context.Context, feed *domain.Feed) (int, error) {
	m.mu.Lock()
	m.polls[feed.ID]++
	fn := m.pollFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, feed)
	}
	return 0, nil
}

func (m *mockFeedPoller) count(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls[id]
}

// sleepRecorder records requested waits and blocks until ctx is done
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
	block bool
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	block := r.block
	r.mu.Unlock()
	if !block {
		return ctx.Err()
	}
	<-ctx.Done()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}
