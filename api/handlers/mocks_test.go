package handlers

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	"aiml-digests/core/workers"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
)

type routeGroup interface {
	RegisterRoutes(api huma.API)
}

// newTestAPI mounts the groups on a chi router, matching the production adapter
func newTestAPI(t *testing.T, groups ...routeGroup) humatest.TestAPI {
	t.Helper()
	api := humatest.Wrap(t, humachi.New(chi.NewMux(), huma.DefaultConfig("Test API", "1.0.0")))
	for _, g := range groups {
		g.RegisterRoutes(api)
	}
	return api
}

// mockStore is an in-memory store; unimplemented methods panic through the nil embeds
type mockStore struct {
	interfaces.FeedStore
	interfaces.ArticleStore
	interfaces.FavoriteStore

	mu        sync.Mutex
	feeds     map[int64]*domain.Feed
	articles  map[int64]*domain.Article
	favorites map[int64]*domain.Favorite
	nextID    int64

	addErr       error
	updates      map[int64]domain.FeedUpdate
	toggleArgs   []*bool
	order        map[int64]int
	imported     []domain.FeedExport
	overwrite    bool
	lastFilter   domain.ArticleFilter
	lastQuery    string
	resetErr     error
	counts       map[domain.ProcessingStatus]int
	arxivStats   *domain.ArxivStats
	cleaned      int
	deletedFeeds []int64
}

func newMockStore() *mockStore {
	return &mockStore{
		feeds:     map[int64]*domain.Feed{},
		articles:  map[int64]*domain.Article{},
		favorites: map[int64]*domain.Favorite{},
		updates:   map[int64]domain.FeedUpdate{},
		nextID:    1,
	}
}

func notFound(resource string, id int64) error {
	return &coreerrors.NotFoundError{Resource: resource, ID: strconv.FormatInt(id, 10)}
}

func (m *mockStore) ListFeeds(ctx context.Context, enabledOnly bool) ([]*domain.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Feed
	for _, f := range m.feeds {
		if enabledOnly && !f.Enabled {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.feeds[id]
	if !ok {
		return nil, notFound("feed", id)
	}
	cp := *f
	return &cp, nil
}

func (m *mockStore) AddFeed(ctx context.Context, feed *domain.Feed) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return 0, m.addErr
	}
	feed.ID = m.nextID
	m.nextID++
	m.feeds[feed.ID] = feed
	return feed.ID, nil
}

func (m *mockStore) UpdateFeed(ctx context.Context, id int64, update domain.FeedUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.feeds[id]
	if !ok {
		return notFound("feed", id)
	}
	m.updates[id] = update
	if update.Name != nil {
		f.Name = *update.Name
	}
	return nil
}

func (m *mockStore) ToggleFeed(ctx context.Context, id int64, enabled *bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.feeds[id]
	if !ok {
		return false, notFound("feed", id)
	}
	m.toggleArgs = append(m.toggleArgs, enabled)
	if enabled != nil {
		f.Enabled = *enabled
	} else {
		f.Enabled = !f.Enabled
	}
	return f.Enabled, nil
}

func (m *mockStore) ReorderFeeds(ctx context.Context, order map[int64]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = order
	return nil
}

func (m *mockStore) DeleteFeed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.feeds[id]; !ok {
		return notFound("feed", id)
	}
	delete(m.feeds, id)
	m.deletedFeeds = append(m.deletedFeeds, id)
	return nil
}

func (m *mockStore) ExportFeeds(ctx context.Context) ([]domain.FeedExport, error) {
	feeds, _ := m.ListFeeds(ctx, false)
	var out []domain.FeedExport
	for _, f := range feeds {
		out = append(out, domain.FeedExport{URL: f.URL, Name: f.Name, Enabled: f.Enabled,
			PollingInterval: f.PollingInterval, MaxArticles: f.MaxArticles})
	}
	return out, nil
}

func (m *mockStore) ImportFeeds(ctx context.Context, feeds []domain.FeedExport, overwrite bool) (*domain.ImportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imported = feeds
	m.overwrite = overwrite
	for _, e := range feeds {
		f := &domain.Feed{ID: m.nextID, URL: e.URL, Name: e.Name, Enabled: e.Enabled}
		m.feeds[f.ID] = f
		m.nextID++
	}
	return &domain.ImportResult{Added: len(feeds)}, nil
}

func (m *mockStore) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, notFound("article", id)
	}
	return a, nil
}

func (m *mockStore) ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	return m.sortedArticles(), nil
}

func (m *mockStore) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = query
	return m.sortedArticles(), nil
}

func (m *mockStore) sortedArticles() []*domain.Article {
	var out []*domain.Article
	for _, a := range m.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockStore) DeleteArticle(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return notFound("article", id)
	}
	delete(m.articles, id)
	return nil
}

func (m *mockStore) ResetArticleStatus(ctx context.Context, id int64) (domain.ProcessingStatus, error) {
	if m.resetErr != nil {
		return "", m.resetErr
	}
	return domain.StatusPendingLLM, nil
}

func (m *mockStore) StatusCounts(ctx context.Context) (map[domain.ProcessingStatus]int, error) {
	return m.counts, nil
}

func (m *mockStore) ArxivStatistics(ctx context.Context) (*domain.ArxivStats, error) {
	return m.arxivStats, nil
}

func (m *mockStore) CleanOrphanedKeywords(ctx context.Context) (int, error) {
	return m.cleaned, nil
}

func (m *mockStore) AddFavorite(ctx context.Context, articleID int64, notes, tags string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[articleID]
	if !ok {
		return 0, notFound("article", articleID)
	}
	f := &domain.Favorite{ID: articleID, ArticleID: articleID, Notes: notes, Tags: tags, Article: a}
	m.favorites[articleID] = f
	return f.ID, nil
}

func (m *mockStore) UpdateFavorite(ctx context.Context, articleID int64, notes, tags string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.favorites[articleID]
	if !ok {
		return notFound("favorite", articleID)
	}
	f.Notes, f.Tags = notes, tags
	return nil
}

func (m *mockStore) RemoveFavorite(ctx context.Context, articleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.favorites[articleID]; !ok {
		return notFound("favorite", articleID)
	}
	delete(m.favorites, articleID)
	return nil
}

func (m *mockStore) IsFavorite(ctx context.Context, articleID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favorites[articleID]
	return ok, nil
}

func (m *mockStore) ListFavorites(ctx context.Context, tag string, limit, offset int) ([]*domain.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Favorite
	for _, f := range m.favorites {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) FavoriteTags(ctx context.Context) ([]string, error) {
	return nil, nil
}

// mockScheduler records reschedule calls
type mockScheduler struct {
	mu          sync.Mutex
	rescheduled []int64
	running     []int64
}

func (m *mockScheduler) Reschedule(ctx context.Context, feedID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rescheduled = append(m.rescheduled, feedID)
	return nil
}

func (m *mockScheduler) Running() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// mockTriggers returns canned errors
type mockTriggers struct {
	err        error
	batch      int
	continuous bool
	articleID  int64
}

func (m *mockTriggers) TriggerPollNow() error        { return m.err }
func (m *mockTriggers) TriggerProcessPending() error { return m.err }

func (m *mockTriggers) TriggerExtractArxiv(batch int, continuous bool) (int, error) {
	m.batch, m.continuous = batch, continuous
	if batch == 0 {
		batch = workers.DefaultArxivBatch
	}
	return batch, m.err
}

func (m *mockTriggers) TriggerExtractArxivArticle(ctx context.Context, articleID int64) error {
	m.articleID = articleID
	return m.err
}

func (m *mockTriggers) TriggerDeepSummary(ctx context.Context, articleID int64) error {
	m.articleID = articleID
	return m.err
}

// mockTasks reports fixed task state
type mockTasks struct {
	running []workers.TaskStatus
	results []workers.TaskResult
}

func (m *mockTasks) Running() []workers.TaskStatus { return m.running }
func (m *mockTasks) Results() []workers.TaskResult { return m.results }

// mockEnrichment reports fixed processor state
type mockEnrichment struct {
	enabled  bool
	inFlight []int64
}

func (m *mockEnrichment) Enabled() bool     { return m.enabled }
func (m *mockEnrichment) InFlight() []int64 { return m.inFlight }

// mockFetcher returns canned feed items per URL
type mockFetcher struct {
	items map[string][]domain.FeedItem
	err   error
}

func (m *mockFetcher) FetchFeed(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items[feedURL], nil
}
