package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "instance", "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addFeed(t *testing.T, s *Store, url string) int64 {
	t.Helper()
	feed, err := domain.NewFeed(url, "Feed "+url)
	require.NoError(t, err)
	id, err := s.AddFeed(context.Background(), feed)
	require.NoError(t, err)
	return id
}

func addArticle(t *testing.T, s *Store, feedID int64, guid, title, content string, published time.Time) int64 {
	t.Helper()
	id, inserted, err := s.InsertArticleIfAbsent(context.Background(), domain.NewArticle{
		FeedID:        feedID,
		GUID:          guid,
		Link:          "https://example.com/" + guid,
		Title:         title,
		PublishedDate: &published,
		RawContent:    content,
	})
	require.NoError(t, err)
	require.True(t, inserted)
	return id
}

func day(n int) time.Time {
	return time.Date(2024, 3, n, 12, 0, 0, 0, time.UTC)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestInsertArticleIfAbsent_IdempotentOnGUID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")

	first := addArticle(t, s, feedID, "g1", "Original title", "body", day(1))

	id, inserted, err := s.InsertArticleIfAbsent(ctx, domain.NewArticle{
		FeedID: feedID,
		GUID:   "g1",
		Link:   "https://example.com/other",
		Title:  "Replacement title",
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first, id)

	a, err := s.GetArticle(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Original title", a.Title)
	assert.Equal(t, "https://example.com/g1", a.Link)
	assert.Equal(t, domain.StatusPendingContent, a.ProcessingStatus)
	assert.Equal(t, domain.FullContentNotApplicable, a.FullContentStatus)
	assert.Equal(t, domain.DeepSummaryNotRequested, a.DeepSummaryStatus)
	assert.Equal(t, "Feed https://example.com/feed.xml", a.FeedName)
	require.NotNil(t, a.PublishedDate)
	assert.True(t, day(1).Equal(*a.PublishedDate))
}

func TestInsertArticleIfAbsent_GUIDFallsBackToLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, inserted, err := s.InsertArticleIfAbsent(ctx, domain.NewArticle{Link: "https://example.com/a", Title: "A"})
	require.NoError(t, err)
	assert.True(t, inserted)

	a, err := s.GetArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", a.GUID)
	assert.Nil(t, a.PublishedDate)

	_, _, err = s.InsertArticleIfAbsent(ctx, domain.NewArticle{GUID: "x"})
	assert.True(t, coreerrors.IsValidation(err))
}

func TestFeeds_AddDuplicateAndNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	addFeed(t, s, "https://example.com/feed.xml")

	dup, err := domain.NewFeed("https://example.com/feed.xml", "again")
	require.NoError(t, err)
	_, err = s.AddFeed(ctx, dup)
	assert.True(t, coreerrors.IsValidation(err))

	_, err = s.GetFeed(ctx, 999)
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestFeeds_WatermarkResetsErrorCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := addFeed(t, s, "https://example.com/feed.xml")

	require.NoError(t, s.IncrementFeedErrorCount(ctx, id))
	require.NoError(t, s.IncrementFeedErrorCount(ctx, id))
	f, err := s.GetFeed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, f.ErrorCount)
	assert.Nil(t, f.LastSuccessfulPoll)

	require.NoError(t, s.UpsertFeedWatermark(ctx, id, "newest", day(2)))
	f, err = s.GetFeed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, f.ErrorCount)
	assert.Equal(t, "newest", f.LastPolledItemGUID)
	require.NotNil(t, f.LastSuccessfulPoll)
	assert.True(t, day(2).Equal(*f.LastSuccessfulPoll))

	assert.True(t, coreerrors.IsNotFound(s.IncrementFeedErrorCount(ctx, 42)))
}

func TestFeeds_UpdateToggleReorder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := addFeed(t, s, "https://a.example.com/rss")
	b := addFeed(t, s, "https://b.example.com/rss")

	name := "Renamed"
	interval := 15
	require.NoError(t, s.UpdateFeed(ctx, a, domain.FeedUpdate{Name: &name, PollingInterval: &interval}))
	f, err := s.GetFeed(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", f.Name)
	assert.Equal(t, 15, f.PollingInterval)
	assert.Equal(t, domain.DefaultMaxArticles, f.MaxArticles)

	zero := 0
	err = s.UpdateFeed(ctx, a, domain.FeedUpdate{PollingInterval: &zero})
	assert.True(t, coreerrors.IsValidation(err))

	taken := "https://b.example.com/rss"
	err = s.UpdateFeed(ctx, a, domain.FeedUpdate{URL: &taken})
	assert.True(t, coreerrors.IsValidation(err))

	enabled, err := s.ToggleFeed(ctx, a, nil)
	require.NoError(t, err)
	assert.False(t, enabled)
	on := true
	enabled, err = s.ToggleFeed(ctx, a, &on)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, s.ReorderFeeds(ctx, map[int64]int{a: 2, b: 1}))
	feeds, err := s.ListFeeds(ctx, false)
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, b, feeds[0].ID)
	assert.Equal(t, a, feeds[1].ID)

	_, err = s.ToggleFeed(ctx, b, new(bool))
	require.NoError(t, err)
	enabledFeeds, err := s.ListFeeds(ctx, true)
	require.NoError(t, err)
	require.Len(t, enabledFeeds, 1)
	assert.Equal(t, a, enabledFeeds[0].ID)
}

func TestDeleteFeed_RemovesArticlesAndIndexRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	keep := addFeed(t, s, "https://keep.example.com/rss")
	drop := addFeed(t, s, "https://drop.example.com/rss")

	gone := addArticle(t, s, drop, "g-drop", "Quantization tricks", "int8 kernels", day(1))
	require.NoError(t, s.AddArticleKeywords(ctx, gone, []string{"Quantization"}))
	_, err := s.AddFavorite(ctx, gone, "note", "infra")
	require.NoError(t, err)
	kept := addArticle(t, s, keep, "g-keep", "Sparse attention", "long context", day(2))

	require.NoError(t, s.DeleteFeed(ctx, drop))

	_, err = s.GetArticle(ctx, gone)
	assert.True(t, coreerrors.IsNotFound(err))
	_, err = s.GetArticle(ctx, kept)
	assert.NoError(t, err)

	results, err := s.SearchArticles(ctx, "Quantization", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	removed, err := s.CleanOrphanedKeywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.True(t, coreerrors.IsNotFound(s.DeleteFeed(ctx, drop)))
}

func countRows(t *testing.T, s *Store, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestDeleteFeed_IsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	keep := addFeed(t, s, "https://keep.example.com/rss")
	drop := addFeed(t, s, "https://drop.example.com/rss")

	for i, guid := range []string{"q1", "q2", "q3"} {
		id := addArticle(t, s, drop, guid, "Quantization part "+guid, "int8 kernels", day(i+1))
		require.NoError(t, s.AddArticleKeywords(ctx, id, []string{"Quantization"}))
		if i == 0 {
			_, err := s.AddFavorite(ctx, id, "note", "infra")
			require.NoError(t, err)
		}
	}
	addArticle(t, s, keep, "k1", "Sparse attention", "long context", day(5))

	const (
		articles  = "SELECT COUNT(*) FROM articles WHERE feed_id = ?"
		keywords  = "SELECT COUNT(*) FROM article_keywords WHERE article_id IN (SELECT id FROM articles WHERE feed_id = ?)"
		favorites = "SELECT COUNT(*) FROM favorites WHERE article_id IN (SELECT id FROM articles WHERE feed_id = ?)"
		indexed   = "SELECT COUNT(*) FROM articles_fts WHERE articles_fts MATCH ?"
	)

	_, err := s.db.ExecContext(ctx, `CREATE TRIGGER block_feed_delete BEFORE DELETE ON feeds
		BEGIN SELECT RAISE(ABORT, 'feed delete blocked'); END`)
	require.NoError(t, err)

	err = s.DeleteFeed(ctx, drop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed delete blocked")

	assert.Equal(t, 3, countRows(t, s, articles, drop))
	assert.Equal(t, 3, countRows(t, s, keywords, drop))
	assert.Equal(t, 1, countRows(t, s, favorites, drop))
	assert.Equal(t, 3, countRows(t, s, indexed, "Quantization"))
	_, err = s.GetFeed(ctx, drop)
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, "DROP TRIGGER block_feed_delete")
	require.NoError(t, err)
	require.NoError(t, s.DeleteFeed(ctx, drop))

	assert.Zero(t, countRows(t, s, articles, drop))
	assert.Zero(t, countRows(t, s, "SELECT COUNT(*) FROM article_keywords WHERE article_id NOT IN (SELECT id FROM articles)"))
	assert.Zero(t, countRows(t, s, "SELECT COUNT(*) FROM favorites"))
	assert.Zero(t, countRows(t, s, indexed, "Quantization"))
	assert.Equal(t, 1, countRows(t, s, indexed, "attention"))

	_, err = s.db.ExecContext(ctx, "INSERT INTO articles_fts (articles_fts) VALUES ('integrity-check')")
	assert.NoError(t, err)
}

func TestSearchArticles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")

	byContent := addArticle(t, s, feedID, "g1", "Image generation", "We study diffusion models at scale.", day(1))
	bySummary := addArticle(t, s, feedID, "g2", "Robotics roundup", "", day(2))
	require.NoError(t, s.UpdateArticleSummary(ctx, bySummary, "A survey of diffusion policies.", "gpt-4o"))
	byKeyword := addArticle(t, s, feedID, "g3", "Weekly notes", "", day(3))
	require.NoError(t, s.AddArticleKeywords(ctx, byKeyword, []string{"Diffusion"}))
	addArticle(t, s, feedID, "g4", "Unrelated", "nothing here", day(4))

	results, err := s.SearchArticles(ctx, "diffusion", 10, 0)
	require.NoError(t, err)
	ids := make([]int64, 0, len(results))
	for _, a := range results {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int64{byKeyword, bySummary, byContent}, ids)

	_, err = s.SearchArticles(ctx, "  ", 10, 0)
	assert.True(t, coreerrors.IsValidation(err))

	_, err = s.SearchArticles(ctx, `say "hi" OR NOT`, 10, 0)
	assert.NoError(t, err)
	_, err = s.SearchArticles(ctx, `"`, 10, 0)
	assert.NoError(t, err)
}

func TestSearchIndexFollowsContentUpdatesAndDeletes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")
	id := addArticle(t, s, feedID, "g1", "Draft", "", day(1))

	require.NoError(t, s.UpdateArticleContent(ctx, id, "mixture of experts routing", domain.StatusPendingLLM))
	results, err := s.SearchArticles(ctx, "experts routing", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusPendingLLM, results[0].ProcessingStatus)

	require.NoError(t, s.DeleteArticle(ctx, id))
	results, err = s.SearchArticles(ctx, "experts routing", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.True(t, coreerrors.IsNotFound(s.DeleteArticle(ctx, id)))
}

func TestListArticles_FiltersAndSorts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := addFeed(t, s, "https://a.example.com/rss")
	b := addFeed(t, s, "https://b.example.com/rss")

	first := addArticle(t, s, a, "g1", "Beta", "", day(1))
	second := addArticle(t, s, a, "g2", "alpha", "", day(2))
	other := addArticle(t, s, b, "g3", "Gamma", "", day(3))
	require.NoError(t, s.AddArticleKeywords(ctx, first, []string{"agents", " RLHF ", ""}))
	require.NoError(t, s.UpdateArticleStatus(ctx, other, domain.StatusPendingLLM))

	all, err := s.ListArticles(ctx, domain.ArticleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other, all[0].ID)

	asc, err := s.ListArticles(ctx, domain.ArticleFilter{Sort: domain.SortDateAsc})
	require.NoError(t, err)
	assert.Equal(t, first, asc[0].ID)

	titles, err := s.ListArticles(ctx, domain.ArticleFilter{Sort: domain.SortTitleAsc})
	require.NoError(t, err)
	assert.Equal(t, second, titles[0].ID)

	byFeed, err := s.ListArticles(ctx, domain.ArticleFilter{FeedID: a, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, byFeed, 1)
	assert.Equal(t, first, byFeed[0].ID)

	byKeyword, err := s.ListArticles(ctx, domain.ArticleFilter{Keyword: "rlhf"})
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, []string{"agents", "rlhf"}, byKeyword[0].Keywords)

	byStatus, err := s.ListArticles(ctx, domain.ArticleFilter{Status: domain.StatusPendingLLM})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, other, byStatus[0].ID)

	assert.True(t, coreerrors.IsValidation(s.UpdateArticleStatus(ctx, other, "bogus")))
}

func TestSelectArticlesByStatus_OldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")
	ids := []int64{
		addArticle(t, s, feedID, "g1", "one", "", day(3)),
		addArticle(t, s, feedID, "g2", "two", "", day(1)),
		addArticle(t, s, feedID, "g3", "three", "", day(2)),
	}
	for _, id := range ids {
		require.NoError(t, s.UpdateArticleContent(ctx, id, strings.Repeat("x", 150), domain.StatusPendingLLM))
	}

	pending, err := s.SelectArticlesByStatus(ctx, domain.StatusPendingLLM, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[1], pending[1].ID)
}

func TestEnrichmentResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")
	ok := addArticle(t, s, feedID, "g1", "ok", "", day(1))
	bad := addArticle(t, s, feedID, "g2", "bad", "", day(2))

	require.NoError(t, s.UpdateArticleSummary(ctx, ok, "Short summary.", "gpt-4o"))
	require.NoError(t, s.UpdateArticleLLMError(ctx, bad, "Error generating summary: boom..."))

	a, err := s.GetArticle(ctx, ok)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, a.ProcessingStatus)
	assert.Equal(t, "gpt-4o", a.LLMModelUsed)
	assert.NotNil(t, a.LLMProcessedDate)

	a, err = s.GetArticle(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLLMError, a.ProcessingStatus)
	assert.Equal(t, "Error generating summary: boom...", a.Summary)

	assert.True(t, coreerrors.IsNotFound(s.UpdateArticleSummary(ctx, 999, "x", "m")))
	assert.True(t, coreerrors.IsNotFound(s.AddArticleKeywords(ctx, 999, []string{"x"})))
}

func TestResetArticleStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")

	tests := []struct {
		from    domain.ProcessingStatus
		want    domain.ProcessingStatus
		wantErr bool
	}{
		{domain.StatusContentExtractionFailed, domain.StatusPendingContent, false},
		{domain.StatusLLMError, domain.StatusPendingLLM, false},
		{domain.StatusProcessed, "", true},
		{domain.StatusInsufficientContent, "", true},
	}
	for i, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			id := addArticle(t, s, feedID, "reset-"+string(tt.from), "t", "", day(i+1))
			require.NoError(t, s.UpdateArticleStatus(ctx, id, tt.from))

			got, err := s.ResetArticleStatus(ctx, id)
			if tt.wantErr {
				assert.True(t, coreerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			a, err := s.GetArticle(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.ProcessingStatus)
		})
	}

	_, err := s.ResetArticleStatus(ctx, 999)
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestArxivAndDeepSummaryQueues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://export.arxiv.org/rss/cs.LG")

	insert := func(guid, link string, published time.Time) int64 {
		id, _, err := s.InsertArticleIfAbsent(ctx, domain.NewArticle{
			FeedID: feedID, GUID: guid, Link: link, Title: guid, PublishedDate: &published,
		})
		require.NoError(t, err)
		return id
	}
	older := insert("oai:arXiv.org:2401.00001", "https://arxiv.org/abs/2401.00001", day(1))
	newer := insert("n2", "https://ArXiv.org/abs/2401.00002v2", day(2))
	insert("n3", "https://example.com/blog", day(3))

	candidates, err := s.SelectArxivCandidates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, newer, candidates[0].ID)
	assert.Equal(t, older, candidates[1].ID)

	require.NoError(t, s.UpdateArticleArxivFields(ctx, newer, "2401.00002", domain.FullContentPending))
	require.NoError(t, s.UpdateArticleFullContent(ctx, newer, strings.Repeat("p", 12000), domain.FullContentExtracted))

	candidates, err = s.SelectArxivCandidates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, older, candidates[0].ID)

	deep, err := s.SelectDeepSummaryCandidates(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, deep)

	require.NoError(t, s.RequestDeepSummary(ctx, newer))
	deep, err = s.SelectDeepSummaryCandidates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, deep, 1)
	assert.Equal(t, "2401.00002", deep[0].ArxivID)
	assert.NotNil(t, deep[0].FullContentExtractedDate)

	require.NoError(t, s.UpdateDeepSummary(ctx, newer, "analysis", domain.DeepSummaryCompleted))
	deep, err = s.SelectDeepSummaryCandidates(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, deep)
}

func TestPruneFeedArticles_SparesFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")

	var ids []int64
	for i := 1; i <= 5; i++ {
		ids = append(ids, addArticle(t, s, feedID, "g"+string(rune('0'+i)), "t", "", day(i)))
	}
	_, err := s.AddFavorite(ctx, ids[0], "", "")
	require.NoError(t, err)

	deleted, err := s.PruneFeedArticles(ctx, feedID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := s.ListArticles(ctx, domain.ArticleFilter{FeedID: feedID})
	require.NoError(t, err)
	var got []int64
	for _, a := range remaining {
		got = append(got, a.ID)
	}
	assert.Equal(t, []int64{ids[4], ids[3], ids[0]}, got)

	deleted, err = s.PruneFeedArticles(ctx, feedID, 2)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestImportExportFeeds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	input := []domain.FeedExport{
		{URL: "https://a.example.com/rss", Name: "A", Enabled: true, PollingInterval: 10, MaxArticles: 50},
		{URL: "https://b.example.com/rss", Name: "B", Enabled: false, PollingInterval: 60, MaxArticles: 20, DisplayOrder: 1},
		{URL: "not a url", Name: "broken"},
	}
	result, err := s.ImportFeeds(ctx, input, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportResult{Added: 2, Errors: 1}, *result)

	result, err = s.ImportFeeds(ctx, input[:2], false)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportResult{Skipped: 2}, *result)

	changed := input[0]
	changed.Name = "A2"
	result, err = s.ImportFeeds(ctx, []domain.FeedExport{changed}, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportResult{Updated: 1}, *result)

	exported, err := s.ExportFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 2)
	assert.Equal(t, "A2", exported[0].Name)
	assert.Equal(t, 10, exported[0].PollingInterval)
	assert.Equal(t, input[1], exported[1])
}

func TestFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://example.com/feed.xml")
	a := addArticle(t, s, feedID, "g1", "Scaling laws", "", day(1))
	b := addArticle(t, s, feedID, "g2", "Tokenizers", "", day(2))

	first, err := s.AddFavorite(ctx, a, "read later", "llm, scaling")
	require.NoError(t, err)
	again, err := s.AddFavorite(ctx, a, "re-read", "llm")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	_, err = s.AddFavorite(ctx, b, "", "nlp,llm")
	require.NoError(t, err)

	_, err = s.AddFavorite(ctx, 999, "", "")
	assert.True(t, coreerrors.IsNotFound(err))

	fav, err := s.IsFavorite(ctx, a)
	require.NoError(t, err)
	assert.True(t, fav)

	tagged, err := s.ListFavorites(ctx, "nlp", 10, 0)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	require.NotNil(t, tagged[0].Article)
	assert.Equal(t, "Tokenizers", tagged[0].Article.Title)
	assert.True(t, tagged[0].Article.IsFavorite)

	all, err := s.ListFavorites(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tags, err := s.FavoriteTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"llm", "nlp"}, tags)

	require.NoError(t, s.UpdateFavorite(ctx, a, "done", "archive"))
	require.NoError(t, s.RemoveFavorite(ctx, b))
	assert.True(t, coreerrors.IsNotFound(s.RemoveFavorite(ctx, b)))
	assert.True(t, coreerrors.IsNotFound(s.UpdateFavorite(ctx, b, "", "")))

	tags, err = s.FavoriteTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive"}, tags)
}

func TestStatusCountsAndArxivStatistics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	feedID := addFeed(t, s, "https://export.arxiv.org/rss/cs.CL")

	now := time.Now().UTC()
	full := addArticle(t, s, feedID, "p1", "Paper one", "", now)
	abstract := addArticle(t, s, feedID, "p2", "Paper two", "", now.Add(-30*24*time.Hour))
	addArticle(t, s, feedID, "blog", "Blog", "", now)

	require.NoError(t, s.UpdateArticleArxivFields(ctx, full, "2401.00001", domain.FullContentPending))
	require.NoError(t, s.UpdateArticleFullContent(ctx, full, strings.Repeat("f", 12000), domain.FullContentExtracted))
	require.NoError(t, s.UpdateDeepSummary(ctx, full, "analysis", domain.DeepSummaryCompleted))
	require.NoError(t, s.UpdateArticleArxivFields(ctx, abstract, "2401.00002", domain.FullContentPending))
	require.NoError(t, s.UpdateArticleFullContent(ctx, abstract, strings.Repeat("a", 900), domain.FullContentExtracted))
	require.NoError(t, s.UpdateArticleStatus(ctx, abstract, domain.StatusProcessed))

	counts, err := s.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.StatusPendingContent])
	assert.Equal(t, 1, counts[domain.StatusProcessed])

	stats, err := s.ArxivStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalArxiv)
	assert.Equal(t, 1, stats.FullPapers)
	assert.Equal(t, 1, stats.AbstractsOnly)
	assert.Equal(t, 1, stats.RecentWeek)
	assert.Equal(t, 2, stats.ByFullContentStatus[domain.FullContentExtracted])
	assert.Equal(t, 1, stats.ByDeepSummaryStatus[domain.DeepSummaryCompleted])
	assert.Equal(t, 1, stats.ByDeepSummaryStatus[domain.DeepSummaryNotRequested])
	require.Len(t, stats.Feeds, 1)
	assert.Equal(t, domain.FeedArxivBreakdown{
		FeedID:    feedID,
		FeedName:  "Feed https://export.arxiv.org/rss/cs.CL",
		Total:     2,
		Extracted: 2,
		Analyzed:  1,
	}, stats.Feeds[0])
}
