// ABOUTME: Store contract for feeds, articles, keywords and favorites
// ABOUTME: Status-filtered selectors double as the work queues of the pipeline

package interfaces

import (
	"context"
	"time"

	"aiml-digests/core/domain"
)

// FeedStore persists feeds and their polling state
type FeedStore interface {
	// ListFeeds returns feeds ordered by display order; enabledOnly filters disabled feeds
	ListFeeds(ctx context.Context, enabledOnly bool) ([]*domain.Feed, error)

	// GetFeed returns a NotFoundError when the feed does not exist
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)

	AddFeed(ctx context.Context, feed *domain.Feed) (int64, error)
	UpdateFeed(ctx context.Context, id int64, update domain.FeedUpdate) error
	ToggleFeed(ctx context.Context, id int64, enabled *bool) (bool, error)
	ReorderFeeds(ctx context.Context, order map[int64]int) error

	// UpsertFeedWatermark commits the watermark and resets the error counter
	UpsertFeedWatermark(ctx context.Context, id int64, guid string, ts time.Time) error

	// IncrementFeedErrorCount adds exactly one to the feed's error counter
	IncrementFeedErrorCount(ctx context.Context, id int64) error

	// DeleteFeed removes the feed and all of its articles in one transaction
	DeleteFeed(ctx context.Context, id int64) error

	ExportFeeds(ctx context.Context) ([]domain.FeedExport, error)
	ImportFeeds(ctx context.Context, feeds []domain.FeedExport, overwrite bool) (*domain.ImportResult, error)
}

// ArticleStore persists articles and exposes the status queues
type ArticleStore interface {
	// InsertArticleIfAbsent is idempotent on GUID: an existing GUID returns its ID,
	// inserted=false, and no column is overwritten.
	InsertArticleIfAbsent(ctx context.Context, a domain.NewArticle) (id int64, inserted bool, err error)

	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]*domain.Article, error)
	SearchArticles(ctx context.Context, query string, limit, offset int) ([]*domain.Article, error)

	UpdateArticleContent(ctx context.Context, id int64, content string, status domain.ProcessingStatus) error
	UpdateArticleStatus(ctx context.Context, id int64, status domain.ProcessingStatus) error

	// UpdateArticleSummary stores the summary and marks the article processed
	UpdateArticleSummary(ctx context.Context, id int64, summary, model string) error

	// UpdateArticleLLMError stores an error placeholder summary and marks the article llm_error
	UpdateArticleLLMError(ctx context.Context, id int64, placeholder string) error

	AddArticleKeywords(ctx context.Context, id int64, keywords []string) error
	UpdateArticleArxivFields(ctx context.Context, id int64, arxivID string, status domain.FullContentStatus) error
	UpdateArticleFullContent(ctx context.Context, id int64, content string, status domain.FullContentStatus) error
	UpdateDeepSummary(ctx context.Context, id int64, summary string, status domain.DeepSummaryStatus) error

	// RequestDeepSummary marks the article pending for deep summary generation
	RequestDeepSummary(ctx context.Context, id int64) error

	// ResetArticleStatus moves a retryable terminal article back into its queue
	ResetArticleStatus(ctx context.Context, id int64) (domain.ProcessingStatus, error)

	SelectArticlesByStatus(ctx context.Context, status domain.ProcessingStatus, limit int) ([]*domain.Article, error)
	SelectArxivCandidates(ctx context.Context, limit int) ([]*domain.Article, error)
	SelectDeepSummaryCandidates(ctx context.Context, limit int) ([]*domain.Article, error)

	// DeleteArticle removes keyword links, the search index row and the article atomically
	DeleteArticle(ctx context.Context, id int64) error

	// PruneFeedArticles deletes all but the newest keep articles of a feed, sparing favorites
	PruneFeedArticles(ctx context.Context, feedID int64, keep int) (int, error)

	StatusCounts(ctx context.Context) (map[domain.ProcessingStatus]int, error)
	ArxivStatistics(ctx context.Context) (*domain.ArxivStats, error)
	CleanOrphanedKeywords(ctx context.Context) (int, error)
}

// FavoriteStore persists favorites
type FavoriteStore interface {
	AddFavorite(ctx context.Context, articleID int64, notes, tags string) (int64, error)
	UpdateFavorite(ctx context.Context, articleID int64, notes, tags string) error
	RemoveFavorite(ctx context.Context, articleID int64) error
	IsFavorite(ctx context.Context, articleID int64) (bool, error)
	ListFavorites(ctx context.Context, tag string, limit, offset int) ([]*domain.Favorite, error)
	FavoriteTags(ctx context.Context) ([]string, error)
}

// Store is the full persistence contract
type Store interface {
	FeedStore
	ArticleStore
	FavoriteStore

	Close() error
}
