// ABOUTME: Poller fetches feeds, walks new entries down to the watermark and ingests them as articles
// ABOUTME: PollAll fans out over enabled feeds with a bounded pool; one feed's failure never stops the rest

package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"aiml-digests/core/arxiv"
	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
	"aiml-digests/pkg/retry"
)

const (
	// DefaultConcurrency caps simultaneous feed polls in PollAll
	DefaultConcurrency = 5

	// DefaultEntryDelay separates the processing of consecutive new entries
	DefaultEntryDelay = 500 * time.Millisecond
)

// Poll outcomes reported to metrics
const (
	OutcomeSuccess   = "success"
	OutcomeUnchanged = "unchanged"
	OutcomeEmpty     = "empty"
	OutcomeError     = "error"
)

// ErrEmptyFeed is returned when a feed downloads fine but carries no entries
var ErrEmptyFeed = errors.New("feed has no entries")

// Store is the slice of persistence the poller needs
type Store interface {
	interfaces.FeedStore
	interfaces.ArticleStore
}

// Summary reports the outcome of a PollAll run
type Summary struct {
	Feeds       int `json:"feeds"`
	Failed      int `json:"failed"`
	NewArticles int `json:"new_articles"`
}

// Poller ingests feed entries into the store
type Poller struct {
	store       Store
	fetcher     interfaces.FeedFetcher
	extractor   interfaces.ContentExtractor
	deps        interfaces.Dependencies
	concurrency int
	entryDelay  time.Duration
	sleep       retry.SleepFunc
	now         func() time.Time
}

// Option configures a Poller
type Option func(*Poller)

// WithConcurrency sets the PollAll worker cap
func WithConcurrency(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithEntryDelay overrides the pause between entries; a nil sleep keeps the default
func WithEntryDelay(d time.Duration, sleep retry.SleepFunc) Option {
	return func(p *Poller) {
		p.entryDelay = d
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		p.now = now
	}
}

// NewPoller creates a poller
func NewPoller(store Store, fetcher interfaces.FeedFetcher, extractor interfaces.ContentExtractor, deps interfaces.Dependencies, opts ...Option) *Poller {
	p := &Poller{
		store:       store,
		fetcher:     fetcher,
		extractor:   extractor,
		deps:        deps.WithDefaults(),
		concurrency: DefaultConcurrency,
		entryDelay:  DefaultEntryDelay,
		sleep:       retry.Sleep,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PollAll polls every enabled feed with at most the configured number in flight
func (p *Poller) PollAll(ctx context.Context) (*Summary, error) {
	feeds, err := p.store.ListFeeds(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	summary := &Summary{Feeds: len(feeds)}
	if len(feeds) == 0 {
		p.deps.Logger.Info("No enabled feeds found", nil)
		return summary, nil
	}

	results := make([]int, len(feeds))
	failed := make([]bool, len(feeds))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, feed := range feeds {
		i, feed := i, feed
		g.Go(func() error {
			n, err := p.PollOne(ctx, feed)
			results[i] = n
			if err != nil {
				failed[i] = true
				p.deps.Logger.Error("Feed polling task error", map[string]interface{}{
					"feed_id": feed.ID,
					"feed":    feed.DisplayName(),
					"error":   err.Error(),
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range feeds {
		summary.NewArticles += results[i]
		if failed[i] {
			summary.Failed++
		}
	}
	p.deps.Logger.Info("Polled all feeds", map[string]interface{}{
		"feeds":        summary.Feeds,
		"failed":       summary.Failed,
		"new_articles": summary.NewArticles,
	})
	return summary, ctx.Err()
}

// PollOne fetches feed and ingests its entries newer than the watermark, newest first.
// The watermark is committed once, after the walk, with the newest new GUID. A fetch
// failure, an empty feed or an entry that cannot be stored counts one error against
// the feed and leaves the watermark alone, so the next poll sees the same entries.
func (p *Poller) PollOne(ctx context.Context, feed *domain.Feed) (int, error) {
	started := p.now()
	defer func() {
		p.deps.Metrics.PollDuration(p.now().Sub(started).Seconds())
	}()

	p.deps.Logger.Info("Polling feed", map[string]interface{}{
		"feed_id": feed.ID,
		"feed":    feed.DisplayName(),
		"url":     feed.URL,
	})

	items, err := p.fetcher.FetchFeed(ctx, feed.URL)
	if err == nil && len(items) == 0 {
		err = ErrEmptyFeed
	}
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		outcome := OutcomeError
		if errors.Is(err, ErrEmptyFeed) {
			outcome = OutcomeEmpty
		}
		p.deps.Metrics.FeedPolled(outcome)
		p.recordFeedError(ctx, feed.ID)
		return 0, fmt.Errorf("poll feed %q: %w", feed.DisplayName(), err)
	}

	fresh := NewEntries(items, feed.LastPolledItemGUID, p.now())
	if len(fresh) == 0 {
		p.deps.Metrics.FeedPolled(OutcomeUnchanged)
		p.deps.Logger.Info("No new items", map[string]interface{}{"feed": feed.DisplayName()})
		return 0, nil
	}

	inserted := 0
	for i := range fresh {
		if i > 0 {
			if err := p.sleep(ctx, p.entryDelay); err != nil {
				return inserted, err
			}
		}
		ok, err := p.ingest(ctx, feed, &fresh[i])
		if err != nil {
			if ctx.Err() != nil {
				return inserted, ctx.Err()
			}
			p.deps.Logger.Error("Failed to process feed entry", map[string]interface{}{
				"feed_id": feed.ID,
				"link":    fresh[i].Link,
				"error":   err.Error(),
			})
			p.deps.Metrics.FeedPolled(OutcomeError)
			p.recordFeedError(ctx, feed.ID)
			return inserted, fmt.Errorf("poll feed %q: %w", feed.DisplayName(), err)
		}
		if ok {
			inserted++
		}
	}

	if err := p.store.UpsertFeedWatermark(ctx, feed.ID, fresh[0].ID(), p.now()); err != nil {
		return inserted, fmt.Errorf("commit watermark: %w", err)
	}

	if feed.MaxArticles > 0 {
		if _, err := p.store.PruneFeedArticles(ctx, feed.ID, feed.MaxArticles); err != nil {
			p.deps.Logger.Warn("Failed to prune feed articles", map[string]interface{}{
				"feed_id": feed.ID,
				"error":   err.Error(),
			})
		}
	}

	p.deps.Metrics.FeedPolled(OutcomeSuccess)
	p.deps.Metrics.ArticlesIngested(inserted)
	p.deps.Logger.Info("Processed new items from feed", map[string]interface{}{
		"feed":      feed.DisplayName(),
		"new_items": len(fresh),
		"inserted":  inserted,
	})
	return inserted, nil
}

func (p *Poller) recordFeedError(ctx context.Context, feedID int64) {
	if err := p.store.IncrementFeedErrorCount(ctx, feedID); err != nil {
		p.deps.Logger.Error("Failed to record feed error", map[string]interface{}{
			"feed_id": feedID,
			"error":   err.Error(),
		})
	}
}

// NewEntries sorts items newest first and returns those above the watermark GUID.
// Items without an identity or a link are dropped.
func NewEntries(items []domain.FeedItem, watermark string, now time.Time) []domain.FeedItem {
	sorted := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		if item.IsValid() {
			sorted = append(sorted, item)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortTime(now).After(sorted[j].SortTime(now))
	})

	for i := range sorted {
		if watermark != "" && sorted[i].ID() == watermark {
			return sorted[:i]
		}
	}
	return sorted
}

// ingest stores one entry and extracts its content. It reports whether a new
// article row was created. Existing articles still waiting for content are
// extracted again; all others are left untouched.
func (p *Poller) ingest(ctx context.Context, feed *domain.Feed, item *domain.FeedItem) (bool, error) {
	published := item.SortTime(p.now())
	id, inserted, err := p.store.InsertArticleIfAbsent(ctx, domain.NewArticle{
		FeedID:        feed.ID,
		GUID:          item.ID(),
		Link:          item.Link,
		Title:         item.DisplayTitle(),
		PublishedDate: &published,
		Status:        domain.StatusPendingContent,
	})
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}

	if !inserted {
		existing, err := p.store.GetArticle(ctx, id)
		if err != nil {
			return false, err
		}
		if existing.ProcessingStatus != domain.StatusPendingContent {
			return false, nil
		}
		p.deps.Logger.Info("Re-extracting article left without content", map[string]interface{}{"article_id": id})
	}

	if arxivID, ok := arxiv.IDFromArticle(item.Link, item.GUID); ok && inserted {
		if err := p.store.UpdateArticleArxivFields(ctx, id, arxivID, domain.FullContentNotApplicable); err != nil {
			return inserted, fmt.Errorf("record arxiv id: %w", err)
		}
	}

	content := p.extractor.Extract(ctx, *item)
	if ctx.Err() != nil {
		return inserted, ctx.Err()
	}

	if content == "" {
		p.deps.Logger.Warn("Failed to extract content", map[string]interface{}{"title": item.DisplayTitle()})
		return inserted, p.store.UpdateArticleStatus(ctx, id, domain.StatusContentExtractionFailed)
	}

	if err := p.store.UpdateArticleContent(ctx, id, content, domain.StatusPendingLLM); err != nil {
		return inserted, err
	}
	p.deps.Logger.Debug("Updated article content", map[string]interface{}{
		"article_id": id,
		"title":      item.DisplayTitle(),
	})
	return inserted, nil
}
