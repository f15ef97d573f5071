// ABOUTME: ArXiv runner moves candidate articles through full-content extraction
// ABOUTME: Supports a single bounded batch or continuous draining of the candidate queue

package arxiv

import (
	"context"
	"time"

	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
	"aiml-digests/pkg/retry"
)

// TextFetcher retrieves the full text of a paper
type TextFetcher interface {
	FetchFullText(ctx context.Context, id string) (string, Source, error)
}

// Pacing holds the politeness delays between requests to arxiv.org
type Pacing struct {
	BatchArticle      time.Duration
	ContinuousArticle time.Duration
	BetweenBatches    time.Duration
}

// DefaultPacing matches arxiv.org's guidance for API clients
var DefaultPacing = Pacing{
	BatchArticle:      500 * time.Millisecond,
	ContinuousArticle: 300 * time.Millisecond,
	BetweenBatches:    2 * time.Second,
}

const progressEvery = 50

// Runner processes ArXiv extraction candidates
type Runner struct {
	store   interfaces.ArticleStore
	fetcher TextFetcher
	deps    interfaces.Dependencies
	pacing  Pacing
	sleep   retry.SleepFunc
}

// NewRunner creates a runner with default pacing
func NewRunner(store interfaces.ArticleStore, fetcher TextFetcher, deps interfaces.Dependencies) *Runner {
	return &Runner{
		store:   store,
		fetcher: fetcher,
		deps:    deps.WithDefaults(),
		pacing:  DefaultPacing,
		sleep:   retry.Sleep,
	}
}

// SetPacing overrides the delays; a nil sleep keeps the current one
func (r *Runner) SetPacing(p Pacing, sleep retry.SleepFunc) {
	r.pacing = p
	if sleep != nil {
		r.sleep = sleep
	}
}

// ProcessArticle detects the article's ArXiv ID and extracts its full text.
// Fetch failures are recorded as the failed status and are not returned;
// only store errors and cancellation are.
func (r *Runner) ProcessArticle(ctx context.Context, article *domain.Article) error {
	arxivID, ok := IDFromArticle(article.Link, article.GUID)
	if !ok {
		return r.store.UpdateArticleArxivFields(ctx, article.ID, "", domain.FullContentNotApplicable)
	}

	r.deps.Logger.Info("Found ArXiv ID", map[string]interface{}{
		"article_id": article.ID,
		"arxiv_id":   arxivID,
	})

	if err := r.store.UpdateArticleArxivFields(ctx, article.ID, arxivID, domain.FullContentPending); err != nil {
		return err
	}

	content, source, err := r.fetcher.FetchFullText(ctx, arxivID)
	if err != nil {
		if ctx.Err() != nil {
			// put the article back in the candidate queue
			_ = r.store.UpdateArticleArxivFields(context.WithoutCancel(ctx), article.ID, arxivID, domain.FullContentNotApplicable)
			return ctx.Err()
		}

		r.deps.Logger.Warn("Failed to extract ArXiv content", map[string]interface{}{
			"article_id": article.ID,
			"arxiv_id":   arxivID,
			"error":      err.Error(),
		})
		r.deps.Metrics.ArxivExtracted("none", false)
		return r.store.UpdateArticleArxivFields(ctx, article.ID, arxivID, domain.FullContentFailed)
	}

	if err := r.store.UpdateArticleFullContent(ctx, article.ID, content, domain.FullContentExtracted); err != nil {
		return err
	}
	r.deps.Metrics.ArxivExtracted(string(source), true)
	r.deps.Logger.Info("Extracted ArXiv content", map[string]interface{}{
		"article_id": article.ID,
		"arxiv_id":   arxivID,
		"source":     string(source),
		"chars":      len(content),
	})
	return nil
}

// RunBatch processes up to limit candidates once and returns how many were processed
func (r *Runner) RunBatch(ctx context.Context, limit int) (int, error) {
	articles, err := r.store.SelectArxivCandidates(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		r.deps.Logger.Info("No articles found for ArXiv extraction", nil)
		return 0, nil
	}

	r.deps.Logger.Info("Processing ArXiv batch", map[string]interface{}{
		"count":      len(articles),
		"batch_size": limit,
	})

	processed := 0
	for i, article := range articles {
		if i > 0 {
			if err := r.sleep(ctx, r.pacing.BatchArticle); err != nil {
				return processed, err
			}
		}
		if err := r.ProcessArticle(ctx, article); err != nil {
			if ctx.Err() != nil {
				return processed, ctx.Err()
			}
			r.logArticleError(article.ID, err)
			continue
		}
		processed++
	}

	r.deps.Logger.Info("Completed ArXiv batch", map[string]interface{}{"processed": processed})
	return processed, nil
}

// RunContinuous drains the candidate queue batch by batch. An article that
// stays a candidate after processing (an arxiv.org link without a paper ID)
// is not retried within the same run, so the run always terminates.
func (r *Runner) RunContinuous(ctx context.Context, batchSize int) (int, error) {
	seen := make(map[int64]struct{})
	total := 0
	batches := 0

	r.deps.Logger.Info("Starting continuous ArXiv extraction", map[string]interface{}{
		"batch_size": batchSize,
	})

	for {
		candidates, err := r.store.SelectArxivCandidates(ctx, batchSize)
		if err != nil {
			return total, err
		}

		var articles []*domain.Article
		for _, a := range candidates {
			if _, ok := seen[a.ID]; !ok {
				articles = append(articles, a)
			}
		}
		if len(articles) == 0 {
			r.deps.Logger.Info("Continuous ArXiv extraction complete", map[string]interface{}{
				"processed": total,
				"batches":   batches,
			})
			return total, nil
		}
		batches++

		batchProcessed := 0
		for i, article := range articles {
			seen[article.ID] = struct{}{}
			if i > 0 {
				if err := r.sleep(ctx, r.pacing.ContinuousArticle); err != nil {
					return total, err
				}
			}
			if err := r.ProcessArticle(ctx, article); err != nil {
				if ctx.Err() != nil {
					return total, ctx.Err()
				}
				r.logArticleError(article.ID, err)
				continue
			}
			total++
			batchProcessed++
			if total%progressEvery == 0 {
				r.deps.Logger.Info("ArXiv extraction progress", map[string]interface{}{"processed": total})
			}
		}

		r.deps.Logger.Info("ArXiv batch complete", map[string]interface{}{
			"batch":     batches,
			"processed": batchProcessed,
		})

		if batchProcessed > 0 {
			if err := r.sleep(ctx, r.pacing.BetweenBatches); err != nil {
				return total, err
			}
		}
	}
}

func (r *Runner) logArticleError(id int64, err error) {
	r.deps.Logger.Error("Error processing ArXiv article", map[string]interface{}{
		"article_id": id,
		"error":      err.Error(),
	})
}
