// ABOUTME: Manual triggers start pipeline stages as named background tasks and return immediately
// ABOUTME: Input is validated synchronously so callers get errors before anything is launched

package workers

import (
	"context"
	"fmt"

	"aiml-digests/core/arxiv"
	"aiml-digests/core/domain"
	"aiml-digests/core/enrichment"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	"aiml-digests/core/poller"
)

// Task names
const (
	TaskPollAll        = "poll_all"
	TaskProcessPending = "process_pending"
	TaskEnrichmentLoop = "enrichment_loop"
	TaskArxiv          = "arxiv_extraction"
)

// ArxivArticleTask names the single-article ArXiv extraction task
func ArxivArticleTask(articleID int64) string {
	return fmt.Sprintf("arxiv_article:%d", articleID)
}

// DeepSummaryTask names the single-article deep summary task
func DeepSummaryTask(articleID int64) string {
	return fmt.Sprintf("deep_summary:%d", articleID)
}

// ArXiv manual batch bounds
const (
	DefaultArxivBatch = 100
	MinArxivBatch     = 10
	MaxArxivBatch     = 1000
)

// FeedPoller polls every enabled feed once
type FeedPoller interface {
	PollAll(ctx context.Context) (*poller.Summary, error)
}

// Enricher is the LLM enrichment processor
type Enricher interface {
	Enabled() bool
	Run(ctx context.Context) error
	RunOnce(ctx context.Context) (int, error)
	GenerateDeepSummaryFor(ctx context.Context, articleID int64) error
}

// ArxivRunner extracts ArXiv full texts
type ArxivRunner interface {
	ProcessArticle(ctx context.Context, article *domain.Article) error
	RunBatch(ctx context.Context, limit int) (int, error)
	RunContinuous(ctx context.Context, batchSize int) (int, error)
}

// Triggers wires pipeline stages to the task manager
type Triggers struct {
	manager   *Manager
	store     interfaces.ArticleStore
	poller    FeedPoller
	processor Enricher
	arxiv     ArxivRunner
	deps      interfaces.Dependencies
}

// NewTriggers creates the trigger set
func NewTriggers(manager *Manager, store interfaces.ArticleStore, feeds FeedPoller, processor Enricher, runner ArxivRunner, deps interfaces.Dependencies) *Triggers {
	return &Triggers{
		manager:   manager,
		store:     store,
		poller:    feeds,
		processor: processor,
		arxiv:     runner,
		deps:      deps.WithDefaults(),
	}
}

// Manager returns the underlying task manager
func (t *Triggers) Manager() *Manager {
	return t.manager
}

// TriggerPollNow polls every enabled feed once in the background
func (t *Triggers) TriggerPollNow() error {
	return t.manager.Start(TaskPollAll, func(ctx context.Context) error {
		_, err := t.poller.PollAll(ctx)
		return err
	})
}

// TriggerProcessPending drains the enrichment queues once in the background. The task
// ends at the first cycle that settles nothing, which includes a queue whose articles
// are all held by the enrichment loop.
func (t *Triggers) TriggerProcessPending() error {
	if !t.processor.Enabled() {
		return enrichment.ErrDisabled
	}
	return t.manager.Start(TaskProcessPending, func(ctx context.Context) error {
		total := 0
		for {
			n, err := t.processor.RunOnce(ctx)
			if err != nil {
				return err
			}
			if n == 0 || ctx.Err() != nil {
				t.deps.Logger.Info("Pending articles processed", map[string]interface{}{"articles": total})
				return ctx.Err()
			}
			total += n
		}
	})
}

// StartEnrichmentLoop runs the enrichment loop until the manager stops
func (t *Triggers) StartEnrichmentLoop() error {
	if !t.processor.Enabled() {
		return enrichment.ErrDisabled
	}
	return t.manager.Start(TaskEnrichmentLoop, t.processor.Run)
}

// ClampArxivBatch applies the manual batch bounds; non-positive selects the default
func ClampArxivBatch(n int) int {
	switch {
	case n <= 0:
		return DefaultArxivBatch
	case n < MinArxivBatch:
		return MinArxivBatch
	case n > MaxArxivBatch:
		return MaxArxivBatch
	}
	return n
}

// TriggerExtractArxiv starts an ArXiv run and returns the batch size actually used
func (t *Triggers) TriggerExtractArxiv(batch int, continuous bool) (int, error) {
	batch = ClampArxivBatch(batch)
	err := t.manager.Start(TaskArxiv, func(ctx context.Context) error {
		var err error
		if continuous {
			_, err = t.arxiv.RunContinuous(ctx, batch)
		} else {
			_, err = t.arxiv.RunBatch(ctx, batch)
		}
		return err
	})
	return batch, err
}

// TriggerExtractArxivArticle extracts the full text of one ArXiv article in the background
func (t *Triggers) TriggerExtractArxivArticle(ctx context.Context, articleID int64) error {
	article, err := t.store.GetArticle(ctx, articleID)
	if err != nil {
		return err
	}
	if !arxiv.IsCandidateURL(article.Link) && !arxiv.IsCandidateURL(article.GUID) {
		return &coreerrors.ValidationError{Field: "link", Message: "not an ArXiv article"}
	}
	return t.manager.Start(ArxivArticleTask(articleID), func(ctx context.Context) error {
		return t.arxiv.ProcessArticle(ctx, article)
	})
}

// TriggerDeepSummary generates the deep summary of one article in the background
func (t *Triggers) TriggerDeepSummary(ctx context.Context, articleID int64) error {
	if !t.processor.Enabled() {
		return enrichment.ErrDisabled
	}
	article, err := t.store.GetArticle(ctx, articleID)
	if err != nil {
		return err
	}
	if article.FullContentStatus != domain.FullContentExtracted {
		return &coreerrors.ValidationError{Field: "full_content_status", Message: "article does not have full content extracted"}
	}
	if article.DeepSummaryStatus == domain.DeepSummaryPending {
		return &coreerrors.ValidationError{Field: "deep_summary_status", Message: "deep summary already pending"}
	}
	return t.manager.Start(DeepSummaryTask(articleID), func(ctx context.Context) error {
		return t.processor.GenerateDeepSummaryFor(ctx, articleID)
	})
}
