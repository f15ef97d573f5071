// ABOUTME: Enrichment processor drains the pending_llm and deep-summary queues through the LLM client
// ABOUTME: Results are cached by prompt hash and persisted only after generation succeeds

package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	"aiml-digests/pkg/retry"
)

const (
	// DefaultBatchSize is how many articles each queue contributes per cycle
	DefaultBatchSize = 5

	// DefaultSummaryMaxTokens caps the short summary length
	DefaultSummaryMaxTokens = 150

	// DefaultPause separates cycles that found work
	DefaultPause = 2 * time.Second

	// DefaultIdle separates cycles that found nothing
	DefaultIdle = 60 * time.Second

	// MinContentChars is the shortest raw content worth summarizing
	MinContentChars = 100
)

// ErrDisabled is returned by the loop entry points when the LLM client cannot complete requests
var ErrDisabled = errors.New("LLM processing disabled: no provider configured")

// Processor generates summaries, keywords and deep analyses for stored articles
type Processor struct {
	store interfaces.ArticleStore
	llm   interfaces.LLMClient
	cache *ResultCache
	deps  interfaces.Dependencies

	model            string
	summaryMaxTokens int
	batchSize        int
	deepSummaries    bool

	pause time.Duration
	idle  time.Duration
	sleep retry.SleepFunc

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// Option configures a Processor
type Option func(*Processor)

// WithSummaryMaxTokens sets the output cap for short summaries
func WithSummaryMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.summaryMaxTokens = n
		}
	}
}

// WithBatchSize sets how many articles each queue contributes per cycle
func WithBatchSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithDeepSummaries toggles draining the deep-summary queue in Run
func WithDeepSummaries(enabled bool) Option {
	return func(p *Processor) {
		p.deepSummaries = enabled
	}
}

// WithPacing overrides the loop delays; a nil sleep keeps the context-aware default
func WithPacing(pause, idle time.Duration, sleep retry.SleepFunc) Option {
	return func(p *Processor) {
		p.pause = pause
		p.idle = idle
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// NewProcessor creates a processor; deps.Cache backs the result cache
func NewProcessor(store interfaces.ArticleStore, llm interfaces.LLMClient, model string, deps interfaces.Dependencies, opts ...Option) *Processor {
	deps = deps.WithDefaults()
	p := &Processor{
		store:            store,
		llm:              llm,
		cache:            NewResultCache(deps.Cache, deps.Logger),
		deps:             deps,
		model:            model,
		summaryMaxTokens: DefaultSummaryMaxTokens,
		batchSize:        DefaultBatchSize,
		deepSummaries:    true,
		pause:            DefaultPause,
		idle:             DefaultIdle,
		sleep:            retry.Sleep,
		inFlight:         make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled reports whether the LLM client can complete requests
func (p *Processor) Enabled() bool {
	return p.llm.Enabled()
}

// Run drains both queues until ctx is cancelled
func (p *Processor) Run(ctx context.Context) error {
	if !p.llm.Enabled() {
		p.deps.Logger.Warn("LLM client disabled, enrichment loop not started", nil)
		return ErrDisabled
	}

	p.deps.Logger.Info("Enrichment loop started", map[string]interface{}{
		"model":      p.model,
		"batch_size": p.batchSize,
	})
	for {
		n, err := p.RunOnce(ctx)
		if ctx.Err() != nil {
			p.deps.Logger.Info("Enrichment loop stopped", nil)
			return nil
		}
		if err != nil {
			p.deps.Logger.Error("Enrichment cycle failed", map[string]interface{}{"error": err.Error()})
		}

		wait := p.pause
		if n == 0 {
			p.deps.Logger.Debug("No pending articles for LLM processing", nil)
			wait = p.idle
		}
		if err := p.sleep(ctx, wait); err != nil {
			p.deps.Logger.Info("Enrichment loop stopped", nil)
			return nil
		}
	}
}

// RunOnce processes one batch from each queue and returns how many articles left their
// queue. Articles already in flight elsewhere, or whose status could not be written,
// are not counted, so a zero result means another cycle right away would change nothing.
func (p *Processor) RunOnce(ctx context.Context) (int, error) {
	if !p.llm.Enabled() {
		return 0, ErrDisabled
	}

	pending, err := p.store.SelectArticlesByStatus(ctx, domain.StatusPendingLLM, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("select pending articles: %w", err)
	}

	var deep []*domain.Article
	if p.deepSummaries {
		deep, err = p.store.SelectDeepSummaryCandidates(ctx, p.batchSize)
		if err != nil {
			return 0, fmt.Errorf("select deep summary candidates: %w", err)
		}
	}

	settled := 0
	if len(pending) > 0 {
		settled += p.fanOut(ctx, pending, "Error in LLM processing", p.processArticle)
	}
	if len(deep) > 0 {
		settled += p.fanOut(ctx, deep, "Error in deep summary processing", p.processDeepSummary)
	}
	return settled, nil
}

// fanOut runs fn over articles with bounded concurrency; failures are logged per article.
// It returns how many articles fn reported as settled.
func (p *Processor) fanOut(ctx context.Context, articles []*domain.Article, msg string, fn func(context.Context, *domain.Article) (bool, error)) int {
	var (
		g       errgroup.Group
		settled atomic.Int64
	)
	g.SetLimit(p.batchSize)
	for _, a := range articles {
		a := a
		g.Go(func() error {
			ok, err := fn(ctx, a)
			if ok {
				settled.Add(1)
			}
			if err != nil {
				p.deps.Logger.Error(msg, map[string]interface{}{
					"article_id": a.ID,
					"error":      err.Error(),
				})
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(settled.Load())
}

// begin marks id in flight; false means another caller is already working on it
func (p *Processor) begin(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Processor) done(id int64) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

// InFlight returns the IDs of articles currently being processed, ascending
func (p *Processor) InFlight() []int64 {
	p.mu.Lock()
	ids := make([]int64, 0, len(p.inFlight))
	for id := range p.inFlight {
		ids = append(ids, id)
	}
	p.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ProcessArticle summarizes a pending_llm article and attaches its keywords
func (p *Processor) ProcessArticle(ctx context.Context, a *domain.Article) error {
	_, err := p.processArticle(ctx, a)
	return err
}

// processArticle reports settled once the article's processing status has been written
func (p *Processor) processArticle(ctx context.Context, a *domain.Article) (bool, error) {
	if !p.begin(a.ID) {
		p.deps.Logger.Debug("Article already in flight", map[string]interface{}{"article_id": a.ID})
		return false, nil
	}
	defer p.done(a.ID)

	if len([]rune(a.RawContent)) < MinContentChars {
		p.deps.Logger.Warn("Article content too short for processing", map[string]interface{}{
			"article_id": a.ID,
			"length":     len([]rune(a.RawContent)),
		})
		err := p.store.UpdateArticleStatus(ctx, a.ID, domain.StatusInsufficientContent)
		return err == nil, err
	}

	summary, err := p.GenerateSummary(ctx, a.Title, a.RawContent)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if storeErr := p.store.UpdateArticleLLMError(ctx, a.ID, summary); storeErr != nil {
			return false, fmt.Errorf("record llm error: %w", storeErr)
		}
		return true, fmt.Errorf("summarize article %d: %w", a.ID, err)
	}

	keywords := p.ExtractKeywords(ctx, a.Title, a.RawContent)

	if err := p.store.UpdateArticleSummary(ctx, a.ID, summary, p.model); err != nil {
		return false, fmt.Errorf("store summary: %w", err)
	}
	if len(keywords) > 0 {
		if err := p.store.AddArticleKeywords(ctx, a.ID, keywords); err != nil {
			return true, fmt.Errorf("store keywords: %w", err)
		}
	}

	p.deps.Logger.Info("Processed article", map[string]interface{}{
		"article_id": a.ID,
		"title":      a.Title,
		"keywords":   len(keywords),
	})
	return true, nil
}

// GenerateSummary returns a short summary; on provider failure it returns the error
// together with the placeholder text to store in its place
func (p *Processor) GenerateSummary(ctx context.Context, title, content string) (string, error) {
	text := fmt.Sprintf("Title: %s\n\nContent: %s", title, truncate(content, summaryTokenBudget))
	key := Key("summary", p.model, text)
	if cached, ok := p.cache.Get(ctx, key); ok {
		p.deps.Logger.Debug("Using cached summary", map[string]interface{}{"key": key})
		p.deps.Metrics.LLMCall("summary", true, nil)
		return cached, nil
	}

	summary, err := p.llm.Complete(ctx, interfaces.ChatRequest{
		Model:        p.model,
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   summaryPrompt(text),
		MaxTokens:    p.summaryMaxTokens,
		Temperature:  defaultTemperature,
	})
	p.deps.Metrics.LLMCall("summary", false, err)
	if err != nil {
		p.deps.Logger.Error("Error generating summary", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("Error generating summary: %s...", snippet(err.Error(), errorSnippetChars)), err
	}

	p.cache.Put(ctx, key, summary)
	return summary, nil
}

// ExtractKeywords returns up to five keywords; failures degrade to KeywordErrorSentinel
func (p *Processor) ExtractKeywords(ctx context.Context, title, content string) []string {
	text := fmt.Sprintf("Title: %s\n\nContent: %s", title, truncate(content, keywordTokenBudget))
	key := Key("keywords", p.model, text)
	if cached, ok := p.cache.Get(ctx, key); ok {
		p.deps.Metrics.LLMCall("keywords", true, nil)
		return strings.Split(cached, ", ")
	}

	answer, err := p.llm.Complete(ctx, interfaces.ChatRequest{
		Model:        p.model,
		SystemPrompt: keywordSystemPrompt,
		UserPrompt:   keywordPrompt(text),
		MaxTokens:    keywordMaxTokens,
		Temperature:  defaultTemperature,
	})
	p.deps.Metrics.LLMCall("keywords", false, err)
	if err != nil {
		p.deps.Logger.Error("Error extracting keywords", map[string]interface{}{"error": err.Error()})
		return []string{KeywordErrorSentinel}
	}

	keywords := splitKeywords(answer)
	if len(keywords) == 0 {
		return []string{KeywordErrorSentinel}
	}
	p.cache.Put(ctx, key, strings.Join(keywords, ", "))
	return keywords
}

// GenerateDeepSummary produces the structured analysis with its provenance tag appended
func (p *Processor) GenerateDeepSummary(ctx context.Context, title, content string) (string, error) {
	plan := Classify(content)

	var text, prompt string
	if plan.Kind == KindFullPaper {
		text = fmt.Sprintf("Title: %s\n\nFull Paper Content: %s", title, truncate(content, plan.Budget))
		prompt = fullPaperPrompt(text)
	} else {
		text = fmt.Sprintf("Title: %s\n\nContent: %s", title, truncate(content, plan.Budget))
		prompt = abstractPrompt(text)
	}

	op := "deep_summary_" + string(plan.Kind)
	key := Key(op, p.model, text)
	if cached, ok := p.cache.Get(ctx, key); ok {
		p.deps.Metrics.LLMCall(op, true, nil)
		return cached, nil
	}

	analysis, err := p.llm.Complete(ctx, interfaces.ChatRequest{
		Model:        p.model,
		SystemPrompt: deepSystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    plan.MaxTokens,
		Temperature:  defaultTemperature,
	})
	p.deps.Metrics.LLMCall(op, false, err)
	if err != nil {
		return "", err
	}

	if plan.Kind == KindFullPaper {
		analysis += fullPaperTag
	} else {
		analysis += abstractTag
	}
	p.cache.Put(ctx, key, analysis)
	return analysis, nil
}

// ProcessDeepSummary analyzes an article's full content and records the outcome
func (p *Processor) ProcessDeepSummary(ctx context.Context, a *domain.Article) error {
	_, err := p.processDeepSummary(ctx, a)
	return err
}

func (p *Processor) processDeepSummary(ctx context.Context, a *domain.Article) (bool, error) {
	if !p.begin(a.ID) {
		p.deps.Logger.Debug("Article already in flight", map[string]interface{}{"article_id": a.ID})
		return false, nil
	}
	defer p.done(a.ID)

	if len([]rune(a.FullContent)) < deepSummaryMinChars {
		p.deps.Logger.Warn("Full content too short for deep summary", map[string]interface{}{"article_id": a.ID})
		err := p.store.UpdateDeepSummary(ctx, a.ID, DeepTooShortMessage, domain.DeepSummaryFailed)
		return err == nil, err
	}

	analysis, err := p.GenerateDeepSummary(ctx, a.Title, a.FullContent)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		msg := "Error: " + snippet(err.Error(), errorSnippetChars)
		if storeErr := p.store.UpdateDeepSummary(ctx, a.ID, msg, domain.DeepSummaryFailed); storeErr != nil {
			return false, fmt.Errorf("record deep summary failure: %w", storeErr)
		}
		return true, fmt.Errorf("deep summary for article %d: %w", a.ID, err)
	}

	if err := p.store.UpdateDeepSummary(ctx, a.ID, analysis, domain.DeepSummaryCompleted); err != nil {
		return false, fmt.Errorf("store deep summary: %w", err)
	}
	p.deps.Logger.Info("Generated deep summary", map[string]interface{}{"article_id": a.ID, "title": a.Title})
	return true, nil
}

// GenerateDeepSummaryFor queues and immediately processes a deep summary for one article
func (p *Processor) GenerateDeepSummaryFor(ctx context.Context, articleID int64) error {
	if !p.llm.Enabled() {
		return ErrDisabled
	}

	a, err := p.store.GetArticle(ctx, articleID)
	if err != nil {
		return err
	}
	if a.FullContentStatus != domain.FullContentExtracted || a.FullContent == "" {
		return &coreerrors.ValidationError{Field: "full_content", Message: "article does not have full content extracted"}
	}

	if err := p.store.RequestDeepSummary(ctx, articleID); err != nil {
		return fmt.Errorf("request deep summary: %w", err)
	}
	a.DeepSummaryStatus = domain.DeepSummaryPending
	return p.ProcessDeepSummary(ctx, a)
}
