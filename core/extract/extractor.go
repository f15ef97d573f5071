// ABOUTME: Content extractor turns a feed entry into plain-text article content
// ABOUTME: Short feed bodies trigger a page fetch; each retry uses a different extraction pass

package extract

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	"aiml-digests/pkg/retry"
	htmlutil "aiml-digests/pkg/utils/html"
	"aiml-digests/pkg/utils/useragent"
)

const (
	// MinContentChars is the length extracted content must exceed to be accepted
	MinContentChars = 200

	// pageFetchThreshold is the feed body length below which the linked page is fetched
	pageFetchThreshold = 500

	// minSummaryFallback is the summary length above which it beats the embedded content
	minSummaryFallback = 100

	// DefaultPageTimeout bounds a single page fetch
	DefaultPageTimeout = 30 * time.Second

	maxPageBytes = 5 << 20
)

// DefaultRetryDelays is the wait after each failed pass; its length is the attempt count
var DefaultRetryDelays = retry.Seconds(1, 2, 5)

// pass selects how a fetched page is turned into text
type pass int

const (
	passRanked pass = iota
	passReadability
	passFreshAgent
)

func (p pass) String() string {
	switch p {
	case passRanked:
		return "ranked"
	case passReadability:
		return "readability"
	default:
		return "fresh-agent"
	}
}

// Extractor implements interfaces.ContentExtractor
type Extractor struct {
	deps        interfaces.Dependencies
	pageFetch   bool
	pageTimeout time.Duration
	ladder      retry.Ladder
	sleep       retry.SleepFunc
	agents      *useragent.Picker
}

// Option configures an Extractor
type Option func(*Extractor)

// WithPageFetch toggles fetching linked pages for short entries
func WithPageFetch(enabled bool) Option {
	return func(e *Extractor) {
		e.pageFetch = enabled
	}
}

// WithPageTimeout overrides the per-fetch timeout
func WithPageTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.pageTimeout = d
		}
	}
}

// WithSleep replaces every wait (retry delays and pre-fetch jitter)
func WithSleep(sleep retry.SleepFunc) Option {
	return func(e *Extractor) {
		e.sleep = sleep
	}
}

// WithUserAgents sets the user agent picker, which also drives header and delay jitter
func WithUserAgents(p *useragent.Picker) Option {
	return func(e *Extractor) {
		e.agents = p
	}
}

// NewExtractor creates an extractor with page fetching enabled
func NewExtractor(deps interfaces.Dependencies, opts ...Option) *Extractor {
	e := &Extractor{
		deps:        deps,
		pageFetch:   true,
		pageTimeout: DefaultPageTimeout,
		sleep:       retry.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.agents == nil {
		e.agents = useragent.NewPicker(nil)
	}
	e.ladder = retry.Ladder{
		Delays: DefaultRetryDelays,
		Sleep:  e.sleep,
		Logger: deps.Logger,
		Name:   "content extraction",
	}
	return e
}

// Extract returns the best plain-text content for item. It never fails: when
// no pass yields enough text it falls back to the feed summary, then to the
// embedded content even if short. An empty result means nothing was found.
func (e *Extractor) Extract(ctx context.Context, item domain.FeedItem) string {
	var extracted string
	var lastAgent string

	err := e.ladder.Do(ctx, func(attempt int) error {
		p := pass(attempt)
		if p > passFreshAgent {
			p = passFreshAgent
		}

		content, agent := e.extractOnce(ctx, item, p, lastAgent)
		lastAgent = agent

		if n := charLen(content); n <= MinContentChars {
			return &coreerrors.ContentQualityError{Source: p.String(), Length: n, Min: MinContentChars}
		}
		extracted = content
		return nil
	})
	if err == nil {
		return extracted
	}

	summary := htmlutil.StripHTML(item.Summary)
	if charLen(summary) > minSummaryFallback {
		e.logInfo("Using feed summary as fallback", item.Link)
		return summary
	}
	return htmlutil.StripHTML(item.Content)
}

// extractOnce runs one pass and reports the user agent used for the page fetch
func (e *Extractor) extractOnce(ctx context.Context, item domain.FeedItem, p pass, lastAgent string) (string, string) {
	content := htmlutil.StripHTML(item.Content)
	if content == "" {
		content = htmlutil.StripHTML(item.Summary)
	}

	if charLen(content) >= pageFetchThreshold || item.Link == "" || !e.pageFetch {
		return content, lastAgent
	}

	agent := e.agents.Random()
	if p == passFreshAgent && lastAgent != "" {
		agent = e.agents.Other(lastAgent)
	}

	page, err := e.fetchPage(ctx, item.Link, agent, p)
	if err != nil {
		if e.deps.Logger != nil {
			e.deps.Logger.Warn("Failed to extract article page", map[string]interface{}{
				"url":   item.Link,
				"pass":  p.String(),
				"error": err.Error(),
			})
		}
		return content, agent
	}
	if page == "" {
		return content, agent
	}
	return page, agent
}

// fetchPage downloads link and converts it to text with the given pass
func (e *Extractor) fetchPage(ctx context.Context, link, agent string, p pass) (string, error) {
	if e.deps.HTTPClient == nil {
		return "", fmt.Errorf("HTTP client not configured")
	}

	pageURL, err := url.Parse(link)
	if err != nil || pageURL.Host == "" {
		return "", &coreerrors.ValidationError{Field: "link", Message: "invalid URL format"}
	}

	// 1.0-2.0s jitter before each page request
	delay := time.Second + time.Duration(e.agents.Float64()*float64(time.Second))
	if err := e.sleep(ctx, delay); err != nil {
		return "", err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.pageTimeout)
	defer cancel()

	headers := pageHeaders(link, agent, e.agents.Float64() > 0.5)
	resp, err := e.deps.HTTPClient.Get(fetchCtx, link, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return "", &coreerrors.ExternalAPIError{
			API:        "article page",
			StatusCode: resp.StatusCode(),
			Message:    "page returned non-200 status code",
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body(), maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	if p == passReadability {
		text, err := readableText(body, pageURL)
		if err == nil && charLen(text) > MinContentChars {
			return text, nil
		}
	}
	return rankedText(body, hostname(link))
}

func (e *Extractor) logInfo(msg, link string) {
	if e.deps.Logger != nil {
		e.deps.Logger.Info(msg, map[string]interface{}{"url": link})
	}
}

var _ interfaces.ContentExtractor = (*Extractor)(nil)
