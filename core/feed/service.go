// ABOUTME: Feed service downloads RSS/Atom feeds and parses them into feed items
// ABOUTME: Each download runs on a fixed retry ladder with browser-like headers

package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	"aiml-digests/pkg/retry"
	timeutil "aiml-digests/pkg/utils/time"
	"aiml-digests/pkg/utils/useragent"
	"github.com/mmcdole/gofeed"
)

const (
	// DefaultFetchTimeout bounds a single download attempt
	DefaultFetchTimeout = 60 * time.Second

	feedAccept = "application/rss+xml, application/xml, text/xml, application/atom+xml, text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8"
)

// DefaultRetryDelays is the wait after each failed attempt; its length is the attempt count
var DefaultRetryDelays = retry.Seconds(1, 2, 5, 10, 30)

// FeedService handles feed download and parsing
type FeedService struct {
	deps         interfaces.Dependencies
	fetchTimeout time.Duration
	ladder       retry.Ladder
	agents       *useragent.Picker
}

// Option configures a FeedService
type Option func(*FeedService)

// WithFetchTimeout overrides the per-attempt timeout
func WithFetchTimeout(d time.Duration) Option {
	return func(s *FeedService) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithRetry overrides the retry delays and the sleep used between attempts
func WithRetry(delays []time.Duration, sleep retry.SleepFunc) Option {
	return func(s *FeedService) {
		s.ladder.Delays = delays
		s.ladder.Sleep = sleep
	}
}

// WithUserAgents sets the user agent picker
func WithUserAgents(p *useragent.Picker) Option {
	return func(s *FeedService) {
		s.agents = p
	}
}

// NewFeedService creates a new feed service instance
func NewFeedService(deps interfaces.Dependencies, opts ...Option) *FeedService {
	s := &FeedService{
		deps:         deps,
		fetchTimeout: DefaultFetchTimeout,
		ladder: retry.Ladder{
			Delays: DefaultRetryDelays,
			Logger: deps.Logger,
			Name:   "feed fetch",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.agents == nil {
		s.agents = useragent.NewPicker(nil)
	}
	return s
}

// FetchFeed downloads and parses the feed at feedURL.
// Every failure, including non-200 responses and unparsable payloads, is retried
// on the ladder; the last error is returned once the ladder is exhausted.
func (s *FeedService) FetchFeed(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	if feedURL == "" {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "feed URL cannot be empty"}
	}

	parsedURL, err := url.Parse(feedURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "invalid URL format"}
	}

	if s.deps.HTTPClient == nil {
		return nil, errors.New("HTTP client not configured")
	}

	var items []domain.FeedItem
	err = s.ladder.Do(ctx, func(attempt int) error {
		fetched, err := s.fetchOnce(ctx, feedURL)
		if err != nil {
			return err
		}
		items = fetched
		return nil
	})
	if err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.Error("All feed fetch attempts failed", map[string]interface{}{
				"url":   feedURL,
				"error": err.Error(),
			})
		}
		return nil, err
	}

	return items, nil
}

func (s *FeedService) fetchOnce(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	resp, err := s.deps.HTTPClient.Get(attemptCtx, feedURL, s.headers())
	if err != nil {
		return nil, err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, &coreerrors.ExternalAPIError{
			API:        "feed",
			StatusCode: resp.StatusCode(),
			Message:    "feed returned non-200 status code",
		}
	}

	bodyBytes, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	return ParseItems(bodyBytes)
}

func (s *FeedService) headers() map[string]string {
	return map[string]string{
		"User-Agent":                s.agents.Random(),
		"Accept":                    feedAccept,
		"Accept-Language":           "en-US,en;q=0.5",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "max-age=0",
	}
}

// ParseItems parses an RSS, Atom or JSON feed payload into feed items
func ParseItems(content []byte) ([]domain.FeedItem, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, errors.New("empty feed content")
	}

	parsedFeed, err := gofeed.NewParser().Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.FeedItem, 0, len(parsedFeed.Items))
	for _, item := range parsedFeed.Items {
		if item == nil {
			continue
		}
		items = append(items, convertItemToDomain(item))
	}
	return items, nil
}

// convertItemToDomain converts a gofeed item to a domain item
func convertItemToDomain(item *gofeed.Item) domain.FeedItem {
	return domain.FeedItem{
		GUID:      item.GUID,
		Title:     item.Title,
		Link:      item.Link,
		Content:   item.Content,
		Summary:   item.Description,
		Published: itemTime(item.PublishedParsed, item.Published),
		Updated:   itemTime(item.UpdatedParsed, item.Updated),
	}
}

// itemTime prefers gofeed's parsed value and falls back to lenient parsing
func itemTime(parsed *time.Time, raw string) *time.Time {
	if parsed != nil && !parsed.IsZero() {
		utc := parsed.UTC()
		return &utc
	}
	return timeutil.Parse(raw)
}
