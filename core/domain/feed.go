// ABOUTME: Feed domain model represents a subscribed RSS/Atom source and its polling state
// ABOUTME: Provides validation and the polling interval helpers used by the scheduler

package domain

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultPollingInterval is the polling interval in minutes for new feeds
	DefaultPollingInterval = 30

	// DefaultMaxArticles is the retention cap for new feeds
	DefaultMaxArticles = 100

	// MaxRestartBackoff caps the delay before a failed feed loop is restarted
	MaxRestartBackoff = 120 * time.Minute
)

// Feed represents a subscribed RSS or Atom feed
type Feed struct {
	// ID is the store-assigned identifier
	ID int64

	// URL is the feed's source URL, unique across all feeds
	URL string

	// Name is the display name
	Name string

	// Enabled controls whether the scheduler polls this feed
	Enabled bool

	// PollingInterval is the time between polls in minutes
	PollingInterval int

	// MaxArticles is the number of newest articles kept for this feed
	MaxArticles int

	// LastPolledItemGUID is the watermark: GUID of the newest item seen on the last successful poll
	LastPolledItemGUID string

	// LastSuccessfulPoll is when the watermark was last committed
	LastSuccessfulPoll *time.Time

	// ErrorCount counts consecutive failed polls
	ErrorCount int

	DisplayOrder int
	CreatedAt    time.Time
	LastModified time.Time

	// ArticleCount is populated by read queries that join article counts
	ArticleCount int
}

// NewFeed creates a new enabled Feed with default polling settings
func NewFeed(feedURL, name string) (*Feed, error) {
	now := time.Now().UTC()
	feed := &Feed{
		URL:             feedURL,
		Name:            name,
		Enabled:         true,
		PollingInterval: DefaultPollingInterval,
		MaxArticles:     DefaultMaxArticles,
		CreatedAt:       now,
		LastModified:    now,
	}

	if err := feed.Validate(); err != nil {
		return nil, err
	}

	return feed, nil
}

// Validate checks if the feed has valid required fields
func (f *Feed) Validate() error {
	if f.URL == "" {
		return errors.New("feed URL cannot be empty")
	}

	u, err := url.Parse(f.URL)
	if err != nil || u.Host == "" {
		return errors.New("feed URL is not valid format")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("feed URL must use http or https")
	}

	if f.PollingInterval < 0 {
		return errors.New("polling interval cannot be negative")
	}

	if f.MaxArticles < 0 {
		return errors.New("max articles cannot be negative")
	}

	return nil
}

// Interval returns the polling interval as a duration, falling back to the default
func (f *Feed) Interval() time.Duration {
	if f.PollingInterval <= 0 {
		return DefaultPollingInterval * time.Minute
	}
	return time.Duration(f.PollingInterval) * time.Minute
}

// RestartBackoff is the delay before a crashed polling loop for this feed restarts
func (f *Feed) RestartBackoff() time.Duration {
	backoff := f.Interval() * 2
	if backoff > MaxRestartBackoff {
		return MaxRestartBackoff
	}
	return backoff
}

// DisplayName returns the feed name, or its URL when no name is set
func (f *Feed) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.URL
}

// FeedUpdate carries a partial feed edit; nil fields are left unchanged
type FeedUpdate struct {
	Name            *string
	URL             *string
	Enabled         *bool
	PollingInterval *int
	MaxArticles     *int
	DisplayOrder    *int
}

// FeedExport is the portable JSON form of a feed used by export and import
type FeedExport struct {
	URL             string `json:"url"`
	Name            string `json:"name"`
	Enabled         bool   `json:"enabled"`
	PollingInterval int    `json:"polling_interval"`
	MaxArticles     int    `json:"max_articles"`
	DisplayOrder    int    `json:"display_order"`
}

// UnmarshalJSON applies the defaults for fields an import file leaves out
func (e *FeedExport) UnmarshalJSON(data []byte) error {
	type plain FeedExport
	out := plain{
		Enabled:         true,
		PollingInterval: DefaultPollingInterval,
		MaxArticles:     DefaultMaxArticles,
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if out.Name == "" {
		out.Name = NameFromURL(out.URL)
	}
	*e = FeedExport(out)
	return nil
}

// NameFromURL derives a display name from the last path segment of a feed URL
func NameFromURL(feedURL string) string {
	if feedURL == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(feedURL, "/"), "/")
	return parts[len(parts)-1]
}

// FeedExportFile is the document written by export and read by import
type FeedExportFile struct {
	Feeds []FeedExport `json:"feeds"`
}

// ImportResult reports the outcome of a feed import
type ImportResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
