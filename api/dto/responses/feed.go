// ABOUTME: Response DTOs for feed management endpoints
// ABOUTME: Provides structured responses with JSON serialization

package responses

import "time"

// FeedResponse represents a subscribed feed in API responses
type FeedResponse struct {
	ID                 int64      `json:"id" doc:"Unique identifier for the feed"`
	URL                string     `json:"url" doc:"Feed URL"`
	Name               string     `json:"name" doc:"Display name"`
	Enabled            bool       `json:"enabled"`
	PollingInterval    int        `json:"polling_interval" doc:"Minutes between polls"`
	MaxArticles        int        `json:"max_articles"`
	LastPolledItemGUID string     `json:"last_polled_item_guid,omitempty" doc:"Newest entry seen on the last successful poll"`
	LastSuccessfulPoll *time.Time `json:"last_successful_poll,omitempty"`
	ErrorCount         int        `json:"error_count" doc:"Consecutive failed polls"`
	DisplayOrder       int        `json:"display_order"`
	ArticleCount       int        `json:"article_count"`
	CreatedAt          time.Time  `json:"created_at"`
	LastModified       time.Time  `json:"last_modified"`
}

// FeedListResponse wraps a feed listing
type FeedListResponse struct {
	Feeds []FeedResponse `json:"feeds"`
	Total int            `json:"total"`
}

// FeedToggleResponse reports the state after a toggle
type FeedToggleResponse struct {
	ID      int64 `json:"id"`
	Enabled bool  `json:"enabled"`
}

// FeedValidationResult reports whether one candidate URL parses as a feed
type FeedValidationResult struct {
	URL           string   `json:"url" doc:"The URL that was checked"`
	Status        string   `json:"status" enum:"valid,invalid" doc:"Validation status"`
	Entries       int      `json:"entries" doc:"Number of entries in the feed"`
	Titles        []string `json:"titles,omitempty" doc:"Titles of the newest entries"`
	SuggestedName string   `json:"suggested_name,omitempty"`
	Error         string   `json:"error,omitempty"`
}
