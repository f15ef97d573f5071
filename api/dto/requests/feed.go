// ABOUTME: Request DTOs for feed management endpoints
// ABOUTME: Provides validation tags and default values for incoming feed edits

package requests

import "aiml-digests/core/domain"

// AddFeedRequest represents the request body for subscribing to a feed
type AddFeedRequest struct {
	URL  string `json:"url" format:"uri" doc:"Feed URL"`
	Name string `json:"name,omitempty" maxLength:"200" doc:"Display name; derived from the URL when empty"`

	// PollingInterval is in minutes
	PollingInterval int   `json:"polling_interval,omitempty" minimum:"1" maximum:"10080" doc:"Minutes between polls"`
	MaxArticles     int   `json:"max_articles,omitempty" minimum:"1" maximum:"10000" doc:"Newest articles kept for the feed"`
	Enabled         *bool `json:"enabled,omitempty" doc:"Whether the scheduler polls this feed (default true)"`
}

// ApplyDefaults sets default values for optional fields
func (r *AddFeedRequest) ApplyDefaults() {
	if r.Name == "" {
		r.Name = domain.NameFromURL(r.URL)
	}
	if r.PollingInterval == 0 {
		r.PollingInterval = domain.DefaultPollingInterval
	}
	if r.MaxArticles == 0 {
		r.MaxArticles = domain.DefaultMaxArticles
	}
	if r.Enabled == nil {
		enabled := true
		r.Enabled = &enabled
	}
}

// UpdateFeedRequest is a partial feed edit; absent fields are left unchanged
type UpdateFeedRequest struct {
	Name            *string `json:"name,omitempty" maxLength:"200"`
	URL             *string `json:"url,omitempty" format:"uri"`
	Enabled         *bool   `json:"enabled,omitempty"`
	PollingInterval *int    `json:"polling_interval,omitempty" minimum:"1" maximum:"10080"`
	MaxArticles     *int    `json:"max_articles,omitempty" minimum:"1" maximum:"10000"`
	DisplayOrder    *int    `json:"display_order,omitempty" minimum:"0"`
}

// Empty reports whether the request changes nothing
func (r *UpdateFeedRequest) Empty() bool {
	return r.Name == nil && r.URL == nil && r.Enabled == nil &&
		r.PollingInterval == nil && r.MaxArticles == nil && r.DisplayOrder == nil
}

// ToggleFeedRequest sets the enabled state, or flips it when Enabled is absent
type ToggleFeedRequest struct {
	Enabled *bool `json:"enabled,omitempty" doc:"Target state; omitted flips the current state"`
}

// FeedPosition is one entry of a reorder request
type FeedPosition struct {
	ID           int64 `json:"id"`
	DisplayOrder int   `json:"display_order" minimum:"0"`
}

// ReorderFeedsRequest assigns display positions to feeds
type ReorderFeedsRequest struct {
	Order []FeedPosition `json:"order" minItems:"1"`
}

// ImportFeed is one feed of an import document; only the URL is required
type ImportFeed struct {
	URL             string `json:"url"`
	Name            string `json:"name,omitempty"`
	Enabled         *bool  `json:"enabled,omitempty"`
	PollingInterval int    `json:"polling_interval,omitempty" minimum:"0"`
	MaxArticles     int    `json:"max_articles,omitempty" minimum:"0"`
	DisplayOrder    int    `json:"display_order,omitempty" minimum:"0"`
}

// ImportFeedsRequest carries an export document plus the overwrite switch
type ImportFeedsRequest struct {
	Feeds     []ImportFeed `json:"feeds" doc:"Feeds in export format"`
	Overwrite bool         `json:"overwrite,omitempty" doc:"Update feeds whose URL already exists instead of skipping them"`
}

// ValidateFeedsRequest lists candidate feed URLs to check before subscribing
type ValidateFeedsRequest struct {
	URLs []string `json:"urls" minItems:"1" maxItems:"20" doc:"Feed URLs to fetch and parse"`
}
