// ABOUTME: FeedItem domain model represents an individual entry parsed from a feed payload
// ABOUTME: Provides GUID fallback and the timestamp used to order entries newest-first

package domain

import "time"

// FeedItem represents an individual item/entry in a fetched feed
type FeedItem struct {
	// GUID is the entry identifier as published by the feed (may be empty)
	GUID string

	// Title is the item's headline
	Title string

	// Link is the URL to the full article
	Link string

	// Content is the full embedded content field, usually HTML
	Content string

	// Summary is the description/summary field, usually HTML
	Summary string

	// Published and Updated are nil when the feed omits or mangles them
	Published *time.Time
	Updated   *time.Time
}

// ID returns the item's identity: its GUID, or its link when the GUID is absent
func (fi *FeedItem) ID() string {
	if fi.GUID != "" {
		return fi.GUID
	}
	return fi.Link
}

// SortTime returns the best available timestamp: published, then updated, then now
func (fi *FeedItem) SortTime(now time.Time) time.Time {
	if fi.Published != nil && !fi.Published.IsZero() {
		return *fi.Published
	}
	if fi.Updated != nil && !fi.Updated.IsZero() {
		return *fi.Updated
	}
	return now
}

// DisplayTitle returns the title or a placeholder for untitled entries
func (fi *FeedItem) DisplayTitle() string {
	if fi.Title == "" {
		return "No Title"
	}
	return fi.Title
}

// IsValid checks if the feed item can be stored as an article
func (fi *FeedItem) IsValid() bool {
	return fi.ID() != "" && fi.Link != ""
}
