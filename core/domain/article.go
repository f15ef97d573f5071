// ABOUTME: Article domain model with its three status axes: processing, full content, deep summary
// ABOUTME: Defines the status constants that the store uses as work queues

package domain

import (
	"strings"
	"time"
)

// ProcessingStatus tracks an article through content extraction and summarization
type ProcessingStatus string

const (
	StatusPendingContent          ProcessingStatus = "pending_content"
	StatusPendingLLM              ProcessingStatus = "pending_llm"
	StatusProcessed               ProcessingStatus = "processed"
	StatusContentExtractionFailed ProcessingStatus = "content_extraction_failed"
	StatusLLMError                ProcessingStatus = "llm_error"
	StatusInsufficientContent     ProcessingStatus = "insufficient_content"
)

// IsTerminal reports whether no automatic step will move the article further
func (s ProcessingStatus) IsTerminal() bool {
	switch s {
	case StatusProcessed, StatusContentExtractionFailed, StatusLLMError, StatusInsufficientContent:
		return true
	}
	return false
}

// IsRetryable reports whether an operator may reset the article for another attempt
func (s ProcessingStatus) IsRetryable() bool {
	return s == StatusContentExtractionFailed || s == StatusLLMError
}

// Valid reports whether s is a known processing status
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPendingContent, StatusPendingLLM, StatusProcessed,
		StatusContentExtractionFailed, StatusLLMError, StatusInsufficientContent:
		return true
	}
	return false
}

// FullContentStatus tracks ArXiv full-text extraction
type FullContentStatus string

const (
	FullContentNotApplicable FullContentStatus = "not_applicable"
	FullContentPending       FullContentStatus = "pending"
	FullContentExtracted     FullContentStatus = "extracted"
	FullContentFailed        FullContentStatus = "failed"
)

// DeepSummaryStatus tracks generation of the long-form analysis
type DeepSummaryStatus string

const (
	DeepSummaryNotRequested DeepSummaryStatus = "not_requested"
	DeepSummaryPending      DeepSummaryStatus = "pending"
	DeepSummaryCompleted    DeepSummaryStatus = "completed"
	DeepSummaryFailed       DeepSummaryStatus = "failed"
)

// Article is a stored feed entry together with its enrichment results
type Article struct {
	ID     int64
	FeedID int64

	// GUID is unique across all articles; falls back to the link when the feed has none
	GUID string

	Title         string
	Link          string
	PublishedDate *time.Time
	FetchedDate   time.Time

	// RawContent is the extracted plain-text body
	RawContent string

	Summary          string
	LLMModelUsed     string
	LLMProcessedDate *time.Time
	ProcessingStatus ProcessingStatus

	// ArxivID is set only for ArXiv-origin articles, without version suffix
	ArxivID                  string
	FullContentStatus        FullContentStatus
	FullContent              string
	FullContentExtractedDate *time.Time

	DeepSummaryStatus DeepSummaryStatus
	DeepSummary       string
	DeepSummaryDate   *time.Time

	// Read-side fields populated by joins
	FeedName   string
	Keywords   []string
	IsFavorite bool
}

// NewArticle is the insert payload for InsertArticleIfAbsent
type NewArticle struct {
	FeedID        int64
	GUID          string
	Link          string
	Title         string
	PublishedDate *time.Time
	RawContent    string
	Status        ProcessingStatus
}

// Keyword is a deduplicated keyword attached to articles
type Keyword struct {
	ID   int64
	Text string
}

// Favorite marks an article as saved, with free-text notes and comma-delimited tags
type Favorite struct {
	ID        int64
	ArticleID int64
	AddedDate time.Time
	Notes     string
	Tags      string

	Article *Article
}

// TagList splits the comma-delimited tags, dropping blanks
func (f *Favorite) TagList() []string {
	var tags []string
	for _, t := range strings.Split(f.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SortOrder selects the ordering of article listings
type SortOrder string

const (
	SortDateDesc  SortOrder = "date_desc"
	SortDateAsc   SortOrder = "date_asc"
	SortTitleAsc  SortOrder = "title_asc"
	SortTitleDesc SortOrder = "title_desc"
)

// ArticleFilter narrows article listings; zero values mean "no filter"
type ArticleFilter struct {
	FeedID  int64
	Keyword string
	Status  ProcessingStatus
	Sort    SortOrder
	Limit   int
	Offset  int
}

// ArxivStats summarizes ArXiv extraction and deep-summary progress
type ArxivStats struct {
	TotalArxiv          int                       `json:"total_arxiv"`
	ByFullContentStatus map[FullContentStatus]int `json:"by_full_content_status"`
	ByDeepSummaryStatus map[DeepSummaryStatus]int `json:"by_deep_summary_status"`

	// FullPapers counts extracted texts over 10000 chars; shorter ones are mostly abstracts
	FullPapers    int `json:"full_papers"`
	AbstractsOnly int `json:"abstracts_only"`

	// RecentWeek counts ArXiv articles published in the last seven days
	RecentWeek int `json:"recent_week"`

	Feeds []FeedArxivBreakdown `json:"feeds"`
}

// FeedArxivBreakdown reports ArXiv progress for a single feed
type FeedArxivBreakdown struct {
	FeedID    int64  `json:"feed_id"`
	FeedName  string `json:"feed_name"`
	Total     int    `json:"total"`
	Extracted int    `json:"extracted"`
	Analyzed  int    `json:"analyzed"`
}
