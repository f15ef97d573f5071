// ABOUTME: Response DTOs for articles, favorites, pipeline status and triggers
// ABOUTME: Status fields are plain strings so clients need no enum knowledge

package responses

import "time"

// ArticleSummaryResponse is an article as shown in listings
type ArticleSummaryResponse struct {
	ID                int64      `json:"id"`
	FeedID            int64      `json:"feed_id"`
	FeedName          string     `json:"feed_name,omitempty"`
	Title             string     `json:"title"`
	Link              string     `json:"link"`
	PublishedDate     *time.Time `json:"published_date,omitempty"`
	FetchedDate       time.Time  `json:"fetched_date"`
	Summary           string     `json:"summary,omitempty"`
	ProcessingStatus  string     `json:"processing_status"`
	ArxivID           string     `json:"arxiv_id,omitempty"`
	FullContentStatus string     `json:"full_content_status,omitempty"`
	DeepSummaryStatus string     `json:"deep_summary_status,omitempty"`
	Keywords          []string   `json:"keywords,omitempty"`
	IsFavorite        bool       `json:"is_favorite"`
}

// ArticleResponse is the full article with extracted texts and the deep summary
type ArticleResponse struct {
	ArticleSummaryResponse

	RawContent               string     `json:"raw_content,omitempty"`
	LLMModelUsed             string     `json:"llm_model_used,omitempty"`
	LLMProcessedDate         *time.Time `json:"llm_processed_date,omitempty"`
	FullContent              string     `json:"full_content,omitempty"`
	FullContentExtractedDate *time.Time `json:"full_content_extracted_date,omitempty"`
	DeepSummary              string     `json:"deep_summary,omitempty"`
	DeepSummaryDate          *time.Time `json:"deep_summary_date,omitempty"`
}

// ArticleListResponse wraps a page of articles
type ArticleListResponse struct {
	Articles []ArticleSummaryResponse `json:"articles"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

// ResetStatusResponse reports the status an article was moved to
type ResetStatusResponse struct {
	ID               int64  `json:"id"`
	ProcessingStatus string `json:"processing_status"`
}

// FavoriteResponse is a saved article with its notes and tags
type FavoriteResponse struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	AddedDate time.Time `json:"added_date"`
	Notes     string    `json:"notes,omitempty"`

	Tags    []string                `json:"tags" copier:"-"`
	Article *ArticleSummaryResponse `json:"article,omitempty" copier:"-"`
}

// FavoriteListResponse wraps a page of favorites
type FavoriteListResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
}

// FavoriteStatusResponse reports whether an article is a favorite
type FavoriteStatusResponse struct {
	ArticleID  int64 `json:"article_id"`
	IsFavorite bool  `json:"is_favorite"`
}

// TagListResponse lists the distinct favorite tags
type TagListResponse struct {
	Tags []string `json:"tags"`
}

// TriggerResponse acknowledges a background task start
type TriggerResponse struct {
	Task      string `json:"task" doc:"Name of the started background task"`
	Message   string `json:"message"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// TaskStatusResponse is a running background task
type TaskStatusResponse struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`
}

// TaskResultResponse is the last outcome of a background task
type TaskResultResponse struct {
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// StatusResponse summarizes the pipeline
type StatusResponse struct {
	StatusCounts   map[string]int       `json:"status_counts" doc:"Articles per processing status"`
	TotalArticles  int                  `json:"total_articles"`
	RunningTasks   []TaskStatusResponse `json:"running_tasks"`
	RecentResults  []TaskResultResponse `json:"recent_results"`
	InFlight       []int64              `json:"in_flight_articles" doc:"Articles currently being enriched"`
	ScheduledFeeds []int64              `json:"scheduled_feeds" doc:"Feeds with an active polling loop"`
	LLMEnabled     bool                 `json:"llm_enabled"`
	Features       map[string]bool      `json:"features"`
}

// CleanupResponse reports a maintenance run
type CleanupResponse struct {
	Removed int `json:"removed"`
}
