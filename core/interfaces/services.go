// ABOUTME: Service interfaces for the ingestion and enrichment pipeline
// ABOUTME: Each capability is consumed through a small contract so components can be swapped

package interfaces

import (
	"context"

	"aiml-digests/core/domain"
)

// FeedFetcher downloads and parses a feed into its entries
type FeedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) ([]domain.FeedItem, error)
}

// ContentExtractor turns a feed entry and its linked page into plain text
type ContentExtractor interface {
	Extract(ctx context.Context, item domain.FeedItem) string
}

// ChatRequest is a single chat-style completion request
type ChatRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// LLMClient is a chat completion provider.
// Implementations come in a real and a disabled variant; callers never check which.
type LLMClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)

	// Enabled reports whether completions can succeed at all
	Enabled() bool
}

// Metrics records pipeline counters; a no-op implementation is used when metrics are off
type Metrics interface {
	FeedPolled(outcome string)
	ArticlesIngested(n int)
	PollDuration(seconds float64)
	LLMCall(operation string, cached bool, err error)
	ArxivExtracted(source string, ok bool)
}
