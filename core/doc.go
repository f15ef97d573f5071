// Package core contains the business logic of the AI/ML digests pipeline.
// It is framework-agnostic: HTTP, storage, caching and the LLM provider are
// reached only through the contracts in core/interfaces.
//
// The sub-packages follow the life of an article:
//
// - domain: Feed, FeedItem, Article, Favorite and their status enums
// - feed: fetching and parsing RSS/Atom documents with retries
// - extract: turning a feed entry or its linked page into plain text
// - poller: watermark-based ingestion and the per-feed scheduler
// - enrichment: LLM summaries, keywords and deep summaries with a result cache
// - arxiv: full-text extraction for ArXiv papers
// - workers: named background tasks and the manual triggers
// - errors: NotFound, Validation, ExternalAPI and ContentQuality errors
// - interfaces: Cache, HTTPClient, Logger, Metrics, LLMClient and Store
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Cache:      cache,
//	    HTTPClient: httpClient,
//	    Logger:     logger,
//	}
//
//	fetcher := feed.NewFeedService(deps)
//	p := poller.NewPoller(store, fetcher, extract.NewExtractor(deps), deps)
//	summary, err := p.PollAll(ctx)
package core
