// Package infrastructure provides concrete implementations of the interfaces
// defined in core/interfaces.
//
// The package is organized by technical concern:
//
// - cache/file: one JSON file per key, the default LLM result cache
// - cache/memory: in-process cache backed by patrickmn/go-cache
// - cache/redis: Redis-backed cache using go-redis
// - cache/sqlite: single-table cache in a SQLite file
// - http/standard: net/http client with retries on transient failures
// - llm: the Disabled client used without an API key
// - llm/openai: chat completions against an OpenAI-compatible endpoint
// - logger/structured: logrus logger with optional lumberjack rotation
// - metrics: Prometheus counters and histograms for the pipeline
// - storage/sqlite: the feed, article, keyword and favorite store
//
// # Cache Example
//
//	cache, err := file.NewFileCache("instance/llm_cache")
//	err = cache.Set(ctx, "summary_gpt-4o_abc", []byte(`{"result":"..."}`), 0)
//	value, err := cache.Get(ctx, "summary_gpt-4o_abc")
package infrastructure
