// ABOUTME: Wires configuration into the store, fetchers, processor, scheduler and task manager
// ABOUTME: Every subcommand builds one app and closes it on exit

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"aiml-digests/core/arxiv"
	"aiml-digests/core/enrichment"
	"aiml-digests/core/extract"
	"aiml-digests/core/feed"
	"aiml-digests/core/interfaces"
	"aiml-digests/core/poller"
	"aiml-digests/core/workers"
	filecache "aiml-digests/infrastructure/cache/file"
	"aiml-digests/infrastructure/cache/memory"
	"aiml-digests/infrastructure/cache/redis"
	sqlitecache "aiml-digests/infrastructure/cache/sqlite"
	stdhttp "aiml-digests/infrastructure/http/standard"
	"aiml-digests/infrastructure/llm"
	"aiml-digests/infrastructure/llm/openai"
	"aiml-digests/infrastructure/logger/structured"
	"aiml-digests/infrastructure/metrics"
	"aiml-digests/infrastructure/storage/sqlite"
	"aiml-digests/pkg/config"
	"aiml-digests/pkg/featureflags"
	"aiml-digests/pkg/utils/useragent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const memoryCacheCleanup = 10 * time.Minute

type app struct {
	cfg      *config.Config
	logger   *structured.Logger
	deps     interfaces.Dependencies
	flags    featureflags.Manager
	registry *prometheus.Registry

	store     *sqlite.Store
	fetcher   *feed.FeedService
	poller    *poller.Poller
	scheduler *poller.Scheduler
	processor *enrichment.Processor
	runner    *arxiv.Runner
	manager   *workers.Manager
	triggers  *workers.Triggers

	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	a.logger = structured.New(structured.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	a.closers = append(a.closers, a.logger)

	cache, err := a.newCache()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.deps = interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: stdhttp.NewStandardHTTPClient(seconds(cfg.Poller.FetchTimeoutSeconds)),
		Logger:     a.logger,
		Metrics:    metrics.NewPrometheus(a.registry),
	}
	a.flags = featureflags.NewEnvManager("FEATURE_", cfg.Features)

	a.store, err = sqlite.Open(cfg.Database.Path, a.logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.store)

	agents := useragent.NewPicker(nil)
	laddered := ladderDeps(a.deps, seconds(cfg.Poller.FetchTimeoutSeconds))
	a.fetcher = feed.NewFeedService(laddered,
		feed.WithFetchTimeout(seconds(cfg.Poller.FetchTimeoutSeconds)),
		feed.WithUserAgents(agents),
	)
	extractor := extract.NewExtractor(laddered,
		extract.WithPageFetch(cfg.Poller.PageFetch),
		extract.WithUserAgents(agents),
	)
	a.poller = poller.NewPoller(a.store, a.fetcher, extractor, a.deps,
		poller.WithConcurrency(cfg.Poller.Concurrency),
	)
	a.scheduler = poller.NewScheduler(a.poller, a.store, a.deps)

	a.processor = enrichment.NewProcessor(a.store, a.newLLM(), cfg.LLM.Model, a.deps,
		enrichment.WithSummaryMaxTokens(cfg.LLM.SummaryMaxTokens),
		enrichment.WithDeepSummaries(a.flags.IsEnabled(ctx, featureflags.DeepSummaries)),
	)
	a.runner = arxiv.NewRunner(a.store, arxiv.NewFetcher(a.deps, seconds(cfg.Arxiv.TimeoutSeconds)), a.deps)

	a.manager = workers.NewManager(ctx, a.deps)
	a.triggers = workers.NewTriggers(a.manager, a.store, a.poller, a.processor, a.runner, a.deps)
	return a, nil
}

// newCache builds the LLM result cache; an unreachable Redis falls back to memory
func (a *app) newCache() (interfaces.Cache, error) {
	switch a.cfg.Cache.Type {
	case "redis":
		c, err := redis.NewRedisCache(a.cfg.Cache.Redis)
		if err != nil {
			a.logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCache(memoryCacheCleanup), nil
		}
		a.closers = append(a.closers, c)
		a.logger.Info("Using Redis cache", map[string]interface{}{"address": a.cfg.Cache.Redis.Address})
		return c, nil
	case "sqlite":
		c, err := sqlitecache.NewSQLiteCache(a.cfg.Cache.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		a.closers = append(a.closers, c)
		a.logger.Info("Using SQLite cache", map[string]interface{}{"path": a.cfg.Cache.SQLitePath})
		return c, nil
	case "memory":
		a.logger.Info("Using memory cache", nil)
		return memory.NewMemoryCache(memoryCacheCleanup), nil
	default:
		c, err := filecache.NewFileCache(a.cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create file cache: %w", err)
		}
		a.logger.Info("Using file cache", map[string]interface{}{"dir": a.cfg.Cache.Dir})
		return c, nil
	}
}

// newLLM selects the OpenAI client when a key is configured
func (a *app) newLLM() interfaces.LLMClient {
	if !a.cfg.LLMEnabled() {
		a.logger.Warn("No LLM API key configured, enrichment disabled", nil)
		return llm.Disabled{}
	}
	timeout := seconds(a.cfg.LLM.TimeoutSeconds)
	return openai.NewClient(stdhttp.NewStandardHTTPClient(timeout), a.cfg.LLM.APIKey, a.cfg.LLM.BaseURL, timeout)
}

// Close stops background tasks and releases resources in reverse order
func (a *app) Close() {
	if a.manager != nil {
		a.manager.StopAll()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.logger != nil {
			a.logger.Warn("Failed to close resource", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

// ladderDeps swaps in an HTTP client that sends each GET once. Feed and page
// fetches retry on their own delay ladders and must not multiply the requests.
func ladderDeps(deps interfaces.Dependencies, timeout time.Duration) interfaces.Dependencies {
	deps.HTTPClient = stdhttp.NewStandardHTTPClient(timeout, stdhttp.WithMaxAttempts(1))
	return deps
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
