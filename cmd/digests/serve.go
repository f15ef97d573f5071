// ABOUTME: serve command runs the HTTP API next to the feed scheduler and enrichment loop
// ABOUTME: Shuts everything down gracefully when the context is cancelled

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aiml-digests/api"
	"aiml-digests/api/handlers"
	"aiml-digests/core/enrichment"
	"aiml-digests/pkg/featureflags"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server, feed scheduler and enrichment loop",
	Long: `serve starts one polling loop per enabled feed, the LLM enrichment loop
and, when the arxiv_extraction flag is on, a continuous ArXiv full-text run.
The HTTP API is mounted under /api; /health and /metrics sit at the root.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("Starting AI/ML digests", map[string]interface{}{
		"port":        cfg.Server.Port,
		"cache_type":  cfg.Cache.Type,
		"llm_enabled": a.processor.Enabled(),
	})

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	defer a.scheduler.Stop()

	startBackground(ctx, a)

	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
		Logger:     a.logger,
		RateLimit:  cfg.Server.RateLimit,
		RateWindow: seconds(cfg.Server.RateWindowSeconds),
		Flags:      a.flags,
		Gatherer:   a.registry,
	})
	api.Register(humaAPI,
		handlers.NewFeedHandler(a.store, a.scheduler, a.deps),
		handlers.NewValidateHandler(a.fetcher),
		handlers.NewArticleHandler(a.store, a.deps),
		handlers.NewTriggerHandler(a.triggers),
		handlers.NewStatusHandler(a.store, a.manager, a.processor, a.scheduler, a.flags, a.deps),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.logger.Error("HTTP server error", map[string]interface{}{"error": err.Error()})
			return err
		}
	}

	a.logger.Info("Shutting down server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
		return err
	}
	a.logger.Info("Server stopped", nil)
	return nil
}

// startBackground launches the long-running pipeline tasks; failures are logged
func startBackground(ctx context.Context, a *app) {
	if err := a.triggers.StartEnrichmentLoop(); err != nil {
		if errors.Is(err, enrichment.ErrDisabled) {
			a.logger.Warn("Enrichment loop not started: no LLM provider configured", nil)
		} else {
			a.logger.Error("Failed to start enrichment loop", map[string]interface{}{"error": err.Error()})
		}
	}

	if !a.flags.IsEnabled(ctx, featureflags.ArxivExtraction) {
		return
	}
	batch, err := a.triggers.TriggerExtractArxiv(cfg.Arxiv.BatchSize, true)
	if err != nil {
		a.logger.Error("Failed to start ArXiv extraction", map[string]interface{}{"error": err.Error()})
		return
	}
	a.logger.Info("ArXiv extraction started", map[string]interface{}{"batch_size": batch})
}
