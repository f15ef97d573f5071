// ABOUTME: Status, statistics and maintenance handlers
// ABOUTME: Reports queue sizes, background task state, ArXiv progress and feature flags

package handlers

import (
	"context"
	"net/http"

	"aiml-digests/api/dto/mappers"
	"aiml-digests/api/dto/responses"
	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
	"aiml-digests/core/workers"
	"aiml-digests/pkg/featureflags"
	"github.com/danielgtaylor/huma/v2"
)

// TaskReporter exposes background task state
type TaskReporter interface {
	Running() []workers.TaskStatus
	Results() []workers.TaskResult
}

// EnrichmentReporter exposes the enrichment processor state
type EnrichmentReporter interface {
	Enabled() bool
	InFlight() []int64
}

// ScheduleReporter exposes the feeds with a live polling loop
type ScheduleReporter interface {
	Running() []int64
}

// StatusHandler handles pipeline status and maintenance requests
type StatusHandler struct {
	store     interfaces.ArticleStore
	tasks     TaskReporter
	processor EnrichmentReporter
	scheduler ScheduleReporter
	flags     featureflags.Manager
	logger    interfaces.Logger
}

// NewStatusHandler creates a status handler; scheduler may be nil
func NewStatusHandler(store interfaces.ArticleStore, tasks TaskReporter, processor EnrichmentReporter, scheduler ScheduleReporter, flags featureflags.Manager, deps interfaces.Dependencies) *StatusHandler {
	return &StatusHandler{
		store:     store,
		tasks:     tasks,
		processor: processor,
		scheduler: scheduler,
		flags:     flags,
		logger:    deps.WithDefaults().Logger,
	}
}

// RegisterRoutes registers status and maintenance routes
func (h *StatusHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getStatus",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Pipeline status",
		Description: "Article counts per processing status plus background task and scheduler state",
		Tags:        []string{"Status"},
	}, h.GetStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getArxivStats",
		Method:      http.MethodGet,
		Path:        "/stats/arxiv",
		Summary:     "ArXiv extraction statistics",
		Tags:        []string{"Status"},
	}, h.GetArxivStats)

	huma.Register(api, huma.Operation{
		OperationID: "cleanupKeywords",
		Method:      http.MethodPost,
		Path:        "/admin/cleanup-keywords",
		Summary:     "Delete keywords no article uses",
		Tags:        []string{"Admin"},
	}, h.CleanupKeywords)
}

// StatusOutput wraps the status summary
type StatusOutput struct {
	Body responses.StatusResponse
}

// GetStatus handles GET /status
func (h *StatusHandler) GetStatus(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	counts, err := h.store.StatusCounts(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}

	out := &StatusOutput{}
	out.Body.StatusCounts, out.Body.TotalArticles = mappers.ToStatusCounts(counts)
	out.Body.RunningTasks = mappers.ToTaskStatuses(h.tasks.Running())
	out.Body.RecentResults = mappers.ToTaskResults(h.tasks.Results())
	out.Body.LLMEnabled = h.processor.Enabled()

	out.Body.InFlight = h.processor.InFlight()
	if out.Body.InFlight == nil {
		out.Body.InFlight = []int64{}
	}
	out.Body.ScheduledFeeds = []int64{}
	if h.scheduler != nil {
		out.Body.ScheduledFeeds = h.scheduler.Running()
	}

	out.Body.Features = map[string]bool{}
	if h.flags != nil {
		for flag, on := range h.flags.GetAllFlags() {
			out.Body.Features[string(flag)] = on
		}
	}
	return out, nil
}

// ArxivStatsOutput wraps the ArXiv statistics
type ArxivStatsOutput struct {
	Body *domain.ArxivStats
}

// GetArxivStats handles GET /stats/arxiv
func (h *StatusHandler) GetArxivStats(ctx context.Context, _ *struct{}) (*ArxivStatsOutput, error) {
	stats, err := h.store.ArxivStatistics(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArxivStatsOutput{Body: stats}, nil
}

// CleanupOutput reports removed keywords
type CleanupOutput struct {
	Body responses.CleanupResponse
}

// CleanupKeywords handles POST /admin/cleanup-keywords
func (h *StatusHandler) CleanupKeywords(ctx context.Context, _ *struct{}) (*CleanupOutput, error) {
	removed, err := h.store.CleanOrphanedKeywords(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	h.logger.Info("Orphaned keywords removed", map[string]interface{}{"removed": removed})
	return &CleanupOutput{Body: responses.CleanupResponse{Removed: removed}}, nil
}
