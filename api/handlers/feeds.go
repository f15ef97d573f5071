// ABOUTME: Feed handlers for the Huma API
// ABOUTME: Subscription management; edits restart the affected polling loops

package handlers

import (
	"context"
	"net/http"

	"aiml-digests/api/dto/mappers"
	"aiml-digests/api/dto/requests"
	"aiml-digests/api/dto/responses"
	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
	"github.com/danielgtaylor/huma/v2"
)

// FeedScheduler restarts polling loops after feed edits
type FeedScheduler interface {
	Reschedule(ctx context.Context, feedID int64) error
	Running() []int64
}

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	store     interfaces.FeedStore
	scheduler FeedScheduler
	logger    interfaces.Logger
}

// NewFeedHandler creates a new feed handler; scheduler may be nil when nothing is polling
func NewFeedHandler(store interfaces.FeedStore, scheduler FeedScheduler, deps interfaces.Dependencies) *FeedHandler {
	return &FeedHandler{
		store:     store,
		scheduler: scheduler,
		logger:    deps.WithDefaults().Logger,
	}
}

// RegisterRoutes registers all feed-related routes
func (h *FeedHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listFeeds",
		Method:      http.MethodGet,
		Path:        "/feeds",
		Summary:     "List feeds",
		Tags:        []string{"Feeds"},
	}, h.ListFeeds)

	huma.Register(api, huma.Operation{
		OperationID:   "addFeed",
		Method:        http.MethodPost,
		Path:          "/feeds",
		Summary:       "Subscribe to a feed",
		Description:   "Adds a feed and starts polling it when enabled",
		Tags:          []string{"Feeds"},
		DefaultStatus: http.StatusCreated,
	}, h.AddFeed)

	huma.Register(api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/feeds/{id}",
		Summary:     "Get a feed",
		Tags:        []string{"Feeds"},
	}, h.GetFeed)

	huma.Register(api, huma.Operation{
		OperationID: "updateFeed",
		Method:      http.MethodPatch,
		Path:        "/feeds/{id}",
		Summary:     "Update a feed",
		Tags:        []string{"Feeds"},
	}, h.UpdateFeed)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteFeed",
		Method:        http.MethodDelete,
		Path:          "/feeds/{id}",
		Summary:       "Delete a feed and its articles",
		Tags:          []string{"Feeds"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteFeed)

	huma.Register(api, huma.Operation{
		OperationID: "toggleFeed",
		Method:      http.MethodPost,
		Path:        "/feeds/{id}/toggle",
		Summary:     "Enable, disable or flip a feed",
		Tags:        []string{"Feeds"},
	}, h.ToggleFeed)

	huma.Register(api, huma.Operation{
		OperationID:   "reorderFeeds",
		Method:        http.MethodPost,
		Path:          "/feeds/reorder",
		Summary:       "Reorder feeds",
		Tags:          []string{"Feeds"},
		DefaultStatus: http.StatusNoContent,
	}, h.ReorderFeeds)

	huma.Register(api, huma.Operation{
		OperationID: "exportFeeds",
		Method:      http.MethodGet,
		Path:        "/feeds/export",
		Summary:     "Export feeds",
		Tags:        []string{"Feeds"},
	}, h.ExportFeeds)

	huma.Register(api, huma.Operation{
		OperationID: "importFeeds",
		Method:      http.MethodPost,
		Path:        "/feeds/import",
		Summary:     "Import feeds",
		Description: "Adds feeds from an export document; existing URLs are skipped unless overwrite is set",
		Tags:        []string{"Feeds"},
	}, h.ImportFeeds)
}

// FeedIDInput is the path parameter shared by single-feed operations
type FeedIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Feed ID"`
}

// ListFeedsInput defines the query for listing feeds
type ListFeedsInput struct {
	EnabledOnly bool `query:"enabled_only" doc:"Only return enabled feeds"`
}

// ListFeedsOutput defines the output for listing feeds
type ListFeedsOutput struct {
	Body responses.FeedListResponse
}

// ListFeeds handles GET /feeds
func (h *FeedHandler) ListFeeds(ctx context.Context, input *ListFeedsInput) (*ListFeedsOutput, error) {
	feeds, err := h.store.ListFeeds(ctx, input.EnabledOnly)
	if err != nil {
		return nil, toHumaError(err)
	}

	out := &ListFeedsOutput{}
	out.Body.Feeds = mappers.ToFeedResponses(feeds)
	out.Body.Total = len(out.Body.Feeds)
	return out, nil
}

// AddFeedInput defines the input for subscribing
type AddFeedInput struct {
	Body requests.AddFeedRequest
}

// FeedOutput wraps a single feed
type FeedOutput struct {
	Body *responses.FeedResponse
}

// AddFeed handles POST /feeds
func (h *FeedHandler) AddFeed(ctx context.Context, input *AddFeedInput) (*FeedOutput, error) {
	feed, err := mappers.FeedFromAddRequest(&input.Body)
	if err != nil {
		return nil, toHumaError(err)
	}

	id, err := h.store.AddFeed(ctx, feed)
	if err != nil {
		return nil, toHumaError(err)
	}
	h.logger.Info("Feed added", map[string]interface{}{"feed_id": id, "url": feed.URL})
	h.reschedule(ctx, id)

	return h.feedOutput(ctx, id)
}

// GetFeed handles GET /feeds/{id}
func (h *FeedHandler) GetFeed(ctx context.Context, input *FeedIDInput) (*FeedOutput, error) {
	return h.feedOutput(ctx, input.ID)
}

// UpdateFeedInput defines the input for a partial edit
type UpdateFeedInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body requests.UpdateFeedRequest
}

// UpdateFeed handles PATCH /feeds/{id}
func (h *FeedHandler) UpdateFeed(ctx context.Context, input *UpdateFeedInput) (*FeedOutput, error) {
	if input.Body.Empty() {
		return nil, huma.Error400BadRequest("no fields to update")
	}
	if err := h.store.UpdateFeed(ctx, input.ID, mappers.FeedUpdateFromRequest(&input.Body)); err != nil {
		return nil, toHumaError(err)
	}
	h.reschedule(ctx, input.ID)
	return h.feedOutput(ctx, input.ID)
}

// DeleteFeed handles DELETE /feeds/{id}
func (h *FeedHandler) DeleteFeed(ctx context.Context, input *FeedIDInput) (*struct{}, error) {
	if err := h.store.DeleteFeed(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	h.logger.Info("Feed deleted", map[string]interface{}{"feed_id": input.ID})
	h.reschedule(ctx, input.ID)
	return nil, nil
}

// ToggleFeedInput defines the input for toggling
type ToggleFeedInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body *requests.ToggleFeedRequest `required:"false"`
}

// ToggleFeedOutput reports the new state
type ToggleFeedOutput struct {
	Body responses.FeedToggleResponse
}

// ToggleFeed handles POST /feeds/{id}/toggle
func (h *FeedHandler) ToggleFeed(ctx context.Context, input *ToggleFeedInput) (*ToggleFeedOutput, error) {
	var target *bool
	if input.Body != nil {
		target = input.Body.Enabled
	}

	enabled, err := h.store.ToggleFeed(ctx, input.ID, target)
	if err != nil {
		return nil, toHumaError(err)
	}
	h.reschedule(ctx, input.ID)

	out := &ToggleFeedOutput{}
	out.Body.ID = input.ID
	out.Body.Enabled = enabled
	return out, nil
}

// ReorderFeedsInput defines the input for reordering
type ReorderFeedsInput struct {
	Body requests.ReorderFeedsRequest
}

// ReorderFeeds handles POST /feeds/reorder
func (h *FeedHandler) ReorderFeeds(ctx context.Context, input *ReorderFeedsInput) (*struct{}, error) {
	if err := h.store.ReorderFeeds(ctx, mappers.FeedOrderFromRequest(&input.Body)); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

// ExportFeedsOutput is the export document
type ExportFeedsOutput struct {
	Body domain.FeedExportFile
}

// ExportFeeds handles GET /feeds/export
func (h *FeedHandler) ExportFeeds(ctx context.Context, _ *struct{}) (*ExportFeedsOutput, error) {
	feeds, err := h.store.ExportFeeds(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	if feeds == nil {
		feeds = []domain.FeedExport{}
	}
	return &ExportFeedsOutput{Body: domain.FeedExportFile{Feeds: feeds}}, nil
}

// ImportFeedsInput defines the input for importing
type ImportFeedsInput struct {
	Body requests.ImportFeedsRequest
}

// ImportFeedsOutput reports the import counts
type ImportFeedsOutput struct {
	Body *domain.ImportResult
}

// ImportFeeds handles POST /feeds/import
func (h *FeedHandler) ImportFeeds(ctx context.Context, input *ImportFeedsInput) (*ImportFeedsOutput, error) {
	result, err := h.store.ImportFeeds(ctx, mappers.FeedExportsFromImport(input.Body.Feeds), input.Body.Overwrite)
	if err != nil {
		return nil, toHumaError(err)
	}
	h.logger.Info("Feeds imported", map[string]interface{}{
		"added":   result.Added,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"errors":  result.Errors,
	})
	h.scheduleUnscheduled(ctx)
	return &ImportFeedsOutput{Body: result}, nil
}

func (h *FeedHandler) feedOutput(ctx context.Context, id int64) (*FeedOutput, error) {
	feed, err := h.store.GetFeed(ctx, id)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &FeedOutput{Body: mappers.ToFeedResponse(feed)}, nil
}

// reschedule failures are logged; the edit itself already succeeded
func (h *FeedHandler) reschedule(ctx context.Context, id int64) {
	if h.scheduler == nil {
		return
	}
	if err := h.scheduler.Reschedule(ctx, id); err != nil {
		h.logger.Warn("Failed to reschedule feed", map[string]interface{}{"feed_id": id, "error": err.Error()})
	}
}

// scheduleUnscheduled starts loops for enabled feeds that have none, such as freshly imported ones
func (h *FeedHandler) scheduleUnscheduled(ctx context.Context) {
	if h.scheduler == nil {
		return
	}
	running := make(map[int64]bool)
	for _, id := range h.scheduler.Running() {
		running[id] = true
	}

	feeds, err := h.store.ListFeeds(ctx, true)
	if err != nil {
		h.logger.Warn("Failed to list feeds for scheduling", map[string]interface{}{"error": err.Error()})
		return
	}
	for _, f := range feeds {
		if !running[f.ID] {
			h.reschedule(ctx, f.ID)
		}
	}
}
