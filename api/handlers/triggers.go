// ABOUTME: Trigger handlers start pipeline stages as background tasks
// ABOUTME: Every trigger answers 202 immediately; 409 means the task is already running

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"aiml-digests/api/dto/requests"
	"aiml-digests/api/dto/responses"
	"aiml-digests/core/workers"
	"github.com/danielgtaylor/huma/v2"
)

// TriggerService launches background pipeline runs
type TriggerService interface {
	TriggerPollNow() error
	TriggerProcessPending() error
	TriggerExtractArxiv(batch int, continuous bool) (int, error)
	TriggerExtractArxivArticle(ctx context.Context, articleID int64) error
	TriggerDeepSummary(ctx context.Context, articleID int64) error
}

// TriggerHandler handles manual pipeline triggers
type TriggerHandler struct {
	triggers TriggerService
}

// NewTriggerHandler creates a new trigger handler
func NewTriggerHandler(triggers TriggerService) *TriggerHandler {
	return &TriggerHandler{triggers: triggers}
}

// RegisterRoutes registers all trigger routes
func (h *TriggerHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "triggerPoll",
		Method:        http.MethodPost,
		Path:          "/triggers/poll",
		Summary:       "Poll all feeds now",
		Tags:          []string{"Triggers"},
		DefaultStatus: http.StatusAccepted,
	}, h.TriggerPoll)

	huma.Register(api, huma.Operation{
		OperationID:   "triggerProcess",
		Method:        http.MethodPost,
		Path:          "/triggers/process",
		Summary:       "Process pending articles",
		Description:   "Summarizes queued articles and generates pending deep summaries until the queues are empty",
		Tags:          []string{"Triggers"},
		DefaultStatus: http.StatusAccepted,
	}, h.TriggerProcess)

	huma.Register(api, huma.Operation{
		OperationID:   "triggerArxiv",
		Method:        http.MethodPost,
		Path:          "/triggers/arxiv",
		Summary:       "Extract ArXiv full texts",
		Tags:          []string{"Triggers"},
		DefaultStatus: http.StatusAccepted,
	}, h.TriggerArxiv)

	huma.Register(api, huma.Operation{
		OperationID:   "triggerArticleArxiv",
		Method:        http.MethodPost,
		Path:          "/articles/{id}/extract-arxiv",
		Summary:       "Extract the full text of one ArXiv article",
		Tags:          []string{"Triggers"},
		DefaultStatus: http.StatusAccepted,
	}, h.TriggerArticleArxiv)

	huma.Register(api, huma.Operation{
		OperationID:   "triggerDeepSummary",
		Method:        http.MethodPost,
		Path:          "/articles/{id}/deep-summary",
		Summary:       "Generate the deep summary of one article",
		Description:   "Requires the article's full text to be extracted",
		Tags:          []string{"Triggers"},
		DefaultStatus: http.StatusAccepted,
	}, h.TriggerDeepSummary)
}

// TriggerOutput acknowledges a started task
type TriggerOutput struct {
	Body responses.TriggerResponse
}

func accepted(task, message string) *TriggerOutput {
	return &TriggerOutput{Body: responses.TriggerResponse{Task: task, Message: message}}
}

// TriggerPoll handles POST /triggers/poll
func (h *TriggerHandler) TriggerPoll(ctx context.Context, _ *struct{}) (*TriggerOutput, error) {
	if err := h.triggers.TriggerPollNow(); err != nil {
		return nil, toHumaError(err)
	}
	return accepted(workers.TaskPollAll, "Polling all enabled feeds"), nil
}

// TriggerProcess handles POST /triggers/process
func (h *TriggerHandler) TriggerProcess(ctx context.Context, _ *struct{}) (*TriggerOutput, error) {
	if err := h.triggers.TriggerProcessPending(); err != nil {
		return nil, toHumaError(err)
	}
	return accepted(workers.TaskProcessPending, "Processing pending articles"), nil
}

// TriggerArxivInput configures an ArXiv run; the body is optional
type TriggerArxivInput struct {
	Body *requests.ArxivTriggerRequest `required:"false"`
}

// TriggerArxiv handles POST /triggers/arxiv
func (h *TriggerHandler) TriggerArxiv(ctx context.Context, input *TriggerArxivInput) (*TriggerOutput, error) {
	var req requests.ArxivTriggerRequest
	if input.Body != nil {
		req = *input.Body
	}

	batch, err := h.triggers.TriggerExtractArxiv(req.BatchSize, req.Continuous)
	if err != nil {
		return nil, toHumaError(err)
	}

	mode := "one batch"
	if req.Continuous {
		mode = "continuous batches"
	}
	out := accepted(workers.TaskArxiv, fmt.Sprintf("Extracting ArXiv full texts in %s of %d", mode, batch))
	out.Body.BatchSize = batch
	return out, nil
}

// TriggerArticleArxiv handles POST /articles/{id}/extract-arxiv
func (h *TriggerHandler) TriggerArticleArxiv(ctx context.Context, input *ArticleIDInput) (*TriggerOutput, error) {
	if err := h.triggers.TriggerExtractArxivArticle(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return accepted(workers.ArxivArticleTask(input.ID), "Extracting ArXiv full text"), nil
}

// TriggerDeepSummary handles POST /articles/{id}/deep-summary
func (h *TriggerHandler) TriggerDeepSummary(ctx context.Context, input *ArticleIDInput) (*TriggerOutput, error) {
	if err := h.triggers.TriggerDeepSummary(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return accepted(workers.DeepSummaryTask(input.ID), "Generating deep summary"), nil
}
