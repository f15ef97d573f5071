// ABOUTME: Validation handler for checking candidate feed URLs before subscribing
// ABOUTME: Fetches and parses every URL concurrently and reports what it found

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"aiml-digests/api/dto/requests"
	"aiml-digests/api/dto/responses"
	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
	"github.com/danielgtaylor/huma/v2"
)

const (
	validateTimeout = 30 * time.Second
	previewTitles   = 5
)

// ValidateHandler handles feed URL validation
type ValidateHandler struct {
	fetcher interfaces.FeedFetcher
}

// NewValidateHandler creates a new validation handler
func NewValidateHandler(fetcher interfaces.FeedFetcher) *ValidateHandler {
	return &ValidateHandler{
		fetcher: fetcher,
	}
}

// RegisterRoutes registers validation routes
func (h *ValidateHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "validateFeeds",
		Method:      http.MethodPost,
		Path:        "/feeds/validate",
		Summary:     "Validate feed URLs",
		Description: "Fetches each URL and checks that it parses as an RSS or Atom feed",
		Tags:        []string{"Feeds"},
	}, h.ValidateFeeds)
}

// ValidateInput defines the input for feed validation
type ValidateInput struct {
	Body requests.ValidateFeedsRequest
}

// ValidateOutput defines the output for feed validation
type ValidateOutput struct {
	Body struct {
		Results []responses.FeedValidationResult `json:"results" doc:"Validation results for each URL"`
	}
}

// ValidateFeeds handles the POST /feeds/validate endpoint
func (h *ValidateHandler) ValidateFeeds(ctx context.Context, input *ValidateInput) (*ValidateOutput, error) {
	if len(input.Body.URLs) == 0 {
		return nil, huma.Error400BadRequest("No URLs provided")
	}

	var wg sync.WaitGroup
	results := make([]responses.FeedValidationResult, len(input.Body.URLs))

	for i, feedURL := range input.Body.URLs {
		wg.Add(1)
		go func(idx int, target string) {
			defer wg.Done()
			results[idx] = h.check(ctx, target)
		}(i, feedURL)
	}

	wg.Wait()

	output := &ValidateOutput{}
	output.Body.Results = results
	return output, nil
}

func (h *ValidateHandler) check(ctx context.Context, feedURL string) responses.FeedValidationResult {
	result := responses.FeedValidationResult{URL: feedURL, Status: "invalid"}

	probe := domain.Feed{URL: feedURL}
	if err := probe.Validate(); err != nil {
		result.Error = err.Error()
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	items, err := h.fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if len(items) == 0 {
		result.Error = "feed has no entries"
		return result
	}

	result.Status = "valid"
	result.Entries = len(items)
	result.SuggestedName = domain.NameFromURL(feedURL)
	for _, item := range items {
		if len(result.Titles) == previewTitles {
			break
		}
		result.Titles = append(result.Titles, item.DisplayTitle())
	}
	return result
}
