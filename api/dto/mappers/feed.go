// ABOUTME: Mappers for converting between domain models and API DTOs
// ABOUTME: Field-by-name copies go through copier; derived fields are filled in by hand

package mappers

import (
	"aiml-digests/api/dto/requests"
	"aiml-digests/api/dto/responses"
	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"github.com/jinzhu/copier"
)

// ToFeedResponse converts a domain Feed to a FeedResponse DTO
func ToFeedResponse(feed *domain.Feed) *responses.FeedResponse {
	if feed == nil {
		return nil
	}

	response := &responses.FeedResponse{}
	_ = copier.Copy(response, feed)
	return response
}

// ToFeedResponses converts multiple domain Feeds to FeedResponse DTOs
func ToFeedResponses(feeds []*domain.Feed) []responses.FeedResponse {
	out := make([]responses.FeedResponse, 0, len(feeds))
	for _, feed := range feeds {
		if response := ToFeedResponse(feed); response != nil {
			out = append(out, *response)
		}
	}
	return out
}

// FeedFromAddRequest builds a new feed from an add request with defaults applied
func FeedFromAddRequest(req *requests.AddFeedRequest) (*domain.Feed, error) {
	req.ApplyDefaults()

	feed, err := domain.NewFeed(req.URL, req.Name)
	if err != nil {
		return nil, &coreerrors.ValidationError{Field: "url", Message: err.Error()}
	}
	feed.PollingInterval = req.PollingInterval
	feed.MaxArticles = req.MaxArticles
	feed.Enabled = *req.Enabled
	return feed, nil
}

// FeedUpdateFromRequest converts a partial edit into the store's update form
func FeedUpdateFromRequest(req *requests.UpdateFeedRequest) domain.FeedUpdate {
	return domain.FeedUpdate{
		Name:            req.Name,
		URL:             req.URL,
		Enabled:         req.Enabled,
		PollingInterval: req.PollingInterval,
		MaxArticles:     req.MaxArticles,
		DisplayOrder:    req.DisplayOrder,
	}
}

// FeedOrderFromRequest converts reorder entries into an id to position map
func FeedOrderFromRequest(req *requests.ReorderFeedsRequest) map[int64]int {
	order := make(map[int64]int, len(req.Order))
	for _, p := range req.Order {
		order[p.ID] = p.DisplayOrder
	}
	return order
}

// FeedExportsFromImport applies the import defaults to every entry
func FeedExportsFromImport(feeds []requests.ImportFeed) []domain.FeedExport {
	out := make([]domain.FeedExport, 0, len(feeds))
	for _, f := range feeds {
		export := domain.FeedExport{
			URL:             f.URL,
			Name:            f.Name,
			Enabled:         true,
			PollingInterval: f.PollingInterval,
			MaxArticles:     f.MaxArticles,
			DisplayOrder:    f.DisplayOrder,
		}
		if f.Enabled != nil {
			export.Enabled = *f.Enabled
		}
		if export.Name == "" {
			export.Name = domain.NameFromURL(f.URL)
		}
		if export.PollingInterval == 0 {
			export.PollingInterval = domain.DefaultPollingInterval
		}
		if export.MaxArticles == 0 {
			export.MaxArticles = domain.DefaultMaxArticles
		}
		out = append(out, export)
	}
	return out
}
