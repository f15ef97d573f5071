// ABOUTME: Favorite handlers for the Huma API
// ABOUTME: Saves articles with notes and comma-delimited tags

package handlers

import (
	"context"
	"net/http"

	"aiml-digests/api/dto/mappers"
	"aiml-digests/api/dto/requests"
	"aiml-digests/api/dto/responses"
	"github.com/danielgtaylor/huma/v2"
)

func (h *ArticleHandler) registerFavoriteRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listFavorites",
		Method:      http.MethodGet,
		Path:        "/favorites",
		Summary:     "List favorites",
		Tags:        []string{"Favorites"},
	}, h.ListFavorites)

	huma.Register(api, huma.Operation{
		OperationID: "listFavoriteTags",
		Method:      http.MethodGet,
		Path:        "/favorites/tags",
		Summary:     "List favorite tags",
		Tags:        []string{"Favorites"},
	}, h.FavoriteTags)

	huma.Register(api, huma.Operation{
		OperationID: "favoriteStatus",
		Method:      http.MethodGet,
		Path:        "/articles/{id}/favorite",
		Summary:     "Check whether an article is a favorite",
		Tags:        []string{"Favorites"},
	}, h.FavoriteStatus)

	huma.Register(api, huma.Operation{
		OperationID: "addFavorite",
		Method:      http.MethodPut,
		Path:        "/articles/{id}/favorite",
		Summary:     "Save an article as favorite",
		Description: "Creates the favorite, or replaces notes and tags when it already exists",
		Tags:        []string{"Favorites"},
	}, h.AddFavorite)

	huma.Register(api, huma.Operation{
		OperationID: "updateFavorite",
		Method:      http.MethodPatch,
		Path:        "/articles/{id}/favorite",
		Summary:     "Update favorite notes and tags",
		Tags:        []string{"Favorites"},
	}, h.UpdateFavorite)

	huma.Register(api, huma.Operation{
		OperationID:   "removeFavorite",
		Method:        http.MethodDelete,
		Path:          "/articles/{id}/favorite",
		Summary:       "Remove a favorite",
		Tags:          []string{"Favorites"},
		DefaultStatus: http.StatusNoContent,
	}, h.RemoveFavorite)
}

// FavoriteInput carries the article ID and the favorite fields
type FavoriteInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body requests.FavoriteRequest
}

// FavoriteStatusOutput reports whether an article is saved
type FavoriteStatusOutput struct {
	Body responses.FavoriteStatusResponse
}

// AddFavorite handles PUT /articles/{id}/favorite
func (h *ArticleHandler) AddFavorite(ctx context.Context, input *FavoriteInput) (*FavoriteStatusOutput, error) {
	if _, err := h.store.AddFavorite(ctx, input.ID, input.Body.Notes, input.Body.Tags); err != nil {
		return nil, toHumaError(err)
	}
	return favoriteStatus(input.ID, true), nil
}

// UpdateFavorite handles PATCH /articles/{id}/favorite
func (h *ArticleHandler) UpdateFavorite(ctx context.Context, input *FavoriteInput) (*FavoriteStatusOutput, error) {
	if err := h.store.UpdateFavorite(ctx, input.ID, input.Body.Notes, input.Body.Tags); err != nil {
		return nil, toHumaError(err)
	}
	return favoriteStatus(input.ID, true), nil
}

// RemoveFavorite handles DELETE /articles/{id}/favorite
func (h *ArticleHandler) RemoveFavorite(ctx context.Context, input *ArticleIDInput) (*struct{}, error) {
	if err := h.store.RemoveFavorite(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

// FavoriteStatus handles GET /articles/{id}/favorite
func (h *ArticleHandler) FavoriteStatus(ctx context.Context, input *ArticleIDInput) (*FavoriteStatusOutput, error) {
	saved, err := h.store.IsFavorite(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return favoriteStatus(input.ID, saved), nil
}

func favoriteStatus(id int64, saved bool) *FavoriteStatusOutput {
	out := &FavoriteStatusOutput{}
	out.Body.ArticleID = id
	out.Body.IsFavorite = saved
	return out
}

// ListFavoritesInput defines the favorites query
type ListFavoritesInput struct {
	Tag    string `query:"tag" doc:"Only favorites carrying this tag"`
	Limit  int    `query:"limit" minimum:"1" maximum:"500" default:"50"`
	Offset int    `query:"offset" minimum:"0" default:"0"`
}

// ListFavoritesOutput wraps a page of favorites
type ListFavoritesOutput struct {
	Body responses.FavoriteListResponse
}

// ListFavorites handles GET /favorites
func (h *ArticleHandler) ListFavorites(ctx context.Context, input *ListFavoritesInput) (*ListFavoritesOutput, error) {
	favorites, err := h.store.ListFavorites(ctx, input.Tag, input.Limit, input.Offset)
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &ListFavoritesOutput{}
	out.Body.Favorites = mappers.ToFavoriteResponses(favorites)
	return out, nil
}

// TagListOutput lists favorite tags
type TagListOutput struct {
	Body responses.TagListResponse
}

// FavoriteTags handles GET /favorites/tags
func (h *ArticleHandler) FavoriteTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	tags, err := h.store.FavoriteTags(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	if tags == nil {
		tags = []string{}
	}
	return &TagListOutput{Body: responses.TagListResponse{Tags: tags}}, nil
}
