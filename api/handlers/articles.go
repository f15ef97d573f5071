// ABOUTME: Article handlers for the Huma API
// ABOUTME: Listing, search, detail, deletion and status reset of stored articles

package handlers

import (
	"context"
	"net/http"

	"aiml-digests/api/dto/mappers"
	"aiml-digests/api/dto/responses"
	"aiml-digests/core/domain"
	"aiml-digests/core/interfaces"
	"github.com/danielgtaylor/huma/v2"
)

// ArticleRepository is the store surface the article and favorite handlers need
type ArticleRepository interface {
	interfaces.ArticleStore
	interfaces.FavoriteStore
}

// ArticleHandler handles article-related HTTP requests
type ArticleHandler struct {
	store  ArticleRepository
	logger interfaces.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(store ArticleRepository, deps interfaces.Dependencies) *ArticleHandler {
	return &ArticleHandler{
		store:  store,
		logger: deps.WithDefaults().Logger,
	}
}

// RegisterRoutes registers all article routes
func (h *ArticleHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listArticles",
		Method:      http.MethodGet,
		Path:        "/articles",
		Summary:     "List articles",
		Description: "Lists articles filtered by feed, keyword or processing status",
		Tags:        []string{"Articles"},
	}, h.ListArticles)

	huma.Register(api, huma.Operation{
		OperationID: "searchArticles",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search articles",
		Description: "Full-text search over titles, summaries and content, plus keyword matches",
		Tags:        []string{"Articles"},
	}, h.SearchArticles)

	huma.Register(api, huma.Operation{
		OperationID: "getArticle",
		Method:      http.MethodGet,
		Path:        "/articles/{id}",
		Summary:     "Get an article",
		Tags:        []string{"Articles"},
	}, h.GetArticle)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteArticle",
		Method:        http.MethodDelete,
		Path:          "/articles/{id}",
		Summary:       "Delete an article",
		Tags:          []string{"Articles"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteArticle)

	huma.Register(api, huma.Operation{
		OperationID: "resetArticleStatus",
		Method:      http.MethodPost,
		Path:        "/articles/{id}/reset",
		Summary:     "Retry a failed article",
		Description: "Moves an article out of content_extraction_failed or llm_error back into its queue",
		Tags:        []string{"Articles"},
	}, h.ResetStatus)

	h.registerFavoriteRoutes(api)
}

// ArticleIDInput is the path parameter shared by single-article operations
type ArticleIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Article ID"`
}

// ListArticlesInput defines the listing query
type ListArticlesInput struct {
	FeedID  int64  `query:"feed_id" minimum:"0" doc:"Only articles of this feed"`
	Keyword string `query:"keyword" doc:"Text matched against titles, summaries, content and keywords"`
	Status  string `query:"status" enum:"pending_content,pending_llm,processed,content_extraction_failed,llm_error,insufficient_content" doc:"Only articles in this processing status"`
	Sort    string `query:"sort" enum:"date_desc,date_asc,title_asc,title_desc" default:"date_desc"`
	Limit   int    `query:"limit" minimum:"1" maximum:"500" default:"50"`
	Offset  int    `query:"offset" minimum:"0" default:"0"`
}

// ArticleListOutput wraps a page of articles
type ArticleListOutput struct {
	Body responses.ArticleListResponse
}

// ListArticles handles GET /articles
func (h *ArticleHandler) ListArticles(ctx context.Context, input *ListArticlesInput) (*ArticleListOutput, error) {
	articles, err := h.store.ListArticles(ctx, domain.ArticleFilter{
		FeedID:  input.FeedID,
		Keyword: input.Keyword,
		Status:  domain.ProcessingStatus(input.Status),
		Sort:    domain.SortOrder(input.Sort),
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return listOutput(articles, input.Limit, input.Offset), nil
}

// SearchArticlesInput defines the search query
type SearchArticlesInput struct {
	Query  string `query:"q" minLength:"1" maxLength:"500" required:"true" doc:"Search text"`
	Limit  int    `query:"limit" minimum:"1" maximum:"500" default:"50"`
	Offset int    `query:"offset" minimum:"0" default:"0"`
}

// SearchArticles handles GET /search
func (h *ArticleHandler) SearchArticles(ctx context.Context, input *SearchArticlesInput) (*ArticleListOutput, error) {
	articles, err := h.store.SearchArticles(ctx, input.Query, input.Limit, input.Offset)
	if err != nil {
		return nil, toHumaError(err)
	}
	return listOutput(articles, input.Limit, input.Offset), nil
}

func listOutput(articles []*domain.Article, limit, offset int) *ArticleListOutput {
	out := &ArticleListOutput{}
	out.Body.Articles = mappers.ToArticleSummaries(articles)
	out.Body.Limit = limit
	out.Body.Offset = offset
	return out
}

// ArticleOutput wraps a full article
type ArticleOutput struct {
	Body *responses.ArticleResponse
}

// GetArticle handles GET /articles/{id}
func (h *ArticleHandler) GetArticle(ctx context.Context, input *ArticleIDInput) (*ArticleOutput, error) {
	article, err := h.store.GetArticle(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleOutput{Body: mappers.ToArticleResponse(article)}, nil
}

// DeleteArticle handles DELETE /articles/{id}
func (h *ArticleHandler) DeleteArticle(ctx context.Context, input *ArticleIDInput) (*struct{}, error) {
	if err := h.store.DeleteArticle(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	h.logger.Info("Article deleted", map[string]interface{}{"article_id": input.ID})
	return nil, nil
}

// ResetStatusOutput reports the new status
type ResetStatusOutput struct {
	Body responses.ResetStatusResponse
}

// ResetStatus handles POST /articles/{id}/reset
func (h *ArticleHandler) ResetStatus(ctx context.Context, input *ArticleIDInput) (*ResetStatusOutput, error) {
	status, err := h.store.ResetArticleStatus(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	out := &ResetStatusOutput{}
	out.Body.ID = input.ID
	out.Body.ProcessingStatus = string(status)
	return out, nil
}
