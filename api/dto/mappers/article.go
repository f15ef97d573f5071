// ABOUTME: Mappers for articles, favorites and background task state
// ABOUTME: Status enums are flattened to strings on the way out

package mappers

import (
	"aiml-digests/api/dto/responses"
	"aiml-digests/core/domain"
	"aiml-digests/core/workers"
	"github.com/jinzhu/copier"
)

// ToArticleSummary converts an article for listings
func ToArticleSummary(a *domain.Article) *responses.ArticleSummaryResponse {
	if a == nil {
		return nil
	}
	out := &responses.ArticleSummaryResponse{}
	_ = copier.Copy(out, a)
	return out
}

// ToArticleSummaries converts a page of articles
func ToArticleSummaries(articles []*domain.Article) []responses.ArticleSummaryResponse {
	out := make([]responses.ArticleSummaryResponse, 0, len(articles))
	for _, a := range articles {
		if s := ToArticleSummary(a); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// ToArticleResponse converts an article with all of its texts
func ToArticleResponse(a *domain.Article) *responses.ArticleResponse {
	if a == nil {
		return nil
	}
	out := &responses.ArticleResponse{}
	_ = copier.Copy(out, a)
	out.ArticleSummaryResponse = *ToArticleSummary(a)
	return out
}

// ToFavoriteResponse converts a favorite and its joined article
func ToFavoriteResponse(f *domain.Favorite) *responses.FavoriteResponse {
	if f == nil {
		return nil
	}
	out := &responses.FavoriteResponse{}
	_ = copier.Copy(out, f)

	out.Tags = f.TagList()
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.Article = ToArticleSummary(f.Article)
	return out
}

// ToFavoriteResponses converts a page of favorites
func ToFavoriteResponses(favorites []*domain.Favorite) []responses.FavoriteResponse {
	out := make([]responses.FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		if r := ToFavoriteResponse(f); r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// ToTaskStatuses converts running task descriptions
func ToTaskStatuses(tasks []workers.TaskStatus) []responses.TaskStatusResponse {
	out := make([]responses.TaskStatusResponse, 0, len(tasks))
	if len(tasks) == 0 {
		return out
	}
	_ = copier.Copy(&out, &tasks)
	return out
}

// ToTaskResults converts completed task outcomes
func ToTaskResults(results []workers.TaskResult) []responses.TaskResultResponse {
	out := make([]responses.TaskResultResponse, 0, len(results))
	if len(results) == 0 {
		return out
	}
	_ = copier.Copy(&out, &results)
	return out
}

// ToStatusCounts flattens per-status counts and returns their total
func ToStatusCounts(counts map[domain.ProcessingStatus]int) (map[string]int, int) {
	out := make(map[string]int, len(counts))
	total := 0
	for status, n := range counts {
		out[string(status)] = n
		total += n
	}
	return out, total
}
