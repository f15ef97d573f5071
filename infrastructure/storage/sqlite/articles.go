// ABOUTME: Article persistence: idempotent ingest, status queues, enrichment results and search
// ABOUTME: Read queries share one select that joins the feed name, keywords and favorite flag

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
)

const defaultListLimit = 50

func articleNotFound(id int64) error {
	return &coreerrors.NotFoundError{Resource: "article", ID: strconv.FormatInt(id, 10)}
}

// articleSelect is the base read query; callers add filters, ordering and paging
func articleSelect() sq.SelectBuilder {
	return sq.Select(
		"a.id", "a.feed_id", "a.guid", "a.link", "a.title", "a.published_date", "a.fetched_date",
		"a.raw_content", "a.summary", "a.llm_model_used", "a.llm_processed_date", "a.processing_status",
		"a.arxiv_id", "a.full_content_status", "a.full_content", "a.full_content_extracted_date",
		"a.deep_summary_status", "a.deep_summary", "a.deep_summary_date",
		"f.name", "GROUP_CONCAT(k.keyword_text)",
		"EXISTS (SELECT 1 FROM favorites fav WHERE fav.article_id = a.id)",
	).
		From("articles a").
		LeftJoin("feeds f ON f.id = a.feed_id").
		LeftJoin("article_keywords ak ON ak.article_id = a.id").
		LeftJoin("keywords k ON k.id = ak.keyword_id").
		GroupBy("a.id")
}

func scanArticle(row interface{ Scan(...interface{}) error }) (*domain.Article, error) {
	var (
		a                                       domain.Article
		feedID                                  sql.NullInt64
		guid, title, rawContent, summary, model sql.NullString
		published, fetched, llmDate             sql.NullString
		status, arxivID, fullStatus, full       sql.NullString
		fullDate, deepStatus, deep, deepDate    sql.NullString
		feedName, keywords                      sql.NullString
	)
	if err := row.Scan(&a.ID, &feedID, &guid, &a.Link, &title, &published, &fetched,
		&rawContent, &summary, &model, &llmDate, &status,
		&arxivID, &fullStatus, &full, &fullDate,
		&deepStatus, &deep, &deepDate,
		&feedName, &keywords, &a.IsFavorite); err != nil {
		return nil, err
	}

	a.FeedID = feedID.Int64
	a.GUID = guid.String
	a.Title = title.String
	a.PublishedDate = parseTime(published)
	a.FetchedDate = valueOrZero(parseTime(fetched))
	a.RawContent = rawContent.String
	a.Summary = summary.String
	a.LLMModelUsed = model.String
	a.LLMProcessedDate = parseTime(llmDate)
	a.ProcessingStatus = domain.ProcessingStatus(status.String)
	a.ArxivID = arxivID.String
	a.FullContentStatus = domain.FullContentStatus(fullStatus.String)
	if a.FullContentStatus == "" {
		a.FullContentStatus = domain.FullContentNotApplicable
	}
	a.FullContent = full.String
	a.FullContentExtractedDate = parseTime(fullDate)
	a.DeepSummaryStatus = domain.DeepSummaryStatus(deepStatus.String)
	if a.DeepSummaryStatus == "" {
		a.DeepSummaryStatus = domain.DeepSummaryNotRequested
	}
	a.DeepSummary = deep.String
	a.DeepSummaryDate = parseTime(deepDate)
	a.FeedName = feedName.String
	a.Keywords = splitList(keywords)
	sort.Strings(a.Keywords)
	return &a, nil
}

func (s *Store) queryArticles(ctx context.Context, b sq.SelectBuilder) ([]*domain.Article, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []*domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// InsertArticleIfAbsent inserts the article unless its GUID is already stored
func (s *Store) InsertArticleIfAbsent(ctx context.Context, a domain.NewArticle) (int64, bool, error) {
	if a.Link == "" {
		return 0, false, &coreerrors.ValidationError{Field: "link", Message: "article link cannot be empty"}
	}
	guid := a.GUID
	if guid == "" {
		guid = a.Link
	}
	status := a.Status
	if status == "" {
		status = domain.StatusPendingContent
	}
	var feedID interface{}
	if a.FeedID > 0 {
		feedID = a.FeedID
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO articles
		(feed_id, guid, link, title, published_date, fetched_date, raw_content, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (guid) DO NOTHING`,
		feedID, guid, a.Link, a.Title, nullableTime(a.PublishedDate), s.stamp(), a.RawContent, string(status))
	if err != nil {
		return 0, false, fmt.Errorf("insert article: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 1 {
		id, err := res.LastInsertId()
		return id, true, err
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, "SELECT id FROM articles WHERE guid = ?", guid).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("lookup existing article: %w", err)
	}
	return id, false, nil
}

// GetArticle returns a single article with its keywords
func (s *Store) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	articles, err := s.queryArticles(ctx, articleSelect().Where(sq.Eq{"a.id": id}))
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, articleNotFound(id)
	}
	return articles[0], nil
}

// ListArticles returns articles matching filter
func (s *Store) ListArticles(ctx context.Context, filter domain.ArticleFilter) ([]*domain.Article, error) {
	b := articleSelect()
	if filter.FeedID > 0 {
		b = b.Where(sq.Eq{"a.feed_id": filter.FeedID})
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"a.processing_status": string(filter.Status)})
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		pattern := "%" + kw + "%"
		b = b.Where(sq.Or{
			sq.Like{"a.title": pattern},
			sq.Like{"a.summary": pattern},
			sq.Like{"a.raw_content": pattern},
			sq.Expr(`EXISTS (SELECT 1 FROM article_keywords ak2
				JOIN keywords k2 ON k2.id = ak2.keyword_id
				WHERE ak2.article_id = a.id AND k2.keyword_text LIKE ?)`, pattern),
		})
	}

	switch filter.Sort {
	case domain.SortDateAsc:
		b = b.OrderBy("a.published_date ASC", "a.id ASC")
	case domain.SortTitleAsc:
		b = b.OrderBy("a.title COLLATE NOCASE ASC", "a.id ASC")
	case domain.SortTitleDesc:
		b = b.OrderBy("a.title COLLATE NOCASE DESC", "a.id DESC")
	default:
		b = b.OrderBy("a.published_date DESC", "a.id DESC")
	}

	return s.queryArticles(ctx, page(b, filter.Limit, filter.Offset))
}

func page(b sq.SelectBuilder, limit, offset int) sq.SelectBuilder {
	if limit <= 0 {
		limit = defaultListLimit
	}
	b = b.Limit(uint64(limit))
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	return b
}

// SearchArticles unions full-text matches, plain substring matches and keyword matches
func (s *Store) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*domain.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &coreerrors.ValidationError{Field: "q", Message: "search query cannot be empty"}
	}
	pattern := "%" + query + "%"

	matches := []string{
		"SELECT id FROM articles WHERE title LIKE ? OR summary LIKE ?",
		`SELECT ak.article_id FROM article_keywords ak
			JOIN keywords k ON k.id = ak.keyword_id WHERE k.keyword_text LIKE ?`,
	}
	args := []interface{}{pattern, pattern, pattern}
	if strings.IndexFunc(query, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
		matches = append([]string{"SELECT rowid FROM articles_fts WHERE articles_fts MATCH ?"}, matches...)
		args = append([]interface{}{ftsPhrase(query)}, args...)
	}

	b := articleSelect().
		Where("a.id IN ("+strings.Join(matches, " UNION ")+")", args...).
		OrderBy("a.published_date DESC", "a.id DESC")
	return s.queryArticles(ctx, page(b, limit, offset))
}

// ftsPhrase quotes the query as a single FTS5 phrase so operators in user input stay literal
func ftsPhrase(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}

func (s *Store) updateArticle(ctx context.Context, id int64, clauses map[string]interface{}) error {
	query, args, err := sq.Update("articles").SetMap(clauses).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build article update: %w", err)
	}
	if err := s.execOne(ctx, s.db, articleNotFound(id), query, args...); err != nil {
		return err
	}
	return nil
}

// UpdateArticleContent stores extracted text and moves the article to status
func (s *Store) UpdateArticleContent(ctx context.Context, id int64, content string, status domain.ProcessingStatus) error {
	return s.updateArticle(ctx, id, map[string]interface{}{
		"raw_content":       content,
		"processing_status": string(status),
	})
}

// UpdateArticleStatus sets the processing status only
func (s *Store) UpdateArticleStatus(ctx context.Context, id int64, status domain.ProcessingStatus) error {
	if !status.Valid() {
		return &coreerrors.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return s.updateArticle(ctx, id, map[string]interface{}{"processing_status": string(status)})
}

// UpdateArticleSummary stores the summary and marks the article processed
func (s *Store) UpdateArticleSummary(ctx context.Context, id int64, summary, model string) error {
	return s.updateArticle(ctx, id, map[string]interface{}{
		"summary":            summary,
		"llm_model_used":     model,
		"llm_processed_date": s.stamp(),
		"processing_status":  string(domain.StatusProcessed),
	})
}

// UpdateArticleLLMError stores the placeholder summary and marks the article llm_error
func (s *Store) UpdateArticleLLMError(ctx context.Context, id int64, placeholder string) error {
	return s.updateArticle(ctx, id, map[string]interface{}{
		"summary":            placeholder,
		"llm_processed_date": s.stamp(),
		"processing_status":  string(domain.StatusLLMError),
	})
}

// AddArticleKeywords links keywords to the article, creating unknown keywords
func (s *Store) AddArticleKeywords(ctx context.Context, id int64, keywords []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM articles WHERE id = ?", id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return articleNotFound(id)
		}
		if err != nil {
			return err
		}

		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO keywords (keyword_text) VALUES (?)", kw); err != nil {
				return fmt.Errorf("insert keyword: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO article_keywords (article_id, keyword_id)
				SELECT ?, id FROM keywords WHERE keyword_text = ?`, id, kw); err != nil {
				return fmt.Errorf("link keyword: %w", err)
			}
		}
		return nil
	})
}

// UpdateArticleArxivFields records the paper ID (empty clears it) and the full-content status
func (s *Store) UpdateArticleArxivFields(ctx context.Context, id int64, arxivID string, status domain.FullContentStatus) error {
	var idValue interface{}
	if arxivID != "" {
		idValue = arxivID
	}
	return s.updateArticle(ctx, id, map[string]interface{}{
		"arxiv_id":            idValue,
		"full_content_status": string(status),
	})
}

// UpdateArticleFullContent stores the paper text and stamps the extraction date
func (s *Store) UpdateArticleFullContent(ctx context.Context, id int64, content string, status domain.FullContentStatus) error {
	return s.updateArticle(ctx, id, map[string]interface{}{
		"full_content":                content,
		"full_content_status":         string(status),
		"full_content_extracted_date": s.stamp(),
	})
}

// UpdateDeepSummary stores the analysis (or failure message) with its status
func (s *Store) UpdateDeepSummary(ctx context.Context, id int64, summary string, status domain.DeepSummaryStatus) error {
	return s.updateArticle(ctx, id, map[string]interface{}{
		"deep_summary":        summary,
		"deep_summary_status": string(status),
		"deep_summary_date":   s.stamp(),
	})
}

// RequestDeepSummary queues the article for deep summary generation
func (s *Store) RequestDeepSummary(ctx context.Context, id int64) error {
	return s.updateArticle(ctx, id, map[string]interface{}{
		"deep_summary_status": string(domain.DeepSummaryPending),
	})
}

// ResetArticleStatus moves a retryable terminal article back into the queue it failed from
func (s *Store) ResetArticleStatus(ctx context.Context, id int64) (domain.ProcessingStatus, error) {
	var next domain.ProcessingStatus
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT processing_status FROM articles WHERE id = ?", id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return articleNotFound(id)
		}
		if err != nil {
			return err
		}

		switch domain.ProcessingStatus(current.String) {
		case domain.StatusContentExtractionFailed:
			next = domain.StatusPendingContent
		case domain.StatusLLMError:
			next = domain.StatusPendingLLM
		default:
			return &coreerrors.ValidationError{
				Field:   "processing_status",
				Message: fmt.Sprintf("status %q cannot be reset", current.String),
			}
		}
		_, err = tx.ExecContext(ctx, "UPDATE articles SET processing_status = ? WHERE id = ?", string(next), id)
		return err
	})
	return next, err
}

// SelectArticlesByStatus returns the oldest articles in the given queue
func (s *Store) SelectArticlesByStatus(ctx context.Context, status domain.ProcessingStatus, limit int) ([]*domain.Article, error) {
	b := articleSelect().
		Where(sq.Eq{"a.processing_status": string(status)}).
		OrderBy("a.id ASC")
	return s.queryArticles(ctx, page(b, limit, 0))
}

// SelectArxivCandidates returns ArXiv-hosted articles whose paper ID has not been resolved
func (s *Store) SelectArxivCandidates(ctx context.Context, limit int) ([]*domain.Article, error) {
	b := articleSelect().
		Where(sq.Or{
			sq.Expr("a.link LIKE '%arxiv.org%'"),
			sq.Expr("a.guid LIKE '%arxiv.org%'"),
		}).
		Where(sq.Or{
			sq.Eq{"a.full_content_status": string(domain.FullContentNotApplicable)},
			sq.Eq{"a.full_content_status": nil},
			sq.Eq{"a.arxiv_id": nil},
		}).
		OrderBy("a.published_date DESC", "a.id DESC")
	return s.queryArticles(ctx, page(b, limit, 0))
}

// SelectDeepSummaryCandidates returns pending deep summaries with extracted full text, newest extraction first
func (s *Store) SelectDeepSummaryCandidates(ctx context.Context, limit int) ([]*domain.Article, error) {
	b := articleSelect().
		Where(sq.Eq{
			"a.full_content_status": string(domain.FullContentExtracted),
			"a.deep_summary_status": string(domain.DeepSummaryPending),
		}).
		Where(sq.NotEq{"a.full_content": nil}).
		OrderBy("a.full_content_extracted_date DESC", "a.id DESC")
	return s.queryArticles(ctx, page(b, limit, 0))
}

// DeleteArticle removes keyword links, favorite, index row and article atomically
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteArticleTx(ctx, tx, id)
	})
}

func deleteArticleTx(ctx context.Context, tx *sql.Tx, id int64) error {
	steps := []string{
		"DELETE FROM article_keywords WHERE article_id = ?",
		"DELETE FROM favorites WHERE article_id = ?",
		`INSERT INTO articles_fts (articles_fts, rowid, title, summary, raw_content)
			SELECT 'delete', id, title, summary, raw_content FROM articles WHERE id = ?`,
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete article %d: %w", id, err)
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return articleNotFound(id)
	}
	return nil
}

// PruneFeedArticles keeps the newest keep articles of the feed and deletes the rest, never deleting favorites
func (s *Store) PruneFeedArticles(ctx context.Context, feedID int64, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	rows, err := s.db.QueryContext(ctx, `SELECT a.id FROM articles a
		WHERE a.feed_id = ?
		AND NOT EXISTS (SELECT 1 FROM favorites fav WHERE fav.article_id = a.id)
		ORDER BY a.published_date DESC, a.id DESC
		LIMIT -1 OFFSET ?`, feedID, keep)
	if err != nil {
		return 0, fmt.Errorf("select prunable articles: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if err := deleteArticleTx(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Pruned feed articles", map[string]interface{}{
		"feed_id": feedID,
		"deleted": len(ids),
		"keep":    keep,
	})
	return len(ids), nil
}

// CleanOrphanedKeywords deletes keywords no article references
func (s *Store) CleanOrphanedKeywords(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM keywords WHERE id NOT IN (SELECT DISTINCT keyword_id FROM article_keywords)")
	if err != nil {
		return 0, fmt.Errorf("clean keywords: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
