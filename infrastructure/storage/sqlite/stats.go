// ABOUTME: Aggregate queries for the status page and ArXiv progress reporting
// ABOUTME: Counts come back as maps keyed by status so missing statuses read as zero

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aiml-digests/core/domain"
)

// fullPaperChars separates full paper texts from abstract-only extractions
const fullPaperChars = 10000

// StatusCounts returns the number of articles per processing status
func (s *Store) StatusCounts(ctx context.Context) (map[domain.ProcessingStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT processing_status, COUNT(*) FROM articles GROUP BY processing_status")
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ProcessingStatus]int)
	for rows.Next() {
		var (
			status sql.NullString
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.ProcessingStatus(status.String)] += n
	}
	return counts, rows.Err()
}

// ArxivStatistics summarizes extraction and deep-summary progress over articles with a paper ID
func (s *Store) ArxivStatistics(ctx context.Context) (*domain.ArxivStats, error) {
	stats := &domain.ArxivStats{
		ByFullContentStatus: map[domain.FullContentStatus]int{},
		ByDeepSummaryStatus: map[domain.DeepSummaryStatus]int{},
		Feeds:               []domain.FeedArxivBreakdown{},
	}

	weekAgo := formatTime(s.now().Add(-7 * 24 * time.Hour))
	err := s.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN full_content_status = 'extracted' AND length(full_content) > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN full_content_status = 'extracted' AND length(full_content) <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN published_date > ? THEN 1 ELSE 0 END), 0)
		FROM articles WHERE arxiv_id IS NOT NULL`,
		fullPaperChars, fullPaperChars, weekAgo,
	).Scan(&stats.TotalArxiv, &stats.FullPapers, &stats.AbstractsOnly, &stats.RecentWeek)
	if err != nil {
		return nil, fmt.Errorf("arxiv totals: %w", err)
	}

	if err := s.groupCount(ctx, "full_content_status", func(k string, n int) {
		stats.ByFullContentStatus[domain.FullContentStatus(k)] = n
	}); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, "deep_summary_status", func(k string, n int) {
		stats.ByDeepSummaryStatus[domain.DeepSummaryStatus(k)] = n
	}); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT f.id, f.name, COUNT(a.id),
			SUM(CASE WHEN a.full_content_status = 'extracted' THEN 1 ELSE 0 END),
			SUM(CASE WHEN a.deep_summary_status = 'completed' THEN 1 ELSE 0 END)
		FROM feeds f
		JOIN articles a ON a.feed_id = f.id
		WHERE a.arxiv_id IS NOT NULL
		GROUP BY f.id
		ORDER BY COUNT(a.id) DESC, f.id`)
	if err != nil {
		return nil, fmt.Errorf("arxiv feed breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			b    domain.FeedArxivBreakdown
			name sql.NullString
		)
		if err := rows.Scan(&b.FeedID, &name, &b.Total, &b.Extracted, &b.Analyzed); err != nil {
			return nil, err
		}
		b.FeedName = name.String
		stats.Feeds = append(stats.Feeds, b)
	}
	return stats, rows.Err()
}

// groupCount counts arxiv articles grouped by column; column is always a constant
func (s *Store) groupCount(ctx context.Context, column string, add func(string, int)) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM articles WHERE arxiv_id IS NOT NULL GROUP BY "+column)
	if err != nil {
		return fmt.Errorf("arxiv %s counts: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key sql.NullString
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		add(key.String, n)
	}
	return rows.Err()
}
