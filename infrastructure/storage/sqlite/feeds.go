// ABOUTME: Feed persistence: CRUD, watermark bookkeeping, ordering and JSON import/export
// ABOUTME: Deleting a feed removes its articles and their index rows in the same transaction

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
)

const feedColumns = `f.id, f.url, f.name, f.last_polled_item_guid, f.last_successful_poll_timestamp,
	f.error_count, f.is_enabled, f.polling_interval, f.max_articles, f.created_at, f.last_modified,
	f.display_order, (SELECT COUNT(*) FROM articles a WHERE a.feed_id = f.id)`

func scanFeed(row interface{ Scan(...interface{}) error }) (*domain.Feed, error) {
	var (
		f                       domain.Feed
		name, guid, lastPoll    sql.NullString
		createdAt, lastModified sql.NullString
	)
	if err := row.Scan(&f.ID, &f.URL, &name, &guid, &lastPoll, &f.ErrorCount, &f.Enabled,
		&f.PollingInterval, &f.MaxArticles, &createdAt, &lastModified, &f.DisplayOrder, &f.ArticleCount); err != nil {
		return nil, err
	}
	f.Name = name.String
	f.LastPolledItemGUID = guid.String
	f.LastSuccessfulPoll = parseTime(lastPoll)
	f.CreatedAt = valueOrZero(parseTime(createdAt))
	f.LastModified = valueOrZero(parseTime(lastModified))
	return &f, nil
}

func feedNotFound(id int64) error {
	return &coreerrors.NotFoundError{Resource: "feed", ID: strconv.FormatInt(id, 10)}
}

// ListFeeds returns feeds ordered by display order then id
func (s *Store) ListFeeds(ctx context.Context, enabledOnly bool) ([]*domain.Feed, error) {
	query := "SELECT " + feedColumns + " FROM feeds f"
	if enabledOnly {
		query += " WHERE f.is_enabled = 1"
	}
	query += " ORDER BY f.display_order, f.id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*domain.Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// GetFeed returns a single feed
func (s *Store) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+feedColumns+" FROM feeds f WHERE f.id = ?", id)
	f, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, feedNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return f, nil
}

func (s *Store) feedIDByURL(ctx context.Context, q querier, url string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, "SELECT id FROM feeds WHERE url = ?", url).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// AddFeed inserts a feed; a URL that is already subscribed is a validation error
func (s *Store) AddFeed(ctx context.Context, feed *domain.Feed) (int64, error) {
	if err := feed.Validate(); err != nil {
		return 0, &coreerrors.ValidationError{Field: "url", Message: err.Error()}
	}
	if _, exists, err := s.feedIDByURL(ctx, s.db, feed.URL); err != nil {
		return 0, fmt.Errorf("check feed: %w", err)
	} else if exists {
		return 0, &coreerrors.ValidationError{Field: "url", Message: "feed already exists"}
	}
	return s.insertFeed(ctx, s.db, feed)
}

func (s *Store) insertFeed(ctx context.Context, q querier, feed *domain.Feed) (int64, error) {
	interval := feed.PollingInterval
	if interval <= 0 {
		interval = domain.DefaultPollingInterval
	}
	maxArticles := feed.MaxArticles
	if maxArticles <= 0 {
		maxArticles = domain.DefaultMaxArticles
	}
	now := s.stamp()

	res, err := q.ExecContext(ctx, `INSERT INTO feeds
		(url, name, is_enabled, polling_interval, max_articles, display_order, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		feed.URL, feed.Name, feed.Enabled, interval, maxArticles, feed.DisplayOrder, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert feed: %w", err)
	}
	return res.LastInsertId()
}

// UpdateFeed applies the non-nil fields of update
func (s *Store) UpdateFeed(ctx context.Context, id int64, update domain.FeedUpdate) error {
	clauses := map[string]interface{}{}
	if update.Name != nil {
		clauses["name"] = *update.Name
	}
	if update.URL != nil {
		probe := domain.Feed{URL: *update.URL}
		if err := probe.Validate(); err != nil {
			return &coreerrors.ValidationError{Field: "url", Message: err.Error()}
		}
		if other, exists, err := s.feedIDByURL(ctx, s.db, *update.URL); err != nil {
			return fmt.Errorf("check feed: %w", err)
		} else if exists && other != id {
			return &coreerrors.ValidationError{Field: "url", Message: "feed already exists"}
		}
		clauses["url"] = *update.URL
	}
	if update.Enabled != nil {
		clauses["is_enabled"] = *update.Enabled
	}
	if update.PollingInterval != nil {
		if *update.PollingInterval < 1 {
			return &coreerrors.ValidationError{Field: "polling_interval", Message: "must be at least 1 minute"}
		}
		clauses["polling_interval"] = *update.PollingInterval
	}
	if update.MaxArticles != nil {
		if *update.MaxArticles < 1 {
			return &coreerrors.ValidationError{Field: "max_articles", Message: "must be at least 1"}
		}
		clauses["max_articles"] = *update.MaxArticles
	}
	if update.DisplayOrder != nil {
		clauses["display_order"] = *update.DisplayOrder
	}
	clauses["last_modified"] = s.stamp()

	query, args, err := sq.Update("feeds").SetMap(clauses).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build feed update: %w", err)
	}
	return s.execOne(ctx, s.db, feedNotFound(id), query, args...)
}

// execOne runs a statement that must touch exactly one row
func (s *Store) execOne(ctx context.Context, q querier, notFound error, query string, args ...interface{}) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// ToggleFeed sets the enabled flag, or flips it when enabled is nil, and returns the new state
func (s *Store) ToggleFeed(ctx context.Context, id int64, enabled *bool) (bool, error) {
	var state bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current bool
		err := tx.QueryRowContext(ctx, "SELECT is_enabled FROM feeds WHERE id = ?", id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return feedNotFound(id)
		}
		if err != nil {
			return err
		}
		state = !current
		if enabled != nil {
			state = *enabled
		}
		_, err = tx.ExecContext(ctx, "UPDATE feeds SET is_enabled = ?, last_modified = ? WHERE id = ?",
			state, s.stamp(), id)
		return err
	})
	return state, err
}

// ReorderFeeds assigns display positions in one transaction
func (s *Store) ReorderFeeds(ctx context.Context, order map[int64]int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.stamp()
		for id, pos := range order {
			if err := s.execOne(ctx, tx, feedNotFound(id),
				"UPDATE feeds SET display_order = ?, last_modified = ? WHERE id = ?", pos, now, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertFeedWatermark records the newest GUID seen and clears the error counter
func (s *Store) UpsertFeedWatermark(ctx context.Context, id int64, guid string, ts time.Time) error {
	return s.execOne(ctx, s.db, feedNotFound(id), `UPDATE feeds
		SET last_polled_item_guid = ?, last_successful_poll_timestamp = ?, error_count = 0, last_modified = ?
		WHERE id = ?`, guid, formatTime(ts), s.stamp(), id)
}

// IncrementFeedErrorCount bumps the consecutive failure counter
func (s *Store) IncrementFeedErrorCount(ctx context.Context, id int64) error {
	return s.execOne(ctx, s.db, feedNotFound(id),
		"UPDATE feeds SET error_count = error_count + 1, last_modified = ? WHERE id = ?", s.stamp(), id)
}

// DeleteFeed removes the feed together with its articles, keyword links, favorites and index rows
func (s *Store) DeleteFeed(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		const scope = "SELECT id FROM articles WHERE feed_id = ?"
		steps := []string{
			"DELETE FROM article_keywords WHERE article_id IN (" + scope + ")",
			"DELETE FROM favorites WHERE article_id IN (" + scope + ")",
			`INSERT INTO articles_fts (articles_fts, rowid, title, summary, raw_content)
				SELECT 'delete', id, title, summary, raw_content FROM articles WHERE feed_id = ?`,
			"DELETE FROM articles WHERE feed_id = ?",
		}
		for _, stmt := range steps {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete feed articles: %w", err)
			}
		}
		return s.execOne(ctx, tx, feedNotFound(id), "DELETE FROM feeds WHERE id = ?", id)
	})
}

// ExportFeeds returns every feed in display order
func (s *Store) ExportFeeds(ctx context.Context) ([]domain.FeedExport, error) {
	feeds, err := s.ListFeeds(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FeedExport, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, domain.FeedExport{
			URL:             f.URL,
			Name:            f.Name,
			Enabled:         f.Enabled,
			PollingInterval: f.PollingInterval,
			MaxArticles:     f.MaxArticles,
			DisplayOrder:    f.DisplayOrder,
		})
	}
	return out, nil
}

// ImportFeeds adds unknown feeds; known URLs are updated when overwrite is set and skipped otherwise
func (s *Store) ImportFeeds(ctx context.Context, feeds []domain.FeedExport, overwrite bool) (*domain.ImportResult, error) {
	result := &domain.ImportResult{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range feeds {
			feed := domain.Feed{
				URL:             e.URL,
				Name:            e.Name,
				Enabled:         e.Enabled,
				PollingInterval: e.PollingInterval,
				MaxArticles:     e.MaxArticles,
				DisplayOrder:    e.DisplayOrder,
			}
			if err := feed.Validate(); err != nil {
				s.logger.Warn("Skipping invalid feed in import", map[string]interface{}{
					"url":   e.URL,
					"error": err.Error(),
				})
				result.Errors++
				continue
			}

			id, exists, err := s.feedIDByURL(ctx, tx, e.URL)
			if err != nil {
				return err
			}
			switch {
			case !exists:
				if _, err := s.insertFeed(ctx, tx, &feed); err != nil {
					return err
				}
				result.Added++
			case overwrite:
				if _, err := tx.ExecContext(ctx, `UPDATE feeds SET name = ?, is_enabled = ?, polling_interval = ?,
					max_articles = ?, display_order = ?, last_modified = ? WHERE id = ?`,
					e.Name, e.Enabled, e.PollingInterval, e.MaxArticles, e.DisplayOrder, s.stamp(), id); err != nil {
					return err
				}
				result.Updated++
			default:
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import feeds: %w", err)
	}
	return result, nil
}
