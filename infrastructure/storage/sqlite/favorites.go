// ABOUTME: Favorite persistence with free-text notes and comma-delimited tags
// ABOUTME: Listing joins the saved article through the shared article select

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
)

func favoriteNotFound(articleID int64) error {
	return &coreerrors.NotFoundError{Resource: "favorite", ID: strconv.FormatInt(articleID, 10)}
}

// AddFavorite saves the article, replacing notes and tags when it is already a favorite
func (s *Store) AddFavorite(ctx context.Context, articleID int64, notes, tags string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM articles WHERE id = ?", articleID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return articleNotFound(articleID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO favorites (article_id, added_date, notes, tags)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (article_id) DO UPDATE SET notes = excluded.notes, tags = excluded.tags`,
			articleID, s.stamp(), notes, tags); err != nil {
			return fmt.Errorf("add favorite: %w", err)
		}
		return tx.QueryRowContext(ctx, "SELECT id FROM favorites WHERE article_id = ?", articleID).Scan(&id)
	})
	return id, err
}

// UpdateFavorite replaces the notes and tags of an existing favorite
func (s *Store) UpdateFavorite(ctx context.Context, articleID int64, notes, tags string) error {
	return s.execOne(ctx, s.db, favoriteNotFound(articleID),
		"UPDATE favorites SET notes = ?, tags = ? WHERE article_id = ?", notes, tags, articleID)
}

// RemoveFavorite unsaves the article
func (s *Store) RemoveFavorite(ctx context.Context, articleID int64) error {
	return s.execOne(ctx, s.db, favoriteNotFound(articleID),
		"DELETE FROM favorites WHERE article_id = ?", articleID)
}

// IsFavorite reports whether the article is saved
func (s *Store) IsFavorite(ctx context.Context, articleID int64) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM favorites WHERE article_id = ?)", articleID).Scan(&found)
	return found, err
}

// ListFavorites returns favorites newest first, optionally narrowed to a tag
func (s *Store) ListFavorites(ctx context.Context, tag string, limit, offset int) ([]*domain.Favorite, error) {
	b := sq.Select("id", "article_id", "added_date", "notes", "tags").
		From("favorites").
		OrderBy("added_date DESC", "id DESC")
	if tag = strings.TrimSpace(tag); tag != "" {
		b = b.Where(sq.Like{"tags": "%" + tag + "%"})
	}
	query, args, err := page(b, limit, offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build favorites query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	var (
		favorites  []*domain.Favorite
		articleIDs []int64
	)
	for rows.Next() {
		var (
			f                 domain.Favorite
			added, notes, tgs sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.ArticleID, &added, &notes, &tgs); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.AddedDate = valueOrZero(parseTime(added))
		f.Notes = notes.String
		f.Tags = tgs.String
		favorites = append(favorites, &f)
		articleIDs = append(articleIDs, f.ArticleID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(favorites) == 0 {
		return favorites, nil
	}

	articles, err := s.queryArticles(ctx, articleSelect().Where(sq.Eq{"a.id": articleIDs}))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	for _, f := range favorites {
		f.Article = byID[f.ArticleID]
	}
	return favorites, nil
}

// FavoriteTags returns the distinct tags used across favorites, sorted
func (s *Store) FavoriteTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT tags FROM favorites WHERE tags IS NOT NULL AND tags != ''")
	if err != nil {
		return nil, fmt.Errorf("favorite tags: %w", err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	tags := []string{}
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, t := range splitList(raw) {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, rows.Err()
}
