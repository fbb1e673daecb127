package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robertmeta/techfolio/model"
)

// ReplaceArticles swaps the cached articles of one source for a freshly
// fetched set, atomically.
func (s *Store) ReplaceArticles(ctx context.Context, src *model.Source, articles []model.Article) error {
	fetched := time.Now().Unix()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE source_id = ?", src.ID); err != nil {
			return fmt.Errorf("failed to clear articles: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO articles
			(source_id, profile_id, id, title, url, created_at, like_count, stock_count, tags, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare article insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range articles {
			tags, err := json.Marshal(a.Tags)
			if err != nil {
				return fmt.Errorf("failed to encode tags for %s: %w", a.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				src.ID, src.ProfileID, a.ID, a.Title, a.URL, timeToUnix(a.CreatedAt),
				a.LikeCount, a.StockCount, string(tags), fetched,
			); err != nil {
				return fmt.Errorf("failed to insert article %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

// GetArticles retrieves the profile's cached articles, newest first.
func (s *Store) GetArticles(ctx context.Context, profileID string, opts ArticleQuery) ([]model.Article, error) {
	query := `SELECT a.id, a.title, a.url, a.created_at, a.like_count, a.stock_count, a.tags, s.kind
		FROM articles a JOIN sources s ON s.id = a.source_id
		WHERE a.profile_id = ?`
	args := []any{profileID}

	if opts.SinceTime != nil {
		query += " AND a.created_at >= ?"
		args = append(args, *opts.SinceTime)
	}

	query += " ORDER BY a.created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		var createdUnix int64
		var tags string
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &createdUnix, &a.LikeCount, &a.StockCount, &tags, &a.Source); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		a.CreatedAt = unixToTime(createdUnix)
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for %s: %w", a.ID, err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
