package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/robertmeta/techfolio/model"
)

// SaveSource connects an article source to a profile.
// If the source has an empty ID it is inserted, otherwise its title and
// category are updated.
func (s *Store) SaveSource(ctx context.Context, src *model.Source) error {
	if err := src.Validate(); err != nil {
		return err
	}

	if src.ID == "" {
		id := uuid.NewString()
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO sources (id, profile_id, kind, target, title, category) VALUES (?, ?, ?, ?, ?, ?)",
			id, src.ProfileID, string(src.Kind), src.Target, src.Title, src.Category,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("source %s %s: %w", src.Kind, src.Target, ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("failed to insert source: %w", err)
		}
		src.ID = id
		return nil
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE sources SET title = ?, category = ? WHERE id = ? AND profile_id = ?",
		src.Title, src.Category, src.ID, src.ProfileID,
	)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSources retrieves all sources connected to the profile.
func (s *Store) GetSources(ctx context.Context, profileID string) ([]*model.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, profile_id, kind, target, title, category FROM sources WHERE profile_id = ? ORDER BY rowid",
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*model.Source
	for rows.Next() {
		src := &model.Source{}
		var kind string
		if err := rows.Scan(&src.ID, &src.ProfileID, &kind, &src.Target, &src.Title, &src.Category); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		src.Kind = model.SourceKind(kind)
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// DeleteSource disconnects a source; its cached articles go with it.
func (s *Store) DeleteSource(ctx context.Context, profileID, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ? AND profile_id = ?", id, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
