package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/robertmeta/techfolio/model"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveTag creates the tag or updates its color, and sets t.ID.
// An empty color on an existing tag leaves the stored color unchanged.
func (s *Store) SaveTag(ctx context.Context, t *model.Tag) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	id, err := ensureTag(ctx, s.db, name)
	if err != nil {
		return err
	}
	if t.Color != "" {
		if _, err := s.db.ExecContext(ctx, "UPDATE tags SET color = ? WHERE id = ?", t.Color, id); err != nil {
			return fmt.Errorf("failed to update tag color: %w", err)
		}
	}
	t.ID = id
	t.Name = name
	return nil
}

// GetTags returns the tag catalog ordered by name.
func (s *Store) GetTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		var color sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &color); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		t.Color = color.String
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SaveRole adds a role label to the catalog if missing.
func (s *Store) SaveRole(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("role name is required")
	}
	_, err := ensureRole(ctx, s.db, name)
	return err
}

// GetRoles returns the role catalog ordered by insertion.
func (s *Store) GetRoles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM roles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func ensureTag(ctx context.Context, db execer, name string) (int64, error) {
	if _, err := db.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}
	var id int64
	if err := db.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}
	return id, nil
}

func ensureRole(ctx context.Context, db execer, name string) (int64, error) {
	if _, err := db.ExecContext(ctx, "INSERT OR IGNORE INTO roles (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("failed to insert role: %w", err)
	}
	var id int64
	if err := db.QueryRowContext(ctx, "SELECT id FROM roles WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up role %q: %w", name, err)
	}
	return id, nil
}
