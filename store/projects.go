package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robertmeta/techfolio/model"
)

const projectColumns = "p.id, p.profile_id, p.title, p.summary, p.period_start, p.period_end, p.is_ongoing, p.created_at"

// SaveProject saves a project together with its tag and role links.
// If the project has an empty ID it is inserted with a new one. Otherwise
// it is updated, and ErrNotFound is returned if the profile does not own it.
// Unknown tag and role names are added to the catalogs.
func (s *Store) SaveProject(ctx context.Context, p *model.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}

	isNew := p.ID == ""
	if isNew {
		p.ID = uuid.NewString()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if isNew {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO projects (id, profile_id, title, summary, period_start, period_end, is_ongoing, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.ProfileID, p.Title, p.Summary, string(p.PeriodStart), string(p.PeriodEnd), boolToInt(p.IsOngoing), timeToUnix(p.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to insert project: %w", err)
			}
		} else {
			result, err := tx.ExecContext(ctx,
				`UPDATE projects SET title = ?, summary = ?, period_start = ?, period_end = ?, is_ongoing = ?
				WHERE id = ? AND profile_id = ?`,
				p.Title, p.Summary, string(p.PeriodStart), string(p.PeriodEnd), boolToInt(p.IsOngoing), p.ID, p.ProfileID,
			)
			if err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}
			if n, err := result.RowsAffected(); err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			} else if n == 0 {
				return ErrNotFound
			}
		}

		return replaceProjectLinks(ctx, tx, p)
	})
	if err != nil && isNew {
		p.ID = ""
	}
	return err
}

func replaceProjectLinks(ctx context.Context, tx *sql.Tx, p *model.Project) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM project_tags WHERE project_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear project tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM project_roles WHERE project_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear project roles: %w", err)
	}

	seenTags := make(map[string]bool, len(p.Tags))
	tags := make([]model.Tag, 0, len(p.Tags))
	for _, t := range p.Tags {
		name := strings.TrimSpace(t.Name)
		if name == "" || seenTags[name] {
			continue
		}
		seenTags[name] = true

		id, err := ensureTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if t.Color != "" {
			if _, err := tx.ExecContext(ctx, "UPDATE tags SET color = ? WHERE id = ?", t.Color, id); err != nil {
				return fmt.Errorf("failed to update tag color: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO project_tags (project_id, tag_id, position) VALUES (?, ?, ?)",
			p.ID, id, len(tags),
		); err != nil {
			return fmt.Errorf("failed to link tag %q: %w", name, err)
		}
		tags = append(tags, model.Tag{ID: id, Name: name, Color: t.Color})
	}
	p.Tags = tags

	seenRoles := make(map[string]bool, len(p.RoleNames))
	roles := make([]string, 0, len(p.RoleNames))
	for _, r := range p.RoleNames {
		name := strings.TrimSpace(r)
		if name == "" || seenRoles[name] {
			continue
		}
		seenRoles[name] = true

		id, err := ensureRole(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO project_roles (project_id, role_id, position) VALUES (?, ?, ?)",
			p.ID, id, len(roles),
		); err != nil {
			return fmt.Errorf("failed to link role %q: %w", name, err)
		}
		roles = append(roles, name)
	}
	p.RoleNames = roles

	return nil
}

// GetProject retrieves a project owned by the profile, with tags and roles.
func (s *Store) GetProject(ctx context.Context, profileID, id string) (*model.Project, error) {
	projects, err := s.queryProjects(ctx,
		"SELECT "+projectColumns+" FROM projects p WHERE p.profile_id = ? AND p.id = ?",
		profileID, id,
	)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNotFound
	}
	return &projects[0], nil
}

// GetProjects retrieves the profile's projects in creation order, with
// optional tag/role filtering and pagination.
func (s *Store) GetProjects(ctx context.Context, profileID string, opts ProjectQuery) ([]model.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects p WHERE p.profile_id = ?"
	args := []any{profileID}

	if opts.Tag != "" {
		query += ` AND EXISTS (SELECT 1 FROM project_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.project_id = p.id AND t.name = ?)`
		args = append(args, opts.Tag)
	}
	if opts.Role != "" {
		query += ` AND EXISTS (SELECT 1 FROM project_roles pr JOIN roles r ON r.id = pr.role_id
			WHERE pr.project_id = p.id AND r.name = ?)`
		args = append(args, opts.Role)
	}

	query += " ORDER BY p.created_at, p.rowid"

	// SQLite requires LIMIT before OFFSET; -1 means unbounded.
	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = -1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, opts.Offset)
	}

	return s.queryProjects(ctx, query, args...)
}

// DeleteProject deletes a project owned by the profile.
func (s *Store) DeleteProject(ctx context.Context, profileID, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ? AND profile_id = ?", id, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// queryProjects scans project rows and then attaches tags and roles.
// Rows are fully read before the link queries run: the pool holds a single
// connection, so nested queries would block.
func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		var start, end string
		var ongoing int
		var createdUnix int64
		if err := rows.Scan(&p.ID, &p.ProfileID, &p.Title, &p.Summary, &start, &end, &ongoing, &createdUnix); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.PeriodStart = model.YearMonth(start)
		p.PeriodEnd = model.YearMonth(end)
		p.IsOngoing = intToBool(ongoing)
		p.CreatedAt = unixToTime(createdUnix)
		projects = append(projects, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		return projects, nil
	}

	index := make(map[string]*model.Project, len(projects))
	ids := make([]any, 0, len(projects))
	for i := range projects {
		index[projects[i].ID] = &projects[i]
		ids = append(ids, projects[i].ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	if err := s.attachTags(ctx, index, placeholders, ids); err != nil {
		return nil, err
	}
	if err := s.attachRoles(ctx, index, placeholders, ids); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) attachTags(ctx context.Context, index map[string]*model.Project, placeholders string, ids []any) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pt.project_id, t.id, t.name, t.color FROM project_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.project_id IN (`+placeholders+`)
		ORDER BY pt.project_id, pt.position`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query project tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID string
		var t model.Tag
		var color sql.NullString
		if err := rows.Scan(&projectID, &t.ID, &t.Name, &color); err != nil {
			return fmt.Errorf("failed to scan project tag: %w", err)
		}
		t.Color = color.String
		if p, ok := index[projectID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	return rows.Err()
}

func (s *Store) attachRoles(ctx context.Context, index map[string]*model.Project, placeholders string, ids []any) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pr.project_id, r.name FROM project_roles pr
		JOIN roles r ON r.id = pr.role_id
		WHERE pr.project_id IN (`+placeholders+`)
		ORDER BY pr.project_id, pr.position`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query project roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, name string
		if err := rows.Scan(&projectID, &name); err != nil {
			return fmt.Errorf("failed to scan project role: %w", err)
		}
		if p, ok := index[projectID]; ok {
			p.RoleNames = append(p.RoleNames, name)
		}
	}
	return rows.Err()
}
