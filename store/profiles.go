package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/robertmeta/techfolio/model"
)

// SaveProfile inserts a new profile authenticated by tokenHash.
func (s *Store) SaveProfile(ctx context.Context, p *model.Profile, tokenHash string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO profiles (id, display_name, qiita_user, token_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.DisplayName, p.QiitaUser, tokenHash, timeToUnix(p.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", p.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	return s.scanProfile(s.db.QueryRowContext(ctx,
		"SELECT id, display_name, qiita_user, created_at FROM profiles WHERE id = ?", id))
}

// GetProfileByTokenHash resolves the profile owning a token hash.
func (s *Store) GetProfileByTokenHash(ctx context.Context, tokenHash string) (*model.Profile, error) {
	return s.scanProfile(s.db.QueryRowContext(ctx,
		"SELECT id, display_name, qiita_user, created_at FROM profiles WHERE token_hash = ?", tokenHash))
}

func (s *Store) scanProfile(row *sql.Row) (*model.Profile, error) {
	p := &model.Profile{}
	var createdUnix int64
	err := row.Scan(&p.ID, &p.DisplayName, &p.QiitaUser, &createdUnix)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p.CreatedAt = unixToTime(createdUnix)
	return p, nil
}
