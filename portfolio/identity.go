package portfolio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/store"
)

// ErrUnauthorized indicates an unknown token, or a write attempted in demo
// mode.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is who an operation acts for. The zero value is demo mode.
type Identity struct {
	Profile *model.Profile
}

// Demo reports whether no profile is signed in.
func (id Identity) Demo() bool { return id.Profile == nil }

// ProfileID returns the profile ID, or "" in demo mode.
func (id Identity) ProfileID() string {
	if id.Profile == nil {
		return ""
	}
	return id.Profile.ID
}

// RequireProfile returns the profile ID, or ErrUnauthorized in demo mode.
func (id Identity) RequireProfile() (string, error) {
	if id.Profile == nil {
		return "", fmt.Errorf("%w: sign in with a profile token", ErrUnauthorized)
	}
	return id.Profile.ID, nil
}

// HashToken returns the stored form of a profile token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewToken generates a fresh profile token.
func NewToken() string {
	return "tf_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Resolve maps a token to an identity. An empty token is demo mode.
func (s *Service) Resolve(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, nil
	}
	p, err := s.repo.GetProfileByTokenHash(ctx, HashToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, ErrUnauthorized
	}
	if err != nil {
		return Identity{}, fmt.Errorf("resolving profile: %w", err)
	}
	return Identity{Profile: p}, nil
}

// CreateProfile creates a profile and returns it with its token. The token
// is not stored and cannot be recovered. A Qiita user, if given, is
// connected as the first article source.
func (s *Service) CreateProfile(ctx context.Context, displayName, qiitaUser string) (*model.Profile, string, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, "", fmt.Errorf("display name is required")
	}

	p := &model.Profile{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		QiitaUser:   strings.TrimSpace(qiitaUser),
		CreatedAt:   time.Now().UTC(),
	}
	token := NewToken()
	if err := s.repo.SaveProfile(ctx, p, HashToken(token)); err != nil {
		return nil, "", fmt.Errorf("creating profile: %w", err)
	}

	if p.QiitaUser != "" {
		src := &model.Source{ProfileID: p.ID, Kind: model.SourceQiita, Target: p.QiitaUser}
		if err := s.repo.SaveSource(ctx, src); err != nil {
			return nil, "", fmt.Errorf("connecting qiita source: %w", err)
		}
	}

	s.logger.Info("profile created", "profile", p.ID)
	return p, token, nil
}
