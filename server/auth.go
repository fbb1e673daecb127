package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/robertmeta/techfolio/portfolio"
)

type identityKey struct{}

// IdentityFromContext returns the identity resolved by IdentityMiddleware.
// Requests without one run in demo mode.
func IdentityFromContext(ctx context.Context) portfolio.Identity {
	id, _ := ctx.Value(identityKey{}).(portfolio.Identity)
	return id
}

// IdentityMiddleware resolves an optional bearer token to an identity. A
// missing token means demo mode; an unknown one is rejected.
func (s *Server) IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		id, err := s.svc.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, portfolio.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}
			s.logger.Error("failed to resolve identity", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
