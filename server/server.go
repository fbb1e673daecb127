// Package server exposes the techfolio timeline and stats over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robertmeta/techfolio/portfolio"
	"github.com/robertmeta/techfolio/timeline"
)

// maxPages bounds the pages query parameter.
const maxPages = 50

// Server wires HTTP handlers to the portfolio service.
type Server struct {
	svc    *portfolio.Service
	logger *slog.Logger
}

// New creates the router.
func New(svc *portfolio.Service, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.IdentityMiddleware)
		r.Get("/timeline", s.handleTimeline)
		r.Get("/stats", s.handleStats)
		r.Get("/tags", s.handleTags)
		r.Post("/sync", s.handleSync)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// timelineResponse adds resolved colors for every tag on the visible entries.
type timelineResponse struct {
	timeline.View
	TagColors map[string]string `json:"tag_colors"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q, err := parseTimelineQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := IdentityFromContext(r.Context())
	view, err := s.svc.Timeline(r.Context(), id, q)
	if err != nil {
		s.fail(w, err)
		return
	}
	colors, err := s.svc.Colors(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := timelineResponse{View: view, TagColors: make(map[string]string)}
	for _, e := range view.Entries {
		for _, name := range e.TagNames() {
			resp.TagColors[name] = colors.ColorFor(name)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseTimelineQuery(r *http.Request) (portfolio.TimelineQuery, error) {
	values := r.URL.Query()
	q := portfolio.TimelineQuery{
		Filter: timeline.Filter{
			Text: values.Get("text"),
			Tags: values["tag"],
			Role: values.Get("role"),
		},
		Kinds: timeline.AllKinds(),
	}

	if raw := values.Get("kinds"); raw != "" {
		q.Kinds = timeline.Kinds{}
		for _, k := range strings.Split(raw, ",") {
			switch strings.TrimSpace(k) {
			case "project":
				q.Kinds.Project = true
			case "article":
				q.Kinds.Article = true
			case "":
			default:
				return q, fmt.Errorf("unknown kind %q", k)
			}
		}
	}

	var err error
	if q.PageSize, err = intParam(values.Get("page_size"), 0, 0); err != nil {
		return q, fmt.Errorf("page_size: %w", err)
	}
	if q.Pages, err = intParam(values.Get("pages"), 1, maxPages); err != nil {
		return q, fmt.Errorf("pages: %w", err)
	}
	return q, nil
}

// intParam parses a non-negative integer, returning def when raw is empty.
// max > 0 caps the value.
func intParam(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value %q", raw)
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), 0, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit: "+err.Error())
		return
	}

	st, err := s.svc.Stats(r.Context(), IdentityFromContext(r.Context()), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type tagResponse struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	catalog, err := s.svc.Catalog(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	colors, err := s.svc.Colors(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}

	tags := make([]tagResponse, 0, len(catalog))
	for _, t := range catalog {
		tags = append(tags, tagResponse{Name: t.Name, Color: colors.ColorFor(t.Name)})
	}
	writeJSON(w, http.StatusOK, tags)
}

// handleSync starts a background refresh; clients poll the timeline for
// articles_loading to clear.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	loader, err := s.svc.Loader(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}

	go func() {
		if err := loader.Refresh(context.Background()); err != nil {
			s.logger.Warn("background refresh failed", "profile", id.ProfileID(), "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, portfolio.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
