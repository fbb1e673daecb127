// Package feed fetches articles for techfolio from Qiita and from
// RSS/Atom feeds, and tracks the state of the article feed.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robertmeta/techfolio/model"
)

// ErrUnknownSourceKind is returned by New for an unsupported source kind.
var ErrUnknownSourceKind = errors.New("unknown source kind")

// DefaultTimeout bounds a single source fetch.
const DefaultTimeout = 15 * time.Second

// Source fetches the current articles of one origin.
type Source interface {
	Fetch(ctx context.Context) ([]model.Article, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]model.Article, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]model.Article, error) { return f(ctx) }

// Static returns a Source that always yields a copy of articles.
func Static(articles []model.Article) Source {
	return SourceFunc(func(context.Context) ([]model.Article, error) {
		return append([]model.Article(nil), articles...), nil
	})
}

// Options configures the sources built by New.
type Options struct {
	Timeout      time.Duration
	QiitaBaseURL string
	QiitaToken   string
	PerPage      int

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// New builds the Source for a connected source record.
func New(src *model.Source, opts Options) (Source, error) {
	switch src.Kind {
	case model.SourceQiita:
		return NewQiitaSource(src.Target, opts), nil
	case model.SourceFeed:
		return NewFeedSource(src.Target, opts.client()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceKind, src.Kind)
	}
}
