// Package tagcolor resolves display colors for tag names against the tag catalog.
package tagcolor

import (
	"strings"

	"github.com/robertmeta/techfolio/model"
)

// FallbackColor is used for tags missing from the catalog or without a color.
const FallbackColor = "#6B7280"

// Resolver looks up tag colors case-insensitively.
// Build one per catalog snapshot and reuse it for every lookup.
type Resolver struct {
	colors map[string]string
}

// New indexes the catalog by lower-cased tag name. When two catalog entries
// differ only in case, the first one wins.
func New(catalog []model.Tag) *Resolver {
	colors := make(map[string]string, len(catalog))
	for _, t := range catalog {
		key := strings.ToLower(t.Name)
		if _, ok := colors[key]; ok {
			continue
		}
		colors[key] = t.Color
	}
	return &Resolver{colors: colors}
}

// ColorFor returns the catalog color for name, or FallbackColor.
func (r *Resolver) ColorFor(name string) string {
	if r == nil {
		return FallbackColor
	}
	if c := r.colors[strings.ToLower(name)]; c != "" {
		return c
	}
	return FallbackColor
}

// ColorFor is a one-shot lookup. Prefer New when resolving many names.
func ColorFor(name string, catalog []model.Tag) string {
	return New(catalog).ColorFor(name)
}
