// Package opml imports and exports techfolio article sources as OPML.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robertmeta/techfolio/model"
)

// qiitaType marks outlines that stand for a Qiita user rather than a
// plain feed.
const qiitaType = "qiita"

// OPML represents the root OPML structure.
type OPML struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

// Head contains metadata about the OPML document.
type Head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

// Body contains the outline elements.
type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline represents a source or a category in OPML.
type Outline struct {
	Text     string    `xml:"text,attr,omitempty"`
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLUrl   string    `xml:"xmlUrl,attr,omitempty"`
	Category string    `xml:"category,attr,omitempty"`
	Outlines []Outline `xml:"outline,omitempty"`
}

// Parse reads an OPML document and extracts sources. Outlines of type
// "qiita" become Qiita sources keyed by their text; every other outline
// with an xmlUrl becomes a feed source.
func Parse(r io.Reader) ([]*model.Source, error) {
	var doc OPML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse OPML: %w", err)
	}
	return extractSources(doc.Body.Outlines, ""), nil
}

// extractSources walks outlines recursively. Nested outlines without a
// category inherit the text of their parent.
func extractSources(outlines []Outline, parentCategory string) []*model.Source {
	var sources []*model.Source

	for _, o := range outlines {
		if src := outlineSource(o); src != nil {
			src.Category = o.Category
			if src.Category == "" {
				src.Category = parentCategory
			}
			sources = append(sources, src)
		}

		if len(o.Outlines) > 0 {
			category := o.Text
			if category == "" {
				category = parentCategory
			}
			sources = append(sources, extractSources(o.Outlines, category)...)
		}
	}

	return sources
}

func outlineSource(o Outline) *model.Source {
	title := o.Title
	if title == "" {
		title = o.Text
	}

	if strings.EqualFold(o.Type, qiitaType) {
		user := strings.TrimSpace(o.Text)
		if user == "" {
			return nil
		}
		return &model.Source{Kind: model.SourceQiita, Target: user, Title: title}
	}
	if o.XMLUrl == "" {
		return nil
	}
	return &model.Source{Kind: model.SourceFeed, Target: o.XMLUrl, Title: title}
}

// Generate writes sources as an OPML document. Categories are emitted in
// first-seen order; uncategorized sources follow at the top level.
func Generate(w io.Writer, sources []*model.Source) error {
	var order []string
	categories := make(map[string][]Outline)
	var uncategorized []Outline

	for _, src := range sources {
		o := sourceOutline(src)
		if src.Category == "" {
			uncategorized = append(uncategorized, o)
			continue
		}
		if _, ok := categories[src.Category]; !ok {
			order = append(order, src.Category)
		}
		categories[src.Category] = append(categories[src.Category], o)
	}

	doc := OPML{
		Version: "2.0",
		Head: Head{
			Title:       "techfolio sources",
			DateCreated: time.Now().Format(time.RFC1123),
		},
		Body: Body{Outlines: []Outline{}},
	}
	for _, c := range order {
		doc.Body.Outlines = append(doc.Body.Outlines, Outline{Text: c, Title: c, Outlines: categories[c]})
	}
	doc.Body.Outlines = append(doc.Body.Outlines, uncategorized...)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode OPML: %w", err)
	}

	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write final newline: %w", err)
	}
	return nil
}

func sourceOutline(src *model.Source) Outline {
	title := src.Title
	if src.Kind == model.SourceQiita {
		if title == "" {
			title = src.Target
		}
		return Outline{
			Type:     qiitaType,
			Text:     src.Target,
			Title:    title,
			XMLUrl:   "https://qiita.com/" + src.Target + "/feed",
			Category: src.Category,
		}
	}
	if title == "" {
		title = src.Target
	}
	return Outline{
		Type:     "rss",
		Text:     title,
		Title:    title,
		XMLUrl:   src.Target,
		Category: src.Category,
	}
}
