package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/robertmeta/techfolio/model"
)

// FeedSource reads articles from an RSS, Atom or JSON feed.
type FeedSource struct {
	url    string
	parser *gofeed.Parser
}

// NewFeedSource creates a FeedSource for url. A nil client uses
// http.DefaultClient.
func NewFeedSource(url string, client *http.Client) *FeedSource {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	return &FeedSource{url: url, parser: parser}
}

// Fetch retrieves and parses the feed.
func (f *FeedSource) Fetch(ctx context.Context) ([]model.Article, error) {
	parsed, err := f.parse(ctx)
	if err != nil {
		return nil, err
	}
	return convertFeed(parsed), nil
}

// Title retrieves the feed and returns its title.
func (f *FeedSource) Title(ctx context.Context) (string, error) {
	parsed, err := f.parse(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(parsed.Title), nil
}

func (f *FeedSource) parse(ctx context.Context) (*gofeed.Feed, error) {
	parsed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", f.url, err)
	}
	return parsed, nil
}

// ParseFeed parses feed content from a string.
func ParseFeed(content string) (title string, articles []model.Article, err error) {
	if strings.TrimSpace(content) == "" {
		return "", nil, fmt.Errorf("feed content is empty")
	}

	parsed, err := gofeed.NewParser().ParseString(content)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return parsed.Title, convertFeed(parsed), nil
}

func convertFeed(gf *gofeed.Feed) []model.Article {
	articles := make([]model.Article, 0, len(gf.Items))
	for _, item := range gf.Items {
		if a, ok := convertItem(item); ok {
			articles = append(articles, a)
		}
	}
	return articles
}

// convertItem maps a feed item to an article. Items with neither a GUID
// nor a link cannot be identified and are skipped.
func convertItem(item *gofeed.Item) (model.Article, bool) {
	a := model.Article{
		ID:     item.GUID,
		Title:  strings.TrimSpace(item.Title),
		URL:    item.Link,
		Source: string(model.SourceFeed),
	}

	// Use link as ID if GUID is missing
	if a.ID == "" {
		a.ID = item.Link
	}
	if a.ID == "" {
		return a, false
	}

	// An item without a date stays undated and sorts last on the timeline.
	if item.PublishedParsed != nil {
		a.CreatedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		a.CreatedAt = item.UpdatedParsed.UTC()
	}

	seen := make(map[string]bool, len(item.Categories))
	for _, c := range item.Categories {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		a.Tags = append(a.Tags, c)
	}

	return a, true
}
