package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/robertmeta/techfolio/model"
)

// DefaultQiitaBaseURL is the public Qiita host.
const DefaultQiitaBaseURL = "https://qiita.com"

// DefaultPerPage is the number of items requested from Qiita.
const DefaultPerPage = 20

// qiitaItem is the subset of the Qiita API v2 item schema we read.
type qiitaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	LikesCount  int       `json:"likes_count"`
	StocksCount int       `json:"stocks_count"`
	Tags        []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

// QiitaSource lists a user's items through the Qiita API v2.
type QiitaSource struct {
	baseURL string
	userID  string
	token   string
	perPage int
	client  *http.Client
}

// NewQiitaSource creates a source for userID. An empty baseURL means
// DefaultQiitaBaseURL and perPage <= 0 means DefaultPerPage.
func NewQiitaSource(userID string, opts Options) *QiitaSource {
	q := &QiitaSource{
		baseURL: opts.QiitaBaseURL,
		userID:  userID,
		token:   opts.QiitaToken,
		perPage: opts.PerPage,
		client:  opts.client(),
	}
	if q.baseURL == "" {
		q.baseURL = DefaultQiitaBaseURL
	}
	if q.perPage <= 0 {
		q.perPage = DefaultPerPage
	}
	return q
}

// Fetch requests the first page of the user's items.
func (q *QiitaSource) Fetch(ctx context.Context) ([]model.Article, error) {
	endpoint := fmt.Sprintf("%s/api/v2/users/%s/items?page=1&per_page=%s",
		q.baseURL, url.PathEscape(q.userID), strconv.Itoa(q.perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build qiita request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if q.token != "" {
		req.Header.Set("Authorization", "Bearer "+q.token)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch qiita items for %s: %w", q.userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("qiita returned %d for %s: %s", resp.StatusCode, q.userID, body)
	}

	var items []qiitaItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode qiita items: %w", err)
	}

	articles := make([]model.Article, 0, len(items))
	for _, it := range items {
		a := model.Article{
			ID:         it.ID,
			Title:      it.Title,
			URL:        it.URL,
			LikeCount:  it.LikesCount,
			StockCount: it.StocksCount,
			Source:     string(model.SourceQiita),
		}
		if !it.CreatedAt.IsZero() {
			a.CreatedAt = it.CreatedAt.UTC()
		}
		for _, t := range it.Tags {
			a.Tags = append(a.Tags, t.Name)
		}
		articles = append(articles, a)
	}
	return articles, nil
}
