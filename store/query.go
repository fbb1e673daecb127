package store

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ProjectQuery specifies how to query projects.
type ProjectQuery struct {
	Limit  int
	Offset int
	Tag    string
	Role   string
}

// ArticleQuery specifies how to query cached articles.
type ArticleQuery struct {
	Limit     int
	SinceTime *int64 // Unix timestamp
}

// durationPattern matches duration strings like "7d", "2w", "3m", "1y"
var durationPattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParseDuration parses a duration string like "7d", "2w", "3m", "1y".
// Returns the duration or an error if the format is invalid.
//
// Supported units:
//   - d: days
//   - w: weeks (7 days)
//   - m: months (30 days, approximation)
//   - y: years (365 days, approximation)
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("duration string is empty")
	}

	matches := durationPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid duration format: %s (expected format: <number><unit>, e.g., 7d, 2w, 3m, 1y)", s)
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in duration: %s", matches[1])
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "d":
		return time.Duration(num) * day, nil
	case "w":
		return time.Duration(num) * 7 * day, nil
	case "m":
		return time.Duration(num) * 30 * day, nil
	default:
		return time.Duration(num) * 365 * day, nil
	}
}

// BuildArticleQuery constructs an ArticleQuery from CLI flags. since is a
// ParseDuration string measured back from now; "" means no lower bound.
func BuildArticleQuery(limit int, since string, now time.Time) (ArticleQuery, error) {
	opts := ArticleQuery{Limit: limit}
	if since == "" {
		return opts, nil
	}

	d, err := ParseDuration(since)
	if err != nil {
		return opts, fmt.Errorf("failed to parse --since flag: %w", err)
	}
	sinceUnix := now.Add(-d).Unix()
	opts.SinceTime = &sinceUnix
	return opts, nil
}
