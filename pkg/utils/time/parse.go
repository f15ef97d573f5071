// ABOUTME: Lenient timestamp parsing for feed entries whose dates gofeed could not parse
// ABOUTME: Returns nil instead of a zero time so callers can fall through to the next field

package time

import (
	"strings"
	"time"
)

// layouts seen in AI/ML blog and preprint feeds
var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05.000000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02 Jan 2006 15:04:05 -0700",
	"02 Jan 2006",
	"2006-01-02",
}

// Parse tries each known layout and returns the first match in UTC, or nil
func Parse(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// First returns the first non-nil parsed time among the candidates
func First(candidates ...*time.Time) *time.Time {
	for _, c := range candidates {
		if c != nil && !c.IsZero() {
			return c
		}
	}
	return nil
}
