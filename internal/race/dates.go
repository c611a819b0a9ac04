package race

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. ISO first, then the handful of named-month
// shapes the aggregator sites actually publish. Anything else is dropped.
var dateLayouts = []string{
	"2006-01-02",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
}

// ParseDate parses a date string from a scraped page. Timestamps are accepted
// and truncated to their calendar date.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC().Truncate(24 * time.Hour), true
	}
	if len(value) >= 10 {
		if d, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return d, true
		}
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate renders a scraped date as an ISO-8601 calendar date, or ""
// when it cannot be parsed.
func NormalizeDate(raw string) string {
	d, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return d.Format("2006-01-02")
}
