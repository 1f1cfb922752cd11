package report

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the width of a reporting bucket.
type Granularity string

const (
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

// Granularities lists every supported bucket width.
var Granularities = []Granularity{Daily, Weekly, Monthly, Quarterly, Yearly}

// ParseGranularity accepts a granularity name or its first letter.
func ParseGranularity(s string) (Granularity, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, g := range Granularities {
		if v == string(g) || v == string(g)[:1] {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown period %q: use one of daily, weekly, monthly, quarterly, yearly", s)
}

// Truncate rounds t down to the start of its bucket. Weeks start on Monday.
func (g Granularity) Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Weekly:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Quarterly:
		q := (int(m)-1)/3*3 + 1
		return time.Date(y, time.Month(q), 1, 0, 0, 0, 0, loc)
	case Yearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

// Label formats a bucket start for display.
func (g Granularity) Label(bucket time.Time) string {
	switch g {
	case Monthly:
		return bucket.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", bucket.Year(), (int(bucket.Month())-1)/3+1)
	case Yearly:
		return bucket.Format("2006")
	default:
		return bucket.Format("2006-01-02")
	}
}
