package util

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts accepted from query strings and flags
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDate parses an ISO (yyyy-MM-dd) or Brazilian (dd/MM/yyyy) date at midnight in loc.
// An empty string yields nil.
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q: expected yyyy-MM-dd or dd/MM/yyyy", s)
}

// MonthBounds returns the first and last calendar day of month in loc
func MonthBounds(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	// day 0 of next month is the last day of this one
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc)
	return first, last
}

// CurrentMonth returns the month and year of now in loc
func CurrentMonth(now time.Time, loc *time.Location) (int, int) {
	if loc != nil {
		now = now.In(loc)
	}
	return int(now.Month()), now.Year()
}
