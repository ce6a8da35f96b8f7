package utils

import (
	"fmt"
	"strings"
	"time"
)

var fallbackLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04"}

// ParseTime accepts RFC3339, a bare date (YYYY-MM-DD) or a few local
// date-time forms. dateOnly reports whether the input had no time part.
func ParseTime(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q, use RFC3339 or YYYY-MM-DD", s)
}

// ParseDeadline is ParseTime for closing dates: a bare date means the end of that day.
func ParseDeadline(s string) (time.Time, error) {
	t, dateOnly, err := ParseTime(s)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
