package ux

import (
	"fmt"
	"time"
)

// InvalidDate is rendered for timestamps that cannot be parsed.
const InvalidDate = "Invalid Date"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the timestamp formats the API emits.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders an API timestamp as "Jan 2, 2006".
func FormatDate(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return InvalidDate
	}
	return t.Format("Jan 2, 2006")
}

var agoUnits = []struct {
	name    string
	seconds int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"week", 604800},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// TimeAgo renders the distance between value and now in the largest whole
// unit, e.g. "3 days ago". Anything under a minute is "Just now".
func TimeAgo(value string, now time.Time) string {
	t, ok := ParseDate(value)
	if !ok {
		return InvalidDate
	}

	seconds := int64(now.Sub(t) / time.Second)
	for _, unit := range agoUnits {
		n := seconds / unit.seconds
		if n >= 1 {
			if n > 1 {
				return fmt.Sprintf("%d %ss ago", n, unit.name)
			}
			return fmt.Sprintf("%d %s ago", n, unit.name)
		}
	}
	return "Just now"
}

// FormatCountdown renders seconds as mm:ss. Negative input renders 00:00.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
