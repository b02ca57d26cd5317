package formatting

import (
	"fmt"
	"strings"
	"time"
)

// DateFormats are the layouts accepted from users, tried in order.
var DateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02.01.2006",
}

// ParseDate parses a user-entered date in any accepted layout, interpreted
// in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateFormats {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FormatDate renders a date the way the bot always shows them.
func FormatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

// FormatDateRange renders an inclusive range, collapsing single days.
func FormatDateRange(from, to time.Time) string {
	if from.Equal(to) {
		return FormatDate(from)
	}
	return fmt.Sprintf("%s — %s", FormatDate(from), FormatDate(to))
}
