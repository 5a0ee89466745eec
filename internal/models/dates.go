package models

import (
	"strings"
	"time"
)

// Date shapes observed in the PLACSP feed: day-first with slashes or
// dashes, optionally followed by a time, plus ISO dates from newer
// syndication files.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a feed date string. Absent or unparseable dates
// return the zero time, which every ordering rule treats as "no date";
// this replaces the invalid-date propagation the original UI relied on.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
