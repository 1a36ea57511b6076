package domain

import (
	"strings"
	"time"
)

// releaseLayouts covers the precisions Spotify reports for album release dates.
var releaseLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ReleaseYear extracts the four-digit year of a release date.
// It reports false when the date is empty or matches no known layout.
func ReleaseYear(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, layout := range releaseLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if y := t.Year(); y >= 1000 && y <= 9999 {
			return y, true
		}
		return 0, false
	}
	return 0, false
}
