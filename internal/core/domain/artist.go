package domain

import "strings"

// PrimaryArtist returns the first credited artist of a comma-separated credit list.
func PrimaryArtist(credits string) string {
	first, _, _ := strings.Cut(credits, ",")
	return strings.TrimSpace(first)
}
