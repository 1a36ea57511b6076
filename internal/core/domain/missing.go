package domain

import "strings"

// missingText lists the cell values read as missing, matching the default NA
// markers of common CSV tooling.
var missingText = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingText reports whether a text cell holds no value.
func IsMissingText(raw string) bool {
	_, ok := missingText[strings.TrimSpace(raw)]
	return ok
}

// Text returns raw unchanged, or "" when it is a missing-value marker.
func Text(raw string) string {
	if IsMissingText(raw) {
		return ""
	}
	return raw
}
