package period

import (
	"regexp"
	"strconv"
	"strings"
)

// Reporting periods are embedded in document filenames as YYYY-MM
// (e.g. "cpi_2026-01.pdf"). The month digits are not range-checked;
// whatever two digits follow the hyphen are taken verbatim.
var periodPattern = regexp.MustCompile(`\d{4}-\d{2}`)

// Extract returns the first YYYY-MM token found in filename.
// The second return value is false when the filename carries no token.
func Extract(filename string) (string, bool) {
	match := periodPattern.FindString(filename)
	if match == "" {
		return "", false
	}
	return match, true
}

// ToInt converts a YYYY-MM period to year*100+month, which sorts
// chronologically for valid months. Returns false when the period
// does not split into exactly two numeric parts.
func ToInt(period string) (int, bool) {
	parts := strings.Split(period, "-")
	if len(parts) != 2 {
		return 0, false
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}

	return year*100 + month, true
}
