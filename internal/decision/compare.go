package decision

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the canonical wire format of a calendar date.
const DateLayout = "2006-01-02"

// extractedDateLayouts are the formats accepted from OCR. Numeric
// day/month forms such as 01/02/1990 are ambiguous and never accepted.
var extractedDateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006.01.02",
	"2 January 2006",
	"January 2, 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

var folder = cases.Fold()

// normalizeName folds case, composes Unicode and collapses whitespace so that
// "JOHN  DOE" and "john doe" compare equal while "Jon Doe" does not.
func normalizeName(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return folder.String(s)
}

func namesMatch(declared, extracted string) bool {
	return normalizeName(declared) == normalizeName(extracted)
}

// ParseExtractedDate parses a date as printed on an identity document.
func ParseExtractedDate(raw string) (time.Time, bool) {
	raw = strings.Join(strings.Fields(raw), " ")
	for _, layout := range extractedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func datesMatch(declared time.Time, extracted string) bool {
	got, ok := ParseExtractedDate(extracted)
	if !ok {
		return false
	}
	dy, dm, dd := declared.Date()
	gy, gm, gd := got.Date()
	return dy == gy && dm == gm && dd == gd
}
