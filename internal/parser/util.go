package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat tags how an issuer prints dates.
type DateFormat int

const (
	DayFirst     DateFormat = iota // 14/06/2025
	MonthFirst                     // 06/14/2025
	DayMonthName                   // 14 JUN 2025
	MonthNameDay                   // June 14, 2025
)

// Canonical output layouts.
const (
	FieldDateLayout       = "01/02/2006"
	TransactionDateLayout = "02/01/2006"
)

const monthNames = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?`

// Date patterns found at the start of statement lines.
var (
	// DD/MM/YYYY, MM/DD/YYYY or the two-digit-year forms
	datePatternSlash = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4})\b`)
	// 14 JUN 2025
	datePatternText = regexp.MustCompile(`(?i)^(\d{1,2}\s+` + monthNames + `\s+\d{4})\b`)
	// June 14, 2025
	datePatternLong = regexp.MustCompile(`(?i)^(` + monthNames + `\s+\d{1,2},\s*\d{4})\b`)
	// MM/DD without a year
	datePatternShort = regexp.MustCompile(`^(\d{1,2}/\d{1,2})(?:\s|$)`)
)

var (
	periodYearPattern = regexp.MustCompile(`(?i)Statement\s+Period[:\s]*(?:\d{1,2}/\d{1,2}/)?(\d{4})`)
	dateYearPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]((?:19|20)\d{2})\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s+` + monthNames + `\s+((?:19|20)\d{2})\b`),
		regexp.MustCompile(`(?i)\b` + monthNames + `\s+\d{1,2},?\s+((?:19|20)\d{2})\b`),
	}
)

var (
	numericDayFirst   = []string{"2/1/2006", "2-1-2006", "2.1.2006", "2/1/06"}
	numericMonthFirst = []string{"1/2/2006", "1-2-2006", "1.2.2006", "1/2/06"}
	namedLayouts      = []string{
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2 Jan. 2006",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006", "Jan. 2, 2006",
		"2006-01-02",
	}
)

// parseDate reads s using the layouts implied by the issuer's date format.
// Named-month and ISO forms are accepted for every format.
func parseDate(s string, format DateFormat) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	var layouts []string
	switch format {
	case MonthFirst, MonthNameDay:
		layouts = append(layouts, numericMonthFirst...)
	default:
		layouts = append(layouts, numericDayFirst...)
	}
	layouts = append(layouts, namedLayouts...)

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeDate re-renders s in layout. Values that do not parse are
// returned unchanged.
func normalizeDate(s string, format DateFormat, layout string) string {
	t, ok := parseDate(s, format)
	if !ok {
		return s
	}
	return t.Format(layout)
}

// statementYear infers the statement's year for completing MM/DD dates:
// the Statement Period year, else the latest year in any full date, else
// fallback (the current year when zero).
func statementYear(text string, fallback int) int {
	if m := periodYearPattern.FindStringSubmatch(text); m != nil {
		if y, err := strconv.Atoi(m[1]); err == nil {
			return y
		}
	}

	latest := 0
	for _, re := range dateYearPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if y, err := strconv.Atoi(m[1]); err == nil && y > latest {
				latest = y
			}
		}
	}
	if latest > 0 {
		return latest
	}
	if fallback > 0 {
		return fallback
	}
	return time.Now().Year()
}

// parseAmount converts a canonical amount such as "1234.56" to a float64.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// extractDate returns the full date at the start of a line, or "".
func extractDate(line string) string {
	line = strings.TrimSpace(line)
	for _, re := range []*regexp.Regexp{datePatternSlash, datePatternText, datePatternLong} {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractShortDate returns a leading "MM/DD" with no year, or "".
func extractShortDate(line string) string {
	line = strings.TrimSpace(line)
	if datePatternSlash.MatchString(line) {
		return ""
	}
	if m := datePatternShort.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// collapseSpace trims s and folds interior whitespace runs to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes caps s at n characters.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
