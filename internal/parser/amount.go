package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Currency marks and debit/credit words. "Rs." is matched before the bare
// mark so its trailing period is never mistaken for a decimal point.
var amountMarks = regexp.MustCompile(`(?i)rs\.|rs|inr|usd|dr|cr|[₹$£€¥]`)

// NormalizeAmount canonicalizes a monetary token: no currency marks, no
// debit/credit suffix, no grouping commas, at most one decimal point.
// An empty result is NotFound. It never fails.
func NormalizeAmount(s string) string {
	if s == models.NotFound {
		return s
	}

	s = amountMarks.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, ",", "")

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	// Earlier points are stray separators.
	if strings.Count(s, ".") > 1 {
		i := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:i], ".", "") + s[i:]
	}

	if s == "" || s == "." {
		return models.NotFound
	}
	return s
}

// isPositiveAmount reports whether a canonical amount is greater than zero.
func isPositiveAmount(s string) bool {
	return amountValue(s) > 0
}

// amountValue parses a canonical amount, returning -1 when it is unusable.
func amountValue(s string) float64 {
	if !models.Present(s) {
		return -1
	}
	v, err := parseAmount(s)
	if err != nil {
		return -1
	}
	return v
}
