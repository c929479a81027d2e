package parser

import (
	"regexp"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Grammar selects the transaction line grammar for an issuer.
type Grammar int

const (
	GrammarGeneric   Grammar = iota // free-form dates and amounts
	GrammarDatedLine                // DATE DESCRIPTION AMOUNT [Cr]
	GrammarDrCr                     // DATE DESCRIPTION AMOUNT Dr|Cr table rows
	GrammarUSD                      // MM/DD[/YYYY] DESCRIPTION $AMOUNT
)

// Keyword is an issuer identifier. Word keywords only match on word
// boundaries.
type Keyword struct {
	Text string
	Word bool
}

// PatternSet is one issuer's extraction configuration. The registered sets
// are built at package init and never mutated; Lookup and Issuers hand out
// copies.
type PatternSet struct {
	ID       models.IssuerID
	Name     string
	Keywords []Keyword
	Fields   map[models.Field][]*regexp.Regexp
	Dates    DateFormat
	Currency string
	Grammar  Grammar
	// SparseTransactions marks layouts where the grammar often finds no
	// rows; an empty transaction list then warrants enhancement.
	SparseTransactions bool
}

var cardSuffixPattern = regexp.MustCompile(`^\d{4}$`)

// matchFirst returns group 1 of the first pattern that captures a non-empty
// value. Later patterns are not evaluated once one succeeds.
func matchFirst(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v := collapseSpace(m[1]); v != "" {
			return v
		}
	}
	return models.NotFound
}

// ExtractFields applies set's ordered patterns to text, returning a value
// (or NotFound) for every field. Dates come back as MM/DD/YYYY, amounts in
// canonical form.
func ExtractFields(text string, set *PatternSet) map[models.Field]string {
	out := make(map[models.Field]string, len(models.Fields))
	for _, f := range models.Fields {
		out[f] = CleanField(f, matchFirst(text, set.Fields[f]), set.Dates)
	}
	return out
}

// CleanField canonicalizes a raw value for f: card suffixes must be four
// digits, amounts are normalized and dates re-rendered as MM/DD/YYYY.
func CleanField(f models.Field, v string, dates DateFormat) string {
	if !models.Present(v) {
		return models.NotFound
	}
	switch {
	case f == models.FieldCardLast4:
		if !cardSuffixPattern.MatchString(v) {
			return models.NotFound
		}
	case f.IsAmount():
		v = NormalizeAmount(v)
	case f.IsDate():
		v = normalizeDate(v, dates, FieldDateLayout)
	}
	return v
}

// patterns compiles field expressions with case-insensitive, multi-line and
// dot-all semantics.
func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?ims)` + e)
	}
	return out
}
