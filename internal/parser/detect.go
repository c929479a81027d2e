package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// detector wraps the shared keyword index with word-boundary checks for
// short keywords such as "AXIS" and "CHASE".
type detector struct {
	index *keywordIndex
	// word[i] verifies keyword i on word boundaries; nil means plain substring
	word []*regexp.Regexp
}

var issuerDetector = func() *detector {
	groups := make([][]string, len(issuerTable))
	var word []*regexp.Regexp
	seen := make(map[string]bool)
	for i, s := range issuerTable {
		for _, k := range s.Keywords {
			text := strings.ToLower(k.Text)
			groups[i] = append(groups[i], text)
			if seen[text] {
				continue
			}
			seen[text] = true
			var re *regexp.Regexp
			if k.Word {
				re = regexp.MustCompile(`\b` + regexp.QuoteMeta(text) + `\b`)
			}
			word = append(word, re)
		}
	}
	return &detector{index: newKeywordIndex(groups), word: word}
}()

// DetectIssuer identifies the statement's issuer by keyword membership.
// When keywords of several issuers occur, the one earliest in priority
// order wins.
func DetectIssuer(text string) models.IssuerID {
	lower := strings.ToLower(text)

	d := issuerDetector
	d.index.mu.Lock()
	hits := d.index.matcher.Match([]byte(lower))
	d.index.mu.Unlock()

	best := -1
	for _, hit := range hits {
		if re := d.word[hit]; re != nil && !re.MatchString(lower) {
			continue
		}
		if p := d.index.owner[hit]; best == -1 || p < best {
			best = p
		}
	}
	if best < 0 {
		return models.IssuerUnknown
	}
	return issuerTable[best].ID
}
