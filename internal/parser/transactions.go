package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// TxnOptions tunes transaction extraction.
type TxnOptions struct {
	// DedupPrefix is how many description characters take part in the
	// duplicate key.
	DedupPrefix int
	// DefaultYear completes MM/DD dates when the statement text carries no
	// year. Zero means the current year.
	DefaultYear int
}

// DefaultTxnOptions returns the options used when none are configured.
func DefaultTxnOptions() TxnOptions {
	return TxnOptions{DedupPrefix: 40}
}

const (
	minDatedDescription = 5
	maxDatedDescription = 150
	maxDescription      = 100
)

var (
	// dated-line grammar
	txnSectionPattern  = regexp.MustCompile(`(?i)(?:Domestic\s+Transactions|Transaction\s+Details)[\s\S]*`)
	datedAmountPattern = regexp.MustCompile(`(?i)([\d,]+\.\d{2})\s*(Cr)?\s*$`)
	datedHeaderWords   = []string{"PAYMENT DUE DATE", "TOTAL DUES", "MINIMUM AMOUNT", "CREDIT LIMIT"}

	// Dr/Cr grammar
	accountSummaryPattern = regexp.MustCompile(`(?i)Account\s+Summary`)
	drCrAmountPattern     = regexp.MustCompile(`^\d+\.\d{2}$`)

	// USD grammar
	usdRestPattern = regexp.MustCompile(`(?i)^(.+?)\s+(-)?\$\s?([\d,]+\.\d{2})(?:\s*(CR))?\s*$`)

	// generic grammar: one row per line, the date leading
	genericDayFirstPattern = regexp.MustCompile(`(?im)^[ \t]*(\d{2}/\d{2}/\d{4})[ \t]+(.+?)[ \t]+([\d,]+\.\d{2})[ \t]*(Cr|Dr)?`)
	genericUSPattern       = regexp.MustCompile(`(?im)^[ \t]*(\d{2}/\d{2})[ \t]+(.+?)[ \t]+\$?([\d,]+\.\d{2})[ \t]*(CR)?[ \t]*$`)
	numericOnlyPattern     = regexp.MustCompile(`^[\d,.\s/$₹-]+$`)
)

// ExtractTransactions parses the transaction table in text using grammar.
// The result is deduplicated, keeps first occurrences in text order and
// carries a category for every row.
func ExtractTransactions(text string, grammar Grammar, currency string, opts TxnOptions) []models.Transaction {
	if currency == "" {
		currency = GuessCurrency(text)
	}

	var txns []models.Transaction
	switch grammar {
	case GrammarDatedLine:
		txns = parseDatedLines(text)
	case GrammarDrCr:
		txns = parseDrCrRows(text)
	case GrammarUSD:
		txns = parseUSDLines(text, opts.DefaultYear)
	default:
		txns = parseGeneric(text, opts.DefaultYear)
	}

	for i := range txns {
		txns[i].Currency = currency
		txns[i].Category = Categorize(txns[i].Description)
	}
	return dedupTransactions(txns, opts.DedupPrefix)
}

// parseDatedLines handles "DATE DESCRIPTION AMOUNT [Cr]" lines.
func parseDatedLines(text string) []models.Transaction {
	if section := txnSectionPattern.FindString(text); section != "" {
		text = section
	}

	var out []models.Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		date := extractDate(line)
		if date == "" {
			continue
		}
		rest := strings.TrimSpace(line[len(date):])

		loc := datedAmountPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}
		desc := collapseSpace(rest[:loc[0]])
		if len([]rune(desc)) < minDatedDescription || isHeaderLine(desc) {
			continue
		}
		amount := NormalizeAmount(rest[loc[2]:loc[3]])
		if !models.Present(amount) {
			continue
		}

		txn := models.Transaction{
			Date:        normalizeDate(date, DayFirst, TransactionDateLayout),
			Description: truncateRunes(desc, maxDatedDescription),
			Amount:      amount,
			Type:        models.TypeDebit,
		}
		if loc[4] >= 0 {
			txn.Type = models.TypeCredit
		}
		out = append(out, txn)
	}
	return out
}

func isHeaderLine(desc string) bool {
	upper := strings.ToUpper(desc)
	for _, w := range datedHeaderWords {
		if strings.Contains(upper, w) {
			return true
		}
	}
	return false
}

// parseDrCrRows handles table rows whose last two tokens are an amount and
// a Dr/Cr marker.
func parseDrCrRows(text string) []models.Transaction {
	if loc := accountSummaryPattern.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}

	var out []models.Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		date := extractDate(line)
		if date == "" {
			continue
		}
		tokens := strings.Fields(strings.TrimSpace(line[len(date):]))
		if len(tokens) < 2 {
			continue
		}

		marker := strings.ToLower(tokens[len(tokens)-1])
		if marker != "dr" && marker != "cr" {
			continue
		}
		raw := strings.ReplaceAll(tokens[len(tokens)-2], ",", "")
		if !drCrAmountPattern.MatchString(raw) {
			continue
		}
		if v, err := parseAmount(raw); err != nil || v < 0.01 {
			continue
		}
		desc := strings.Join(tokens[:len(tokens)-2], " ")
		if desc == "" {
			continue
		}

		txn := models.Transaction{
			Date:        normalizeDate(date, DayFirst, TransactionDateLayout),
			Description: truncateRunes(desc, maxDescription),
			Amount:      NormalizeAmount(raw),
			Type:        models.TypeDebit,
		}
		if marker == "cr" {
			txn.Type = models.TypeCredit
		}
		out = append(out, txn)
	}
	return out
}

// parseUSDLines handles "MM/DD[/YYYY] DESCRIPTION $AMOUNT" lines as printed
// by US issuers. A minus sign or trailing CR marks a credit.
func parseUSDLines(text string, defaultYear int) []models.Transaction {
	year := 0

	var out []models.Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		date := extractDate(line)
		short := false
		if date == "" {
			if date = extractShortDate(line); date == "" {
				continue
			}
			short = true
		}

		m := usdRestPattern.FindStringSubmatch(strings.TrimSpace(line[len(date):]))
		if m == nil {
			continue
		}
		desc := collapseSpace(m[1])
		if desc == "" || !isLetter(desc[0]) {
			continue
		}

		if short {
			if year == 0 {
				year = statementYear(text, defaultYear)
			}
			date = fmt.Sprintf("%s/%d", date, year)
		}

		txn := models.Transaction{
			Date:        normalizeDate(date, MonthFirst, TransactionDateLayout),
			Description: truncateRunes(desc, maxDescription),
			Amount:      NormalizeAmount(m[3]),
			Type:        models.TypeDebit,
		}
		if m[2] != "" || m[4] != "" {
			txn.Type = models.TypeCredit
		}
		out = append(out, txn)
	}
	return out
}

// parseGeneric is the fallback grammar for sets without a dedicated one.
// Day-first full dates are tried first; US MM/DD lines only when none match.
func parseGeneric(text string, defaultYear int) []models.Transaction {
	var out []models.Transaction
	for _, m := range genericDayFirstPattern.FindAllStringSubmatch(text, -1) {
		if txn, ok := genericTxn(m[1], m[2], m[3], strings.EqualFold(m[4], "cr"), DayFirst); ok {
			out = append(out, txn)
		}
	}
	if len(out) > 0 {
		return out
	}

	matches := genericUSPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	year := statementYear(text, defaultYear)
	for _, m := range matches {
		date := fmt.Sprintf("%s/%d", m[1], year)
		if txn, ok := genericTxn(date, m[2], m[3], m[4] != "", MonthFirst); ok {
			out = append(out, txn)
		}
	}
	return out
}

func genericTxn(date, desc, amount string, credit bool, format DateFormat) (models.Transaction, bool) {
	desc = collapseSpace(desc)
	if desc == "" || numericOnlyPattern.MatchString(desc) || isHeaderLine(desc) {
		return models.Transaction{}, false
	}
	amount = NormalizeAmount(amount)
	if !isPositiveAmount(amount) {
		return models.Transaction{}, false
	}
	txn := models.Transaction{
		Date:        normalizeDate(date, format, TransactionDateLayout),
		Description: truncateRunes(desc, maxDescription),
		Amount:      amount,
		Type:        models.TypeDebit,
	}
	if credit {
		txn.Type = models.TypeCredit
	}
	return txn, true
}

// dedupTransactions drops rows whose key was already seen, keeping the
// first occurrence of each.
func dedupTransactions(txns []models.Transaction, prefix int) []models.Transaction {
	if prefix <= 0 {
		prefix = DefaultTxnOptions().DedupPrefix
	}
	seen := make(map[string]bool, len(txns))
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		key := t.DedupKey(prefix)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// GuessCurrency picks INR or USD from the symbols present in text.
func GuessCurrency(text string) string {
	switch {
	case strings.Contains(text, "₹"), strings.Contains(text, "Rs"), strings.Contains(text, "INR"):
		return "INR"
	case strings.Contains(text, "$"):
		return "USD"
	}
	return "INR"
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
