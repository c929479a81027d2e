package models

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TypeDebit  = "DEBIT"
	TypeCredit = "CREDIT"
)

// Transaction represents a single itemized line of a card statement.
type Transaction struct {
	Date        string `json:"date" csv:"Date"`
	Description string `json:"description" csv:"Description"`
	Amount      string `json:"amount" csv:"Amount"` // canonical magnitude, see parser.NormalizeAmount
	Type        string `json:"type" csv:"Type"`     // DEBIT or CREDIT
	Currency    string `json:"currency" csv:"Currency"`
	Category    string `json:"category" csv:"Category"`
}

// IsCredit reports whether the statement marked the line as a credit (refund, payment).
func (t Transaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// Decimal returns the unsigned amount. Unparseable amounts are zero.
func (t Transaction) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Signed returns the amount with credits negated, for aggregation.
func (t Transaction) Signed() decimal.Decimal {
	if t.IsCredit() {
		return t.Decimal().Neg()
	}
	return t.Decimal()
}

// Display renders the amount with the currency's symbol and grouping,
// e.g. "₹25,625.00" or "₹500.00 Cr".
func (t Transaction) Display() string {
	s := FormatMoney(t.Decimal(), t.Currency)
	if t.IsCredit() {
		s += " Cr"
	}
	return s
}

// DedupKey identifies equivalent transactions within one statement. The
// description is cut to prefix runes; the credit tag is part of the amount.
func (t Transaction) DedupKey(prefix int) string {
	desc := []rune(t.Description)
	if prefix > 0 && len(desc) > prefix {
		desc = desc[:prefix]
	}
	amount := t.Amount
	if t.IsCredit() {
		amount += " Cr"
	}
	return t.Date + "_" + string(desc) + "_" + amount
}

// FormatMoney formats d in the given ISO currency. Unknown codes fall back to USD.
func FormatMoney(d decimal.Decimal, code string) string {
	currency := money.GetCurrency(code)
	if currency == nil {
		code = "USD"
		currency = money.GetCurrency(code)
	}
	minor := d.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return money.New(minor, code).Display()
}
