package models

import "github.com/shopspring/decimal"

// Status is the overall outcome of a parse.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPartial Status = "PARTIAL"
	StatusFailed  Status = "FAILED"
)

// Result is the outward-facing value of one parse. The record's fields are
// flattened into it; a parse that failed before extraction has no record.
type Result struct {
	Status           Status `json:"status"`
	Reason           string `json:"reason,omitempty"`
	Source           string `json:"source,omitempty"`
	ParseID          string `json:"parse_id"`
	TransactionCount int    `json:"transaction_count"`
	*StatementRecord
}

// Confidence returns the record's score, or zero when no record exists.
func (r Result) Confidence() float64 {
	if r.StatementRecord == nil {
		return 0
	}
	return r.ConfidenceScore
}

// Txns returns the record's transactions, never nil.
func (r Result) Txns() []Transaction {
	if r.StatementRecord == nil || r.Transactions == nil {
		return []Transaction{}
	}
	return r.Transactions
}

// Totals sums debits and credits separately.
func Totals(txns []Transaction) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, t := range txns {
		if t.IsCredit() {
			credit = credit.Add(t.Decimal())
		} else {
			debit = debit.Add(t.Decimal())
		}
	}
	return debit, credit
}
