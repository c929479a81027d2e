package parser

import "github.com/insightdelivered/card-statement-parser/internal/models"

// Engine runs one issuer's pattern set over statement text.
type Engine struct {
	Set     *PatternSet
	Options TxnOptions
}

// NewEngine returns the engine for id, or false when no pattern set is registered.
func NewEngine(id models.IssuerID, opts TxnOptions) (*Engine, bool) {
	set, ok := Lookup(id)
	if !ok {
		return nil, false
	}
	return &Engine{Set: set, Options: opts}, true
}

// BankName returns the human-readable issuer name.
func (e *Engine) BankName() string {
	return e.Set.Name
}

// Extract builds a draft record from text: every field, the transactions,
// a preview and the confidence score.
func (e *Engine) Extract(text string) *models.StatementRecord {
	rec := models.NewStatementRecord(e.Set.ID, e.Set.Name)
	rec.Currency = e.Set.Currency
	for f, v := range ExtractFields(text, e.Set) {
		rec.Set(f, v)
	}
	rec.Transactions = ExtractTransactions(text, e.Set.Grammar, e.Set.Currency, e.Options)
	rec.AddMethod(models.MethodPattern)
	rec.SetPreview(text)
	rec.Rescore()
	return rec
}
