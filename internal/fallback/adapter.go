package fallback

import (
	"context"
	"errors"
	"time"

	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
)

// DefaultMaxChars caps the text sent to the backend.
const DefaultMaxChars = 15000

// Config configures the adapter and its Gemini backend.
type Config struct {
	APIKey   string
	Model    string
	Timeout  time.Duration
	MaxChars int
}

// Adapter turns backend replies into statement records. Backend values are
// normalized the same way as pattern captures.
type Adapter struct {
	backend Backend
	cfg     Config
	txnOpts parser.TxnOptions
}

// New creates an adapter backed by Gemini.
func New(cfg Config, txnOpts parser.TxnOptions) *Adapter {
	return NewAdapter(NewGeminiBackend(cfg), cfg, txnOpts)
}

// NewAdapter creates an adapter over an arbitrary backend.
func NewAdapter(backend Backend, cfg Config, txnOpts parser.TxnOptions) *Adapter {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	return &Adapter{backend: backend, cfg: cfg, txnOpts: txnOpts}
}

// Configured reports whether a backend call can be attempted at all.
func (a *Adapter) Configured() bool {
	return a != nil && a.backend != nil && a.cfg.APIKey != ""
}

func (a *Adapter) request(text, hint string) Request {
	if r := []rune(text); len(r) > a.cfg.MaxChars {
		text = string(r[:a.cfg.MaxChars])
	}
	return Request{Text: text, Schema: StatementSchema(), IssuerHint: hint}
}

// Extract builds a record entirely from the backend. It always returns a
// record; on any failure the record is marked failed and carries the reason.
func (a *Adapter) Extract(ctx context.Context, text, hint string) *models.StatementRecord {
	if !a.Configured() {
		return failedRecord(ErrNotConfigured)
	}

	fields, err := a.backend.Extract(ctx, a.request(text, hint))
	if err != nil {
		return failedRecord(err)
	}

	bank := fields.Get(FieldBankName)
	if !models.Present(bank) {
		bank = hint
	}
	if bank == "" {
		bank = "Unknown Bank"
	}

	rec := models.NewStatementRecord(models.IssuerUnknown, bank)
	rec.Currency = parser.GuessCurrency(text)
	for _, f := range models.Fields {
		rec.Set(f, parser.CleanField(f, fields.Get(string(f)), parser.DayFirst))
	}
	rec.Transactions = parser.ExtractTransactions(text, parser.GrammarGeneric, rec.Currency, a.txnOpts)
	rec.AddMethod(models.MethodAIFallback)
	rec.SetPreview(text)
	rec.Rescore()
	return rec
}

// Enhance asks the backend for the fields rec is missing and fills only
// those. Present fields are never overwritten. A failed call leaves the
// fields untouched and appends a note to rec.Errors. The returned error is
// informational; rec is always left consistent and rescored.
func (a *Adapter) Enhance(ctx context.Context, rec *models.StatementRecord, text string) error {
	if !a.Configured() {
		return nil
	}
	defer rec.Rescore()

	missing := rec.Missing()
	if len(missing) == 0 {
		return nil
	}

	fields, err := a.backend.Extract(ctx, a.request(text, rec.BankName))
	if err != nil {
		rec.AddError("AI enhancement failed: " + err.Error())
		return err
	}

	for _, f := range missing {
		v := parser.CleanField(f, fields.Get(string(f)), parser.DayFirst)
		if models.Present(v) {
			rec.Set(f, v)
		}
	}
	rec.AddMethod(models.MethodAIEnhanced)
	return nil
}

func failedRecord(err error) *models.StatementRecord {
	rec := models.NewStatementRecord(models.IssuerUnknown, "Unknown")
	rec.AddMethod(models.MethodAIFailed)
	msg := err.Error()
	if !errors.Is(err, ErrNotConfigured) {
		msg = "AI parser error: " + msg
	}
	rec.AddError(msg)
	rec.Rescore()
	return rec
}
