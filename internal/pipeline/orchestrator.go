// Package pipeline drives one statement from raw document to final Result:
// text extraction, issuer detection, strategy selection, pattern or AI
// extraction, optional enhancement and status assignment.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/fallback"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
)

// ErrInsufficientText is reported when the document yields too little text
// to attempt any extraction.
var ErrInsufficientText = errors.New("insufficient text extracted")

// Strategy is the extraction path chosen for a parse.
type Strategy int

const (
	StrategyPattern Strategy = iota
	StrategyFullFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyPattern:
		return "pattern"
	case StrategyFullFallback:
		return "full-fallback"
	}
	return "unknown"
}

// Options tune the orchestrator.
type Options struct {
	MinTextLength       int
	ConfidenceThreshold float64
	TxnOptions          parser.TxnOptions
	Workers             int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		MinTextLength:       100,
		ConfidenceThreshold: 0.8,
		TxnOptions:          parser.DefaultTxnOptions(),
		Workers:             4,
	}
}

// Orchestrator runs the parse pipeline. It holds no per-parse state and is
// safe for concurrent use.
type Orchestrator struct {
	extractor extractor.TextExtractor
	adapter   *fallback.Adapter
	opts      Options
	metrics   *metrics.Metrics
}

// New builds an orchestrator. A nil adapter behaves as an unconfigured
// backend; a nil metrics set records nothing.
func New(ext extractor.TextExtractor, adapter *fallback.Adapter, opts Options, m *metrics.Metrics) *Orchestrator {
	if ext == nil {
		ext = extractor.NewAutoExtractor()
	}
	if adapter == nil {
		adapter = fallback.NewAdapter(nil, fallback.Config{}, opts.TxnOptions)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{extractor: ext, adapter: adapter, opts: opts, metrics: m}
}

// AIConfigured reports whether the AI backend has credentials.
func (o *Orchestrator) AIConfigured() bool {
	return o.adapter.Configured()
}

// Workers returns the batch parallelism.
func (o *Orchestrator) Workers() int {
	return o.opts.Workers
}

// Parse extracts text from doc and runs the pipeline over it. It never
// panics; every failure is reported through the Result.
func (o *Orchestrator) Parse(ctx context.Context, doc extractor.Document, force bool) (res models.Result) {
	res = newResult(doc.Name)
	log := slog.With("parse_id", res.ParseID, "source", doc.Name)
	defer o.recoverPanic(&res, log)

	if doc.Err != nil {
		return o.fail(res, log, fmt.Sprintf("document could not be read: %v", doc.Err))
	}

	start := time.Now()
	text, err := o.extractor.Extract(ctx, doc)
	o.metrics.ObserveStage("extract", start)
	if err != nil {
		return o.fail(res, log, fmt.Sprintf("text extraction failed: %v", err))
	}
	log.Debug("text ready", "chars", utf8.RuneCountInString(text))
	return o.run(ctx, res, log, text, force)
}

// ParseText runs the pipeline over already extracted text.
func (o *Orchestrator) ParseText(ctx context.Context, name, text string, force bool) (res models.Result) {
	res = newResult(name)
	log := slog.With("parse_id", res.ParseID, "source", name)
	defer o.recoverPanic(&res, log)

	return o.run(ctx, res, log, text, force)
}

// ParseBatch parses docs with bounded parallelism. Results are index-aligned
// with docs and one document's failure never affects another, including a
// document that could not be read at all.
func (o *Orchestrator) ParseBatch(ctx context.Context, docs []extractor.Document, force bool) []models.Result {
	return o.ParseBatchFunc(ctx, docs, force, nil)
}

// ParseBatchFunc is ParseBatch with a callback invoked as each document
// completes. done may be called from several goroutines at once.
func (o *Orchestrator) ParseBatchFunc(ctx context.Context, docs []extractor.Document, force bool, done func(models.Result)) []models.Result {
	results := make([]models.Result, len(docs))

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = o.Parse(ctx, doc, force)
			if done != nil {
				done(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("batch complete", "documents", len(docs), "workers", o.opts.Workers)
	return results
}

func (o *Orchestrator) run(ctx context.Context, res models.Result, log *slog.Logger, text string, force bool) models.Result {
	chars := utf8.RuneCountInString(strings.TrimSpace(text))
	if chars < o.opts.MinTextLength {
		return o.fail(res, log, fmt.Sprintf("%v (%d chars, need %d)", ErrInsufficientText, chars, o.opts.MinTextLength))
	}

	start := time.Now()
	issuer := parser.DetectIssuer(text)
	o.metrics.ObserveStage("detect", start)
	o.metrics.ObserveIssuer(string(issuer))
	log.Debug("issuer detected", "issuer", issuer)

	strategy, engine := o.selectStrategy(issuer, force)
	o.metrics.ObserveStrategy(strategy.String())
	log.Debug("strategy selected", "strategy", strategy, "forced", force)

	start = time.Now()
	var rec *models.StatementRecord
	switch strategy {
	case StrategyPattern:
		rec = engine.Extract(text)
	case StrategyFullFallback:
		hint := ""
		if issuer != models.IssuerUnknown {
			hint = parser.IssuerName(issuer)
		}
		rec = o.adapter.Extract(ctx, text, hint)
		if issuer != models.IssuerUnknown {
			rec.Issuer = issuer
			rec.BankName = hint
		}
	}
	o.metrics.ObserveStage("draft", start)
	log.Debug("draft extracted", "confidence", rec.ConfidenceScore, "transactions", len(rec.Transactions))

	if strategy == StrategyPattern && o.shouldEnhance(engine, rec) {
		start = time.Now()
		if err := o.adapter.Enhance(ctx, rec, text); err != nil {
			o.metrics.ObserveEnhancement("failed")
			log.Warn("enhancement failed", "error", err)
		} else {
			o.metrics.ObserveEnhancement("ok")
			log.Debug("enhanced", "confidence", rec.ConfidenceScore)
		}
		o.metrics.ObserveStage("enhance", start)
	}

	rec.Rescore()
	res.StatementRecord = rec
	res.TransactionCount = len(rec.Transactions)
	res.Status, res.Reason = finalStatus(strategy, rec)

	o.metrics.ObserveParse(string(res.Status), rec.ConfidenceScore)
	log.Debug("final", "status", res.Status, "confidence", rec.ConfidenceScore)
	return res
}

func (o *Orchestrator) selectStrategy(issuer models.IssuerID, force bool) (Strategy, *parser.Engine) {
	if force || issuer == models.IssuerUnknown {
		return StrategyFullFallback, nil
	}
	engine, ok := parser.NewEngine(issuer, o.opts.TxnOptions)
	if !ok {
		return StrategyFullFallback, nil
	}
	return StrategyPattern, engine
}

func (o *Orchestrator) shouldEnhance(engine *parser.Engine, rec *models.StatementRecord) bool {
	if !o.adapter.Configured() {
		return false
	}
	if rec.ConfidenceScore < o.opts.ConfidenceThreshold {
		return true
	}
	return engine.Set.SparseTransactions && len(rec.Transactions) == 0
}

func finalStatus(strategy Strategy, rec *models.StatementRecord) (models.Status, string) {
	if strategy == StrategyFullFallback && hasMethod(rec, models.MethodAIFailed) {
		reason := "AI extraction failed"
		if len(rec.Errors) > 0 {
			reason = rec.Errors[0]
		}
		return models.StatusFailed, reason
	}
	if rec.IsValid() {
		return models.StatusSuccess, ""
	}
	if strategy == StrategyPattern || rec.HasAnyField() {
		return models.StatusPartial, missingReason(rec)
	}
	return models.StatusFailed, "no fields could be extracted"
}

func missingReason(rec *models.StatementRecord) string {
	var names []string
	for _, f := range models.RequiredFields {
		if !models.Present(rec.Get(f)) {
			names = append(names, string(f))
		}
	}
	return "missing required fields: " + strings.Join(names, ", ")
}

func hasMethod(rec *models.StatementRecord, tag string) bool {
	for _, m := range rec.Methods {
		if m == tag {
			return true
		}
	}
	return false
}

func newResult(source string) models.Result {
	return models.Result{ParseID: uuid.NewString(), Source: source}
}

func (o *Orchestrator) fail(res models.Result, log *slog.Logger, reason string) models.Result {
	res.Status = models.StatusFailed
	res.Reason = reason
	res.StatementRecord = nil
	res.TransactionCount = 0
	o.metrics.ObserveParse(string(models.StatusFailed), 0)
	log.Debug("failed", "reason", reason)
	return res
}

func (o *Orchestrator) recoverPanic(res *models.Result, log *slog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	log.Error("panic during parse", "panic", r, "stack", string(debug.Stack()))
	*res = o.fail(*res, log, fmt.Sprintf("internal error: %v", r))
}
