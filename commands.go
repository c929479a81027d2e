package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/card-statement-parser/internal/api"
	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

func parseCmd() *cobra.Command {
	var (
		forceAI    bool
		outputPath string
		jsonOut    bool
		header     bool
	)

	cmd := &cobra.Command{
		Use:   "parse <statement.pdf>",
		Short: "Parse one statement",
		Long: `Parse one statement and write its transactions to CSV or XLSX.

Examples:
  # Auto-detect the issuer and write statement.csv
  card-statement-parser parse statement.pdf

  # Skip the pattern tables and use the AI backend
  card-statement-parser parse --force-ai statement.pdf

  # Excel output
  card-statement-parser parse --output june.xlsx statement.pdf

  # Full result as JSON on stdout
  card-statement-parser parse --json statement.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			doc, err := extractor.Open(inputPath)
			if err != nil {
				return err
			}

			res := newOrchestrator(nil).Parse(cmd.Context(), doc, forceAI)

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return fmt.Errorf("failed to encode result: %w", err)
				}
			} else {
				printSummary(inputPath, res)
			}

			if out := resultOutput(res, inputPath, outputPath); out != "" && (outputPath != "" || !jsonOut) {
				if err := writer.WriteFile(out, res.StatementRecord, header); err != nil {
					return fmt.Errorf("output write failed: %w", err)
				}
				if !jsonOut {
					fmt.Printf("  Output: %s\n", out)
				}
			}

			if res.Status == models.StatusFailed {
				return fmt.Errorf("parse failed: %s", res.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceAI, "force-ai", false, "skip pattern extraction and use the AI backend")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (.csv or .xlsx; defaults to <input>.csv)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&header, "header", true, "include statement metadata rows in CSV output")
	return cmd
}

// resultOutput picks the file a result is written to: output when set,
// else <input>.csv. FAILED results, including the placeholder record of a
// failed AI fallback, get no file.
func resultOutput(res models.Result, input, output string) string {
	if res.StatementRecord == nil || res.Status == models.StatusFailed {
		return ""
	}
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".csv"
}

func printSummary(path string, res models.Result) {
	fmt.Printf("Processing: %s\n", path)
	fmt.Printf("  Status: %s\n", res.Status)
	if res.Reason != "" {
		fmt.Printf("  Reason: %s\n", res.Reason)
	}
	if res.StatementRecord == nil {
		return
	}

	fmt.Printf("  Issuer: %s (%s)\n", res.BankName, res.Issuer)
	fmt.Printf("  Method: %s\n", strings.Join(res.Methods, " + "))
	fmt.Printf("  Confidence: %.0f%%\n", res.ConfidenceScore*100)
	for _, f := range models.Fields {
		if v := res.Get(f); models.Present(v) {
			fmt.Printf("  %s: %s\n", f, v)
		}
	}
	fmt.Printf("  Found %d transaction(s)\n", res.TransactionCount)

	if res.TransactionCount > 0 {
		debit, credit := models.Totals(res.Transactions)
		fmt.Printf("  Debits: %s  Credits: %s\n",
			models.FormatMoney(debit, res.Currency), models.FormatMoney(credit, res.Currency))
	}
	for _, e := range res.Errors {
		fmt.Printf("  Warning: %s\n", e)
	}
}

func batchCmd() *cobra.Command {
	var (
		forceAI bool
		write   bool
	)

	cmd := &cobra.Command{
		Use:   "batch <statement.pdf>...",
		Short: "Parse several statements in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := openStatements(args)

			bar := progressbar.NewOptions(len(docs),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Parsing statements...[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)

			o := newOrchestrator(nil)
			results := o.ParseBatchFunc(cmd.Context(), docs, forceAI, func(models.Result) {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			})

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tSTATUS\tISSUER\tCONFIDENCE\tTRANSACTIONS\tREASON")
			failed := 0
			for i, res := range results {
				issuer, confidence := "-", "-"
				if res.StatementRecord != nil {
					issuer = string(res.Issuer)
					confidence = fmt.Sprintf("%.0f%%", res.ConfidenceScore*100)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					res.Source, res.Status, issuer, confidence, res.TransactionCount, res.Reason)

				if res.Status == models.StatusFailed {
					failed++
					continue
				}
				if out := resultOutput(res, args[i], ""); write && out != "" {
					if err := writer.WriteFile(out, res.StatementRecord, true); err != nil {
						slog.Error("output write failed", "file", out, "error", err)
					}
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			slog.Info("batch summary", "documents", len(results), "failed", failed, "workers", o.Workers())
			if failed == len(results) {
				return fmt.Errorf("all %d statements failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceAI, "force-ai", false, "skip pattern extraction and use the AI backend")
	cmd.Flags().BoolVar(&write, "write", false, "write <input>.csv next to each parsed statement")
	cmd.Flags().Int("workers", 4, "number of statements parsed concurrently")
	_ = v.BindPFlag("pipeline.workers", cmd.Flags().Lookup("workers"))
	return cmd
}

// openStatements reads every path. An unreadable file stays in the list
// carrying its error, so the batch reports it in place.
func openStatements(paths []string) []extractor.Document {
	docs := make([]extractor.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := extractor.Open(path)
		if err != nil {
			slog.Warn("statement unreadable", "file", path, "error", err)
			doc = extractor.Document{Name: filepath.Base(path), Path: path, Err: err}
		}
		docs = append(docs, doc)
	}
	return docs
}

func serveCmd() *cobra.Command {
	var staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := metrics.New()
			h := &api.Handler{
				Pipeline:  newOrchestrator(m),
				Metrics:   m,
				StaticDir: staticDir,
			}
			app := api.NewApp(h, cfg.Server.BodyLimitMB)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				<-ctx.Done()
				if err := app.Shutdown(); err != nil {
					slog.Error("server shutdown failed", "error", err)
				}
			}()

			slog.Info("server starting", "port", cfg.Server.Port, "ai_configured", h.Pipeline.AIConfigured())
			return app.Listen(cfg.Server.Port)
		},
	}

	cmd.Flags().String("port", ":8080", "listen address")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory of static web assets to serve at /")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func issuersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issuers",
		Short: "List supported issuers in detection priority order",
		RunE: func(_ *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCURRENCY")
			for _, s := range parser.Issuers() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, s.Currency)
			}
			return tw.Flush()
		},
	}
}
