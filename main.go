package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/card-statement-parser/internal/config"
	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/fallback"
	"github.com/insightdelivered/card-statement-parser/internal/logging"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/pipeline"
)

var (
	cfgFile string
	version = "2.0.0"
	v       = config.New()
	cfg     *config.Config

	rootCmd = &cobra.Command{
		Use:   "card-statement-parser",
		Short: "Credit card statement field extraction",
		Long: `Card Statement Parser
by Insight Delivered (QEA AutoLens)

Extracts card number, statement and due dates, amounts due and itemized
transactions from credit card statement PDFs. Known issuers are parsed with
per-issuer pattern tables; anything else, or anything incomplete, can be
handed to the Gemini fallback when GEMINI_API_KEY is set.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(issuersCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	c, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Setup(c.Log.Level, c.Log.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	cfg = c
	return nil
}

func newOrchestrator(m *metrics.Metrics) *pipeline.Orchestrator {
	opts := cfg.PipelineOptions()
	adapter := fallback.New(cfg.Fallback(), opts.TxnOptions)
	if !adapter.Configured() {
		slog.Debug("AI fallback disabled: no API key configured")
	}
	return pipeline.New(extractor.NewAutoExtractor(), adapter, opts, m)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("card-statement-parser v%s\n", version)
		},
	}
}
