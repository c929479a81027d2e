package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/insightdelivered/card-statement-parser/internal/fallback"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/pipeline"
)

// Config holds all application configuration.
type Config struct {
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// GeminiConfig holds settings for the AI fallback backend.
type GeminiConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxChars    int    `mapstructure:"max_chars"`
}

// PipelineConfig holds extraction thresholds.
type PipelineConfig struct {
	MinTextLength       int     `mapstructure:"min_text_length"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	DedupPrefix         int     `mapstructure:"dedup_prefix"`
	DefaultYear         int     `mapstructure:"default_year"`
	Workers             int     `mapstructure:"workers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Fallback converts the Gemini settings for the fallback adapter.
func (c *Config) Fallback() fallback.Config {
	return fallback.Config{
		APIKey:   c.Gemini.APIKey,
		Model:    c.Gemini.Model,
		Timeout:  time.Duration(c.Gemini.TimeoutSecs) * time.Second,
		MaxChars: c.Gemini.MaxChars,
	}
}

// TxnOptions returns the transaction extraction options.
func (c *Config) TxnOptions() parser.TxnOptions {
	return parser.TxnOptions{
		DedupPrefix: c.Pipeline.DedupPrefix,
		DefaultYear: c.Pipeline.DefaultYear,
	}
}

// PipelineOptions returns the orchestrator options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		MinTextLength:       c.Pipeline.MinTextLength,
		ConfidenceThreshold: c.Pipeline.ConfidenceThreshold,
		TxnOptions:          c.TxnOptions(),
		Workers:             c.Pipeline.Workers,
	}
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout_secs", 30)
	v.SetDefault("gemini.max_chars", fallback.DefaultMaxChars)

	v.SetDefault("pipeline.min_text_length", 100)
	v.SetDefault("pipeline.confidence_threshold", 0.8)
	v.SetDefault("pipeline.dedup_prefix", 40)
	v.SetDefault("pipeline.default_year", 0)
	v.SetDefault("pipeline.workers", 4)

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.body_limit_mb", 32)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance reading CARDPARSE_* environment variables
// on top of the defaults. A .env file in the working directory is loaded
// first when present.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CARDPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	// the bare variable name is what most Gemini tooling documents
	_ = v.BindEnv("gemini.api_key", "CARDPARSE_GEMINI_API_KEY", "GEMINI_API_KEY")
	return v
}

// Load builds the configuration from v, or from a fresh New() when v is nil.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = New()
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Pipeline.ConfidenceThreshold < 0 || c.Pipeline.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("pipeline.confidence_threshold must be within [0,1], got %v", c.Pipeline.ConfidenceThreshold))
	}
	if c.Pipeline.MinTextLength <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.min_text_length must be positive, got %d", c.Pipeline.MinTextLength))
	}
	if c.Pipeline.DedupPrefix < 1 {
		errs = append(errs, fmt.Errorf("pipeline.dedup_prefix must be at least 1, got %d", c.Pipeline.DedupPrefix))
	}
	if c.Pipeline.Workers < 1 {
		errs = append(errs, fmt.Errorf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers))
	}
	if c.Gemini.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("gemini.max_chars must be positive, got %d", c.Gemini.MaxChars))
	}
	if c.Gemini.TimeoutSecs < 0 {
		errs = append(errs, fmt.Errorf("gemini.timeout_secs must not be negative, got %d", c.Gemini.TimeoutSecs))
	}
	return errors.Join(errs...)
}
