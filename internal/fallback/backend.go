// Package fallback fills statement fields through an external generative
// model when pattern extraction is missing or incomplete.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("AI backend not configured")
	// ErrMalformedResponse is returned when the backend's output is not the
	// expected JSON object.
	ErrMalformedResponse = errors.New("malformed AI response")
)

// BackendError is a non-200 reply from the backend.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("gemini API error (status %d): %s", e.StatusCode, truncate(e.Body, 300))
}

// FieldBankName is the extra schema field naming the issuer.
const FieldBankName = "bank_name"

// Schema describes the object the backend must return. Every property is a
// string.
type Schema struct {
	Properties []string
	Required   []string
}

// StatementSchema is the schema for credit card statement fields.
func StatementSchema() Schema {
	props := []string{FieldBankName}
	for _, f := range models.Fields {
		props = append(props, string(f))
	}
	required := []string{FieldBankName}
	for _, f := range models.RequiredFields {
		required = append(required, string(f))
	}
	return Schema{Properties: props, Required: required}
}

// Request is one extraction call.
type Request struct {
	Text       string
	Schema     Schema
	IssuerHint string
}

// Fields maps schema property names to values; absent fields are NOT_FOUND.
type Fields map[string]string

// Get returns the value for name, or NOT_FOUND.
func (f Fields) Get(name string) string {
	v, ok := f[name]
	if !ok || v == "" {
		return models.NotFound
	}
	return v
}

// Backend performs one structured extraction.
type Backend interface {
	Extract(ctx context.Context, req Request) (Fields, error)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
