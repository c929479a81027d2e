// Package extractor turns uploaded statement files into plain text.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoExtractableText means the document held no readable text layer.
var ErrNoExtractableText = errors.New("no readable text could be extracted")

// Document is one input file. Data holds the contents; Path is optional and
// only used when an external tool needs a file on disk.
type Document struct {
	Name string
	Path string
	Data []byte
	// Err records why the file could not be read. Such a document still
	// takes its slot in a batch and parses to a FAILED result.
	Err error
}

// Open reads the file at path into a Document.
func Open(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Document{Name: filepath.Base(path), Path: path, Data: data}, nil
}

// IsPDF reports whether the document looks like a PDF by magic bytes or
// extension.
func (d Document) IsPDF() bool {
	if bytes.HasPrefix(bytes.TrimLeft(d.Data, "\x00\t\r\n "), []byte("%PDF")) {
		return true
	}
	return strings.EqualFold(filepath.Ext(d.Name), ".pdf")
}

// TextExtractor recovers the text of a statement.
type TextExtractor interface {
	Extract(ctx context.Context, doc Document) (string, error)
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// normalizeText converts line endings to \n and collapses runs of blank
// lines.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// PlainTextExtractor returns text files as-is. Content with NUL bytes is
// treated as binary and rejected.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if bytes.IndexByte(doc.Data, 0) >= 0 {
		return "", fmt.Errorf("%w: binary content", ErrNoExtractableText)
	}
	text := normalizeText(string(bytes.ToValidUTF8(doc.Data, nil)))
	if text == "" {
		return "", ErrNoExtractableText
	}
	return text, nil
}

// AutoExtractor dispatches PDFs to the PDF extractor and everything else
// to the plain-text one.
type AutoExtractor struct {
	PDF  TextExtractor
	Text TextExtractor
}

// NewAutoExtractor returns an extractor wired with the default strategies.
func NewAutoExtractor() *AutoExtractor {
	return &AutoExtractor{PDF: NewPDFExtractor(), Text: PlainTextExtractor{}}
}

func (a *AutoExtractor) Extract(ctx context.Context, doc Document) (string, error) {
	if doc.IsPDF() {
		return a.PDF.Extract(ctx, doc)
	}
	return a.Text.Extract(ctx, doc)
}
