package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the text layer of a PDF. It tries several read paths
// of the pdf library, then its own content-stream decoder, then the
// external pdftotext tool, keeping the first result that looks like a
// statement.
type PDFExtractor struct {
	// Pdftotext is the poppler binary; empty disables the external fallback.
	Pdftotext string
}

// NewPDFExtractor uses pdftotext from PATH when it is installed.
func NewPDFExtractor() *PDFExtractor {
	path, _ := exec.LookPath("pdftotext")
	return &PDFExtractor{Pdftotext: path}
}

func (p *PDFExtractor) Extract(ctx context.Context, doc Document) (string, error) {
	pages, libErr := readWithLibrary(doc.Data)
	if libErr == nil && isReadableText(pages) {
		return normalizeText(strings.Join(pages, "\n\n")), nil
	}
	if libErr != nil {
		slog.Debug("pdf library read failed", "file", doc.Name, "error", libErr)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if text := readRawText(doc.Data); isReadableText([]string{text}) {
		slog.Debug("pdf text decoded from raw content streams", "file", doc.Name)
		return normalizeText(text), nil
	}

	if p.Pdftotext != "" {
		text, err := p.runPdftotext(ctx, doc)
		if err == nil && isReadableText([]string{text}) {
			return normalizeText(text), nil
		}
		if err != nil {
			slog.Debug("pdftotext failed", "file", doc.Name, "error", err)
		}
	}

	if libErr != nil {
		return "", fmt.Errorf("%w: %v", ErrNoExtractableText, libErr)
	}
	return "", ErrNoExtractableText
}

// readWithLibrary runs the pdf library's read paths in order of layout
// fidelity. The library panics on some malformed inputs.
func readWithLibrary(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for _, read := range []func(*pdf.Reader, int) []string{byRow, byContent, byPagePlainText} {
		pages = read(r, numPages)
		if isReadableText(pages) {
			return pages, nil
		}
	}
	if text := byReaderPlainText(r); isReadableText([]string{text}) {
		return []string{text}, nil
	}
	return pages, nil
}

// byRow joins the words of each row the library reports.
func byRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// byContent rebuilds rows from text object coordinates: pieces are grouped
// by rounded Y (top to bottom) and ordered by X, with a wide gap rendered
// as a column break.
func byContent(r *pdf.Reader, numPages int) []string {
	type piece struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rows := make(map[int][]piece)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], piece{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			row := rows[y]
			sort.Slice(row, func(a, b int) bool { return row[a].x < row[b].x })

			var sb strings.Builder
			for j, pc := range row {
				if j > 0 && pc.x-row[j-1].x > 15 {
					sb.WriteString("  ")
				}
				sb.WriteString(pc.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func byPagePlainText(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

func byReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// runPdftotext shells out to poppler with layout preservation. Documents
// without a path are spooled to a temp file first.
func (p *PDFExtractor) runPdftotext(ctx context.Context, doc Document) (string, error) {
	path := doc.Path
	if path == "" {
		f, err := os.CreateTemp("", "statement-*.pdf")
		if err != nil {
			return "", fmt.Errorf("creating temp file: %w", err)
		}
		defer func() { _ = os.Remove(f.Name()) }()
		if _, err := f.Write(doc.Data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("writing temp file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing temp file: %w", err)
		}
		path = f.Name()
	}

	out, err := exec.CommandContext(ctx, p.Pdftotext, "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("pdftotext produced no output")
	}
	return text, nil
}

// statementWords appear in virtually every card statement. Text containing
// none of them is almost certainly undecoded glyph garbage.
var statementWords = []string{
	"card", "statement", "payment", "amount", "due", "date", "total",
	"credit", "limit", "transaction", "balance", "minimum", "account",
}

// textQuality is the share of characters that are ASCII letters, digits,
// whitespace, punctuation or a currency sign. unicode.IsLetter is too broad:
// identity-encoded fonts decode to accented garbage.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsPrint(r) || unicode.IsSpace(r)) {
				readable++
				continue
			}
			switch r {
			case '₹', '£', '€', '¥':
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText requires more than 50 characters, over 60% readable and
// at least one statement word.
func isReadableText(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	if n <= 50 || textQuality(pages) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}
