package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// CSVWriter writes a statement's transactions as CSV, optionally preceded
// by "# Label,value" metadata rows.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes rec to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, rec *models.StatementRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, rec)
}

// Write writes rec in CSV format to out.
func (w *CSVWriter) Write(out io.Writer, rec *models.StatementRecord) error {
	if w.IncludeHeader {
		meta := csv.NewWriter(out)
		for _, row := range metadataRows(rec) {
			if err := meta.Write([]string{"# " + row[0], row[1]}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
		meta.Flush()
		if err := meta.Error(); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	txns := rec.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}
	if err := gocsv.Marshal(txns, out); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// metadataRows returns label/value pairs for every extracted field.
// Fields still at NotFound are omitted.
func metadataRows(rec *models.StatementRecord) [][2]string {
	rows := [][2]string{{"Bank", rec.BankName}}
	for _, f := range models.Fields {
		if v := rec.Get(f); models.Present(v) {
			rows = append(rows, [2]string{fieldLabel(f), v})
		}
	}
	rows = append(rows,
		[2]string{"Confidence", strconv.FormatFloat(rec.ConfidenceScore, 'f', 2, 64)},
		[2]string{"Extraction Method", strings.Join(rec.Methods, "+")},
	)
	return rows
}

var fieldLabels = map[models.Field]string{
	models.FieldCardLast4:       "Card Last 4",
	models.FieldStatementDate:   "Statement Date",
	models.FieldPaymentDueDate:  "Payment Due Date",
	models.FieldTotalAmountDue:  "Total Amount Due",
	models.FieldMinimumPayment:  "Minimum Payment",
	models.FieldPeriodStart:     "Period Start",
	models.FieldPeriodEnd:       "Period End",
	models.FieldCreditLimit:     "Credit Limit",
	models.FieldAvailableCredit: "Available Credit",
}

func fieldLabel(f models.Field) string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// WriteFile writes rec to path, choosing CSV or XLSX by extension.
func WriteFile(path string, rec *models.StatementRecord, includeHeader bool) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return (&XLSXWriter{}).WriteToFile(path, rec)
	case ".csv", "":
		return (&CSVWriter{IncludeHeader: includeHeader}).WriteToFile(path, rec)
	default:
		return fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}
