package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
)

var transactionColumns = []string{"Date", "Description", "Amount", "Type", "Currency", "Category"}

// XLSXWriter writes a workbook with a Summary sheet of statement fields and
// a Transactions sheet. Amounts are stored as numbers.
type XLSXWriter struct{}

// WriteToFile writes rec to an .xlsx file at path.
func (w *XLSXWriter) WriteToFile(path string, rec *models.StatementRecord) error {
	f, err := w.build(rec)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", path, err)
	}
	return nil
}

// Write writes the workbook for rec to out.
func (w *XLSXWriter) Write(out io.Writer, rec *models.StatementRecord) error {
	f, err := w.build(rec)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(rec *models.StatementRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	for i, row := range metadataRows(rec) {
		if err := setRow(f, summarySheet, i+1, []interface{}{row[0], row[1]}); err != nil {
			f.Close()
			return nil, err
		}
	}

	if _, err := f.NewSheet(transactionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add transactions sheet: %w", err)
	}
	header := make([]interface{}, len(transactionColumns))
	for i, c := range transactionColumns {
		header[i] = c
	}
	if err := setRow(f, transactionsSheet, 1, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, txn := range rec.Transactions {
		row := []interface{}{
			txn.Date,
			txn.Description,
			txn.Decimal().InexactFloat64(),
			txn.Type,
			txn.Currency,
			txn.Category,
		}
		if err := setRow(f, transactionsSheet, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
