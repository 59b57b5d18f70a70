package transcribe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/docuflow/invoice-extractor/internal/extract"
)

const excelSheet = "Invoices"

var excelHeaders = []string{"Invoice File", "Invoice Number", "Invoice Date", "Total Amount", "Status", "Acquisition"}

// ExcelTranscriber writes records into fixed columns of an XLSX workbook.
// This replaces driving a desktop spreadsheet application: the workbook is
// written directly.
type ExcelTranscriber struct {
	path   string
	file   *excelize.File
	row    int
	logger *slog.Logger
}

// NewExcelTranscriber creates a workbook with a header row. Nothing touches
// disk until Close.
func NewExcelTranscriber(path string, logger *slog.Logger) (*ExcelTranscriber, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(excelSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(excelSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	_ = f.SetColWidth(excelSheet, "A", "A", 32)
	_ = f.SetColWidth(excelSheet, "B", "C", 18)
	_ = f.SetColWidth(excelSheet, "D", "F", 14)

	return &ExcelTranscriber{path: path, file: f, row: 2, logger: logger}, nil
}

// Transcribe appends one record as a row
func (t *ExcelTranscriber) Transcribe(_ context.Context, rec *extract.Record) (Outcome, error) {
	values := []any{
		rec.File,
		fieldOrEmpty(rec.InvoiceNumber),
		fieldOrEmpty(rec.InvoiceDate),
		amountOrEmpty(rec.TotalAmount),
		string(rec.Status),
		string(rec.Mode),
	}

	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, t.row)
		if err := t.file.SetCellValue(excelSheet, cell, v); err != nil {
			return Outcome{}, fmt.Errorf("write cell %s: %w", cell, err)
		}
	}
	t.row++

	t.logger.Debug("row written", "file", rec.File, "row", t.row-1)
	return Outcome{File: rec.File, OK: true, Detail: fmt.Sprintf("row %d", t.row-1)}, nil
}

// Close saves the workbook to disk
func (t *ExcelTranscriber) Close() error {
	if err := t.file.SaveAs(t.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", t.path, err)
	}
	t.logger.Info("workbook saved", "path", t.path, "rows", t.row-2)
	return t.file.Close()
}
