package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"quickbills/internal/invoice"
)

// XLSX renders the same rows as CSV into a workbook for users whose
// accounting flow prefers spreadsheets over delimited text.
func XLSX(rec invoice.Record, logger *slog.Logger) ([]byte, error) {
	return XLSXAll([]invoice.Record{rec}, logger)
}

// XLSXAll is the workbook counterpart of CSVAll.
func XLSXAll(recs []invoice.Record, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoice"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	for i, h := range headers {
		write(i+1, 1, h)
	}
	rowCount := 0
	for _, rec := range recs {
		for _, row := range Rows(rec) {
			for c, v := range row {
				write(c+1, rowCount+2, v)
			}
			rowCount++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "B", 22) // vendor, invoice no
	_ = f.SetColWidth(sheet, "C", "D", 14) // dates
	_ = f.SetColWidth(sheet, "E", "F", 14) // amounts
	_ = f.SetColWidth(sheet, "G", "G", 24) // account
	_ = f.SetColWidth(sheet, "H", "H", 48) // description

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"records", len(recs),
		"rows", rowCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
