package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"quickbills/constants"
	"quickbills/internal/invoice"
)

// Column order required by the QuickBooks Online bill import.
var headers = []string{
	"Vendor",
	"Invoice No",
	"Invoice Date",
	"Due Date",
	"Total Amount",
	"Line Amount",
	"Line Account",
	"Line Description",
}

// utf8BOM keeps Excel and other spreadsheet importers from mangling
// non-ASCII vendor and description text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV renders a validated record as a QuickBooks import table: one row per
// line item, or a single synthetic row when the record has none. Formatting
// is best-effort presentation; a malformed field degrades to a safe default
// rather than failing the export.
func CSV(rec invoice.Record) []byte {
	return CSVAll([]invoice.Record{rec})
}

// CSVAll renders several records into one table, headers written once.
// Used by the directory batch mode to produce a single import file.
func CSVAll(recs []invoice.Record) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	_ = w.Write(headers)
	for _, rec := range recs {
		for _, row := range Rows(rec) {
			_ = w.Write(row)
		}
	}
	w.Flush()
	return buf.Bytes()
}

// Rows produces the shared row layout used by both the CSV and XLSX renders.
func Rows(rec invoice.Record) [][]string {
	vendor := rec.VendorName
	invDate := formatDateUS(rec.IssueDate)
	dueDate := formatDateUS(rec.DueDate)
	total := formatAmount(rec.TotalAmount)

	if len(rec.Items) == 0 {
		// degenerate single-line export equal to the stated total
		return [][]string{{
			vendor, rec.InvoiceNumber, invDate, dueDate,
			total, total, string(constants.Uncategorized), "Invoice Total",
		}}
	}

	rows := make([][]string, 0, len(rec.Items))
	for _, item := range rec.Items {
		category := item.Category
		if category == "" {
			category = string(constants.Uncategorized)
		}
		rows = append(rows, []string{
			vendor, rec.InvoiceNumber, invDate, dueDate,
			total, formatAmount(item.TotalPrice), category, item.Description,
		})
	}
	return rows
}

// formatDateUS renders MM/DD/YYYY; unparsable dates pass through as-is.
func formatDateUS(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", "01/02/2006"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("01/02/2006")
		}
	}
	return s
}

// formatAmount renders two decimals; unparsable amounts degrade to "0.00".
func formatAmount(s string) string {
	f, err := invoice.ParseMoney(s)
	if err != nil {
		return "0.00"
	}
	return invoice.FormatMoney(f)
}
