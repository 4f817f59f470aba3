package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LineItem is one validated purchasable entry. Monetary fields carry exactly
// two decimal digits at this boundary.
type LineItem struct {
	Description string
	Quantity    float64
	UnitPrice   string // empty when the source did not state one
	TotalPrice  string
	Category    string
}

// Record is the validated unit of output. ReconciliationWarning is set only
// by the validator, never by the interpretation engine.
type Record struct {
	VendorName            string
	InvoiceNumber         string
	IssueDate             string // YYYY-MM-DD when parseable, raw text otherwise
	DueDate               string
	Items                 []LineItem
	TotalAmount           string
	Currency              string
	ReconciliationWarning string
}

var reDecimal = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)

// ParseMoney parses a decimal money string ("12", "12.5", "-3.08").
func ParseMoney(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !reDecimal.MatchString(s) {
		return 0, fmt.Errorf("not a monetary value: %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a monetary value: %q", s)
	}
	return f, nil
}

// FormatMoney renders a monetary value with exactly two decimal digits.
func FormatMoney(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// NormalizeDate coerces a date string to YYYY-MM-DD. Unparsable input passes
// through unchanged: a wrong-looking date the user can fix beats a dropped one.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return s
}
