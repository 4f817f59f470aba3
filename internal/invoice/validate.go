package invoice

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"quickbills/constants"
	"quickbills/internal/common"
	"quickbills/internal/llm"
)

// Validator turns an engine candidate into a validated Record. It coerces
// money to two decimals, drops aggregate noise lines the engine was told to
// exclude but sometimes includes anyway, repairs obvious OCR decimal loss,
// and cross-checks line items against the stated total. Arithmetic
// disagreement is a warning on the record, never an error: OCR noise makes it
// expected, and blocking the user from reviewing the record helps nobody.
type Validator struct {
	tolerance       float64
	defaultCurrency string
	logger          *slog.Logger
}

func NewValidator(tolerance float64, defaultCurrency string, logger *slog.Logger) *Validator {
	if tolerance <= 0 {
		tolerance = 0.01
	}
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{tolerance: tolerance, defaultCurrency: defaultCurrency, logger: logger}
}

// amount keeps the parsed value next to a flag for the repair pass: a price
// whose source text had no decimal marker is a candidate for decimal loss.
type amount struct {
	value      float64
	hadDecimal bool
}

// Validate coerces and cross-checks a candidate. Required fields that cannot
// be coerced abort with SCHEMA_ERROR naming the field; there is no
// best-effort record without a valid vendor and total.
func (v *Validator) Validate(fields llm.InvoiceFields) (Record, error) {
	vendor := strings.TrimSpace(fields.VendorName)
	if vendor == "" {
		return Record{}, common.SchemaError("vendor_name is required", nil)
	}

	total, err := ParseMoney(fields.TotalAmount)
	if err != nil {
		return Record{}, common.SchemaError("total_amount", err)
	}
	totalAmt := amount{value: total, hadDecimal: strings.Contains(fields.TotalAmount, ".")}

	items := make([]LineItem, 0, len(fields.Items))
	amounts := make([]amount, 0, len(fields.Items))
	for i, it := range fields.Items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			return Record{}, common.SchemaError(fmt.Sprintf("items[%d].description is required", i), nil)
		}
		if isAggregateLine(desc) {
			v.logger.Warn("validate.noise_item_dropped", "description", desc)
			continue
		}

		price, err := ParseMoney(it.TotalPrice)
		if err != nil {
			return Record{}, common.SchemaError(fmt.Sprintf("items[%d].total_price", i), err)
		}

		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}

		unitPrice := ""
		if up, err := ParseMoney(it.UnitPrice); err == nil && it.UnitPrice != "" {
			unitPrice = FormatMoney(up)
		}

		cat, known := constants.Canonicalize(it.Category)
		if !known && strings.TrimSpace(it.Category) != "" {
			v.logger.Debug("validate.category_unknown", "category", it.Category)
		}
		category := string(cat)

		items = append(items, LineItem{
			Description: desc,
			Quantity:    qty,
			UnitPrice:   unitPrice,
			Category:    category,
		})
		amounts = append(amounts, amount{value: price, hadDecimal: strings.Contains(it.TotalPrice, ".")})
	}

	// Deterministic second line of defense behind the prompt's decimal-recovery
	// instruction. Only applied when it closes the books; otherwise the
	// discrepancy is surfaced, not papered over.
	if len(amounts) > 0 {
		v.repairDecimalLoss(amounts, &totalAmt)
	}

	var warning string
	if len(amounts) > 0 {
		var sum float64
		for i := range amounts {
			items[i].TotalPrice = FormatMoney(amounts[i].value)
			sum += amounts[i].value
		}
		if math.Abs(sum-totalAmt.value) > v.tolerance {
			warning = fmt.Sprintf("line items sum %s does not match invoice total %s",
				FormatMoney(sum), FormatMoney(totalAmt.value))
			v.logger.Warn("validate.reconciliation_mismatch",
				"line_total", FormatMoney(sum),
				"invoice_total", FormatMoney(totalAmt.value),
				"tolerance", v.tolerance,
			)
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(fields.Currency))
	if currency == "" {
		currency = v.defaultCurrency
	}

	return Record{
		VendorName:            vendor,
		InvoiceNumber:         strings.TrimSpace(fields.InvoiceNumber),
		IssueDate:             NormalizeDate(fields.IssueDate),
		DueDate:               NormalizeDate(fields.DueDate),
		Items:                 items,
		TotalAmount:           FormatMoney(totalAmt.value),
		Currency:              currency,
		ReconciliationWarning: warning,
	}, nil
}

// repairDecimalLoss looks for a single amount that reads like an OCR-dropped
// decimal point: an integer token of at least 100 whose /100 reinterpretation
// makes the line items and the stated total agree within tolerance. At most
// one repair is applied, and only when it fully closes the gap; anything less
// certain stays untouched.
func (v *Validator) repairDecimalLoss(amounts []amount, total *amount) {
	var sum float64
	for _, a := range amounts {
		sum += a.value
	}
	if math.Abs(sum-total.value) <= v.tolerance {
		return
	}

	for i := range amounts {
		a := amounts[i]
		if a.hadDecimal || a.value < 100 {
			continue
		}
		repaired := a.value / 100
		if math.Abs(sum-a.value+repaired-total.value) <= v.tolerance {
			v.logger.Info("validate.decimal_repair",
				"kind", "item", "index", i,
				"from", FormatMoney(a.value), "to", FormatMoney(repaired),
			)
			amounts[i].value = repaired
			return
		}
	}

	if !total.hadDecimal && total.value >= 100 {
		repaired := total.value / 100
		if math.Abs(sum-repaired) <= v.tolerance {
			v.logger.Info("validate.decimal_repair",
				"kind", "total",
				"from", FormatMoney(total.value), "to", FormatMoney(repaired),
			)
			total.value = repaired
		}
	}
}

// aggregateWords are receipt-level summary labels. A description that
// normalizes exactly to one of these is structural noise, not a purchasable
// item. Matching is exact after normalization so genuine items such as
// "Total Care Shampoo" survive.
var aggregateWords = map[string]struct{}{
	"subtotal": {}, "sub total": {}, "total": {}, "grand total": {},
	"total due": {}, "amount due": {}, "balance": {}, "balance due": {},
	"tax": {}, "sales tax": {}, "vat": {}, "cash": {}, "change": {},
	"change due": {}, "tip": {}, "gratuity": {},
}

func isAggregateLine(desc string) bool {
	var b strings.Builder
	for _, r := range strings.ToLower(desc) {
		if r >= 'a' && r <= 'z' || r == ' ' {
			b.WriteRune(r)
		}
	}
	norm := strings.Join(strings.Fields(b.String()), " ")
	_, ok := aggregateWords[norm]
	return ok
}
