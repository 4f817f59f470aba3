package llm

import "context"

// LineItemFields is one candidate line item as the engine returned it.
// Money travels as decimal strings until the validator coerces it.
type LineItemFields struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity,omitempty"` // default 1 when absent
	UnitPrice   string  `json:"unit_price,omitempty"`
	TotalPrice  string  `json:"total_price"`
	Category    string  `json:"category,omitempty"`
}

// InvoiceFields is the normalized candidate shape we want from the engine.
type InvoiceFields struct {
	VendorName      string           `json:"vendor_name"`
	InvoiceNumber   string           `json:"invoice_number,omitempty"`
	IssueDate       string           `json:"issue_date,omitempty"` // YYYY-MM-DD
	DueDate         string           `json:"due_date,omitempty"`   // YYYY-MM-DD
	Items           []LineItemFields `json:"items,omitempty"`
	TotalAmount     string           `json:"total_amount"`       // decimal
	Currency        string           `json:"currency,omitempty"` // ISO 4217
	ModelConfidence float32          `json:"confidence,omitempty"` // optional (0..1)
}

type ExtractRequest struct {
	RawText           string
	FilenameHint      string
	AllowedCategories []string
	DefaultCurrency   string

	PrepConfidence float32
}

// InvoiceExtractor is the interface the pipeline depends on. One
// implementation per provider; the engine is opaque and fallible, so callers
// must expect structurally valid but semantically wrong output.
type InvoiceExtractor interface {
	ExtractInvoice(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
