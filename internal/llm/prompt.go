package llm

import (
	"strings"
)

// BuildSystemPrompt composes the extraction policy: which receipt lines are
// noise, how amounts and quantities are read, and how the engine should
// self-check its arithmetic before answering. Rules are listed in priority
// order; the validator re-checks the ones that can be checked mechanically.
func BuildSystemPrompt(req ExtractRequest) string {
	defCur := strings.TrimSpace(req.DefaultCurrency)
	if defCur == "" {
		defCur = "USD"
	}

	var catLine string
	if len(req.AllowedCategories) > 0 {
		catLine = "When a line item clearly maps to an expense account, set its 'category' to exactly one of: " +
			strings.Join(req.AllowedCategories, ", ") + ". Omit 'category' when unsure. "
	} else {
		catLine = "Set 'category' to a short expense-account label when obvious; omit it when unsure. "
	}

	parts := []string{
		"You are a financial audit assistant. Return ONLY JSON that matches the provided JSON Schema.",
		"Rules, in priority order:",
		"1. 'items' must contain only purchasable line items. Never include aggregate or summary lines: subtotal, total, tax, VAT, cash, change, balance, amount due, tips.",
		"2. The 'total_price' of a line item is the rightmost monetary figure on that line.",
		"3. 'quantity' is 1 unless the line carries an explicit multiplicative marker such as '2 @ 4.50' or 'x3'. Never infer quantity from the size of a price.",
		"4. Before answering, check that the sum of items.total_price plus any tax is consistent with 'total_amount'. If it is not, re-scan the text for an aggregate line you wrongly included as an item and remove it.",
		"5. OCR sometimes drops decimal points. A bare integer where a currency amount is expected (e.g. '403' among prices like '12.50') usually means a lost decimal point: reinterpret it with the decimal two digits from the right ('4.03') when that yields a plausible price. If no reconstruction is plausible, keep the text as-is; never invent a precise-looking number.",
		"6. Normalize all dates to YYYY-MM-DD.",
		"Currency must be a 3-letter ISO 4217 code; default to " + defCur + " if uncertain.",
		catLine,
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the raw document text plus a filename hint.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if filename := strings.TrimSpace(req.FilenameHint); filename != "" {
		b.WriteString("Filename: ")
		b.WriteString(filename)
		b.WriteString("\n")
	}
	raw := strings.TrimSpace(req.RawText)
	b.WriteString("\nInvoice text:\n---\n")
	if len(raw) > 6000 {
		b.WriteString(raw[:6000])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(raw)
	}
	b.WriteString("\n---")
	return b.String()
}
