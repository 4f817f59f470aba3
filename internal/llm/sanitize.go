package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// ExtractJSONObject strips incidental markdown fencing and surrounding prose
// from an engine response, returning the first {...} object.
func ExtractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return "", fmt.Errorf("invalid JSON object in response")
	}
	return text[start : end+1], nil
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (date -> issue_date, currency_code -> currency)
// - Drops null/empty optionals
// - Coerces numeric -> string for money fields, top level and per item
// - Removes unknown keys (strict additionalProperties = false friendliness)
// - Normalizes or drops optional dates and categories that would otherwise
//   fail the strict schema (only required fields may abort the document)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	renamed("date", "issue_date")
	renamed("invoice_date", "issue_date")
	renamed("currency_code", "currency")
	renamed("vendor", "vendor_name")
	renamed("merchant_name", "vendor_name")
	renamed("total", "total_amount")
	renamed("line_items", "items")

	// 2) money fields: drop null / "", coerce numbers to 2-decimal strings
	for _, k := range []string{"total_amount"} {
		if d := coerceMoneyKey(m, k); d != "" {
			dropped = append(dropped, d)
		}
	}

	// 3) items: sanitize each entry; drop non-object entries
	if rawItems, ok := m["items"].([]any); ok {
		items := make([]any, 0, len(rawItems))
		for i, entry := range rawItems {
			item, ok := entry.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("items[%d](type)", i))
				continue
			}
			for _, k := range []string{"unit_price", "total_price"} {
				if d := coerceMoneyKey(item, k); d != "" {
					dropped = append(dropped, fmt.Sprintf("items[%d].%s", i, d))
				}
			}
			// quantity must be a number; anything else is dropped
			switch q := item["quantity"].(type) {
			case nil, float64:
			case string:
				delete(item, "quantity")
				dropped = append(dropped, fmt.Sprintf("items[%d].quantity(string %q)", i, q))
			default:
				delete(item, "quantity")
				dropped = append(dropped, fmt.Sprintf("items[%d].quantity(type)", i))
			}
			for k := range maps.Clone(item) {
				if _, ok := allowedItemKeys[k]; !ok {
					delete(item, k)
					dropped = append(dropped, fmt.Sprintf("items[%d].%s(unknown)", i, k))
				}
			}
			items = append(items, item)
		}
		m["items"] = items
	}

	// 4) remove unknown top-level keys
	for k := range maps.Clone(m) {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 5) trim obvious strings; uppercase currency
	for _, k := range []string{"vendor_name", "invoice_number", "issue_date", "due_date", "currency"} {
		if v, ok := m[k].(string); ok {
			s := strings.TrimSpace(v)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}
	if v, ok := m["currency"].(string); ok {
		m["currency"] = strings.ToUpper(v)
	}

	// 6) optionals that would fail the strict schema get normalized or dropped
	dropped = append(dropped, sanitizeOptionalFields(m)...)

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

var allowedKeys = map[string]struct{}{
	"vendor_name": {}, "invoice_number": {}, "issue_date": {}, "due_date": {},
	"items": {}, "total_amount": {}, "currency": {}, "confidence": {},
}

var allowedItemKeys = map[string]struct{}{
	"description": {}, "quantity": {}, "unit_price": {}, "total_price": {}, "category": {},
}

// coerceMoneyKey normalizes m[k] to a decimal string. Returns a non-empty
// diagnostic when the value was dropped or rewritten from an unexpected type.
func coerceMoneyKey(m map[string]any, k string) string {
	v, ok := m[k]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case float64:
		if t == float64(int64(t)) {
			// integers stay integer-shaped so the decimal-loss repair can see them
			m[k] = fmt.Sprintf("%d", int64(t))
		} else {
			m[k] = fmt.Sprintf("%.2f", t)
		}
		return k + "(number)"
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" || strings.EqualFold(s, "null") {
			delete(m, k)
			return k + "(empty)"
		}
		if s != t {
			m[k] = s
			return k + "(trimmed)"
		}
		return ""
	case nil:
		delete(m, k)
		return k + "(null)"
	default:
		delete(m, k)
		return k + "(type)"
	}
}
