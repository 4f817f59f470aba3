package llm

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"quickbills/constants"
)

var reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var looseDateLayouts = []string{
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// sanitizeOptionalFields normalizes or removes optional fields that would not
// meet the stricter schema, so the overall document can still validate.
// We only touch OPTIONALS: dates re-render as ISO or go away, item categories
// canonicalize to a known expense account or go away. Vendor and total are
// left for the schema gate to judge.
func sanitizeOptionalFields(m map[string]any) []string {
	var dropped []string

	for _, k := range []string{"issue_date", "due_date"} {
		if d := normalizeDateKey(m, k); d != "" {
			dropped = append(dropped, d)
		}
	}

	if rawItems, ok := m["items"].([]any); ok {
		for i, entry := range rawItems {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			v, ok := item["category"].(string)
			if !ok {
				continue
			}
			cat, known := constants.Canonicalize(v)
			if !known {
				delete(item, "category")
				dropped = append(dropped, fmt.Sprintf("items[%d].category(%q)", i, v))
				continue
			}
			if string(cat) != v {
				item["category"] = string(cat)
				dropped = append(dropped, fmt.Sprintf("items[%d].category(canonicalized)", i))
			}
		}
	}

	return dropped
}

// normalizeDateKey re-renders m[k] as YYYY-MM-DD when a known layout parses,
// and drops the key when none does. Returns a non-empty diagnostic on change.
func normalizeDateKey(m map[string]any, k string) string {
	v, ok := m[k].(string)
	if !ok {
		return ""
	}
	s := strings.TrimSpace(v)
	if reISODate.MatchString(s) {
		return ""
	}
	for _, layout := range looseDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			m[k] = d.Format("2006-01-02")
			return k + "(date)"
		}
	}
	delete(m, k)
	return k + "(date dropped)"
}
