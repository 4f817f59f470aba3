package constants

import "strings"

type Category string

// Expense accounts offered to the interpretation engine and the export.
const (
	OfficeSupplies  Category = "Office Supplies"
	OfficeEquipment Category = "Office Equipment"
	Meals           Category = "Meals"
	Travel          Category = "Travel"
	Software        Category = "Software"
	Utilities       Category = "Utilities"
	Uncategorized   Category = "Uncategorized Expense"
)

var allCategories = []Category{
	OfficeSupplies,
	OfficeEquipment,
	Meals,
	Travel,
	Software,
	Utilities,
	Uncategorized,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Uncategorized, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"stationery":    OfficeSupplies,
		"equipment":     OfficeEquipment,
		"furniture":     OfficeEquipment,
		"food":          Meals,
		"restaurant":    Meals,
		"uber":          Travel,
		"lyft":          Travel,
		"airline":       Travel,
		"hotel":         Travel,
		"taxi":          Travel,
		"saas":          Software,
		"subscription":  Software,
		"electricity":   Utilities,
		"water":         Utilities,
		"uncategorised": Uncategorized,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Uncategorized, false
}
