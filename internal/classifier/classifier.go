// Package classifier assigns a spending category through ordered keyword rules.
// The same table serves initial classification and recategorization.
package classifier

import "strings"

// Classify returns the category for the concatenated, upper cased input text.
// Any argument may be empty; organ is empty when reclassifying stored rows.
func Classify(organ, supplier, description string) string {
	text := " " + strings.ToUpper(organ+" "+supplier+" "+description) + " "
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Category
			}
		}
	}
	return Geral
}

// Categories lists the closed category set in rule order, each label once, Geral last.
func Categories() []string {
	seen := make(map[string]bool, len(rules)+1)
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return append(out, Geral)
}

// IsCategory reports whether c belongs to the closed set.
func IsCategory(c string) bool {
	for _, known := range Categories() {
		if known == c {
			return true
		}
	}
	return false
}
