package catalog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RenderMenu lists entries grouped by category, keeping the order in which
// categories first appear.
func RenderMenu(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var categories []string
	grouped := make(map[string][]Entry)
	for _, e := range entries {
		cat := strings.TrimSpace(e.Category)
		if cat == "" {
			cat = "otros"
		}
		if _, seen := grouped[cat]; !seen {
			categories = append(categories, cat)
		}
		grouped[cat] = append(grouped[cat], e)
	}

	var b strings.Builder
	for i, cat := range categories {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(capitalize(cat))
		b.WriteString(":\n")
		for _, e := range grouped[cat] {
			fmt.Fprintf(&b, "• %s %s\n", e.Name, e.Price)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
