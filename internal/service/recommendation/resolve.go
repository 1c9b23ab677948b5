package recommendation

import (
	"strings"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/textnorm"
)

var ordinalWords = map[string]int{
	"primera": 1, "primero": 1, "segunda": 2, "segundo": 2, "tercera": 3, "tercero": 3,
	"cuarta": 4, "cuarto": 4, "quinta": 5, "quinto": 5,
}

// articles read as "one" by textnorm.Number but never pick an option.
var articles = map[string]bool{"un": true, "una": true}

// resolveOption maps a raw reply onto one of the question options: a
// 1-based index ("2", "la 2", "opción dos"), an exact label, a keyword,
// or a unique label containment. It returns -1 when nothing resolves.
func resolveOption(def questionDef, raw string) int {
	tokens := textnorm.Tokens(raw)
	if len(tokens) == 0 {
		return -1
	}

	if len(tokens) <= 3 {
		for _, tok := range tokens {
			if articles[tok] {
				continue
			}
			n, ok := textnorm.Number(tok)
			if !ok {
				n, ok = ordinalWords[tok]
			}
			if ok && n >= 1 && n <= len(def.options) {
				return n - 1
			}
		}
	}

	answer := strings.Join(tokens, " ")
	labels := make([]string, len(def.options))
	for i, opt := range def.options {
		labels[i] = strings.Join(textnorm.Tokens(opt.label), " ")
		if labels[i] == answer {
			return i
		}
	}

	if idx := unique(len(def.options), func(i int) bool {
		for _, kw := range def.options[i].keywords {
			for _, tok := range tokens {
				if textnorm.SameWord(tok, kw) {
					return true
				}
			}
		}
		return false
	}); idx >= 0 {
		return idx
	}

	if len(answer) >= 3 {
		if idx := unique(len(labels), func(i int) bool {
			return strings.Contains(labels[i], answer) || strings.Contains(answer, labels[i])
		}); idx >= 0 {
			return idx
		}
	}
	return -1
}

func unique(n int, pred func(int) bool) int {
	found := -1
	for i := 0; i < n; i++ {
		if !pred(i) {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = i
	}
	return found
}
