package intent

import "github.com/zhouzirui/menu-assistant/backend/internal/analysis/textnorm"

var groupNouns = map[string]bool{
	"persona": true, "personas": true, "gente": true, "comensales": true, "amigos": true,
	"amigas": true, "adultos": true, "ninos": true, "invitados": true, "pax": true,
}

var mealWords = map[string]string{
	"desayuno":  "desayuno",
	"desayunar": "desayuno",
	"brunch":    "desayuno",
	"almuerzo":  "comida",
	"almorzar":  "comida",
	"lunch":     "comida",
	"comida":    "comida",
	"comer":     "comida",
	"cena":      "cena",
	"cenar":     "cena",
	"merienda":  "merienda",
	"merendar":  "merienda",
	"antojo":    "merienda",
	"snack":     "merienda",
}

// PartySize extracts the number of people from phrasing such as
// "para 4 personas", "somos seis" or "para dos". When bare is true a
// message made of a lone number ("5") also counts. It returns 0 when no size is found.
func PartySize(tokens []string, bare bool) int {
	for i, tok := range tokens {
		n, ok := textnorm.Number(tok)
		if !ok || n < 1 {
			continue
		}
		if i+1 < len(tokens) && groupNouns[tokens[i+1]] {
			return n
		}
		if i > 0 {
			switch tokens[i-1] {
			case "somos", "seremos", "vamos", "venimos", "mesa":
				return n
			case "para":
				if i+1 == len(tokens) || groupNouns[tokens[i+1]] {
					return n
				}
			}
		}
		if bare && len(tokens) == 1 {
			return n
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		pair := tokens[i] + " " + tokens[i+1]
		switch pair {
		case "solo yo", "yo solo", "para mi", "yo sola", "sola yo":
			return 1
		case "en pareja", "mi pareja":
			return 2
		}
	}
	return 0
}

// MealContext returns the meal the text mentions, or "".
func MealContext(tokens []string) string {
	for _, tok := range tokens {
		if meal, ok := mealWords[tok]; ok {
			return meal
		}
	}
	return ""
}

func groupPhrasing(tokens []string) bool {
	for i, tok := range tokens {
		if _, ok := textnorm.Number(tok); !ok {
			continue
		}
		if i+1 < len(tokens) && groupNouns[tokens[i+1]] {
			return true
		}
		if i > 0 && (tokens[i-1] == "somos" || tokens[i-1] == "seremos") {
			return true
		}
	}
	return false
}
