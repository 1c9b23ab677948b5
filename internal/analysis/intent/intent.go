// Package intent classifies an inbound chat message into one of a closed
// set of intents using keyword rules over the folded text.
package intent

import (
	"strings"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/textnorm"
)

// Kind is the classified intent of a message.
type Kind string

const (
	Greeting    Kind = "greeting"
	MenuRequest Kind = "menu"
	Order       Kind = "order"
	Recommend   Kind = "recommend"
	Answer      Kind = "answer"
	Confirm     Kind = "confirm"
	Cancel      Kind = "cancel"
	Generic     Kind = "generic"
)

// State is the slice of conversation context classification depends on.
type State struct {
	AwaitingConfirmation bool
	HasPendingCart       bool
	InRecommendation     bool
	AwaitingPartySize    bool
}

// Result is the classified intent together with anything extracted from
// the text on the way.
type Result struct {
	Kind        Kind
	PartySize   int
	MealContext string
	Question    bool
}

// bucket holds whole-word phrases and word stems that signal a Kind.
type bucket struct {
	phrases []string
	stems   []string
}

var buckets = map[Kind]bucket{
	Greeting: {
		phrases: []string{"hola", "buenas", "buenos dias", "buen dia", "buenas tardes", "buenas noches",
			"que tal", "saludos", "hey", "hello", "holi"},
	},
	MenuRequest: {
		phrases: []string{"menu", "carta", "que tienen", "que venden", "que hay", "que ofrecen", "precios",
			"lista de precios", "que manejan", "ver productos", "catalogo"},
	},
	Order: {
		phrases: []string{"quiero", "quisiera", "queremos", "dame", "deme", "me das", "me da", "nos das",
			"pedir", "ordenar", "ordeno", "pido", "agrega", "agregame", "anade", "ponme", "me gustaria",
			"para llevar", "me pones", "mandame", "encargar"},
	},
	Recommend: {
		phrases: []string{"que me sugieres", "que me aconsejas", "no se que pedir", "no se que comer",
			"que nos sugieres", "que pedimos", "ayudame a elegir"},
		stems: []string{"recomiend", "recomend", "sugier", "sugerenc"},
	},
	Cancel: {
		phrases: []string{"cancelar", "cancela", "cancelo", "cancelalo", "ya no", "olvidalo", "olvida",
			"borra", "borralo", "no gracias", "mejor no", "no quiero nada"},
	},
}

// confirmWords are enough on their own to confirm ("si", "pedir").
var confirmWords = map[string]bool{
	"si": true, "sip": true, "simon": true, "pedir": true, "confirmo": true, "confirmar": true,
	"confirmado": true, "dale": true, "va": true, "ok": true, "okay": true, "listo": true,
	"claro": true, "correcto": true, "perfecto": true, "sale": true, "yes": true, "adelante": true,
	"pidelo": true, "ordena": true, "ordenalo": true,
}

// softConfirmWords may accompany a confirmation without making one.
var softConfirmWords = map[string]bool{
	"eso": true, "es": true, "todo": true, "asi": true, "esta": true, "bien": true, "por": true,
	"favor": true, "porfa": true, "gracias": true, "quiero": true, "lo": true, "pido": true,
	"porfavor": true, "muy": true,
}

var softConfirmPhrases = map[string]bool{
	"eso es todo": true, "asi esta bien": true, "esta bien": true, "lo pido": true,
}

var questionWords = map[string]bool{
	"que": true, "cual": true, "cuales": true, "cuanto": true, "cuanta": true, "cuantos": true,
	"como": true, "donde": true, "cuando": true, "tienen": true, "hay": true, "aceptan": true,
	"puedo": true,
}

// Classify returns the intent of text given the conversation state. It is a
// pure function: the same text and state always yield the same result.
func Classify(text string, st State) Result {
	folded := textnorm.Fold(text)
	tokens := textnorm.Tokens(text)
	res := Result{
		Kind:        Generic,
		MealContext: MealContext(tokens),
		Question:    looksLikeQuestion(folded, tokens),
	}
	if len(tokens) == 0 {
		return res
	}

	res.PartySize = PartySize(tokens, st.AwaitingPartySize)
	joined := " " + strings.Join(tokens, " ") + " "

	// A bare "no" during a recommendation answers a yes/no question.
	if hits(joined, tokens, buckets[Cancel]) || (isBareNo(tokens) && st.AwaitingConfirmation && !st.InRecommendation) {
		res.Kind = Cancel
		return res
	}
	if (st.AwaitingConfirmation || st.HasPendingCart) && isConfirmation(tokens) {
		res.Kind = Confirm
		return res
	}

	recommend := hits(joined, tokens, buckets[Recommend]) || groupPhrasing(tokens)
	if st.AwaitingPartySize && res.PartySize > 0 {
		recommend = true
	}
	menu := hits(joined, tokens, buckets[MenuRequest])

	switch {
	case recommend && !(st.InRecommendation && res.PartySize == 0):
		res.Kind = Recommend
	case menu:
		res.Kind = MenuRequest
	case st.InRecommendation:
		res.Kind = Answer
	case hits(joined, tokens, buckets[Order]) || startsWithQuantity(tokens):
		res.Kind = Order
	case hits(joined, tokens, buckets[Greeting]):
		res.Kind = Greeting
	}
	return res
}

func hits(joined string, tokens []string, b bucket) bool {
	for _, phrase := range b.phrases {
		if strings.Contains(joined, " "+phrase+" ") {
			return true
		}
	}
	for _, stem := range b.stems {
		for _, tok := range tokens {
			if strings.HasPrefix(tok, stem) {
				return true
			}
		}
	}
	return false
}

func isConfirmation(tokens []string) bool {
	if len(tokens) > 5 {
		return false
	}
	strong := false
	for _, tok := range tokens {
		switch {
		case confirmWords[tok]:
			strong = true
		case softConfirmWords[tok]:
		default:
			return false
		}
	}
	return strong || softConfirmPhrases[strings.Join(tokens, " ")]
}

func isBareNo(tokens []string) bool {
	return len(tokens) <= 2 && tokens[0] == "no"
}

func startsWithQuantity(tokens []string) bool {
	n, ok := textnorm.Number(tokens[0])
	return ok && n > 0 && len(tokens) > 1
}

func looksLikeQuestion(folded string, tokens []string) bool {
	if strings.Contains(folded, "?") || strings.Contains(folded, "¿") {
		return true
	}
	return len(tokens) > 0 && questionWords[tokens[0]]
}
