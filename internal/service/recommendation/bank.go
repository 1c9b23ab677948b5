package recommendation

import (
	"hash/fnv"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	model "github.com/zhouzirui/menu-assistant/backend/internal/model/recommendation"
)

// Policy holds the tunable thresholds of the question flow.
type Policy struct {
	// SmallMax is the largest party size still asked the small-group questions.
	SmallMax int
	// MediumMax is the largest party size still asked the medium-group questions.
	MediumMax int
	// Shortlist caps the number of ranked items in a final recommendation.
	Shortlist int
}

// DefaultPolicy returns the thresholds used when none are configured.
func DefaultPolicy() Policy {
	return Policy{SmallMax: 2, MediumMax: 5, Shortlist: 5}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.SmallMax < 1 {
		p.SmallMax = def.SmallMax
	}
	if p.MediumMax < p.SmallMax {
		p.MediumMax = p.SmallMax
	}
	if p.Shortlist < 1 {
		p.Shortlist = def.Shortlist
	}
	return p
}

// TierFor maps a party size onto its question tier.
func (p Policy) TierFor(partySize int) model.Tier {
	p = p.normalized()
	switch {
	case partySize <= p.SmallMax:
		return model.TierSmall
	case partySize <= p.MediumMax:
		return model.TierMedium
	default:
		return model.TierLarge
	}
}

type option struct {
	label    string
	tags     []string
	keywords []string
	maxPrice catalog.Money
	noDrinks bool
	share    bool
}

type questionDef struct {
	id      string
	prompts []string
	options []option
}

const (
	qMoment  = "momento"
	qCraving = "antojo"
	qDrink   = "bebida"
	qShare   = "compartir"
	qBudget  = "presupuesto"
)

var questionBank = map[string]questionDef{
	qMoment: {
		id: qMoment,
		prompts: []string{
			"¿Para qué momento del día es?",
			"¿Es para desayunar, comer, cenar o solo un antojo?",
			"¿A qué hora lo van a disfrutar?",
		},
		options: []option{
			{label: "Desayuno", tags: []string{"desayuno"}, keywords: []string{"desayunar", "manana"}},
			{label: "Comida", tags: []string{"comida"}, keywords: []string{"comer", "almuerzo", "lunch", "mediodia"}},
			{label: "Cena", tags: []string{"cena"}, keywords: []string{"cenar", "noche"}},
			{label: "Un antojo", tags: []string{"postre", "ligero"}, keywords: []string{"antojo", "snack", "merienda", "tarde"}},
		},
	},
	qCraving: {
		id: qCraving,
		prompts: []string{
			"¿Qué se les antoja más?",
			"¿Se les antoja algo salado, dulce o ligero?",
			"¿Qué sabor buscan hoy?",
		},
		options: []option{
			{label: "Algo salado", tags: []string{"salado"}, keywords: []string{"salado"}},
			{label: "Algo dulce", tags: []string{"dulce"}, keywords: []string{"dulce", "postre"}},
			{label: "Algo ligero", tags: []string{"ligero"}, keywords: []string{"ligero", "saludable"}},
			{label: "De todo un poco", keywords: []string{"todo", "ambos", "cualquiera", "igual"}},
		},
	},
	qDrink: {
		id: qDrink,
		prompts: []string{
			"¿Qué les gustaría tomar?",
			"¿Los acompañamos con alguna bebida?",
			"¿Prefieren algo caliente o frío para tomar?",
		},
		options: []option{
			{label: "Bebida caliente", tags: []string{"caliente"}, keywords: []string{"caliente"}},
			{label: "Bebida fría", tags: []string{"fria"}, keywords: []string{"fria", "frio", "helada"}},
			{label: "Café", tags: []string{"cafe"}, keywords: []string{"cafe"}},
			{label: "Sin bebida", noDrinks: true, keywords: []string{"nada", "ninguna", "sin"}},
		},
	},
	qShare: {
		id: qShare,
		prompts: []string{
			"¿Quieren platillos para compartir al centro?",
			"¿Les armamos algo para compartir entre todos?",
			"¿Prefieren compartir o que cada quien tenga su plato?",
		},
		options: []option{
			{label: "Sí, para compartir", tags: []string{"compartir"}, share: true, keywords: []string{"si", "compartir"}},
			{label: "Cada quien lo suyo", keywords: []string{"no", "individual", "cada"}},
			{label: "Un poco de ambos", tags: []string{"compartir"}, share: true, keywords: []string{"ambos", "mixto"}},
		},
	},
	qBudget: {
		id: qBudget,
		prompts: []string{
			"¿Qué presupuesto tienen por persona?",
			"¿Cuánto quieren gastar por persona, aproximadamente?",
			"¿Hay algún límite de gasto por persona?",
		},
		options: []option{
			{label: "Hasta $80", maxPrice: 8000, keywords: []string{"economico", "barato", "poco"}},
			{label: "Hasta $150", maxPrice: 15000, keywords: []string{"medio", "normal"}},
			{label: "Sin límite", keywords: []string{"limite", "cualquiera", "igual"}},
		},
	},
}

// sequenceVariants lists the interchangeable orderings of each tier's
// questions. The moment question, when asked, always comes first.
var sequenceVariants = map[model.Tier][][]string{
	model.TierSmall: {
		{qCraving, qDrink},
		{qDrink, qCraving},
	},
	model.TierMedium: {
		{qCraving, qDrink, qBudget},
		{qDrink, qCraving, qBudget},
		{qCraving, qBudget, qDrink},
	},
	model.TierLarge: {
		{qShare, qCraving, qDrink, qBudget},
		{qCraving, qShare, qBudget, qDrink},
		{qDrink, qShare, qCraving, qBudget},
	},
}

// plan picks the question order and wording for a new session. The choice
// is derived from the session id so independent sessions vary while a
// given session stays stable.
func plan(sessionID string, tier model.Tier, mealContext string) (ids []string, sequence, wording int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	sum := h.Sum32()

	variants := sequenceVariants[tier]
	sequence = int(sum % uint32(len(variants)))
	wording = int((sum / uint32(len(variants))) % 3)

	if mealContext == "" {
		ids = append(ids, qMoment)
	}
	ids = append(ids, variants[sequence]...)
	return ids, sequence, wording
}

func render(def questionDef, session model.Session) model.Question {
	options := make([]string, len(def.options))
	for i, opt := range def.options {
		options[i] = opt.label
	}
	prompt := def.prompts[(session.WordingVariant+session.Step)%len(def.prompts)]
	return model.Question{
		ID:         def.id,
		Prompt:     prompt,
		Options:    options,
		StepIndex:  session.Step,
		TotalSteps: session.TotalSteps,
	}
}
