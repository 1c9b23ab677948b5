package recommendation

import (
	"sort"
	"strings"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/textnorm"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
	model "github.com/zhouzirui/menu-assistant/backend/internal/model/recommendation"
)

// preferences are the answers of a session folded into ranking inputs.
type preferences struct {
	tags     []string
	meal     string
	maxPrice catalog.Money
	noDrinks bool
	share    bool
}

func collectPreferences(session model.Session) preferences {
	prefs := preferences{meal: session.MealContext}
	for _, ans := range session.Answers {
		def, ok := questionBank[ans.QuestionID]
		if !ok {
			continue
		}
		for _, opt := range def.options {
			if opt.label != ans.Option {
				continue
			}
			prefs.tags = append(prefs.tags, opt.tags...)
			if opt.maxPrice > 0 {
				prefs.maxPrice = opt.maxPrice
			}
			prefs.noDrinks = prefs.noDrinks || opt.noDrinks
			prefs.share = prefs.share || opt.share
		}
	}
	if prefs.meal == "" {
		for _, tag := range prefs.tags {
			switch tag {
			case "desayuno", "comida", "cena":
				prefs.meal = tag
			}
		}
	}
	return prefs
}

type scored struct {
	index int
	entry catalog.Entry
	score int
}

func isDrink(e catalog.Entry) bool {
	cat := textnorm.Fold(e.Category)
	return strings.Contains(cat, "bebida") || strings.Contains(cat, "drink")
}

func isShareable(e catalog.Entry) bool {
	return hasTag(e, "compartir")
}

func hasTag(e catalog.Entry, tag string) bool {
	words := textnorm.Tokens(e.Category + " " + e.Name + " " + strings.Join(e.Tags, " "))
	for _, w := range words {
		if textnorm.SameWord(w, tag) {
			return true
		}
	}
	return false
}

func score(e catalog.Entry, prefs preferences) int {
	total := 0
	seen := make(map[string]bool)
	for _, tag := range prefs.tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if hasTag(e, tag) {
			total++
		}
	}
	if prefs.meal != "" && !seen[prefs.meal] && hasTag(e, prefs.meal) {
		total += 2
	}
	return total
}

// rank builds the final recommendation: a ranked shortlist and a suggested
// cart made of the best drink, the best individual dish and, when the group
// shares, the best shareable dish. A non-empty catalog always yields a
// non-empty recommendation.
func rank(session model.Session, entries []catalog.Entry, shortlist int) model.Final {
	prefs := collectPreferences(session)
	final := model.Final{SessionID: session.ID}

	var candidates []scored
	for i, e := range entries {
		if prefs.maxPrice > 0 && e.Price > prefs.maxPrice && !isShareable(e) {
			continue
		}
		if prefs.noDrinks && isDrink(e) {
			continue
		}
		candidates = append(candidates, scored{index: i, entry: e, score: score(e, prefs)})
	}
	if len(candidates) == 0 {
		for i, e := range entries {
			candidates = append(candidates, scored{index: i, entry: e})
		}
	}
	if len(candidates) == 0 {
		return final
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].index < candidates[j].index
	})

	party := session.PartySize
	if party < 1 {
		party = 1
	}
	shareQty := (party + 3) / 4

	quantities := make(map[int]int)
	pick := func(want func(scored) bool, qty int) {
		for _, c := range candidates {
			if _, taken := quantities[c.index]; taken {
				continue
			}
			if want(c) {
				quantities[c.index] = qty
				return
			}
		}
	}

	if !prefs.noDrinks {
		pick(func(c scored) bool { return isDrink(c.entry) && !isShareable(c.entry) && c.score > 0 }, party)
	}
	pick(func(c scored) bool { return !isDrink(c.entry) && !isShareable(c.entry) && c.score > 0 }, party)
	if prefs.share || session.Tier == model.TierLarge {
		pick(func(c scored) bool { return isShareable(c.entry) && c.score > 0 }, shareQty)
	}
	if len(quantities) == 0 {
		top := candidates[0]
		qty := party
		if isShareable(top.entry) {
			qty = shareQty
		}
		quantities[top.index] = qty
	}

	limit := shortlist
	if limit < len(quantities) {
		limit = len(quantities)
	}

	// suggested items lead the shortlist, the rest follow by rank
	var ordered []scored
	for _, c := range candidates {
		if _, ok := quantities[c.index]; ok {
			ordered = append(ordered, c)
		}
	}
	for _, c := range candidates {
		if len(ordered) >= limit {
			break
		}
		if _, ok := quantities[c.index]; !ok {
			ordered = append(ordered, c)
		}
	}

	var cart order.Cart
	for _, c := range ordered {
		qty, suggested := quantities[c.index]
		if suggested {
			_ = cart.Add(c.entry, qty)
		} else {
			qty = 1
		}
		final.Items = append(final.Items, model.RankedItem{Entry: c.entry, Quantity: qty, Score: c.score})
	}
	final.Suggested = cart
	return final
}
