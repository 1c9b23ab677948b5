// Package orderparse turns a free-form chat message into a cart by matching
// product mentions against a branch catalog.
package orderparse

import (
	"sort"
	"strings"
	"unicode"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/textnorm"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
)

// alias is one folded name of a catalog product.
type alias struct {
	product int
	tokens  []string
	length  int
}

// Parser matches text against a fixed catalog snapshot. It is safe for
// concurrent use.
type Parser struct {
	entries []catalog.Entry
	aliases []alias
	// joinsY holds aliases that contain the word "y" so the separator split
	// does not cut through them.
	joinsY []alias
}

// match is a resolved product mention inside a segment.
type match struct {
	product  int
	quantity int
	position int
}

// New precomputes the folded aliases of entries.
func New(entries []catalog.Entry) *Parser {
	p := &Parser{entries: append([]catalog.Entry(nil), entries...)}
	for i, e := range p.entries {
		seen := make(map[string]bool)
		for _, name := range e.Names() {
			tokens := textnorm.Tokens(name)
			key := strings.Join(tokens, " ")
			if len(tokens) == 0 || seen[key] {
				continue
			}
			seen[key] = true
			a := alias{product: i, tokens: tokens, length: len(key)}
			p.aliases = append(p.aliases, a)
			for _, tok := range tokens {
				if tok == "y" {
					p.joinsY = append(p.joinsY, a)
					break
				}
			}
		}
	}
	return p
}

// Parse is a convenience wrapper around New(entries).Parse(text).
func Parse(text string, entries []catalog.Entry) order.Cart {
	return New(entries).Parse(text)
}

// Parse extracts a cart from text. Unmatched spans are ignored, so the
// result may be empty but parsing never fails.
func (p *Parser) Parse(text string) order.Cart {
	var cart order.Cart
	if len(p.aliases) == 0 {
		return cart
	}

	for _, segment := range p.segments(text) {
		matches := p.matchFull(segment)
		if len(matches) == 0 {
			if m, ok := p.matchPartial(segment); ok {
				matches = append(matches, m)
			}
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].position < matches[j].position
		})
		for _, m := range matches {
			if m.quantity <= 0 {
				continue
			}
			_ = cart.Add(p.entries[m.product], m.quantity)
		}
	}
	return cart
}

// segments splits text on newlines, separator punctuation and the word "y".
func (p *Parser) segments(text string) [][]string {
	var out [][]string
	for _, line := range strings.Split(text, "\n") {
		chunks := strings.FieldsFunc(textnorm.Fold(line), func(r rune) bool {
			return r == ',' || r == ';' || r == '+' || r == '|'
		})
		for _, chunk := range chunks {
			tokens := strings.FieldsFunc(chunk, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			out = append(out, p.splitOnY(tokens)...)
		}
	}
	return out
}

func (p *Parser) splitOnY(tokens []string) [][]string {
	var out [][]string
	start := 0
	for i, tok := range tokens {
		if tok != "y" || p.insideYAlias(tokens, i) {
			continue
		}
		if i > start {
			out = append(out, tokens[start:i])
		}
		start = i + 1
	}
	if start < len(tokens) {
		out = append(out, tokens[start:])
	}
	return out
}

func (p *Parser) insideYAlias(tokens []string, at int) bool {
	for _, a := range p.joinsY {
		for k, tok := range a.tokens {
			if tok != "y" {
				continue
			}
			start := at - k
			if start >= 0 && start+len(a.tokens) <= len(tokens) && tokensMatch(tokens[start:start+len(a.tokens)], a.tokens) {
				return true
			}
		}
	}
	return false
}

// matchFull finds every alias fully contained in the segment. The best
// candidate shares the most tokens, then has the longest alias, then comes
// first in the catalog; its tokens are consumed and the search repeats.
func (p *Parser) matchFull(tokens []string) []match {
	consumed := make([]bool, len(tokens))
	var found []match

	for {
		bestAlias, bestStart := -1, -1
		for ai, a := range p.aliases {
			for start := 0; start+len(a.tokens) <= len(tokens); start++ {
				if anyConsumed(consumed, start, start+len(a.tokens)) {
					continue
				}
				if !tokensMatch(tokens[start:start+len(a.tokens)], a.tokens) {
					continue
				}
				if bestAlias < 0 || p.better(ai, start, bestAlias, bestStart) {
					bestAlias, bestStart = ai, start
				}
				break
			}
		}
		if bestAlias < 0 {
			return found
		}

		a := p.aliases[bestAlias]
		end := bestStart + len(a.tokens)
		for i := bestStart; i < end; i++ {
			consumed[i] = true
		}
		found = append(found, match{
			product:  a.product,
			quantity: quantityAround(tokens, consumed, bestStart, end),
			position: bestStart,
		})
	}
}

func (p *Parser) better(ai, aStart, bi, bStart int) bool {
	a, b := p.aliases[ai], p.aliases[bi]
	if len(a.tokens) != len(b.tokens) {
		return len(a.tokens) > len(b.tokens)
	}
	if a.length != b.length {
		return a.length > b.length
	}
	if a.product != b.product {
		return a.product < b.product
	}
	return aStart < bStart
}

// matchPartial handles phrasing shorter than any alias ("naranja" for
// "Jugo de Naranja"). It only resolves when a single product reaches the
// best token overlap; ambiguous segments are dropped.
func (p *Parser) matchPartial(tokens []string) (match, bool) {
	var content []string
	qty, qtyPos := 1, -1
	for i, tok := range tokens {
		if n, ok := parseQuantity(tok); ok {
			if qtyPos < 0 {
				qty, qtyPos = n, i
			}
			continue
		}
		if stopwords[tok] || fillers[tok] {
			continue
		}
		content = append(content, tok)
	}
	if len(content) == 0 {
		return match{}, false
	}

	bestOverlap := 0
	products := make(map[int]bool)
	for _, a := range p.aliases {
		if !containsAll(a.tokens, content) {
			continue
		}
		overlap := len(content)
		switch {
		case overlap > bestOverlap:
			bestOverlap = overlap
			products = map[int]bool{a.product: true}
		case overlap == bestOverlap:
			products[a.product] = true
		}
	}
	if len(products) != 1 {
		return match{}, false
	}

	for product := range products {
		return match{product: product, quantity: qty, position: 0}, true
	}
	return match{}, false
}

// quantityAround looks for the quantity nearest before the mention, then
// for a trailing "x2" form. The quantity token is consumed.
func quantityAround(tokens []string, consumed []bool, start, end int) int {
	for j := start - 1; j >= 0 && !consumed[j]; j-- {
		if n, ok := parseQuantity(tokens[j]); ok {
			consumed[j] = true
			return n
		}
		if !fillers[tokens[j]] {
			break
		}
	}

	if end < len(tokens) && !consumed[end] {
		tok := tokens[end]
		if len(tok) > 1 && strings.HasPrefix(tok, "x") {
			if n, ok := parseQuantity(tok); ok {
				consumed[end] = true
				return n
			}
		}
		if tok == "x" && end+1 < len(tokens) && !consumed[end+1] {
			if n, ok := parseQuantity(tokens[end+1]); ok {
				consumed[end], consumed[end+1] = true, true
				return n
			}
		}
	}
	return 1
}

func anyConsumed(consumed []bool, from, to int) bool {
	for i := from; i < to; i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

func tokensMatch(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if !textnorm.SameWord(got[i], want[i]) {
			return false
		}
	}
	return true
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if textnorm.SameWord(h, n) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
