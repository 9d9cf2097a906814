// Package parser converts free player text into an Intent.
// Intentionally dumb: no NLP, just closed word lists and fixed priority.
package parser

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/nathoo/nocturne/engine/lexicon"
	"github.com/nathoo/nocturne/types"
)

// Parser classifies, normalizes and canonicalizes player text against one
// lexicon. It holds no mutable state and is safe to share.
type Parser struct {
	lex  *lexicon.Lexicon
	lang language.Tag

	acquire [][]string
	discard [][]string
	combat  [][]string
	level   [][]string
}

// New builds a parser for the given lexicon. A nil lexicon means Spanish.
func New(lex *lexicon.Lexicon) *Parser {
	if lex == nil {
		lex = lexicon.Spanish()
	}
	return &Parser{
		lex:     lex,
		lang:    language.Spanish,
		acquire: splitPhrases(lex.AcquireVerbs),
		discard: splitPhrases(lex.DiscardVerbs),
		combat:  splitPhrases(lex.CombatVerbs),
		level:   splitPhrases(lex.LevelQueries),
	}
}

var defaultParser = New(lexicon.Spanish())

// Parse classifies input with the built-in Spanish lexicon.
func Parse(input string) types.Intent {
	return defaultParser.Parse(input)
}

// Normalize normalizes an object phrase with the built-in Spanish lexicon.
func Normalize(raw string) string {
	return defaultParser.Normalize(raw)
}

// Parse converts a raw player message into an Intent. Rules are tried in
// fixed order and the first match wins: acquire, discard, level query,
// combat. Acquire and discard come first because item names may contain
// combat-like words.
func (p *Parser) Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}
	toks := tokenize(input)

	if item, ok := p.verbObject(input, toks, p.acquire); ok {
		return types.Intent{Kind: types.IntentAcquire, Item: item}
	}
	if item, ok := p.verbObject(input, toks, p.discard); ok {
		return types.Intent{Kind: types.IntentDiscard, Item: item}
	}
	if _, _, ok := findPhrase(toks, 0, p.level); ok {
		return types.Intent{Kind: types.IntentQueryLevel}
	}
	if _, _, ok := findPhrase(toks, 0, p.combat); ok {
		return types.Intent{Kind: types.IntentAttack}
	}
	return types.Intent{}
}

// verbObject finds the first verb from verbs that is followed by a
// non-empty object phrase and returns the normalized object.
func (p *Parser) verbObject(input string, toks []token, verbs [][]string) (string, bool) {
	from := 0
	for {
		_, next, ok := findPhrase(toks, from, verbs)
		if !ok {
			return "", false
		}
		if next < len(toks) {
			rest := input[toks[next-1].end:]
			if item := p.Normalize(rest); item != "" {
				return item, true
			}
		}
		from = next
	}
}
