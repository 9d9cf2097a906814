package parser

import (
	"strings"
)

// Canonicalize rewrites violent-verb synonyms to the lexicon's canonical
// token before a message is sent upstream ("Mato al guardia" -> "Ataco al
// guardia"). Matching is whole-word and accent-insensitive; a leading
// capital is kept. Text without synonyms is returned unchanged.
func (p *Parser) Canonicalize(input string) string {
	if len(p.lex.Canonical) == 0 {
		return input
	}
	var b strings.Builder
	last := 0
	for _, t := range tokenize(input) {
		canon, ok := p.lex.Canonical[t.folded]
		if !ok {
			continue
		}
		word := input[t.start:t.end]
		if isUpperStart(word) {
			canon = p.capitalize(canon)
		}
		b.WriteString(input[last:t.start])
		b.WriteString(canon)
		last = t.end
	}
	if last == 0 {
		return input
	}
	b.WriteString(input[last:])
	return b.String()
}

// Canonicalize rewrites input with the built-in Spanish lexicon.
func Canonicalize(input string) string {
	return defaultParser.Canonicalize(input)
}
