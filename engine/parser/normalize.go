package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/nathoo/nocturne/engine/lexicon"
)

// trimCutset is stripped from both ends of an object phrase: whitespace,
// straight and typographic quotes, and sentence punctuation.
const trimCutset = " \t\r\n\"'“”‘’«».,;:!?¡¿"

// Normalize reduces an object phrase to an item name: it trims quotes,
// strips one leading determiner, keeps only the part before the first
// connector and upper-cases the first character. Empty in, empty out.
func (p *Parser) Normalize(raw string) string {
	s := strings.Trim(raw, trimCutset)
	s = p.stripDeterminer(s)
	s = p.truncateAtConnector(s)
	s = strings.Trim(s, trimCutset)
	return p.capitalize(s)
}

// stripDeterminer removes a single leading article or possessive.
func (p *Parser) stripDeterminer(s string) string {
	idx := strings.IndexAny(s, " \t")
	if idx <= 0 {
		return s
	}
	first := lexicon.Fold(s[:idx])
	for _, d := range p.lex.Determiners {
		if first == d {
			return strings.TrimLeft(s[idx:], " \t")
		}
	}
	return s
}

// truncateAtConnector keeps the phrase before the earliest connector:
// "cuchillo y la linterna" -> "cuchillo". Windows are folded before the
// comparison, so "según" matches the stored connector "segun".
func (p *Parser) truncateAtConnector(s string) string {
	rs := []rune(s)
	for i := range rs {
		for _, c := range p.lex.Connectors {
			n := utf8.RuneCountInString(c)
			if i+n <= len(rs) && lexicon.Fold(string(rs[i:i+n])) == c {
				return string(rs[:i])
			}
		}
	}
	return s
}

func (p *Parser) capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return cases.Upper(p.lang).String(string(r)) + s[size:]
}
