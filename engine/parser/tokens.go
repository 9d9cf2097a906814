package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/nocturne/engine/lexicon"
)

// token is a word of the original input with its byte span and folded form.
type token struct {
	start, end int
	folded     string
}

// tokenize splits input into runs of letters and digits. Spans index into
// the original string so object phrases keep their spelling.
func tokenize(input string) []token {
	var toks []token
	start := -1
	for i, r := range input {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			toks = append(toks, token{start: start, end: i, folded: lexicon.Fold(input[start:i])})
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, token{start: start, end: len(input), folded: lexicon.Fold(input[start:])})
	}
	return toks
}

// phraseAt reports whether the folded phrase (one or more words) matches the
// tokens starting at index i. Returns the index one past the last matched token.
func phraseAt(toks []token, i int, phrase []string) (int, bool) {
	if i+len(phrase) > len(toks) {
		return 0, false
	}
	for j, w := range phrase {
		if toks[i+j].folded != w {
			return 0, false
		}
	}
	return i + len(phrase), true
}

// findPhrase returns the first token index at or after from where any of the
// phrases match as whole words, plus the index one past the match.
func findPhrase(toks []token, from int, phrases [][]string) (start, next int, ok bool) {
	for i := from; i < len(toks); i++ {
		for _, p := range phrases {
			if n, ok := phraseAt(toks, i, p); ok {
				return i, n, true
			}
		}
	}
	return 0, 0, false
}

// splitPhrases turns lexicon entries into word lists.
func splitPhrases(entries []string) [][]string {
	out := make([][]string, 0, len(entries))
	for _, e := range entries {
		if words := strings.Fields(lexicon.Fold(e)); len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}

// isUpperStart reports whether s begins with an upper-case letter.
func isUpperStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
