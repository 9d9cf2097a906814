// Package lexicon holds the closed word sets the parser matches against.
// Adding a language variant is a data change: build a Lexicon (or extend one
// from scenario content) instead of touching parser logic.
package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lexicon is the set of closed vocabularies used for intent recognition,
// normalization and canonicalization. Entries are stored folded (see Fold).
type Lexicon struct {
	Determiners  []string
	Connectors   []string
	AcquireVerbs []string
	DiscardVerbs []string
	CombatVerbs  []string
	LevelQueries []string

	// Canonical maps a violent-verb synonym to the token sent upstream.
	Canonical map[string]string
}

// Fold lower-cases s and strips diacritics so "Qué" and "que" compare equal.
// Only combining marks are removed; "ñ" folds to "n".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Spanish returns the built-in rioplatense vocabulary.
func Spanish() *Lexicon {
	lex := &Lexicon{
		Determiners: []string{
			"el", "la", "los", "las", "un", "una", "unos", "unas",
			"mi", "mis", "tu", "tus", "su", "sus", "este", "esta", "ese", "esa",
			"aquel", "aquella",
		},
		Connectors: []string{" y ", " para ", " con "},
		AcquireVerbs: []string{
			"tomo", "agarro", "recojo", "levanto", "junto", "cojo", "guardo", "recolecto",
			"tomar", "agarrar", "recoger", "levantar", "juntar", "guardar", "recolectar",
		},
		DiscardVerbs: []string{
			"tiro", "suelto", "descarto", "abandono", "dejo", "arrojo", "desecho",
			"tirar", "soltar", "descartar", "abandonar", "dejar", "arrojar", "desechar",
		},
		CombatVerbs: []string{
			"ataco", "golpeo", "disparo", "peleo", "lucho", "pateo", "embisto",
			"atacar", "golpear", "disparar", "pelear", "luchar", "patear", "embestir",
			"mato", "asesino", "apunalo", "acuchillo", "degollo", "deguello", "muerdo",
			"matar", "asesinar", "apunalar", "acuchillar", "degollar", "morder",
		},
		LevelQueries: []string{
			"que nivel tengo", "cual es mi nivel", "en que nivel estoy", "mi nivel",
		},
		Canonical: map[string]string{
			"mato":       "ataco",
			"asesino":    "ataco",
			"apunalo":    "ataco",
			"acuchillo":  "ataco",
			"degollo":    "ataco",
			"deguello":   "ataco",
			"destripo":   "ataco",
			"masacro":    "ataco",
			"ejecuto":    "ataco",
			"matar":      "atacar",
			"asesinar":   "atacar",
			"apunalar":   "atacar",
			"acuchillar": "atacar",
			"degollar":   "atacar",
			"destripar":  "atacar",
			"masacrar":   "atacar",
		},
	}
	return lex
}

// Extend merges additional entries into l. Entries are folded before they
// are stored and duplicates are dropped; order of existing entries is kept.
func (l *Lexicon) Extend(other Lexicon) {
	l.Determiners = merge(l.Determiners, other.Determiners)
	l.AcquireVerbs = merge(l.AcquireVerbs, other.AcquireVerbs)
	l.DiscardVerbs = merge(l.DiscardVerbs, other.DiscardVerbs)
	l.CombatVerbs = merge(l.CombatVerbs, other.CombatVerbs)
	l.LevelQueries = merge(l.LevelQueries, other.LevelQueries)
	for _, c := range other.Connectors {
		c = " " + strings.TrimSpace(Fold(c)) + " "
		if !contains(l.Connectors, c) {
			l.Connectors = append(l.Connectors, c)
		}
	}
	if len(other.Canonical) > 0 && l.Canonical == nil {
		l.Canonical = map[string]string{}
	}
	for from, to := range other.Canonical {
		l.Canonical[Fold(from)] = to
	}
}

func merge(base, extra []string) []string {
	for _, w := range extra {
		w = strings.Join(strings.Fields(Fold(w)), " ")
		if w == "" || contains(base, w) {
			continue
		}
		base = append(base, w)
	}
	return base
}

func contains(list []string, w string) bool {
	for _, v := range list {
		if v == w {
			return true
		}
	}
	return false
}
