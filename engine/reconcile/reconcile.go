// Package reconcile reads state assertions out of narration prose and
// applies them to the session state. The pattern set is fixed and
// versioned; prose that matches nothing changes nothing.
package reconcile

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/nocturne/engine/effects"
	"github.com/nathoo/nocturne/engine/lexicon"
	"github.com/nathoo/nocturne/types"
)

// PatternSetVersion identifies the prose contract understood by Extract.
// Bump it whenever a pattern changes.
const PatternSetVersion = 2

// Category groups assertions so a caller can skip some of them.
type Category uint8

const (
	CategoryHealth Category = 1 << iota
	CategoryDamage
	CategoryItems
	CategoryLevel
)

// Categories is a set of categories.
type Categories = Category

// Has reports whether c contains all of other.
func (c Category) Has(other Category) bool {
	return other != 0 && c&other == other
}

// Kind is the type of an assertion found in prose.
type Kind string

const (
	KindSetHealth Kind = "set_health"
	KindDamage    Kind = "damage"
	KindGiveItem  Kind = "give_item"
	KindDowngrade Kind = "downgrade"
	KindLevel     Kind = "level"
)

// Assertion is one state claim made by the narration.
type Assertion struct {
	Kind  Kind
	Value int
	Max   int
	Item  string
	// Start and End are byte offsets of the match in the scanned text.
	Start, End int
}

// Category returns the category the assertion belongs to.
func (a Assertion) Category() Category {
	switch a.Kind {
	case KindSetHealth:
		return CategoryHealth
	case KindDamage:
		return CategoryDamage
	case KindGiveItem:
		return CategoryItems
	default:
		return CategoryLevel
	}
}

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Listed in priority order: when two matches overlap the earlier pattern wins.
var defaultPatterns = []pattern{
	{KindDowngrade, regexp.MustCompile(`(?i)\b(?:bajas|desciendes|retrocedes)\s+(?:al|a)\s+nivel\s+(\d+)`)},
	{KindSetHealth, regexp.MustCompile(`(?i)\bvida\s+actual\s*:?\s*(\d+)\s*/\s*(\d+)`)},
	{KindDamage, regexp.MustCompile(`(?i)\brecibes\s+(\d+)\s+puntos?(?:\s+de\s+da(?:ñ|Ñ|n)o)?`)},
	{KindGiveItem, regexp.MustCompile(`(?i)\bobtienes\s*:?\s*["“”«]\s*([^"“”«»\n]+?)\s*["“”»]`)},
	{KindLevel, regexp.MustCompile(`(?i)\bnivel\s*:?\s*(\d+)\b`)},
}

// damageTail matches "de <word>" right after a damage callout; only daño
// keeps it a damage assertion ("recibes 5 puntos de experiencia" is not).
var damageTail = regexp.MustCompile(`^\s+de\s+(\pL+)`)

// Reconciler extracts and applies narration assertions.
type Reconciler struct {
	patterns []pattern
}

// New returns a Reconciler with the built-in pattern set.
func New() *Reconciler {
	return &Reconciler{patterns: defaultPatterns}
}

// Extract returns the assertions in text, in textual order. Overlapping
// matches are resolved by pattern priority.
func (r *Reconciler) Extract(text string) []Assertion {
	var taken []Assertion
	for _, p := range r.patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			a, ok := build(p.kind, text, m)
			if !ok || overlaps(taken, a) {
				continue
			}
			taken = append(taken, a)
		}
	}
	sort.SliceStable(taken, func(i, j int) bool { return taken[i].Start < taken[j].Start })
	return taken
}

func build(kind Kind, text string, m []int) (Assertion, bool) {
	a := Assertion{Kind: kind, Start: m[0], End: m[1]}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}
	switch kind {
	case KindGiveItem:
		a.Item = strings.TrimSpace(group(1))
		return a, a.Item != ""
	case KindDamage:
		if tail := damageTail.FindStringSubmatch(text[m[1]:]); tail != nil {
			if w := lexicon.Fold(tail[1]); w != "dano" {
				return a, false
			}
		}
		a.Value = atoi(group(1))
		return a, true
	case KindSetHealth:
		a.Max = atoi(group(2))
		fallthrough
	default:
		a.Value = atoi(group(1))
	}
	return a, true
}

func overlaps(taken []Assertion, a Assertion) bool {
	for _, t := range taken {
		if a.Start < t.End && t.Start < a.End {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Apply extracts assertions from text and applies them to s in textual
// order, skipping the given categories. It must be called exactly once per
// backend message. Returns the events emitted.
func (r *Reconciler) Apply(s *types.State, text string, skip Categories) []types.Event {
	var evts []types.Event
	for _, a := range r.Extract(text) {
		if skip.Has(a.Category()) {
			continue
		}
		eff, ok := effectFor(s, a)
		if !ok {
			continue
		}
		evts = append(evts, effects.Apply(s, []types.Effect{eff})...)
	}
	return evts
}

// effectFor converts an assertion against the current state. Level
// callouts are monotonic: only an explicit downgrade lowers the level.
func effectFor(s *types.State, a Assertion) (types.Effect, bool) {
	switch a.Kind {
	case KindSetHealth:
		return types.Effect{Type: effects.SetHealth, Params: map[string]any{"health": a.Value, "max": a.Max}}, true
	case KindDamage:
		return types.Effect{Type: effects.Damage, Params: map[string]any{"amount": a.Value, "source": effects.SourceNarration}}, a.Value > 0
	case KindGiveItem:
		return types.Effect{Type: effects.GiveItem, Params: map[string]any{"item": types.Item{Name: a.Item}, "source": effects.SourceNarration}}, true
	case KindDowngrade:
		return types.Effect{Type: effects.SetLevel, Params: map[string]any{"level": a.Value}}, a.Value >= 1
	case KindLevel:
		if a.Value <= s.Player.Level {
			return types.Effect{}, false
		}
		return types.Effect{Type: effects.SetLevel, Params: map[string]any{"level": a.Value}}, true
	}
	return types.Effect{}, false
}
