// Package loader loads Lua scenario content into Go structs at startup.
// The Lua VM is discarded after loading; no Lua runs during play.
package loader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/nocturne/engine/lexicon"
	"github.com/nathoo/nocturne/types"
)

const defaultOpening = "Iniciemos"

// Scenario is the compiled, immutable content of an adventure.
type Scenario struct {
	Title string
	// SystemPrompt is a text/template rendered with the player.
	SystemPrompt string
	// Opening is the first user message sent to start the story.
	Opening   string
	ModelHint string

	Player    types.Player
	Inventory []types.Item
	Combat    Combat
	Lexicon   *lexicon.Lexicon

	// Warnings are non-fatal findings from validation.
	Warnings []string

	prompt *template.Template
}

// Combat sizes the locally resolved combat exchanges.
type Combat struct {
	PlayerPool int
	EnemyPool  int
	XPAward    int
}

// RenderSystemPrompt fills the system prompt with the player's details.
func (s *Scenario) RenderSystemPrompt(p types.Player) (string, error) {
	tmpl := s.prompt
	if tmpl == nil {
		var err error
		tmpl, err = parsePrompt(s.SystemPrompt)
		if err != nil {
			return "", err
		}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("rendering system prompt: %w", err)
	}
	return b.String(), nil
}

func parsePrompt(text string) (*template.Template, error) {
	tmpl, err := template.New("system_prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing system prompt: %w", err)
	}
	return tmpl, nil
}

// rawItem holds an item table before compilation.
type rawItem struct {
	name  string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
// Numbers are formatted so `weight = 0.5` and `weight = "0.5 kg"` both work.
func getString(tbl *lua.LTable, key string) string {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or def if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	if tbl == nil {
		return def
	}
	if _, ok := tbl.RawGetString(key).(lua.LNumber); !ok {
		return def
	}
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// compile converts collected Lua tables into a Scenario.
func compile(coll *collector) (*Scenario, error) {
	if coll.scenario == nil {
		return nil, fmt.Errorf("no Scenario {} definition found")
	}

	sc := &Scenario{
		Title:        getString(coll.scenario, "title"),
		SystemPrompt: getString(coll.scenario, "system_prompt"),
		Opening:      getString(coll.scenario, "opening"),
		ModelHint:    getString(coll.scenario, "model_hint"),
	}
	if sc.Opening == "" {
		sc.Opening = defaultOpening
	}

	if coll.player != nil {
		sc.Player = types.Player{
			Name:      getString(coll.player, "name"),
			Gender:    getString(coll.player, "gender"),
			Age:       getString(coll.player, "age"),
			MaxHealth: getInt(coll.player, "max_health", 0),
		}
	}

	sc.Combat = Combat{
		PlayerPool: getInt(coll.combat, "player_pool", 3),
		EnemyPool:  getInt(coll.combat, "enemy_pool", 3),
		XPAward:    getInt(coll.combat, "xp_award", 3),
	}

	for _, ri := range coll.items {
		sc.Inventory = append(sc.Inventory, compileItem(ri))
	}

	sc.Lexicon = lexicon.Spanish()
	for _, tbl := range coll.lexicons {
		sc.Lexicon.Extend(compileLexicon(tbl))
	}

	if sc.SystemPrompt != "" {
		tmpl, err := parsePrompt(sc.SystemPrompt)
		if err != nil {
			return nil, err
		}
		sc.prompt = tmpl
	}

	return sc, nil
}

func compileItem(ri rawItem) types.Item {
	return types.Item{
		Name:      ri.name,
		Type:      getString(ri.table, "type"),
		Function:  getString(ri.table, "function"),
		Dice:      getString(ri.table, "dice"),
		Material:  getString(ri.table, "material"),
		Condition: getString(ri.table, "condition"),
		Weight:    getString(ri.table, "weight"),
	}
}

func compileLexicon(tbl *lua.LTable) lexicon.Lexicon {
	return lexicon.Lexicon{
		Determiners:  getStrings(tbl, "determiners"),
		Connectors:   getStrings(tbl, "connectors"),
		AcquireVerbs: getStrings(tbl, "acquire"),
		DiscardVerbs: getStrings(tbl, "discard"),
		CombatVerbs:  getStrings(tbl, "combat"),
		LevelQueries: getStrings(tbl, "level_queries"),
		Canonical:    tableToStringMap(getTable(tbl, "canonical")),
	}
}

// sortedLuaFiles returns .lua files with scenario.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var mainFile string
	var others []string
	for _, f := range files {
		if f == "scenario.lua" {
			mainFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if mainFile != "" {
		return append([]string{mainFile}, others...)
	}
	return others
}
