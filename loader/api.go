package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the scenario constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Scenario { title = "...", system_prompt = [[...]], ... }
	L.SetGlobal("Scenario", L.NewFunction(func(L *lua.LState) int {
		coll.scenario = L.CheckTable(1)
		return 0
	}))

	// Player { name = "...", max_health = 20, ... }
	L.SetGlobal("Player", L.NewFunction(func(L *lua.LState) int {
		coll.player = L.CheckTable(1)
		return 0
	}))

	// Combat { player_pool = 3, enemy_pool = 3, xp_award = 3 }
	L.SetGlobal("Combat", L.NewFunction(func(L *lua.LState) int {
		coll.combat = L.CheckTable(1)
		return 0
	}))

	// Lexicon { acquire = {...}, ... } may be called more than once.
	L.SetGlobal("Lexicon", L.NewFunction(func(L *lua.LState) int {
		coll.lexicons = append(coll.lexicons, L.CheckTable(1))
		return 0
	}))

	// Item "Nombre" { ... } is curried: Item("Nombre") returns a function that takes a table.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.OptTable(1, L.NewTable())
			coll.items = append(coll.items, rawItem{name: name, table: tbl})
			return 0
		}))
		return 1
	}))
}
