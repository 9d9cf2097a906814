package loader

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

//go:embed scenarios
var builtin embed.FS

// DefaultScenario is the directory of the built-in scenario under scenarios/.
const DefaultScenario = "subte"

// collector accumulates Lua definitions during file execution.
type collector struct {
	scenario *lua.LTable
	player   *lua.LTable
	combat   *lua.LTable
	lexicons []*lua.LTable
	items    []rawItem
}

// Load reads all .lua files from dir, compiles them into a Scenario and
// validates it. The Lua VM is discarded after loading.
func Load(dir string) (*Scenario, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}
	sc, err := LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", dir, err)
	}
	return sc, nil
}

// Default loads the scenario embedded in the binary.
func Default() (*Scenario, error) {
	sub, err := fs.Sub(builtin, "scenarios/"+DefaultScenario)
	if err != nil {
		return nil, fmt.Errorf("opening built-in scenario: %w", err)
	}
	return LoadFS(sub)
}

// LoadFS loads a scenario from the .lua files at the root of fsys.
func LoadFS(fsys fs.FS) (*Scenario, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing scenario files: %w", err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found")
	}

	// Sort: scenario.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		fn, err := L.Load(strings.NewReader(string(src)), f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	sc, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling scenario: %w", err)
	}

	if err := validate(sc); err != nil {
		return nil, err
	}

	return sc, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Scenario content must not consume the session's randomness.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}
