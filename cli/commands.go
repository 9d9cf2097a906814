package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/nathoo/nocturne/engine"
	"github.com/nathoo/nocturne/engine/state"
	"github.com/nathoo/nocturne/export"
	"github.com/nathoo/nocturne/types"
)

// HealthStatus is a display band for the player's health.
type HealthStatus struct {
	Label string
	Color string
}

// GetHealthStatus maps health to a band by percentage of the cap.
func GetHealthStatus(health, maxHealth int) HealthStatus {
	if maxHealth < 1 {
		maxHealth = 1
	}
	pct := health * 100 / maxHealth
	switch {
	case pct >= 80:
		return HealthStatus{"Sano", "#a6e22e"}
	case pct >= 50:
		return HealthStatus{"Herido", "#e6db74"}
	case pct >= 20:
		return HealthStatus{"Malherido", "#fd971f"}
	case health > 0:
		return HealthStatus{"Crítico", "#f92672"}
	default:
		return HealthStatus{"Caído", "#75715e"}
	}
}

// Meta runs a slash command against eng. It returns the output lines and
// whether the session should end. "/trace" is left to the caller.
func Meta(eng *engine.Engine, input string) ([]string, bool) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "/salir", "/quit", "/exit":
		return []string{"Hasta la próxima noche."}, true

	case "/agregar":
		if arg == "" {
			return []string{"Uso: /agregar <item>"}, false
		}
		return noticeLines(eng.AddItem(arg)), false

	case "/tirar":
		if arg == "" {
			return []string{"Uso: /tirar <item>"}, false
		}
		return noticeLines(eng.DiscardItem(heldName(eng, arg))), false

	case "/usar":
		return cmdUse(eng, arg), false

	case "/inventario":
		return inventoryLines(eng.Snapshot().Inventory), false

	case "/item":
		if arg == "" {
			return []string{"Uso: /item <nombre>"}, false
		}
		it, ok := eng.Item(arg)
		if !ok {
			return []string{fmt.Sprintf("No tenés %q en el inventario.", arg)}, false
		}
		return itemDetail(it), false

	case "/estado":
		return statusLines(eng.Snapshot()), false

	case "/exportar":
		return cmdExport(eng, arg), false

	case "/ayuda", "/help":
		return helpLines(), false

	default:
		return []string{fmt.Sprintf("Comando desconocido: %s. Escribí /ayuda para ver los comandos.", cmd)}, false
	}
}

// cmdUse handles "/usar viejo -> nuevo" (replace) and "/usar item" (consume).
func cmdUse(eng *engine.Engine, arg string) []string {
	if arg == "" {
		return []string{"Uso: /usar <item> o /usar <viejo> -> <nuevo>"}
	}
	oldName, newName, replace := strings.Cut(arg, "->")
	if !replace {
		return noticeLines(eng.DiscardItem(heldName(eng, arg)))
	}
	oldName, newName = strings.TrimSpace(oldName), strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return []string{"Uso: /usar <viejo> -> <nuevo>"}
	}
	return noticeLines(eng.ReplaceItem(heldName(eng, oldName), newName))
}

func cmdExport(eng *engine.Engine, path string) []string {
	if path == "" {
		path = export.DefaultFilename(time.Now())
	}
	t := export.New(eng.Scenario.Title, eng.Snapshot(), eng.History())
	if err := export.WriteFile(path, t); err != nil {
		return []string{fmt.Sprintf("No se pudo exportar: %v", err)}
	}
	return []string{fmt.Sprintf("Historia exportada a %s.", path)}
}

// heldName resolves a typed name to the held item's exact name, ignoring
// case. Unknown names are returned as typed.
func heldName(eng *engine.Engine, name string) string {
	if it, ok := eng.Item(name); ok {
		return it.Name
	}
	return strings.TrimSpace(name)
}

func noticeLines(notices []types.Notice) []string {
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		lines = append(lines, n.Text)
	}
	return lines
}

func inventoryLines(items []types.Item) []string {
	if len(items) == 0 {
		return []string{"Tu inventario está vacío."}
	}
	lines := []string{"Inventario:"}
	for _, it := range items {
		lines = append(lines, "  - "+export.ItemLine(it))
	}
	return lines
}

func itemDetail(it types.Item) []string {
	lines := []string{it.Name}
	for _, f := range []struct{ label, value string }{
		{"Tipo", it.Type},
		{"Función", it.Function},
		{"Dados", it.Dice},
		{"Material", it.Material},
		{"Condición", it.Condition},
		{"Peso", it.Weight},
	} {
		if f.value != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s", f.label, f.value))
		}
	}
	return lines
}

func statusLines(snap types.Snapshot) []string {
	p := snap.Player
	hs := GetHealthStatus(p.Health, p.MaxHealth)
	lines := []string{}
	if p.Name != "" {
		lines = append(lines, "Nombre: "+p.Name)
	}
	lines = append(lines,
		fmt.Sprintf("Vida: %d/%d (%s)", p.Health, p.MaxHealth, hs.Label),
		fmt.Sprintf("Nivel: %d (experiencia %d/%d)", p.Level, p.Experience, state.XPNeeded(p.Level)),
		fmt.Sprintf("Items: %d", len(snap.Inventory)),
		fmt.Sprintf("Turno: %d", snap.TurnCount),
	)
	return lines
}

func helpLines() []string {
	return []string{
		"Comandos:",
		"  /agregar <item>          Agregar un item al inventario",
		"  /tirar <item>            Quitar un item del inventario",
		"  /usar <item>             Consumir un item",
		"  /usar <viejo> -> <nuevo> Reemplazar un item",
		"  /inventario              Ver el inventario",
		"  /item <nombre>           Ver el detalle de un item",
		"  /estado                  Ver vida, nivel y experiencia",
		"  /exportar [archivo]      Exportar la historia (.md o .pdf)",
		"  /trace                   Mostrar u ocultar la mecánica del turno",
		"  /salir                   Terminar la partida",
		"",
		"Todo lo demás se envía al narrador.",
	}
}
