// Package events turns the events emitted by effects into notices for the
// player. One pass, no side effects.
package events

import (
	"fmt"

	"github.com/nathoo/nocturne/engine/effects"
	"github.com/nathoo/nocturne/types"
)

// Describe maps events to user-visible notices, preserving order.
// Events without a player-facing message are skipped.
func Describe(evts []types.Event) []types.Notice {
	var out []types.Notice
	for _, e := range evts {
		if n, ok := describe(e); ok {
			out = append(out, n)
		}
	}
	return out
}

func describe(e types.Event) (types.Notice, bool) {
	d := e.Data
	switch e.Type {
	case effects.EventItemAdded:
		return notice(types.NoticeInventory, "Agregaste %s al inventario.", quote(d["item"])), true
	case effects.EventItemDuplicate:
		return notice(types.NoticeInventory, "Ya tenés %s en el inventario.", quote(d["item"])), true
	case effects.EventItemRemoved:
		return notice(types.NoticeInventory, "Quitaste %s del inventario.", quote(d["item"])), true
	case effects.EventItemMissing:
		return notice(types.NoticeInventory, "No tenés %s en el inventario.", quote(d["item"])), true
	case effects.EventItemReplaced:
		return notice(types.NoticeInventory, "Reemplazaste %s por %s.", quote(d["old"]), quote(d["new"])), true
	case effects.EventItemNameTaken:
		return notice(types.NoticeInventory, "No podés cambiar %s por %s: ya tenés %s en el inventario.", quote(d["old"]), quote(d["new"]), quote(d["new"])), true

	case effects.EventHealthChanged:
		amount, _ := d["amount"].(int)
		if amount < 0 {
			return notice(types.NoticeHealth, "Recibiste %d de daño. Vida: %v/%v.", -amount, d["health"], d["max"]), true
		}
		if amount > 0 {
			return notice(types.NoticeHealth, "Recuperaste %d de vida. Vida: %v/%v.", amount, d["health"], d["max"]), true
		}
		return types.Notice{}, false
	case effects.EventHealthSet:
		if d["health"] == d["previous"] {
			return types.Notice{}, false
		}
		return notice(types.NoticeHealth, "Vida actualizada: %v/%v.", d["health"], d["max"]), true
	case effects.EventPlayerDefeated:
		return notice(types.NoticeHealth, "Tu vida llegó a cero."), true

	case effects.EventExperienceGained:
		return notice(types.NoticeProgress, "Ganaste %v de experiencia.", d["amount"]), true
	case effects.EventLevelUp:
		return notice(types.NoticeProgress, "¡Subiste al nivel %v!", d["level"]), true
	case effects.EventLevelSet:
		from, _ := d["from"].(int)
		to, _ := d["to"].(int)
		if to < from {
			return notice(types.NoticeProgress, "Bajaste al nivel %d.", to), true
		}
		return notice(types.NoticeProgress, "Ahora sos nivel %d.", to), true
	}
	return types.Notice{}, false
}

func notice(kind types.NoticeKind, format string, args ...any) types.Notice {
	return types.Notice{Kind: kind, Text: fmt.Sprintf(format, args...)}
}

func quote(v any) string {
	return fmt.Sprintf("%q", fmt.Sprint(v))
}
