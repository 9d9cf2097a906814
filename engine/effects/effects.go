// Package effects implements centralized state mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"github.com/nathoo/nocturne/engine/state"
	"github.com/nathoo/nocturne/types"
)

// Effect types understood by Apply.
const (
	GiveItem      = "give_item"
	RemoveItem    = "remove_item"
	ReplaceItem   = "replace_item"
	Damage        = "damage"
	Heal          = "heal"
	SetHealth     = "set_health"
	SetLevel      = "set_level"
	AddExperience = "add_experience"
)

// Event types emitted by Apply.
const (
	EventItemAdded        = "item_added"
	EventItemDuplicate    = "item_duplicate"
	EventItemRemoved      = "item_removed"
	EventItemMissing      = "item_missing"
	EventItemReplaced     = "item_replaced"
	EventItemNameTaken    = "item_name_taken"
	EventHealthChanged    = "health_changed"
	EventHealthSet        = "health_set"
	EventPlayerDefeated   = "player_defeated"
	EventExperienceGained = "experience_gained"
	EventLevelUp          = "level_up"
	EventLevelSet         = "level_set"
)

// SourceNarration marks effects asserted by the narrator's prose. A
// narrated grant of an item already held is dropped without an event.
const SourceNarration = "narration"

// Apply applies a list of effects to the game state, mutating it.
// Returns the events emitted, in effect order.
func Apply(s *types.State, effects []types.Effect) []types.Event {
	var events []types.Event

	for _, eff := range effects {
		switch eff.Type {
		case GiveItem:
			item := toItem(eff.Params["item"])
			if state.AddItem(s, item) {
				events = append(events, event(EventItemAdded, "item", item.Name))
			} else if item.Name != "" && eff.Params["source"] != SourceNarration {
				events = append(events, event(EventItemDuplicate, "item", item.Name))
			}

		case RemoveItem:
			name := toItem(eff.Params["item"]).Name
			if state.RemoveItem(s, name) {
				events = append(events, event(EventItemRemoved, "item", name))
			} else {
				events = append(events, event(EventItemMissing, "item", name, "action", "remove"))
			}

		case ReplaceItem:
			old, _ := eff.Params["old"].(string)
			item := toItem(eff.Params["item"])
			switch {
			case !state.HasItem(s, old):
				events = append(events, event(EventItemMissing, "item", old, "action", "replace"))
			case state.ReplaceItem(s, old, item):
				events = append(events, event(EventItemReplaced, "old", old, "new", item.Name))
			case item.Name != "":
				events = append(events, event(EventItemNameTaken, "old", old, "new", item.Name))
			}

		case Damage:
			amount := toInt(eff.Params["amount"])
			if amount <= 0 {
				continue
			}
			before := s.Player.Health
			state.ApplyDamage(&s.Player, amount)
			events = append(events, healthChanged(s, before-s.Player.Health, eff.Params["source"]))
			events = appendDefeat(events, s, before)

		case Heal:
			amount := toInt(eff.Params["amount"])
			if amount <= 0 {
				continue
			}
			before := s.Player.Health
			state.Heal(&s.Player, amount)
			events = append(events, healthChanged(s, before-s.Player.Health, eff.Params["source"]))

		case SetHealth:
			before := s.Player.Health
			state.SetHealth(&s.Player, toInt(eff.Params["health"]), toInt(eff.Params["max"]))
			events = append(events, event(EventHealthSet,
				"health", s.Player.Health, "max", s.Player.MaxHealth, "previous", before))
			events = appendDefeat(events, s, before)

		case SetLevel:
			from := s.Player.Level
			if state.SetLevel(&s.Player, toInt(eff.Params["level"])) {
				events = append(events, event(EventLevelSet, "from", from, "to", s.Player.Level))
			}

		case AddExperience:
			amount := toInt(eff.Params["amount"])
			if amount <= 0 {
				continue
			}
			gained := state.AddExperience(&s.Player, amount)
			events = append(events, event(EventExperienceGained,
				"amount", amount, "experience", s.Player.Experience, "level", s.Player.Level))
			if gained > 0 {
				events = append(events, event(EventLevelUp, "level", s.Player.Level, "gained", gained))
			}

		default:
			// Unknown effect type: ignored.
		}
	}

	return events
}

func event(typ string, kv ...any) types.Event {
	data := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		data[k] = kv[i+1]
	}
	return types.Event{Type: typ, Data: data}
}

// healthChanged reports a health delta; lost is positive for damage.
func healthChanged(s *types.State, lost int, source any) types.Event {
	src, _ := source.(string)
	return event(EventHealthChanged,
		"amount", -lost, "health", s.Player.Health, "max", s.Player.MaxHealth, "source", src)
}

func appendDefeat(events []types.Event, s *types.State, before int) []types.Event {
	if before > 0 && state.IsDefeated(&s.Player) {
		events = append(events, event(EventPlayerDefeated))
	}
	return events
}

// toItem accepts either a full item or a bare name.
func toItem(v any) types.Item {
	switch it := v.(type) {
	case types.Item:
		return it
	case *types.Item:
		if it != nil {
			return *it
		}
	case string:
		return types.Item{Name: it}
	}
	return types.Item{}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
