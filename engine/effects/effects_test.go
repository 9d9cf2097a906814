package effects

import (
	"testing"

	"github.com/nathoo/nocturne/engine/state"
	"github.com/nathoo/nocturne/types"
)

func testState() *types.State {
	s := state.NewState(types.Player{Name: "Lucía"}, []types.Item{
		{Name: "Cuchillo", Type: "arma"},
		{Name: "Linterna", Type: "herramienta"},
	})
	s.Player.Health = 10
	return s
}

func eventTypes(evts []types.Event) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Type
	}
	return out
}

func TestApply_GiveItem(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{
		{Type: GiveItem, Params: map[string]any{"item": types.Item{Name: "Estaca", Material: "madera"}}},
	})
	if len(evts) != 1 || evts[0].Type != EventItemAdded {
		t.Fatalf("expected item_added, got %v", eventTypes(evts))
	}
	if evts[0].Data["item"] != "Estaca" {
		t.Errorf("expected item Estaca, got %v", evts[0].Data["item"])
	}
	if len(s.Inventory) != 3 || s.Inventory[2].Material != "madera" {
		t.Errorf("expected Estaca appended with its attributes, got %+v", s.Inventory)
	}
}

func TestApply_GiveItem_ByName(t *testing.T) {
	s := testState()
	Apply(s, []types.Effect{{Type: GiveItem, Params: map[string]any{"item": "Estaca"}}})
	if !state.HasItem(s, "Estaca") {
		t.Error("expected Estaca in inventory")
	}
}

func TestApply_GiveItem_Duplicate(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: GiveItem, Params: map[string]any{"item": "Cuchillo"}}})
	if len(evts) != 1 || evts[0].Type != EventItemDuplicate {
		t.Fatalf("expected item_duplicate, got %v", eventTypes(evts))
	}
	if len(s.Inventory) != 2 {
		t.Errorf("expected inventory unchanged, got %d items", len(s.Inventory))
	}
}

func TestApply_GiveItem_NarratedDuplicateIsSilent(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: GiveItem, Params: map[string]any{"item": "Cuchillo", "source": SourceNarration}}})
	if len(evts) != 0 {
		t.Errorf("expected no events, got %v", eventTypes(evts))
	}
	evts = Apply(s, []types.Effect{{Type: GiveItem, Params: map[string]any{"item": "Estaca", "source": SourceNarration}}})
	if len(evts) != 1 || evts[0].Type != EventItemAdded {
		t.Errorf("expected item_added for a new narrated item, got %v", eventTypes(evts))
	}
}

func TestApply_RemoveItem(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{
		{Type: RemoveItem, Params: map[string]any{"item": "Linterna"}},
		{Type: RemoveItem, Params: map[string]any{"item": "Espada"}},
	})
	got := eventTypes(evts)
	if len(got) != 2 || got[0] != EventItemRemoved || got[1] != EventItemMissing {
		t.Fatalf("expected [item_removed item_missing], got %v", got)
	}
	if len(s.Inventory) != 1 || s.Inventory[0].Name != "Cuchillo" {
		t.Errorf("expected only Cuchillo left, got %+v", s.Inventory)
	}
}

func TestApply_ReplaceItem(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{
		{Type: ReplaceItem, Params: map[string]any{"old": "Cuchillo", "item": "Cuchillo afilado"}},
	})
	if len(evts) != 1 || evts[0].Type != EventItemReplaced {
		t.Fatalf("expected item_replaced, got %v", eventTypes(evts))
	}
	if s.Inventory[0].Name != "Cuchillo afilado" {
		t.Errorf("expected replacement in first slot, got %+v", s.Inventory)
	}

	evts = Apply(s, []types.Effect{
		{Type: ReplaceItem, Params: map[string]any{"old": "Hacha", "item": "Hacha rota"}},
	})
	if len(evts) != 1 || evts[0].Type != EventItemMissing || evts[0].Data["action"] != "replace" {
		t.Errorf("expected item_missing for replace, got %+v", evts)
	}
}

func TestApply_ReplaceItem_NameTaken(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{
		{Type: ReplaceItem, Params: map[string]any{"old": "Cuchillo", "item": "Linterna"}},
	})
	if len(evts) != 1 || evts[0].Type != EventItemNameTaken {
		t.Fatalf("expected item_name_taken, got %+v", evts)
	}
	if evts[0].Data["old"] != "Cuchillo" || evts[0].Data["new"] != "Linterna" {
		t.Errorf("unexpected event data: %v", evts[0].Data)
	}
	if !state.HasItem(s, "Cuchillo") || len(s.Inventory) != 2 {
		t.Errorf("expected inventory unchanged, got %+v", s.Inventory)
	}
}

func TestApply_Damage(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: Damage, Params: map[string]any{"amount": 3}}})
	if s.Player.Health != 7 {
		t.Errorf("expected health 7, got %d", s.Player.Health)
	}
	if len(evts) != 1 || evts[0].Type != EventHealthChanged || evts[0].Data["amount"] != -3 {
		t.Errorf("unexpected events %+v", evts)
	}
}

func TestApply_Damage_Defeat(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: Damage, Params: map[string]any{"amount": 50}}})
	if s.Player.Health != 0 {
		t.Errorf("expected clamp to 0, got %d", s.Player.Health)
	}
	got := eventTypes(evts)
	if len(got) != 2 || got[1] != EventPlayerDefeated {
		t.Errorf("expected player_defeated, got %v", got)
	}

	// Already at zero: no second defeat.
	evts = Apply(s, []types.Effect{{Type: Damage, Params: map[string]any{"amount": 1}}})
	for _, e := range evts {
		if e.Type == EventPlayerDefeated {
			t.Error("defeat emitted twice")
		}
	}
}

func TestApply_Damage_NonPositiveIgnored(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: Damage, Params: map[string]any{"amount": 0}}})
	if len(evts) != 0 || s.Player.Health != 10 {
		t.Errorf("expected no-op, got %v health %d", eventTypes(evts), s.Player.Health)
	}
}

func TestApply_Heal(t *testing.T) {
	s := testState()
	Apply(s, []types.Effect{{Type: Heal, Params: map[string]any{"amount": 15}}})
	if s.Player.Health != 20 {
		t.Errorf("expected heal clamped to 20, got %d", s.Player.Health)
	}
}

func TestApply_SetHealth(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: SetHealth, Params: map[string]any{"health": 4, "max": 5}}})
	if s.Player.Health != 4 || s.Player.MaxHealth != 5 {
		t.Errorf("expected 4/5, got %d/%d", s.Player.Health, s.Player.MaxHealth)
	}
	if len(evts) != 1 || evts[0].Type != EventHealthSet {
		t.Errorf("expected health_set, got %v", eventTypes(evts))
	}
}

func TestApply_SetLevel(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: SetLevel, Params: map[string]any{"level": 4}}})
	if s.Player.Level != 4 {
		t.Errorf("expected level 4, got %d", s.Player.Level)
	}
	if len(evts) != 1 || evts[0].Data["from"] != 1 || evts[0].Data["to"] != 4 {
		t.Errorf("unexpected events %+v", evts)
	}

	evts = Apply(s, []types.Effect{{Type: SetLevel, Params: map[string]any{"level": 4}}})
	if len(evts) != 0 {
		t.Errorf("expected no event for unchanged level, got %v", eventTypes(evts))
	}
}

func TestApply_AddExperience_LevelUp(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: AddExperience, Params: map[string]any{"amount": 16}}})
	got := eventTypes(evts)
	if len(got) != 2 || got[0] != EventExperienceGained || got[1] != EventLevelUp {
		t.Fatalf("expected [experience_gained level_up], got %v", got)
	}
	if evts[1].Data["gained"] != 2 || s.Player.Level != 3 || s.Player.Experience != 1 {
		t.Errorf("expected level 3 xp 1 after gaining 2, got level %d xp %d (%+v)",
			s.Player.Level, s.Player.Experience, evts[1].Data)
	}
}

func TestApply_UnknownEffectIgnored(t *testing.T) {
	s := testState()
	evts := Apply(s, []types.Effect{{Type: "teleport"}})
	if len(evts) != 0 {
		t.Errorf("expected no events, got %v", eventTypes(evts))
	}
}
