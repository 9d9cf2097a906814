package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathoo/nocturne/engine/effects"
	"github.com/nathoo/nocturne/engine/state"
	"github.com/nathoo/nocturne/types"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		event types.Event
		want  []types.Notice
	}{
		{
			name:  "item added",
			event: types.Event{Type: effects.EventItemAdded, Data: map[string]any{"item": "Linterna"}},
			want:  []types.Notice{{Kind: types.NoticeInventory, Text: `Agregaste "Linterna" al inventario.`}},
		},
		{
			name:  "duplicate is a notice",
			event: types.Event{Type: effects.EventItemDuplicate, Data: map[string]any{"item": "Cuchillo"}},
			want:  []types.Notice{{Kind: types.NoticeInventory, Text: `Ya tenés "Cuchillo" en el inventario.`}},
		},
		{
			name:  "missing is a notice",
			event: types.Event{Type: effects.EventItemMissing, Data: map[string]any{"item": "Espada"}},
			want:  []types.Notice{{Kind: types.NoticeInventory, Text: `No tenés "Espada" en el inventario.`}},
		},
		{
			name:  "replace onto a held name",
			event: types.Event{Type: effects.EventItemNameTaken, Data: map[string]any{"old": "Cuchillo", "new": "Linterna"}},
			want: []types.Notice{{Kind: types.NoticeInventory,
				Text: `No podés cambiar "Cuchillo" por "Linterna": ya tenés "Linterna" en el inventario.`}},
		},
		{
			name:  "damage",
			event: types.Event{Type: effects.EventHealthChanged, Data: map[string]any{"amount": -3, "health": 7, "max": 20}},
			want:  []types.Notice{{Kind: types.NoticeHealth, Text: "Recibiste 3 de daño. Vida: 7/20."}},
		},
		{
			name:  "heal",
			event: types.Event{Type: effects.EventHealthChanged, Data: map[string]any{"amount": 2, "health": 9, "max": 20}},
			want:  []types.Notice{{Kind: types.NoticeHealth, Text: "Recuperaste 2 de vida. Vida: 9/20."}},
		},
		{
			name:  "unchanged restatement is silent",
			event: types.Event{Type: effects.EventHealthSet, Data: map[string]any{"health": 7, "max": 20, "previous": 7}},
			want:  nil,
		},
		{
			name:  "downgrade",
			event: types.Event{Type: effects.EventLevelSet, Data: map[string]any{"from": 5, "to": 3}},
			want:  []types.Notice{{Kind: types.NoticeProgress, Text: "Bajaste al nivel 3."}},
		},
		{
			name:  "level up",
			event: types.Event{Type: effects.EventLevelUp, Data: map[string]any{"level": 2, "gained": 1}},
			want:  []types.Notice{{Kind: types.NoticeProgress, Text: "¡Subiste al nivel 2!"}},
		},
		{
			name:  "unknown event skipped",
			event: types.Event{Type: "combat_started"},
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe([]types.Event{tt.event})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Describe mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDescribe_FromEffects(t *testing.T) {
	s := state.NewState(types.Player{}, nil)
	evts := effects.Apply(s, []types.Effect{
		{Type: effects.GiveItem, Params: map[string]any{"item": "Estaca"}},
		{Type: effects.AddExperience, Params: map[string]any{"amount": 5}},
	})
	notices := Describe(evts)
	if len(notices) != 3 {
		t.Fatalf("expected 3 notices, got %+v", notices)
	}
	if notices[0].Kind != types.NoticeInventory || notices[1].Kind != types.NoticeProgress || notices[2].Kind != types.NoticeProgress {
		t.Errorf("unexpected kinds: %+v", notices)
	}
}
