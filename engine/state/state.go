// Package state manages the mutable session state: player vitals,
// progression and the inventory store. All mutators keep the player
// invariants (health within [0, MaxHealth], level within [1, MaxLevel],
// experience below the next threshold unless the level is capped).
package state

import (
	"github.com/nathoo/nocturne/types"
)

const (
	// DefaultMaxHealth is the starting health cap of a new player.
	DefaultMaxHealth = 20
	// MaxLevel is the level cap. Experience past the cap is retained.
	MaxLevel = 20
	// DefaultCondition is the condition of an item created without one.
	DefaultCondition = "nuevo"
)

// NewState creates a fresh session state for the given player and starting
// inventory. Missing vitals are filled with defaults.
func NewState(p types.Player, inventory []types.Item) *types.State {
	if p.MaxHealth < 1 {
		p.MaxHealth = DefaultMaxHealth
	}
	if p.Health <= 0 || p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Level > MaxLevel {
		p.Level = MaxLevel
	}
	if p.Experience < 0 {
		p.Experience = 0
	}
	s := &types.State{
		Player:    p,
		Inventory: []types.Item{},
		History:   []types.Message{},
	}
	for _, it := range inventory {
		AddItem(s, it)
	}
	return s
}

// Clone returns a deep copy of s. The engine stages a turn on a clone and
// commits it only when the whole turn succeeds.
func Clone(s *types.State) *types.State {
	c := *s
	c.Inventory = append([]types.Item(nil), s.Inventory...)
	c.History = append([]types.Message(nil), s.History...)
	if c.Inventory == nil {
		c.Inventory = []types.Item{}
	}
	if c.History == nil {
		c.History = []types.Message{}
	}
	return &c
}

// Snapshot copies the displayable part of s.
func Snapshot(s *types.State) types.Snapshot {
	return types.Snapshot{
		Player:    s.Player,
		Inventory: append([]types.Item(nil), s.Inventory...),
		TurnCount: s.TurnCount,
	}
}
