package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/nocturne/engine/state"
	"github.com/nathoo/nocturne/types"
)

const (
	// DieSides is the die used for every combat pool.
	DieSides = 10
	// Difficulty is the minimum face counted as a success.
	Difficulty = 6

	DefaultPlayerPool = 3
	DefaultEnemyPool  = 3
	DefaultXPAward    = 3
)

// CombatRules sizes the pools of a locally resolved exchange.
type CombatRules struct {
	PlayerPool int
	EnemyPool  int
	XPAward    int
}

// DefaultCombatRules returns the pools used when a scenario sets none.
func DefaultCombatRules() CombatRules {
	return CombatRules{
		PlayerPool: DefaultPlayerPool,
		EnemyPool:  DefaultEnemyPool,
		XPAward:    DefaultXPAward,
	}
}

// PlayerPoolFor returns the player's pool at the given level: the base
// pool plus one die every five levels.
func (c CombatRules) PlayerPoolFor(level int) int {
	return c.PlayerPool + level/5
}

// CountSuccesses returns how many dice meet the difficulty.
func CountSuccesses(dice []int) int {
	n := 0
	for _, d := range dice {
		if d >= Difficulty {
			n++
		}
	}
	return n
}

// RollCombat rolls both pools and computes the outcome without touching
// any player. Damage is the difference in successes, never negative.
func RollCombat(playerPool, enemyPool int, r Roller, xp int) types.CombatOutcome {
	o := types.CombatOutcome{
		PlayerPool: playerPool,
		EnemyPool:  enemyPool,
		PlayerDice: RollPool(r, playerPool, DieSides),
		EnemyDice:  RollPool(r, enemyPool, DieSides),
	}
	o.PlayerSuccesses = CountSuccesses(o.PlayerDice)
	o.EnemySuccesses = CountSuccesses(o.EnemyDice)
	if d := o.PlayerSuccesses - o.EnemySuccesses; d > 0 {
		o.DamageToEnemy = d
	} else {
		o.DamageToPlayer = -d
	}
	if xp > 0 {
		o.Experience = xp
	}
	o.Summary = CombatSummary(o)
	return o
}

// ResolveCombatTurn rolls one exchange and applies it to p: damage through
// the clamped mutator and the experience award through the cascade.
func ResolveCombatTurn(p *types.Player, playerPool, enemyPool int, r Roller, xp int) types.CombatOutcome {
	o := RollCombat(playerPool, enemyPool, r, xp)
	state.ApplyDamage(p, o.DamageToPlayer)
	o.LevelsGained = state.AddExperience(p, o.Experience)
	return o
}

// CombatEffects converts an outcome into the effects the engine applies.
func CombatEffects(o types.CombatOutcome) []types.Effect {
	var effs []types.Effect
	if o.DamageToPlayer > 0 {
		effs = append(effs, types.Effect{
			Type:   "damage",
			Params: map[string]any{"amount": o.DamageToPlayer, "source": "combat"},
		})
	}
	if o.Experience > 0 {
		effs = append(effs, types.Effect{
			Type:   "add_experience",
			Params: map[string]any{"amount": o.Experience},
		})
	}
	return effs
}

// CombatSummary renders the compact exchange line sent upstream and shown
// to the player.
func CombatSummary(o types.CombatOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tu tirada: %d dados → %s, éxitos: %d (dificultad %d). ",
		o.PlayerPool, formatDice(o.PlayerDice), o.PlayerSuccesses, Difficulty)
	fmt.Fprintf(&b, "Tirada enemiga: %d dados → %s, éxitos: %d. ",
		o.EnemyPool, formatDice(o.EnemyDice), o.EnemySuccesses)
	fmt.Fprintf(&b, "Daño causado: %d. Daño recibido: %d. Experiencia: +%d.",
		o.DamageToEnemy, o.DamageToPlayer, o.Experience)
	return b.String()
}

func formatDice(dice []int) string {
	parts := make([]string, len(dice))
	for i, d := range dice {
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
