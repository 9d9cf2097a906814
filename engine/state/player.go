package state

import "github.com/nathoo/nocturne/types"

// XPNeeded returns the experience required to advance from level.
func XPNeeded(level int) int {
	return 5 * level
}

// ApplyDamage lowers health by amount, clamping to [0, MaxHealth].
// Negative amounts heal. Returns the resulting health.
func ApplyDamage(p *types.Player, amount int) int {
	return setClamped(p, p.Health-amount)
}

// Heal raises health by amount, clamping to MaxHealth.
func Heal(p *types.Player, amount int) int {
	return setClamped(p, p.Health+amount)
}

// SetHealth restates health and its cap directly. It is the authoritative
// override used when the narration asserts "X/Y"; a cap below 1 is ignored
// and health is kept within the new cap.
func SetHealth(p *types.Player, health, maxHealth int) {
	if maxHealth >= 1 {
		p.MaxHealth = maxHealth
	}
	setClamped(p, health)
}

func setClamped(p *types.Player, hp int) int {
	if hp < 0 {
		hp = 0
	}
	if hp > p.MaxHealth {
		hp = p.MaxHealth
	}
	p.Health = hp
	return hp
}

// AddExperience awards amount and cascades level-ups while the surplus
// covers the current threshold. At MaxLevel the surplus is kept uncapped.
// Returns the number of levels gained.
func AddExperience(p *types.Player, amount int) int {
	if amount <= 0 {
		return 0
	}
	p.Experience += amount
	gained := 0
	for p.Level < MaxLevel && p.Experience >= XPNeeded(p.Level) {
		p.Experience -= XPNeeded(p.Level)
		p.Level++
		gained++
	}
	return gained
}

// SetLevel moves the player to level, clamped to [1, MaxLevel]. Experience
// restarts at zero so the threshold invariant holds on the new level.
// Returns false when the level did not change.
func SetLevel(p *types.Player, level int) bool {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	if level == p.Level {
		return false
	}
	p.Level = level
	p.Experience = 0
	return true
}

// IsDefeated reports whether the player has no health left.
func IsDefeated(p *types.Player) bool {
	return p.Health <= 0
}
