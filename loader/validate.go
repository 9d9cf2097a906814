package loader

import (
	"fmt"
	"strings"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

const maxPool = 10

// validate checks the compiled scenario for consistency.
func validate(sc *Scenario) error {
	ve := &ValidationError{}

	if strings.TrimSpace(sc.Title) == "" {
		ve.Errors = append(ve.Errors, "Scenario.title is required")
	}
	if strings.TrimSpace(sc.SystemPrompt) == "" {
		ve.Errors = append(ve.Errors, "Scenario.system_prompt is required")
	}

	if sc.Player.MaxHealth < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Player.max_health must be positive, got %d", sc.Player.MaxHealth))
	}

	c := sc.Combat
	if c.PlayerPool < 1 || c.PlayerPool > maxPool {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Combat.player_pool must be between 1 and %d, got %d", maxPool, c.PlayerPool))
	}
	if c.EnemyPool < 1 || c.EnemyPool > maxPool {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Combat.enemy_pool must be between 1 and %d, got %d", maxPool, c.EnemyPool))
	}
	if c.XPAward < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Combat.xp_award must not be negative, got %d", c.XPAward))
	}

	seen := map[string]bool{}
	for _, it := range sc.Inventory {
		if strings.TrimSpace(it.Name) == "" {
			ve.Errors = append(ve.Errors, "Item name must not be empty")
			continue
		}
		if seen[it.Name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate item %q", it.Name))
		}
		seen[it.Name] = true
		if it.Type == "" {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("item %q has no type", it.Name))
		}
	}

	if sc.Player.Name == "" {
		ve.Warnings = append(ve.Warnings, "Player.name is empty; it must be supplied at startup")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	sc.Warnings = ve.Warnings
	return nil
}
