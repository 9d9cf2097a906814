// Package types defines the shared data structures for the nocturne engine.
// This package contains only type definitions: no logic, no methods.
package types

// IntentKind identifies the mechanical meaning of a player message.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentAcquire
	IntentDiscard
	IntentAttack
	IntentQueryLevel
)

// Intent is the parsed representation of a player message.
type Intent struct {
	Kind IntentKind
	Item string // normalized item name for Acquire/Discard
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// NoticeKind groups user-visible notices for display.
type NoticeKind string

const (
	NoticeInventory NoticeKind = "inventory"
	NoticeHealth    NoticeKind = "health"
	NoticeProgress  NoticeKind = "progress"
	NoticeInfo      NoticeKind = "info"
)

// Notice is a short user-visible line produced by local resolution or
// reconciliation (never an error).
type Notice struct {
	Kind NoticeKind
	Text string
}

// Item is an entry in the player's inventory. Name is the unique key.
type Item struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Function  string `json:"function,omitempty"`
	Dice      string `json:"dice,omitempty"`
	Material  string `json:"material,omitempty"`
	Condition string `json:"condition,omitempty"`
	Weight    string `json:"weight,omitempty"`
}

// Player holds the player's runtime state.
type Player struct {
	Name       string
	Gender     string
	Age        string
	Health     int
	MaxHealth  int
	Level      int
	Experience int
}

// Role tags a message in the conversation sent to the narration backend.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the ordered conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the complete mutable session state.
type State struct {
	Player    Player
	Inventory []Item
	History   []Message
	TurnCount int
}

// CombatOutcome is the result of one combat exchange.
type CombatOutcome struct {
	PlayerPool      int
	EnemyPool       int
	PlayerDice      []int
	EnemyDice       []int
	PlayerSuccesses int
	EnemySuccesses  int
	DamageToEnemy   int
	DamageToPlayer  int
	Experience      int
	LevelsGained    int
	Summary         string
}

// Snapshot is a copy of the displayable state, safe to hold across turns.
type Snapshot struct {
	Player    Player
	Inventory []Item
	TurnCount int
}

// Result is the output of a single game step.
type Result struct {
	Input     string
	Intent    Intent
	Notices   []Notice
	Combat    *CombatOutcome
	Narration string
	Effects   []Effect
	Events    []Event
	Snapshot  Snapshot
}
