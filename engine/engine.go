// Package engine provides the Step() orchestrator that wires together
// parsing, local resolution, the narrator and reconciliation into a single
// turn.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/nocturne/engine/effects"
	"github.com/nathoo/nocturne/engine/events"
	"github.com/nathoo/nocturne/engine/parser"
	"github.com/nathoo/nocturne/engine/reconcile"
	"github.com/nathoo/nocturne/engine/state"
	"github.com/nathoo/nocturne/loader"
	"github.com/nathoo/nocturne/narrator"
	"github.com/nathoo/nocturne/types"
)

// MechanicsTag marks the part of an outgoing message that reports what the
// engine already resolved, so the narrator does not apply it again.
const MechanicsTag = "[MECÁNICA APLICADA]"

// ErrAlreadyStarted is returned by Start on an engine that has history.
var ErrAlreadyStarted = errors.New("engine: adventure already started")

// Engine holds the scenario and the one mutable session state. It is not
// safe for concurrent use: callers run one turn at a time.
type Engine struct {
	Scenario *loader.Scenario
	State    *types.State
	RNG      *RNG

	narrator   narrator.Narrator
	parser     *parser.Parser
	reconciler *reconcile.Reconciler
	combat     CombatRules
	roller     Roller
	log        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSeed seeds the combat RNG. Without it the seed is time based.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.RNG = NewRNG(seed) }
}

// WithRNGState resumes the dice stream of a logged session: the RNG is
// seeded and advanced to position (the "rng_position" of the last turn log).
func WithRNGState(seed, position int64) Option {
	return func(e *Engine) { e.RNG = RestoreRNG(seed, position) }
}

// WithRoller replaces the dice source (tests).
func WithRoller(r Roller) Option {
	return func(e *Engine) { e.roller = r }
}

// WithPlayer overrides the scenario's player identity. Empty fields keep
// the scenario value.
func WithPlayer(name, gender, age string) Option {
	return func(e *Engine) {
		p := &e.State.Player
		if name != "" {
			p.Name = name
		}
		if gender != "" {
			p.Gender = gender
		}
		if age != "" {
			p.Age = age
		}
	}
}

// New creates an engine for the scenario, narrated by n.
func New(sc *loader.Scenario, n narrator.Narrator, opts ...Option) *Engine {
	e := &Engine{
		Scenario:   sc,
		State:      state.NewState(sc.Player, sc.Inventory),
		narrator:   n,
		parser:     parser.New(sc.Lexicon),
		reconciler: reconcile.New(),
		combat:     combatRules(sc.Combat),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.RNG == nil {
		e.RNG = NewRNG(time.Now().UnixNano())
	}
	if e.roller == nil {
		e.roller = e.RNG
	}
	e.log.Info("engine created",
		zap.String("scenario", sc.Title),
		zap.Int64("seed", e.RNG.Seed()),
		zap.Int("pattern_set", reconcile.PatternSetVersion),
	)
	return e
}

func combatRules(c loader.Combat) CombatRules {
	if c == (loader.Combat{}) {
		return DefaultCombatRules()
	}
	r := CombatRules{PlayerPool: c.PlayerPool, EnemyPool: c.EnemyPool, XPAward: c.XPAward}
	if r.PlayerPool < 1 {
		r.PlayerPool = DefaultPlayerPool
	}
	if r.EnemyPool < 1 {
		r.EnemyPool = DefaultEnemyPool
	}
	if r.XPAward < 0 {
		r.XPAward = 0
	}
	return r
}

// Start opens the adventure: the system message, then the scenario's
// opening line, then the narrator's first reply.
func (e *Engine) Start(ctx context.Context) (types.Result, error) {
	if len(e.State.History) > 0 {
		return types.Result{}, ErrAlreadyStarted
	}
	staged := state.Clone(e.State)
	if err := e.ensureSystem(staged); err != nil {
		return types.Result{}, err
	}
	opening := e.Scenario.Opening
	if opening == "" {
		opening = "Iniciemos"
	}
	staged.History = append(staged.History, types.Message{Role: types.RoleUser, Content: opening})

	reply, err := e.narrate(ctx, staged)
	if err != nil {
		return types.Result{Input: opening}, err
	}
	evts := e.reconciler.Apply(staged, reply, 0)
	staged.History = append(staged.History, types.Message{Role: types.RoleAssistant, Content: reply})
	e.State = staged

	return types.Result{
		Input:     opening,
		Notices:   events.Describe(evts),
		Narration: reply,
		Events:    evts,
		Snapshot:  state.Snapshot(e.State),
	}, nil
}

// Step runs one atomic turn. Local mechanics and reconciliation are staged
// on a copy of the state, which replaces the live state only after the
// narrator answered. On error the live state is exactly as before.
func (e *Engine) Step(ctx context.Context, input string) (types.Result, error) {
	input = strings.TrimSpace(input)
	result := types.Result{Input: input}
	if input == "" {
		result.Notices = []types.Notice{{Kind: types.NoticeInfo, Text: "¿Qué hacés?"}}
		result.Snapshot = state.Snapshot(e.State)
		return result, nil
	}

	staged := state.Clone(e.State)
	if err := e.ensureSystem(staged); err != nil {
		return result, err
	}

	// 1. Classify the raw text; canonicalize only the outgoing copy.
	intent := e.parser.Parse(input)
	result.Intent = intent
	outgoing := e.parser.Canonicalize(input)

	// 2. Resolve locally.
	var effs []types.Effect
	var notes []string
	var skip reconcile.Categories
	switch intent.Kind {
	case types.IntentAcquire:
		effs = append(effs, types.Effect{Type: effects.GiveItem, Params: map[string]any{"item": types.Item{Name: intent.Item}}})
	case types.IntentDiscard:
		effs = append(effs, types.Effect{Type: effects.RemoveItem, Params: map[string]any{"item": intent.Item}})
	case types.IntentAttack:
		o := RollCombat(e.combat.PlayerPoolFor(staged.Player.Level), e.combat.EnemyPool, e.roller, e.combat.XPAward)
		result.Combat = &o
		effs = append(effs, CombatEffects(o)...)
		notes = append(notes, "Combate resuelto. "+o.Summary)
		skip |= reconcile.CategoryDamage
	case types.IntentQueryLevel:
		p := staged.Player
		result.Notices = append(result.Notices, types.Notice{
			Kind: types.NoticeProgress,
			Text: fmt.Sprintf("Sos nivel %d (experiencia %d/%d).", p.Level, p.Experience, state.XPNeeded(p.Level)),
		})
		notes = append(notes, fmt.Sprintf("El jugador es nivel %d.", p.Level))
	}
	localEvts := effects.Apply(staged, effs)
	if result.Combat != nil {
		for _, ev := range localEvts {
			if ev.Type == effects.EventLevelUp {
				result.Combat.LevelsGained, _ = ev.Data["gained"].(int)
			}
		}
	}
	notes = append(notes, mechanicsNotes(localEvts)...)

	// 3. One narrator call with the synthesized note appended.
	content := outgoing
	if len(notes) > 0 {
		p := staged.Player
		notes = append(notes, fmt.Sprintf("Vida actual: %d/%d. Nivel %d.", p.Health, p.MaxHealth, p.Level))
		content = outgoing + "\n\n" + MechanicsTag + " " + strings.Join(notes, " ")
	}
	staged.History = append(staged.History, types.Message{Role: types.RoleUser, Content: content})

	reply, err := e.narrate(ctx, staged)
	if err != nil {
		return result, err
	}

	// 4. Reconcile the prose, then commit.
	recEvts := e.reconciler.Apply(staged, reply, skip)
	staged.History = append(staged.History, types.Message{Role: types.RoleAssistant, Content: reply})
	staged.TurnCount++
	e.State = staged

	allEvts := append(localEvts, recEvts...)
	result.Notices = append(result.Notices, events.Describe(allEvts)...)
	result.Narration = reply
	result.Effects = effs
	result.Events = allEvts
	result.Snapshot = state.Snapshot(e.State)

	e.log.Info("turn",
		zap.Int("turn", e.State.TurnCount),
		zap.Int("intent", int(intent.Kind)),
		zap.String("item", intent.Item),
		zap.Int("local_events", len(localEvts)),
		zap.Int("reconciled_events", len(recEvts)),
		zap.Int("health", e.State.Player.Health),
		zap.Int("level", e.State.Player.Level),
		zap.Int64("rng_position", e.RNG.Position()),
	)
	return result, nil
}

// narrate performs the single backend call of a turn.
func (e *Engine) narrate(ctx context.Context, staged *types.State) (string, error) {
	start := time.Now()
	reply, err := e.narrator.Narrate(ctx, staged.History)
	if err != nil {
		e.log.Warn("narrator failed",
			zap.Int("turn", staged.TurnCount+1),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("narrating turn %d: %w", staged.TurnCount+1, err)
	}
	e.log.Debug("narrator replied",
		zap.Duration("latency", time.Since(start)),
		zap.Int("reply_len", len(reply)),
	)
	return reply, nil
}

// ensureSystem puts the rendered system prompt first in an empty history.
func (e *Engine) ensureSystem(s *types.State) error {
	if len(s.History) > 0 {
		return nil
	}
	prompt, err := e.Scenario.RenderSystemPrompt(s.Player)
	if err != nil {
		return fmt.Errorf("system prompt: %w", err)
	}
	s.History = append(s.History, types.Message{Role: types.RoleSystem, Content: prompt})
	return nil
}

// mechanicsNotes describes locally applied inventory changes for the narrator.
func mechanicsNotes(evts []types.Event) []string {
	var notes []string
	for _, ev := range evts {
		item := fmt.Sprint(ev.Data["item"])
		switch ev.Type {
		case effects.EventItemAdded:
			notes = append(notes, fmt.Sprintf("Obtuvo %q.", item))
		case effects.EventItemDuplicate:
			notes = append(notes, fmt.Sprintf("Ya tenía %q.", item))
		case effects.EventItemRemoved:
			notes = append(notes, fmt.Sprintf("Ya no tiene %q.", item))
		case effects.EventItemMissing:
			notes = append(notes, fmt.Sprintf("No tiene %q.", item))
		}
	}
	return notes
}

// AddItem adds an item without consulting the narrator (/agregar).
func (e *Engine) AddItem(name string) []types.Notice {
	return e.applyLocal(types.Effect{Type: effects.GiveItem, Params: map[string]any{"item": types.Item{Name: e.parser.Normalize(name)}}})
}

// DiscardItem removes an item by exact name (/tirar, /usar).
func (e *Engine) DiscardItem(name string) []types.Notice {
	return e.applyLocal(types.Effect{Type: effects.RemoveItem, Params: map[string]any{"item": strings.TrimSpace(name)}})
}

// ReplaceItem swaps an item in place (/usar viejo -> nuevo). The new item
// keeps the attributes of the old one except its name.
func (e *Engine) ReplaceItem(oldName, newName string) []types.Notice {
	oldName = strings.TrimSpace(oldName)
	item := types.Item{Name: strings.TrimSpace(newName)}
	if i := state.FindItem(e.State, oldName); i >= 0 {
		item = e.State.Inventory[i]
		item.Name = strings.TrimSpace(newName)
	}
	return e.applyLocal(types.Effect{Type: effects.ReplaceItem, Params: map[string]any{"old": oldName, "item": item}})
}

func (e *Engine) applyLocal(eff types.Effect) []types.Notice {
	evts := effects.Apply(e.State, []types.Effect{eff})
	e.log.Info("local command", zap.String("effect", eff.Type), zap.Int("events", len(evts)))
	return events.Describe(evts)
}

// Snapshot returns a copy of the player and inventory for display.
func (e *Engine) Snapshot() types.Snapshot {
	return state.Snapshot(e.State)
}

// History returns a copy of the conversation so far.
func (e *Engine) History() []types.Message {
	return append([]types.Message(nil), e.State.History...)
}

// Item returns the held item with the given name, ignoring case.
func (e *Engine) Item(name string) (types.Item, bool) {
	name = strings.TrimSpace(name)
	for _, it := range e.State.Inventory {
		if strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return types.Item{}, false
}
