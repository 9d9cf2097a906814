package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/nathoo/nocturne/engine/effects"
	"github.com/nathoo/nocturne/engine/lexicon"
	"github.com/nathoo/nocturne/engine/state"
	"github.com/nathoo/nocturne/loader"
	"github.com/nathoo/nocturne/narrator"
	"github.com/nathoo/nocturne/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testScenario builds a small scenario: one starting item and pools sized
// so fixed rolls give known results.
func testScenario() *loader.Scenario {
	return &loader.Scenario{
		Title:        "Prueba",
		SystemPrompt: "Narrador para {{.Name}}.",
		Opening:      "Iniciemos",
		Player:       types.Player{Name: "Lucía", MaxHealth: 20},
		Inventory: []types.Item{
			{Name: "Linterna", Type: "herramienta", Material: "aluminio"},
		},
		Combat: loader.Combat{PlayerPool: 4, EnemyPool: 3, XPAward: 3},
	}
}

func newEngine(t *testing.T, replies ...string) (*Engine, *narrator.Scripted) {
	t.Helper()
	n := narrator.NewScripted(replies...)
	return New(testScenario(), n, WithSeed(1)), n
}

func step(t *testing.T, e *Engine, input string) types.Result {
	t.Helper()
	res, err := e.Step(context.Background(), input)
	if err != nil {
		t.Fatalf("Step(%q): %v", input, err)
	}
	return res
}

func hasNotice(res types.Result, fragment string) bool {
	for _, n := range res.Notices {
		if strings.Contains(n.Text, fragment) {
			return true
		}
	}
	return false
}

func TestStart(t *testing.T) {
	e, n := newEngine(t, "Despertás en el andén.\n\nVida actual: 18/20")
	res, err := e.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	want := []types.Message{
		{Role: types.RoleSystem, Content: "Narrador para Lucía."},
		{Role: types.RoleUser, Content: "Iniciemos"},
		{Role: types.RoleAssistant, Content: "Despertás en el andén.\n\nVida actual: 18/20"},
	}
	if diff := cmp.Diff(want, e.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if len(n.Calls) != 1 || len(n.Calls[0]) != 2 {
		t.Errorf("expected one call with system + opening, got %v", n.Calls)
	}
	if e.State.Player.Health != 18 {
		t.Errorf("expected opening reply reconciled to 18, got %d", e.State.Player.Health)
	}
	if res.Narration == "" || res.Snapshot.Player.Health != 18 {
		t.Errorf("unexpected result %+v", res)
	}

	if _, err := e.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStep_WithoutStartAddsSystemMessage(t *testing.T) {
	e, n := newEngine(t, "El túnel está oscuro.")
	step(t, e, "Camino hacia el túnel")

	h := e.History()
	if len(h) != 3 || h[0].Role != types.RoleSystem || h[1].Role != types.RoleUser || h[2].Role != types.RoleAssistant {
		t.Fatalf("unexpected history %+v", h)
	}
	if n.LastUserMessage() != "Camino hacia el túnel" {
		t.Errorf("free narrative should be forwarded unchanged, got %q", n.LastUserMessage())
	}
	if e.State.TurnCount != 1 {
		t.Errorf("expected turn 1, got %d", e.State.TurnCount)
	}
}

func TestStep_EmptyInput(t *testing.T) {
	e, n := newEngine(t)
	res := step(t, e, "   ")
	if len(n.Calls) != 0 {
		t.Error("empty input must not reach the narrator")
	}
	if len(res.Notices) != 1 || res.Notices[0].Kind != types.NoticeInfo {
		t.Errorf("expected an info notice, got %+v", res.Notices)
	}
}

func TestStep_AcquireTwiceKeepsOne(t *testing.T) {
	e, n := newEngine(t, "Levantás el cuchillo.", "Ya lo tenés en la mano.")

	res := step(t, e, "Agarro el cuchillo")
	if res.Intent != (types.Intent{Kind: types.IntentAcquire, Item: "Cuchillo"}) {
		t.Errorf("unexpected intent %+v", res.Intent)
	}
	if !hasNotice(res, `Agregaste "Cuchillo"`) {
		t.Errorf("expected add notice, got %+v", res.Notices)
	}
	msg := n.LastUserMessage()
	if !strings.HasPrefix(msg, "Agarro el cuchillo\n\n"+MechanicsTag) || !strings.Contains(msg, `Obtuvo "Cuchillo".`) {
		t.Errorf("unexpected outgoing message %q", msg)
	}

	res = step(t, e, "Tomo el cuchillo")
	if !hasNotice(res, `Ya tenés "Cuchillo"`) {
		t.Errorf("expected duplicate notice, got %+v", res.Notices)
	}

	count := 0
	for _, it := range e.State.Inventory {
		if it.Name == "Cuchillo" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one Cuchillo, got %d", count)
	}
}

func TestStep_Discard(t *testing.T) {
	e, _ := newEngine(t, "La linterna rueda por el andén.", "No tenés nada que soltar.")

	step(t, e, "Suelto la linterna")
	if state.HasItem(e.State, "Linterna") {
		t.Error("expected Linterna removed")
	}

	res := step(t, e, "Suelto la linterna")
	if !hasNotice(res, `No tenés "Linterna"`) {
		t.Errorf("expected missing notice, got %+v", res.Notices)
	}
}

func TestStep_AttackResolvesLocally(t *testing.T) {
	n := narrator.NewScripted("Tu golpe lo hace retroceder. Recibes 5 puntos de daño. Vida actual: 20/20")
	e := New(testScenario(), n, WithRoller(seq(7, 9, 3, 6, 4, 6, 2)))

	res := step(t, e, "Ataco con la espada")
	if res.Intent.Kind != types.IntentAttack {
		t.Fatalf("expected attack, got %+v", res.Intent)
	}
	if res.Combat == nil {
		t.Fatal("expected a combat outcome")
	}
	if res.Combat.DamageToEnemy != 2 || res.Combat.DamageToPlayer != 0 {
		t.Errorf("expected 2/0 damage, got %d/%d", res.Combat.DamageToEnemy, res.Combat.DamageToPlayer)
	}
	if e.State.Player.Health != 20 {
		t.Errorf("damage callout of a resolved combat must be skipped, health %d", e.State.Player.Health)
	}
	if e.State.Player.Experience != 3 {
		t.Errorf("expected 3 xp, got %d", e.State.Player.Experience)
	}
	msg := n.LastUserMessage()
	if !strings.Contains(msg, MechanicsTag) || !strings.Contains(msg, "[7, 9, 3, 6]") {
		t.Errorf("outgoing message lacks the combat note: %q", msg)
	}
}

func TestStep_AttackDamagesPlayer(t *testing.T) {
	n := narrator.NewScripted("El ghoul te desgarra.")
	e := New(testScenario(), n, WithRoller(seq(1, 1, 1, 1, 9, 9, 9)))

	res := step(t, e, "golpeo al ghoul")
	if e.State.Player.Health != 17 {
		t.Errorf("expected 17 health, got %d", e.State.Player.Health)
	}
	if !hasNotice(res, "Recibiste 3 de daño") {
		t.Errorf("expected damage notice, got %+v", res.Notices)
	}
}

func TestStep_AttackLevelUp(t *testing.T) {
	n := narrator.NewScripted("ok")
	e := New(testScenario(), n, WithRoller(seq(1)))
	e.State.Player.Experience = 4

	res := step(t, e, "ataco")
	if res.Combat.LevelsGained != 1 || e.State.Player.Level != 2 {
		t.Errorf("expected level up, got gained %d level %d", res.Combat.LevelsGained, e.State.Player.Level)
	}
}

func TestStep_CanonicalizesOutgoingOnly(t *testing.T) {
	e, n := newEngine(t, "...")
	res := step(t, e, "Mato al guardia")
	if res.Intent.Kind != types.IntentAttack {
		t.Errorf("expected attack intent, got %+v", res.Intent)
	}
	if !strings.HasPrefix(n.LastUserMessage(), "Ataco al guardia") {
		t.Errorf("expected canonicalized outgoing text, got %q", n.LastUserMessage())
	}
	if res.Input != "Mato al guardia" {
		t.Errorf("result should echo raw input, got %q", res.Input)
	}
}

func TestStep_ReconcilesNarration(t *testing.T) {
	e, _ := newEngine(t, `Recibes 3 puntos de daño. Obtienes "Linterna".`)
	e.State.Player.Health = 10
	e.State.Inventory = nil

	res := step(t, e, "Miro alrededor")
	if e.State.Player.Health != 7 {
		t.Errorf("expected health 7, got %d", e.State.Player.Health)
	}
	if len(e.State.Inventory) != 1 || e.State.Inventory[0].Name != "Linterna" {
		t.Errorf("expected one Linterna, got %+v", e.State.Inventory)
	}
	if res.Snapshot.Player.Health != 7 {
		t.Errorf("snapshot not refreshed: %+v", res.Snapshot.Player)
	}
}

func TestStep_LevelCalloutCannotLower(t *testing.T) {
	e, _ := newEngine(t, "Nivel 2")
	e.State.Player.Level = 3
	step(t, e, "sigo caminando")
	if e.State.Player.Level != 3 {
		t.Errorf("expected level 3, got %d", e.State.Player.Level)
	}
}

func TestStep_QueryLevel(t *testing.T) {
	e, n := newEngine(t, "Sos un neonato.")
	res := step(t, e, "¿Qué nivel tengo?")
	if !hasNotice(res, "Sos nivel 1") {
		t.Errorf("expected level notice, got %+v", res.Notices)
	}
	if !strings.Contains(n.LastUserMessage(), "El jugador es nivel 1.") {
		t.Errorf("expected level note, got %q", n.LastUserMessage())
	}
}

func TestStep_NarratorFailureLeavesStateUnchanged(t *testing.T) {
	boom := errors.New("timeout")
	calls := 0
	n := narrator.Func(func(ctx context.Context, m []types.Message) (string, error) {
		calls++
		if calls == 1 {
			return "Despertás.", nil
		}
		return "", boom
	})
	e := New(testScenario(), n, WithRoller(seq(1, 1, 1, 1, 9, 9, 9)))
	if _, err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	before := state.Clone(e.State)

	for _, input := range []string{"Agarro el cuchillo", "Suelto la linterna", "Ataco al ghoul"} {
		_, err := e.Step(context.Background(), input)
		if !errors.Is(err, boom) {
			t.Fatalf("Step(%q): expected wrapped narrator error, got %v", input, err)
		}
		if diff := cmp.Diff(before, e.State); diff != "" {
			t.Errorf("Step(%q) changed state on failure (-before +after):\n%s", input, diff)
		}
	}
}

func TestStep_ScriptExhausted(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.Step(context.Background(), "hola")
	if !errors.Is(err, narrator.ErrScriptExhausted) {
		t.Errorf("expected ErrScriptExhausted, got %v", err)
	}
	if len(e.History()) != 0 {
		t.Errorf("history must stay empty, got %d messages", len(e.History()))
	}
}

func TestLocalCommands(t *testing.T) {
	e, n := newEngine(t)

	notices := e.AddItem("la estaca")
	if len(notices) != 1 || !state.HasItem(e.State, "Estaca") {
		t.Errorf("AddItem: %+v, inventory %+v", notices, e.State.Inventory)
	}

	notices = e.ReplaceItem("Linterna", "Linterna rota")
	if len(notices) != 1 || notices[0].Text != `Reemplazaste "Linterna" por "Linterna rota".` {
		t.Errorf("ReplaceItem notices: %+v", notices)
	}
	it, ok := e.Item("linterna rota")
	if !ok || it.Material != "aluminio" || e.State.Inventory[0].Name != "Linterna rota" {
		t.Errorf("replacement should keep attributes and position, got %+v", e.State.Inventory)
	}

	notices = e.DiscardItem("Espada")
	if len(notices) != 1 || notices[0].Kind != types.NoticeInventory {
		t.Errorf("DiscardItem missing: %+v", notices)
	}
	e.DiscardItem("Estaca")
	if state.HasItem(e.State, "Estaca") {
		t.Error("expected Estaca removed")
	}

	if len(n.Calls) != 0 {
		t.Error("local commands must not call the narrator")
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	e, _ := newEngine(t)
	snap := e.Snapshot()
	snap.Inventory[0].Name = "X"
	snap.Player.Health = 1
	if e.State.Inventory[0].Name != "Linterna" || e.State.Player.Health != 20 {
		t.Error("snapshot must not alias live state")
	}
}

func TestNew_PlayerOverrides(t *testing.T) {
	e := New(testScenario(), narrator.NewScripted(), WithPlayer("Tomás", "masculino", ""))
	p := e.State.Player
	if p.Name != "Tomás" || p.Gender != "masculino" || p.Age != "" {
		t.Errorf("unexpected player %+v", p)
	}
}

func TestCombatRulesFromScenario(t *testing.T) {
	if got := combatRules(loader.Combat{}); got != DefaultCombatRules() {
		t.Errorf("zero combat should use defaults, got %+v", got)
	}
	got := combatRules(loader.Combat{PlayerPool: 5, EnemyPool: 0, XPAward: 0})
	if got != (CombatRules{PlayerPool: 5, EnemyPool: DefaultEnemyPool, XPAward: 0}) {
		t.Errorf("unexpected rules %+v", got)
	}
}

func TestEffectsEventsAreReported(t *testing.T) {
	e, _ := newEngine(t, "ok")
	res := step(t, e, "Agarro la estaca")
	if len(res.Effects) != 1 || res.Effects[0].Type != effects.GiveItem {
		t.Errorf("unexpected effects %+v", res.Effects)
	}
	if len(res.Events) != 1 || res.Events[0].Type != effects.EventItemAdded {
		t.Errorf("unexpected events %+v", res.Events)
	}
}

func TestReplaceItem_NameTaken(t *testing.T) {
	e, _ := newEngine(t)
	e.AddItem("cuchillo")

	notices := e.ReplaceItem("Cuchillo", "Linterna")
	want := []types.Notice{{
		Kind: types.NoticeInventory,
		Text: `No podés cambiar "Cuchillo" por "Linterna": ya tenés "Linterna" en el inventario.`,
	}}
	if diff := cmp.Diff(want, notices); diff != "" {
		t.Errorf("notices mismatch (-want +got):\n%s", diff)
	}
	if !state.HasItem(e.State, "Cuchillo") || len(e.State.Inventory) != 2 {
		t.Errorf("expected inventory unchanged, got %+v", e.State.Inventory)
	}
}

func TestStep_RestatedGrantHasNoDuplicateNotice(t *testing.T) {
	e, _ := newEngine(t, "Despertás.", `Lo levantás. Obtienes "Cuchillo".`)
	if _, err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	res := step(t, e, "Agarro el cuchillo")
	if !hasNotice(res, `Agregaste "Cuchillo"`) {
		t.Errorf("expected add notice, got %+v", res.Notices)
	}
	if hasNotice(res, "Ya tenés") {
		t.Errorf("expected no duplicate notice, got %+v", res.Notices)
	}
	if len(e.State.Inventory) != 2 {
		t.Errorf("expected one Cuchillo added, got %+v", e.State.Inventory)
	}
}

func TestAddItem_UsesScenarioLexicon(t *testing.T) {
	sc := testScenario()
	lex := lexicon.Spanish()
	lex.Extend(lexicon.Lexicon{Determiners: []string{"nuestra"}})
	sc.Lexicon = lex
	e := New(sc, narrator.NewScripted(), WithSeed(1))

	e.AddItem("nuestra bufanda")
	if !state.HasItem(e.State, "Bufanda") {
		t.Errorf("expected scenario determiner stripped, got %+v", e.State.Inventory)
	}
}

func TestWithRNGState_ResumesDiceStream(t *testing.T) {
	a := New(testScenario(), narrator.NewScripted(), WithSeed(42))
	for i := 0; i < 5; i++ {
		a.RNG.Roll(DieSides)
	}
	b := New(testScenario(), narrator.NewScripted(), WithRNGState(42, a.RNG.Position()))
	if b.RNG.Position() != 5 || b.RNG.Seed() != 42 {
		t.Fatalf("expected seed 42 position 5, got %d/%d", b.RNG.Seed(), b.RNG.Position())
	}
	for i := 0; i < 10; i++ {
		if x, y := a.RNG.Roll(DieSides), b.RNG.Roll(DieSides); x != y {
			t.Fatalf("roll %d diverged: %d vs %d", i, x, y)
		}
	}
}
