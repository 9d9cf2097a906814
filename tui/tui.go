package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/nocturne/cli"
	"github.com/nathoo/nocturne/engine"
	"github.com/nathoo/nocturne/types"
)

// sidebarWidth is the width of the inventory panel, borders included.
const sidebarWidth = 30

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text string
	kind lineKind
}

// Model is the Bubble Tea model for the nocturne TUI.
type Model struct {
	ctx    context.Context
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)
	snap     types.Snapshot

	width    int
	height   int
	ready    bool
	busy     bool // a narrator call is in flight
	trace    bool
	quitting bool
}

// turnMsg carries the outcome of Start or Step back into the Update loop.
type turnMsg struct {
	result types.Result
	err    error
	start  bool
}

// New creates a TUI model wired to the given engine.
func New(ctx context.Context, eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "¿Qué hacés? (/ayuda para comandos)"
	ti.Focus()
	ti.CharLimit = 512
	ti.PromptStyle = styleInputPrompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleSpinner

	return Model{
		ctx:      ctx,
		engine:   eng,
		input:    ti,
		spinner:  sp,
		renderer: newRenderer(80),
		history:  NewHistory(100),
		snap:     eng.Snapshot(),
		busy:     true,
	}
}

func newRenderer(width int) *glamour.TermRenderer {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	return r
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine) error {
	m := New(ctx, eng)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init opens the adventure in the background.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.startCmd())
}

func (m Model) startCmd() tea.Cmd {
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		result, err := eng.Start(ctx)
		return turnMsg{result: result, err: err, start: true}
	}
}

func (m Model) stepCmd(input string) tea.Cmd {
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		result, err := eng.Step(ctx, input)
		return turnMsg{result: result, err: err}
	}
}

// Update handles messages (key presses, window resize, turn results).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}
		vpWidth := m.narrativeWidth()

		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}
		m.input.Width = m.width - 4
		if m.renderer != nil {
			m.renderer = newRenderer(vpWidth - 2)
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case spinner.TickMsg:
		if m.busy {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
		return m, nil

	case turnMsg:
		m = m.applyTurn(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m.snap = m.engine.Snapshot()
		m = m.appendLines(input, output, kindSystem)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	m = m.appendLines(input, nil, kindNarration)
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.stepCmd(input))
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	if strings.EqualFold(strings.Fields(input)[0], "/trace") {
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace activado."}, false
		}
		return []string{"Trace desactivado."}, false
	}
	return cli.Meta(m.engine, input)
}

// applyTurn records a finished Start or Step.
func (m Model) applyTurn(msg turnMsg) Model {
	m.busy = false
	if msg.err != nil {
		text := fmt.Sprintf("El narrador no respondió: %v. Podés volver a intentarlo.", msg.err)
		if msg.start {
			text = fmt.Sprintf("No se pudo iniciar la aventura: %v", msg.err)
		}
		return m.appendLines("", []string{text}, kindError)
	}

	m.snap = msg.result.Snapshot
	var notices []string
	for _, n := range msg.result.Notices {
		notices = append(notices, n.Text)
	}
	if msg.result.Combat != nil {
		notices = append(notices, msg.result.Combat.Summary)
	}
	m = m.appendLines("", notices, kindSystem)
	if msg.result.Narration != "" {
		m = m.appendLines("", []string{msg.result.Narration}, kindNarration)
	}
	if m.trace {
		m = m.appendLines("", cli.TraceLines(msg.result), kindTrace)
	}
	return m
}

// appendLines adds lines to the narrative and refreshes the viewport.
func (m Model) appendLines(input string, lines []string, kind lineKind) Model {
	if input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + input, kind: kindInput})
	}
	if len(lines) == 0 {
		m.refreshViewport()
		return m
	}
	for _, line := range lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: kind})
	}

	// Blank line separator between blocks.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.narrativeWidth()

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		if rl.kind == kindNarration {
			styled = append(styled, m.renderNarration(rl.text, width))
			continue
		}
		styled = append(styled, renderLineKind(wordWrap(rl.text, width), rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderNarration renders the narrator's markdown, falling back to plain
// wrapping when no renderer is available.
func (m *Model) renderNarration(text string, width int) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	var wrapped []string
	for _, para := range strings.Split(text, "\n") {
		wrapped = append(wrapped, wordWrap(para, width))
	}
	return styleNarration.Render(strings.Join(wrapped, "\n"))
}

// narrativeWidth is the viewport width left of the inventory panel.
func (m Model) narrativeWidth() int {
	w := m.width
	if w >= sidebarWidth*2 {
		w -= sidebarWidth
	}
	if w < 10 {
		w = 10
	}
	return w
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Widths are counted in cells, not bytes.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := lipgloss.Width(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: narrative + inventory panel, status
// bar and input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Cargando..."
	}

	body := m.viewport.View()
	if m.width >= sidebarWidth*2 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderInventory(m.viewport.Height))
	}
	return body + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
