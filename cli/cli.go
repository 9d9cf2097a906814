// Package cli provides the plain line-mode front end and the slash
// commands shared with the terminal UI.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/nocturne/engine"
	"github.com/nathoo/nocturne/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run opens the adventure, then loops: prompt → input → dispatch → output.
// A failed turn is reported and the player may send it again. Run returns
// when input ends, /salir is entered, or ctx is cancelled.
func (c *CLI) Run(ctx context.Context) error {
	if title := c.Engine.Scenario.Title; title != "" {
		c.printLine(title)
		c.printLine("")
	}

	result, err := c.Engine.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting adventure: %w", err)
	}
	c.printResult(result)

	scanner := bufio.NewScanner(c.In)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return nil
			}
			continue
		}

		result, err := c.Engine.Step(ctx, input)
		if err != nil {
			c.printSystem(fmt.Sprintf("El narrador no respondió: %v. Podés volver a intentarlo.", err))
			continue
		}
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
	return scanner.Err()
}

// handleMeta dispatches meta-commands. Returns true if the session should end.
func (c *CLI) handleMeta(input string) bool {
	if strings.EqualFold(strings.Fields(input)[0], "/trace") {
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace activado.")
		} else {
			c.printSystem("Trace desactivado.")
		}
		return false
	}

	lines, quit := Meta(c.Engine, input)
	for _, line := range lines {
		c.printSystem(line)
	}
	return quit
}

// printResult prints the local notices, then the narration.
func (c *CLI) printResult(r types.Result) {
	for _, n := range r.Notices {
		c.printSystem(n.Text)
	}
	if r.Combat != nil {
		c.printSystem(r.Combat.Summary)
	}
	if r.Narration != "" {
		c.printLine("")
		c.printLine(r.Narration)
		c.printLine("")
	}
}

func (c *CLI) printTrace(r types.Result) {
	for _, line := range TraceLines(r) {
		c.printLine(line)
	}
}

// TraceLines describes the mechanics of a turn for the /trace toggle.
func TraceLines(r types.Result) []string {
	lines := []string{fmt.Sprintf("[trace] Intent: %d %q", r.Intent.Kind, r.Intent.Item)}
	if len(r.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(r.Effects)))
		for _, e := range r.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(r.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(r.Events)))
		for _, e := range r.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}

func (c *CLI) printLine(s string) {
	fmt.Fprintln(c.Out, s)
}

func (c *CLI) print(s string) {
	fmt.Fprint(c.Out, s)
}

func (c *CLI) printSystem(s string) {
	fmt.Fprintf(c.Out, "[%s]\n", s)
}
