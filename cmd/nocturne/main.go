// nocturne is a terminal role-playing adventure narrated by a language
// model, with the game mechanics resolved locally.
// Usage: nocturne [--plain] [--script <file>] [--scenario <dir>] [--offline] ...
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/nocturne/cli"
	"github.com/nathoo/nocturne/config"
	"github.com/nathoo/nocturne/engine"
	"github.com/nathoo/nocturne/loader"
	"github.com/nathoo/nocturne/logging"
	"github.com/nathoo/nocturne/narrator"
	"github.com/nathoo/nocturne/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	plain       bool
	trace       bool
	offline     bool
	scriptFile  string
	scenarioDir string
	configFile  string
	envFile     string
	seed        int64
	rngPosition int64
	playerName  string
	gender      string
	age         string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nocturne",
	Short: "Aventura de rol nocturna narrada por un modelo de lenguaje",
	Long: `nocturne runs a text role-playing adventure. The narration comes from a
chat backend (Azure OpenAI, OpenAI or Gemini); inventory, combat dice,
health and experience are resolved locally and kept in sync with what the
narrator says.

Without --scenario the built-in scenario (a vampire in the Buenos Aires
subway) is played. --offline replays a canned story without credentials.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.Options{File: configFile, EnvFile: envFile})
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogFile, cfg.Debug, logging.NewSessionID())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runAdventure,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&plain, "plain", false, "Use the plain line interface instead of the TUI")
	f.StringVar(&scriptFile, "script", "", "Play the input lines of a file (implies --plain)")
	f.BoolVar(&trace, "trace", false, "Print the mechanics of each turn (plain mode)")
	f.StringVar(&scenarioDir, "scenario", "", "Scenario directory with Lua files (default: built-in)")
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.StringVar(&envFile, "env-file", ".env", "dotenv file with credentials")
	f.BoolVar(&offline, "offline", false, "Use the canned demo narrator; no credentials needed")
	f.Int64Var(&seed, "seed", 0, "Seed for the combat dice (0: time based)")
	f.Int64Var(&rngPosition, "rng-position", 0, "Resume the dice stream at this position (needs --seed; see rng_position in the turn log)")
	f.StringVar(&playerName, "nombre", "", "Player name")
	f.StringVar(&gender, "genero", "", "Player gender")
	f.StringVar(&age, "edad", "", "Player age")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		config.Exitf("Error: %v", err)
	}
}

func runAdventure(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := loadScenario()
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	for _, w := range sc.Warnings {
		logger.Warn("scenario warning", zap.String("warning", w))
	}

	n, err := buildNarrator(ctx, sc)
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithPlayer(playerName, gender, age),
	}
	switch {
	case seed != 0 && rngPosition > 0:
		opts = append(opts, engine.WithRNGState(seed, rngPosition))
	case seed != 0:
		opts = append(opts, engine.WithSeed(seed))
	case rngPosition > 0:
		return fmt.Errorf("--rng-position needs --seed")
	}
	eng := engine.New(sc, n, opts...)

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		return c.Run(ctx)
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng)
		c.Trace = trace
		return c.Run(ctx)
	}

	return tui.Run(ctx, eng)
}

func loadScenario() (*loader.Scenario, error) {
	if scenarioDir == "" {
		return loader.Default()
	}
	return loader.Load(scenarioDir)
}

// buildNarrator returns the demo narrator offline, otherwise the configured
// backend. Invalid credentials end the program before any UI starts.
func buildNarrator(ctx context.Context, sc *loader.Scenario) (narrator.Narrator, error) {
	if offline {
		logger.Info("offline mode: demo narrator")
		return narrator.Demo(), nil
	}
	if err := cfg.Validate(); err != nil {
		config.Exitf("Configuración inválida:\n%v\n\nUsá --offline para jugar sin credenciales.", err)
	}
	if sc.ModelHint != "" && cfg.Model == config.Default().Model && cfg.Provider != config.ProviderGemini {
		cfg.Model = sc.ModelHint
	}
	n, err := narrator.FromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating narrator: %w", err)
	}
	return n, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
