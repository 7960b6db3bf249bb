// Package ui wires the CLI commands around the scheduling engine.
package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/rocinante/internal/config"
	"github.com/javiermolinar/rocinante/internal/db"
	"github.com/javiermolinar/rocinante/internal/estimate"
	"github.com/javiermolinar/rocinante/internal/lifeblock"
	"github.com/javiermolinar/rocinante/internal/llm"
	"github.com/javiermolinar/rocinante/internal/queue"
	"github.com/javiermolinar/rocinante/internal/scheduler"
	"github.com/javiermolinar/rocinante/internal/todoist"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config  *config.Config
	root    *cobra.Command
	noColor bool

	store *db.SQLite // opened on first use
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg}

	a.root = &cobra.Command{
		Use:   "rocinante",
		Short: "A constraint-based daily task scheduler for Todoist",
		Long: `Rocinante keeps a single user's daily task calendar in shape.

It allocates non-recurring tasks into free 5-minute slots while respecting
recurring-task occupancy, declared life blocks, and the daily active window,
and recommends what to work on next.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.runCmd())
	a.root.AddCommand(a.watchCmd())
	a.root.AddCommand(a.nextCmd())
	a.root.AddCommand(a.queueCmd())
	a.root.AddCommand(a.blocksCmd())
	a.root.AddCommand(a.historyCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("rocinante %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases resources opened during command execution.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// openStore opens the SQLite store on first use. A failure is reported but
// not fatal: the engine degrades to running without cache and history.
func (a *App) openStore() *db.SQLite {
	if a.store != nil {
		return a.store
	}
	store, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatMuted(fmt.Sprintf("warning: storage unavailable: %v", err)))
		return nil
	}
	a.store = store
	return store
}

func (a *App) todoistClient() *todoist.Client {
	return todoist.NewClient(a.config.Todoist.BaseURL, os.Getenv(a.config.Todoist.TokenEnv))
}

// llmClient builds the inference client. nil means unavailable; every
// consumer has a deterministic fallback.
func (a *App) llmClient() llm.Client {
	client, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.Model, a.config.LLM.BaseURL, a.config.LLM.MaxTokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatMuted(fmt.Sprintf("warning: inference unavailable: %v", err)))
		return nil
	}
	return client
}

func (a *App) newEstimator() *estimate.Estimator {
	var cache estimate.Cache
	if store := a.openStore(); store != nil {
		cache = store
	}
	return estimate.New(a.llmClient(), cache, a.config.Schedule.IntervalMinutes)
}

func (a *App) newRunner() *scheduler.Runner {
	var history scheduler.History
	if store := a.openStore(); store != nil {
		history = store
	}
	return scheduler.NewRunner(
		a.todoistClient(),
		a.newEstimator(),
		lifeblock.NewStore(a.config.Storage.BlocksPath),
		a.config.Grid(),
		time.Duration(a.config.Schedule.RunIntervalMinutes)*time.Minute,
		history,
	)
}

func (a *App) newQueue() *queue.Engine {
	return queue.New(a.llmClient(), a.newEstimator())
}
