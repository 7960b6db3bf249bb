package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/rocinante/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  rocinante config`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInteractive()
		},
	}
}

func runConfigInteractive() error {
	configPath := config.DefaultConfigPath()
	fmt.Printf("Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	isNew := os.IsNotExist(fileErr)

	if isNew {
		fmt.Println("No config file found. Creating with default values...")
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Created %s\n\n", configPath)
	}

	// Display current config
	printConfig(cfg)

	// Ask if user wants to edit
	if !promptYesNo("\nWould you like to edit the configuration?") {
		return nil
	}

	// Interactive editing
	reader := bufio.NewReader(os.Stdin)

	cfg.Schedule.WeekdayStart = promptValue(reader, "Weekday window start", cfg.Schedule.WeekdayStart)
	cfg.Schedule.WeekendStart = promptValue(reader, "Weekend window start", cfg.Schedule.WeekendStart)
	cfg.Schedule.NightCutoff = promptValue(reader, "Night cutoff", cfg.Schedule.NightCutoff)
	cfg.Schedule.RunIntervalMinutes = promptInt(reader, "Watch interval (minutes)", cfg.Schedule.RunIntervalMinutes)
	cfg.Todoist.BaseURL = promptValue(reader, "Todoist base URL", cfg.Todoist.BaseURL)
	cfg.Todoist.TokenEnv = promptValue(reader, "Todoist token env var", cfg.Todoist.TokenEnv)
	cfg.LLM.Provider = promptValue(reader, "LLM provider", cfg.LLM.Provider)
	cfg.LLM.Model = promptValue(reader, "LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = promptValue(reader, "LLM base URL (Ollama/LM Studio)", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = promptValue(reader, "Database path", cfg.Storage.DBPath)
	cfg.Storage.BlocksPath = promptValue(reader, "Life blocks path", cfg.Storage.BlocksPath)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Save
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("\nConfiguration saved!")
	return nil
}

func printConfig(cfg *config.Config) {
	fmt.Println("Current configuration:")
	fmt.Println("──────────────────────")
	fmt.Println("[schedule]")
	fmt.Printf("  weekday_start        = %s\n", cfg.Schedule.WeekdayStart)
	fmt.Printf("  weekend_start        = %s\n", cfg.Schedule.WeekendStart)
	fmt.Printf("  night_cutoff         = %s\n", cfg.Schedule.NightCutoff)
	fmt.Printf("  interval_minutes     = %d\n", cfg.Schedule.IntervalMinutes)
	fmt.Printf("  run_interval_minutes = %d\n", cfg.Schedule.RunIntervalMinutes)
	fmt.Println("\n[todoist]")
	fmt.Printf("  base_url             = %s\n", cfg.Todoist.BaseURL)
	fmt.Printf("  token_env            = %s\n", cfg.Todoist.TokenEnv)
	fmt.Println("\n[llm]")
	fmt.Printf("  provider             = %s\n", cfg.LLM.Provider)
	fmt.Printf("  model                = %s\n", cfg.LLM.Model)
	fmt.Printf("  base_url             = %s\n", cfg.LLM.BaseURL)
	fmt.Println("\n[storage]")
	fmt.Printf("  db_path              = %s\n", cfg.Storage.DBPath)
	fmt.Printf("  blocks_path          = %s\n", cfg.Storage.BlocksPath)
}

func promptYesNo(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Printf("  %s: ", label)
	} else {
		fmt.Printf("  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, label string, current int) int {
	for {
		value := promptValue(reader, label, fmt.Sprintf("%d", current))
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err == nil && n > 0 {
			return n
		}
		fmt.Printf("  Invalid number %q\n", value)
	}
}
