// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/rocinante/internal/timegrid"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Todoist  TodoistConfig  `toml:"todoist"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
}

// ScheduleConfig holds the daily active window and run cadence.
type ScheduleConfig struct {
	WeekdayStart       string `toml:"weekday_start"`        // e.g., "16:15"
	WeekendStart       string `toml:"weekend_start"`        // e.g., "09:00"
	NightCutoff        string `toml:"night_cutoff"`         // e.g., "20:45"
	IntervalMinutes    int    `toml:"interval_minutes"`     // slot width, e.g., 5
	RunIntervalMinutes int    `toml:"run_interval_minutes"` // watch cadence, e.g., 5
}

// TodoistConfig holds task store settings.
type TodoistConfig struct {
	BaseURL  string `toml:"base_url"`  // e.g., "https://api.todoist.com/rest/v2"
	TokenEnv string `toml:"token_env"` // env var holding the API token
}

// LLMConfig holds inference provider settings.
type LLMConfig struct {
	Provider  string `toml:"provider"`   // "openrouter", "ollama", "lmstudio"
	Model     string `toml:"model"`      // e.g., "moonshotai/kimi-k2"
	BaseURL   string `toml:"base_url"`   // provider endpoint
	MaxTokens int    `toml:"max_tokens"` // per-call budget for short answers
}

// StorageConfig holds on-disk paths.
type StorageConfig struct {
	DBPath     string `toml:"db_path"`
	BlocksPath string `toml:"blocks_path"` // life blocks JSON
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			WeekdayStart:       "16:15",
			WeekendStart:       "09:00",
			NightCutoff:        "20:45",
			IntervalMinutes:    timegrid.DefaultInterval,
			RunIntervalMinutes: 5,
		},
		Todoist: TodoistConfig{
			BaseURL:  "https://api.todoist.com/rest/v2",
			TokenEnv: "TODOIST_KEY",
		},
		LLM: LLMConfig{
			Provider:  "openrouter",
			Model:     "moonshotai/kimi-k2",
			BaseURL:   "",
			MaxTokens: 50,
		},
		Storage: StorageConfig{
			DBPath:     defaultDataPath("rocinante.db"),
			BlocksPath: defaultDataPath("life_blocks.json"),
		},
	}
}

// defaultDataPath returns a path under the user's data directory.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "rocinante", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "rocinante", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Storage.BlocksPath = expandPath(cfg.Storage.BlocksPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROCINANTE_WEEKDAY_START"); v != "" {
		cfg.Schedule.WeekdayStart = v
	}
	if v := os.Getenv("ROCINANTE_WEEKEND_START"); v != "" {
		cfg.Schedule.WeekendStart = v
	}
	if v := os.Getenv("ROCINANTE_NIGHT_CUTOFF"); v != "" {
		cfg.Schedule.NightCutoff = v
	}

	if v := os.Getenv("ROCINANTE_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("ROCINANTE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ROCINANTE_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("ROCINANTE_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("ROCINANTE_BLOCKS_PATH"); v != "" {
		cfg.Storage.BlocksPath = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateTime(c.Schedule.WeekdayStart, "weekday_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.WeekendStart, "weekend_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.NightCutoff, "night_cutoff"); err != nil {
		return err
	}
	if c.Schedule.WeekdayStart >= c.Schedule.NightCutoff {
		return errors.New("weekday_start must be before night_cutoff")
	}
	if c.Schedule.WeekendStart >= c.Schedule.NightCutoff {
		return errors.New("weekend_start must be before night_cutoff")
	}
	if c.Schedule.IntervalMinutes <= 0 || 60%c.Schedule.IntervalMinutes != 0 {
		return fmt.Errorf("interval_minutes must divide an hour, got %d", c.Schedule.IntervalMinutes)
	}
	if c.Schedule.RunIntervalMinutes <= 0 {
		return errors.New("run_interval_minutes must be positive")
	}
	if c.Todoist.BaseURL == "" {
		return errors.New("todoist base_url must be set")
	}
	if c.Todoist.TokenEnv == "" {
		return errors.New("todoist token_env must be set")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm max_tokens must be positive")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Storage.BlocksPath == "" {
		return errors.New("blocks_path must be set")
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	hour := t[0:2]
	min := t[3:5]
	if !isDigits(hour) || !isDigits(min) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if t[0] > '2' || (t[0] == '2' && t[1] > '3') || t[3] > '5' {
		return fmt.Errorf("%s is out of range, got %q", field, t)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Grid builds the slot lattice described by the schedule section.
func (c *Config) Grid() timegrid.Grid {
	return timegrid.Grid{
		WeekdayStart: minutesOf(c.Schedule.WeekdayStart),
		WeekendStart: minutesOf(c.Schedule.WeekendStart),
		NightCutoff:  minutesOf(c.Schedule.NightCutoff),
		Interval:     c.Schedule.IntervalMinutes,
	}
}

// minutesOf parses a validated "HH:MM" string to minutes since midnight.
func minutesOf(s string) int {
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h*60 + m
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
