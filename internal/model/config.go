package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Ordering policies for overlapping mutations of the same entity.
const (
	OrderingLastResolved = "last_resolved"
	OrderingLastIssued   = "last_issued"
)

// Theme names persisted as the display preference.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// APIConfig holds the backend endpoints and transport settings.
type APIConfig struct {
	// BaseURL is the backend root; requests go to BaseURL + "/api/v1".
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// NotesBaseURL overrides BaseURL for note endpoints when set.
	NotesBaseURL string `mapstructure:"notes_base_url" yaml:"notes_base_url"`

	// TagsBaseURL overrides BaseURL for tag endpoints when set.
	TagsBaseURL string `mapstructure:"tags_base_url" yaml:"tags_base_url"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries bounds retries on HTTP 429. Zero disables retrying.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// StoreConfig tunes the entity store.
type StoreConfig struct {
	Ordering string `mapstructure:"ordering" yaml:"ordering"`
}

// EditorConfig holds note editor settings.
type EditorConfig struct {
	AutosaveIntervalSec int `mapstructure:"autosave_interval_sec" yaml:"autosave_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API       APIConfig     `mapstructure:"api" yaml:"api"`
	Store     StoreConfig   `mapstructure:"store" yaml:"store"`
	Editor    EditorConfig  `mapstructure:"editor" yaml:"editor"`
	Display   DisplayConfig `mapstructure:"display" yaml:"display"`
	Log       LogConfig     `mapstructure:"log" yaml:"log"`
	CachePath string        `mapstructure:"cache_path" yaml:"cache_path"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api-url":     "api.base_url",
	"notes-url":   "api.notes_base_url",
	"tags-url":    "api.tags_base_url",
	"ordering":    "store.ordering",
	"theme":       "display.theme",
	"log-level":   "log.level",
	"log-file":    "log.file",
	"cache-path":  "cache_path",
	"max-retries": "api.max_retries",
}

// DefaultConfigDir returns ~/.config/notekeeper.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notekeeper")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notekeeper/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := DefaultConfigDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8085",
			TimeoutSec: 30,
		},
		Store:     StoreConfig{Ordering: OrderingLastResolved},
		Editor:    EditorConfig{AutosaveIntervalSec: 5},
		Display:   DisplayConfig{Theme: ThemeDark},
		Log:       LogConfig{Level: "info", File: filepath.Join(dir, "notekeeper.log")},
		CachePath: filepath.Join(dir, "cache.db"),
	}
}

func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.notes_base_url", "")
	v.SetDefault("api.tags_base_url", "")
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.max_retries", d.API.MaxRetries)
	v.SetDefault("store.ordering", d.Store.Ordering)
	v.SetDefault("editor.autosave_interval_sec", d.Editor.AutosaveIntervalSec)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("cache_path", d.CachePath)
}

// LoadConfig reads configuration from the YAML file at path, then applies
// NOTEKEEPER_* environment variables and any flags set in flags (which may
// be nil). A missing file is not an error.
func LoadConfig(path string, flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("notekeeper")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings and fills zero durations.
func (c *AppConfig) Validate() error {
	switch c.Store.Ordering {
	case OrderingLastResolved, OrderingLastIssued:
	case "":
		c.Store.Ordering = OrderingLastResolved
	default:
		return fmt.Errorf("store.ordering must be %q or %q, got %q",
			OrderingLastResolved, OrderingLastIssued, c.Store.Ordering)
	}

	switch c.Display.Theme {
	case ThemeLight, ThemeDark:
	case "":
		c.Display.Theme = ThemeDark
	default:
		return fmt.Errorf("display.theme must be %q or %q, got %q",
			ThemeLight, ThemeDark, c.Display.Theme)
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 30
	}
	if c.API.MaxRetries < 0 {
		c.API.MaxRetries = 0
	}
	if c.Editor.AutosaveIntervalSec <= 0 {
		c.Editor.AutosaveIntervalSec = 5
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("store", cfg.Store)
	v.Set("editor", cfg.Editor)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("cache_path", cfg.CachePath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
