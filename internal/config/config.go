// Package config loads, validates, and watches the autopop configuration
// file. Values resolve in priority order: built-in defaults, then the TOML
// file, then AUTOPOP_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/autopop/internal/behavior"
	"github.com/dshills/autopop/internal/key"
	"github.com/dshills/autopop/internal/trigger"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "AUTOPOP_"

// Config is the full autopop configuration.
type Config struct {
	Completion Completion                 `toml:"completion"`
	Behaviors  map[string][]behavior.Spec `toml:"behaviors"`
}

// Completion holds the trigger and key binding options.
type Completion struct {
	// Enabled starts completion at launch.
	Enabled bool `toml:"enabled"`

	// Keys are the key specs that trigger completion in insert mode.
	Keys []string `toml:"keys"`

	// IgnoreCase overrides the host's case sensitivity per session.
	IgnoreCase bool `toml:"ignore_case"`

	// Sources overrides the host's completion sources per session.
	Sources string `toml:"sources"`

	// MenuMode overrides the host's menu display mode per session.
	MenuMode string `toml:"menu_mode"`

	// Preview requests a documentation preview alongside the menu.
	Preview bool `toml:"preview"`

	// RetryFirst silently retries the first attempt of each session.
	RetryFirst bool `toml:"retry_first"`

	// LogLevel is the minimum log level: debug, info, warn, or error.
	LogLevel string `toml:"log_level"`
}

// DefaultKeys returns the key specs bound when the config names none:
// word characters, the path and scope punctuation that extends a
// candidate, and backspace.
func DefaultKeys() []string {
	keys := make([]string, 0, 26*2+10+6)
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, string(c))
	}
	for c := 'A'; c <= 'Z'; c++ {
		keys = append(keys, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, string(c))
	}
	return append(keys, "_", "-", ".", "/", ":", "<BS>")
}

// Default returns the built-in configuration.
func Default() Config {
	tc := trigger.DefaultConfig()
	return Config{
		Completion: Completion{
			Enabled:    true,
			Keys:       DefaultKeys(),
			IgnoreCase: tc.IgnoreCase,
			Sources:    tc.Sources,
			MenuMode:   tc.MenuMode,
			Preview:    tc.Preview,
			RetryFirst: tc.RetryFirstAttempt,
			LogLevel:   "info",
		},
		Behaviors: behavior.DefaultSpecs(),
	}
}

// fileConfig mirrors Config with optional fields, so absent keys keep
// their defaults instead of zeroing them.
type fileConfig struct {
	Completion struct {
		Enabled    *bool    `toml:"enabled"`
		Keys       []string `toml:"keys"`
		IgnoreCase *bool    `toml:"ignore_case"`
		Sources    *string  `toml:"sources"`
		MenuMode   *string  `toml:"menu_mode"`
		Preview    *bool    `toml:"preview"`
		RetryFirst *bool    `toml:"retry_first"`
		LogLevel   *string  `toml:"log_level"`
	} `toml:"completion"`
	Behaviors map[string][]behavior.Spec `toml:"behaviors"`
}

func (f fileConfig) applyTo(cfg *Config) {
	c := f.Completion
	if c.Enabled != nil {
		cfg.Completion.Enabled = *c.Enabled
	}
	if len(c.Keys) > 0 {
		cfg.Completion.Keys = c.Keys
	}
	if c.IgnoreCase != nil {
		cfg.Completion.IgnoreCase = *c.IgnoreCase
	}
	if c.Sources != nil {
		cfg.Completion.Sources = *c.Sources
	}
	if c.MenuMode != nil {
		cfg.Completion.MenuMode = *c.MenuMode
	}
	if c.Preview != nil {
		cfg.Completion.Preview = *c.Preview
	}
	if c.RetryFirst != nil {
		cfg.Completion.RetryFirst = *c.RetryFirst
	}
	if c.LogLevel != nil {
		cfg.Completion.LogLevel = *c.LogLevel
	}

	// File type entries override the shipped table one key at a time,
	// so a config that only defines [behaviors.go] keeps the default
	// wildcard and the other language lists.
	for filetype, specs := range f.Behaviors {
		cfg.Behaviors[filetype] = specs
	}
}

// Load reads the config file, applies environment overrides, and
// validates the result. A missing file is not an error; defaults plus
// environment overrides are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		var file fileConfig
		if err := toml.Unmarshal(data, &file); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		file.applyTo(&cfg)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides config fields from AUTOPOP_ environment variables.
func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvPrefix + "ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %sENABLED: %w", EnvPrefix, err)
		}
		cfg.Completion.Enabled = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "KEYS"); ok {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		cfg.Completion.Keys = keys
	}
	if v, ok := os.LookupEnv(EnvPrefix + "IGNORE_CASE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %sIGNORE_CASE: %w", EnvPrefix, err)
		}
		cfg.Completion.IgnoreCase = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SOURCES"); ok {
		cfg.Completion.Sources = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "MENU_MODE"); ok {
		cfg.Completion.MenuMode = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PREVIEW"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %sPREVIEW: %w", EnvPrefix, err)
		}
		cfg.Completion.Preview = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "RETRY_FIRST"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %sRETRY_FIRST: %w", EnvPrefix, err)
		}
		cfg.Completion.RetryFirst = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Completion.LogLevel = v
	}
	return nil
}

// Validate checks the config without building runtime state. Key specs
// and every behavior entry must compile; validation failures name the
// offending field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Completion.MenuMode) == "" {
		return errors.New("completion.menu_mode is empty")
	}
	if strings.TrimSpace(c.Completion.Sources) == "" {
		return errors.New("completion.sources is empty")
	}
	if len(c.Completion.Keys) == 0 {
		return errors.New("completion.keys is empty")
	}
	if _, err := key.ParseAll(c.Completion.Keys); err != nil {
		return fmt.Errorf("completion.keys: %w", err)
	}

	reg, err := behavior.NewRegistry(c.Behaviors)
	if err != nil {
		return fmt.Errorf("behaviors: %w", err)
	}
	reg.Close()
	return nil
}

// ParseKeys parses the configured key specs.
func (c Config) ParseKeys() ([]key.Event, error) {
	return key.ParseAll(c.Completion.Keys)
}

// Registry compiles the behavior table.
func (c Config) Registry() (*behavior.Registry, error) {
	reg, err := behavior.NewRegistry(c.Behaviors)
	if err != nil {
		return nil, fmt.Errorf("behaviors: %w", err)
	}
	return reg, nil
}

// TriggerConfig maps the completion options onto the engine config.
func (c Config) TriggerConfig() trigger.Config {
	return trigger.Config{
		MenuMode:          c.Completion.MenuMode,
		Preview:           c.Completion.Preview,
		IgnoreCase:        c.Completion.IgnoreCase,
		Sources:           c.Completion.Sources,
		RetryFirstAttempt: c.Completion.RetryFirst,
	}
}
