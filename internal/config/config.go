package config

import (
	"fmt"

	"github.com/dshills/undotree/internal/logging"
)

// Config holds every undotree setting.
type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Script  ScriptConfig  `toml:"script" yaml:"script"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// HistoryConfig is the caller-side policy applied around recording.
type HistoryConfig struct {
	// Linear drops the redo states before every record, so no branches form.
	Linear bool `toml:"linear" yaml:"linear"`
	// MaxStates trims the oldest states after every record. Zero disables it.
	MaxStates int `toml:"max_states" yaml:"max_states"`
}

// RenderConfig configures the tree view.
type RenderConfig struct {
	Color     bool `toml:"color" yaml:"color"`
	ShowTimes bool `toml:"show_times" yaml:"show_times"`
}

// ScriptConfig configures the Lua runtime.
type ScriptConfig struct {
	// TimeoutSeconds bounds a single script run. Zero means unlimited.
	TimeoutSeconds int `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Render: RenderConfig{
			Color: true,
		},
		Script: ScriptConfig{
			TimeoutSeconds: 30,
		},
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, ErrValidationFailed)
	}
	if c.History.MaxStates < 0 {
		return fmt.Errorf("history.max_states %d: %w", c.History.MaxStates, ErrValidationFailed)
	}
	if c.Script.TimeoutSeconds < 0 {
		return fmt.Errorf("script.timeout_seconds %d: %w", c.Script.TimeoutSeconds, ErrValidationFailed)
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}
