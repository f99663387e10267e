package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "UNDOTREE_"

// EnvLoader overrides settings from environment variables.
type EnvLoader struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvLoader creates a loader reading the process environment.
// The prefix should include the trailing underscore (e.g., "UNDOTREE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		lookup: os.LookupEnv,
	}
}

// NewEnvLoaderWithLookup creates a loader backed by a custom lookup.
func NewEnvLoaderWithLookup(prefix string, lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		lookup: lookup,
	}
}

// envSetting binds one variable suffix to a setter.
type envSetting struct {
	name string
	set  func(cfg *Config, value string) error
}

var envSettings = []envSetting{
	{"LOG_LEVEL", func(cfg *Config, v string) error {
		cfg.Log.Level = v
		return nil
	}},
	{"HISTORY_LINEAR", func(cfg *Config, v string) error {
		b, err := parseBool(v)
		cfg.History.Linear = b
		return err
	}},
	{"HISTORY_MAX_STATES", func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		cfg.History.MaxStates = n
		return err
	}},
	{"RENDER_COLOR", func(cfg *Config, v string) error {
		b, err := parseBool(v)
		cfg.Render.Color = b
		return err
	}},
	{"RENDER_SHOW_TIMES", func(cfg *Config, v string) error {
		b, err := parseBool(v)
		cfg.Render.ShowTimes = b
		return err
	}},
	{"SCRIPT_TIMEOUT_SECONDS", func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		cfg.Script.TimeoutSeconds = n
		return err
	}},
}

// Apply overrides cfg with every variable that is set.
// Empty values count as set.
func (l *EnvLoader) Apply(cfg *Config) error {
	for _, s := range envSettings {
		name := l.prefix + s.name
		val, ok := l.lookup(name)
		if !ok {
			continue
		}
		if err := s.set(cfg, strings.TrimSpace(val)); err != nil {
			return &ParseError{
				Path:    name,
				Message: fmt.Sprintf("invalid value %q", val),
				Err:     err,
			}
		}
	}
	return nil
}

// parseBool accepts the spellings people put in environment variables.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}
