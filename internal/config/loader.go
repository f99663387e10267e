package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileSystem is the subset of file access the loader needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader resolves a Config from defaults, a file and the environment.
type Loader struct {
	fs     FileSystem
	env    *EnvLoader
	strict bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem replaces the file system, mainly for tests.
func WithFileSystem(fsys FileSystem) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithEnv replaces the environment loader.
func WithEnv(env *EnvLoader) LoaderOption {
	return func(l *Loader) {
		l.env = env
	}
}

// WithStrict rejects unknown keys in config files.
func WithStrict(strict bool) LoaderOption {
	return func(l *Loader) {
		l.strict = strict
	}
}

// NewLoader creates a loader reading the OS file system and environment.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:  OSFS{},
		env: NewEnvLoader(EnvPrefix),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the configuration. An empty path skips the file layer; a
// missing file is not an error.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := l.loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if l.env != nil {
		if err := l.env.Apply(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load resolves the configuration with the default loader.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

func (l *Loader) loadFile(cfg *Config, path string) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // File doesn't exist, not an error
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = l.decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = l.decodeYAML(data, cfg)
	default:
		return fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

func (l *Loader) decodeTOML(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	if l.strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(cfg)
}

func (l *Loader) decodeYAML(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(l.strict)
	return dec.Decode(cfg)
}
