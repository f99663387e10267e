// Package app wires configuration, logging, sessions, and the Lua engine
// together for the undotree command.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dshills/undotree/internal/config"
	"github.com/dshills/undotree/internal/history"
	"github.com/dshills/undotree/internal/logging"
	"github.com/dshills/undotree/internal/render"
	"github.com/dshills/undotree/internal/script"
	"github.com/dshills/undotree/internal/session"
	"github.com/dshills/undotree/internal/watch"
)

// Application holds the resolved configuration and shared logger.
type Application struct {
	config *config.Config
	log    *logging.Logger
	opts   Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses defaults
	// and the environment only.
	ConfigPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// StrictConfig rejects unknown keys in the configuration file. It only
	// applies to the default loader.
	StrictConfig bool

	// Loader loads the configuration. Defaults to config.NewLoader().
	Loader *config.Loader
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap loads the configuration and then builds the logger.
func (app *Application) bootstrap() error {
	loader := app.opts.Loader
	if loader == nil {
		loader = config.NewLoader(config.WithStrict(app.opts.StrictConfig))
	}

	cfg, err := loader.Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	if app.opts.LogLevel != "" {
		if _, ok := logging.ParseLevel(app.opts.LogLevel); !ok {
			return &InitError{
				Component: "logging",
				Err:       fmt.Errorf("%w: %q", ErrInvalidLogLevel, app.opts.LogLevel),
			}
		}
		cfg.Log.Level = app.opts.LogLevel
	}
	app.config = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel()
	if app.opts.LogOutput != nil {
		logCfg.Output = app.opts.LogOutput
	}
	app.log = logging.New(logCfg)

	if app.log.Enabled(logging.LevelDebug) {
		app.log.Debug("configuration loaded from %q: %+v", app.opts.ConfigPath, *cfg)
	}
	return nil
}

// Config returns the resolved configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// NewSession creates a command session following the configuration.
func (app *Application) NewSession(opts ...session.Option) *session.Session {
	s := session.FromConfig(app.config, app.log, opts...)
	app.log.Info("session %s started", s.ID)
	return s
}

// NewEngine creates a Lua engine bound to h.
func (app *Application) NewEngine(h *history.History, out io.Writer) *script.Engine {
	return script.NewEngine(h,
		script.WithOutput(out),
		script.WithTimeout(time.Duration(app.config.Script.TimeoutSeconds)*time.Second),
		script.WithLogger(app.log),
	)
}

// RunCommands executes a command file against a fresh session and stops
// at the first failing line.
func (app *Application) RunCommands(ctx context.Context, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return NewOperationError("run", path, err)
	}
	defer f.Close()

	s := app.NewSession()
	if err := s.Run(ctx, f, out, session.RunOptions{StopOnError: true}); err != nil {
		return NewOperationError("run", path, fmt.Errorf("%w: %w", ErrScriptFailed, err))
	}
	return nil
}

// Interactive reads commands from in until EOF or quit, reporting errors
// without stopping.
func (app *Application) Interactive(ctx context.Context, in io.Reader, out io.Writer, prompt string) error {
	s := app.NewSession()
	fmt.Fprintf(out, "undotree session %s. Type help for commands.\n", s.ID)
	return s.Run(ctx, in, out, session.RunOptions{Prompt: prompt})
}

// RunLua executes a Lua file against a fresh history and prints the
// resulting tree.
func (app *Application) RunLua(ctx context.Context, path string, out io.Writer) error {
	h := history.New(history.WithLogger(app.log))
	engine := app.NewEngine(h, out)
	defer engine.Close()

	if err := engine.DoFile(ctx, path); err != nil {
		return NewOperationError("lua", path, fmt.Errorf("%w: %w", ErrScriptFailed, err))
	}

	r := render.New(render.Options{
		Color:     app.config.Render.Color,
		Profile:   render.DetectProfile(),
		ShowTimes: app.config.Render.ShowTimes,
	})
	fmt.Fprintln(out, strings.TrimRight(r.Tree(h), "\n"))
	return nil
}

// Watch calls fn now and after every save of path until ctx is done.
// Failures are reported to errOut and watching continues.
func (app *Application) Watch(ctx context.Context, path string, errOut io.Writer, fn func(context.Context) error) error {
	w, err := watch.New(path, watch.WithLogger(app.log))
	if err != nil {
		return NewOperationError("watch", path, err)
	}
	defer w.Close()

	app.log.Info("watching %s", w.Path())
	return w.Run(ctx,
		func() error { return fn(ctx) },
		func(err error) { fmt.Fprintf(errOut, "Error: %v\n", err) },
	)
}
