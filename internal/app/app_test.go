package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/undotree/internal/config"
	"github.com/dshills/undotree/internal/history"
	"github.com/dshills/undotree/internal/logging"
)

func noEnv(string) (string, bool) { return "", false }

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	if opts.Loader == nil {
		opts.Loader = config.NewLoader(config.WithEnv(config.NewEnvLoaderWithLookup(config.EnvPrefix, noEnv)))
	}
	if opts.LogOutput == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	app.config.Render.Color = false
	return app
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	app := newTestApp(t, Options{})

	if got := app.Logger().Level(); got != logging.LevelInfo {
		t.Errorf("log level = %v, want info", got)
	}
	if app.Config().History.MaxStates != 0 {
		t.Errorf("MaxStates = %d, want 0", app.Config().History.MaxStates)
	}
}

func TestNewLogLevelOverride(t *testing.T) {
	var logs bytes.Buffer
	app := newTestApp(t, Options{LogLevel: "debug", LogOutput: &logs})
	if got := app.Logger().Level(); got != logging.LevelDebug {
		t.Errorf("log level = %v, want debug", got)
	}
	if app.Config().Log.Level != "debug" {
		t.Errorf("config level = %q, want debug", app.Config().Log.Level)
	}
	if !strings.Contains(logs.String(), "configuration loaded") {
		t.Errorf("debug log missing the loaded configuration:\n%s", logs.String())
	}
}

func TestNewErrors(t *testing.T) {
	loader := config.NewLoader(config.WithEnv(config.NewEnvLoaderWithLookup(config.EnvPrefix, noEnv)))

	_, err := New(Options{LogLevel: "loud", Loader: loader})
	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.Component != "logging" {
		t.Fatalf("New error = %v, want logging InitError", err)
	}
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("New error = %v, want ErrInvalidLogLevel", err)
	}

	path := writeFile(t, "bad.toml", "[history]\nmax_states = -3\n")
	_, err = New(Options{ConfigPath: path, Loader: loader})
	if !errors.As(err, &initErr) || initErr.Component != "config" {
		t.Fatalf("New error = %v, want config InitError", err)
	}
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("New error = %v, want ErrValidationFailed", err)
	}
}

func TestConfigFilePolicyReachesSession(t *testing.T) {
	path := writeFile(t, "undotree.yaml", "history:\n  linear: true\n")
	app := newTestApp(t, Options{ConfigPath: path})

	s := app.NewSession()
	for _, line := range []string{"append a", "append b", "undo", "append c"} {
		if _, err := s.Exec(line); err != nil {
			t.Fatalf("Exec(%q): %v", line, err)
		}
	}
	if got := s.History().Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 in linear mode", got)
	}
}

func TestRunCommands(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, "edits.txt", "# demo\ninsert 0 'hello'\nappend ' world'\nundo\ntext\n")

	var out bytes.Buffer
	if err := app.RunCommands(context.Background(), path, &out); err != nil {
		t.Fatalf("RunCommands: %v", err)
	}
	if !strings.Contains(out.String(), `"hello"`) {
		t.Errorf("output missing final text:\n%s", out.String())
	}
}

func TestRunCommandsFailure(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, "edits.txt", "append a\nredo\n")

	err := app.RunCommands(context.Background(), path, &bytes.Buffer{})
	if !errors.Is(err, ErrScriptFailed) || !errors.Is(err, history.ErrNothingToRedo) {
		t.Errorf("RunCommands error = %v", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Target != path {
		t.Errorf("RunCommands error = %v, want OperationError for %s", err, path)
	}

	err = app.RunCommands(context.Background(), filepath.Join(t.TempDir(), "missing"), &bytes.Buffer{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("RunCommands error = %v, want not exist", err)
	}
}

func TestInteractive(t *testing.T) {
	app := newTestApp(t, Options{})

	var out bytes.Buffer
	in := strings.NewReader("append x\nbogus\ntext\nquit\n")
	if err := app.Interactive(context.Background(), in, &out, "> "); err != nil {
		t.Fatalf("Interactive: %v", err)
	}

	got := out.String()
	for _, want := range []string{"undotree session", "> ", "error:", `"x"`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunLua(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, "edits.lua", `
		local value = 0
		local function set(to)
			local from = value
			history.record("set " .. to,
				function() value = to end,
				function() value = from end)
		end
		set(1); set(2); history.undo(); set(3)
		print("value", value)
	`)

	var out bytes.Buffer
	if err := app.RunLua(context.Background(), path, &out); err != nil {
		t.Fatalf("RunLua: %v", err)
	}

	want := "value\t3\nroot\n└── #1 set 1\n    ├── #2 set 2\n    └── #3 set 3 (current) (newest)\n"
	if got := out.String(); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestRunLuaFailure(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, "broken.lua", `error("boom")`)

	err := app.RunLua(context.Background(), path, &bytes.Buffer{})
	if !errors.Is(err, ErrScriptFailed) || !strings.Contains(err.Error(), "boom") {
		t.Errorf("RunLua error = %v", err)
	}
}

func TestOperationError(t *testing.T) {
	err := NewOperationError("run", "a.txt", os.ErrNotExist)
	if got := err.Error(); got != "run a.txt: file does not exist" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewOperationError("lua", "", nil).Error(); got != "lua" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is does not see the wrapped error")
	}
}

func TestWatchRunsImmediately(t *testing.T) {
	app := newTestApp(t, Options{})
	path := writeFile(t, "edits.txt", "append a\n")

	ctx, cancel := context.WithCancel(context.Background())
	var out, errOut bytes.Buffer
	calls := 0
	err := app.Watch(ctx, path, &errOut, func(ctx context.Context) error {
		calls++
		defer cancel()
		return app.RunCommands(ctx, path, &out)
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected errors: %s", errOut.String())
	}

	err = app.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), &errOut, nil)
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "watch" {
		t.Errorf("Watch error = %v, want watch OperationError", err)
	}
}
