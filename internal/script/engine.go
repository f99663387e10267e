package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undotree/internal/history"
	"github.com/dshills/undotree/internal/logging"
)

// Engine runs Lua scripts against a history.
//
// gopher-lua's LState is not goroutine-safe; an Engine must be used from a
// single goroutine, like the History it wraps.
type Engine struct {
	L       *lua.LState
	history *history.History

	out     io.Writer
	timeout time.Duration
	log     *logging.Logger
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.out = w
	}
}

// WithTimeout bounds every DoString and DoFile call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l.WithComponent("script")
		}
	}
}

// NewEngine creates a sandboxed Lua state bound to h.
func NewEngine(h *history.History, opts ...Option) *Engine {
	e := &Engine{
		history: h,
		out:     os.Stdout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	e.installPrint()
	e.installHistoryModule()
	return e
}

// openSafeLibraries opens only libraries without file or process access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// installPrint replaces print so output follows WithOutput.
func (e *Engine) installPrint() {
	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(e.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// DoString runs Lua source.
func (e *Engine) DoString(ctx context.Context, code string) error {
	return e.run(ctx, "<string>", func() error {
		return e.L.DoString(code)
	})
}

// DoFile runs a Lua file.
func (e *Engine) DoFile(ctx context.Context, path string) error {
	return e.run(ctx, path, func() error {
		return e.L.DoFile(path)
	})
}

func (e *Engine) run(ctx context.Context, source string, fn func() error) (err error) {
	if e.closed {
		return ErrEngineClosed
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic in %s: %v", source, r)
		}
	}()

	start := time.Now()
	err = fn()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%s: %w", source, ErrTimeout)
	}
	e.log.Debug("ran %s in %s (err=%v)", source, time.Since(start).Round(time.Microsecond), err)
	return err
}

// Global returns a global variable, for inspecting script state.
func (e *Engine) Global(name string) lua.LValue {
	return e.L.GetGlobal(name)
}

// Close releases the Lua state.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}
