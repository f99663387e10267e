package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undotree/internal/history"
)

const setPrelude = `
model = 0
trace = {}

function set(to)
	local from = model
	return history.record("set " .. to,
		function() model = to end,
		function() model = from end)
end

function snap()
	trace[#trace + 1] = model
end
`

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *history.History) {
	t.Helper()
	h := history.New()
	e := NewEngine(h, opts...)
	t.Cleanup(e.Close)
	if err := e.DoString(context.Background(), setPrelude); err != nil {
		t.Fatalf("prelude: %v", err)
	}
	return e, h
}

func traceOf(t *testing.T, e *Engine) []int {
	t.Helper()
	tbl, ok := e.Global("trace").(*lua.LTable)
	if !ok {
		t.Fatalf("trace is %s, want table", e.Global("trace").Type())
	}
	var out []int
	tbl.ForEach(func(_, v lua.LValue) {
		out = append(out, int(lua.LVAsNumber(v)))
	})
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEngineScenario(t *testing.T) {
	e, h := newTestEngine(t)

	err := e.DoString(context.Background(), `
		set(1); set(2)
		history.undo()
		set(3); set(4)
		for i = 1, 4 do history.undo(); snap() end
		for i = 1, 4 do history.redo(); snap() end
	`)
	if err != nil {
		t.Fatalf("DoString: %v", err)
	}

	want := []int{3, 2, 1, 0, 1, 2, 3, 4}
	if got := traceOf(t, e); !equalInts(got, want) {
		t.Errorf("trace = %v, want %v", got, want)
	}
	if h.Len() != 4 {
		t.Errorf("Len() = %d, want 4", h.Len())
	}
}

func TestEngineStepResults(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.DoString(context.Background(), `
		r1 = history.undo()
		set(1)
		r2 = history.redo()
		r3 = history.undo()
		r4 = history.can_undo()
		r5 = history.can_redo()
	`)
	if err != nil {
		t.Fatalf("DoString: %v", err)
	}

	want := map[string]lua.LValue{
		"r1": lua.LFalse,
		"r2": lua.LFalse,
		"r3": lua.LTrue,
		"r4": lua.LFalse,
		"r5": lua.LTrue,
	}
	for name, v := range want {
		if got := e.Global(name); got != v {
			t.Errorf("%s = %v, want %v", name, got, v)
		}
	}
}

func TestEngineMoveTo(t *testing.T) {
	e, h := newTestEngine(t)

	err := e.DoString(context.Background(), `
		a = set(1)
		b = set(2)
		history.move_to(a)
		c = set(3)
		history.move_to(b); snap()
		history.move_to(c); snap()
		history.move_to(nil); snap()
		root_parent = history.parent(a)
		c_parent = history.parent(c)
		kids = table.concat(history.children(a), ",")
		roots = table.concat(history.children(nil), ",")
		label = history.describe(c)
	`)
	if err != nil {
		t.Fatalf("DoString: %v", err)
	}

	if got, want := traceOf(t, e), []int{2, 3, 0}; !equalInts(got, want) {
		t.Errorf("trace = %v, want %v", got, want)
	}
	if e.Global("root_parent") != lua.LNil {
		t.Errorf("parent(a) = %v, want nil", e.Global("root_parent"))
	}
	if got := lua.LVAsNumber(e.Global("c_parent")); got != 1 {
		t.Errorf("parent(c) = %v, want 1", got)
	}
	if got := lua.LVAsString(e.Global("kids")); got != "2,3" {
		t.Errorf("children(a) = %q, want %q", got, "2,3")
	}
	if got := lua.LVAsString(e.Global("roots")); got != "1" {
		t.Errorf("children(nil) = %q, want %q", got, "1")
	}
	if got := lua.LVAsString(e.Global("label")); got != "set 3" {
		t.Errorf("describe(c) = %q, want %q", got, "set 3")
	}
	if !h.Current().IsNone() {
		t.Errorf("Current() = %s, want none", h.Current())
	}
}

func TestEngineMoveToUnknownState(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.DoString(context.Background(), `history.move_to(42)`)
	if err == nil || !strings.Contains(err.Error(), "no state 42") {
		t.Errorf("DoString error = %v, want unknown state", err)
	}
}

func TestEnginePruning(t *testing.T) {
	e, h := newTestEngine(t)

	err := e.DoString(context.Background(), `
		for i = 1, 5 do set(i) end
		pruned = history.delete_first()
		trimmed = history.trim(2)
		first = history.first()
		size = history.len()
		history.undo(); history.undo()
		history.clear_redo()
		after = history.len()
	`)
	if err != nil {
		t.Fatalf("DoString: %v", err)
	}

	if e.Global("pruned") != lua.LTrue {
		t.Errorf("delete_first() = %v, want true", e.Global("pruned"))
	}
	checks := map[string]float64{"trimmed": 2, "first": 4, "size": 2, "after": 0}
	for name, want := range checks {
		if got := float64(lua.LVAsNumber(e.Global(name))); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	if !h.IsEmpty() {
		t.Errorf("history has %d states, want 0", h.Len())
	}
}

func TestEngineReentrantRecordFails(t *testing.T) {
	e, h := newTestEngine(t)

	err := e.DoString(context.Background(), `
		history.record("outer",
			function() history.record("inner", function() end, function() end) end,
			function() end)
	`)
	if err == nil {
		t.Fatal("nested record succeeded")
	}
	if !strings.Contains(err.Error(), history.ErrReentrant.Error()) {
		t.Errorf("error = %v, want it to mention %q", err, history.ErrReentrant)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}

	// The history stays usable.
	if err := e.DoString(context.Background(), `set(7)`); err != nil {
		t.Fatalf("set after failure: %v", err)
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}

func TestEnginePrint(t *testing.T) {
	var buf bytes.Buffer
	e, _ := newTestEngine(t, WithOutput(&buf))

	if err := e.DoString(context.Background(), `print("len", history.len(), nil)`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got, want := buf.String(), "len\t0\tnil\n"; got != want {
		t.Errorf("print output = %q, want %q", got, want)
	}
}

func TestEngineSandbox(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os"} {
		if v := e.Global(name); v != lua.LNil {
			t.Errorf("global %s = %s, want nil", name, v.Type())
		}
	}
}

func TestEngineTimeout(t *testing.T) {
	e, _ := newTestEngine(t, WithTimeout(50*time.Millisecond))

	err := e.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("DoString error = %v, want ErrTimeout", err)
	}

	// The state can run again after a timeout.
	if err := e.DoString(context.Background(), `x = 1`); err != nil {
		t.Errorf("DoString after timeout: %v", err)
	}
}

func TestEngineDoFile(t *testing.T) {
	e, h := newTestEngine(t)

	path := filepath.Join(t.TempDir(), "edits.lua")
	if err := os.WriteFile(path, []byte("set(1)\nset(2)\nhistory.undo()\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.DoFile(context.Background(), path); err != nil {
		t.Fatalf("DoFile: %v", err)
	}
	if got := lua.LVAsNumber(e.Global("model")); got != 1 {
		t.Errorf("model = %v, want 1", got)
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestEngineClosed(t *testing.T) {
	e := NewEngine(history.New())
	e.Close()
	e.Close()

	if err := e.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("DoString error = %v, want ErrEngineClosed", err)
	}
}
