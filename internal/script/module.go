package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/undotree/internal/history"
)

// LuaAction is a history action backed by two Lua functions.
type LuaAction struct {
	L       *lua.LState
	Name    string
	Forward *lua.LFunction
	Reverse *lua.LFunction
}

// Execute calls the forward function.
func (a *LuaAction) Execute() {
	a.call(a.Forward, "forward")
}

// Undo calls the reverse function.
func (a *LuaAction) Undo() {
	a.call(a.Reverse, "reverse")
}

// Description returns the name given to history.record.
func (a *LuaAction) Description() string {
	return a.Name
}

// call runs fn. Actions cannot report errors, so a failing function panics;
// the panic unwinds to the enclosing protected call and surfaces as a
// script error.
func (a *LuaAction) call(fn *lua.LFunction, which string) {
	err := a.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	if err != nil {
		panic(fmt.Sprintf("%s of %q failed: %v", which, a.Name, err))
	}
}

func (e *Engine) installHistoryModule() {
	mod := e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"record":       e.luaRecord,
		"undo":         e.luaStep(e.history.Undo),
		"redo":         e.luaStep(e.history.Redo),
		"undo_branch":  e.luaStep(e.history.UndoBranch),
		"move_to":      e.luaMoveTo,
		"can_undo":     e.luaBool(e.history.CanUndo),
		"can_redo":     e.luaBool(e.history.CanRedo),
		"current":      e.luaHandle(e.history.Current),
		"first":        e.luaHandle(e.history.First),
		"last":         e.luaHandle(e.history.Last),
		"parent":       e.luaParent,
		"children":     e.luaChildren,
		"describe":     e.luaDescribe,
		"len":          e.luaLen,
		"clear_redo":   e.luaClearRedo,
		"delete_first": e.luaDeleteFirst,
		"trim":         e.luaTrim,
	})
	e.L.SetGlobal("history", mod)
}

// luaRecord implements history.record(name, forward, reverse) -> id.
func (e *Engine) luaRecord(L *lua.LState) int {
	a := &LuaAction{
		L:       L,
		Name:    L.CheckString(1),
		Forward: L.CheckFunction(2),
		Reverse: L.CheckFunction(3),
	}

	id, err := e.history.Execute(a)
	if err != nil {
		L.RaiseError("history.record: %v", err)
		return 0
	}
	e.pushHandle(L, id)
	return 1
}

// luaStep wraps undo/redo style calls. Running out of history returns
// false; any other failure raises.
func (e *Engine) luaStep(step func() error) lua.LGFunction {
	return func(L *lua.LState) int {
		err := step()
		switch {
		case err == nil:
			L.Push(lua.LTrue)
		case errors.Is(err, history.ErrNothingToUndo), errors.Is(err, history.ErrNothingToRedo):
			L.Push(lua.LFalse)
		default:
			L.RaiseError("%v", err)
			return 0
		}
		return 1
	}
}

// luaMoveTo implements history.move_to(id); nil moves to the pristine state.
func (e *Engine) luaMoveTo(L *lua.LState) int {
	target := e.checkHandle(L, 1)
	if err := e.history.MoveTo(target); err != nil {
		L.RaiseError("history.move_to: %v", err)
	}
	return 0
}

func (e *Engine) luaBool(fn func() bool) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LBool(fn()))
		return 1
	}
}

func (e *Engine) luaHandle(fn func() history.Handle) lua.LGFunction {
	return func(L *lua.LState) int {
		e.pushHandle(L, fn())
		return 1
	}
}

func (e *Engine) luaParent(L *lua.LState) int {
	e.pushHandle(L, e.history.Parent(e.checkHandle(L, 1)))
	return 1
}

// luaChildren implements history.children(id) -> {id, ...}, oldest first.
func (e *Engine) luaChildren(L *lua.LState) int {
	kids := L.NewTable()
	for _, id := range e.history.Children(e.checkHandle(L, 1)) {
		info, _ := e.history.Info(id)
		kids.Append(lua.LNumber(info.Seq))
	}
	L.Push(kids)
	return 1
}

func (e *Engine) luaDescribe(L *lua.LState) int {
	info, ok := e.history.Info(e.checkHandle(L, 1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(info.Description))
	return 1
}

func (e *Engine) luaLen(L *lua.LState) int {
	L.Push(lua.LNumber(e.history.Len()))
	return 1
}

func (e *Engine) luaClearRedo(L *lua.LState) int {
	e.history.ClearRedo()
	return 0
}

func (e *Engine) luaDeleteFirst(L *lua.LState) int {
	L.Push(lua.LBool(e.history.DeleteFirstState()))
	return 1
}

func (e *Engine) luaTrim(L *lua.LState) int {
	L.Push(lua.LNumber(e.history.TrimTo(L.CheckInt(1))))
	return 1
}

// pushHandle pushes the state's creation number, or nil for None.
func (e *Engine) pushHandle(L *lua.LState, id history.Handle) {
	info, ok := e.history.Info(id)
	if !ok {
		L.Push(lua.LNil)
		return
	}
	L.Push(lua.LNumber(info.Seq))
}

// checkHandle resolves argument n, a creation number or nil.
func (e *Engine) checkHandle(L *lua.LState, n int) history.Handle {
	if L.Get(n) == lua.LNil {
		return history.None
	}
	seq := L.CheckInt64(n)
	if seq <= 0 {
		L.ArgError(n, "state id must be positive")
		return history.None
	}
	id, ok := e.history.Lookup(uint64(seq))
	if !ok {
		L.ArgError(n, fmt.Sprintf("no state %d", seq))
		return history.None
	}
	return id
}
