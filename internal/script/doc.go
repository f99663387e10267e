// Package script drives a history from Lua.
//
// Scripts run in a gopher-lua state with only the base, table, string and
// math libraries. A global "history" table exposes the history:
//
//	value = 0
//	local function set(to)
//	    local from = value
//	    history.record("set " .. to,
//	        function() value = to end,
//	        function() value = from end)
//	end
//
//	set(1); set(2)
//	history.undo()          -- value == 1
//	set(3)                  -- branches off 1
//	history.move_to(2)      -- value == 2, state ids are creation numbers
//
// record runs the forward function and records it; the history later calls
// forward and reverse to redo and undo. Those functions must not call back
// into history; doing so raises a Lua error.
package script
