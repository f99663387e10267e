// Package history provides branching undo/redo over reversible actions.
//
// Every recorded action becomes a state in two overlapping structures:
//
// # Chronological chain
//
// A flat, creation-ordered list of every state. Undo and Redo step along it,
// and pruning removes states from its oldest end.
//
// # Branch tree
//
// Each state remembers the state that was current when it was recorded.
// Recording after an undo therefore starts a new branch instead of
// discarding the old future:
//
//	h := history.New()
//	h.Execute(a1)
//	h.Execute(a2)
//	h.Undo()      // back at a1
//	h.Execute(a3) // a3 branches off a1, a2 stays reachable
//
// MoveTo jumps between any two states. It undoes back to their lowest
// common ancestor and redoes forward to the target, so actions shared by
// both paths are never touched.
//
// # Pruning
//
// DeleteFirstState drops the oldest state when doing so cannot break any
// state that is still reachable. A refusal is an ordinary result; callers
// retry later or skip pruning. A Disposer passed with WithDisposer is told
// about every pruned state.
//
// A History is not safe for concurrent use. Actions must not call back into
// the History that is running them; such calls fail with ErrReentrant.
package history
