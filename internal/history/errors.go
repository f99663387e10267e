package history

import "errors"

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrInvalidState is returned for handles that were never issued or
	// whose state has since been pruned or cleared.
	ErrInvalidState = errors.New("invalid history state")

	// ErrNilAction is returned when recording a nil action.
	ErrNilAction = errors.New("nil action")

	// ErrReentrant is returned when an action calls back into the history
	// that is currently running it.
	ErrReentrant = errors.New("history is busy running an action")
)
