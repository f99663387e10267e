package history

import (
	"time"

	"github.com/dshills/undotree/internal/logging"
)

// Disposer is told about every state removed by DeleteFirstState.
type Disposer interface {
	// OnDeleteState is called once per pruned state, before its links are
	// cleared. The handle is still valid for the duration of the call.
	OnDeleteState(id Handle, action Action)
}

// DisposerFunc adapts a function to the Disposer interface.
type DisposerFunc func(id Handle, action Action)

// OnDeleteState calls f.
func (f DisposerFunc) OnDeleteState(id Handle, action Action) {
	f(id, action)
}

// Option configures a History.
type Option func(*History)

// WithDisposer installs a hook for pruned states.
func WithDisposer(d Disposer) Option {
	return func(h *History) {
		h.disposer = d
	}
}

// WithClock sets the time source used to stamp recorded states.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger sets the logger used for transition and pruning traces.
func WithLogger(l *logging.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.log = l.WithComponent("history")
		}
	}
}

// History manages branching undo/redo state.
type History struct {
	nodes []node
	free  []uint32
	count int
	seq   uint64

	head    Handle // oldest state in the chronological chain
	tail    Handle // newest state in the chronological chain
	current Handle // state the model is in; None when pristine

	// busy is set while actions run so callbacks into the history fail.
	busy bool

	disposer Disposer
	now      func() time.Time
	log      *logging.Logger
}

// New creates an empty history.
func New(opts ...Option) *History {
	h := &History{
		now: time.Now,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute runs a's forward effect and records it.
func (h *History) Execute(a Action) (Handle, error) {
	if a == nil {
		return None, ErrNilAction
	}
	if h.busy {
		return None, ErrReentrant
	}

	h.busy = true
	func() {
		defer func() { h.busy = false }()
		a.Execute()
	}()

	return h.Record(a)
}

// Record adds a state for an action the caller has already executed.
//
// The new state follows the newest state chronologically and branches off
// the current state. It becomes both the newest and the current state.
func (h *History) Record(a Action) (Handle, error) {
	if a == nil {
		return None, ErrNilAction
	}
	if h.busy {
		return None, ErrReentrant
	}

	id := h.alloc()
	h.seq++
	h.count++

	n := h.node(id)
	n.seq = h.seq
	n.recorded = h.now()
	n.action = a
	n.prev = h.tail
	n.next = None
	n.parent = h.current

	if last := h.node(h.tail); last != nil {
		last.next = id
	}
	if h.head.IsNone() {
		h.head = id
	}
	h.tail = id
	h.current = id

	h.log.Debug("recorded %s (seq %d, parent %s)", id, n.seq, n.parent)
	return id, nil
}

// CanUndo returns true if the model is not pristine.
func (h *History) CanUndo() bool {
	return !h.current.IsNone()
}

// CanRedo returns true if the current state is not the newest one.
func (h *History) CanRedo() bool {
	return h.current != h.tail
}

// First returns the oldest state, or None if the history is empty.
func (h *History) First() Handle {
	return h.head
}

// Last returns the newest state, or None if the history is empty.
func (h *History) Last() Handle {
	return h.tail
}

// Current returns the state the model is in; None means pristine.
func (h *History) Current() Handle {
	return h.current
}

// Len returns the number of live states.
func (h *History) Len() int {
	return h.count
}

// IsEmpty returns true if no states are recorded.
func (h *History) IsEmpty() bool {
	return h.count == 0
}
