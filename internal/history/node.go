package history

import (
	"fmt"
	"time"
)

// Handle identifies one recorded state.
//
// Handles are plain values and compare with ==. The zero Handle is None,
// which stands for the pristine model with no actions applied. A handle
// stays valid until its state is pruned or cleared; after that the slot may
// be reused, but the generation keeps the old handle from resolving.
type Handle struct {
	index uint32
	gen   uint32
}

// None is the handle of the pristine state.
var None Handle

// IsNone returns true for the pristine handle.
func (h Handle) IsNone() bool {
	return h == None
}

// String returns a debug representation.
func (h Handle) String() string {
	if h.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%d.%d", h.index, h.gen)
}

// node is one arena slot.
type node struct {
	gen  uint32
	live bool

	seq      uint64
	recorded time.Time
	action   Action

	prev   Handle // chronological predecessor
	next   Handle // chronological successor
	parent Handle // state that was current when this one was recorded
}

// alloc returns a fresh handle, reusing a free slot when possible.
func (h *History) alloc() Handle {
	if n := len(h.free); n > 0 {
		idx := h.free[n-1]
		h.free = h.free[:n-1]
		slot := &h.nodes[idx]
		slot.live = true
		return Handle{index: idx, gen: slot.gen}
	}

	h.nodes = append(h.nodes, node{gen: 1, live: true})
	return Handle{index: uint32(len(h.nodes) - 1), gen: 1}
}

// release frees the slot behind id. The generation bump invalidates id.
func (h *History) release(id Handle) {
	n := h.node(id)
	if n == nil {
		return
	}
	gen := n.gen + 1
	if gen == 0 {
		gen = 1
	}
	*n = node{gen: gen}
	h.free = append(h.free, id.index)
	h.count--
}

// node resolves id, returning nil for None and stale handles.
func (h *History) node(id Handle) *node {
	if id.gen == 0 || int(id.index) >= len(h.nodes) {
		return nil
	}
	n := &h.nodes[id.index]
	if !n.live || n.gen != id.gen {
		return nil
	}
	return n
}

func (h *History) parentOf(id Handle) Handle {
	if n := h.node(id); n != nil {
		return n.parent
	}
	return None
}

func (h *History) seqOf(id Handle) uint64 {
	if n := h.node(id); n != nil {
		return n.seq
	}
	return 0
}

// Valid reports whether id refers to a live state.
func (h *History) Valid(id Handle) bool {
	return h.node(id) != nil
}

// Prev returns the chronological predecessor of id.
func (h *History) Prev(id Handle) Handle {
	if n := h.node(id); n != nil {
		return n.prev
	}
	return None
}

// Next returns the chronological successor of id.
func (h *History) Next(id Handle) Handle {
	if n := h.node(id); n != nil {
		return n.next
	}
	return None
}

// Parent returns the branch parent of id.
func (h *History) Parent(id Handle) Handle {
	return h.parentOf(id)
}

// Action returns the action recorded for id, or nil.
func (h *History) Action(id Handle) Action {
	if n := h.node(id); n != nil {
		return n.action
	}
	return nil
}
