package history

import "time"

// StateInfo provides read-only info about a state.
// Used for displaying the history to users.
type StateInfo struct {
	Handle      Handle
	Seq         uint64    // Creation order, unique for the life of the History
	Description string    // Human-readable description of the action
	Recorded    time.Time // When the state was recorded
	Parent      Handle    // Branch parent
}

// Info returns info about id. The second result is false for None and
// stale handles.
func (h *History) Info(id Handle) (StateInfo, bool) {
	n := h.node(id)
	if n == nil {
		return StateInfo{}, false
	}

	return StateInfo{
		Handle:      id,
		Seq:         n.seq,
		Description: Describe(n.action),
		Recorded:    n.recorded,
		Parent:      n.parent,
	}, true
}

// Depth returns the number of actions applied in state id, walking its
// branch path. It is zero for None and stale handles.
func (h *History) Depth(id Handle) int {
	depth := 0
	for p := id; h.Valid(p); p = h.parentOf(p) {
		depth++
	}
	return depth
}

// PeekUndo returns info about the state Undo would leave.
func (h *History) PeekUndo() (StateInfo, bool) {
	return h.Info(h.current)
}

// PeekRedo returns info about the state Redo would reach.
func (h *History) PeekRedo() (StateInfo, bool) {
	if !h.CanRedo() {
		return StateInfo{}, false
	}
	if h.current.IsNone() {
		return h.Info(h.head)
	}
	return h.Info(h.Next(h.current))
}

// States returns every live state in chronological order.
func (h *History) States() []Handle {
	result := make([]Handle, 0, h.count)
	for id := h.head; !id.IsNone(); id = h.node(id).next {
		result = append(result, id)
	}
	return result
}

// Path returns the branch path from the oldest applied action down to id.
// Moving to id leaves exactly these actions applied.
func (h *History) Path(id Handle) []Handle {
	var path []Handle
	for p := id; h.Valid(p); p = h.parentOf(p) {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Children returns the states whose branch parent is id, oldest first.
// Children(None) lists the states recorded on the pristine model. Each call
// scans the whole chain; walk States once to index a full tree.
func (h *History) Children(id Handle) []Handle {
	var result []Handle
	for c := h.head; !c.IsNone(); c = h.node(c).next {
		if h.node(c).parent == id {
			result = append(result, c)
		}
	}
	return result
}

// Lookup finds the live state with the given creation sequence number.
func (h *History) Lookup(seq uint64) (Handle, bool) {
	for id := h.head; !id.IsNone(); id = h.node(id).next {
		if h.node(id).seq == seq {
			return id, true
		}
	}
	return None, false
}
