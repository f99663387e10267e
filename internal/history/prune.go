package history

// DeleteFirstState removes the oldest state to bound memory.
//
// It returns false, leaving the history untouched, when removal could
// break the current state or a state that still needs the oldest one:
//   - the oldest state is the current one (this includes an empty history)
//   - the current state is among the states that would go
//   - a state newer than the oldest child reaches a removed state through
//     its branch parents
//
// When the oldest state has children, the newest child becomes a detached
// root and every state recorded before it is removed. From then on None
// stands for one of two baselines: the pruned actions applied, for the
// states under that child, or nothing applied, for the states recorded on
// the pristine model. Only the side the current state is on keeps its
// baseline, so the states on the other side are removed as well. With no
// children, only the oldest state is removed. The Disposer sees each
// removed state in chronological order.
func (h *History) DeleteFirstState() bool {
	if h.busy {
		return false
	}
	if h.current == h.head {
		h.log.Debug("cannot delete first state while it is current")
		return false
	}

	head := h.head

	// Newest child of head, scanning back from the tail.
	branch := None
	for id := h.tail; !id.IsNone(); id = h.node(id).prev {
		if h.node(id).parent == head {
			branch = id
			break
		}
	}

	if branch.IsNone() {
		// Nothing descends from head; no other state's path changes.
		h.removeState(head)
		h.log.Debug("deleted first state %s", head)
		return true
	}

	var prefix []Handle
	for id := head; id != branch; id = h.node(id).next {
		if id == h.current {
			h.log.Debug("cannot delete first state: current state %s depends on it", h.current)
			return false
		}
		prefix = append(prefix, id)
	}

	// The current state is never in the prefix here, so it is either
	// pristine or newer than branch.
	keepBranch := h.baseOf(h.current, branch) == baseBranch

	var stranded []Handle
	for id := branch; !id.IsNone(); id = h.node(id).next {
		switch h.baseOf(id, branch) {
		case basePrefix:
			h.log.Debug("cannot delete first state: %s descends from a pruned state", id)
			return false
		case baseBranch:
			if !keepBranch {
				stranded = append(stranded, id)
			}
		case basePristine:
			if keepBranch {
				stranded = append(stranded, id)
			}
		}
	}

	for _, id := range prefix {
		h.removeState(id)
	}
	for _, id := range stranded {
		h.removeState(id)
	}
	if keepBranch {
		h.node(branch).parent = None
	}

	h.log.Debug("deleted %d states before %s and %d stranded states",
		len(prefix), branch, len(stranded))
	return true
}

// base says what None means on a state's branch path once the states
// older than some branch have been removed.
type base int

const (
	basePristine base = iota // the path starts on the pristine model
	baseBranch               // the path runs through the branch
	basePrefix               // the path runs through a state older than the branch
)

// baseOf classifies id's branch path against branch. Parents predate their
// children, so the walk stops as soon as it passes branch's age.
func (h *History) baseOf(id, branch Handle) base {
	branchSeq := h.seqOf(branch)
	for p := id; !p.IsNone(); p = h.parentOf(p) {
		if p == branch {
			return baseBranch
		}
		if h.seqOf(p) < branchSeq {
			return basePrefix
		}
	}
	return basePristine
}

// removeState unlinks id from the chronological chain, notifies the
// disposer and frees the slot.
func (h *History) removeState(id Handle) {
	n := h.node(id)
	if p := h.node(n.prev); p != nil {
		p.next = n.next
	} else {
		h.head = n.next
	}
	if c := h.node(n.next); c != nil {
		c.prev = n.prev
	} else {
		h.tail = n.prev
	}

	if h.disposer != nil {
		h.busy = true
		func() {
			defer func() { h.busy = false }()
			h.disposer.OnDeleteState(id, n.action)
		}()
	}
	h.release(id)
}

// TrimTo deletes first states until at most max remain or a deletion is
// refused. It returns the number of states removed. The history never calls
// this on its own.
func (h *History) TrimTo(max int) int {
	if max < 0 {
		max = 0
	}

	start := h.count
	for h.count > max {
		if !h.DeleteFirstState() {
			break
		}
	}
	return start - h.count
}

// Clear forgets every state without touching the model or notifying the
// Disposer. Afterwards the model counts as pristine.
func (h *History) Clear() {
	if h.busy {
		h.log.Warn("clear ignored while an action is running")
		return
	}

	// Released one by one so stale handles keep failing after slot reuse.
	for id := h.head; !id.IsNone(); {
		next := h.node(id).next
		h.release(id)
		id = next
	}
	h.head, h.tail, h.current = None, None, None
}
