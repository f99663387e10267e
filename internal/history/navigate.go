package history

// Undo moves to the chronological predecessor of the current state.
//
// Stepping chronologically means repeated Undo calls also revisit states
// on abandoned branches, newest first, before reaching the pristine model.
func (h *History) Undo() error {
	if h.busy {
		return ErrReentrant
	}
	if !h.CanUndo() {
		return ErrNothingToUndo
	}

	h.moveTo(h.node(h.current).prev)
	return nil
}

// Redo moves to the chronological successor of the current state, or to
// the oldest state when the model is pristine.
func (h *History) Redo() error {
	if h.busy {
		return ErrReentrant
	}
	if !h.CanRedo() {
		return ErrNothingToRedo
	}

	if h.current.IsNone() {
		h.moveTo(h.head)
	} else {
		h.moveTo(h.node(h.current).next)
	}
	return nil
}

// UndoBranch moves to the branch parent of the current state, reverting
// exactly one action and never leaving the active branch.
func (h *History) UndoBranch() error {
	if h.busy {
		return ErrReentrant
	}
	if !h.CanUndo() {
		return ErrNothingToUndo
	}

	h.moveTo(h.node(h.current).parent)
	return nil
}

// MoveTo transitions the model to target, which may be None.
//
// Actions are undone from the current state up to the lowest common
// ancestor of both states, then redone down to target. Moving to the
// current state does nothing.
func (h *History) MoveTo(target Handle) error {
	if h.busy {
		return ErrReentrant
	}
	if !target.IsNone() && !h.Valid(target) {
		return ErrInvalidState
	}

	h.moveTo(target)
	return nil
}

// moveTo runs the transition. target must be None or live.
// current tracks every completed step, so a panicking action leaves the
// history describing the model as far as it got.
func (h *History) moveTo(target Handle) {
	if target == h.current {
		return
	}

	h.busy = true
	defer func() { h.busy = false }()

	from := h.current
	common := h.commonAncestor(h.current, target)

	undone := 0
	for h.current != common {
		n := h.node(h.current)
		n.action.Undo()
		h.current = n.parent
		undone++
	}

	var pending []Handle
	for p := target; p != common; p = h.parentOf(p) {
		pending = append(pending, p)
	}
	for i := len(pending) - 1; i >= 0; i-- {
		h.node(pending[i]).action.Execute()
		h.current = pending[i]
	}

	h.log.Debug("moved %s -> %s via %s (undone %d, redone %d)",
		from, target, common, undone, len(pending))
}

// CommonAncestor returns the lowest common ancestor of a and b in the
// branch tree, which may be a or b itself. It returns None if either is
// None or invalid, or if they share no ancestor.
func (h *History) CommonAncestor(a, b Handle) Handle {
	if !h.Valid(a) || !h.Valid(b) {
		return None
	}
	return h.commonAncestor(a, b)
}

// commonAncestor walks a cursor up from a for every step of a cursor up
// from b until they meet. No depths are needed, at the price of walking
// a's path once per ancestor of b.
func (h *History) commonAncestor(a, b Handle) Handle {
	if a.IsNone() || b.IsNone() {
		return None
	}

	pa, pb := a, b
	for pa != pb {
		pa = h.parentOf(pa)
		if pa.IsNone() {
			pa = a
			pb = h.parentOf(pb)
			if pb.IsNone() {
				return None
			}
		}
	}
	return pa
}

// ClearRedo drops every state newer than the current one from the
// chronological chain. Called before Record it keeps history linear.
//
// Dropped states are released without notifying the Disposer. No live
// state can depend on them, because a branch parent always predates its
// children and everything older than the current state is kept. Handles to
// dropped states go stale: MoveTo rejects them with ErrInvalidState.
func (h *History) ClearRedo() {
	if h.busy {
		h.log.Warn("clear redo ignored while an action is running")
		return
	}

	var drop Handle
	if cur := h.node(h.current); cur != nil {
		drop = cur.next
		cur.next = None
		h.tail = h.current
	} else {
		drop = h.head
		h.head = None
		h.tail = None
	}

	dropped := 0
	for id := drop; !id.IsNone(); {
		next := h.node(id).next
		h.release(id)
		id = next
		dropped++
	}
	if dropped > 0 {
		h.log.Debug("cleared %d redo states", dropped)
	}
}
