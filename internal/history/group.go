package history

// BeginGroup starts a group. Changes pushed until EndGroup undo as one
// entry named name. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.group = nil
}

// EndGroup closes the current group and records it if it holds any change.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if h.group != nil {
		h.pushLocked(h.group)
		h.group = nil
	}
}

// CancelGroup discards the current group. If the group recorded any change
// it returns the state from before the group so the caller can roll back.
func (h *History) CancelGroup() (State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.group
	h.grouping = false
	h.group = nil
	if g == nil {
		return State{}, false
	}
	return g.Before, true
}

// IsGrouping returns true while a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Transaction runs fn inside a group. If fn fails the group is cancelled
// and rollback, when not nil, receives the state from before the group.
func (h *History) Transaction(name string, fn func() error, rollback func(State)) error {
	h.BeginGroup(name)

	if err := fn(); err != nil {
		if st, ok := h.CancelGroup(); ok && rollback != nil {
			rollback(st)
		}
		return err
	}
	h.EndGroup()
	return nil
}

// GroupScope closes a group with defer:
//
//	defer h.GroupScope("Replace All").End()
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a group and returns its scope.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{history: h, active: true}
}

// End closes the group. Only the first call has an effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}
