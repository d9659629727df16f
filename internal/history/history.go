package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/richpad/internal/document"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is used when a history is created with a non-positive
// limit.
const DefaultMaxEntries = 1000

// State is a restorable editor state: a document snapshot and the
// selection as absolute offsets.
type State struct {
	Doc    *document.Document
	Anchor document.Offset
	Active document.Offset
}

// Entry is one undoable change: the state before and after it.
type Entry struct {
	Description string
	Before      State
	After       State
}

// Info describes an entry without exposing its snapshots.
type Info struct {
	Description string
	Timestamp   time.Time
}

type undoEntry struct {
	Entry
	timestamp time.Time
}

func (e *undoEntry) info() Info {
	return Info{Description: e.Description, Timestamp: e.timestamp}
}

// History keeps the undo and redo stacks of one document. Snapshots must
// not be mutated after they are pushed; History hands them back as is.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	grouping  bool
	groupName string
	group     *undoEntry

	maxEntries int
}

// New creates a history that keeps at most maxEntries undo entries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records a change and clears the redo stack. Inside a group the
// change is folded into the group entry.
func (h *History) Push(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if h.group == nil {
			h.group = &undoEntry{Entry: e, timestamp: time.Now()}
			h.group.Description = h.groupName
			return
		}
		h.group.After = e.After
		return
	}
	h.pushLocked(&undoEntry{Entry: e, timestamp: time.Now()})
}

func (h *History) pushLocked(e *undoEntry) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the last change and returns the state to restore.
func (h *History) Undo() (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return State{}, ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return e.Before, nil
}

// Redo reapplies the last undone change and returns the state to restore.
func (h *History) Redo() (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return State{}, ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
	return e.After, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// PeekUndo describes the next undo entry without removing it.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo describes the next redo entry without removing it.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.undoStack))
	for i, e := range h.undoStack {
		result[i] = e.info()
	}
	return result
}

// Clear removes all undo and redo entries and ends any open group.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = nil
}

// SetMaxEntries changes the undo limit, dropping the oldest entries if the
// stack is already larger.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = n
	if len(h.undoStack) > n {
		h.undoStack = h.undoStack[len(h.undoStack)-n:]
	}
}

// MaxEntries returns the undo limit.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
