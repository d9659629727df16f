package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/richpad/internal/history"
)

// Errors returned by the editor.
var (
	// ErrNoPath indicates Save was called on a document that has no file.
	ErrNoPath = errors.New("document has no file path")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)

// OperationError records the editor operation that failed.
type OperationError struct {
	Op     string // operation name, e.g. "insert text" or "save"
	Target string // file path or property, when relevant
	Err    error
}

func newOpError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the same wrapper instance or anything the wrapped error
// matches.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
