// Package engine provides the Editor, the facade a front end drives.
//
// The Editor combines the document tree, the formatter, navigation queries,
// undo/redo and persistence behind one thread-safe API. The selection is
// kept as absolute offsets so it survives the replacement of the document on
// every change.
//
// # Basic Usage
//
//	e := engine.New()
//	defer e.Close()
//
//	_ = e.InsertText("hello world")
//	_ = e.SelectOffsets(0, 5)
//	_ = e.ToggleBinary(style.Bold) // "hello" is bold
//	_ = e.Undo()                   // and plain again
//
//	line, col := e.LineAndColumn()
//	_ = e.SaveAs("notes.rpd")
//
// # Change Notification
//
// Every change publishes a notify.Change. The autosave package subscribes
// through Editor.Subscribe to save after a quiet period.
//
// # Errors
//
// Failed operations return an *OperationError naming the operation. It
// unwraps to the cause, so callers test with errors.Is against
// document.ErrInvalidRange, style.ErrInvalidValue, codec.ErrParse,
// codec.ErrIO and the errors of this package. A failed change leaves the
// document untouched.
package engine
