// Package history provides undo/redo for the editor engine.
//
// Each Entry holds a snapshot of the document and the selection before and
// after a change. Undo returns the "before" state and Redo the "after"
// state; the engine swaps them in. Snapshots are cheap to hold because the
// engine never mutates a document after handing it to the history.
//
// # Grouping
//
// Several changes can undo as one:
//
//	h.BeginGroup("Paste")
//	// ... several edits, each pushed ...
//	h.EndGroup()
//
// The group keeps the state before its first change and after its last.
package history
