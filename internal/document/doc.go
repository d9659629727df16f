// Package document provides the styled text tree of a rich text document
// and the position model used to address it.
//
// A Document is an ordered list of Blocks (paragraphs). Each Block carries
// paragraph attributes and an ordered list of Runs; each Run is a span of
// runes sharing one character style. The tree is kept canonical: adjacent
// runs with equal styles are merged and zero-length runs are dropped, except
// for the single empty run of an empty block.
//
// # Positions
//
// A Position is a plain value (block, run, offset) and never holds a
// pointer into the tree. Positions produced by the document are canonical,
// so Position.Compare orders them in reading order. Positions supplied by a
// caller are validated with Resolve; stale ones fail with ErrInvalidRange.
//
// Code that must keep a location across edits converts it to an absolute
// Offset with OffsetOf, adjusts it with TransformOffset if the edit moved
// text, and converts back with PositionAt. Formatting edits never move text,
// so offsets survive them unchanged.
//
// # Editing
//
//	doc := document.New(style.DefaultChar())
//	end, _ := doc.InsertText(doc.Start(), "hello")
//	next, _ := doc.SplitBlock(end)
//	_, _ = doc.InsertText(next, "world")
//
// Every mutation validates its input before touching the tree; a failed
// call leaves the document unchanged.
//
// Document is not safe for concurrent use. The engine package serializes
// access for callers that need it.
package document
