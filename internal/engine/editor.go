package engine

import (
	"sync"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/format"
	"github.com/dshills/richpad/internal/history"
	"github.com/dshills/richpad/internal/logging"
	"github.com/dshills/richpad/internal/navigate"
	"github.com/dshills/richpad/internal/notify"
	"github.com/dshills/richpad/internal/style"
)

// Editor owns one document and its editing session: the selection, the
// typing style, undo history and file association.
//
// All methods are safe for concurrent use. A document installed in the
// editor is never mutated in place; every change works on a clone that
// replaces it, so snapshots handed to the history or the autosaver stay
// valid.
type Editor struct {
	mu sync.RWMutex

	doc    *document.Document
	anchor document.Offset
	active document.Offset
	typing format.Typing

	path     string
	revision uint64
	saved    uint64

	history  *history.History
	notifier *notify.Notifier
	ownsNtf  bool
	logger   *logging.Logger

	def     style.Char
	maxUndo int
	initDoc *document.Document
}

// New creates an editor holding an empty document.
func New(opts ...Option) *Editor {
	e := defaults()
	for _, opt := range opts {
		opt(e)
	}

	e.doc = e.initDoc
	e.initDoc = nil
	if e.doc == nil {
		e.doc = document.New(e.def)
	} else {
		e.doc.Normalize()
	}
	e.history = history.New(e.maxUndo)
	if e.notifier == nil {
		e.notifier = notify.New()
		e.ownsNtf = true
	}
	e.logger = e.logger.WithComponent("engine")
	return e
}

// Close releases the editor's private notifier.
func (e *Editor) Close() {
	if e.ownsNtf {
		e.notifier.Close()
	}
}

// Subscribe registers an observer for editor changes of the given kinds,
// or of every kind when none are listed.
func (e *Editor) Subscribe(obs notify.Observer, kinds ...notify.Kind) *notify.Subscription {
	return e.notifier.SubscribeKind(obs, kinds...)
}

// selectionLocked resolves the stored offsets against doc.
func (e *Editor) selectionLocked(doc *document.Document) (document.Selection, error) {
	a, err := doc.PositionAt(e.anchor)
	if err != nil {
		return document.Selection{}, err
	}
	b, err := doc.PositionAt(e.active)
	if err != nil {
		return document.Selection{}, err
	}
	return document.Selection{Anchor: a, Active: b}, nil
}

// change describes the result of a mutation callback.
type change struct {
	// edit is the text change, nil for pure formatting.
	edit *document.Edit
	// unchanged means the document was left alone.
	unchanged bool
}

// mutate runs fn on a clone of the document and installs the clone when fn
// succeeds. After a text edit the selection collapses to where its end was
// carried by the edit; formatting leaves it in place.
func (e *Editor) mutate(op string, kind notify.Kind, fn func(doc *document.Document, sel document.Selection) (change, error)) error {
	e.mu.Lock()

	work := e.doc.Clone()
	sel, err := e.selectionLocked(work)
	if err != nil {
		e.mu.Unlock()
		return newOpError(op, "", err)
	}
	res, err := fn(work, sel)
	if err != nil {
		e.mu.Unlock()
		e.logger.Debug("%s failed: %v", op, err)
		return newOpError(op, "", err)
	}
	if res.unchanged {
		e.mu.Unlock()
		return nil
	}

	before := history.State{Doc: e.doc, Anchor: e.anchor, Active: e.active}
	if res.edit != nil {
		caret := document.TransformOffset(max(e.anchor, e.active), *res.edit)
		e.anchor, e.active = caret, caret
		e.typing.Reset()
	}
	e.doc = work
	e.revision++
	rev := e.revision
	e.history.Push(history.Entry{
		Description: op,
		Before:      before,
		After:       history.State{Doc: work, Anchor: e.anchor, Active: e.active},
	})
	e.mu.Unlock()

	e.logger.Debug("%s (revision %d)", op, rev)
	e.notifier.Notify(notify.Change{Kind: kind, Revision: rev, Description: op})
	return nil
}

// textEdit runs a text mutation that replaces [start, end) and derives the
// offset edit from the document length before and after.
func textEdit(doc *document.Document, start, end document.Position, fn func() error) (change, error) {
	so, err := doc.OffsetOf(start)
	if err != nil {
		return change{}, err
	}
	eo, err := doc.OffsetOf(end)
	if err != nil {
		return change{}, err
	}
	before := doc.Len()
	if err := fn(); err != nil {
		return change{}, err
	}
	ed := document.EditBetween(so, int(eo-so), before, doc.Len())
	return change{edit: &ed}, nil
}

// InsertText replaces the selection with text, or inserts it at the caret.
// At a caret the pending typing style, if any, styles the new text.
func (e *Editor) InsertText(text string) error {
	if text == "" {
		return nil
	}
	return e.mutate("insert text", notify.ChangeEdit, func(doc *document.Document, sel document.Selection) (change, error) {
		return textEdit(doc, sel.Start(), sel.End(), func() error {
			if !sel.IsEmpty() {
				_, err := doc.Replace(sel, text)
				return err
			}
			st, err := e.typing.Effective(doc, sel.Active)
			if err != nil {
				return err
			}
			_, err = doc.InsertStyled(sel.Active, text, st)
			return err
		})
	})
}

// Delete removes the selection, or the grapheme before the caret.
func (e *Editor) Delete() error {
	return e.deleteDir("delete", false)
}

// DeleteForward removes the selection, or the grapheme after the caret.
func (e *Editor) DeleteForward() error {
	return e.deleteDir("delete forward", true)
}

func (e *Editor) deleteDir(op string, forward bool) error {
	return e.mutate(op, notify.ChangeEdit, func(doc *document.Document, sel document.Selection) (change, error) {
		start, end := sel.Start(), sel.End()
		if sel.IsEmpty() {
			var (
				p   document.Position
				ok  bool
				err error
			)
			if forward {
				p, ok, err = doc.Next(sel.Active)
				end = p
			} else {
				p, ok, err = doc.Prev(sel.Active)
				start = p
			}
			if err != nil {
				return change{}, err
			}
			if !ok {
				return change{unchanged: true}, nil
			}
		}
		return textEdit(doc, start, end, func() error {
			_, err := doc.DeleteRange(document.Span(start, end))
			return err
		})
	})
}

// SplitBlock replaces the selection with a paragraph break.
func (e *Editor) SplitBlock() error {
	return e.mutate("split block", notify.ChangeEdit, func(doc *document.Document, sel document.Selection) (change, error) {
		return textEdit(doc, sel.Start(), sel.End(), func() error {
			p, err := doc.DeleteRange(sel)
			if err != nil {
				return err
			}
			_, err = doc.SplitBlock(p)
			return err
		})
	})
}

// ToggleBinary toggles bold, italic or underline over the selection, or
// the typing style at a caret.
func (e *Editor) ToggleBinary(prop style.Property) error {
	return e.applyFormat("toggle "+prop.String(), func(doc *document.Document, sel document.Selection) error {
		return format.ToggleBinary(doc, sel, prop, &e.typing)
	})
}

// SetScalar sets a character property over the selection, or the typing
// style at a caret.
func (e *Editor) SetScalar(prop style.Property, value style.Value) error {
	return e.applyFormat("set "+prop.String(), func(doc *document.Document, sel document.Selection) error {
		return format.SetScalar(doc, sel, prop, value, &e.typing)
	})
}

// SetParagraph sets a paragraph property on every block the selection
// touches.
func (e *Editor) SetParagraph(prop style.Property, value style.Value) error {
	return e.applyFormat("set "+prop.String(), func(doc *document.Document, sel document.Selection) error {
		return format.SetParagraph(doc, sel, prop, value)
	})
}

// Indent changes the text indent of the touched blocks by delta points.
func (e *Editor) Indent(delta float64) error {
	return e.applyFormat("indent", func(doc *document.Document, sel document.Selection) error {
		return format.Indent(doc, sel, delta)
	})
}

// ToggleList toggles the list marker of the touched blocks.
func (e *Editor) ToggleList(kind style.ListKind) error {
	return e.applyFormat("toggle "+kind.String()+" list", func(doc *document.Document, sel document.Selection) error {
		return format.ToggleList(doc, sel, kind)
	})
}

// SetLineSpacing sets the line height of the touched blocks to factor times
// fontSize points.
func (e *Editor) SetLineSpacing(factor, fontSize float64) error {
	return e.applyFormat("line spacing", func(doc *document.Document, sel document.Selection) error {
		return format.SetLineSpacing(doc, sel, factor, fontSize)
	})
}

// applyFormat runs a formatting operation. Changes that only touch the typing
// style or leave the document equal are not recorded in the history.
func (e *Editor) applyFormat(op string, fn func(doc *document.Document, sel document.Selection) error) error {
	typingChanged := false
	err := e.mutate(op, notify.ChangeFormat, func(doc *document.Document, sel document.Selection) (change, error) {
		prev := e.typing
		if err := fn(doc, sel); err != nil {
			e.typing = prev
			return change{}, err
		}
		typingChanged = e.typing != prev
		if doc.Equal(e.doc) {
			return change{unchanged: true}, nil
		}
		return change{}, nil
	})
	if err == nil && typingChanged {
		e.notifier.Notify(notify.Change{Kind: notify.ChangeSelection, Revision: e.Revision(), Description: op})
	}
	return err
}

// Undo restores the state before the last change.
func (e *Editor) Undo() error {
	return e.restore("undo", e.history.Undo)
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() error {
	return e.restore("redo", e.history.Redo)
}

func (e *Editor) restore(op string, pop func() (history.State, error)) error {
	e.mu.Lock()
	st, err := pop()
	if err != nil {
		e.mu.Unlock()
		return newOpError(op, "", err)
	}
	e.doc = st.Doc
	e.anchor, e.active = st.Anchor, st.Active
	e.typing.Reset()
	e.revision++
	rev := e.revision
	e.mu.Unlock()

	e.logger.Debug("%s (revision %d)", op, rev)
	e.notifier.Notify(notify.Change{Kind: notify.ChangeEdit, Revision: rev, Description: op})
	return nil
}

// CanUndo reports whether Undo has anything to restore.
func (e *Editor) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo reports whether Redo has anything to reapply.
func (e *Editor) CanRedo() bool {
	return e.history.CanRedo()
}

// Group runs fn so that every change it makes undoes as one step. If fn
// fails the document is rolled back to its state before the group.
func (e *Editor) Group(name string, fn func() error) error {
	return e.history.Transaction(name, fn, func(st history.State) {
		e.mu.Lock()
		e.doc = st.Doc
		e.anchor, e.active = st.Anchor, st.Active
		e.typing.Reset()
		e.revision++
		rev := e.revision
		e.mu.Unlock()

		e.logger.Warn("%s rolled back", name)
		e.notifier.Notify(notify.Change{Kind: notify.ChangeEdit, Revision: rev, Description: name + " rolled back"})
	})
}

// Select sets the selection. Both ends must resolve in the current
// document. The typing style is dropped when the caret moves to text with
// a different style.
func (e *Editor) Select(sel document.Selection) error {
	e.mu.Lock()
	a, err := e.doc.OffsetOf(sel.Anchor)
	if err == nil {
		var b document.Offset
		if b, err = e.doc.OffsetOf(sel.Active); err == nil {
			e.setSelectionLocked(a, b)
		}
	}
	rev := e.revision
	e.mu.Unlock()
	if err != nil {
		return newOpError("select", "", err)
	}
	e.notifier.Notify(notify.Change{Kind: notify.ChangeSelection, Revision: rev, Description: "select"})
	return nil
}

// SelectOffsets sets the selection from absolute offsets.
func (e *Editor) SelectOffsets(anchor, active document.Offset) error {
	e.mu.Lock()
	var err error
	for _, off := range []document.Offset{anchor, active} {
		if _, err = e.doc.PositionAt(off); err != nil {
			break
		}
	}
	if err == nil {
		e.setSelectionLocked(anchor, active)
	}
	rev := e.revision
	e.mu.Unlock()
	if err != nil {
		return newOpError("select", "", err)
	}
	e.notifier.Notify(notify.Change{Kind: notify.ChangeSelection, Revision: rev, Description: "select"})
	return nil
}

// SelectAll selects the whole document.
func (e *Editor) SelectAll() {
	e.mu.Lock()
	e.setSelectionLocked(0, e.doc.Len())
	rev := e.revision
	e.mu.Unlock()
	e.notifier.Notify(notify.Change{Kind: notify.ChangeSelection, Revision: rev, Description: "select all"})
}

// MoveCaret collapses the selection to off, clamped to the document.
func (e *Editor) MoveCaret(off document.Offset) {
	e.mu.Lock()
	off = e.doc.ClampOffset(off)
	e.setSelectionLocked(off, off)
	rev := e.revision
	e.mu.Unlock()
	e.notifier.Notify(notify.Change{Kind: notify.ChangeSelection, Revision: rev, Description: "move caret"})
}

func (e *Editor) setSelectionLocked(anchor, active document.Offset) {
	e.anchor, e.active = anchor, active
	if p, err := e.doc.PositionAt(active); err == nil {
		e.typing.Follow(e.doc, p)
	} else {
		e.typing.Reset()
	}
}

// Selection returns the current selection.
func (e *Editor) Selection() document.Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sel, err := e.selectionLocked(e.doc)
	if err != nil {
		return document.Caret(e.doc.Start())
	}
	return sel
}

// SelectionOffsets returns the anchor and active ends as offsets.
func (e *Editor) SelectionOffsets() (anchor, active document.Offset) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.anchor, e.active
}

// Caret returns the active end of the selection.
func (e *Editor) Caret() document.Position {
	return e.Selection().Active
}

// Typing returns the pending typing style.
func (e *Editor) Typing() format.Typing {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.typing
}

// LineAndColumn returns the 1-based line and column of the caret.
func (e *Editor) LineAndColumn() (line, col int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, err := e.doc.PositionAt(e.active)
	if err != nil {
		return 1, 1
	}
	line, col, err = navigate.LineAndColumn(e.doc, p)
	if err != nil {
		return 1, 1
	}
	return line, col
}

// WordCount returns the number of words in the document.
func (e *Editor) WordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return navigate.WordCount(e.doc)
}

// Stats returns document statistics.
func (e *Editor) Stats() navigate.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return navigate.Collect(e.doc)
}

// UniformValue returns the value of prop over the selection or style.Mixed.
func (e *Editor) UniformValue(prop style.Property) (style.Value, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sel, err := e.selectionLocked(e.doc)
	if err != nil {
		return nil, newOpError("query", prop.String(), err)
	}
	typing := e.typing
	v, err := format.UniformValue(e.doc, sel, prop, &typing)
	if err != nil {
		return nil, newOpError("query", prop.String(), err)
	}
	return v, nil
}

// Status returns the status bar line for the caret.
func (e *Editor) Status() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, err := e.doc.PositionAt(e.active)
	if err != nil {
		p = e.doc.Start()
	}
	s, err := navigate.Status(e.doc, p, e.path)
	if err != nil {
		return ""
	}
	return s
}

// Text returns the plain text of the document.
func (e *Editor) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Text()
}

// Document returns a copy of the document.
func (e *Editor) Document() *document.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Clone()
}

// Snapshot returns the current document without copying it, with its path
// and revision. The document must not be modified.
func (e *Editor) Snapshot() (*document.Document, string, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc, e.path, e.revision
}

// Revision returns a counter that grows with every change to the document.
func (e *Editor) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// Modified reports whether the document changed since it was last loaded
// or saved.
func (e *Editor) Modified() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision != e.saved
}

// Path returns the file the document belongs to, or "".
func (e *Editor) Path() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.path
}
