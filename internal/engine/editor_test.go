package engine

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richpad/internal/codec"
	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/notify"
	"github.com/dshills/richpad/internal/style"
)

func newTestEditor(t *testing.T, text string) *Editor {
	t.Helper()
	e := New()
	t.Cleanup(e.Close)
	if text != "" {
		require.NoError(t, e.InsertText(text))
	}
	return e
}

func offsets(e *Editor) (document.Offset, document.Offset) {
	return e.SelectionOffsets()
}

// recorder collects changes published by an editor.
type recorder struct {
	mu      sync.Mutex
	changes []notify.Change
}

func (r *recorder) observe(c notify.Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *recorder) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Kind
	}
	return out
}

func TestNewEditor(t *testing.T) {
	e := newTestEditor(t, "")

	assert.Equal(t, "", e.Text())
	line, col := e.LineAndColumn()
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	assert.Equal(t, "Line: 1, Col: 1 | Words: 0 | No file", e.Status())
	assert.False(t, e.Modified())
	assert.False(t, e.CanUndo())
	assert.Equal(t, uint64(0), e.Revision())
}

func TestWithOptions(t *testing.T) {
	def := style.DefaultChar()
	def.Family = "Courier"
	doc := document.New(def)
	_, err := doc.InsertText(doc.Start(), "seed")
	require.NoError(t, err)

	e := New(WithDocument(doc), WithDefaultStyle(def), WithPath("/tmp/seed.txt"), WithMaxUndoEntries(2))
	defer e.Close()

	assert.Equal(t, "seed", e.Text())
	assert.Equal(t, "/tmp/seed.txt", e.Path())
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, e.InsertText(s))
	}
	require.NoError(t, e.Undo())
	require.NoError(t, e.Undo())
	assert.ErrorIs(t, e.Undo(), ErrNothingToUndo)
	assert.Equal(t, "aseed", e.Text())

	e.NewDocument()
	assert.Equal(t, def, e.Document().Default)
}

func TestInsertMovesCaret(t *testing.T) {
	e := newTestEditor(t, "hello")

	a, b := offsets(e)
	assert.Equal(t, document.Offset(5), a)
	assert.Equal(t, document.Offset(5), b)
	assert.True(t, e.Modified())
	assert.Equal(t, uint64(1), e.Revision())

	e.MoveCaret(0)
	require.NoError(t, e.InsertText(">> "))
	assert.Equal(t, ">> hello", e.Text())
	_, b = offsets(e)
	assert.Equal(t, document.Offset(3), b)
}

func TestInsertEmptyIsNoop(t *testing.T) {
	e := newTestEditor(t, "")
	require.NoError(t, e.InsertText(""))
	assert.False(t, e.CanUndo())
	assert.Equal(t, uint64(0), e.Revision())
}

func TestReplaceSelection(t *testing.T) {
	e := newTestEditor(t, "hello world")
	require.NoError(t, e.SelectOffsets(5, 0))

	require.NoError(t, e.InsertText("bye"))
	assert.Equal(t, "bye world", e.Text())
	a, b := offsets(e)
	assert.Equal(t, document.Offset(3), a)
	assert.Equal(t, document.Offset(3), b)
}

func TestTypingStyleAppliesToNextInsert(t *testing.T) {
	e := newTestEditor(t, "plain ")

	require.NoError(t, e.ToggleBinary(style.Bold))
	assert.True(t, e.Typing().Active)
	assert.Equal(t, uint64(1), e.Revision(), "typing change is not a document change")

	v, err := e.UniformValue(style.Bold)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	require.NoError(t, e.InsertText("bold"))
	assert.False(t, e.Typing().Active)

	doc := e.Document()
	require.Len(t, doc.Blocks[0].Runs, 2)
	assert.Equal(t, "bold", string(doc.Blocks[0].Runs[1].Text))
	assert.True(t, doc.Blocks[0].Runs[1].Style.Bold())

	v, err = e.UniformValue(style.Bold)
	require.NoError(t, err)
	assert.Equal(t, true, v, "caret after bold text reports bold")
}

func TestTypingStyleDroppedWhenCaretMoves(t *testing.T) {
	e := newTestEditor(t, "ab")
	require.NoError(t, e.SelectOffsets(1, 2))
	require.NoError(t, e.ToggleBinary(style.Bold))

	e.MoveCaret(1)
	require.NoError(t, e.SetScalar(style.FontSize, 20))
	require.True(t, e.Typing().Active)

	e.MoveCaret(2)
	assert.False(t, e.Typing().Active)
}

func TestBoldThenDelete(t *testing.T) {
	e := newTestEditor(t, "hello")
	e.SelectAll()
	require.NoError(t, e.ToggleBinary(style.Bold))

	require.NoError(t, e.SelectOffsets(1, 4))
	require.NoError(t, e.Delete())

	doc := e.Document()
	assert.Equal(t, "ho", doc.Text())
	require.Len(t, doc.Blocks[0].Runs, 1)
	assert.True(t, doc.Blocks[0].Runs[0].Style.Bold())
}

func TestDeleteGraphemes(t *testing.T) {
	e := newTestEditor(t, "ae\u0301\nb")

	e.MoveCaret(3)
	require.NoError(t, e.Delete())
	assert.Equal(t, "a\nb", e.Text())

	require.NoError(t, e.DeleteForward())
	assert.Equal(t, "ab", e.Text())
	_, b := offsets(e)
	assert.Equal(t, document.Offset(1), b)
}

func TestDeleteAtEdgesIsNoop(t *testing.T) {
	e := newTestEditor(t, "ab")
	rev := e.Revision()

	e.MoveCaret(0)
	require.NoError(t, e.Delete())
	e.MoveCaret(2)
	require.NoError(t, e.DeleteForward())

	assert.Equal(t, "ab", e.Text())
	assert.Equal(t, rev, e.Revision())
}

func TestSplitBlock(t *testing.T) {
	e := newTestEditor(t, "")
	require.NoError(t, e.SplitBlock())

	line, col := e.LineAndColumn()
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	require.NoError(t, e.InsertText("x"))
	assert.Equal(t, "\nx", e.Text())
	assert.Equal(t, "Line: 2, Col: 2 | Words: 1 | No file", e.Status())
}

func TestUndoRedoRestoresSelection(t *testing.T) {
	e := newTestEditor(t, "hello")
	require.NoError(t, e.SelectOffsets(0, 5))
	require.NoError(t, e.ToggleBinary(style.Italic))
	require.NoError(t, e.InsertText("X"))

	require.NoError(t, e.Undo())
	assert.Equal(t, "hello", e.Text())
	a, b := offsets(e)
	assert.Equal(t, document.Offset(0), a)
	assert.Equal(t, document.Offset(5), b)

	require.NoError(t, e.Undo())
	v, err := e.UniformValue(style.Italic)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	require.NoError(t, e.Redo())
	require.NoError(t, e.Redo())
	assert.Equal(t, "X", e.Text())

	err = e.Redo()
	require.ErrorIs(t, err, ErrNothingToRedo)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "redo", opErr.Op)
}

func TestFailedOperationChangesNothing(t *testing.T) {
	e := newTestEditor(t, "hello")
	e.SelectAll()
	before := e.Document()
	rev := e.Revision()
	undo := e.CanUndo()

	err := e.SetScalar(style.FontSize, -1)
	require.ErrorIs(t, err, style.ErrInvalidValue)
	err = e.SetParagraph(style.Bold, true)
	require.Error(t, err)
	err = e.SetLineSpacing(0, 12)
	require.Error(t, err)

	assert.True(t, before.Equal(e.Document()))
	assert.Equal(t, rev, e.Revision())
	assert.Equal(t, undo, e.CanUndo())
}

func TestNonFiniteFormattingKeepsMarkupLoadable(t *testing.T) {
	e := newTestEditor(t, "hello")
	e.SelectAll()
	rev := e.Revision()

	require.ErrorIs(t, e.SetScalar(style.FontSize, math.Inf(1)), style.ErrInvalidValue)
	require.ErrorIs(t, e.SetParagraph(style.TextIndent, math.NaN()), style.ErrInvalidValue)
	require.ErrorIs(t, e.Indent(math.NaN()), style.ErrInvalidValue)
	assert.Equal(t, rev, e.Revision())

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, codec.FormatMarkup))
	doc, err := codec.LoadMarkup(&buf)
	require.NoError(t, err)
	assert.True(t, doc.Equal(e.Document()))
	assert.True(t, e.Document().Equal(e.Document()))
}

func TestParagraphFormatting(t *testing.T) {
	e := newTestEditor(t, "one\ntwo\nthree")

	require.NoError(t, e.SelectOffsets(1, 8))
	require.NoError(t, e.SetParagraph(style.Alignment, "justify"))
	require.NoError(t, e.Indent(20))
	require.NoError(t, e.ToggleList(style.ListBulleted))
	require.NoError(t, e.SetLineSpacing(2, 12))

	doc := e.Document()
	for i, want := range []bool{true, true, false} {
		p := doc.Blocks[i].Para
		assert.Equal(t, want, p.Align == style.AlignJustify, "block %d", i)
		assert.Equal(t, want, p.Indent == 20, "block %d", i)
		assert.Equal(t, want, p.List == style.ListBulleted, "block %d", i)
		assert.Equal(t, want, p.LineHeight == style.Points(24), "block %d", i)
	}
}

func TestNoopFormattingIsNotRecorded(t *testing.T) {
	e := newTestEditor(t, "hello")
	e.SelectAll()
	require.NoError(t, e.SetScalar(style.FontSize, 12))
	require.NoError(t, e.Indent(-20))

	require.NoError(t, e.Undo())
	assert.Equal(t, "", e.Text(), "only the insert was recorded")
}

func TestGroup(t *testing.T) {
	e := newTestEditor(t, "")

	err := e.Group("type words", func() error {
		for _, w := range []string{"one ", "two ", "three"} {
			if err := e.InsertText(w); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "one two three", e.Text())

	require.NoError(t, e.Undo())
	assert.Equal(t, "", e.Text())
	require.NoError(t, e.Redo())
	assert.Equal(t, "one two three", e.Text())
}

func TestGroupRollsBackOnError(t *testing.T) {
	e := newTestEditor(t, "keep")
	boom := errors.New("boom")

	err := e.Group("fails", func() error {
		if err := e.InsertText(" lost"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "keep", e.Text())

	require.NoError(t, e.Undo())
	assert.Equal(t, "", e.Text())
}

func TestSelection(t *testing.T) {
	e := newTestEditor(t, "ab\ncd")

	err := e.SelectOffsets(0, 99)
	require.ErrorIs(t, err, document.ErrOffsetOutOfRange)

	err = e.Select(document.Caret(document.Position{Block: 9}))
	require.ErrorIs(t, err, document.ErrInvalidRange)

	doc := e.Document()
	require.NoError(t, e.Select(document.Span(doc.BlockStart(1), doc.Start())))
	a, b := offsets(e)
	assert.Equal(t, document.Offset(3), a)
	assert.Equal(t, document.Offset(0), b)
	assert.Equal(t, doc.Start(), e.Caret())

	e.MoveCaret(-4)
	_, b = offsets(e)
	assert.Equal(t, document.Offset(0), b)
	e.MoveCaret(100)
	_, b = offsets(e)
	assert.Equal(t, document.Offset(5), b)
	line, col := e.LineAndColumn()
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)
}

func TestQueries(t *testing.T) {
	e := newTestEditor(t, "Hello, world!!\n\nbye")

	assert.Equal(t, 3, e.WordCount())
	st := e.Stats()
	assert.Equal(t, 2, st.Paragraphs)
	assert.Equal(t, 17, st.Characters)
}

func TestSnapshotIsStable(t *testing.T) {
	e := newTestEditor(t, "v1")
	snap, _, rev := e.Snapshot()

	require.NoError(t, e.InsertText(" v2"))
	assert.Equal(t, "v1", snap.Text())
	assert.Equal(t, rev+1, e.Revision())

	doc := e.Document()
	_, err := doc.InsertText(doc.Start(), "mutated copy ")
	require.NoError(t, err)
	assert.Equal(t, "v1 v2", e.Text())
}

func TestNotifications(t *testing.T) {
	e := newTestEditor(t, "")
	var rec recorder
	sub := e.Subscribe(rec.observe)

	require.NoError(t, e.InsertText("ab"))
	e.SelectAll()
	require.NoError(t, e.ToggleBinary(style.Bold))
	e.MoveCaret(0)
	require.NoError(t, e.ToggleBinary(style.Italic))
	require.NoError(t, e.Undo())

	assert.Equal(t, []notify.Kind{
		notify.ChangeEdit,
		notify.ChangeSelection,
		notify.ChangeFormat,
		notify.ChangeSelection,
		notify.ChangeSelection,
		notify.ChangeEdit,
	}, rec.kinds())

	sub.Unsubscribe()
	require.NoError(t, e.InsertText("c"))
	assert.Len(t, rec.kinds(), 6)
}

func TestSharedNotifier(t *testing.T) {
	n := notify.New()
	defer n.Close()
	var rec recorder
	n.SubscribeKind(rec.observe, notify.ChangeEdit)

	e := New(WithNotifier(n))
	defer e.Close()
	require.NoError(t, e.InsertText("x"))
	e.SelectAll()

	assert.Equal(t, []notify.Kind{notify.ChangeEdit}, rec.kinds())
}

func TestConcurrentAccess(t *testing.T) {
	e := newTestEditor(t, "")
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = e.InsertText("x")
				_ = e.Status()
				_, _, _ = e.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, len(e.Text()))
}

func TestOperationErrorFormatting(t *testing.T) {
	err := newOpError("save", "/tmp/a.txt", ErrNoPath)
	assert.Equal(t, "save /tmp/a.txt: document has no file path", err.Error())
	assert.ErrorIs(t, err, ErrNoPath)
	assert.True(t, errors.Is(err, err))
	assert.False(t, errors.Is(err, newOpError("save", "/tmp/a.txt", ErrNoPath)))

	var nilErr *OperationError
	assert.Equal(t, "", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}
