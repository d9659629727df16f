package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

func state(t *testing.T, text string) State {
	t.Helper()
	d := document.New(style.DefaultChar())
	_, err := d.InsertText(d.Start(), text)
	require.NoError(t, err)
	return State{Doc: d, Anchor: d.Len(), Active: d.Len()}
}

// chain pushes one entry per step: "" -> texts[0] -> texts[1] ...
func chain(t *testing.T, h *History, texts ...string) []State {
	t.Helper()
	states := []State{state(t, "")}
	for _, s := range texts {
		next := state(t, s)
		h.Push(Entry{Description: "type " + s, Before: states[len(states)-1], After: next})
		states = append(states, next)
	}
	return states
}

func TestNewUsesDefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxEntries, New(0).MaxEntries())
	assert.Equal(t, 5, New(5).MaxEntries())
}

func TestUndoRedo(t *testing.T) {
	h := New(0)
	states := chain(t, h, "a", "ab")

	require.True(t, h.CanUndo())
	require.False(t, h.CanRedo())

	st, err := h.Undo()
	require.NoError(t, err)
	assert.Same(t, states[1].Doc, st.Doc)

	st, err = h.Undo()
	require.NoError(t, err)
	assert.Same(t, states[0].Doc, st.Doc)

	_, err = h.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)

	st, err = h.Redo()
	require.NoError(t, err)
	assert.Same(t, states[1].Doc, st.Doc)
	assert.Equal(t, 1, h.UndoCount())
	assert.Equal(t, 1, h.RedoCount())

	info, ok := h.PeekRedo()
	require.True(t, ok)
	assert.Equal(t, "type ab", info.Description)
	assert.False(t, info.Timestamp.IsZero())
}

func TestPushClearsRedo(t *testing.T) {
	h := New(0)
	chain(t, h, "a", "ab")
	_, err := h.Undo()
	require.NoError(t, err)
	require.True(t, h.CanRedo())

	h.Push(Entry{Before: state(t, "a"), After: state(t, "ax")})
	assert.False(t, h.CanRedo())
	_, err = h.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestMaxEntries(t *testing.T) {
	h := New(3)
	chain(t, h, "a", "b", "c", "d", "e")
	assert.Equal(t, 3, h.UndoCount())

	infos := h.UndoInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, "type c", infos[0].Description)
	assert.Equal(t, "type e", infos[2].Description)

	h.SetMaxEntries(1)
	assert.Equal(t, 1, h.UndoCount())
	info, ok := h.PeekUndo()
	require.True(t, ok)
	assert.Equal(t, "type e", info.Description)
}

func TestGroupFoldsEntries(t *testing.T) {
	h := New(0)
	h.BeginGroup("Replace All")
	assert.True(t, h.IsGrouping())
	states := chain(t, h, "a", "ab", "abc")
	assert.Equal(t, 0, h.UndoCount())
	h.EndGroup()

	require.Equal(t, 1, h.UndoCount())
	info, _ := h.PeekUndo()
	assert.Equal(t, "Replace All", info.Description)

	st, err := h.Undo()
	require.NoError(t, err)
	assert.Same(t, states[0].Doc, st.Doc)

	st, err = h.Redo()
	require.NoError(t, err)
	assert.Same(t, states[3].Doc, st.Doc)
}

func TestEmptyGroupRecordsNothing(t *testing.T) {
	h := New(0)
	h.BeginGroup("nothing")
	h.BeginGroup("nested is ignored")
	h.EndGroup()
	assert.False(t, h.IsGrouping())
	assert.False(t, h.CanUndo())
}

func TestCancelGroup(t *testing.T) {
	h := New(0)
	_, ok := h.CancelGroup()
	assert.False(t, ok)

	h.BeginGroup("g")
	states := chain(t, h, "a", "ab")
	st, ok := h.CancelGroup()
	require.True(t, ok)
	assert.Same(t, states[0].Doc, st.Doc)
	assert.False(t, h.CanUndo())
	assert.False(t, h.IsGrouping())
}

func TestTransaction(t *testing.T) {
	h := New(0)
	boom := errors.New("boom")

	var rolledBack *State
	err := h.Transaction("fails", func() error {
		chain(t, h, "x")
		return boom
	}, func(st State) { rolledBack = &st })
	require.ErrorIs(t, err, boom)
	require.NotNil(t, rolledBack)
	assert.Equal(t, "", rolledBack.Doc.Text())
	assert.False(t, h.CanUndo())

	err = h.Transaction("works", func() error {
		chain(t, h, "x", "xy")
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.UndoCount())
}

func TestGroupScope(t *testing.T) {
	h := New(0)
	func() {
		defer h.GroupScope("scoped").End()
		chain(t, h, "a", "b")
	}()
	assert.False(t, h.IsGrouping())
	assert.Equal(t, 1, h.UndoCount())

	g := h.GroupScope("twice")
	g.End()
	g.End()
	assert.False(t, h.IsGrouping())
}

func TestClear(t *testing.T) {
	h := New(0)
	chain(t, h, "a", "b")
	_, _ = h.Undo()
	h.BeginGroup("open")
	h.Clear()

	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.False(t, h.IsGrouping())
}
