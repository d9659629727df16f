package document

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// Position addresses a boundary between characters: the offset-th rune
// boundary inside run Run of block Block.
type Position struct {
	Block  int
	Run    int
	Offset int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d:%d)", p.Block, p.Run, p.Offset)
}

// Compare orders positions lexicographically by (Block, Run, Offset).
// Returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Block != other.Block:
		return cmpInt(p.Block, other.Block)
	case p.Run != other.Run:
		return cmpInt(p.Run, other.Run)
	default:
		return cmpInt(p.Offset, other.Offset)
	}
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Offset is an absolute character offset from the document start. Every
// block boundary counts as one character, so offsets line up with the runes
// of Text().
type Offset int

// Selection is a half-open range between two positions. Anchor is where the
// selection started; Active is where the caret is.
type Selection struct {
	Anchor Position
	Active Position
}

// Caret returns an empty selection at p.
func Caret(p Position) Selection {
	return Selection{Anchor: p, Active: p}
}

// Span returns a forward selection from start to end.
func Span(start, end Position) Selection {
	return Selection{Anchor: start, Active: end}
}

// IsEmpty returns true if the selection is a caret with no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// Start returns the earlier end of the selection.
func (s Selection) Start() Position {
	if s.Active.Before(s.Anchor) {
		return s.Active
	}
	return s.Anchor
}

// End returns the later end of the selection.
func (s Selection) End() Position {
	if s.Active.Before(s.Anchor) {
		return s.Anchor
	}
	return s.Active
}

// Collapse returns a caret at the active end.
func (s Selection) Collapse() Selection {
	return Caret(s.Active)
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Caret%s", s.Active)
	}
	return fmt.Sprintf("Selection(%s→%s)", s.Anchor, s.Active)
}

// Start returns the position before the first character.
func (d *Document) Start() Position {
	return Position{}
}

// End returns the position after the last character.
func (d *Document) End() Position {
	return d.BlockEnd(len(d.Blocks) - 1)
}

// BlockStart returns the position at the start of block i.
func (d *Document) BlockStart(i int) Position {
	return Position{Block: i}
}

// BlockEnd returns the position at the end of block i.
func (d *Document) BlockEnd(i int) Position {
	b := d.Blocks[i]
	last := len(b.Runs) - 1
	return Position{Block: i, Run: last, Offset: len(b.Runs[last].Text)}
}

// All returns a selection spanning the whole document.
func (d *Document) All() Selection {
	return Span(d.Start(), d.End())
}

// resolve validates p and returns its block index and column.
func (d *Document) resolve(p Position) (int, int, error) {
	if p.Block < 0 || p.Block >= len(d.Blocks) {
		return 0, 0, fmt.Errorf("%w: block %d of %d", ErrInvalidRange, p.Block, len(d.Blocks))
	}
	b := d.Blocks[p.Block]
	if p.Run < 0 || p.Run >= len(b.Runs) {
		return 0, 0, fmt.Errorf("%w: run %d of %d in block %d", ErrInvalidRange, p.Run, len(b.Runs), p.Block)
	}
	if p.Offset < 0 || p.Offset > len(b.Runs[p.Run].Text) {
		return 0, 0, fmt.Errorf("%w: offset %d in run %d of block %d", ErrInvalidRange, p.Offset, p.Run, p.Block)
	}
	return p.Block, b.column(p.Run, p.Offset), nil
}

// resolveSelection validates both ends and returns them in order as
// (block, column) pairs.
func (d *Document) resolveSelection(sel Selection) (b1, c1, b2, c2 int, err error) {
	ab, ac, err := d.resolve(sel.Anchor)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	xb, xc, err := d.resolve(sel.Active)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if xb < ab || (xb == ab && xc < ac) {
		return xb, xc, ab, ac, nil
	}
	return ab, ac, xb, xc, nil
}

// Collapsed reports whether both ends of sel resolve to the same character
// boundary. Unlike Selection.IsEmpty it treats the end of one run and the
// start of the next as equal.
func (d *Document) Collapsed(sel Selection) (bool, error) {
	b1, c1, b2, c2, err := d.resolveSelection(sel)
	if err != nil {
		return false, err
	}
	return b1 == b2 && c1 == c2, nil
}

// at returns the canonical position for a block column.
func (d *Document) at(block, col int) Position {
	ri, off := d.Blocks[block].locate(col)
	return Position{Block: block, Run: ri, Offset: off}
}

// Resolve validates p and returns its canonical form.
func (d *Document) Resolve(p Position) (Position, error) {
	bi, col, err := d.resolve(p)
	if err != nil {
		return Position{}, err
	}
	return d.at(bi, col), nil
}

// Valid reports whether p resolves in the current document.
func (d *Document) Valid(p Position) bool {
	_, _, err := d.resolve(p)
	return err == nil
}

// Column returns the rune offset of p from the start of its block.
func (d *Document) Column(p Position) (int, error) {
	_, col, err := d.resolve(p)
	return col, err
}

// OffsetOf converts a position to an absolute offset.
func (d *Document) OffsetOf(p Position) (Offset, error) {
	bi, col, err := d.resolve(p)
	if err != nil {
		return 0, err
	}
	n := col
	for i := 0; i < bi; i++ {
		n += d.Blocks[i].Len() + 1
	}
	return Offset(n), nil
}

// PositionAt converts an absolute offset to a canonical position.
func (d *Document) PositionAt(off Offset) (Position, error) {
	if off < 0 {
		return Position{}, fmt.Errorf("%w: %d", ErrOffsetOutOfRange, off)
	}
	rem := int(off)
	for i, b := range d.Blocks {
		n := b.Len()
		if rem <= n {
			return d.at(i, rem), nil
		}
		rem -= n + 1
	}
	return Position{}, fmt.Errorf("%w: %d > %d", ErrOffsetOutOfRange, off, d.Len())
}

// ClampOffset limits off to [0, Len()].
func (d *Document) ClampOffset(off Offset) Offset {
	if off < 0 {
		return 0
	}
	if n := d.Len(); off > n {
		return n
	}
	return off
}

// graphemeBounds returns the rune columns of every grapheme cluster
// boundary in s, including 0 and the end.
func graphemeBounds(s string) []int {
	bounds := []int{0}
	acc := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		acc += len(gr.Runes())
		bounds = append(bounds, acc)
	}
	return bounds
}

// Next returns the position one grapheme cluster after p, crossing into the
// next block at a block end. At the document end it returns p and false.
func (d *Document) Next(p Position) (Position, bool, error) {
	bi, col, err := d.resolve(p)
	if err != nil {
		return Position{}, false, err
	}
	b := d.Blocks[bi]
	if col >= b.Len() {
		if bi+1 >= len(d.Blocks) {
			return d.at(bi, col), false, nil
		}
		return d.BlockStart(bi + 1), true, nil
	}
	for _, bound := range graphemeBounds(b.Text()) {
		if bound > col {
			return d.at(bi, bound), true, nil
		}
	}
	return d.BlockEnd(bi), true, nil
}

// Prev returns the position one grapheme cluster before p, crossing into
// the previous block at a block start. At the document start it returns p
// and false.
func (d *Document) Prev(p Position) (Position, bool, error) {
	bi, col, err := d.resolve(p)
	if err != nil {
		return Position{}, false, err
	}
	if col == 0 {
		if bi == 0 {
			return d.Start(), false, nil
		}
		return d.BlockEnd(bi - 1), true, nil
	}
	bounds := graphemeBounds(d.Blocks[bi].Text())
	for i := len(bounds) - 1; i >= 0; i-- {
		if bounds[i] < col {
			return d.at(bi, bounds[i]), true, nil
		}
	}
	return d.BlockStart(bi), true, nil
}
