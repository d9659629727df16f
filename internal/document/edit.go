package document

import (
	"slices"
	"strings"

	"github.com/dshills/richpad/internal/style"
)

// StyleAt returns the style new text typed at p would receive: the style of
// the preceding character in the block, or the document default at a block
// start.
func (d *Document) StyleAt(p Position) (style.Char, error) {
	bi, col, err := d.resolve(p)
	if err != nil {
		return style.Char{}, err
	}
	if st, ok := d.Blocks[bi].styleBefore(col); ok {
		return st, nil
	}
	return d.Default, nil
}

// InsertText inserts text at p using the style in effect there (see
// StyleAt). Newlines split the block. Returns the position just after the
// inserted text.
func (d *Document) InsertText(p Position, text string) (Position, error) {
	st, err := d.StyleAt(p)
	if err != nil {
		return Position{}, err
	}
	return d.InsertStyled(p, text, st)
}

// InsertStyled inserts text at p with an explicit style. Newlines split the
// block; every new block inherits the paragraph attributes of the block
// being split. Returns the position just after the inserted text.
func (d *Document) InsertStyled(p Position, text string, st style.Char) (Position, error) {
	bi, col, err := d.resolve(p)
	if err != nil {
		return Position{}, err
	}
	if err := st.Validate(); err != nil {
		return Position{}, err
	}
	if text == "" {
		return d.at(bi, col), nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if i > 0 {
			bi, col = d.splitBlock(bi, col)
		}
		if line == "" {
			continue
		}
		b := d.Blocks[bi]
		k := b.splitAt(col)
		b.Runs = slices.Insert(b.Runs, k, &Run{Text: []rune(line), Style: st})
		col += len([]rune(line))
		b.normalize()
	}
	return d.at(bi, col), nil
}

// SplitBlock inserts a block boundary at p. The trailing block inherits the
// paragraph attributes of the original. Returns the start of the new block.
func (d *Document) SplitBlock(p Position) (Position, error) {
	bi, col, err := d.resolve(p)
	if err != nil {
		return Position{}, err
	}
	bi, col = d.splitBlock(bi, col)
	return d.at(bi, col), nil
}

// splitBlock splits block bi at col and returns the block and column of the
// start of the new block.
func (d *Document) splitBlock(bi, col int) (int, int) {
	b := d.Blocks[bi]
	k := b.splitAt(col)
	head := b.Runs[:k:k]
	tail := slices.Clone(b.Runs[k:])

	if k == 0 {
		head = []*Run{{Style: d.Default}}
	}
	if col == b.Len() {
		tail = []*Run{{Style: d.Default}}
	}
	b.Runs = head
	b.normalize()

	nb := &Block{Para: b.Para, Runs: tail}
	nb.normalize()
	d.Blocks = slices.Insert(d.Blocks, bi+1, nb)
	return bi + 1, 0
}

// DeleteRange removes the text between the ends of sel. A range spanning
// blocks merges the surviving head of the first block with the surviving
// tail of the last; the merged block keeps the first block's paragraph
// attributes. A block left without text holds one empty run in the document
// default style. Returns the caret position where the range started.
func (d *Document) DeleteRange(sel Selection) (Position, error) {
	b1, c1, b2, c2, err := d.resolveSelection(sel)
	if err != nil {
		return Position{}, err
	}
	if b1 == b2 && c1 == c2 {
		return d.at(b1, c1), nil
	}

	first := d.Blocks[b1]
	last := d.Blocks[b2]
	i := first.splitAt(c1)
	head := slices.Clone(first.Runs[:i])
	j := last.splitAt(c2)
	tail := slices.Clone(last.Runs[j:])

	first.Runs = append(head, tail...)
	if first.IsEmpty() {
		first.Runs = []*Run{{Style: d.Default}}
	}
	first.normalize()
	if b2 > b1 {
		d.Blocks = slices.Delete(d.Blocks, b1+1, b2+1)
	}
	return d.at(b1, c1), nil
}

// Replace deletes sel and inserts text at its start with the style in
// effect before the deletion. Returns the position after the new text.
func (d *Document) Replace(sel Selection, text string) (Position, error) {
	b1, c1, _, _, err := d.resolveSelection(sel)
	if err != nil {
		return Position{}, err
	}
	st, ok := d.Blocks[b1].styleBefore(c1)
	if !ok {
		st = d.Default
		if !sel.IsEmpty() {
			ri, _ := d.Blocks[b1].locate(c1)
			st = d.Blocks[b1].Runs[ri].Style
		}
	}
	p, err := d.DeleteRange(sel)
	if err != nil {
		return Position{}, err
	}
	return d.InsertStyled(p, text, st)
}

// TouchedBlocks returns the first and last block containing at least one
// character of sel, or the caret block for an empty selection. A range that
// ends at the very start of a later block does not touch that block.
func (d *Document) TouchedBlocks(sel Selection) (int, int, error) {
	b1, _, b2, c2, err := d.resolveSelection(sel)
	if err != nil {
		return 0, 0, err
	}
	if b2 > b1 && c2 == 0 {
		b2--
	}
	return b1, b2, nil
}

// Styles calls fn with the style of every run fragment inside sel, in
// reading order, skipping empty fragments. It stops when fn returns false.
func (d *Document) Styles(sel Selection, fn func(style.Char) bool) error {
	b1, c1, b2, c2, err := d.resolveSelection(sel)
	if err != nil {
		return err
	}
	for bi := b1; bi <= b2; bi++ {
		start, end := 0, d.Blocks[bi].Len()
		if bi == b1 {
			start = c1
		}
		if bi == b2 {
			end = c2
		}
		acc := 0
		for _, r := range d.Blocks[bi].Runs {
			rs, re := acc, acc+len(r.Text)
			acc = re
			if re <= start || rs >= end {
				continue
			}
			if !fn(r.Style) {
				return nil
			}
		}
	}
	return nil
}

// ApplyChar calls fn on the style of every character inside sel, splitting
// runs at the selection ends, then restores the canonical form. fn must
// keep the style valid.
func (d *Document) ApplyChar(sel Selection, fn func(*style.Char)) error {
	b1, c1, b2, c2, err := d.resolveSelection(sel)
	if err != nil {
		return err
	}
	for bi := b1; bi <= b2; bi++ {
		b := d.Blocks[bi]
		start, end := 0, b.Len()
		if bi == b1 {
			start = c1
		}
		if bi == b2 {
			end = c2
		}
		if start >= end {
			continue
		}
		i := b.splitAt(start)
		j := b.splitAt(end)
		for _, r := range b.Runs[i:j] {
			fn(&r.Style)
		}
		b.normalize()
	}
	return nil
}

// ApplyPara calls fn on the paragraph attributes of every block touched by
// sel (see TouchedBlocks).
func (d *Document) ApplyPara(sel Selection, fn func(*style.Para)) error {
	first, last, err := d.TouchedBlocks(sel)
	if err != nil {
		return err
	}
	for bi := first; bi <= last; bi++ {
		fn(&d.Blocks[bi].Para)
	}
	return nil
}

// Paras calls fn with the paragraph attributes of every block touched by
// sel. It stops when fn returns false.
func (d *Document) Paras(sel Selection, fn func(style.Para) bool) error {
	first, last, err := d.TouchedBlocks(sel)
	if err != nil {
		return err
	}
	for bi := first; bi <= last; bi++ {
		if !fn(d.Blocks[bi].Para) {
			return nil
		}
	}
	return nil
}

// TextIn returns the plain text inside sel with block boundaries as "\n".
func (d *Document) TextIn(sel Selection) (string, error) {
	b1, c1, b2, c2, err := d.resolveSelection(sel)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for bi := b1; bi <= b2; bi++ {
		rs := []rune(d.Blocks[bi].Text())
		start, end := 0, len(rs)
		if bi == b1 {
			start = c1
		}
		if bi == b2 {
			end = c2
		}
		if bi > b1 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(rs[start:end]))
	}
	return sb.String(), nil
}
