package document

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/richpad/internal/style"
)

// Run is a span of text sharing one character style.
type Run struct {
	Text  []rune
	Style style.Char
}

// NewRun creates a run from a string.
func NewRun(text string, st style.Char) *Run {
	return &Run{Text: []rune(text), Style: st}
}

// Len returns the number of runes in the run.
func (r *Run) Len() int {
	return len(r.Text)
}

func (r *Run) clone() *Run {
	return &Run{Text: slices.Clone(r.Text), Style: r.Style}
}

// Block is a paragraph: paragraph attributes plus an ordered list of runs.
// A block inside a normalized document always holds at least one run.
type Block struct {
	Para style.Para
	Runs []*Run
}

// NewBlock creates a block. A block given no runs receives an empty run in
// the document default style when it is added with FromBlocks or the
// document is normalized.
func NewBlock(para style.Para, runs ...*Run) *Block {
	return &Block{Para: para, Runs: runs}
}

// Len returns the number of runes in the block.
func (b *Block) Len() int {
	n := 0
	for _, r := range b.Runs {
		n += len(r.Text)
	}
	return n
}

// Text returns the concatenated text of the block's runs.
func (b *Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(string(r.Text))
	}
	return sb.String()
}

// IsEmpty returns true if the block has no text.
func (b *Block) IsEmpty() bool {
	for _, r := range b.Runs {
		if len(r.Text) > 0 {
			return false
		}
	}
	return true
}

func (b *Block) clone() *Block {
	nb := &Block{Para: b.Para, Runs: make([]*Run, len(b.Runs))}
	for i, r := range b.Runs {
		nb.Runs[i] = r.clone()
	}
	return nb
}

// locate returns the canonical run index and offset for a column.
// A column on a run boundary resolves to the start of the following run,
// except at the end of the block.
func (b *Block) locate(col int) (int, int) {
	acc := 0
	for i, r := range b.Runs {
		if col < acc+len(r.Text) {
			return i, col - acc
		}
		acc += len(r.Text)
	}
	last := len(b.Runs) - 1
	return last, len(b.Runs[last].Text)
}

// column returns the column of a run/offset pair.
func (b *Block) column(run, off int) int {
	col := off
	for i := 0; i < run; i++ {
		col += len(b.Runs[i].Text)
	}
	return col
}

// splitAt makes sure a run boundary exists at col and returns the index of
// the run that starts there (len(b.Runs) when col is the block end).
func (b *Block) splitAt(col int) int {
	acc := 0
	for i, r := range b.Runs {
		n := len(r.Text)
		switch {
		case col == acc:
			return i
		case col < acc+n:
			k := col - acc
			head := &Run{Text: slices.Clone(r.Text[:k]), Style: r.Style}
			tail := &Run{Text: slices.Clone(r.Text[k:]), Style: r.Style}
			b.Runs = slices.Replace(b.Runs, i, i+1, head, tail)
			return i + 1
		}
		acc += n
	}
	return len(b.Runs)
}

// styleBefore returns the style of the character preceding col, or false
// at the block start.
func (b *Block) styleBefore(col int) (style.Char, bool) {
	if col <= 0 {
		return style.Char{}, false
	}
	ri, _ := b.locate(col - 1)
	return b.Runs[ri].Style, true
}

// normalize drops empty runs and merges neighbors with equal styles.
// An all-empty block keeps its first run.
func (b *Block) normalize() {
	out := b.Runs[:0:0]
	for _, r := range b.Runs {
		if len(r.Text) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Style == r.Style {
			out[n-1].Text = append(out[n-1].Text, r.Text...)
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		first := b.Runs[0]
		first.Text = nil
		out = append(out, first)
	}
	b.Runs = out
}

// Document is an ordered list of blocks plus the ambient default style
// applied to text that has no explicit style.
type Document struct {
	// ID identifies the document across saves; it is not part of equality.
	ID string

	Default style.Char
	Blocks  []*Block
}

// New creates an empty document: one block holding one empty run.
func New(def style.Char) *Document {
	return &Document{
		ID:      uuid.NewString(),
		Default: def,
		Blocks:  []*Block{{Para: style.DefaultPara(), Runs: []*Run{{Style: def}}}},
	}
}

// FromBlocks creates a document from prebuilt blocks and normalizes it.
func FromBlocks(def style.Char, blocks ...*Block) *Document {
	d := &Document{ID: uuid.NewString(), Default: def, Blocks: blocks}
	d.Normalize()
	return d
}

// Normalize restores the canonical form of the tree: at least one block,
// at least one run per block, no mergeable neighbors.
func (d *Document) Normalize() {
	if len(d.Blocks) == 0 {
		d.Blocks = []*Block{{Para: style.DefaultPara()}}
	}
	for _, b := range d.Blocks {
		if len(b.Runs) == 0 {
			b.Runs = []*Run{{Style: d.Default}}
		}
		b.normalize()
	}
}

// NumBlocks returns the number of blocks.
func (d *Document) NumBlocks() int {
	return len(d.Blocks)
}

// Block returns the block at index i, or nil.
func (d *Document) Block(i int) *Block {
	if i < 0 || i >= len(d.Blocks) {
		return nil
	}
	return d.Blocks[i]
}

// BlockText returns the text of block i.
func (d *Document) BlockText(i int) string {
	if b := d.Block(i); b != nil {
		return b.Text()
	}
	return ""
}

// Text returns the plain text of the document with blocks joined by "\n".
func (d *Document) Text() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, r := range b.Runs {
			sb.WriteString(string(r.Text))
		}
	}
	return sb.String()
}

// Len returns the document length in characters, counting one character
// per block boundary.
func (d *Document) Len() Offset {
	n := len(d.Blocks) - 1
	for _, b := range d.Blocks {
		n += b.Len()
	}
	return Offset(n)
}

// IsEmpty returns true if the document holds a single empty block.
func (d *Document) IsEmpty() bool {
	return len(d.Blocks) == 1 && d.Blocks[0].IsEmpty()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	nd := &Document{ID: d.ID, Default: d.Default, Blocks: make([]*Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		nd.Blocks[i] = b.clone()
	}
	return nd
}

// Equal reports whether two documents have the same default style, block
// structure, runs and attributes. IDs are ignored.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Default != o.Default || len(d.Blocks) != len(o.Blocks) {
		return false
	}
	for i, b := range d.Blocks {
		ob := o.Blocks[i]
		if b.Para != ob.Para || len(b.Runs) != len(ob.Runs) {
			return false
		}
		for j, r := range b.Runs {
			or := ob.Runs[j]
			if r.Style != or.Style || !slices.Equal(r.Text, or.Text) {
				return false
			}
		}
	}
	return true
}
