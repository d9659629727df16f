package format

import (
	"fmt"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

// IndentStep is the indent change, in points, of one indent command.
const IndentStep = 20.0

// Indent adds delta points to the text indent of every touched block.
// Indents never go below zero.
func Indent(doc *document.Document, sel document.Selection, delta float64) error {
	if !style.Finite(delta) {
		return fmt.Errorf("%w: indent change %v", style.ErrInvalidValue, delta)
	}
	return doc.ApplyPara(sel, func(p *style.Para) {
		p.Indent = max(0, p.Indent+delta)
	})
}

// ToggleList marks every touched block as a list item of the given kind,
// or clears the list marker if all of them already are.
func ToggleList(doc *document.Document, sel document.Selection, kind style.ListKind) error {
	if _, err := style.List.Normalize(kind); err != nil {
		return err
	}
	all := true
	err := doc.Paras(sel, func(p style.Para) bool {
		all = p.List == kind
		return all
	})
	if err != nil {
		return err
	}
	next := kind
	if all {
		next = style.ListNone
	}
	return doc.ApplyPara(sel, func(p *style.Para) {
		p.List = next
	})
}

// SetLineSpacing sets an absolute line height of factor times fontSize on
// every touched block.
func SetLineSpacing(doc *document.Document, sel document.Selection, factor, fontSize float64) error {
	if !style.Positive(factor) || !style.Positive(fontSize) || !style.Positive(factor*fontSize) {
		return fmt.Errorf("%w: line spacing %v at %vpt", style.ErrInvalidValue, factor, fontSize)
	}
	return SetParagraph(doc, sel, style.LineSpacing, style.Points(factor*fontSize))
}
