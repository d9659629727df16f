package format

import (
	"errors"
	"fmt"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

// ErrWrongKind indicates a property that the operation does not handle,
// such as a paragraph property passed to SetScalar.
var ErrWrongKind = errors.New("property kind not supported by operation")

func checkKind(op string, prop style.Property, kinds ...style.Kind) error {
	for _, k := range kinds {
		if prop.Kind() == k {
			return nil
		}
	}
	return fmt.Errorf("%s %v: %w (%v)", op, prop, ErrWrongKind, prop.Kind())
}

// ToggleBinary flips a binary property over the selection. If the property
// is on for every selected character it is cleared, otherwise it is set
// everywhere; a mixed selection counts as off.
//
// With an empty selection the document is left alone and the typing style
// is flipped instead.
func ToggleBinary(doc *document.Document, sel document.Selection, prop style.Property, t *Typing) error {
	if err := checkKind("toggle", prop, style.KindBinary); err != nil {
		return err
	}
	collapsed, err := doc.Collapsed(sel)
	if err != nil {
		return err
	}
	if collapsed {
		return t.update(doc, sel.Active, func(c *style.Char) {
			prop.Set(c, !prop.Get(*c).(bool))
		})
	}

	cur, err := uniformChar(doc, sel, prop)
	if err != nil {
		return err
	}
	on := cur == true
	return doc.ApplyChar(sel, func(c *style.Char) {
		prop.Set(c, !on)
	})
}

// SetScalar sets a character property to value over the selection. With an
// empty selection only the typing style changes.
func SetScalar(doc *document.Document, sel document.Selection, prop style.Property, value style.Value, t *Typing) error {
	if err := checkKind("set", prop, style.KindScalar, style.KindBinary); err != nil {
		return err
	}
	v, err := prop.Normalize(value)
	if err != nil {
		return err
	}
	collapsed, err := doc.Collapsed(sel)
	if err != nil {
		return err
	}
	if collapsed {
		return t.update(doc, sel.Active, func(c *style.Char) {
			prop.Set(c, v)
		})
	}
	return doc.ApplyChar(sel, func(c *style.Char) {
		prop.Set(c, v)
	})
}

// SetParagraph sets a paragraph property on every block the selection
// touches. A selection ending at the very start of a later block does not
// touch that block.
func SetParagraph(doc *document.Document, sel document.Selection, prop style.Property, value style.Value) error {
	if err := checkKind("set", prop, style.KindParagraph); err != nil {
		return err
	}
	v, err := prop.Normalize(value)
	if err != nil {
		return err
	}
	return doc.ApplyPara(sel, func(p *style.Para) {
		prop.SetPara(p, v)
	})
}

// UniformValue returns the value of prop over the selection, or
// style.Mixed if the selection holds more than one value. For an empty
// selection character properties come from the typing style (t may be nil)
// and paragraph properties from the caret's block.
func UniformValue(doc *document.Document, sel document.Selection, prop style.Property, t *Typing) (style.Value, error) {
	if !prop.IsChar() {
		return uniformPara(doc, sel, prop)
	}
	collapsed, err := doc.Collapsed(sel)
	if err != nil {
		return nil, err
	}
	if collapsed {
		c, err := t.Effective(doc, sel.Active)
		if err != nil {
			return nil, err
		}
		return prop.Get(c), nil
	}
	return uniformChar(doc, sel, prop)
}

// uniformChar folds prop over the styled fragments of a non-empty
// selection, stopping at the first disagreement. A selection holding only
// block boundaries reports the style in effect at its start.
func uniformChar(doc *document.Document, sel document.Selection, prop style.Property) (style.Value, error) {
	var acc style.Value
	err := doc.Styles(sel, func(c style.Char) bool {
		v := prop.Get(c)
		if acc == nil {
			acc = v
			return true
		}
		if acc != v {
			acc = style.Mixed
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if acc == nil {
		c, err := doc.StyleAt(sel.Start())
		if err != nil {
			return nil, err
		}
		return prop.Get(c), nil
	}
	return acc, nil
}

func uniformPara(doc *document.Document, sel document.Selection, prop style.Property) (style.Value, error) {
	var acc style.Value
	err := doc.Paras(sel, func(p style.Para) bool {
		v := prop.GetPara(p)
		if acc == nil {
			acc = v
			return true
		}
		if acc != v {
			acc = style.Mixed
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}
