package format

import (
	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

// Typing is the ambient typing style: formatting chosen with an empty
// selection that applies to the next inserted text. It lives next to the
// caret in the editing session, never inside the document.
type Typing struct {
	// Style is the style the next inserted character receives.
	Style style.Char
	// Base is the document style at the caret when Style was derived.
	Base style.Char
	// Active is false when no typing style is pending.
	Active bool
}

// Reset clears the pending typing style.
func (t *Typing) Reset() {
	*t = Typing{}
}

// Effective returns the style text inserted at pos would receive.
func (t *Typing) Effective(doc *document.Document, pos document.Position) (style.Char, error) {
	at, err := doc.StyleAt(pos)
	if err != nil {
		return style.Char{}, err
	}
	if t != nil && t.Active {
		return t.Style, nil
	}
	return at, nil
}

// Follow is called after the caret moves to pos. It drops the typing style
// when the style at the new location differs from the one it was derived
// from. It reports whether the typing style was reset.
func (t *Typing) Follow(doc *document.Document, pos document.Position) bool {
	if t == nil || !t.Active {
		return false
	}
	at, err := doc.StyleAt(pos)
	if err == nil && at == t.Base {
		return false
	}
	t.Reset()
	return true
}

// update applies fn to the typing style at pos, starting from the current
// typing style or, if none is pending, from the style at pos.
func (t *Typing) update(doc *document.Document, pos document.Position, fn func(*style.Char)) error {
	at, err := doc.StyleAt(pos)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	if !t.Active || t.Base != at {
		t.Style, t.Base = at, at
	}
	fn(&t.Style)
	t.Active = t.Style != t.Base
	return nil
}
