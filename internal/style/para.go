package style

import "fmt"

// Align is the horizontal alignment of a block.
type Align uint8

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignJustify
)

var alignNames = [...]string{"start", "center", "end", "justify"}

// String returns the alignment name.
func (a Align) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return "unknown"
}

// ParseAlign parses an alignment name. "left" and "right" are accepted
// as aliases for start and end.
func ParseAlign(s string) (Align, error) {
	switch s {
	case "start", "left":
		return AlignStart, nil
	case "center":
		return AlignCenter, nil
	case "end", "right":
		return AlignEnd, nil
	case "justify":
		return AlignJustify, nil
	}
	return 0, fmt.Errorf("%w: alignment %q", ErrInvalidValue, s)
}

// ListKind marks a block as a list item.
type ListKind uint8

const (
	ListNone ListKind = iota
	ListBulleted
	ListNumbered
)

var listNames = [...]string{"none", "bulleted", "numbered"}

// String returns the list kind name.
func (k ListKind) String() string {
	if int(k) < len(listNames) {
		return listNames[k]
	}
	return "unknown"
}

// ParseListKind parses a list kind name.
func ParseListKind(s string) (ListKind, error) {
	for i, n := range listNames {
		if n == s {
			return ListKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: list kind %q", ErrInvalidValue, s)
}

// LineHeight is either a scale factor of the font size or, when Absolute
// is set, a length in points.
type LineHeight struct {
	Value    float64
	Absolute bool
}

// Scale returns a relative line height.
func Scale(f float64) LineHeight {
	return LineHeight{Value: f}
}

// Points returns an absolute line height.
func Points(pt float64) LineHeight {
	return LineHeight{Value: pt, Absolute: true}
}

// String returns "1.5x" or "18pt".
func (lh LineHeight) String() string {
	if lh.Absolute {
		return fmt.Sprintf("%gpt", lh.Value)
	}
	return fmt.Sprintf("%gx", lh.Value)
}

// Para holds the paragraph-level attributes of a block.
type Para struct {
	Align      Align
	Indent     float64
	LineHeight LineHeight
	List       ListKind
}

// DefaultPara returns the paragraph attributes of a new block.
func DefaultPara() Para {
	return Para{LineHeight: Scale(1)}
}

// Validate checks that every attribute is in range.
func (p Para) Validate() error {
	if p.Align > AlignJustify {
		return fmt.Errorf("%w: alignment %d", ErrInvalidValue, p.Align)
	}
	if !Finite(p.Indent) || p.Indent < 0 {
		return fmt.Errorf("%w: indent %v", ErrInvalidValue, p.Indent)
	}
	if !Positive(p.LineHeight.Value) {
		return fmt.Errorf("%w: line height %v", ErrInvalidValue, p.LineHeight.Value)
	}
	if p.List > ListNumbered {
		return fmt.Errorf("%w: list kind %d", ErrInvalidValue, p.List)
	}
	return nil
}
