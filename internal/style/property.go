package style

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidValue indicates a property value of the wrong type or out of range.
var ErrInvalidValue = errors.New("invalid style value")

// Kind classifies properties by how the formatter applies them.
type Kind uint8

const (
	// KindBinary properties are toggled on and off (bold, italic, underline).
	KindBinary Kind = iota
	// KindScalar properties are set directly per character.
	KindScalar
	// KindParagraph properties apply to whole blocks.
	KindParagraph
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindScalar:
		return "scalar"
	case KindParagraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Property identifies a formatting attribute.
type Property uint8

const (
	Bold Property = iota
	Italic
	Underline
	FontFamily
	FontSize
	Foreground
	Alignment
	TextIndent
	LineSpacing
	List
)

var propertyNames = [...]string{
	"bold", "italic", "underline",
	"font-family", "font-size", "foreground",
	"alignment", "text-indent", "line-height", "list",
}

// String returns the property name.
func (p Property) String() string {
	if int(p) < len(propertyNames) {
		return propertyNames[p]
	}
	return fmt.Sprintf("Property(%d)", p)
}

// ParseProperty looks up a property by name.
func ParseProperty(s string) (Property, error) {
	for i, n := range propertyNames {
		if n == s {
			return Property(i), nil
		}
	}
	return 0, fmt.Errorf("unknown property %q", s)
}

// Kind returns the property's kind.
func (p Property) Kind() Kind {
	switch p {
	case Bold, Italic, Underline:
		return KindBinary
	case FontFamily, FontSize, Foreground:
		return KindScalar
	default:
		return KindParagraph
	}
}

// IsChar reports whether the property is stored on runs.
func (p Property) IsChar() bool {
	return p.Kind() != KindParagraph
}

// Value is a property value: bool for binary properties, string for
// FontFamily, float64 for FontSize and TextIndent, Color for Foreground,
// Align, LineHeight and ListKind for the remaining paragraph properties.
// Mixed is returned by range queries that find more than one value.
type Value = any

type mixed struct{}

func (mixed) String() string { return "mixed" }

// Mixed is the sentinel for a non-uniform value over a range.
var Mixed Value = mixed{}

// IsMixed reports whether v is the Mixed sentinel.
func IsMixed(v Value) bool {
	_, ok := v.(mixed)
	return ok
}

// Normalize converts v to the canonical Go type for p and validates it.
// Integer values are accepted for numeric properties.
func (p Property) Normalize(v Value) (Value, error) {
	switch p {
	case Bold, Italic, Underline:
		b, ok := v.(bool)
		if !ok {
			return nil, typeError(p, v)
		}
		return b, nil
	case FontFamily:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(p, v)
		}
		if s == "" {
			return nil, fmt.Errorf("%w: empty font family", ErrInvalidValue)
		}
		return s, nil
	case FontSize:
		f, ok := toFloat(v)
		if !ok {
			return nil, typeError(p, v)
		}
		if !Positive(f) {
			return nil, fmt.Errorf("%w: font size %v", ErrInvalidValue, f)
		}
		return f, nil
	case Foreground:
		switch c := v.(type) {
		case Color:
			return c, nil
		case string:
			return ParseColor(c)
		}
		return nil, typeError(p, v)
	case Alignment:
		switch a := v.(type) {
		case Align:
			if a > AlignJustify {
				return nil, fmt.Errorf("%w: alignment %d", ErrInvalidValue, a)
			}
			return a, nil
		case string:
			return ParseAlign(a)
		}
		return nil, typeError(p, v)
	case TextIndent:
		f, ok := toFloat(v)
		if !ok {
			return nil, typeError(p, v)
		}
		if !Finite(f) || f < 0 {
			return nil, fmt.Errorf("%w: indent %v", ErrInvalidValue, f)
		}
		return f, nil
	case LineSpacing:
		var lh LineHeight
		switch x := v.(type) {
		case LineHeight:
			lh = x
		default:
			f, ok := toFloat(v)
			if !ok {
				return nil, typeError(p, v)
			}
			lh = Scale(f)
		}
		if !Positive(lh.Value) {
			return nil, fmt.Errorf("%w: line height %v", ErrInvalidValue, lh.Value)
		}
		return lh, nil
	case List:
		switch k := v.(type) {
		case ListKind:
			if k > ListNumbered {
				return nil, fmt.Errorf("%w: list kind %d", ErrInvalidValue, k)
			}
			return k, nil
		case string:
			return ParseListKind(k)
		}
		return nil, typeError(p, v)
	}
	return nil, fmt.Errorf("%w: unknown property %v", ErrInvalidValue, p)
}

// Get returns the value of a character property from c.
// It returns nil for paragraph properties.
func (p Property) Get(c Char) Value {
	switch p {
	case Bold:
		return c.Bold()
	case Italic:
		return c.Italic()
	case Underline:
		return c.Underline
	case FontFamily:
		return c.Family
	case FontSize:
		return c.Size
	case Foreground:
		return c.Color
	}
	return nil
}

// GetPara returns the value of a paragraph property from para.
// It returns nil for character properties.
func (p Property) GetPara(para Para) Value {
	switch p {
	case Alignment:
		return para.Align
	case TextIndent:
		return para.Indent
	case LineSpacing:
		return para.LineHeight
	case List:
		return para.List
	}
	return nil
}

// Set stores v into c. The value must already be normalized.
func (p Property) Set(c *Char, v Value) {
	switch p {
	case Bold:
		c.Weight = WeightNormal
		if v.(bool) {
			c.Weight = WeightBold
		}
	case Italic:
		c.Slant = SlantNormal
		if v.(bool) {
			c.Slant = SlantItalic
		}
	case Underline:
		c.Underline = v.(bool)
	case FontFamily:
		c.Family = v.(string)
	case FontSize:
		c.Size = v.(float64)
	case Foreground:
		c.Color = v.(Color)
	}
}

// SetPara stores v into para. The value must already be normalized.
func (p Property) SetPara(para *Para, v Value) {
	switch p {
	case Alignment:
		para.Align = v.(Align)
	case TextIndent:
		para.Indent = v.(float64)
	case LineSpacing:
		para.LineHeight = v.(LineHeight)
	case List:
		para.List = v.(ListKind)
	}
}

func toFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Finite reports whether f is neither NaN nor an infinity.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Positive reports whether f is finite and greater than zero.
func Positive(f float64) bool {
	return Finite(f) && f > 0
}

func typeError(p Property, v Value) error {
	return fmt.Errorf("%w: %v does not accept %T", ErrInvalidValue, p, v)
}
