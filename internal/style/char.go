package style

import "fmt"

// Weight is the font weight of a run.
type Weight uint8

const (
	WeightNormal Weight = iota
	WeightBold
)

// String returns the weight name.
func (w Weight) String() string {
	switch w {
	case WeightNormal:
		return "normal"
	case WeightBold:
		return "bold"
	default:
		return "unknown"
	}
}

// Slant is the font style of a run.
type Slant uint8

const (
	SlantNormal Slant = iota
	SlantItalic
)

// String returns the slant name.
func (s Slant) String() string {
	switch s {
	case SlantNormal:
		return "normal"
	case SlantItalic:
		return "italic"
	default:
		return "unknown"
	}
}

// Default character style values.
const (
	DefaultFamily = "Segoe UI"
	DefaultSize   = 12.0
)

// Char holds the character-level attributes shared by every character of a run.
// Char is a comparable value type.
type Char struct {
	Family    string
	Size      float64
	Weight    Weight
	Slant     Slant
	Underline bool
	Color     Color
}

// DefaultChar returns the built-in ambient character style.
func DefaultChar() Char {
	return Char{
		Family: DefaultFamily,
		Size:   DefaultSize,
		Color:  Black,
	}
}

// Bold reports whether the weight is bold.
func (c Char) Bold() bool {
	return c.Weight == WeightBold
}

// Italic reports whether the slant is italic.
func (c Char) Italic() bool {
	return c.Slant == SlantItalic
}

// Validate checks that every attribute is in range.
func (c Char) Validate() error {
	if c.Family == "" {
		return fmt.Errorf("%w: empty font family", ErrInvalidValue)
	}
	if !Positive(c.Size) {
		return fmt.Errorf("%w: font size %v", ErrInvalidValue, c.Size)
	}
	if c.Weight > WeightBold {
		return fmt.Errorf("%w: weight %d", ErrInvalidValue, c.Weight)
	}
	if c.Slant > SlantItalic {
		return fmt.Errorf("%w: slant %d", ErrInvalidValue, c.Slant)
	}
	return nil
}

// String returns a compact description, e.g. "Segoe UI 12 bold #000000ff".
func (c Char) String() string {
	s := fmt.Sprintf("%s %g", c.Family, c.Size)
	if c.Bold() {
		s += " bold"
	}
	if c.Italic() {
		s += " italic"
	}
	if c.Underline {
		s += " underline"
	}
	return s + " " + c.Color.Hex()
}
