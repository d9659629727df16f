package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA foreground color with 8 bits per channel.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	Black = Color{0, 0, 0, 0xff}
	White = Color{0xff, 0xff, 0xff, 0xff}
)

// RGBA returns a Color from its channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Hex returns the color as #rrggbbaa.
func (c Color) Hex() string {
	rgb := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	return fmt.Sprintf("%s%02x", rgb.Hex(), c.A)
}

// String returns the hex form of the color.
func (c Color) String() string {
	return c.Hex()
}

// IsOpaque returns true if the alpha channel is fully set.
func (c Color) IsOpaque() bool {
	return c.A == 0xff
}

// ParseColor parses #rgb, #rrggbb, #rrggbbaa or a named color such as
// "red" or "darkslategray". Missing alpha means fully opaque.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty color", ErrInvalidValue)
	}

	if !strings.HasPrefix(s, "#") {
		tc, ok := tcell.ColorNames[strings.ToLower(s)]
		if !ok {
			return Color{}, fmt.Errorf("%w: unknown color %q", ErrInvalidValue, s)
		}
		r, g, b := tc.RGB()
		return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
	}

	alpha := uint8(0xff)
	hex := s
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: bad alpha in %q", ErrInvalidValue, s)
		}
		alpha = uint8(a)
		hex = s[:7]
	}

	cf, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidValue, s, err)
	}
	r, g, b := cf.RGB255()
	return Color{R: r, G: g, B: b, A: alpha}, nil
}

// MustParseColor is like ParseColor but panics on error.
// Intended for package-level defaults and tests.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
