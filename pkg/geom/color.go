// color.go - Hex colour parsing and alpha-blended colour conversion.
package geom

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned by ParseColor for anything that is not a
// 6-digit hex colour.
var ErrInvalidColor = errors.New("invalid color")

// Black is the fallback returned by HexToRGBA for malformed input.
var Black = color.NRGBA{A: 255}

// ParseColor parses "#rrggbb" or "rrggbb" (case-insensitive).
func ParseColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("%w %q: expected 6-char hex", ErrInvalidColor, s)
	}

	rv, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: red channel in %q", ErrInvalidColor, s)
	}
	gv, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: green channel in %q", ErrInvalidColor, s)
	}
	bv, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: blue channel in %q", ErrInvalidColor, s)
	}

	return uint8(rv), uint8(gv), uint8(bv), nil
}

// HexToRGBA converts a hex colour and an alpha in [0,1] to a non-premultiplied
// colour. Malformed hex yields opaque Black so a bad field never blanks a render.
func HexToRGBA(hex string, alpha float64) color.NRGBA {
	r, g, b, err := ParseColor(hex)
	if err != nil {
		return Black
	}
	return color.NRGBA{R: r, G: g, B: b, A: AlphaByte(alpha)}
}

// RGBAString renders the same conversion as HexToRGBA in CSS form,
// e.g. "rgba(51, 51, 51, 0.25)".
func RGBAString(hex string, alpha float64) string {
	r, g, b, err := ParseColor(hex)
	if err != nil {
		return "rgba(0, 0, 0, 1)"
	}
	a := Clamp(alpha, 0, 1)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(a, 'f', -1, 64))
}

// AlphaByte maps an alpha in [0,1] to 0..255, clamping out-of-range input.
func AlphaByte(alpha float64) uint8 {
	return uint8(math.Round(Clamp(alpha, 0, 1) * 255))
}

// RGBA is a shorthand for an NRGBA from 8-bit channels and a float alpha.
func RGBA(r, g, b uint8, alpha float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: AlphaByte(alpha)}
}
