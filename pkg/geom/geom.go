// Package geom holds the coordinate and colour helpers shared by the
// renderers and the hit-tester: percent/pixel conversion, angles and
// axis-aligned boxes.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// PercentToPixel maps a percentage of dimension to pixels. No clamping.
func PercentToPixel(value, dimension float64) float64 {
	return value / 100 * dimension
}

// PixelToPercent is the inverse of PercentToPixel. A zero dimension yields 0.
func PixelToPercent(px, dimension float64) float64 {
	if dimension == 0 {
		return 0
	}
	return px / dimension * 100
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAngle wraps deg into [-180, 180].
func NormalizeAngle(deg float64) float64 {
	if deg >= -180 && deg <= 180 {
		return deg
	}
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

// Diagonal is the length of the diagonal of a width×height rectangle.
func Diagonal(width, height float64) float64 {
	return math.Hypot(width, height)
}

// CenteredBox returns the axis-aligned box of size w×h centred on (cx, cy).
func CenteredBox(cx, cy, w, h float64) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: cx - w/2, Y: cy - h/2},
		Max: r2.Vec{X: cx + w/2, Y: cy + h/2},
	}
}

// Expand grows b by pad on every side.
func Expand(b r2.Box, pad float64) r2.Box {
	return r2.Box{
		Min: r2.Sub(b.Min, r2.Vec{X: pad, Y: pad}),
		Max: r2.Add(b.Max, r2.Vec{X: pad, Y: pad}),
	}
}

// Contains reports whether (x, y) lies inside b, edges included.
func Contains(b r2.Box, x, y float64) bool {
	return b.Contains(r2.Vec{X: x, Y: y})
}

// RotateAbout rotates p by deg degrees around c. Positive angles turn
// clockwise on a y-down raster, matching the canvas transform.
func RotateAbout(p r2.Vec, deg float64, c r2.Vec) r2.Vec {
	return r2.Rotate(p, Radians(deg), c)
}
