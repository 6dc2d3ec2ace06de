// drag.go - Pointer drag math. Deltas are in target pixels between two
// successive pointer positions; results are clamped to the editor ranges.
package render

import (
	"math"

	"github.com/ibucoin/watermark/pkg/geom"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// MoveBy shifts r by (dx, dy) pixels on a width×height target, keeping the
// centre inside [5, 95] percent.
func MoveBy(r watermark.TextRegion, dx, dy, width, height float64) watermark.TextRegion {
	r.X = geom.Clamp(r.X+geom.PixelToPercent(dx, width), watermark.MinDragPosition, watermark.MaxDragPosition)
	r.Y = geom.Clamp(r.Y+geom.PixelToPercent(dy, height), watermark.MinDragPosition, watermark.MaxDragPosition)
	return r
}

// RotateToward points the top of r at (x, y). The angle is rounded to whole
// degrees.
func RotateToward(r watermark.TextRegion, x, y, width, height float64) watermark.TextRegion {
	cx, cy := geom.PercentToPixel(r.X, width), geom.PercentToPixel(r.Y, height)
	angle := math.Round(geom.Degrees(math.Atan2(y-cy, x-cx)) + 90)
	r.Angle = geom.NormalizeAngle(angle)
	return r
}

// ResizeBy widens r by dx pixels, keeping the width inside [10, 80] percent.
// Every corner grows the box when dragged right.
func ResizeBy(r watermark.TextRegion, dx, width float64) watermark.TextRegion {
	r.Width = geom.Clamp(r.Width+geom.PixelToPercent(dx, width), watermark.MinResizeWidth, watermark.MaxResizeWidth)
	return r
}
