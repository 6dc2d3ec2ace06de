// hittest.go - Pointer queries against the region layout. Boxes are tested
// unrotated: a rotated region is grabbed by its axis-aligned frame.
package render

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ibucoin/watermark/pkg/geom"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// Handle identifies what part of a selected region the pointer is on.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleResizeTopLeft
	HandleResizeTopRight
	HandleResizeBottomLeft
	HandleResizeBottomRight
	HandleRotate
)

var handleNames = map[Handle]string{
	HandleNone:              "none",
	HandleMove:              "move",
	HandleResizeTopLeft:     "resize-tl",
	HandleResizeTopRight:    "resize-tr",
	HandleResizeBottomLeft:  "resize-bl",
	HandleResizeBottomRight: "resize-br",
	HandleRotate:            "rotate",
}

func (h Handle) String() string {
	if s, ok := handleNames[h]; ok {
		return s
	}
	return "none"
}

// IsResize reports whether h is one of the corner handles.
func (h Handle) IsResize() bool {
	return h >= HandleResizeTopLeft && h <= HandleResizeBottomRight
}

// Cursor returns the CSS cursor clients show over h.
func (h Handle) Cursor() string {
	switch h {
	case HandleMove:
		return "move"
	case HandleRotate:
		return "grab"
	case HandleResizeTopLeft, HandleResizeBottomRight:
		return "nwse-resize"
	case HandleResizeTopRight, HandleResizeBottomLeft:
		return "nesw-resize"
	default:
		return "default"
	}
}

// RegionAt returns the topmost region whose frame, grown by HitPadding,
// contains (x, y). Regions must already be scaled to the target.
func (e *Engine) RegionAt(x, y, width, height float64, regions []watermark.TextRegion) *watermark.TextRegion {
	for i := len(regions) - 1; i >= 0; i-- {
		if geom.Contains(geom.Expand(e.Bounds(regions[i], width, height), HitPadding), x, y) {
			r := regions[i]
			return &r
		}
	}
	return nil
}

// HandleAt classifies (x, y) against region r: the rotate handle wins over
// the corners, the corners over the box interior.
func (e *Engine) HandleAt(x, y, width, height float64, r watermark.TextRegion) Handle {
	bounds := e.Bounds(r, width, height)
	c := bounds.Center()

	rotate := r2.Vec{X: c.X, Y: bounds.Min.Y - RotateOffset}
	if geom.Contains(geom.Expand(geom.CenteredBox(rotate.X, rotate.Y, 0, 0), HandleTolerance), x, y) {
		return HandleRotate
	}

	handles := [4]Handle{HandleResizeTopLeft, HandleResizeTopRight, HandleResizeBottomLeft, HandleResizeBottomRight}
	points := [4]r2.Vec{
		bounds.Min,
		{X: bounds.Max.X, Y: bounds.Min.Y},
		{X: bounds.Min.X, Y: bounds.Max.Y},
		bounds.Max,
	}
	for i, p := range points {
		if geom.Contains(geom.Expand(geom.CenteredBox(p.X, p.Y, 0, 0), HandleTolerance), x, y) {
			return handles[i]
		}
	}

	if geom.Contains(bounds, x, y) {
		return HandleMove
	}
	return HandleNone
}
