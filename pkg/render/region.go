// region.go - Free-placed text regions with optional editing decorations.
package render

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/geom"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// Box is the size of a region's frame in target pixels.
type Box struct {
	TextWidth float64
	Width     float64
	Height    float64
}

// BoxMetrics sizes the frame of r on a target targetWidth pixels wide. Blank
// text is measured as the placeholder.
func (e *Engine) BoxMetrics(r watermark.TextRegion, targetWidth float64) Box {
	text := r.Text
	if r.Blank() {
		text = Placeholder
	}
	tw := e.measure.Measure(text, r.Style.FontSize)
	return Box{
		TextWidth: tw,
		Width:     math.Max(geom.PercentToPixel(r.Width, targetWidth), tw+2*Padding),
		Height:    r.Style.FontSize + 2*Padding,
	}
}

// Bounds returns the unrotated frame of r on a width×height target.
func (e *Engine) Bounds(r watermark.TextRegion, width, height float64) r2.Box {
	b := e.BoxMetrics(r, width)
	return geom.CenteredBox(geom.PercentToPixel(r.X, width), geom.PercentToPixel(r.Y, height), b.Width, b.Height)
}

// RenderRegion draws one region. With showControls it also draws the frame,
// and for the selected region the resize and rotate handles.
func (e *Engine) RenderRegion(s *canvas.Surface, width, height float64, r watermark.TextRegion, selected, showControls bool) {
	e.renderRegion(s, width, height, r, selected, false, showControls)
}

// RenderRegions draws regions in order, later ones on top.
func (e *Engine) RenderRegions(s *canvas.Surface, width, height float64, regions []watermark.TextRegion, selectedID string, showControls bool) {
	e.RenderRegionsHovered(s, width, height, regions, selectedID, "", showControls)
}

// RenderRegionsHovered is RenderRegions with the region under the pointer
// highlighted.
func (e *Engine) RenderRegionsHovered(s *canvas.Surface, width, height float64, regions []watermark.TextRegion, selectedID, hoveredID string, showControls bool) {
	for _, r := range regions {
		e.renderRegion(s, width, height, r, r.ID == selectedID, r.ID == hoveredID && hoveredID != "", showControls)
	}
}

func (e *Engine) renderRegion(s *canvas.Surface, width, height float64, r watermark.TextRegion, selected, hovered, controls bool) {
	if s == nil || s.Image() == nil {
		return
	}
	blank := r.Blank()
	if blank && !controls {
		return
	}

	box := e.BoxMetrics(r, width)

	s.Save()
	defer s.Restore()
	s.Translate(geom.PercentToPixel(r.X, width), geom.PercentToPixel(r.Y, height))
	s.Rotate(r.Angle)

	if controls {
		drawFrame(s, box, selected, hovered)
	}

	text, fill := r.Text, geom.HexToRGBA(r.Style.Color, r.Style.Alpha())
	if blank {
		text, fill = Placeholder, placeholderColor
	}
	if err := s.FillText(text, 0, 0, r.Style.FontSize, e.fonts, fill); err != nil {
		e.log.Warn("region text failed", zap.String("id", r.ID), zap.Error(err))
	}
}

// drawFrame draws the box outline around the origin and, when selected, the
// handles.
func drawFrame(s *canvas.Surface, box Box, selected, hovered bool) {
	left, top := -box.Width/2, -box.Height/2

	if !selected {
		c := borderColor
		if hovered {
			c = selectionColor
		}
		s.StrokeRect(left, top, box.Width, box.Height, 1, borderDash, c)
		return
	}

	s.StrokeRect(left, top, box.Width, box.Height, 2, nil, selectionColor)
	for _, c := range corners(box) {
		s.FillRect(c.X-HandleSize/2, c.Y-HandleSize/2, HandleSize, HandleSize, selectionColor)
	}

	rotateY := top - RotateOffset
	s.FillCircle(0, rotateY, RotateRadius, selectionColor)
	s.StrokeLine(0, top, 0, rotateY+HandleSize/2, 1, selectionColor)
}

// corners lists the box corners around the origin in handle order.
func corners(box Box) [4]r2.Vec {
	hw, hh := box.Width/2, box.Height/2
	return [4]r2.Vec{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: -hw, Y: hh},
		{X: hw, Y: hh},
	}
}
