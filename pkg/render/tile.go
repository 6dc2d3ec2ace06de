// tile.go - Tiled watermark: a rotated grid of repeated text large enough to
// cover the image at any angle.
package render

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/geom"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// TileGrid is the pure layout of a tile pass, in the unrotated coordinate
// space of a width×height target. Cells start at (StartX, StartY) and step by
// (StepX, StepY) while the cell origin is below (EndX, EndY).
type TileGrid struct {
	Width, Height  float64
	TextWidth      float64
	TextHeight     float64
	StartX, StartY float64
	EndX, EndY     float64
	StepX, StepY   float64
	Angle          float64
}

// NewTileGrid lays out the grid for text of the given size.
func NewTileGrid(width, height, textWidth, textHeight, spacing, angle float64) TileGrid {
	d := geom.Diagonal(width, height)
	return TileGrid{
		Width:      width,
		Height:     height,
		TextWidth:  textWidth,
		TextHeight: textHeight,
		StartX:     -d / 2,
		StartY:     -d / 2,
		EndX:       width + d/2,
		EndY:       height + d/2,
		StepX:      textWidth + spacing,
		StepY:      textHeight + spacing,
		Angle:      angle,
	}
}

// Centers returns the centre of every cell, row by row.
func (g TileGrid) Centers() []r2.Vec {
	if g.StepX <= 0 || g.StepY <= 0 {
		return nil
	}
	var out []r2.Vec
	for y := g.StartY; y < g.EndY; y += g.StepY {
		for x := g.StartX; x < g.EndX; x += g.StepX {
			out = append(out, r2.Vec{X: x + g.TextWidth/2, Y: y + g.TextHeight/2})
		}
	}
	return out
}

// Covers reports whether the target-space point p falls inside the rotated
// grid's iterated range.
func (g TileGrid) Covers(p r2.Vec) bool {
	c := r2.Vec{X: g.Width / 2, Y: g.Height / 2}
	q := geom.RotateAbout(p, -g.Angle, c)
	return q.X >= g.StartX && q.X <= g.EndX && q.Y >= g.StartY && q.Y <= g.EndY
}

// Grid returns the layout RenderTile would use for cfg.
func (e *Engine) Grid(width, height float64, cfg watermark.TileConfig) TileGrid {
	tw := e.measure.Measure(cfg.Text, cfg.FontSize)
	return NewTileGrid(width, height, tw, cfg.FontSize, cfg.Spacing, cfg.Angle)
}

// RenderTile draws cfg across a width×height target. Disabled configs and
// blank text draw nothing.
func (e *Engine) RenderTile(s *canvas.Surface, width, height float64, cfg watermark.TileConfig) {
	if s == nil || s.Image() == nil || !cfg.Active() || cfg.FontSize <= 0 {
		return
	}
	grid := e.Grid(width, height, cfg)

	s.Save()
	defer s.Restore()
	s.Translate(width/2, height/2)
	s.Rotate(cfg.Angle)
	s.Translate(-width/2, -height/2)

	layer, err := s.NewTextLayer(cfg.Text, cfg.FontSize, e.fonts, geom.HexToRGBA(cfg.Color, cfg.Alpha()))
	if err != nil {
		e.log.Warn("tile text layer failed", zap.Error(err))
		return
	}
	for _, c := range grid.Centers() {
		s.DrawTextLayer(layer, c.X, c.Y)
	}
}
