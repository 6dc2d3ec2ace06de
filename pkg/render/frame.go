// frame.go - Whole-frame composition for preview and export targets.
package render

import (
	"image"
	"math"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/geom"
	"github.com/ibucoin/watermark/pkg/metrics"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// Preview zoom bounds in percent, and the gap kept around a fitted image.
const (
	MinZoom          = 10.0
	MaxZoom          = 300.0
	DefaultZoom      = 100.0
	ContainerPadding = 32.0
)

// Target is the size a frame is drawn at. Width and Height are logical
// pixels, Scale maps image pixels to them and DPR maps them to device pixels.
type Target struct {
	Width  float64
	Height float64
	Scale  float64
	DPR    float64
}

// ExportTarget is the full-resolution target for img.
func ExportTarget(img image.Image) Target {
	b := img.Bounds()
	return Target{Width: float64(b.Dx()), Height: float64(b.Dy()), Scale: 1, DPR: 1}
}

// PreviewTarget scales an imgW×imgH image for display.
func PreviewTarget(imgW, imgH int, scale, dpr float64) Target {
	return Target{
		Width:  float64(imgW) * scale,
		Height: float64(imgH) * scale,
		Scale:  scale,
		DPR:    dpr,
	}
}

// FitScale is the largest scale, capped at 1, at which the image fits the
// container less ContainerPadding.
func FitScale(imgW, imgH int, containerW, containerH float64) float64 {
	if imgW <= 0 || imgH <= 0 {
		return 1
	}
	fit := math.Min(
		(containerW-ContainerPadding)/float64(imgW),
		(containerH-ContainerPadding)/float64(imgH),
	)
	return math.Max(0, math.Min(fit, 1))
}

// PreviewScale combines the fit scale with a zoom percentage.
func PreviewScale(fit, zoom float64) float64 {
	return fit * ClampZoom(zoom) / 100
}

// ClampZoom limits zoom to [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	return geom.Clamp(zoom, MinZoom, MaxZoom)
}

type frameOptions struct {
	hoveredID string
}

// FrameOption tweaks a single RenderFrame call.
type FrameOption func(*frameOptions)

// WithHovered highlights the region under the pointer.
func WithHovered(id string) FrameOption {
	return func(o *frameOptions) { o.hoveredID = id }
}

// RenderFrame draws base, the tile layer and the regions onto a fresh surface
// for t. Font sizes and tile spacing are multiplied by t.Scale; region
// positions stay percentages. Decorations are only drawn when interactive.
func (e *Engine) RenderFrame(t Target, base image.Image, tile watermark.TileConfig, regions []watermark.TextRegion, selectedID string, interactive bool, opts ...FrameOption) *canvas.Surface {
	var o frameOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := canvas.NewSurface(t.Width, t.Height, t.DPR)
	if s.Image() == nil {
		return s
	}

	kind := metrics.KindExport
	if interactive {
		kind = metrics.KindPreview
	}
	metrics.RendersTotal.WithLabelValues(kind).Inc()

	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}

	if base != nil {
		s.DrawImage(base, 0, 0, t.Width, t.Height)
	}
	e.RenderTile(s, t.Width, t.Height, tile.Scaled(scale))
	e.RenderRegionsHovered(s, t.Width, t.Height, watermark.ScaleRegions(regions, scale), selectedID, o.hoveredID, interactive)
	return s
}
