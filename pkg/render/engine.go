// Package render draws watermarks onto a canvas.Surface and answers pointer
// queries against the same layout. Drawing and hit testing share BoxMetrics
// so what the user sees is exactly what they can grab.
package render

import (
	"image/color"

	"go.uber.org/zap"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/geom"
)

// Layout constants in logical pixels.
const (
	// Padding surrounds the text inside a region box.
	Padding = 12.0
	// HitPadding extends a box when testing whether a point selects it.
	HitPadding = 10.0
	// HandleSize is the side of the corner squares drawn on a selected box.
	HandleSize = 8.0
	// HandleTolerance is the half-width of the square a pointer must fall
	// in to grab a handle.
	HandleTolerance = 12.0
	// RotateOffset is the distance from the box top to the rotate handle.
	RotateOffset = 30.0
	// RotateRadius is the radius of the rotate handle circle.
	RotateRadius = HandleSize/2 + 2

	// Placeholder is shown instead of blank text while editing.
	Placeholder = "Enter watermark"
)

var (
	selectionColor   = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	borderColor      = geom.RGBA(100, 100, 100, 0.5)
	placeholderColor = geom.RGBA(150, 150, 150, 0.5)
	borderDash       = []float64{4, 4}
)

// Measurer returns the advance width of text at a font size.
type Measurer interface {
	Measure(text string, size float64) float64
}

// ApproxMeasurer estimates width as len(text) × size × Factor. It needs no
// font and is useful for headless layout.
type ApproxMeasurer struct {
	Factor float64
}

// Measure implements Measurer.
func (m ApproxMeasurer) Measure(text string, size float64) float64 {
	return float64(len([]rune(text))) * size * m.Factor
}

// Engine renders tiles, regions and whole frames.
type Engine struct {
	fonts   canvas.FaceSource
	measure Measurer
	log     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for absorbed drawing failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMeasurer overrides the text measurement used for box metrics.
// Drawing and hit testing both follow it.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measure = m
		}
	}
}

// NewEngine creates an engine drawing with fonts. A nil fonts uses the
// embedded Go font.
func NewEngine(fonts canvas.FaceSource, opts ...Option) *Engine {
	if fonts == nil {
		fonts = canvas.MustDefaultFonts()
	}
	e := &Engine{fonts: fonts, measure: fonts, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Measure returns the width of text at size using the engine's measurer.
func (e *Engine) Measure(text string, size float64) float64 {
	return e.measure.Measure(text, size)
}
