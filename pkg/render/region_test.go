package render

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/watermark"
)

func TestBoxMetrics(t *testing.T) {
	e := approxEngine()
	tests := []struct {
		name      string
		text      string
		widthPct  float64
		fontSize  float64
		wantTextW float64
		wantW     float64
		wantH     float64
	}{
		{"text wider than percent", "Watermark", 20, 48, 259.2, 283.2, 72},
		{"percent wider than text", "Hi", 50, 20, 24, 200, 44},
		{"blank measures placeholder", "  ", 10, 10, 90, 114, 34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := e.BoxMetrics(region("a", tt.text, 50, 50, tt.widthPct, tt.fontSize), 400)
			assert.InDelta(t, tt.wantTextW, b.TextWidth, 1e-9)
			assert.InDelta(t, tt.wantW, b.Width, 1e-9)
			assert.InDelta(t, tt.wantH, b.Height, 1e-9)
		})
	}
}

func TestRegionLayoutScaleInvariance(t *testing.T) {
	e := NewEngine(nil)
	r := region("a", "Hi", 30, 70, 50, 48)
	base := e.BoxMetrics(r, 1000)
	baseCenter := e.Bounds(r, 1000, 800).Center()

	for _, s := range []float64{0.25, 0.5, 2} {
		scaled := r.Scaled(s)
		b := e.BoxMetrics(scaled, 1000*s)
		c := e.Bounds(scaled, 1000*s, 800*s).Center()

		assert.InDelta(t, base.TextWidth, b.TextWidth/s, 0.5, "scale %v", s)
		assert.InDelta(t, base.Width, b.Width/s, 0.5, "scale %v", s)
		assert.InDelta(t, baseCenter.X, c.X/s, 1e-9)
		assert.InDelta(t, baseCenter.Y, c.Y/s, 1e-9)
	}
}

func TestRenderRegionBlankWithoutControlsDrawsNothing(t *testing.T) {
	e := NewEngine(nil)
	s := canvas.NewSurface(200, 100, 1)
	s.Clear(color.White)
	before := bytes.Clone(s.Image().Pix)

	e.RenderRegion(s, 200, 100, region("a", " ", 50, 50, 20, 20), true, false)
	assert.Equal(t, before, s.Image().Pix)

	e.RenderRegion(s, 200, 100, region("a", " ", 50, 50, 20, 20), false, true)
	assert.NotEqual(t, before, s.Image().Pix, "placeholder shown while editing")
}

func TestRenderRegionSelectedDrawsHandles(t *testing.T) {
	e := approxEngine()
	// box: text 9*20*0.6=108, width 132, height 44, centred on (200,150)
	r := region("a", "Watermark", 50, 50, 20, 20)

	s := canvas.NewSurface(400, 300, 1)
	e.RenderRegion(s, 400, 300, r, true, true)
	img := s.Image()

	assert.True(t, isSelectionBlue(img.RGBAAt(135, 129)), "top-left handle")
	assert.True(t, isSelectionBlue(img.RGBAAt(265, 171)), "bottom-right handle")
	assert.True(t, isSelectionBlue(img.RGBAAt(200, 98)), "rotate handle")
	line := img.RGBAAt(200, 110)
	assert.Greater(t, line.B, line.R, "connector line")
}

func TestRenderRegionUnselectedBorder(t *testing.T) {
	e := approxEngine()
	r := region("a", "Watermark", 50, 50, 20, 20)

	plain := canvas.NewSurface(400, 300, 1)
	e.RenderRegion(plain, 400, 300, r, false, true)
	assert.Zero(t, countPixels(plain.Image(), isSelectionBlue), "no handles")
	px := plain.Image().RGBAAt(136, 128)
	assert.NotZero(t, px.A, "dashed border starts at the corner")
	assert.Equal(t, px.R, px.B, "grey border")

	hovered := canvas.NewSurface(400, 300, 1)
	e.RenderRegionsHovered(hovered, 400, 300, []watermark.TextRegion{r}, "", "a", true)
	hp := hovered.Image().RGBAAt(136, 128)
	assert.Greater(t, hp.B, hp.R, "hovered border is blue")
}

func TestRenderRegionsExportHidesDecorations(t *testing.T) {
	e := approxEngine()
	r := region("a", "Watermark", 50, 50, 20, 20)

	s := canvas.NewSurface(400, 300, 1)
	e.RenderRegions(s, 400, 300, []watermark.TextRegion{r}, "a", false)
	assert.Zero(t, countPixels(s.Image(), func(c color.RGBA) bool { return c.B > c.R+20 }))
	assert.NotZero(t, countPixels(s.Image(), func(c color.RGBA) bool { return c.A > 0 }), "text drawn")
}
