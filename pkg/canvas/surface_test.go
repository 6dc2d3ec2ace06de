package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSurfaceSizing(t *testing.T) {
	tests := []struct {
		name          string
		w, h, dpr     float64
		wantW, wantH  int
		wantNilRaster bool
	}{
		{"dpr 1", 400, 300, 1, 400, 300, false},
		{"dpr 2", 400, 300, 2, 800, 600, false},
		{"fractional", 100.4, 50.6, 1.5, 151, 76, false},
		{"zero width", 0, 300, 1, 0, 0, true},
		{"bad dpr defaults to 1", 10, 10, 0, 10, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSurface(tt.w, tt.h, tt.dpr)
			if tt.wantNilRaster {
				assert.Nil(t, s.Image())
				return
			}
			require.NotNil(t, s.Image())
			assert.Equal(t, tt.wantW, s.Image().Bounds().Dx())
			assert.Equal(t, tt.wantH, s.Image().Bounds().Dy())
		})
	}
}

func TestSurfaceTransformStack(t *testing.T) {
	s := NewSurface(100, 100, 2)

	x, y := s.Apply(10, 5)
	assert.InDelta(t, 20, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)

	s.Save()
	s.Translate(50, 50)
	s.Rotate(90)
	x, y = s.Apply(10, 0)
	// (10,0) rotated 90° clockwise on screen is (0,10), then +50 and ×2.
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 120, y, 1e-9)
	s.Restore()

	x, y = s.Apply(10, 5)
	assert.InDelta(t, 20, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)

	// unbalanced restore is ignored
	s.Restore()
	x, _ = s.Apply(1, 0)
	assert.InDelta(t, 2, x, 1e-9)
}

func TestNilSurfaceIsNoop(t *testing.T) {
	var s *Surface
	assert.NotPanics(t, func() {
		s.Save()
		s.Translate(1, 1)
		s.Rotate(30)
		s.FillRect(0, 0, 10, 10, color.Black)
		s.StrokeRect(0, 0, 10, 10, 1, []float64{4, 4}, color.Black)
		s.Restore()
		s.DrawImage(image.NewRGBA(image.Rect(0, 0, 2, 2)), 0, 0, 2, 2)
		assert.NoError(t, s.FillText("x", 0, 0, 12, MustDefaultFonts(), color.Black))
	})
}

func TestFillRectCoversDevicePixels(t *testing.T) {
	s := NewSurface(20, 20, 2)
	s.FillRect(5, 5, 5, 5, color.NRGBA{R: 255, A: 255})

	img := s.Image()
	assert.Equal(t, uint8(255), img.RGBAAt(15, 15).R, "inside the 10..20 device square")
	assert.Equal(t, uint8(0), img.RGBAAt(5, 5).A, "outside stays transparent")
	assert.Equal(t, uint8(0), img.RGBAAt(25, 25).A)
}

func TestStrokeRectLeavesInteriorEmpty(t *testing.T) {
	s := NewSurface(40, 40, 1)
	s.StrokeRect(10, 10, 20, 20, 2, nil, color.NRGBA{B: 255, A: 255})

	img := s.Image()
	assert.Equal(t, uint8(255), img.RGBAAt(10, 20).B, "left edge")
	assert.Equal(t, uint8(0), img.RGBAAt(20, 20).A, "interior")
}

func TestDashedStrokeHasGaps(t *testing.T) {
	s := NewSurface(40, 10, 1)
	s.StrokeRect(0, 2, 40, 6, 2, []float64{4, 4}, color.NRGBA{A: 255})

	img := s.Image()
	// top edge at y=2 covers rows 1..2; dash on 0..4, off 4..8, on 8..12
	assert.NotZero(t, img.RGBAAt(2, 1).A)
	assert.Zero(t, img.RGBAAt(6, 1).A)
	assert.NotZero(t, img.RGBAAt(10, 1).A)
}

func TestDrawImageScalesIntoRect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	s := NewSurface(8, 8, 1)
	s.DrawImage(src, 0, 0, 8, 8)

	img := s.Image()
	assert.Equal(t, uint8(200), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(200), img.RGBAAt(7, 7).R)
}

func TestFillTextDrawsNearCentre(t *testing.T) {
	fonts := MustDefaultFonts()
	s := NewSurface(200, 80, 1)
	require.NoError(t, s.FillText("HHHH", 100, 40, 30, fonts, color.NRGBA{A: 255}))

	img := s.Image()
	minX, maxX, minY, maxY := inkBounds(img)
	require.True(t, maxX > minX, "text was drawn")

	adv := fonts.Measure("HHHH", 30)
	assert.InDelta(t, 100, float64(minX+maxX)/2, 3, "horizontally centred")
	assert.InDelta(t, adv, float64(maxX-minX), 8)
	assert.True(t, minY < 40 && maxY > 40, "vertical middle crosses y")
}

func TestFillTextRotated(t *testing.T) {
	fonts := MustDefaultFonts()
	s := NewSurface(100, 100, 1)
	s.Translate(50, 50)
	s.Rotate(90)
	require.NoError(t, s.FillText("HHHHHH", 0, 0, 16, fonts, color.NRGBA{A: 255}))

	minX, maxX, minY, maxY := inkBounds(s.Image())
	assert.Greater(t, maxY-minY, maxX-minX, "text runs vertically")
}

func inkBounds(img *image.RGBA) (minX, maxX, minY, maxY int) {
	b := img.Bounds()
	minX, minY = b.Max.X, b.Max.Y
	maxX, maxY = -1, -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A > 64 {
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
	}
	return minX, maxX, minY, maxY
}
