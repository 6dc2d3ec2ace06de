// text.go - Text measuring and drawing. Text is rasterized into a small RGBA
// layer at device resolution with font.Drawer, then composited through the
// current matrix so rotated and scaled text lands where the canvas would put
// it with textAlign=center and textBaseline=middle.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// FaceSource hands out font faces by pixel size and measures text at a size.
type FaceSource interface {
	Face(size float64) (font.Face, error)
	Measure(text string, size float64) float64
}

// layerPad keeps antialiased edges from being clipped at the layer border.
const layerPad = 2

// TextLayer is a pre-rasterized run of text ready to be stamped repeatedly.
type TextLayer struct {
	img *image.RGBA
	// logical metrics
	advance float64
	ascent  float64
	descent float64
	// device pixels per logical pixel at rasterization time
	k float64
}

// Advance returns the logical width of the text.
func (l *TextLayer) Advance() float64 {
	if l == nil {
		return 0
	}
	return l.advance
}

// NewTextLayer rasterizes text at size logical pixels with colour c, at the
// resolution of the surface's current transform.
func (s *Surface) NewTextLayer(text string, size float64, fonts FaceSource, c color.Color) (*TextLayer, error) {
	if !s.ok() || text == "" || size <= 0 || fonts == nil {
		return nil, nil
	}
	k := s.uniformScale()
	face, err := fonts.Face(size * k)
	if err != nil {
		return nil, err
	}

	adv := font.MeasureString(face, text)
	m := face.Metrics()
	w := adv.Ceil() + 2*layerPad
	h := m.Ascent.Ceil() + m.Descent.Ceil() + 2*layerPad

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(layerPad), Y: fixed.I(layerPad + m.Ascent.Ceil())},
	}
	d.DrawString(text)

	return &TextLayer{
		img:     img,
		advance: fixedToFloat(adv) / k,
		ascent:  float64(m.Ascent.Ceil()) / k,
		descent: fixedToFloat(m.Descent) / k,
		k:       k,
	}, nil
}

// DrawTextLayer stamps l centred horizontally on x, with the middle of the
// em box on y.
func (s *Surface) DrawTextLayer(l *TextLayer, x, y float64) {
	if !s.ok() || l == nil || l.img == nil {
		return
	}
	baseline := y + (l.ascent-l.descent)/2
	left := x - l.advance/2 - layerPad/l.k
	top := baseline - l.ascent - layerPad/l.k

	m := mul(s.m, f64.Aff3{1 / l.k, 0, left, 0, 1 / l.k, top})
	if isIntegerTranslation(m) {
		off := image.Pt(int(m[2]), int(m[5]))
		draw.Draw(s.img, l.img.Bounds().Add(off), l.img, image.Point{}, draw.Over)
		return
	}
	xdraw.BiLinear.Transform(s.img, m, l.img, l.img.Bounds(), xdraw.Over, nil)
}

// FillText draws text centred at (x, y) in logical coordinates.
func (s *Surface) FillText(text string, x, y, size float64, fonts FaceSource, c color.Color) error {
	l, err := s.NewTextLayer(text, size, fonts, c)
	if err != nil {
		return err
	}
	s.DrawTextLayer(l, x, y)
	return nil
}

func isIntegerTranslation(m f64.Aff3) bool {
	const eps = 1e-9
	return math.Abs(m[0]-1) < eps && math.Abs(m[4]-1) < eps &&
		math.Abs(m[1]) < eps && math.Abs(m[3]) < eps &&
		m[2] == math.Trunc(m[2]) && m[5] == math.Trunc(m[5])
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
