// surface.go - Raster drawing surface with a canvas-style transform stack.
// All drawing coordinates are logical (CSS) pixels; the surface maps them to
// device pixels through the current affine matrix, which starts as scale(DPR).
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Surface is an RGBA backing store plus the current transform and the
// save/restore stack. A nil *Surface, or one with a zero-sized backing store,
// ignores every drawing call.
type Surface struct {
	img    *image.RGBA
	width  float64
	height float64
	dpr    float64
	m      f64.Aff3
	stack  []f64.Aff3
}

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// NewSurface allocates a surface whose logical size is width×height and whose
// backing store is round(width*dpr)×round(height*dpr) device pixels.
func NewSurface(width, height, dpr float64) *Surface {
	if dpr <= 0 {
		dpr = 1
	}
	s := &Surface{
		width:  width,
		height: height,
		dpr:    dpr,
		m:      f64.Aff3{dpr, 0, 0, 0, dpr, 0},
	}
	pw, ph := int(math.Round(width*dpr)), int(math.Round(height*dpr))
	if pw > 0 && ph > 0 {
		s.img = image.NewRGBA(image.Rect(0, 0, pw, ph))
	}
	return s
}

func (s *Surface) ok() bool {
	return s != nil && s.img != nil
}

// Image returns the backing store, or nil for an unusable surface.
func (s *Surface) Image() *image.RGBA {
	if s == nil {
		return nil
	}
	return s.img
}

// Width returns the logical width.
func (s *Surface) Width() float64 { return s.width }

// Height returns the logical height.
func (s *Surface) Height() float64 { return s.height }

// DPR returns the device pixel ratio the surface was created with.
func (s *Surface) DPR() float64 { return s.dpr }

// Save pushes the current transform.
func (s *Surface) Save() {
	if s == nil {
		return
	}
	s.stack = append(s.stack, s.m)
}

// Restore pops the transform pushed by the matching Save. An unbalanced
// Restore is ignored.
func (s *Surface) Restore() {
	if s == nil || len(s.stack) == 0 {
		return
	}
	s.m = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// Translate moves the origin by (tx, ty) in the current coordinate space.
func (s *Surface) Translate(tx, ty float64) {
	if s == nil {
		return
	}
	s.m = mul(s.m, f64.Aff3{1, 0, tx, 0, 1, ty})
}

// Rotate turns the coordinate space by deg degrees, clockwise on screen.
func (s *Surface) Rotate(deg float64) {
	if s == nil {
		return
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	s.m = mul(s.m, f64.Aff3{cos, -sin, 0, sin, cos, 0})
}

// Scale stretches the coordinate space.
func (s *Surface) Scale(sx, sy float64) {
	if s == nil {
		return
	}
	s.m = mul(s.m, f64.Aff3{sx, 0, 0, 0, sy, 0})
}

// Transform returns the current logical→device matrix.
func (s *Surface) Transform() f64.Aff3 {
	if s == nil {
		return identity
	}
	return s.m
}

// Apply maps a logical point through the current matrix.
func (s *Surface) Apply(x, y float64) (float64, float64) {
	m := s.Transform()
	return apply(m, x, y)
}

// Clear fills the whole backing store with c, ignoring the transform.
func (s *Surface) Clear(c color.Color) {
	if !s.ok() {
		return
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// DrawImage draws src scaled into the logical rectangle (x, y, w, h).
// Axis-aligned matrices use a direct copy or CatmullRom scaling; anything
// rotated goes through an affine transform.
func (s *Surface) DrawImage(src image.Image, x, y, w, h float64) {
	if !s.ok() || src == nil || w <= 0 || h <= 0 {
		return
	}
	sb := src.Bounds()
	if sb.Empty() {
		return
	}
	m := s.m
	if m[1] == 0 && m[3] == 0 && m[0] > 0 && m[4] > 0 {
		x0, y0 := apply(m, x, y)
		x1, y1 := apply(m, x+w, y+h)
		r := image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
		if r.Dx() == sb.Dx() && r.Dy() == sb.Dy() {
			draw.Draw(s.img, r, src, sb.Min, draw.Over)
			return
		}
		xdraw.CatmullRom.Scale(s.img, r, src, sb, xdraw.Over, nil)
		return
	}
	s2d := mul(m, f64.Aff3{
		w / float64(sb.Dx()), 0, x - float64(sb.Min.X)*w/float64(sb.Dx()),
		0, h / float64(sb.Dy()), y - float64(sb.Min.Y)*h/float64(sb.Dy()),
	})
	xdraw.CatmullRom.Transform(s.img, s2d, src, sb, xdraw.Over, nil)
}

// uniformScale is the linear scale factor of the current matrix, used to
// rasterize text at device resolution.
func (s *Surface) uniformScale() float64 {
	det := math.Abs(s.m[0]*s.m[4] - s.m[1]*s.m[3])
	if det == 0 {
		return 1
	}
	return math.Sqrt(det)
}

// mul returns m∘n: n is applied first.
func mul(m, n f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		m[0]*n[0] + m[1]*n[3], m[0]*n[1] + m[1]*n[4], m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3], m[3]*n[1] + m[4]*n[4], m[3]*n[2] + m[4]*n[5] + m[5],
	}
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
