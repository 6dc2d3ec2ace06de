// path.go - Vector fills and strokes: rectangles, dashed outlines, lines and
// circles. Shapes are built in logical coordinates, mapped through the current
// matrix and rasterized in one pass so overlapping pieces never double-blend.
package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// polygon is a closed outline in logical coordinates.
type polygon []r2.Vec

// fill rasterizes polys with the non-zero rule and composites c over the
// backing store.
func (s *Surface) fill(polys []polygon, c color.Color) {
	if !s.ok() || len(polys) == 0 {
		return
	}

	dev := make([]polygon, 0, len(polys))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range polys {
		if len(p) < 3 {
			continue
		}
		q := make(polygon, len(p))
		for i, v := range p {
			x, y := apply(s.m, v.X, v.Y)
			q[i] = r2.Vec{X: x, Y: y}
			minX, minY = math.Min(minX, x), math.Min(minY, y)
			maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
		}
		dev = append(dev, q)
	}
	if len(dev) == 0 {
		return
	}

	bounds := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(s.img.Bounds())
	if bounds.Empty() {
		return
	}

	ras := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	for _, q := range dev {
		ras.MoveTo(float32(q[0].X-ox), float32(q[0].Y-oy))
		for _, v := range q[1:] {
			ras.LineTo(float32(v.X-ox), float32(v.Y-oy))
		}
		ras.ClosePath()
	}
	ras.Draw(s.img, bounds, image.NewUniform(c), image.Point{})
}

func rect(x, y, w, h float64) polygon {
	return polygon{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

// FillRect fills the logical rectangle (x, y, w, h).
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	s.fill([]polygon{rect(x, y, w, h)}, c)
}

// StrokeRect outlines (x, y, w, h) with a line of width lw centred on the
// edges. A non-empty dash pattern alternates on/off lengths along the
// perimeter, starting at the top-left corner.
func (s *Surface) StrokeRect(x, y, w, h, lw float64, dash []float64, c color.Color) {
	if lw <= 0 || w < 0 || h < 0 {
		return
	}
	if len(dash) == 0 {
		hw := lw / 2
		outer := rect(x-hw, y-hw, w+lw, h+lw)
		inner := polygon{{X: x + hw, Y: y + hw}, {X: x + hw, Y: y + h - hw}, {X: x + w - hw, Y: y + h - hw}, {X: x + w - hw, Y: y + hw}}
		if w <= lw || h <= lw {
			s.fill([]polygon{outer}, c)
			return
		}
		s.fill([]polygon{outer, inner}, c)
		return
	}

	corners := []r2.Vec{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}, {X: x, Y: y}}
	s.fill(dashSegments(corners, lw, dash), c)
}

// StrokeLine draws a straight segment of width lw.
func (s *Surface) StrokeLine(x0, y0, x1, y1, lw float64, c color.Color) {
	if lw <= 0 {
		return
	}
	if q := segment(r2.Vec{X: x0, Y: y0}, r2.Vec{X: x1, Y: y1}, lw); q != nil {
		s.fill([]polygon{q}, c)
	}
}

// FillCircle fills a circle of radius r around (cx, cy).
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	s.fill([]polygon{circle(cx, cy, r)}, c)
}

// StrokeCircle outlines a circle of radius r with a line of width lw.
func (s *Surface) StrokeCircle(cx, cy, r, lw float64, c color.Color) {
	if r <= 0 || lw <= 0 {
		return
	}
	outer := circle(cx, cy, r+lw/2)
	if r-lw/2 <= 0 {
		s.fill([]polygon{outer}, c)
		return
	}
	inner := circle(cx, cy, r-lw/2)
	for i, j := 0, len(inner)-1; i < j; i, j = i+1, j-1 {
		inner[i], inner[j] = inner[j], inner[i]
	}
	s.fill([]polygon{outer, inner}, c)
}

const circleSegments = 48

func circle(cx, cy, r float64) polygon {
	p := make(polygon, circleSegments)
	for i := range p {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
		p[i] = r2.Vec{X: cx + r*cos, Y: cy + r*sin}
	}
	return p
}

// segment returns the quad covering a line of width lw from a to b.
func segment(a, b r2.Vec, lw float64) polygon {
	d := r2.Sub(b, a)
	n := r2.Norm(d)
	if n == 0 {
		return nil
	}
	off := r2.Scale(lw/2/n, r2.Vec{X: -d.Y, Y: d.X})
	return polygon{r2.Add(a, off), r2.Add(b, off), r2.Sub(b, off), r2.Sub(a, off)}
}

// dashSegments walks the polyline pts and returns one quad per "on" dash.
// The dash phase carries across corners.
func dashSegments(pts []r2.Vec, lw float64, dash []float64) []polygon {
	var total float64
	for _, d := range dash {
		total += d
	}
	if total <= 0 {
		var out []polygon
		for i := 1; i < len(pts); i++ {
			if q := segment(pts[i-1], pts[i], lw); q != nil {
				out = append(out, q)
			}
		}
		return out
	}

	var out []polygon
	idx, left, on := 0, dash[0], true
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		edge := r2.Norm(r2.Sub(b, a))
		if edge == 0 {
			continue
		}
		dir := r2.Scale(1/edge, r2.Sub(b, a))
		pos := 0.0
		for pos < edge {
			step := math.Min(left, edge-pos)
			if on && step > 0 {
				from := r2.Add(a, r2.Scale(pos, dir))
				to := r2.Add(a, r2.Scale(pos+step, dir))
				if q := segment(from, to, lw); q != nil {
					out = append(out, q)
				}
			}
			pos += step
			left -= step
			if left <= 0 {
				idx = (idx + 1) % len(dash)
				left = dash[idx]
				on = !on
			}
		}
	}
	return out
}
