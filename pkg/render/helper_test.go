package render

import (
	"image"
	"image/color"

	"github.com/ibucoin/watermark/pkg/watermark"
)

// createTestImage creates a test image with the specified dimensions
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / width), uint8(y * 255 / height), 128, 255})
		}
	}
	return img
}

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func approxEngine() *Engine {
	return NewEngine(nil, WithMeasurer(ApproxMeasurer{Factor: 0.6}))
}

func region(id, text string, x, y, width, fontSize float64) watermark.TextRegion {
	r := watermark.NewRegion()
	r.ID, r.Text, r.X, r.Y, r.Width = id, text, x, y, width
	r.Style.FontSize = fontSize
	return r
}

func isSelectionBlue(c color.RGBA) bool {
	return c.R == 0x3b && c.G == 0x82 && c.B == 0xf6 && c.A == 0xff
}

// isBluish reports pixels noticeably bluer than red, such as the selection
// colour blended over a light base.
func isBluish(c color.RGBA) bool {
	return int(c.B) > int(c.R)+20
}

func countPixels(img *image.RGBA, pred func(color.RGBA) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if pred(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}
