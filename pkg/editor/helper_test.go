package editor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

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

func testImage(id string, w, h int) Image {
	return Image{ID: id, Name: id + ".png", Raster: createTestImage(w, h), Width: w, Height: h}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createTestImage(w, h)))
	return buf.Bytes()
}

func mustApply(t *testing.T, s State, cmds ...Command) State {
	t.Helper()
	for _, c := range cmds {
		var err error
		s, err = Apply(s, c)
		require.NoError(t, err, "%T", c)
	}
	return s
}

func withRegions(ids ...string) State {
	s := NewState()
	for _, id := range ids {
		r := watermark.NewRegion()
		r.ID = id
		s.Regions = append(s.Regions, r)
	}
	return s
}

func ptr[T any](v T) *T { return &v }
