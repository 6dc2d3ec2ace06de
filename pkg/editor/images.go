// images.go - Loading files into the working set.
package editor

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/metrics"
)

// LoadImage decodes one upload into an Image. Failures are returned and the
// image is not created.
func LoadImage(name string, r io.Reader, size int64, release func()) (Image, error) {
	raster, err := export.Decode(r, name, size)
	if err != nil {
		metrics.ImagesLoaded.WithLabelValues(metrics.ResultError).Inc()
		return Image{}, fmt.Errorf("load image: %w", err)
	}
	metrics.ImagesLoaded.WithLabelValues(metrics.ResultOK).Inc()

	b := raster.Bounds()
	return Image{
		ID:      uuid.NewString(),
		Name:    name,
		Raster:  raster,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Release: release,
	}, nil
}

// releaseDropped calls Release on every image of prev that is not in next.
func releaseDropped(prev, next []Image) {
	if len(prev) == 0 {
		return
	}
	kept := make(map[string]struct{}, len(next))
	for _, img := range next {
		kept[img.ID] = struct{}{}
	}
	for _, img := range prev {
		if _, ok := kept[img.ID]; !ok && img.Release != nil {
			img.Release()
		}
	}
}
