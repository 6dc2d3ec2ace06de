// encode.go - PNG and JPEG encoding of rendered frames.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
)

// ErrEncode wraps every encoder failure.
var ErrEncode = errors.New("encode failed")

// JPEG quality control range.
const (
	MinQuality     = 10
	MaxQuality     = 100
	QualityStep    = 5
	DefaultQuality = 90
)

// NormalizeQuality clamps q to [MinQuality, MaxQuality] and snaps it to the
// nearest QualityStep.
func NormalizeQuality(q int) int {
	q = max(MinQuality, min(MaxQuality, q))
	return int(math.Round(float64(q)/QualityStep)) * QualityStep
}

// QualityFactor maps quality to the [0,1] scale browsers use for toBlob.
func QualityFactor(q int) float64 {
	return float64(NormalizeQuality(q)) / 100
}

// Encode writes img in format f. quality only affects JPEG.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("%w: PNG: %w", ErrEncode, err)
		}
	case JPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: NormalizeQuality(quality)}); err != nil {
			return fmt.Errorf("%w: JPEG: %w", ErrEncode, err)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrEncode, ErrUnsupportedFormat, string(f))
	}
	return nil
}
