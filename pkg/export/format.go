// format.go - Input sniffing and decoding at the upload boundary, and the
// output format enum.
package export

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/webp"
)

// MaxInputSize is the largest accepted input file.
const MaxInputSize = 50 << 20

var (
	// ErrUnsupportedFormat is returned for inputs outside the PNG/JPEG/WEBP
	// allow-list and for unknown output formats.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrTooLarge is returned for inputs over MaxInputSize.
	ErrTooLarge = errors.New("file too large")
)

// Format is an export encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
)

// ParseFormat accepts "png", "jpg" and "jpeg" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}

// MimeType returns the media type of the encoding.
func (f Format) MimeType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Input kinds recognised by Sniff.
const (
	InputPNG  = "png"
	InputJPEG = "jpeg"
	InputWEBP = "webp"
)

// Sniff identifies an allowed input from its leading bytes, returning ""
// for anything else.
func Sniff(head []byte) string {
	switch {
	case len(head) >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF:
		return InputJPEG
	case len(head) >= 8 && bytes.Equal(head[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return InputPNG
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return InputWEBP
	default:
		return ""
	}
}

// Decode reads one input image. size is the declared byte length, or -1 when
// unknown; either way at most MaxInputSize bytes are read.
func Decode(r io.Reader, name string, size int64) (image.Image, error) {
	if size > MaxInputSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, name, size, MaxInputSize)
	}

	br := bufio.NewReader(io.LimitReader(r, MaxInputSize+1))
	head, _ := br.Peek(12)

	var (
		img image.Image
		err error
	)
	switch Sniff(head) {
	case InputPNG:
		img, err = png.Decode(br)
	case InputJPEG:
		img, err = jpeg.Decode(br)
	case InputWEBP:
		img, err = webp.Decode(br)
	default:
		return nil, fmt.Errorf("%w: %s is not PNG, JPEG or WEBP", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}
