// fonts.go - Font management with custom TTF support and embedded fallback font.
// Faces are cached per pixel size in an LRU so zooming and tiling do not
// rebuild glyph caches on every frame.
package canvas

import (
	"fmt"
	"math"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFaceCacheSize bounds the number of cached faces.
const DefaultFaceCacheSize = 64

// FontManager handles font loading with fallback and caches faces by size.
// Faces carry glyph scratch buffers, so a FontManager must not be shared
// between goroutines that draw at the same time.
type FontManager struct {
	parsed *opentype.Font
	faces  *lru.Cache[float64, font.Face]
}

// NewFontManager creates a font manager with the specified font.
// If customPath is empty or unreadable, the embedded Go font is used.
func NewFontManager(customPath string, cacheSize int) (*FontManager, error) {
	var fontData []byte

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			zap.L().Warn("could not load custom font, using default",
				zap.String("path", customPath), zap.Error(err))
		} else {
			fontData = data
		}
	}
	if fontData == nil {
		fontData = goregular.TTF
	}

	return NewFontManagerFromBytes(fontData, cacheSize)
}

// NewFontManagerFromBytes parses an OpenType/TrueType font held in memory.
func NewFontManagerFromBytes(data []byte, cacheSize int) (*FontManager, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultFaceCacheSize
	}
	faces, err := lru.NewWithEvict[float64, font.Face](cacheSize, func(_ float64, f font.Face) {
		_ = f.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face cache: %w", err)
	}
	return &FontManager{parsed: parsed, faces: faces}, nil
}

// MustDefaultFonts returns a manager for the embedded Go font and panics on
// failure, which only happens if the embedded data is corrupt.
func MustDefaultFonts() *FontManager {
	fm, err := NewFontManagerFromBytes(goregular.TTF, DefaultFaceCacheSize)
	if err != nil {
		panic(err)
	}
	return fm
}

// sizeKey quantizes to 1/64 px, the resolution of fixed.Int26_6.
func sizeKey(size float64) float64 {
	return math.Round(size*64) / 64
}

// Face returns a font.Face for size pixels (72 DPI, so points == pixels).
// Hinting is off so advances scale linearly with size.
func (fm *FontManager) Face(size float64) (font.Face, error) {
	key := sizeKey(size)
	if f, ok := fm.faces.Get(key); ok {
		return f, nil
	}
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    key,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	fm.faces.Add(key, face)
	return face, nil
}

// Measure returns the advance width of text at size pixels, or 0 if no face
// can be built.
func (fm *FontManager) Measure(text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	face, err := fm.Face(size)
	if err != nil {
		return 0
	}
	return fixedToFloat(font.MeasureString(face, text))
}
