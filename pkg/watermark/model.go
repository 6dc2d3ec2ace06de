// Package watermark defines the editor's data model: text regions placed on an
// image, their style, and the tiled watermark configuration. Positions are
// percentages of the target so the same values drive preview and export.
package watermark

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/ibucoin/watermark/pkg/geom"
)

// Default values used by constructors and by Normalize.
const (
	DefaultText     = "Watermark"
	DefaultColor    = "#333333"
	DefaultOpacity  = 50
	DefaultFontSize = 48.0

	DefaultTileOpacity = 25
	DefaultTileAngle   = -30.0
	DefaultTileSpacing = 150.0

	DefaultRegionX     = 50.0
	DefaultRegionY     = 50.0
	DefaultRegionWidth = 20.0

	IDPrefix = "tb-"
)

// Editor control ranges.
const (
	MinFontSize = 12.0
	MaxFontSize = 200.0

	MinTileSpacing  = 50.0
	MaxTileSpacing  = 500.0
	TileSpacingStep = 10.0

	MinDragPosition = 5.0
	MaxDragPosition = 95.0

	MinResizeWidth = 10.0
	MaxResizeWidth = 80.0
)

// Style is the visual style of one piece of watermark text.
type Style struct {
	Color    string  `json:"color"`
	Opacity  int     `json:"opacity"`
	FontSize float64 `json:"fontSize"`
}

// DefaultStyle returns the style new regions start with.
func DefaultStyle() Style {
	return Style{Color: DefaultColor, Opacity: DefaultOpacity, FontSize: DefaultFontSize}
}

// Normalize clamps opacity to [0,100] and replaces a non-positive font size
// or an empty colour with the default.
func (s Style) Normalize() Style {
	s.Opacity = clampInt(s.Opacity, 0, 100)
	if s.FontSize <= 0 || math.IsNaN(s.FontSize) {
		s.FontSize = DefaultFontSize
	}
	if s.Color == "" {
		s.Color = DefaultColor
	}
	return s
}

// Alpha returns opacity as a fraction in [0,1].
func (s Style) Alpha() float64 {
	return float64(clampInt(s.Opacity, 0, 100)) / 100
}

// TextRegion is one free-placed piece of text. X and Y locate its centre,
// Width is the minimum box width, all as percentages of the target.
type TextRegion struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
	Angle float64 `json:"angle"`
	Style Style   `json:"style"`
}

// NewID returns a fresh region id.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// NewRegion returns a region with a fresh id at the default placement.
func NewRegion() TextRegion {
	return TextRegion{
		ID:    NewID(),
		Text:  DefaultText,
		X:     DefaultRegionX,
		Y:     DefaultRegionY,
		Width: DefaultRegionWidth,
		Style: DefaultStyle(),
	}
}

// Normalize clamps position to [0,100], width to be non-negative, angle to
// [-180,180] and normalizes the style. An empty id gets a fresh one.
func (r TextRegion) Normalize() TextRegion {
	if r.ID == "" {
		r.ID = NewID()
	}
	r.X = geom.Clamp(r.X, 0, 100)
	r.Y = geom.Clamp(r.Y, 0, 100)
	r.Width = math.Max(0, r.Width)
	r.Angle = geom.NormalizeAngle(r.Angle)
	r.Style = r.Style.Normalize()
	return r
}

// Blank reports whether the region has no visible text.
func (r TextRegion) Blank() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Duplicate returns a copy with a fresh id, offset by delta percent on both
// axes and capped at maxPos.
func (r TextRegion) Duplicate(delta, maxPos float64) TextRegion {
	r.ID = NewID()
	r.X = math.Min(r.X+delta, maxPos)
	r.Y = math.Min(r.Y+delta, maxPos)
	return r
}

// Scaled returns the region with its font size multiplied by scale, which is
// how a region is laid out on a preview target.
func (r TextRegion) Scaled(scale float64) TextRegion {
	r.Style.FontSize *= scale
	return r
}

// TileConfig describes the repeated diagonal watermark drawn across the
// whole image.
type TileConfig struct {
	Enabled  bool    `json:"enabled"`
	Text     string  `json:"text"`
	Color    string  `json:"color"`
	Opacity  int     `json:"opacity"`
	FontSize float64 `json:"fontSize"`
	Angle    float64 `json:"angle"`
	Spacing  float64 `json:"spacing"`
}

// DefaultTile returns the initial, disabled tile configuration.
func DefaultTile() TileConfig {
	return TileConfig{
		Text:     DefaultText,
		Color:    DefaultColor,
		Opacity:  DefaultTileOpacity,
		FontSize: DefaultFontSize,
		Angle:    DefaultTileAngle,
		Spacing:  DefaultTileSpacing,
	}
}

// Normalize applies the same clamps as Style plus a positive spacing.
func (t TileConfig) Normalize() TileConfig {
	t.Opacity = clampInt(t.Opacity, 0, 100)
	if t.FontSize <= 0 || math.IsNaN(t.FontSize) {
		t.FontSize = DefaultFontSize
	}
	if t.Spacing <= 0 || math.IsNaN(t.Spacing) {
		t.Spacing = DefaultTileSpacing
	}
	if t.Color == "" {
		t.Color = DefaultColor
	}
	t.Angle = geom.NormalizeAngle(t.Angle)
	return t
}

// Active reports whether the tile layer draws anything.
func (t TileConfig) Active() bool {
	return t.Enabled && strings.TrimSpace(t.Text) != ""
}

// Alpha returns opacity as a fraction in [0,1].
func (t TileConfig) Alpha() float64 {
	return float64(clampInt(t.Opacity, 0, 100)) / 100
}

// Scaled multiplies font size and spacing by scale.
func (t TileConfig) Scaled(scale float64) TileConfig {
	t.FontSize *= scale
	t.Spacing *= scale
	return t
}

// CloneRegions returns an independent copy of regions. Regions hold no
// pointers, so a slice copy is deep.
func CloneRegions(regions []TextRegion) []TextRegion {
	if regions == nil {
		return nil
	}
	out := make([]TextRegion, len(regions))
	copy(out, regions)
	return out
}

// ScaleRegions returns copies of regions laid out for a target at scale.
func ScaleRegions(regions []TextRegion, scale float64) []TextRegion {
	out := make([]TextRegion, len(regions))
	for i, r := range regions {
		out[i] = r.Scaled(scale)
	}
	return out
}

// IndexOf returns the index of the region with id, or -1.
func IndexOf(regions []TextRegion, id string) int {
	for i, r := range regions {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
