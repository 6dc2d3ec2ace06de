package watermark

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegionDefaults(t *testing.T) {
	r := NewRegion()

	assert.True(t, strings.HasPrefix(r.ID, IDPrefix))
	assert.Equal(t, "Watermark", r.Text)
	assert.Equal(t, 50.0, r.X)
	assert.Equal(t, 50.0, r.Y)
	assert.Equal(t, 20.0, r.Width)
	assert.Zero(t, r.Angle)
	assert.Equal(t, Style{Color: "#333333", Opacity: 50, FontSize: 48}, r.Style)

	assert.NotEqual(t, r.ID, NewRegion().ID)
}

func TestDefaultTile(t *testing.T) {
	tile := DefaultTile()
	assert.False(t, tile.Enabled)
	assert.False(t, tile.Active())
	assert.Equal(t, 25, tile.Opacity)
	assert.Equal(t, -30.0, tile.Angle)
	assert.Equal(t, 150.0, tile.Spacing)
	assert.Equal(t, 48.0, tile.FontSize)
}

func TestRegionNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   TextRegion
		want TextRegion
	}{
		{
			name: "in range untouched",
			in:   TextRegion{ID: "a", X: 10, Y: 90, Width: 20, Angle: 45, Style: Style{Color: "#ffffff", Opacity: 30, FontSize: 20}},
			want: TextRegion{ID: "a", X: 10, Y: 90, Width: 20, Angle: 45, Style: Style{Color: "#ffffff", Opacity: 30, FontSize: 20}},
		},
		{
			name: "clamped",
			in:   TextRegion{ID: "a", X: -5, Y: 150, Width: -3, Angle: 270, Style: Style{Opacity: 140, FontSize: -1}},
			want: TextRegion{ID: "a", X: 0, Y: 100, Width: 0, Angle: -90, Style: Style{Color: "#333333", Opacity: 100, FontSize: 48}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}

	assert.NotEmpty(t, TextRegion{}.Normalize().ID)
}

func TestTileNormalize(t *testing.T) {
	got := TileConfig{Enabled: true, Text: "x", Opacity: -4, Spacing: 0, FontSize: 0, Angle: -200}.Normalize()
	assert.Equal(t, 0, got.Opacity)
	assert.Equal(t, DefaultTileSpacing, got.Spacing)
	assert.Equal(t, DefaultFontSize, got.FontSize)
	assert.Equal(t, 160.0, got.Angle)
	assert.Equal(t, DefaultColor, got.Color)
}

func TestDuplicateCapsAt95(t *testing.T) {
	r := NewRegion()
	r.X, r.Y = 93, 40

	d := r.Duplicate(5, 95)
	assert.NotEqual(t, r.ID, d.ID)
	assert.Equal(t, 95.0, d.X)
	assert.Equal(t, 45.0, d.Y)
	assert.Equal(t, r.Text, d.Text)
}

func TestBlank(t *testing.T) {
	assert.True(t, TextRegion{Text: "  \t"}.Blank())
	assert.False(t, TextRegion{Text: " a "}.Blank())
	assert.False(t, TileConfig{Enabled: true, Text: " "}.Active())
	assert.True(t, TileConfig{Enabled: true, Text: "A"}.Active())
}

func TestScaleRegionsCopies(t *testing.T) {
	in := []TextRegion{NewRegion()}
	out := ScaleRegions(in, 0.5)
	assert.Equal(t, 24.0, out[0].Style.FontSize)
	assert.Equal(t, 48.0, in[0].Style.FontSize)

	c := CloneRegions(in)
	c[0].Text = "changed"
	assert.Equal(t, "Watermark", in[0].Text)
	assert.Equal(t, 0, IndexOf(in, in[0].ID))
	assert.Equal(t, -1, IndexOf(in, "missing"))
}
