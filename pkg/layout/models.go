// Package layout reads JSON layout files describing the watermarks the CLI
// applies: a tile configuration plus text regions shared by every image or
// overridden per image.
package layout

import "github.com/ibucoin/watermark/pkg/export"

// ── Layout file types ──

// Layout is the top-level structure of a layout.json file.
type Layout struct {
	Meta    Meta                   `json:"meta"`
	Font    string                 `json:"font,omitempty"` // custom TTF/OTF path (resolved against the bundle)
	Tile    TileSpec               `json:"tile"`
	Sync    *bool                  `json:"sync,omitempty"` // nil = true
	Regions []RegionSpec           `json:"regions"`
	Images  map[string]ImageLayout `json:"images,omitempty"`
	Export  ExportSpec             `json:"export"`
}

// Meta holds layout metadata.
type Meta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TileSpec overrides the default tile configuration. Nil fields keep the
// default.
type TileSpec struct {
	Enabled  *bool    `json:"enabled,omitempty"`
	Text     *string  `json:"text,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Opacity  *int     `json:"opacity,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Angle    *float64 `json:"angle,omitempty"`
	Spacing  *float64 `json:"spacing,omitempty"`
}

// RegionSpec is one text region. Nil fields take the new-region defaults.
type RegionSpec struct {
	ID    string     `json:"id,omitempty"`
	Text  *string    `json:"text,omitempty"`
	X     *float64   `json:"x,omitempty"`
	Y     *float64   `json:"y,omitempty"`
	Width *float64   `json:"width,omitempty"`
	Angle *float64   `json:"angle,omitempty"`
	Style *StyleSpec `json:"style,omitempty"`
}

// StyleSpec overrides the default region style.
type StyleSpec struct {
	Color    *string  `json:"color,omitempty"`
	Opacity  *int     `json:"opacity,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
}

// ImageLayout holds per-image overrides, keyed by file name. Regions apply
// only when sync is off; Skip always applies.
type ImageLayout struct {
	Skip    bool         `json:"skip,omitempty"`    // leave the image out of the run
	Regions []RegionSpec `json:"regions,omitempty"` // nil = global regions
}

// ExportSpec selects the output encoding.
type ExportSpec struct {
	Format  string `json:"format,omitempty"` // "png" (default) or "jpg"
	Quality int    `json:"quality,omitempty"`
}

// Synced reports whether every image shares the global regions.
func (l *Layout) Synced() bool {
	return l.Sync == nil || *l.Sync
}

// Options returns the export options the layout selects. Unknown formats
// fall back to PNG; ValidateLayout reports them.
func (l *Layout) Options() export.Options {
	opts := export.DefaultOptions()
	if f, err := export.ParseFormat(l.Export.Format); err == nil {
		opts.Format = f
	}
	if l.Export.Quality != 0 {
		opts.Quality = export.NormalizeQuality(l.Export.Quality)
	}
	return opts
}
