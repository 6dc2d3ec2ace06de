// merge.go - Merge layout overrides onto watermark defaults.
package layout

import "github.com/ibucoin/watermark/pkg/watermark"

// TileConfig returns the tile configuration with the layout's overrides
// applied. The tile is shared by every image.
func (l *Layout) TileConfig() watermark.TileConfig {
	t := watermark.DefaultTile()
	mergeTile(&t, l.Tile)
	return t.Normalize()
}

// Skipped reports whether the image called name is left out of the run.
func (l *Layout) Skipped(name string) bool {
	return l.Images[name].Skip
}

// GlobalRegions returns the global regions with defaults applied.
func (l *Layout) GlobalRegions() []watermark.TextRegion {
	return resolveRegions(l.Regions)
}

// MergeImage returns the regions to draw on the image called name. With sync
// on every image gets the global regions. With sync off an image entry that
// lists regions replaces them; otherwise the global regions are used.
// Skipped images get none.
func MergeImage(l *Layout, name string) []watermark.TextRegion {
	img, ok := l.Images[name]
	if ok && img.Skip {
		return nil
	}
	if l.Synced() || !ok || img.Regions == nil {
		return l.GlobalRegions()
	}
	return resolveRegions(img.Regions)
}

func resolveRegions(specs []RegionSpec) []watermark.TextRegion {
	out := make([]watermark.TextRegion, 0, len(specs))
	for _, rs := range specs {
		out = append(out, resolveRegion(rs))
	}
	return out
}

// resolveRegion overlays a spec onto a new region. Explicit empty text is
// kept; blank regions are simply not drawn.
func resolveRegion(spec RegionSpec) watermark.TextRegion {
	r := watermark.NewRegion()
	if spec.ID != "" {
		r.ID = spec.ID
	}
	if spec.Text != nil {
		r.Text = *spec.Text
	}
	if spec.X != nil {
		r.X = *spec.X
	}
	if spec.Y != nil {
		r.Y = *spec.Y
	}
	if spec.Width != nil {
		r.Width = *spec.Width
	}
	if spec.Angle != nil {
		r.Angle = *spec.Angle
	}
	if spec.Style != nil {
		mergeStyle(&r.Style, *spec.Style)
	}
	return r.Normalize()
}

func mergeStyle(base *watermark.Style, over StyleSpec) {
	if over.Color != nil {
		base.Color = *over.Color
	}
	if over.Opacity != nil {
		base.Opacity = *over.Opacity
	}
	if over.FontSize != nil {
		base.FontSize = *over.FontSize
	}
}

func mergeTile(base *watermark.TileConfig, over TileSpec) {
	if over.Enabled != nil {
		base.Enabled = *over.Enabled
	}
	if over.Text != nil {
		base.Text = *over.Text
	}
	if over.Color != nil {
		base.Color = *over.Color
	}
	if over.Opacity != nil {
		base.Opacity = *over.Opacity
	}
	if over.FontSize != nil {
		base.FontSize = *over.FontSize
	}
	if over.Angle != nil {
		base.Angle = *over.Angle
	}
	if over.Spacing != nil {
		base.Spacing = *over.Spacing
	}
}
