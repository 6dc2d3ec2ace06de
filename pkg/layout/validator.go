// validator.go - Validate a layout against the images it will be applied to.
package layout

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/geom"
)

// ValidateLayout reports values that will be ignored, clamped or replaced by
// a default. names lists the input file names; when nil, image keys are not
// checked. Returns warnings (never fatal errors) for graceful degradation.
func ValidateLayout(l *Layout, names []string) []string {
	if l == nil {
		return nil
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if l.Tile.Color != nil {
		checkColor(warn, "tile", *l.Tile.Color)
	}
	if l.Tile.Opacity != nil {
		checkOpacity(warn, "tile", *l.Tile.Opacity)
	}
	if l.Tile.FontSize != nil && *l.Tile.FontSize <= 0 {
		warn("tile: fontSize %g is not positive, using default", *l.Tile.FontSize)
	}
	if l.Tile.Spacing != nil && *l.Tile.Spacing <= 0 {
		warn("tile: spacing %g is not positive, using default", *l.Tile.Spacing)
	}

	checkRegions(warn, "regions", l.Regions)

	if l.Synced() {
		for _, name := range slices.Sorted(maps.Keys(l.Images)) {
			if l.Images[name].Regions != nil {
				warn("sync is on: regions for %q ignored", name)
			}
		}
	}

	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	for _, name := range slices.Sorted(maps.Keys(l.Images)) {
		if names != nil {
			if _, ok := known[name]; !ok {
				warn("layout references unknown image %q, ignored", name)
			}
		}
		img := l.Images[name]
		checkRegions(warn, "images["+name+"]", img.Regions)
	}

	if l.Export.Format != "" {
		if _, err := export.ParseFormat(l.Export.Format); err != nil {
			warn("export: unsupported format %q, using png", l.Export.Format)
		}
	}
	if q := l.Export.Quality; q != 0 && export.NormalizeQuality(q) != q {
		warn("export: quality %d adjusted to %d", q, export.NormalizeQuality(q))
	}

	return warnings
}

func checkRegions(warn func(string, ...any), scope string, specs []RegionSpec) {
	seen := make(map[string]struct{}, len(specs))
	for i, r := range specs {
		where := fmt.Sprintf("%s[%d]", scope, i)
		if r.ID != "" {
			if _, dup := seen[r.ID]; dup {
				warn("%s: duplicate id %q", where, r.ID)
			}
			seen[r.ID] = struct{}{}
		}
		if r.Text != nil && strings.TrimSpace(*r.Text) == "" {
			warn("%s: empty text, region will not be drawn", where)
		}
		for _, p := range []struct {
			name string
			v    *float64
		}{{"x", r.X}, {"y", r.Y}, {"width", r.Width}} {
			if p.v != nil && (*p.v < 0 || *p.v > 100) {
				warn("%s: %s %g outside 0-100, clamped", where, p.name, *p.v)
			}
		}
		if r.Angle != nil && (*r.Angle < -180 || *r.Angle > 180) {
			warn("%s: angle %g normalized to %g", where, *r.Angle, geom.NormalizeAngle(*r.Angle))
		}
		if r.Style != nil {
			if r.Style.Color != nil {
				checkColor(warn, where, *r.Style.Color)
			}
			if r.Style.Opacity != nil {
				checkOpacity(warn, where, *r.Style.Opacity)
			}
			if r.Style.FontSize != nil && *r.Style.FontSize <= 0 {
				warn("%s: fontSize %g is not positive, using default", where, *r.Style.FontSize)
			}
		}
	}
}

func checkColor(warn func(string, ...any), where, c string) {
	if _, _, _, err := geom.ParseColor(c); err != nil {
		warn("%s: %v, drawing in black", where, err)
	}
}

func checkOpacity(warn func(string, ...any), where string, o int) {
	if o < 0 || o > 100 {
		warn("%s: opacity %d outside 0-100, clamped", where, o)
	}
}

// FormatLayout returns a human-readable summary of the layout.
func FormatLayout(l *Layout) string {
	var b strings.Builder
	if l.Meta.Name != "" {
		fmt.Fprintf(&b, "Layout: %s\n", l.Meta.Name)
	}
	if l.Meta.Description != "" {
		b.WriteString(l.Meta.Description + "\n")
	}

	t := l.TileConfig()
	if t.Active() {
		fmt.Fprintf(&b, "Tile: %q %s %d%% %gpx, %g°, every %gpx\n",
			t.Text, t.Color, t.Opacity, t.FontSize, t.Angle, t.Spacing)
	} else {
		b.WriteString("Tile: off\n")
	}

	sync := "shared by all images"
	if !l.Synced() {
		sync = "per image"
	}
	fmt.Fprintf(&b, "Regions (%s):\n", sync)
	for _, r := range l.GlobalRegions() {
		fmt.Fprintf(&b, "  %-14q at (%g%%, %g%%) width %g%% angle %g°\n", r.Text, r.X, r.Y, r.Width, r.Angle)
	}
	for _, name := range slices.Sorted(maps.Keys(l.Images)) {
		img := l.Images[name]
		switch {
		case img.Skip:
			fmt.Fprintf(&b, "  [%s] skipped\n", name)
		case img.Regions != nil && !l.Synced():
			fmt.Fprintf(&b, "  [%s] %d region(s)\n", name, len(img.Regions))
		}
	}

	opts := l.Options()
	fmt.Fprintf(&b, "Export: %s", opts.Format)
	if opts.Format == export.JPEG {
		fmt.Fprintf(&b, " quality %d", opts.Quality)
	}
	b.WriteString("\n")
	return b.String()
}
