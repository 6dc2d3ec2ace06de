package layout

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/watermark"
)

func ptr[T any](v T) *T { return &v }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExampleJSONLoads(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.json", GetExampleJSON())

	l, cleanup, err := LoadLayout(path)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "Sample Layout", l.Meta.Name)
	assert.True(t, l.Synced())

	tile := l.TileConfig()
	assert.True(t, tile.Active())
	assert.Equal(t, "CONFIDENTIAL", tile.Text)
	assert.Equal(t, 25, tile.Opacity)

	regions := MergeImage(l, "cover.jpg")
	require.Len(t, regions, 1, "sync on: per-image entries are ignored")
	assert.Equal(t, "tb-signature", regions[0].ID)
	assert.Equal(t, 32.0, regions[0].Style.FontSize)

	assert.Equal(t, []string{`sync is on: regions for "cover.jpg" ignored`}, ValidateLayout(l, []string{"cover.jpg"}))
}

func TestMergeImageDefaults(t *testing.T) {
	l := &Layout{Regions: []RegionSpec{{ID: "a"}}}

	regions := MergeImage(l, "x.png")
	require.Len(t, regions, 1)
	want := watermark.NewRegion()
	want.ID = "a"
	assert.Equal(t, want, regions[0])
}

func TestMergeImageUnsynced(t *testing.T) {
	l := &Layout{
		Sync:    ptr(false),
		Tile:    TileSpec{Enabled: ptr(true), Text: ptr("T")},
		Regions: []RegionSpec{{ID: "g", Text: ptr("global")}},
		Images: map[string]ImageLayout{
			"own.png":  {Regions: []RegionSpec{{ID: "o", Text: ptr("own"), X: ptr(150.0)}}},
			"none.png": {Regions: []RegionSpec{}},
			"skip.png": {Skip: true},
		},
	}

	tests := []struct {
		name    string
		wantIDs []string
		skipped bool
	}{
		{"own.png", []string{"o"}, false},
		{"none.png", []string{}, false},
		{"skip.png", nil, true},
		{"other.png", []string{"g"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions := MergeImage(l, tt.name)
			if tt.wantIDs == nil {
				assert.Nil(t, regions)
			} else {
				ids := make([]string, 0, len(regions))
				for _, r := range regions {
					ids = append(ids, r.ID)
				}
				assert.Equal(t, tt.wantIDs, ids)
			}
			assert.Equal(t, tt.skipped, l.Skipped(tt.name))
		})
	}

	own := MergeImage(l, "own.png")
	assert.Equal(t, 100.0, own[0].X, "positions are clamped")

	tile := l.TileConfig()
	assert.True(t, tile.Active())
	assert.Equal(t, watermark.DefaultTileOpacity, tile.Opacity)
}

func TestMergeImageSkipWhileSynced(t *testing.T) {
	l := &Layout{
		Regions: []RegionSpec{{ID: "g"}},
		Images:  map[string]ImageLayout{"skip.png": {Skip: true}},
	}
	assert.True(t, l.Skipped("skip.png"))
	assert.Nil(t, MergeImage(l, "skip.png"))
	assert.Len(t, MergeImage(l, "keep.png"), 1)
	assert.Empty(t, ValidateLayout(l, nil))
	assert.Contains(t, FormatLayout(l), "[skip.png] skipped")
}

func TestLoadLayoutAssignsStableIDs(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.json", `{"regions":[{"text":"a"},{"text":"b"}]}`)

	l, cleanup, err := LoadLayout(path)
	require.NoError(t, err)
	defer cleanup()

	first := MergeImage(l, "1.png")
	second := MergeImage(l, "2.png")
	require.Len(t, first, 2)
	for i := range first {
		assert.True(t, strings.HasPrefix(first[i].ID, watermark.IDPrefix))
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestLoadLayoutResolvesFont(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "layout.json", `{"font":"fonts/brand.ttf"}`)

	l, cleanup, err := LoadLayout(path)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, filepath.Join(dir, "fonts", "brand.ttf"), l.Font)
}

func TestLoadLayoutBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brand"+BundleExt)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"layout.json": `{"font":"brand.ttf","regions":[{"id":"r","text":"hi"}]}`,
		"brand.ttf":   "not really a font",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	l, cleanup, err := LoadLayout(path)
	require.NoError(t, err)

	assert.FileExists(t, l.Font)
	assert.Equal(t, "hi", MergeImage(l, "x.png")[0].Text)

	cleanup()
	assert.NoFileExists(t, l.Font)
}

func TestLoadLayoutBundleRejectsZipSlip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil"+BundleExt)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.json")
	require.NoError(t, err)
	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, cleanup, err := LoadLayout(path)
	require.Error(t, err)
	cleanup()
}

func TestLoadLayoutErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadLayout(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "read layout")

	bad := writeFile(t, dir, "bad.json", `{"regions":`)
	_, _, err = LoadLayout(bad)
	assert.ErrorContains(t, err, "parse layout JSON")
}

func TestValidateLayout(t *testing.T) {
	l := &Layout{
		Sync: ptr(false),
		Tile: TileSpec{Color: ptr("red"), Opacity: ptr(120), Spacing: ptr(0.0)},
		Regions: []RegionSpec{
			{ID: "a", X: ptr(-5.0), Angle: ptr(270.0)},
			{ID: "a", Text: ptr("  "), Style: &StyleSpec{FontSize: ptr(-1.0)}},
		},
		Images: map[string]ImageLayout{
			"gone.png": {},
			"here.png": {},
		},
		Export: ExportSpec{Format: "gif", Quality: 93},
	}

	warnings := ValidateLayout(l, []string{"here.png"})

	want := []string{
		"tile: opacity 120",
		"tile: spacing 0",
		"regions[0]: x -5",
		"regions[0]: angle 270 normalized to -90",
		`regions[1]: duplicate id "a"`,
		"regions[1]: empty text",
		"regions[1]: fontSize -1",
		`unknown image "gone.png"`,
		`unsupported format "gif"`,
		"quality 93 adjusted to 95",
	}
	joined := strings.Join(warnings, "\n")
	for _, w := range want {
		assert.Contains(t, joined, w)
	}
	assert.Contains(t, joined, "tile: invalid color")
	assert.NotContains(t, joined, "here.png")

	assert.Empty(t, ValidateLayout(&Layout{}, nil))
	assert.Nil(t, ValidateLayout(nil, nil))
}

func TestLayoutOptions(t *testing.T) {
	assert.Equal(t, export.DefaultOptions(), (&Layout{}).Options())

	opts := (&Layout{Export: ExportSpec{Format: "JPEG", Quality: 72}}).Options()
	assert.Equal(t, export.JPEG, opts.Format)
	assert.Equal(t, 70, opts.Quality)

	opts = (&Layout{Export: ExportSpec{Format: "tiff"}}).Options()
	assert.Equal(t, export.PNG, opts.Format)
}

func TestFormatLayout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.json", GetExampleJSON())
	l, cleanup, err := LoadLayout(path)
	require.NoError(t, err)
	defer cleanup()

	out := FormatLayout(l)
	assert.Contains(t, out, "Layout: Sample Layout")
	assert.Contains(t, out, `Tile: "CONFIDENTIAL"`)
	assert.Contains(t, out, "shared by all images")
	assert.Contains(t, out, "Export: png")

	assert.Contains(t, FormatLayout(&Layout{}), "Tile: off")
}
