package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/watermark"
)

func ids(regions []watermark.TextRegion) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.ID
	}
	return out
}

func TestRemoveSelectedRegionClearsSelection(t *testing.T) {
	s := withRegions("A", "B", "C")
	s.SelectedID = "B"

	next := mustApply(t, s, RemoveRegion{ID: "B"})
	assert.Equal(t, []string{"A", "C"}, ids(next.Regions))
	assert.Empty(t, next.SelectedID)
	_, ok := next.Selected()
	assert.False(t, ok)

	other := mustApply(t, s, RemoveRegion{ID: "C"})
	assert.Equal(t, "B", other.SelectedID)
}

func TestApplyIsPure(t *testing.T) {
	s := withRegions("A", "B")
	s.Images = []Image{testImage("i1", 10, 10)}
	s = mustApply(t, s, SetSync{Sync: false})

	next := mustApply(t, s, UpdateText{ID: "A", Text: "changed"})
	next.Regions[1].Text = "mutated"
	next.Images[0].Regions[0].X = 1

	assert.Equal(t, "Watermark", s.Regions[1].Text)
	assert.Equal(t, 50.0, s.Images[0].Regions[0].X)
	assert.Equal(t, "Watermark", s.Images[0].Regions[0].Text)
	assert.Equal(t, "changed", next.Images[0].Regions[0].Text)
}

func TestAddAndDuplicateRegion(t *testing.T) {
	s := mustApply(t, NewState(), AddRegion{})
	require.Len(t, s.Regions, 1)
	first := s.Regions[0]
	assert.Equal(t, first.ID, s.SelectedID)

	s = mustApply(t, s, UpdatePosition{ID: first.ID, X: 93, Y: 10}, DuplicateRegion{ID: first.ID})
	require.Len(t, s.Regions, 2)
	dup := s.Regions[1]
	assert.NotEqual(t, first.ID, dup.ID)
	assert.Equal(t, 95.0, dup.X)
	assert.Equal(t, 15.0, dup.Y)
	assert.Equal(t, dup.ID, s.SelectedID)

	custom := watermark.TextRegion{ID: first.ID, Text: "Custom", X: 20, Y: 20, Width: 30}
	s = mustApply(t, s, AddRegion{Region: &custom})
	last := s.Regions[len(s.Regions)-1]
	assert.Equal(t, "Custom", last.Text)
	assert.NotEqual(t, first.ID, last.ID, "id collision replaced")
	assert.Equal(t, 48.0, last.Style.FontSize, "style defaults applied")
}

func TestUnknownRegion(t *testing.T) {
	s := withRegions("A")
	for _, cmd := range []Command{
		SelectRegion{ID: "nope"},
		RemoveRegion{ID: "nope"},
		UpdateText{ID: "nope"},
		DuplicateRegion{ID: "nope"},
	} {
		next, err := Apply(s, cmd)
		assert.ErrorIs(t, err, ErrUnknownRegion, "%T", cmd)
		assert.Equal(t, s, next)
	}
}

func TestUpdateStyle(t *testing.T) {
	s := withRegions("A")

	next := mustApply(t, s, UpdateStyle{ID: "A", Color: ptr("#FF0000"), Opacity: ptr(150), FontSize: ptr(500.0)})
	st := next.Regions[0].Style
	assert.Equal(t, "#FF0000", st.Color)
	assert.Equal(t, 100, st.Opacity)
	assert.Equal(t, 200.0, st.FontSize)

	_, err := Apply(s, UpdateStyle{ID: "A", Color: ptr("red")})
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestUpdateGeometryNormalizes(t *testing.T) {
	s := mustApply(t, withRegions("A"), UpdateGeometry{ID: "A", Width: ptr(35.0), Angle: ptr(200.0)})
	assert.Equal(t, 35.0, s.Regions[0].Width)
	assert.Equal(t, -160.0, s.Regions[0].Angle)
}

func TestUpdateTile(t *testing.T) {
	s := mustApply(t, NewState(), UpdateTile{Enabled: ptr(true), Text: ptr("CONFIDENTIAL"), Spacing: ptr(5.0), Opacity: ptr(40)})
	assert.True(t, s.Tile.Active())
	assert.Equal(t, 50.0, s.Tile.Spacing)
	assert.Equal(t, 40, s.Tile.Opacity)

	_, err := Apply(s, UpdateTile{Color: ptr("#12345")})
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestSyncModeLocksOtherImages(t *testing.T) {
	s := withRegions("A")
	s = mustApply(t, s, AddImages{Images: []Image{testImage("i1", 10, 10), testImage("i2", 20, 20)}}, SelectImage{Index: 1})
	assert.False(t, s.Editable())

	_, err := Apply(s, AddRegion{})
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = Apply(s, UpdateText{ID: "A", Text: "x"})
	assert.ErrorIs(t, err, ErrReadOnly)

	assert.Equal(t, ids(s.RegionsFor(0)), ids(s.RegionsFor(1)), "both images show the shared list")

	s = mustApply(t, s, SetSync{Sync: false})
	assert.True(t, s.Editable())
	s = mustApply(t, s, UpdateText{ID: "A", Text: "second only"})
	assert.Equal(t, "Watermark", s.RegionsFor(0)[0].Text)
	assert.Equal(t, "second only", s.RegionsFor(1)[0].Text)
}

func TestCopyToImages(t *testing.T) {
	s := withRegions("A")
	s = mustApply(t, s,
		AddImages{Images: []Image{testImage("i1", 10, 10), testImage("i2", 10, 10), testImage("i3", 10, 10)}},
		SetSync{Sync: false},
		AddRegion{},
	)
	added := s.SelectedID

	_, err := Apply(withRegions("A"), CopyToImages{ID: "A", Targets: []int{0}})
	assert.ErrorIs(t, err, ErrReadOnly, "sync mode has nothing to copy into")

	s = mustApply(t, s, CopyToImages{ID: added, Targets: []int{0, 2}})
	assert.Len(t, s.RegionsFor(0), 2, "current image unchanged")
	require.Len(t, s.RegionsFor(2), 2)
	assert.NotEqual(t, added, s.RegionsFor(2)[1].ID)
	assert.Len(t, s.RegionsFor(1), 1)

	_, err = Apply(s, CopyToImages{ID: added, Targets: []int{7}})
	assert.ErrorIs(t, err, ErrUnknownImage)
}

func TestImageWorkingSet(t *testing.T) {
	s := withRegions("A")
	s.SelectedID = "A"
	s = mustApply(t, s, AddImages{Images: []Image{testImage("i1", 10, 10), testImage("i2", 10, 10), testImage("i3", 10, 10)}})
	assert.Equal(t, 0, s.Current)

	s = mustApply(t, s, SelectImage{Index: 2}, RemoveImage{Index: 2})
	assert.Equal(t, 1, s.Current, "index clamped")
	assert.Len(t, s.Images, 2)

	_, err := Apply(s, SelectImage{Index: 5})
	assert.ErrorIs(t, err, ErrUnknownImage)

	s = mustApply(t, s, ClearImages{})
	assert.Empty(t, s.Images)
	assert.Empty(t, s.Regions)
	assert.Empty(t, s.SelectedID)
	assert.Zero(t, s.Current)
}

func TestSelectionFollowsActiveList(t *testing.T) {
	s := withRegions("A")
	s = mustApply(t, s, AddImages{Images: []Image{testImage("i1", 10, 10), testImage("i2", 10, 10)}}, SetSync{Sync: false})
	s = mustApply(t, s, AddRegion{})
	require.NotEmpty(t, s.SelectedID)

	s = mustApply(t, s, SelectImage{Index: 1})
	assert.Empty(t, s.SelectedID, "region of image 0 is not in image 1's list")
}

func TestExportSettings(t *testing.T) {
	s := mustApply(t, NewState(), SetExportFormat{Format: export.JPEG}, SetQuality{Quality: 87}, SetZoom{Zoom: 1000})
	assert.Equal(t, export.JPEG, s.Format)
	assert.Equal(t, 85, s.Quality)
	assert.Equal(t, 300.0, s.Zoom)

	_, err := Apply(s, SetExportFormat{Format: "gif"})
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}
