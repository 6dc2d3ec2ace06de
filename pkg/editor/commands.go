// commands.go - Command variants and the reducer that applies them.
package editor

import (
	"fmt"

	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/geom"
	"github.com/ibucoin/watermark/pkg/render"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// DuplicateOffset is how far, in percent, a duplicate is moved from its
// original on both axes.
const DuplicateOffset = 5.0

// Command is one state change. The concrete types below are the full set.
type Command interface {
	command()
}

type (
	// AddRegion appends a new default region, or Region when set, and
	// selects it.
	AddRegion struct {
		Region *watermark.TextRegion
	}
	// DuplicateRegion copies a region with a fresh id, offset down-right.
	DuplicateRegion struct{ ID string }
	// RemoveRegion deletes a region.
	RemoveRegion struct{ ID string }
	// SelectRegion selects a region; an empty ID clears the selection.
	SelectRegion struct{ ID string }
	// UpdateText replaces a region's text.
	UpdateText struct {
		ID   string
		Text string
	}
	// UpdateStyle changes the set fields of a region's style.
	UpdateStyle struct {
		ID       string
		Color    *string
		Opacity  *int
		FontSize *float64
	}
	// UpdatePosition moves a region's centre, in percent.
	UpdatePosition struct {
		ID   string
		X, Y float64
	}
	// UpdateGeometry changes the set fields of width and angle.
	UpdateGeometry struct {
		ID    string
		Width *float64
		Angle *float64
	}
	// UpdateTile changes the set fields of the tile configuration.
	UpdateTile struct {
		Enabled  *bool
		Text     *string
		Color    *string
		Opacity  *int
		FontSize *float64
		Angle    *float64
		Spacing  *float64
	}
	// AddImages appends decoded images to the working set.
	AddImages struct{ Images []Image }
	// RemoveImage drops one image.
	RemoveImage struct{ Index int }
	// ClearImages empties the working set along with all regions.
	ClearImages struct{}
	// SelectImage switches the image being edited.
	SelectImage struct{ Index int }
	// SetSync switches between one shared region list and per-image lists.
	SetSync struct{ Sync bool }
	// SetExportFormat picks PNG or JPEG.
	SetExportFormat struct{ Format export.Format }
	// SetQuality sets JPEG quality, snapped to the control's range and step.
	SetQuality struct{ Quality int }
	// SetZoom sets the preview zoom percentage.
	SetZoom struct{ Zoom float64 }
	// CopyToImages copies a region of the current image into other images'
	// own lists, each copy with a fresh id.
	CopyToImages struct {
		ID      string
		Targets []int
	}
)

func (AddRegion) command()       {}
func (DuplicateRegion) command() {}
func (RemoveRegion) command()    {}
func (SelectRegion) command()    {}
func (UpdateText) command()      {}
func (UpdateStyle) command()     {}
func (UpdatePosition) command()  {}
func (UpdateGeometry) command()  {}
func (UpdateTile) command()      {}
func (AddImages) command()       {}
func (RemoveImage) command()     {}
func (ClearImages) command()     {}
func (SelectImage) command()     {}
func (SetSync) command()         {}
func (SetExportFormat) command() {}
func (SetQuality) command()      {}
func (SetZoom) command()         {}
func (CopyToImages) command()    {}

// Apply returns the state after cmd. On error the returned state is s
// unchanged. The result never shares slices with s.
func Apply(s State, cmd Command) (State, error) {
	next := s.clone()
	var err error

	switch c := cmd.(type) {
	case AddRegion:
		next, err = next.addRegion(c)
	case DuplicateRegion:
		next, err = next.editRegions(func(regions []watermark.TextRegion) ([]watermark.TextRegion, string, error) {
			i := watermark.IndexOf(regions, c.ID)
			if i < 0 {
				return nil, "", unknown(c.ID)
			}
			d := regions[i].Duplicate(DuplicateOffset, watermark.MaxDragPosition)
			return append(regions, d), d.ID, nil
		})
	case RemoveRegion:
		next, err = next.editRegions(func(regions []watermark.TextRegion) ([]watermark.TextRegion, string, error) {
			i := watermark.IndexOf(regions, c.ID)
			if i < 0 {
				return nil, "", unknown(c.ID)
			}
			sel := next.SelectedID
			if sel == c.ID {
				sel = ""
			}
			return append(regions[:i], regions[i+1:]...), sel, nil
		})
	case SelectRegion:
		if c.ID != "" && watermark.IndexOf(next.ActiveRegions(), c.ID) < 0 {
			err = unknown(c.ID)
			break
		}
		next.SelectedID = c.ID
	case UpdateText:
		next, err = next.updateRegion(c.ID, func(r watermark.TextRegion) (watermark.TextRegion, error) {
			r.Text = c.Text
			return r, nil
		})
	case UpdateStyle:
		next, err = next.updateRegion(c.ID, func(r watermark.TextRegion) (watermark.TextRegion, error) {
			if c.Color != nil {
				if _, _, _, err := geom.ParseColor(*c.Color); err != nil {
					return r, err
				}
				r.Style.Color = *c.Color
			}
			if c.Opacity != nil {
				r.Style.Opacity = *c.Opacity
			}
			if c.FontSize != nil {
				r.Style.FontSize = geom.Clamp(*c.FontSize, watermark.MinFontSize, watermark.MaxFontSize)
			}
			return r, nil
		})
	case UpdatePosition:
		next, err = next.updateRegion(c.ID, func(r watermark.TextRegion) (watermark.TextRegion, error) {
			r.X, r.Y = c.X, c.Y
			return r, nil
		})
	case UpdateGeometry:
		next, err = next.updateRegion(c.ID, func(r watermark.TextRegion) (watermark.TextRegion, error) {
			if c.Width != nil {
				r.Width = *c.Width
			}
			if c.Angle != nil {
				r.Angle = *c.Angle
			}
			return r, nil
		})
	case UpdateTile:
		next, err = next.updateTile(c)
	case AddImages:
		if len(next.Images) == 0 {
			next.Current = 0
		}
		next.Images = append(next.Images, c.Images...)
	case RemoveImage:
		if c.Index < 0 || c.Index >= len(next.Images) {
			err = fmt.Errorf("%w: %d", ErrUnknownImage, c.Index)
			break
		}
		next.Images = append(next.Images[:c.Index], next.Images[c.Index+1:]...)
		next.Current = min(next.Current, max(0, len(next.Images)-1))
	case ClearImages:
		next.Images = nil
		next.Current = 0
		next.Regions = nil
		next.SelectedID = ""
	case SelectImage:
		if c.Index < 0 || c.Index >= len(next.Images) {
			err = fmt.Errorf("%w: %d", ErrUnknownImage, c.Index)
			break
		}
		next.Current = c.Index
	case SetSync:
		next = next.setSync(c.Sync)
	case SetExportFormat:
		if c.Format != export.PNG && c.Format != export.JPEG {
			err = fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, string(c.Format))
			break
		}
		next.Format = c.Format
	case SetQuality:
		next.Quality = export.NormalizeQuality(c.Quality)
	case SetZoom:
		next.Zoom = render.ClampZoom(c.Zoom)
	case CopyToImages:
		next, err = next.copyToImages(c)
	default:
		err = fmt.Errorf("unknown command %T", cmd)
	}

	if err != nil {
		return s, err
	}
	return next.fixSelection(), nil
}

func unknown(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownRegion, id)
}

// editRegions runs fn on the active list when it is editable. fn returns
// the new list and the id to select.
func (s State) editRegions(fn func([]watermark.TextRegion) ([]watermark.TextRegion, string, error)) (State, error) {
	if !s.Editable() {
		return s, ErrReadOnly
	}
	regions, sel, err := fn(s.ActiveRegions())
	if err != nil {
		return s, err
	}
	s = s.withActiveRegions(regions)
	s.SelectedID = sel
	return s, nil
}

// updateRegion rewrites the region with id and normalizes it.
func (s State) updateRegion(id string, fn func(watermark.TextRegion) (watermark.TextRegion, error)) (State, error) {
	sel := s.SelectedID
	return s.editRegions(func(regions []watermark.TextRegion) ([]watermark.TextRegion, string, error) {
		i := watermark.IndexOf(regions, id)
		if i < 0 {
			return nil, "", unknown(id)
		}
		r, err := fn(regions[i])
		if err != nil {
			return nil, "", err
		}
		regions[i] = r.Normalize()
		return regions, sel, nil
	})
}

func (s State) addRegion(c AddRegion) (State, error) {
	r := watermark.NewRegion()
	if c.Region != nil {
		r = c.Region.Normalize()
		if watermark.IndexOf(s.ActiveRegions(), r.ID) >= 0 {
			r.ID = watermark.NewID()
		}
	}
	return s.editRegions(func(regions []watermark.TextRegion) ([]watermark.TextRegion, string, error) {
		return append(regions, r), r.ID, nil
	})
}

func (s State) updateTile(c UpdateTile) (State, error) {
	t := s.Tile
	if c.Enabled != nil {
		t.Enabled = *c.Enabled
	}
	if c.Text != nil {
		t.Text = *c.Text
	}
	if c.Color != nil {
		if _, _, _, err := geom.ParseColor(*c.Color); err != nil {
			return s, err
		}
		t.Color = *c.Color
	}
	if c.Opacity != nil {
		t.Opacity = *c.Opacity
	}
	if c.FontSize != nil {
		t.FontSize = geom.Clamp(*c.FontSize, watermark.MinFontSize, watermark.MaxFontSize)
	}
	if c.Angle != nil {
		t.Angle = *c.Angle
	}
	if c.Spacing != nil {
		t.Spacing = geom.Clamp(*c.Spacing, watermark.MinTileSpacing, watermark.MaxTileSpacing)
	}
	s.Tile = t.Normalize()
	return s, nil
}

// setSync switches list mode. Leaving sync mode seeds every image without a
// list of its own from the shared list.
func (s State) setSync(sync bool) State {
	if !sync && s.Sync {
		for i := range s.Images {
			if s.Images[i].Regions == nil {
				s.Images[i].Regions = watermark.CloneRegions(s.Regions)
			}
		}
	}
	s.Sync = sync
	return s
}

func (s State) copyToImages(c CopyToImages) (State, error) {
	if s.Sync {
		return s, fmt.Errorf("%w: copying needs per-image regions", ErrReadOnly)
	}
	src, ok := s.regionByID(c.ID)
	if !ok {
		return s, unknown(c.ID)
	}
	for _, t := range c.Targets {
		if t < 0 || t >= len(s.Images) {
			return s, fmt.Errorf("%w: %d", ErrUnknownImage, t)
		}
	}
	for _, t := range c.Targets {
		if t == s.Current {
			continue
		}
		cp := src
		cp.ID = watermark.NewID()
		s.Images[t].Regions = append(s.Images[t].Regions, cp)
	}
	return s, nil
}

func (s State) regionByID(id string) (watermark.TextRegion, bool) {
	regions := s.ActiveRegions()
	if i := watermark.IndexOf(regions, id); i >= 0 {
		return regions[i], true
	}
	return watermark.TextRegion{}, false
}

// clone deep-copies every slice the state owns. Rasters are shared; they are
// never written.
func (s State) clone() State {
	s.Regions = watermark.CloneRegions(s.Regions)
	s.Images = cloneImages(s.Images)
	for i := range s.Images {
		s.Images[i].Regions = watermark.CloneRegions(s.Images[i].Regions)
	}
	return s
}
