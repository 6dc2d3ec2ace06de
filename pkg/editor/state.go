// Package editor holds the single-owner editing state and the commands that
// change it, plus a Controller that turns pointer input into commands,
// renders previews and runs exports.
package editor

import (
	"errors"
	"image"

	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/geom"
	"github.com/ibucoin/watermark/pkg/render"
	"github.com/ibucoin/watermark/pkg/watermark"
)

var (
	// ErrReadOnly is returned for region edits on an image other than the
	// first while regions are synced across images.
	ErrReadOnly = errors.New("image is read-only in sync mode")
	// ErrUnknownRegion is returned when a command names a region that is not
	// in the active list.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrUnknownImage is returned for an out-of-range image index.
	ErrUnknownImage = errors.New("unknown image")
	// ErrInvalidColor is returned for colours that are not 6-digit hex.
	ErrInvalidColor = geom.ErrInvalidColor
)

// Image is one entry of the working set.
type Image struct {
	ID     string
	Name   string
	Raster image.Image
	Width  int
	Height int
	// Regions is this image's own list, used when Sync is off.
	Regions []watermark.TextRegion
	// Release frees client resources tied to the image. It is called once
	// when the image leaves the working set.
	Release func()
}

// State is the complete editor state. It is a value: commands return a new
// State and never mutate the one they were given.
type State struct {
	Images     []Image
	Regions    []watermark.TextRegion
	Sync       bool
	SelectedID string
	Tile       watermark.TileConfig
	Current    int
	Format     export.Format
	Quality    int
	Zoom       float64
}

// NewState returns the initial state: no images, synced regions, default
// tile, PNG export.
func NewState() State {
	return State{
		Sync:    true,
		Tile:    watermark.DefaultTile(),
		Format:  export.PNG,
		Quality: export.DefaultQuality,
		Zoom:    render.DefaultZoom,
	}
}

// RegionsFor returns the regions that apply to image i: the shared list in
// sync mode or when i names no image, otherwise the image's own list.
func (s State) RegionsFor(i int) []watermark.TextRegion {
	if s.Sync || i < 0 || i >= len(s.Images) {
		return s.Regions
	}
	return s.Images[i].Regions
}

// ActiveRegions is RegionsFor the current image.
func (s State) ActiveRegions() []watermark.TextRegion {
	return s.RegionsFor(s.Current)
}

// Editable reports whether regions of the current image may be changed.
func (s State) Editable() bool {
	return !s.Sync || s.Current == 0
}

// CurrentImage returns the image being edited.
func (s State) CurrentImage() (Image, bool) {
	if s.Current < 0 || s.Current >= len(s.Images) {
		return Image{}, false
	}
	return s.Images[s.Current], true
}

// Selected returns the selected region of the active list.
func (s State) Selected() (watermark.TextRegion, bool) {
	if s.SelectedID == "" {
		return watermark.TextRegion{}, false
	}
	regions := s.ActiveRegions()
	if i := watermark.IndexOf(regions, s.SelectedID); i >= 0 {
		return regions[i], true
	}
	return watermark.TextRegion{}, false
}

// ExportOptions returns the export settings.
func (s State) ExportOptions() export.Options {
	return export.Options{Format: s.Format, Quality: s.Quality}
}

// Sources lists the working set as export sources.
func (s State) Sources() []export.Source {
	out := make([]export.Source, len(s.Images))
	for i, img := range s.Images {
		out[i] = export.NewImageSource(img.Name, img.Raster)
	}
	return out
}

// withActiveRegions returns s with the active list replaced by regions.
// Images are copied so the receiver keeps its own slice.
func (s State) withActiveRegions(regions []watermark.TextRegion) State {
	if s.Sync || s.Current < 0 || s.Current >= len(s.Images) {
		s.Regions = regions
		return s
	}
	s.Images = cloneImages(s.Images)
	s.Images[s.Current].Regions = regions
	return s
}

// fixSelection drops a selection that no longer names a region in the
// active list.
func (s State) fixSelection() State {
	if s.SelectedID != "" && watermark.IndexOf(s.ActiveRegions(), s.SelectedID) < 0 {
		s.SelectedID = ""
	}
	return s
}

func cloneImages(images []Image) []Image {
	if images == nil {
		return nil
	}
	out := make([]Image, len(images))
	copy(out, images)
	return out
}
