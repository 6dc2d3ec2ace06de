// view.go - JSON-facing snapshot of the controller and pointer events, shared
// by the HTTP and browser clients.
package editor

import (
	"fmt"

	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/render"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// ImageInfo describes one image of the working set without its pixels.
type ImageInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Regions int    `json:"regions"`
}

// View is what a client needs to draw its controls.
type View struct {
	Images     []ImageInfo            `json:"images"`
	Current    int                    `json:"current"`
	Regions    []watermark.TextRegion `json:"regions"`
	Editable   bool                   `json:"editable"`
	Sync       bool                   `json:"sync"`
	SelectedID string                 `json:"selectedId"`
	Hovered    string                 `json:"hovered"`
	Tile       watermark.TileConfig   `json:"tile"`
	Format     export.Format          `json:"format"`
	Quality    int                    `json:"quality"`
	Zoom       float64                `json:"zoom"`
	Busy       bool                   `json:"busy"`
}

// View returns a snapshot of the controller for clients.
func (c *Controller) View() View {
	s := c.state
	v := View{
		Images:     make([]ImageInfo, len(s.Images)),
		Current:    s.Current,
		Regions:    watermark.CloneRegions(s.ActiveRegions()),
		Editable:   s.Editable(),
		Sync:       s.Sync,
		SelectedID: s.SelectedID,
		Hovered:    c.hovered,
		Tile:       s.Tile,
		Format:     s.Format,
		Quality:    s.Quality,
		Zoom:       s.Zoom,
		Busy:       c.Busy(),
	}
	if v.Regions == nil {
		v.Regions = []watermark.TextRegion{}
	}
	for i, img := range s.Images {
		v.Images[i] = ImageInfo{
			ID:      img.ID,
			Name:    img.Name,
			Width:   img.Width,
			Height:  img.Height,
			Regions: len(s.RegionsFor(i)),
		}
	}
	return v
}

// PointerEvent is a pointer action in preview coordinates.
type PointerEvent struct {
	Type string  `json:"type"` // down, move, up, leave, edit
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PointerResult tells the client which cursor to show and, for edit events,
// which region to open.
type PointerResult struct {
	Handle string                `json:"handle"`
	Cursor string                `json:"cursor"`
	Region *watermark.TextRegion `json:"region,omitempty"`
}

// HandlePointer dispatches ev to the matching Pointer method.
func (c *Controller) HandlePointer(ev PointerEvent) (PointerResult, error) {
	h := render.HandleNone
	var res PointerResult
	switch ev.Type {
	case "down":
		h = c.PointerDown(ev.X, ev.Y)
	case "move":
		h = c.PointerMove(ev.X, ev.Y)
	case "up":
		c.PointerUp()
	case "leave":
		c.PointerLeave()
	case "edit":
		if r, ok := c.EditAt(ev.X, ev.Y); ok {
			res.Region = &r
			h = render.HandleMove
		}
	default:
		return PointerResult{}, fmt.Errorf("unknown pointer event %q", ev.Type)
	}
	res.Handle = h.String()
	res.Cursor = h.Cursor()
	return res, nil
}
