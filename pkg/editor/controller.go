// controller.go - Owns the editor state: turns pointer input into commands,
// renders previews and feeds the export loop.
package editor

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/metrics"
	"github.com/ibucoin/watermark/pkg/render"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// ExportResult is the outcome of one export job.
type ExportResult struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
	Count    int
	Err      error
}

type exportJob struct {
	id    string
	state State
}

type viewport struct {
	width, height, dpr float64
}

type drag struct {
	active       bool
	handle       render.Handle
	lastX, lastY float64
}

// Controller is the single writer of a State. Its methods must be called
// from one goroutine; Run may execute on another.
type Controller struct {
	state    State
	engine   *render.Engine
	exporter *export.Exporter
	log      *zap.Logger
	now      func() time.Time

	view    viewport
	drag    drag
	hovered string

	requests chan exportJob
	results  chan ExportResult
	busy     atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithEngine sets the engine used for previews and hit testing.
func WithEngine(e *render.Engine) Option {
	return func(c *Controller) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithExporter sets the exporter used by Run. It needs its own engine.
func WithExporter(x *export.Exporter) Option {
	return func(c *Controller) {
		if x != nil {
			c.exporter = x
		}
	}
}

// WithClock replaces time.Now for export naming.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithState starts the controller from s instead of NewState.
func WithState(s State) Option {
	return func(c *Controller) { c.state = s }
}

// NewController returns a controller with a fresh state.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		state:    NewState(),
		log:      zap.NewNop(),
		now:      time.Now,
		view:     viewport{dpr: 1},
		requests: make(chan exportJob, 1),
		results:  make(chan ExportResult, 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = render.NewEngine(nil, render.WithLogger(c.log))
	}
	if c.exporter == nil {
		c.exporter = export.NewExporter(
			render.NewEngine(canvas.MustDefaultFonts(), render.WithLogger(c.log)),
			export.WithLogger(c.log),
			export.WithClock(c.now),
		)
	}
	return c
}

// State returns the current state. It is safe to keep: later commands never
// modify it.
func (c *Controller) State() State {
	return c.state
}

// Dispatch applies cmd and releases images that left the working set.
func (c *Controller) Dispatch(cmd Command) error {
	prev := c.state
	next, err := Apply(prev, cmd)
	if err != nil {
		c.log.Debug("command rejected", zap.String("command", commandName(cmd)), zap.Error(err))
		return err
	}
	c.state = next
	releaseDropped(prev.Images, next.Images)

	if c.hovered != "" && watermark.IndexOf(next.ActiveRegions(), c.hovered) < 0 {
		c.hovered = ""
	}
	if _, ok := next.Selected(); !ok && c.drag.active {
		c.drag = drag{}
	}
	return nil
}

// AddImage decodes an upload and appends it to the working set.
func (c *Controller) AddImage(name string, r io.Reader, size int64, release func()) (Image, error) {
	img, err := LoadImage(name, r, size, release)
	if err != nil {
		c.log.Warn("image rejected", zap.String("name", name), zap.Error(err))
		return Image{}, err
	}
	if err := c.Dispatch(AddImages{Images: []Image{img}}); err != nil {
		return Image{}, err
	}
	return img, nil
}

// Target returns the preview target of the current image for the last
// viewport.
func (c *Controller) Target() (render.Target, bool) {
	img, ok := c.state.CurrentImage()
	if !ok || img.Width == 0 || img.Height == 0 {
		return render.Target{}, false
	}
	fit := render.FitScale(img.Width, img.Height, c.view.width, c.view.height)
	scale := render.PreviewScale(fit, c.state.Zoom)
	return render.PreviewTarget(img.Width, img.Height, scale, c.view.dpr), true
}

// Preview renders the current image for a containerW×containerH display at
// dpr. Pointer coordinates are interpreted against this layout until the
// next call.
func (c *Controller) Preview(containerW, containerH, dpr float64) (*canvas.Surface, error) {
	if dpr <= 0 {
		dpr = 1
	}
	c.view = viewport{width: containerW, height: containerH, dpr: dpr}

	t, ok := c.Target()
	if !ok {
		return nil, ErrUnknownImage
	}
	img, _ := c.state.CurrentImage()
	return c.engine.RenderFrame(t, img.Raster, c.state.Tile, c.state.ActiveRegions(), c.state.SelectedID, true, render.WithHovered(c.hovered)), nil
}

// Hovered returns the id of the region under the pointer.
func (c *Controller) Hovered() string {
	return c.hovered
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.drag.active
}

func (c *Controller) scaledRegions(t render.Target) []watermark.TextRegion {
	return watermark.ScaleRegions(c.state.ActiveRegions(), t.Scale)
}

// PointerDown starts a drag on a handle of the selected region, or selects
// and starts moving the region under the pointer, or clears the selection.
func (c *Controller) PointerDown(x, y float64) render.Handle {
	t, ok := c.Target()
	if !ok || !c.state.Editable() {
		return render.HandleNone
	}

	if sel, ok := c.state.Selected(); ok {
		h := c.engine.HandleAt(x, y, t.Width, t.Height, sel.Scaled(t.Scale))
		metrics.HitTestsTotal.WithLabelValues(h.String()).Inc()
		if h != render.HandleNone {
			c.drag = drag{active: true, handle: h, lastX: x, lastY: y}
			return h
		}
	}

	hit := c.engine.RegionAt(x, y, t.Width, t.Height, c.scaledRegions(t))
	if hit == nil {
		metrics.HitTestsTotal.WithLabelValues(render.HandleNone.String()).Inc()
		_ = c.Dispatch(SelectRegion{})
		return render.HandleNone
	}
	metrics.HitTestsTotal.WithLabelValues(render.HandleMove.String()).Inc()
	if err := c.Dispatch(SelectRegion{ID: hit.ID}); err != nil {
		return render.HandleNone
	}
	c.drag = drag{active: true, handle: render.HandleMove, lastX: x, lastY: y}
	return render.HandleMove
}

// PointerMove continues a drag, or updates the hover highlight. It returns
// the handle under the pointer for cursor feedback.
func (c *Controller) PointerMove(x, y float64) render.Handle {
	t, ok := c.Target()
	if !ok || !c.state.Editable() {
		c.hovered = ""
		return render.HandleNone
	}

	if c.drag.active {
		sel, ok := c.state.Selected()
		if !ok {
			c.drag = drag{}
			return render.HandleNone
		}
		switch {
		case c.drag.handle == render.HandleMove:
			r := render.MoveBy(sel, x-c.drag.lastX, y-c.drag.lastY, t.Width, t.Height)
			_ = c.Dispatch(UpdatePosition{ID: sel.ID, X: r.X, Y: r.Y})
			c.drag.lastX, c.drag.lastY = x, y
		case c.drag.handle == render.HandleRotate:
			r := render.RotateToward(sel, x, y, t.Width, t.Height)
			_ = c.Dispatch(UpdateGeometry{ID: sel.ID, Angle: &r.Angle})
		case c.drag.handle.IsResize():
			r := render.ResizeBy(sel, x-c.drag.lastX, t.Width)
			_ = c.Dispatch(UpdateGeometry{ID: sel.ID, Width: &r.Width})
			c.drag.lastX, c.drag.lastY = x, y
		}
		return c.drag.handle
	}

	hit := c.engine.RegionAt(x, y, t.Width, t.Height, c.scaledRegions(t))
	c.hovered = ""
	if hit != nil {
		c.hovered = hit.ID
	}
	if sel, ok := c.state.Selected(); ok {
		if h := c.engine.HandleAt(x, y, t.Width, t.Height, sel.Scaled(t.Scale)); h != render.HandleNone {
			return h
		}
	}
	if hit != nil {
		return render.HandleMove
	}
	return render.HandleNone
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	c.drag = drag{}
}

// PointerLeave ends a drag and clears the hover highlight.
func (c *Controller) PointerLeave() {
	c.drag = drag{}
	c.hovered = ""
}

// EditAt selects the region under (x, y) for inline text editing and
// returns it.
func (c *Controller) EditAt(x, y float64) (watermark.TextRegion, bool) {
	t, ok := c.Target()
	if !ok || !c.state.Editable() {
		return watermark.TextRegion{}, false
	}
	hit := c.engine.RegionAt(x, y, t.Width, t.Height, c.scaledRegions(t))
	if hit == nil || c.Dispatch(SelectRegion{ID: hit.ID}) != nil {
		return watermark.TextRegion{}, false
	}
	sel, ok := c.state.Selected()
	return sel, ok
}

// Busy reports whether an export is running.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// RequestExport asks Run to export the current state. It never blocks and
// returns false, doing nothing, while an export is already in flight.
func (c *Controller) RequestExport() (string, bool) {
	if !c.busy.CompareAndSwap(false, true) {
		c.log.Debug("export request ignored, busy")
		return "", false
	}
	job := exportJob{id: uuid.NewString(), state: c.state}
	select {
	case c.requests <- job:
		return job.id, true
	default:
		c.busy.Store(false)
		return "", false
	}
}

// Results delivers one ExportResult per accepted request.
func (c *Controller) Results() <-chan ExportResult {
	return c.results
}

// Run executes export requests until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-c.requests:
			res := c.export(ctx, job)
			c.busy.Store(false)
			select {
			case c.results <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// export runs one job against its state snapshot. States are never mutated
// after Apply returns them, so the snapshot needs no copy.
func (c *Controller) export(ctx context.Context, job exportJob) ExportResult {
	s := job.state
	res := ExportResult{ID: job.id, Count: len(s.Images)}
	opts := s.ExportOptions()
	now := c.now()

	c.log.Info("export started", zap.String("id", job.id), zap.Int("images", len(s.Images)), zap.String("format", string(opts.Format)))
	switch len(s.Images) {
	case 0:
		res.Err = export.ErrNoImages
	case 1:
		res.Name = export.FileName(s.Images[0].Name, opts.Format, now)
		res.MimeType = opts.Format.MimeType()
		res.Data, res.Err = c.exporter.ExportOne(ctx, s.Sources()[0], s.Tile, s.RegionsFor(0), opts)
	default:
		res.Name = export.ArchiveName(now)
		res.MimeType = "application/zip"
		res.Data, res.Err = c.exporter.ExportMany(ctx, s.Sources(), s.Tile, s.RegionsFor, opts)
	}

	if res.Err != nil {
		c.log.Error("export failed", zap.String("id", job.id), zap.Error(res.Err))
		res.Data = nil
		return res
	}
	c.log.Info("export finished", zap.String("id", job.id), zap.String("name", res.Name), zap.Int("bytes", len(res.Data)))
	return res
}

// UserMessage is the text clients show for a failed export.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, export.ErrNoImages):
		return "no images to export"
	default:
		return "export failed, please retry"
	}
}
