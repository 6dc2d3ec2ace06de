// Package export produces the final watermarked files: one encoded image, or
// a zip archive of several, always rendered at full resolution without
// editing decorations.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ibucoin/watermark/pkg/metrics"
	"github.com/ibucoin/watermark/pkg/render"
	"github.com/ibucoin/watermark/pkg/watermark"
)

// ErrNoImages is returned when there is nothing to export.
var ErrNoImages = errors.New("no images to export")

// Options selects the output encoding.
type Options struct {
	Format  Format
	Quality int
}

// DefaultOptions is PNG at the default JPEG quality.
func DefaultOptions() Options {
	return Options{Format: PNG, Quality: DefaultQuality}
}

// Exporter renders and encodes export targets.
type Exporter struct {
	engine *render.Engine
	log    *zap.Logger
	now    func() time.Time
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithLogger sets the exporter's logger.
func WithLogger(l *zap.Logger) ExporterOption {
	return func(x *Exporter) {
		if l != nil {
			x.log = l
		}
	}
}

// WithClock replaces time.Now for naming.
func WithClock(now func() time.Time) ExporterOption {
	return func(x *Exporter) {
		if now != nil {
			x.now = now
		}
	}
}

// NewExporter returns an exporter drawing with engine. The engine must not
// be shared with a goroutine rendering previews at the same time.
func NewExporter(engine *render.Engine, opts ...ExporterOption) *Exporter {
	if engine == nil {
		engine = render.NewEngine(nil)
	}
	x := &Exporter{engine: engine, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Render draws tile and regions over img at full resolution.
func (x *Exporter) Render(img image.Image, tile watermark.TileConfig, regions []watermark.TextRegion) *image.RGBA {
	return x.engine.RenderFrame(render.ExportTarget(img), img, tile, regions, "", false).Image()
}

// ExportOne renders and encodes a single image.
func (x *Exporter) ExportOne(ctx context.Context, src Source, tile watermark.TileConfig, regions []watermark.TextRegion, opts Options) (data []byte, err error) {
	started := x.now()
	defer func() { metrics.ObserveExport(opts.Format.Extension(), started, err) }()

	var buf bytes.Buffer
	if err := x.encodeOne(ctx, &buf, src, tile, regions, opts); err != nil {
		x.log.Error("export failed", zap.String("name", src.Name()), zap.Error(err))
		return nil, err
	}
	x.log.Info("exported image", zap.String("name", src.Name()), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// ExportMany renders the sources one after another into a zip archive.
// regionsFor(i) supplies the regions for srcs[i]. The first failure aborts
// the batch and no archive is returned.
func (x *Exporter) ExportMany(ctx context.Context, srcs []Source, tile watermark.TileConfig, regionsFor func(i int) []watermark.TextRegion, opts Options) (data []byte, err error) {
	started := x.now()
	defer func() { metrics.ObserveExport("zip", started, err) }()

	if len(srcs) == 0 {
		return nil, ErrNoImages
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, src := range srcs {
		var regions []watermark.TextRegion
		if regionsFor != nil {
			regions = regionsFor(i)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     EntryName(src.Name(), opts.Format),
			Method:   zip.Store,
			Modified: started,
		})
		if err != nil {
			return nil, fmt.Errorf("archive entry %d: %w", i, err)
		}
		if err := x.encodeOne(ctx, w, src, tile, regions, opts); err != nil {
			x.log.Error("batch export aborted", zap.Int("index", i), zap.String("name", src.Name()), zap.Error(err))
			return nil, fmt.Errorf("image %d (%s): %w", i, src.Name(), err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	x.log.Info("exported archive", zap.Int("images", len(srcs)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (x *Exporter) encodeOne(ctx context.Context, w io.Writer, src Source, tile watermark.TileConfig, regions []watermark.TextRegion, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := src.Load(ctx)
	if err != nil {
		return err
	}
	frame := x.Render(img, tile, regions)
	if frame == nil {
		return fmt.Errorf("%w: %s has no pixels", ErrEncode, src.Name())
	}
	return Encode(w, frame, opts.Format, opts.Quality)
}

// EntryName is the output name for an input: its base name with the
// extension replaced. A leading dot does not start an extension.
func EntryName(original string, f Format) string {
	base := filepath.Base(original)
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	return base + "." + f.Extension()
}

// FileName names a single export, falling back to a timestamp when the
// original name is unknown.
func FileName(original string, f Format, now time.Time) string {
	if strings.TrimSpace(original) == "" || original == "." {
		return fmt.Sprintf("watermark-%d.%s", now.UnixMilli(), f.Extension())
	}
	return EntryName(original, f)
}

// ArchiveName names a batch export.
func ArchiveName(now time.Time) string {
	return fmt.Sprintf("watermarked-images-%d.zip", now.UnixMilli())
}
