// source.go - Export inputs. A Source defers decoding until the pipeline
// reaches it so a batch holds one full-resolution raster at a time.
package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// Source is one image to export.
type Source interface {
	// Name is the original file name, used to name the output.
	Name() string
	// Load returns the decoded raster.
	Load(ctx context.Context) (image.Image, error)
}

// ImageSource wraps an already decoded image.
type ImageSource struct {
	name string
	img  image.Image
}

// NewImageSource returns a Source for an in-memory image.
func NewImageSource(name string, img image.Image) ImageSource {
	return ImageSource{name: name, img: img}
}

func (s ImageSource) Name() string { return s.name }

func (s ImageSource) Load(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.img == nil {
		return nil, fmt.Errorf("load %s: no image data", s.name)
	}
	return s.img, nil
}

// FileSource decodes a file from disk on Load.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return filepath.Base(s.Path) }

func (s FileSource) Load(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.Path, err)
	}
	return Decode(f, s.Name(), info.Size())
}
