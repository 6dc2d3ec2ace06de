// loader.go - Load layout.json files and .wmlayout (ZIP) bundles.
package layout

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ibucoin/watermark/pkg/watermark"
)

// BundleExt is the extension of a zipped layout bundle: layout.json plus
// the assets it references, such as a font.
const BundleExt = ".wmlayout"

// LoadLayout loads a layout from a standalone JSON file or a .wmlayout
// bundle, resolves asset paths and applies defaults. The returned cleanup
// function removes any extracted bundle and is never nil.
func LoadLayout(path string) (*Layout, func(), error) {
	noop := func() {}

	if !strings.EqualFold(filepath.Ext(path), BundleExt) {
		l, err := ParseLayoutFile(path)
		if err != nil {
			return nil, noop, err
		}
		resolveAssetPaths(l, filepath.Dir(path))
		applyDefaults(l)
		return l, noop, nil
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "wmlayout-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(r, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	l, err := ParseLayoutFile(filepath.Join(tmpDir, "layout.json"))
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	resolveAssetPaths(l, tmpDir)
	applyDefaults(l)
	return l, cleanup, nil
}

// resolveAssetPaths makes relative asset paths absolute using baseDir.
func resolveAssetPaths(l *Layout, baseDir string) {
	if l.Font != "" && !filepath.IsAbs(l.Font) {
		l.Font = filepath.Join(baseDir, l.Font)
	}
}

// applyDefaults gives every id-less region a fresh id so merging the same
// layout for several images yields stable ids.
func applyDefaults(l *Layout) {
	for i := range l.Regions {
		if l.Regions[i].ID == "" {
			l.Regions[i].ID = watermark.NewID()
		}
	}
	for name, img := range l.Images {
		for i := range img.Regions {
			if img.Regions[i].ID == "" {
				img.Regions[i].ID = watermark.NewID()
			}
		}
		l.Images[name] = img
	}
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.ReadCloser, destDir string) error {
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
