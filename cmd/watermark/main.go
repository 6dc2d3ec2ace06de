// Watermark - Tiled and free-placed text watermarks for images.
//
// Usage:
//
//	watermark apply [--layout <path>] [-o <dir> | --zip <file>] <image>...
//	watermark init [--layout layout.json]
//	watermark serve [--addr 127.0.0.1:8080]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ibucoin/watermark/clients/server"
	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/config"
	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/layout"
	"github.com/ibucoin/watermark/pkg/logger"
	"github.com/ibucoin/watermark/pkg/render"
	"github.com/ibucoin/watermark/pkg/watermark"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	switch os.Args[1] {
	case "apply":
		if err := runApply(cfg, os.Args[2:]); err != nil {
			fatal(err)
		}
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "serve":
		if err := initLogger(cfg, false); err != nil {
			fatal(err)
		}
		defer logger.Sync()
		if err := server.RunServe(cfg, os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		fatal(fmt.Errorf("unknown command %q", os.Args[1]))
	}
}

// initLogger installs the process logger. quiet raises the level to warn
// unless dev mode asks for more.
func initLogger(cfg *config.Config, quiet bool) error {
	lc := cfg.Log
	if quiet && !cfg.Dev() {
		lc.Level = "warn"
	}
	if err := logger.Init(&lc, cfg.Mode); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

func runApply(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)

	var (
		layoutPath string
		outDir     string
		zipPath    string
		format     string
		quality    int
		fontPath   string
		text       string
		verbose    bool
	)

	fs.StringVar(&layoutPath, "layout", "", "Path to layout JSON or .wmlayout bundle")
	fs.StringVar(&outDir, "o", ".", "Output directory")
	fs.StringVar(&outDir, "output", ".", "Output directory")
	fs.StringVar(&zipPath, "zip", "", "Write one zip archive instead of separate files")
	fs.StringVar(&format, "format", "", "Output format: png or jpg (overrides layout)")
	fs.IntVar(&quality, "quality", 0, "JPEG quality 10-100 (overrides layout)")
	fs.StringVar(&fontPath, "font", "", "Custom TTF/OTF font")
	fs.StringVar(&text, "text", "", "Tile text (enables the tile layer)")
	fs.BoolVar(&verbose, "v", false, "Print the layout summary and info logs")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := initLogger(cfg, !verbose); err != nil {
		return err
	}
	defer logger.Sync()

	inputs := fs.Args()
	if len(inputs) == 0 {
		printUsage()
		return errors.New("at least one input image is required")
	}

	// Load layout (optional).
	l := &layout.Layout{}
	if layoutPath != "" {
		var cleanup func()
		var err error
		l, cleanup, err = layout.LoadLayout(layoutPath)
		if err != nil {
			return fmt.Errorf("load layout: %w", err)
		}
		defer cleanup()
	}
	if text != "" {
		enabled := true
		l.Tile.Enabled = &enabled
		l.Tile.Text = &text
	}

	var srcs []export.Source
	var names []string
	for _, in := range inputs {
		name := filepath.Base(in)
		names = append(names, name)
		if l.Skipped(name) {
			fmt.Printf("Skipping: %s\n", name)
			continue
		}
		srcs = append(srcs, export.FileSource{Path: in})
	}

	for _, w := range layout.ValidateLayout(l, names) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if verbose {
		fmt.Print(layout.FormatLayout(l))
	}

	opts := l.Options()
	if format != "" {
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		opts.Format = f
	}
	if quality != 0 {
		opts.Quality = export.NormalizeQuality(quality)
	}

	// Font: flag, then layout, then environment.
	if fontPath == "" {
		fontPath = l.Font
	}
	if fontPath == "" {
		fontPath = cfg.FontPath
	}
	fonts, err := canvas.NewFontManager(fontPath, cfg.FaceCacheSize)
	if err != nil {
		return fmt.Errorf("fonts: %w", err)
	}

	engine := render.NewEngine(fonts, render.WithLogger(logger.Lg))
	exporter := export.NewExporter(engine, export.WithLogger(logger.Lg))
	tile := l.TileConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if zipPath != "" {
		fmt.Printf("Rendering %d image(s) into %s\n", len(srcs), zipPath)
		data, err := exporter.ExportMany(ctx, srcs, tile, func(i int) []watermark.TextRegion {
			return layout.MergeImage(l, srcs[i].Name())
		}, opts)
		if err != nil {
			return err
		}
		if err := os.WriteFile(zipPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", zipPath, err)
		}
		fmt.Printf("Done: %s\n", zipPath)
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}
	for _, src := range srcs {
		out := filepath.Join(outDir, export.FileName(src.Name(), opts.Format, time.Now()))
		fmt.Printf("Rendering: %s\n", out)
		data, err := exporter.ExportOne(ctx, src, tile, layout.MergeImage(l, src.Name()), opts)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}
	logger.Info("apply finished", zap.Int("images", len(srcs)), zap.String("format", string(opts.Format)))
	fmt.Printf("Done: %d file(s) in %s\n", len(srcs), outDir)
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var out string
	var force bool
	fs.StringVar(&out, "layout", "layout.json", "Output path for the sample layout")
	fs.BoolVar(&force, "f", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(out); err == nil && !force {
		return fmt.Errorf("%s already exists (use -f to overwrite)", out)
	}
	if err := os.WriteFile(out, []byte(layout.GetExampleJSON()), 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}

	fmt.Printf("Created: %s\n", out)
	fmt.Printf("Run: watermark apply --layout %s -o out photo.jpg\n", out)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`Watermark - Text watermarks for PNG, JPEG and WEBP images

USAGE:
    watermark apply [options] <image>...
    watermark init [--layout layout.json] [-f]
    watermark serve [--addr 127.0.0.1:8080]

APPLY:
    --layout <path>        layout.json or .wmlayout bundle (optional)
    -o, --output <dir>     Output directory (default: .)
    --zip <file>           Write a single zip archive instead
    --format png|jpg       Output format (default: layout, then png)
    --quality <n>          JPEG quality 10-100, step 5 (default: 90)
    --font <path>          Custom TTF/OTF font
    --text <text>          Enable the tiled watermark with this text
    -v                     Print the layout summary and info logs

EDITOR:
    watermark serve [--addr 127.0.0.1:8080]   Start the local editor

ENVIRONMENT:
    WATERMARK_ADDR, WATERMARK_MODE, WATERMARK_LOG_LEVEL, WATERMARK_LOG_FILE,
    WATERMARK_LOG_MAX_SIZE, WATERMARK_LOG_MAX_AGE, WATERMARK_LOG_MAX_BACKUPS,
    WATERMARK_FONT_PATH, WATERMARK_EXPORT_TTL, WATERMARK_MAX_UPLOAD_MB,
    WATERMARK_FACE_CACHE_SIZE

EXAMPLES:
    watermark init
    watermark apply --layout layout.json -o out photo.jpg scan.png
    watermark apply --text "CONFIDENTIAL" --zip batch.zip *.jpg
    watermark apply --layout brand.wmlayout --format jpg --quality 80 a.webp
`)
}
