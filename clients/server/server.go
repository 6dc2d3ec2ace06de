// Package server provides the local watermark editor: an embedded web page
// and an HTTP API driving one editor.Controller.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os/exec"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/config"
	"github.com/ibucoin/watermark/pkg/editor"
	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/logger"
	"github.com/ibucoin/watermark/pkg/render"
)

//go:embed web/*
var webContent embed.FS

// Options configures a Server.
type Options struct {
	FontPath      string
	FaceCacheSize int
	MaxUpload     int64         // bytes per image
	ExportTTL     time.Duration // how long finished exports stay downloadable
	Logger        *zap.Logger
	Clock         func() time.Time
}

// exportEntry is a cached export: pending until the controller delivers
// its result.
type exportEntry struct {
	done   bool
	result editor.ExportResult
}

// Server serializes HTTP requests onto a single controller.
type Server struct {
	mu        sync.Mutex
	ctl       *editor.Controller
	exports   *cache.Cache
	maxUpload int64
	log       *zap.Logger
}

// New builds a server. Preview and export each get their own fonts since
// face caches are not goroutine-safe.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxUpload <= 0 || opts.MaxUpload > export.MaxInputSize {
		opts.MaxUpload = export.MaxInputSize
	}
	if opts.ExportTTL <= 0 {
		opts.ExportTTL = 10 * time.Minute
	}

	previewFonts, err := canvas.NewFontManager(opts.FontPath, opts.FaceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("preview fonts: %w", err)
	}
	exportFonts, err := canvas.NewFontManager(opts.FontPath, opts.FaceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("export fonts: %w", err)
	}

	ctlOpts := []editor.Option{
		editor.WithLogger(opts.Logger),
		editor.WithEngine(render.NewEngine(previewFonts, render.WithLogger(opts.Logger))),
	}
	xOpts := []export.ExporterOption{export.WithLogger(opts.Logger)}
	if opts.Clock != nil {
		ctlOpts = append(ctlOpts, editor.WithClock(opts.Clock))
		xOpts = append(xOpts, export.WithClock(opts.Clock))
	}
	exporter := export.NewExporter(render.NewEngine(exportFonts, render.WithLogger(opts.Logger)), xOpts...)
	ctlOpts = append(ctlOpts, editor.WithExporter(exporter))

	return &Server{
		ctl:       editor.NewController(ctlOpts...),
		exports:   cache.New(opts.ExportTTL, 2*opts.ExportTTL),
		maxUpload: opts.MaxUpload,
		log:       opts.Logger,
	}, nil
}

// Start runs the export loop and collects its results until ctx is done.
func (s *Server) Start(ctx context.Context) {
	go func() {
		if err := s.ctl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("export loop stopped", zap.Error(err))
		}
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case res := <-s.ctl.Results():
				s.exports.Set(res.ID, exportEntry{done: true, result: res}, cache.DefaultExpiration)
			}
		}
	}()
}

// Handler returns the HTTP routes.
func (s *Server) Handler() (http.Handler, error) {
	webFS, err := fs.Sub(webContent, "web")
	if err != nil {
		return nil, fmt.Errorf("embed web: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(s.log))
	r.MaxMultipartMemory = 32 << 20

	api := r.Group("/api")
	api.GET("/state", s.handleState)
	api.POST("/images", s.handleUpload)
	api.POST("/commands", s.handleCommand)
	api.POST("/pointer", s.handlePointer)
	api.GET("/preview", s.handlePreview)
	api.POST("/exports", s.handleExport)
	api.GET("/exports/:id", s.handleGetExport)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(gin.WrapH(http.FileServer(http.FS(webFS))))
	return r, nil
}

// RunServe starts the editor on the configured address until interrupted.
func RunServe(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.Addr, "Listen address")
	open := flags.Bool("open", true, "Open the editor in a browser")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if cfg.Dev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s, err := New(Options{
		FontPath:      cfg.FontPath,
		FaceCacheSize: cfg.FaceCacheSize,
		MaxUpload:     cfg.MaxUploadBytes(),
		ExportTTL:     cfg.ExportTTL,
		Logger:        logger.Lg,
	})
	if err != nil {
		return err
	}
	h, err := s.Handler()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	s.Start(ctx)

	srv := &http.Server{Addr: *addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	url := "http://" + *addr
	logger.Info("editor listening", zap.String("url", url))
	fmt.Printf("Watermark editor → %s\n", url)
	if *open {
		go openBrowser(url)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ── Handlers ──

func (s *Server) handleState(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.ctl.View())
}

func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]editor.ImageInfo, 0, len(files))
	failed := make([]gin.H, 0)
	for _, fh := range files {
		if fh.Size > s.maxUpload {
			failed = append(failed, gin.H{"name": fh.Filename, "error": export.ErrTooLarge.Error()})
			continue
		}
		f, err := fh.Open()
		if err != nil {
			failed = append(failed, gin.H{"name": fh.Filename, "error": err.Error()})
			continue
		}
		img, err := s.ctl.AddImage(fh.Filename, f, fh.Size, nil)
		f.Close()
		if err != nil {
			s.log.Warn("image rejected", zap.String("name", fh.Filename), zap.Error(err))
			failed = append(failed, gin.H{"name": fh.Filename, "error": err.Error()})
			continue
		}
		added = append(added, editor.ImageInfo{ID: img.ID, Name: img.Name, Width: img.Width, Height: img.Height})
	}

	status := http.StatusOK
	if len(added) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"added": added, "failed": failed, "state": s.ctl.View()})
}

func (s *Server) handleCommand(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd, err := editor.DecodeCommand(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ctl.Dispatch(cmd); err != nil {
		c.JSON(commandStatus(err), gin.H{"error": err.Error(), "state": s.ctl.View()})
		return
	}
	c.JSON(http.StatusOK, s.ctl.View())
}

func commandStatus(err error) int {
	switch {
	case errors.Is(err, editor.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, editor.ErrUnknownRegion), errors.Is(err, editor.ErrUnknownImage):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) handlePointer(c *gin.Context) {
	var ev editor.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.ctl.HandlePointer(ev)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pointer": res, "state": s.ctl.View()})
}

// handlePreview renders the current image for a container of the given CSS
// size and device pixel ratio.
func (s *Server) handlePreview(c *gin.Context) {
	w, errW := cast.ToFloat64E(c.Query("width"))
	h, errH := cast.ToFloat64E(c.Query("height"))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "width and height must be positive numbers"})
		return
	}
	dpr := cast.ToFloat64(c.DefaultQuery("dpr", "1"))

	s.mu.Lock()
	surface, err := s.ctl.Preview(w, h, dpr)
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	img := surface.Image()
	if img == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, img, export.PNG, 0); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, export.PNG.MimeType(), buf.Bytes())
}

func (s *Server) handleExport(c *gin.Context) {
	s.mu.Lock()
	id, ok := s.ctl.RequestExport()
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "an export is already running"})
		return
	}
	// Add keeps a result that already arrived.
	_ = s.exports.Add(id, exportEntry{}, cache.DefaultExpiration)
	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

func (s *Server) handleGetExport(c *gin.Context) {
	v, ok := s.exports.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or expired export"})
		return
	}
	entry := v.(exportEntry)
	if !entry.done {
		c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
		return
	}
	res := entry.result
	if res.Err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": editor.UserMessage(res.Err)})
		return
	}
	c.Header("Content-Disposition", contentDisposition(res.Name))
	c.Data(http.StatusOK, res.MimeType, res.Data)
}

// ── Helpers ──

// contentDisposition builds an attachment header with name quoted or
// RFC 2231 encoded as needed.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
