// Package config loads process settings from WATERMARK_* environment
// variables. CLI flags override individual fields after loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/logger"
)

// Prefix is prepended to every environment key.
const Prefix = "WATERMARK_"

// Config represents the process configuration.
type Config struct {
	Addr          string `env:"ADDR"`
	Mode          string `env:"MODE"`
	Log           logger.LogConfig
	FontPath      string        `env:"FONT_PATH"`
	ExportTTL     time.Duration `env:"EXPORT_TTL"`
	MaxUploadMB   int           `env:"MAX_UPLOAD_MB"`
	FaceCacheSize int           `env:"FACE_CACHE_SIZE"`
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		Addr: "127.0.0.1:8080",
		Mode: "release",
		Log: logger.LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 5,
		},
		ExportTTL:     10 * time.Minute,
		MaxUploadMB:   export.MaxInputSize >> 20,
		FaceCacheSize: canvas.DefaultFaceCacheSize,
	}
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration through lookup. Unset or empty keys keep
// their defaults; malformed values are reported together and also keep
// their defaults.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	l := loader{lookup: lookup}

	l.str("ADDR", &cfg.Addr)
	l.str("MODE", &cfg.Mode)
	l.str("LOG_LEVEL", &cfg.Log.Level)
	l.str("LOG_FILE", &cfg.Log.Filename)
	l.int("LOG_MAX_SIZE", &cfg.Log.MaxSize)
	l.int("LOG_MAX_AGE", &cfg.Log.MaxAge)
	l.int("LOG_MAX_BACKUPS", &cfg.Log.MaxBackups)
	l.str("FONT_PATH", &cfg.FontPath)
	l.duration("EXPORT_TTL", &cfg.ExportTTL)
	l.int("MAX_UPLOAD_MB", &cfg.MaxUploadMB)
	l.int("FACE_CACHE_SIZE", &cfg.FaceCacheSize)

	if cfg.MaxUploadMB <= 0 || cfg.MaxUploadMB > export.MaxInputSize>>20 {
		l.fail("MAX_UPLOAD_MB", fmt.Errorf("must be in 1..%d", export.MaxInputSize>>20))
		cfg.MaxUploadMB = export.MaxInputSize >> 20
	}
	if cfg.FaceCacheSize <= 0 {
		l.fail("FACE_CACHE_SIZE", errors.New("must be positive"))
		cfg.FaceCacheSize = canvas.DefaultFaceCacheSize
	}

	return cfg, errors.Join(l.errs...)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Dev reports whether the process runs in development mode.
func (c *Config) Dev() bool {
	return c.Mode == "dev" || c.Mode == "development" || c.Mode == "debug"
}

type loader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (l *loader) get(key string) (string, bool) {
	v, ok := l.lookup(Prefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (l *loader) fail(key string, err error) {
	l.errs = append(l.errs, fmt.Errorf("%s%s: %w", Prefix, key, err))
}

func (l *loader) str(key string, dst *string) {
	if v, ok := l.get(key); ok {
		*dst = v
	}
}

func (l *loader) int(key string, dst *int) {
	v, ok := l.get(key)
	if !ok {
		return
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		l.fail(key, err)
		return
	}
	*dst = n
}

// duration accepts Go duration strings ("90s", "10m") or bare seconds.
func (l *loader) duration(key string, dst *time.Duration) {
	v, ok := l.get(key)
	if !ok {
		return
	}
	if secs, err := cast.ToIntE(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		l.fail(key, err)
		return
	}
	*dst = d
}
