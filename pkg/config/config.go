// Package config loads mosaic settings from a TOML file.
//
// Example mosaic.toml:
//
//	[layout]
//	container_width = 1200
//	max_row_height = 300
//	overflow_policy = "crop"
//	default_aspect_ratio = 1.5
//
//	[refit]
//	on_resize = true
//	delay_ms = 150
//
//	[assets]
//	high_res_width_threshold = 350
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// Missing sections and keys keep their defaults from [Default].
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// DefaultContainerWidth is the width used when none is configured.
const DefaultContainerWidth = 960.0

// File is the on-disk configuration.
type File struct {
	Layout Layout `toml:"layout"`
	Refit  Refit  `toml:"refit"`
	Assets Assets `toml:"assets"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Layout holds geometry settings.
type Layout struct {
	ContainerWidth     float64 `toml:"container_width"`
	MaxRowHeight       float64 `toml:"max_row_height"`
	OverflowPolicy     string  `toml:"overflow_policy"`
	DefaultAspectRatio float64 `toml:"default_aspect_ratio"`
}

// Refit holds resize handling settings.
type Refit struct {
	OnResize bool `toml:"on_resize"`
	DelayMs  int  `toml:"delay_ms"`
}

// Assets holds high-resolution swap settings.
type Assets struct {
	HighResWidthThreshold float64 `toml:"high_res_width_threshold"`
}

// Cache holds layout cache settings.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`

	// Prefix scopes every key, so several deployments can share a backend.
	Prefix string `toml:"prefix"`
}

// Server holds HTTP API settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration that decodes from strings such as "90s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() File {
	def := mosaic.DefaultConfig()
	return File{
		Layout: Layout{
			ContainerWidth:     DefaultContainerWidth,
			MaxRowHeight:       def.MaxRowHeight,
			OverflowPolicy:     string(def.OverflowPolicy),
			DefaultAspectRatio: def.DefaultAspectRatio,
		},
		Refit: Refit{
			OnResize: def.RefitOnResize,
		},
		Assets: Assets{
			HighResWidthThreshold: def.HighResWidthThreshold,
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     Duration{24 * time.Hour},
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads path on top of the defaults. Unknown keys are rejected so
// typos do not go unnoticed.
func Load(path string) (File, error) {
	f := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return f, fmt.Errorf("read %s: %w", path, err)
	}
	if err := Decode(string(data), &f); err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses TOML into f, which should hold defaults, and validates it.
func Decode(data string, f *File) error {
	md, err := toml.Decode(data, f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Field(errors.ErrCodeInvalidConfig, undecoded[0].String(), "unknown key")
	}
	return f.Validate()
}

// Encode writes f as TOML.
func Encode(w io.Writer, f File) error {
	return toml.NewEncoder(w).Encode(f)
}

// Validate checks the layout settings and the non-layout sections.
func (f File) Validate() error {
	if _, err := f.ToMosaic(); err != nil {
		return err
	}
	if f.Layout.ContainerWidth < 0 {
		return errors.Field(errors.ErrCodeInvalidConfig, "container_width",
			"must not be negative, got %v", f.Layout.ContainerWidth)
	}
	switch f.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return errors.Field(errors.ErrCodeInvalidConfig, "cache.backend",
			"unknown backend %q (must be one of: none, file, redis)", f.Cache.Backend)
	}
	if f.Cache.Backend == CacheRedis && f.Cache.RedisAddr == "" {
		return errors.Field(errors.ErrCodeInvalidConfig, "cache.redis_addr", "required for the redis backend")
	}
	return nil
}

// ToMosaic converts the file into an engine configuration.
func (f File) ToMosaic() (mosaic.Config, error) {
	cfg := mosaic.Config{
		MaxRowHeight:          f.Layout.MaxRowHeight,
		OverflowPolicy:        mosaic.OverflowPolicy(f.Layout.OverflowPolicy),
		DefaultAspectRatio:    f.Layout.DefaultAspectRatio,
		RefitOnResize:         f.Refit.OnResize,
		RefitDelay:            time.Duration(f.Refit.DelayMs) * time.Millisecond,
		HighResWidthThreshold: f.Assets.HighResWidthThreshold,
	}
	if err := cfg.Validate(); err != nil {
		return mosaic.Config{}, err
	}
	return cfg, nil
}
