package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

func TestDefaultIsValid(t *testing.T) {
	f := Default()
	if err := f.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	cfg, err := f.ToMosaic()
	if err != nil {
		t.Fatalf("ToMosaic() error = %v", err)
	}
	if cfg != mosaic.DefaultConfig() {
		t.Errorf("ToMosaic() = %+v, want %+v", cfg, mosaic.DefaultConfig())
	}
}

func TestDecode(t *testing.T) {
	f := Default()
	err := Decode(`
[layout]
max_row_height = 300
overflow_policy = "crop"

[refit]
delay_ms = 150

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "90m"
prefix = "gallery"
`, &f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	cfg, _ := f.ToMosaic()
	if cfg.MaxRowHeight != 300 {
		t.Errorf("MaxRowHeight = %v, want 300", cfg.MaxRowHeight)
	}
	if cfg.OverflowPolicy != mosaic.PolicyCrop {
		t.Errorf("OverflowPolicy = %v, want crop", cfg.OverflowPolicy)
	}
	if cfg.RefitDelay != 150*time.Millisecond {
		t.Errorf("RefitDelay = %v, want 150ms", cfg.RefitDelay)
	}
	if cfg.DefaultAspectRatio != mosaic.DefaultAspectRatio {
		t.Errorf("DefaultAspectRatio = %v, want default", cfg.DefaultAspectRatio)
	}
	if f.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", f.Cache.TTL)
	}
	if f.Cache.Prefix != "gallery" {
		t.Errorf("Prefix = %q, want gallery", f.Cache.Prefix)
	}
	if f.Layout.ContainerWidth != DefaultContainerWidth {
		t.Errorf("ContainerWidth = %v, want default", f.Layout.ContainerWidth)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{"bad policy", "[layout]\noverflow_policy = \"stretch\"", "overflow_policy"},
		{"negative height", "[layout]\nmax_row_height = -1", "max_row_height"},
		{"unknown key", "[layout]\nmax_row_heigth = 10", "layout.max_row_heigth"},
		{"bad backend", "[cache]\nbackend = \"memcached\"", "cache.backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"", "cache.redis_addr"},
		{"negative width", "[layout]\ncontainer_width = -5", "container_width"},
		{"syntax", "[layout", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Default()
			err := Decode(tt.doc, &f)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Decode() error = %v, want INVALID_CONFIG", err)
			}
			if got := errors.GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mosaic.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", f.Server.Addr)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadExample(t *testing.T) {
	f, err := Load(filepath.Join("..", "..", "examples", "mosaic.toml"))
	if err != nil {
		t.Fatalf("Load(example) error = %v", err)
	}
	cfg, err := f.ToMosaic()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OverflowPolicy != mosaic.PolicyCrop || cfg.RefitDelay != 150*time.Millisecond {
		t.Errorf("ToMosaic() = %+v", cfg)
	}
	if f.Cache.TTL.Duration != 12*time.Hour {
		t.Errorf("TTL = %v, want 12h", f.Cache.TTL)
	}
}

func TestEncodeDecode(t *testing.T) {
	want := Default()
	want.Layout.OverflowPolicy = "oversize"
	want.Cache.TTL = Duration{90 * time.Second}
	want.Cache.Prefix = "gallery:"

	var buf bytes.Buffer
	if err := Encode(&buf, want); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got := Default()
	if err := Decode(buf.String(), &got); err != nil {
		t.Fatalf("Decode(Encode()) error = %v\n%s", err, buf.String())
	}
	if got != want {
		t.Errorf("Decode(Encode()) = %+v, want %+v", got, want)
	}
}
