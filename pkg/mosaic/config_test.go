package mosaic

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/mosaic/pkg/errors"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero max row height", func(c *Config) { c.MaxRowHeight = 0 }, "max_row_height"},
		{"negative max row height", func(c *Config) { c.MaxRowHeight = -5 }, "max_row_height"},
		{"NaN max row height", func(c *Config) { c.MaxRowHeight = math.NaN() }, "max_row_height"},
		{"unknown policy", func(c *Config) { c.OverflowPolicy = "stretch" }, "overflow_policy"},
		{"empty policy", func(c *Config) { c.OverflowPolicy = "" }, "overflow_policy"},
		{"zero default ratio", func(c *Config) { c.DefaultAspectRatio = 0 }, "default_aspect_ratio"},
		{"infinite default ratio", func(c *Config) { c.DefaultAspectRatio = math.Inf(1) }, "default_aspect_ratio"},
		{"subnormal default ratio", func(c *Config) { c.DefaultAspectRatio = 1e-310 }, "default_aspect_ratio"},
		{"negative refit delay", func(c *Config) { c.RefitDelay = -time.Second }, "refit_delay"},
		{"negative threshold", func(c *Config) { c.HighResWidthThreshold = -1 }, "high_res_width_threshold"},
		{"zero threshold disables swap", func(c *Config) { c.HighResWidthThreshold = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Validate() error = %v, want INVALID_CONFIG", err)
			}
			if got := errors.GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.MaxRowHeight != DefaultMaxRowHeight {
		t.Errorf("MaxRowHeight = %v, want %v", cfg.MaxRowHeight, DefaultMaxRowHeight)
	}
	if cfg.OverflowPolicy != PolicySkip {
		t.Errorf("OverflowPolicy = %v, want %v", cfg.OverflowPolicy, PolicySkip)
	}
	if cfg.DefaultAspectRatio != DefaultAspectRatio {
		t.Errorf("DefaultAspectRatio = %v, want %v", cfg.DefaultAspectRatio, DefaultAspectRatio)
	}
	if cfg.HighResWidthThreshold != 0 {
		t.Errorf("HighResWidthThreshold = %v, want 0", cfg.HighResWidthThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after SetDefaults error = %v", err)
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	for _, p := range Policies {
		got, err := ParseOverflowPolicy(string(p))
		if err != nil || got != p {
			t.Errorf("ParseOverflowPolicy(%q) = %v, %v", p, got, err)
		}
	}
	if _, err := ParseOverflowPolicy("hide"); errors.GetField(err) != "overflow_policy" {
		t.Errorf("ParseOverflowPolicy(hide) error = %v, want overflow_policy field error", err)
	}
}
