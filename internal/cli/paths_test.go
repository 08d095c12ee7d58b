package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"photos.yaml", "photos"},
		{"dir/photos.json", "dir/photos"},
		{"photos.layout.json", "photos"},
		{"photos", "photos"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.input); got != tt.want {
			t.Errorf("outputBase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
