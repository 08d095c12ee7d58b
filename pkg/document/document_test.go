package document

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/present"
)

func sampleItems() []mosaic.Item {
	return []mosaic.Item{
		{ID: "a", AspectRatio: 2, Src: "a.jpg", HighResSrc: "a@2x.jpg"},
		{ID: "b", AspectRatio: 1, Src: "b.jpg"},
		{ID: "c", AspectRatio: 1, Src: "c.jpg"},
	}
}

func TestBuild(t *testing.T) {
	items := sampleItems()
	cfg := mosaic.DefaultConfig()
	cfg.MaxRowHeight = 300

	result, ok := mosaic.Fit(items, 800, cfg)
	if !ok {
		t.Fatal("Fit() deferred")
	}
	assets := present.NewSwapper(cfg.HighResWidthThreshold).Apply(items, result.Placements)
	doc := Build(result, items, assets, cfg)

	if doc.Version != Version {
		t.Errorf("Version = %d, want %d", doc.Version, Version)
	}
	if doc.Width != 800 {
		t.Errorf("Width = %v, want 800", doc.Width)
	}
	if len(doc.Tiles) != len(items) {
		t.Fatalf("len(Tiles) = %d, want %d", len(doc.Tiles), len(items))
	}
	if doc.Height != result.Height {
		t.Errorf("Height = %v, want %v", doc.Height, result.Height)
	}
	// "a" and "b" share a row 800/3 high; only "a" is wider than 350.
	if !doc.Tiles[0].HighRes || doc.Tiles[0].Src != "a@2x.jpg" {
		t.Errorf("Tiles[0] = %+v, want high-res a@2x.jpg", doc.Tiles[0])
	}
	if doc.Tiles[1].HighRes || doc.Tiles[1].Src != "b.jpg" {
		t.Errorf("Tiles[1] = %+v, want low-res b.jpg", doc.Tiles[1])
	}
}

func TestBuildWithoutAssets(t *testing.T) {
	items := sampleItems()
	result, _ := mosaic.Fit(items, 800, mosaic.DefaultConfig())
	doc := Build(result, items, nil, mosaic.DefaultConfig())
	for i, tile := range doc.Tiles {
		if tile.Src != items[i].Src {
			t.Errorf("Tiles[%d].Src = %q, want %q", i, tile.Src, items[i].Src)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	result, _ := mosaic.Fit(nil, 800, mosaic.DefaultConfig())
	doc := Build(result, nil, nil, mosaic.DefaultConfig())
	if len(doc.Tiles) != 0 || doc.Rows == nil {
		t.Errorf("Build(empty) = %+v, want no tiles and non-nil rows", doc)
	}
}

func TestRoundTripFile(t *testing.T) {
	items := sampleItems()
	result, _ := mosaic.Fit(items, 800, mosaic.DefaultConfig())
	doc := Build(result, items, nil, mosaic.DefaultConfig())
	doc.ID = "doc-1"
	doc.Title = "holiday"

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got.ID != doc.ID || got.Title != doc.Title || len(got.Tiles) != len(doc.Tiles) {
		t.Errorf("ReadFile() = %+v, want %+v", got, doc)
	}
	if got.Config.OverflowPolicy != mosaic.PolicySkip {
		t.Errorf("Config.OverflowPolicy = %q, want skip", got.Config.OverflowPolicy)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"width":`},
		{"future version", `{"version":99,"width":10,"tiles":[]}`},
		{"tiles without width", `{"tiles":[{"id":"a"}]}`},
		{"row out of range", `{"width":10,"tiles":[{"id":"a"}],"rows":[{"index":0,"start":0,"count":2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); err == nil {
				t.Error("Unmarshal() expected error")
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("ReadFile() expected error")
	}
}
