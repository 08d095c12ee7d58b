package manifest

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/mosaic/pkg/errors"
)

// ImageSize reads the pixel dimensions from an image file header without
// decoding the pixel data.
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Probe fills in Width and Height for items that have neither an explicit
// aspect ratio nor dimension hints, by reading the header of their local
// Src image. Remote URLs and unreadable images are skipped; those items
// fall back to the default aspect ratio at layout time. It returns the
// number of items probed.
func Probe(m *Manifest, logger *log.Logger) int {
	if logger == nil {
		logger = log.Default()
	}

	probed := 0
	for i := range m.Items {
		it := &m.Items[i]
		if it.AspectRatio > 0 || (it.Width > 0 && it.Height > 0) || it.Src == "" {
			continue
		}
		if errors.IsRemoteURL(it.Src) {
			logger.Debug("skip remote image", "id", it.ID, "src", it.Src)
			continue
		}
		if err := errors.ValidatePath(it.Src); err != nil {
			logger.Warn("skip image", "id", it.ID, "err", err)
			continue
		}

		w, h, err := ImageSize(filepath.Join(m.Dir, filepath.FromSlash(it.Src)))
		if err != nil {
			logger.Warn("probe image", "id", it.ID, "src", it.Src, "err", err)
			continue
		}
		it.Width, it.Height = float64(w), float64(h)
		probed++
	}
	return probed
}
