package pipeline

import (
	"github.com/matzehuels/mosaic/pkg/manifest"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// LoadItems resolves the input items from opts. Inline items are
// normalized the same way manifest items are. With opts.Probe, local image
// files are read for missing dimensions. It returns the items, the title
// and the number of probed items.
func LoadItems(opts Options) ([]mosaic.Item, string, int, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", 0, err
	}

	var m *manifest.Manifest
	if len(opts.Items) > 0 {
		m = &manifest.Manifest{Title: opts.Title, Items: append([]mosaic.Item(nil), opts.Items...)}
		if err := m.Normalize(); err != nil {
			return nil, "", 0, err
		}
	} else {
		var err error
		if m, err = manifest.Load(opts.Manifest); err != nil {
			return nil, "", 0, err
		}
	}

	probed := 0
	if opts.Probe {
		probed = manifest.Probe(m, opts.Logger)
	}

	title := m.Title
	if opts.Title != "" {
		title = opts.Title
	}
	return m.Items, title, probed, nil
}
