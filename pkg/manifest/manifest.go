// Package manifest reads item lists for the layout engine.
//
// A manifest is a JSON, TOML or YAML document listing the items of a
// mosaic in display order:
//
//	title = "Summer"
//
//	[[items]]
//	id = "beach"
//	src = "img/beach.jpg"
//	high_res_src = "img/beach@2x.jpg"
//
//	[[items]]
//	id = "pier"
//	aspect_ratio = 0.75
//
// Items without an explicit ratio or dimension hints can have their
// intrinsic size read from the image header with [Probe].
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// Format identifies a manifest encoding.
type Format string

// Supported manifest formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Manifest is an ordered list of items.
type Manifest struct {
	Title string        `json:"title,omitempty" yaml:"title,omitempty" toml:"title"`
	Items []mosaic.Item `json:"items" yaml:"items" toml:"items"`

	// Dir is the directory relative image paths are resolved against.
	Dir string `json:"-" yaml:"-" toml:"-"`
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported manifest extension %q (must be .json, .toml, .yaml or .yml)", filepath.Ext(path))
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	case FormatTOML:
		_, err = toml.Decode(string(data), &m)
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode %s manifest", format)
	}

	if err := m.Normalize(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Normalize assigns IDs to anonymous items and validates the rest.
// Anonymous items are named item-<position>, counting from 1.
func (m *Manifest) Normalize() error {
	seen := make(map[string]int, len(m.Items))
	for i := range m.Items {
		it := &m.Items[i]
		if it.ID == "" {
			it.ID = fmt.Sprintf("item-%d", i+1)
		}
		if err := errors.ValidateItemID(it.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "item %d", i+1)
		}
		if prev, dup := seen[it.ID]; dup {
			return errors.New(errors.ErrCodeInvalidManifest,
				"duplicate item id %q (items %d and %d)", it.ID, prev+1, i+1)
		}
		seen[it.ID] = i
	}
	return nil
}

// Marshal encodes the manifest in the given format.
func Marshal(m *Manifest, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(m, "", "  ")
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(m)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
}
