package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roiboard/roiboard/internal/engine"
	"github.com/roiboard/roiboard/internal/roi"
)

// EngineProfile is the YAML form of the interaction tuning. Omitted keys keep their defaults.
type EngineProfile struct {
	HandleSize      int     `yaml:"handle_size"`
	EdgeThickness   int     `yaml:"edge_thickness"`
	DuplicateOffset int     `yaml:"duplicate_offset"`
	IconSize        int     `yaml:"icon_size"`
	IconMargin      int     `yaml:"icon_margin"`
	ZoomIn          float64 `yaml:"zoom_in"`
	ZoomOut         float64 `yaml:"zoom_out"`
	MinScale        float64 `yaml:"min_scale"`
	MaxScale        float64 `yaml:"max_scale"`
	HitOrder        string  `yaml:"hit_order"`
}

// DefaultEngineProfile mirrors engine.DefaultOptions.
func DefaultEngineProfile() EngineProfile {
	o := engine.DefaultOptions()
	return EngineProfile{
		HandleSize:      o.HandleSize,
		EdgeThickness:   o.EdgeThickness,
		DuplicateOffset: o.DuplicateOffset,
		IconSize:        o.Icons.Size,
		IconMargin:      o.Icons.Margin,
		ZoomIn:          o.ZoomInFactor,
		ZoomOut:         o.ZoomOutFactor,
		MinScale:        o.MinScale,
		MaxScale:        o.MaxScale,
		HitOrder:        string(o.HitOrder),
	}
}

// Options converts the profile into engine options.
func (p EngineProfile) Options() engine.Options {
	return engine.Options{
		HandleSize:      p.HandleSize,
		EdgeThickness:   p.EdgeThickness,
		DuplicateOffset: p.DuplicateOffset,
		Icons:           roi.IconLayout{Size: p.IconSize, Margin: p.IconMargin},
		ZoomInFactor:    p.ZoomIn,
		ZoomOutFactor:   p.ZoomOut,
		MinScale:        p.MinScale,
		MaxScale:        p.MaxScale,
		HitOrder:        engine.HitOrder(p.HitOrder),
	}
}

// ParseEngine decodes a YAML profile over the defaults and validates the result.
func ParseEngine(data []byte) (engine.Options, error) {
	p := DefaultEngineProfile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return engine.Options{}, fmt.Errorf("parse engine profile: %w", err)
	}
	opts := p.Options()
	if err := opts.Validate(); err != nil {
		return engine.Options{}, fmt.Errorf("invalid engine profile: %w", err)
	}
	return opts, nil
}

// LoadEngine reads the profile at path. An empty path yields the defaults.
func LoadEngine(path string) (engine.Options, error) {
	if path == "" {
		return engine.DefaultOptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Options{}, fmt.Errorf("read engine profile: %w", err)
	}
	return ParseEngine(data)
}
