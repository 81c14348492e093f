// Package script replays recorded pointer and editing gestures against an engine. Scripts are
// YAML so they can be written by hand for regression cases and batch annotation.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roiboard/roiboard/internal/asset"
	"github.com/roiboard/roiboard/internal/engine"
	"github.com/roiboard/roiboard/internal/geom"
)

var ErrInvalidStep = errors.New("invalid step")

type Script struct {
	Image Image   `yaml:"image"`
	Scale float64 `yaml:"scale"`
	Steps []Step  `yaml:"steps"`
}

// Image names the image the gestures are drawn on. A zero size is filled in from the file
// header by Load.
type Image struct {
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Step is one gesture. Exactly one field is set.
type Step struct {
	Down        *Point  `yaml:"down"`
	Move        *Point  `yaml:"move"`
	DoubleClick *Point  `yaml:"dblclick"`
	Up          bool    `yaml:"up"`
	Zoom        string  `yaml:"zoom"`
	Scale       float64 `yaml:"scale"`
	Delete      bool    `yaml:"delete"`
	Clear       bool    `yaml:"clear"`
	Edit        *Edit   `yaml:"edit"`
	Duplicate   bool    `yaml:"duplicate"`
}

// Edit is applied to the selected ROI.
type Edit struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Point is a display-space position written as [x, y].
type Point geom.PointF

func (p *Point) UnmarshalYAML(n *yaml.Node) error {
	var xy []float64
	if err := n.Decode(&xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: point needs 2 coordinates, got %d", n.Line, len(xy))
	}
	*p = Point{X: xy[0], Y: xy[1]}
	return nil
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Down != nil, s.Move != nil, s.DoubleClick != nil, s.Up, s.Zoom != "",
		s.Scale != 0, s.Delete, s.Clear, s.Edit != nil, s.Duplicate,
	} {
		if set {
			n++
		}
	}
	return n
}

// Parse decodes a script and checks that every step holds a single known action.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if s.Image.Path == "" {
		return nil, fmt.Errorf("parse script: image.path is required")
	}
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return nil, fmt.Errorf("step %d: %w: %d actions", i+1, ErrInvalidStep, n)
		}
		if step.Zoom != "" && step.Zoom != "in" && step.Zoom != "out" {
			return nil, fmt.Errorf("step %d: %w: zoom %q", i+1, ErrInvalidStep, step.Zoom)
		}
	}
	return &s, nil
}

// Load reads a script file. A relative image path is resolved against the script's
// directory, and a missing image size is probed from the image file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(s.Image.Path) {
		s.Image.Path = filepath.Join(filepath.Dir(path), s.Image.Path)
	}
	if s.Image.Width == 0 || s.Image.Height == 0 {
		size, err := asset.ProbeFile(s.Image.Path)
		if err != nil {
			return nil, fmt.Errorf("script image: %w", err)
		}
		s.Image.Width, s.Image.Height = size.Width, size.Height
	}
	return s, nil
}

// Run loads the script's image into e and replays the steps in order. It returns every
// non-empty intent the steps produced.
func Run(e *engine.Engine, s *Script) ([]engine.Intent, error) {
	if err := e.LoadImage(s.Image.Path, geom.Size{Width: s.Image.Width, Height: s.Image.Height}); err != nil {
		return nil, err
	}
	if s.Scale != 0 {
		if err := e.SetScale(s.Scale); err != nil {
			return nil, err
		}
	}

	var intents []engine.Intent
	for i, step := range s.Steps {
		intent, err := apply(e, step)
		if err != nil {
			return intents, fmt.Errorf("step %d: %w", i+1, err)
		}
		if intent.Kind != "" {
			intents = append(intents, intent)
		}
	}
	return intents, nil
}

func apply(e *engine.Engine, step Step) (engine.Intent, error) {
	scale := e.Viewport().Scale
	switch {
	case step.Down != nil:
		return e.PointerDown(geom.PointF(*step.Down), scale), nil
	case step.Move != nil:
		e.PointerMove(geom.PointF(*step.Move), scale)
	case step.DoubleClick != nil:
		return e.DoubleClick(geom.PointF(*step.DoubleClick), scale), nil
	case step.Up:
		e.PointerUp()
	case step.Zoom == "in":
		return engine.Intent{}, e.ZoomIn()
	case step.Zoom == "out":
		return engine.Intent{}, e.ZoomOut()
	case step.Scale != 0:
		return engine.Intent{}, e.SetScale(step.Scale)
	case step.Delete:
		return engine.Intent{}, e.DeleteSelected()
	case step.Clear:
		e.ClearAll()
	case step.Edit != nil:
		return engine.Intent{}, e.ApplyMetadata(e.SelectedID(), engine.Metadata{
			Name:        step.Edit.Name,
			Description: step.Edit.Description,
			Tags:        step.Edit.Tags,
		})
	case step.Duplicate:
		dup, err := e.Duplicate(e.SelectedID())
		if err != nil {
			return engine.Intent{}, err
		}
		return engine.Intent{Kind: engine.IntentDuplicate, ROIID: dup.ID}, nil
	default:
		return engine.Intent{}, ErrInvalidStep
	}
	return engine.Intent{}, nil
}
