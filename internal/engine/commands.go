package engine

import (
	"encoding/json"
	"math"

	"github.com/roiboard/roiboard/internal/roi"
)

// Overlay colours and sizes in display pixels.
const (
	strokeSelected = "#ff0000"
	strokeNormal   = "#00ff00"
	strokeWidth    = 2
	paintHandle    = 6
	labelHeight    = 20
)

// DrawCommand represents a single drawing operation for the host to execute.
// The host receives a list of these and executes them on a Canvas2D context or equivalent.
type DrawCommand struct {
	Op          string    `json:"op"`                    // "image", "rect", "handle", "icon", "label"
	ObjectID    string    `json:"objectId,omitempty"`    // ROI id for hit correlation
	Transform   []float64 `json:"transform,omitempty"`   // [a, b, c, d, e, f] image-to-display matrix
	Rect        *Rect     `json:"rect,omitempty"`        // Display-space bounds
	Fill        string    `json:"fill,omitempty"`        // Fill color
	Stroke      string    `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64   `json:"strokeWidth,omitempty"` // Stroke width
	Opacity     float64   `json:"opacity,omitempty"`     // Global alpha
	Background  uint8     `json:"background,omitempty"`  // Icon backdrop alpha, 0-255
	Icon        string    `json:"icon,omitempty"`        // "gear" or "duplicate"
	Text        string    `json:"text,omitempty"`        // Label text, centred in Rect
	ImagePath   string    `json:"imagePath,omitempty"`   // Source image for "image" ops
	ImageWidth  float64   `json:"imageWidth,omitempty"`  // Image natural width
	ImageHeight float64   `json:"imageHeight,omitempty"` // Image natural height
}

// Overlay compiles the current state into draw commands in painter's order (back to front):
// the image, then each ROI in collection order. The selected ROI also gets its handles,
// icons and name label unless it has no area on screen yet, as on the first press of a draw.
func (e *Engine) Overlay() []DrawCommand {
	if !e.loaded {
		return nil
	}

	commands := []DrawCommand{{
		Op:          "image",
		Transform:   e.view.Matrix().ToSlice(),
		ImagePath:   e.imagePath,
		ImageWidth:  float64(e.view.Image.Width),
		ImageHeight: float64(e.view.Image.Height),
	}}

	selected := e.rois.SelectedID()
	for _, r := range e.rois.All() {
		compileROI(e, r, r.ID == selected, &commands)
	}
	return commands
}

func compileROI(e *Engine, r *roi.ROI, selected bool, commands *[]DrawCommand) {
	display := truncRect(e.view.RectToDisplay(r.Rect()))
	stroke := strokeNormal
	if selected {
		stroke = strokeSelected
	}
	*commands = append(*commands, DrawCommand{
		Op:          "rect",
		ObjectID:    r.ID,
		Rect:        &display,
		Stroke:      stroke,
		StrokeWidth: strokeWidth,
	})
	if !selected || display.IsEmpty() {
		return
	}

	corners := [...][2]float64{
		{display.X, display.Y},
		{display.X + display.Width, display.Y},
		{display.X, display.Y + display.Height},
		{display.X + display.Width, display.Y + display.Height},
	}
	for _, c := range corners {
		*commands = append(*commands, DrawCommand{
			Op:       "handle",
			ObjectID: r.ID,
			Rect:     &Rect{X: c[0] - paintHandle/2, Y: c[1] - paintHandle/2, Width: paintHandle, Height: paintHandle},
			Fill:     strokeSelected,
		})
	}

	gear, dup := r.IconZones(e.view.Scale, e.opts.Icons)
	for _, icon := range []struct {
		kind roi.Icon
		rect Rect
	}{{roi.IconGear, toRect(gear)}, {roi.IconDuplicate, toRect(dup)}} {
		*commands = append(*commands, DrawCommand{
			Op:         "icon",
			ObjectID:   r.ID,
			Rect:       &icon.rect,
			Icon:       icon.kind.String(),
			Opacity:    r.IconOpacity,
			Background: r.IconBackground,
		})
	}

	*commands = append(*commands, DrawCommand{
		Op:       "label",
		ObjectID: r.ID,
		Rect:     &Rect{X: display.X, Y: display.Y - labelHeight, Width: display.Width, Height: labelHeight},
		Text:     r.Name,
	})
}

// OverlayJSON returns Overlay() serialised for hosts that exchange strings.
func (e *Engine) OverlayJSON() string {
	result, _ := DrawCommandsToJSON(e.Overlay())
	return result
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

func truncRect(r Rect) Rect {
	return Rect{X: math.Trunc(r.X), Y: math.Trunc(r.Y), Width: math.Trunc(r.Width), Height: math.Trunc(r.Height)}
}
