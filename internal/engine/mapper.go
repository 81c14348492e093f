package engine

import (
	"github.com/roiboard/roiboard/internal/geom"
)

// Viewport is the view state a host renders with: the zoom factor and the image's intrinsic
// size. The image is drawn flush to the viewport's top-left corner with no centring offset.
type Viewport struct {
	Scale float64   `json:"scale"`
	Image geom.Size `json:"image"`
}

// Matrix returns the image-to-display transform.
func (v Viewport) Matrix() Matrix2D {
	return Scale(v.Scale, v.Scale)
}

// ToImageSpace projects a display point onto the image. It reports false when the point lies
// outside the scaled image, in which case pointer handling must do nothing.
func (v Viewport) ToImageSpace(p geom.PointF) (geom.Point, bool) {
	if v.Scale <= 0 || v.Image.Empty() {
		return geom.Point{}, false
	}
	w, h := v.DisplaySize()
	if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
		return geom.Point{}, false
	}
	x := clamp(int(p.X/v.Scale), 0, v.Image.Width-1)
	y := clamp(int(p.Y/v.Scale), 0, v.Image.Height-1)
	return geom.Pt(x, y), true
}

// ToDisplaySpace scales an image point into display space. Used for painting only.
func (v Viewport) ToDisplaySpace(p geom.Point) geom.PointF {
	x, y := v.Matrix().TransformPoint(float64(p.X), float64(p.Y))
	return geom.PointF{X: x, Y: y}
}

// RectToDisplay scales an image-space rectangle into display space.
func (v Viewport) RectToDisplay(r geom.Rect) Rect {
	return v.Matrix().TransformRect(Rect{
		X:      float64(r.X),
		Y:      float64(r.Y),
		Width:  float64(r.Width),
		Height: float64(r.Height),
	})
}

// DisplaySize is the size of the scaled image.
func (v Viewport) DisplaySize() (float64, float64) {
	return float64(v.Image.Width) * v.Scale, float64(v.Image.Height) * v.Scale
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
