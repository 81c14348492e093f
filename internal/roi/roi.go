// Package roi models a rectangular region of interest and the ordered collection that owns it.
//
// A ROI stores two unordered corners. Every geometric query goes through Rect(), so a ROI whose
// corners were dragged past each other keeps behaving like the normalised rectangle it spans.
package roi

import (
	"github.com/roiboard/roiboard/internal/geom"
)

// DefaultEdgeThickness is the width of the edge hit band in image pixels.
const DefaultEdgeThickness = 2

// DefaultHandleSize is the grab tolerance for corner handles. It is larger than the painted
// handle so corners stay reachable at low zoom.
const DefaultHandleSize = 6

// Anchor names a resize target: one of the four corners or one of the four sides.
type Anchor string

const (
	TopLeft     Anchor = "top_left"
	TopRight    Anchor = "top_right"
	BottomLeft  Anchor = "bottom_left"
	BottomRight Anchor = "bottom_right"
	Left        Anchor = "left"
	Right       Anchor = "right"
	Top         Anchor = "top"
	Bottom      Anchor = "bottom"
)

// Corners lists the corner anchors in hit-test order.
var Corners = []Anchor{TopLeft, TopRight, BottomLeft, BottomRight}

// Sides lists the side anchors in hit-test order.
var Sides = []Anchor{Left, Right, Top, Bottom}

// IsCorner reports whether a is a corner handle.
func (a Anchor) IsCorner() bool {
	switch a {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return true
	}
	return false
}

// Cursor is the pointer shape the host should show.
type Cursor int

const (
	CursorCrosshair Cursor = iota
	CursorMove
	CursorResizeNWSE
	CursorResizeNESW
	CursorResizeHorizontal
	CursorResizeVertical
	CursorPointer
)

func (c Cursor) String() string {
	switch c {
	case CursorCrosshair:
		return "crosshair"
	case CursorMove:
		return "move"
	case CursorResizeNWSE:
		return "diag-nwse"
	case CursorResizeNESW:
		return "diag-nesw"
	case CursorResizeHorizontal:
		return "horizontal"
	case CursorResizeVertical:
		return "vertical"
	case CursorPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// MarshalText encodes the cursor by name.
func (c Cursor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// CursorFor maps a resize anchor to its cursor.
func CursorFor(a Anchor) Cursor {
	switch a {
	case TopLeft, BottomRight:
		return CursorResizeNWSE
	case TopRight, BottomLeft:
		return CursorResizeNESW
	case Left, Right:
		return CursorResizeHorizontal
	case Top, Bottom:
		return CursorResizeVertical
	}
	return CursorCrosshair
}

// Icon identifies an auxiliary action button drawn beside the selected ROI.
type Icon int

const (
	IconNone Icon = iota
	IconGear
	IconDuplicate
)

func (i Icon) String() string {
	switch i {
	case IconGear:
		return "gear"
	case IconDuplicate:
		return "duplicate"
	default:
		return "none"
	}
}

// IconLayout sizes the icon hot-zones in unscaled display pixels.
type IconLayout struct {
	Size   int
	Margin int
}

// DefaultIconLayout matches the 16px icons painted 5px outside the rectangle.
var DefaultIconLayout = IconLayout{Size: 16, Margin: 5}

// Icon presentation values. Hovering an icon brightens both icons of the selected ROI.
const (
	IconOpacityInitial    = 0.1
	IconOpacityIdle       = 0.2
	IconOpacityHover      = 0.9
	IconBackgroundHover   = 150
	IconBackgroundIdle    = 0
	iconBackgroundInitial = 0
)

// ROI is one annotated rectangle in image space.
type ROI struct {
	ID          string
	Start       geom.Point
	End         geom.Point
	Name        string
	Description string
	Tags        []string

	EdgeThickness int

	// Presentation only; never persisted or compared.
	IconOpacity    float64
	IconBackground uint8
}

// New creates a ROI spanning start and end.
func New(id, name string, start, end geom.Point) *ROI {
	return &ROI{
		ID:             id,
		Start:          start,
		End:            end,
		Name:           name,
		Tags:           []string{},
		EdgeThickness:  DefaultEdgeThickness,
		IconOpacity:    IconOpacityInitial,
		IconBackground: iconBackgroundInitial,
	}
}

// Rect returns the normalised rectangle spanned by Start and End.
func (r *ROI) Rect() geom.Rect {
	return geom.Normalize(r.Start, r.End)
}

// Handles returns size×size squares centred on each corner of Rect().
func (r *ROI) Handles(size int) map[Anchor]geom.Rect {
	rect := r.Rect()
	return map[Anchor]geom.Rect{
		TopLeft:     geom.Square(geom.Pt(rect.X, rect.Y), size),
		TopRight:    geom.Square(geom.Pt(rect.Right(), rect.Y), size),
		BottomLeft:  geom.Square(geom.Pt(rect.X, rect.Bottom()), size),
		BottomRight: geom.Square(geom.Pt(rect.Right(), rect.Bottom()), size),
	}
}

// HandleAt returns the first corner handle of the given size containing p.
func (r *ROI) HandleAt(p geom.Point, size int) (Anchor, bool) {
	handles := r.Handles(size)
	for _, name := range Corners {
		if handles[name].Contains(p) {
			return name, true
		}
	}
	return "", false
}

// EdgeAt returns the corner or side under p using the tight edge thickness.
// Corners win over sides.
func (r *ROI) EdgeAt(p geom.Point) (Anchor, bool) {
	t := r.thickness()
	if corner, ok := r.HandleAt(p, t); ok {
		return corner, true
	}
	rect := r.Rect()
	bands := [...]struct {
		name Anchor
		rect geom.Rect
	}{
		{Left, geom.Rect{X: rect.X - t/2, Y: rect.Y, Width: t, Height: rect.Height}},
		{Right, geom.Rect{X: rect.Right() - t/2, Y: rect.Y, Width: t, Height: rect.Height}},
		{Top, geom.Rect{X: rect.X, Y: rect.Y - t/2, Width: rect.Width, Height: t}},
		{Bottom, geom.Rect{X: rect.X, Y: rect.Bottom() - t/2, Width: rect.Width, Height: t}},
	}
	for _, b := range bands {
		if b.rect.Contains(p) {
			return b.name, true
		}
	}
	return "", false
}

// Contains reports whether p is on the body of the ROI. Points on a corner square are
// reserved for resizing and never count as body.
func (r *ROI) Contains(p geom.Point) bool {
	if _, onCorner := r.HandleAt(p, r.thickness()); onCorner {
		return false
	}
	return r.Rect().Contains(p)
}

// CursorAt derives the cursor hint for p from EdgeAt and Contains.
func (r *ROI) CursorAt(p geom.Point) Cursor {
	if edge, ok := r.EdgeAt(p); ok {
		return CursorFor(edge)
	}
	if r.Contains(p) {
		return CursorMove
	}
	return CursorCrosshair
}

// IconZones returns the gear and duplicate hot-zones in display space for the given scale.
func (r *ROI) IconZones(scale float64, layout IconLayout) (gear, duplicate geom.Rect) {
	rect := r.Rect()
	size := int(float64(layout.Size) * scale)
	right := int(float64(rect.Right()) * scale)
	top := int(float64(rect.Y)*scale) - size - layout.Margin
	gear = geom.Rect{X: right - size - layout.Margin, Y: top, Width: size, Height: size}
	duplicate = geom.Rect{X: right - 2*(size+layout.Margin), Y: top, Width: size, Height: size}
	return gear, duplicate
}

// IconAt tests an image-space point against the icon hot-zones projected back to image space.
func (r *ROI) IconAt(p geom.Point, scale float64, layout IconLayout) Icon {
	if scale <= 0 {
		return IconNone
	}
	gear, duplicate := r.IconZones(scale, layout)
	if toImage(gear, scale).Contains(p) {
		return IconGear
	}
	if toImage(duplicate, scale).Contains(p) {
		return IconDuplicate
	}
	return IconNone
}

// Translate moves both corners by (dx, dy).
func (r *ROI) Translate(dx, dy int) {
	r.Start = r.Start.Add(geom.Pt(dx, dy))
	r.End = r.End.Add(geom.Pt(dx, dy))
}

// Resize applies a drag delta to the corners the anchor controls. The corners are left
// unordered; Rect() keeps the view normalised.
func (r *ROI) Resize(a Anchor, dx, dy int) {
	switch a {
	case TopLeft:
		r.Start.X += dx
		r.Start.Y += dy
	case BottomRight:
		r.End.X += dx
		r.End.Y += dy
	case TopRight:
		r.Start.Y += dy
		r.End.X += dx
	case BottomLeft:
		r.Start.X += dx
		r.End.Y += dy
	case Left:
		r.Start.X += dx
	case Right:
		r.End.X += dx
	case Top:
		r.Start.Y += dy
	case Bottom:
		r.End.Y += dy
	}
}

// Clone copies r under a new identity, offset by delta. Tags are copied, not shared.
func (r *ROI) Clone(id, name string, delta geom.Point) *ROI {
	c := New(id, name, r.Start.Add(delta), r.End.Add(delta))
	c.Description = r.Description
	c.Tags = append([]string{}, r.Tags...)
	c.EdgeThickness = r.EdgeThickness
	return c
}

// SetIconHover updates the icon presentation for hover state.
func (r *ROI) SetIconHover(hovered bool) {
	if hovered {
		r.IconOpacity = IconOpacityHover
		r.IconBackground = IconBackgroundHover
		return
	}
	r.IconOpacity = IconOpacityIdle
	r.IconBackground = IconBackgroundIdle
}

func (r *ROI) thickness() int {
	if r.EdgeThickness < 0 {
		panic("roi: negative edge thickness")
	}
	return r.EdgeThickness
}

func toImage(d geom.Rect, scale float64) geom.Rect {
	return geom.Rect{
		X:      int(float64(d.X) / scale),
		Y:      int(float64(d.Y) / scale),
		Width:  int(float64(d.Width) / scale),
		Height: int(float64(d.Height) / scale),
	}
}
