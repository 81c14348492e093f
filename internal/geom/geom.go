// Package geom holds the integer image-space primitives shared by the ROI engine.
package geom

// Point is a position in image space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the delta from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// PointF is a pointer position in display space. Display coordinates may be fractional.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the intrinsic size of an image.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle with a top-left origin and non-negative size.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Normalize returns the rectangle spanned by two corners given in any order.
func Normalize(a, b Point) Rect {
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  abs(b.X - a.X),
		Height: abs(b.Y - a.Y),
	}
}

// Square returns a side×side square centred on c.
// Panics on a negative side: callers pass configured constants, never user input.
func Square(c Point, side int) Rect {
	if side < 0 {
		panic("geom: negative square side")
	}
	return Rect{X: c.X - side/2, Y: c.Y - side/2, Width: side, Height: side}
}

// Contains reports whether p lies in the half-open area [X, X+Width) × [Y, Y+Height).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{X: r.X, Y: r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{X: r.Right(), Y: r.Bottom()} }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
