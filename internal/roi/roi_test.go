package roi

import (
	"testing"

	"github.com/roiboard/roiboard/internal/geom"
)

func square(x, y, w, h int) *ROI {
	return New("roi_test", "ROI_1", geom.Pt(x, y), geom.Pt(x+w, y+h))
}

func TestRectNormalizesReversedCorners(t *testing.T) {
	r := New("roi_a", "a", geom.Pt(60, 40), geom.Pt(10, 5))
	want := geom.Rect{X: 10, Y: 5, Width: 50, Height: 35}
	if got := r.Rect(); got != want {
		t.Fatalf("Rect() = %+v, want %+v", got, want)
	}
}

func TestCornerWinsOverEdgeAndBody(t *testing.T) {
	r := square(10, 10, 100, 100)
	p := geom.Pt(10, 10)

	if h, ok := r.HandleAt(p, DefaultHandleSize); !ok || h != TopLeft {
		t.Fatalf("HandleAt = %q, %v; want top_left", h, ok)
	}
	if e, ok := r.EdgeAt(p); !ok || e != TopLeft {
		t.Fatalf("EdgeAt = %q, %v; want top_left", e, ok)
	}
	if r.Contains(p) {
		t.Fatal("corner point classified as body")
	}
}

func TestEdgeBands(t *testing.T) {
	r := square(10, 10, 100, 100)
	tests := []struct {
		p    geom.Point
		want Anchor
		ok   bool
	}{
		{geom.Pt(10, 50), Left, true},
		{geom.Pt(9, 50), Left, true},
		{geom.Pt(110, 50), Right, true},
		{geom.Pt(50, 10), Top, true},
		{geom.Pt(50, 110), Bottom, true},
		{geom.Pt(110, 110), BottomRight, true},
		{geom.Pt(110, 10), TopRight, true},
		{geom.Pt(50, 50), "", false},
		{geom.Pt(300, 300), "", false},
	}
	for _, tt := range tests {
		got, ok := r.EdgeAt(tt.p)
		if got != tt.want || ok != tt.ok {
			t.Errorf("EdgeAt(%v) = %q, %v; want %q, %v", tt.p, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCursorAt(t *testing.T) {
	r := square(10, 10, 100, 100)
	tests := []struct {
		p    geom.Point
		want Cursor
	}{
		{geom.Pt(10, 10), CursorResizeNWSE},
		{geom.Pt(110, 10), CursorResizeNESW},
		{geom.Pt(10, 50), CursorResizeHorizontal},
		{geom.Pt(50, 110), CursorResizeVertical},
		{geom.Pt(50, 50), CursorMove},
		{geom.Pt(300, 300), CursorCrosshair},
	}
	for _, tt := range tests {
		if got := r.CursorAt(tt.p); got != tt.want {
			t.Errorf("CursorAt(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestResizeInversionRoundTrip(t *testing.T) {
	r := square(0, 0, 50, 50)
	r.Resize(Right, -70, 0)

	got := r.Rect()
	if got.X != -20 || got.Width != 20 {
		t.Fatalf("after inversion Rect() = %+v, want x=-20 width=20", got)
	}
	r.Resize(Right, 70, 0)
	if got := r.Rect(); got != (geom.Rect{Width: 50, Height: 50}) {
		t.Fatalf("after restore Rect() = %+v", got)
	}
}

func TestResizeRules(t *testing.T) {
	tests := []struct {
		anchor     Anchor
		start, end geom.Point
	}{
		{TopLeft, geom.Pt(3, 4), geom.Pt(50, 50)},
		{BottomRight, geom.Pt(0, 0), geom.Pt(53, 54)},
		{TopRight, geom.Pt(0, 4), geom.Pt(53, 50)},
		{BottomLeft, geom.Pt(3, 0), geom.Pt(50, 54)},
		{Left, geom.Pt(3, 0), geom.Pt(50, 50)},
		{Right, geom.Pt(0, 0), geom.Pt(53, 50)},
		{Top, geom.Pt(0, 4), geom.Pt(50, 50)},
		{Bottom, geom.Pt(0, 0), geom.Pt(50, 54)},
	}
	for _, tt := range tests {
		r := square(0, 0, 50, 50)
		r.Resize(tt.anchor, 3, 4)
		if r.Start != tt.start || r.End != tt.end {
			t.Errorf("%s: start=%v end=%v, want %v %v", tt.anchor, r.Start, r.End, tt.start, tt.end)
		}
	}
}

func TestIconAt(t *testing.T) {
	r := New("roi_a", "a", geom.Pt(100, 100), geom.Pt(200, 150))

	gear, dup := r.IconZones(1, DefaultIconLayout)
	if gear != (geom.Rect{X: 179, Y: 79, Width: 16, Height: 16}) {
		t.Fatalf("gear zone = %+v", gear)
	}
	if dup != (geom.Rect{X: 158, Y: 79, Width: 16, Height: 16}) {
		t.Fatalf("duplicate zone = %+v", dup)
	}

	tests := []struct {
		p     geom.Point
		scale float64
		want  Icon
	}{
		{geom.Pt(185, 85), 1, IconGear},
		{geom.Pt(160, 85), 1, IconDuplicate},
		{geom.Pt(150, 85), 1, IconNone},
		{geom.Pt(150, 120), 1, IconNone},
		{geom.Pt(185, 85), 2, IconGear},
		{geom.Pt(185, 85), 0, IconNone},
	}
	for _, tt := range tests {
		if got := r.IconAt(tt.p, tt.scale, DefaultIconLayout); got != tt.want {
			t.Errorf("IconAt(%v, %v) = %s, want %s", tt.p, tt.scale, got, tt.want)
		}
	}
}

func TestCloneDoesNotShareTags(t *testing.T) {
	src := New("roi_a", "ROI_1", geom.Pt(0, 0), geom.Pt(20, 20))
	src.Description = "cell"
	src.Tags = []string{"nucleus"}

	c := src.Clone("roi_b", "ROI_2", geom.Pt(10, 10))
	if c.Start != geom.Pt(10, 10) || c.End != geom.Pt(30, 30) {
		t.Fatalf("clone bounds = %v-%v", c.Start, c.End)
	}
	if c.Description != "cell" || len(c.Tags) != 1 || c.Tags[0] != "nucleus" {
		t.Fatalf("clone metadata = %q %v", c.Description, c.Tags)
	}
	src.Tags[0] = "changed"
	if c.Tags[0] != "nucleus" {
		t.Fatal("clone shares tag storage with source")
	}
}

func TestIconHover(t *testing.T) {
	r := New("roi_a", "a", geom.Pt(0, 0), geom.Pt(1, 1))
	if r.IconOpacity != IconOpacityInitial {
		t.Fatalf("initial opacity = %v", r.IconOpacity)
	}
	r.SetIconHover(true)
	if r.IconOpacity != IconOpacityHover || r.IconBackground != IconBackgroundHover {
		t.Fatalf("hover = %v/%d", r.IconOpacity, r.IconBackground)
	}
	r.SetIconHover(false)
	if r.IconOpacity != IconOpacityIdle || r.IconBackground != IconBackgroundIdle {
		t.Fatalf("idle = %v/%d", r.IconOpacity, r.IconBackground)
	}
}

func TestNegativeThicknessPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	r := square(0, 0, 10, 10)
	r.EdgeThickness = -1
	r.EdgeAt(geom.Pt(0, 0))
}
