package engine

import (
	"testing"

	"github.com/roiboard/roiboard/internal/geom"
)

func TestToImageSpace(t *testing.T) {
	v := Viewport{Scale: 2, Image: geom.Size{Width: 200, Height: 100}}
	tests := []struct {
		p    geom.PointF
		want geom.Point
		ok   bool
	}{
		{geom.PointF{X: 399, Y: 199}, geom.Pt(199, 99), true},
		{geom.PointF{X: 0, Y: 0}, geom.Pt(0, 0), true},
		{geom.PointF{X: 3.9, Y: 5.5}, geom.Pt(1, 2), true},
		{geom.PointF{X: 400, Y: 0}, geom.Point{}, false},
		{geom.PointF{X: 0, Y: 200}, geom.Point{}, false},
		{geom.PointF{X: -0.5, Y: 10}, geom.Point{}, false},
	}
	for _, tt := range tests {
		got, ok := v.ToImageSpace(tt.p)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToImageSpace(%v) = %v, %v; want %v, %v", tt.p, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToImageSpaceClampsAtFractionalScale(t *testing.T) {
	v := Viewport{Scale: 0.3, Image: geom.Size{Width: 10, Height: 10}}
	got, ok := v.ToImageSpace(geom.PointF{X: 2.99, Y: 2.99})
	if !ok || got != geom.Pt(9, 9) {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestToImageSpaceWithoutImage(t *testing.T) {
	if _, ok := (Viewport{Scale: 1}).ToImageSpace(geom.PointF{}); ok {
		t.Fatal("mapped a point with no image")
	}
}

func TestToDisplaySpace(t *testing.T) {
	v := Viewport{Scale: 1.5, Image: geom.Size{Width: 10, Height: 10}}
	if got := v.ToDisplaySpace(geom.Pt(4, 6)); got != (geom.PointF{X: 6, Y: 9}) {
		t.Fatalf("got %v", got)
	}
	r := v.RectToDisplay(geom.Rect{X: 2, Y: 2, Width: 4, Height: 2})
	if r != (Rect{X: 3, Y: 3, Width: 6, Height: 3}) {
		t.Fatalf("RectToDisplay = %+v", r)
	}
}

func TestViewportDisplaySize(t *testing.T) {
	v := Viewport{Scale: 1.5, Image: geom.Size{Width: 200, Height: 100}}
	if w, h := v.DisplaySize(); w != 300 || h != 150 {
		t.Fatalf("DisplaySize = %v x %v", w, h)
	}
}
