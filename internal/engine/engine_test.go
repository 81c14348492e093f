package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/roiboard/roiboard/internal/document"
	"github.com/roiboard/roiboard/internal/geom"
	"github.com/roiboard/roiboard/internal/roi"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	n := 0
	e := NewWithIDs(opts, func() string {
		n++
		return fmt.Sprintf("roi_%02d", n)
	})
	if err := e.LoadImage("slide.png", geom.Size{Width: 400, Height: 300}); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	return e
}

func drag(e *Engine, from, to geom.PointF) Intent {
	intent := e.PointerDown(from, e.Viewport().Scale)
	e.PointerMove(to, e.Viewport().Scale)
	e.PointerUp()
	return intent
}

func pf(x, y float64) geom.PointF { return geom.PointF{X: x, Y: y} }

func twoOverlapping() document.ROISet {
	return document.ROISet{
		ImagePath: "slide.png",
		ROIs: []document.ROIRecord{
			{Start: geom.Pt(10, 10), End: geom.Pt(110, 110), Name: "A"},
			{Start: geom.Pt(50, 50), End: geom.Pt(150, 150), Name: "B"},
		},
	}
}

func TestDrawThenMove(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())

	if got := drag(e, pf(50, 50), pf(150, 120)); got.Kind != IntentDraw {
		t.Fatalf("first press intent = %+v", got)
	}
	rois := e.ROIs()
	if len(rois) != 1 {
		t.Fatalf("len = %d", len(rois))
	}
	if want := (geom.Rect{X: 50, Y: 50, Width: 100, Height: 70}); rois[0].Rect != want {
		t.Fatalf("drawn rect = %+v, want %+v", rois[0].Rect, want)
	}

	if got := drag(e, pf(100, 85), pf(105, 80)); got.Kind != IntentMove {
		t.Fatalf("second press intent = %+v", got)
	}
	rois = e.ROIs()
	if len(rois) != 1 {
		t.Fatalf("len after move = %d", len(rois))
	}
	if want := (geom.Rect{X: 55, Y: 45, Width: 100, Height: 70}); rois[0].Rect != want {
		t.Fatalf("moved rect = %+v, want %+v", rois[0].Rect, want)
	}
	if e.Gesture().Mode != "idle" {
		t.Fatalf("gesture after release = %+v", e.Gesture())
	}
}

func TestResizeByEdgeAndHandle(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	drag(e, pf(50, 50), pf(150, 120))

	if got := drag(e, pf(150, 90), pf(170, 95)); got.Kind != IntentResize || got.Anchor != roi.Right {
		t.Fatalf("edge press intent = %+v", got)
	}
	if want := (geom.Rect{X: 50, Y: 50, Width: 120, Height: 70}); e.ROIs()[0].Rect != want {
		t.Fatalf("after right resize = %+v", e.ROIs()[0].Rect)
	}

	if got := drag(e, pf(48, 48), pf(38, 40)); got.Kind != IntentResize || got.Anchor != roi.TopLeft {
		t.Fatalf("handle press intent = %+v", got)
	}
	if want := (geom.Rect{X: 40, Y: 42, Width: 130, Height: 78}); e.ROIs()[0].Rect != want {
		t.Fatalf("after top-left resize = %+v", e.ROIs()[0].Rect)
	}
}

func TestDragPastOppositeEdgeKeepsRectNormalized(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	drag(e, pf(100, 100), pf(150, 150))
	drag(e, pf(150, 120), pf(80, 120))

	got := e.ROIs()[0].Rect
	if want := (geom.Rect{X: 80, Y: 100, Width: 20, Height: 50}); got != want {
		t.Fatalf("rect = %+v, want %+v", got, want)
	}
}

func TestOffImagePointerIsIgnored(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	if got := e.PointerDown(pf(400, 10), 1); got.Kind != IntentNone {
		t.Fatalf("off-image press intent = %+v", got)
	}
	if len(e.ROIs()) != 0 {
		t.Fatal("off-image press created a ROI")
	}

	e.PointerDown(pf(50, 50), 1)
	e.PointerMove(pf(80, 60), 1)
	if e.PointerMove(pf(500, 60), 1) {
		t.Fatal("off-image move reported as handled")
	}
	if e.Gesture().Mode != "drawing" {
		t.Fatalf("gesture ended by off-image move: %+v", e.Gesture())
	}
	if got := e.ROIs()[0].End; got != geom.Pt(80, 60) {
		t.Fatalf("end = %v", got)
	}
}

func TestNewPanicsOnInvalidOptions(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("New accepted zero options")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "invalid scale range") {
			t.Fatalf("panic = %v", msg)
		}
	}()
	New(Options{})
}

func TestNoImageIgnoresPointer(t *testing.T) {
	e := New(DefaultOptions())
	if got := e.PointerDown(pf(1, 1), 1); got.Kind != IntentNone {
		t.Fatalf("intent = %+v", got)
	}
	if err := e.ZoomIn(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("ZoomIn err = %v", err)
	}
	if _, err := e.Document(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("Document err = %v", err)
	}
	if e.Status().String() != "Image not loaded." {
		t.Fatalf("status = %q", e.Status().String())
	}
}

func TestPressDuringGestureCommits(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	e.PointerDown(pf(50, 50), 1)
	e.PointerMove(pf(100, 100), 1)
	e.PointerDown(pf(300, 250), 1)

	rois := e.ROIs()
	if len(rois) != 2 {
		t.Fatalf("len = %d", len(rois))
	}
	if rois[0].Rect != (geom.Rect{X: 50, Y: 50, Width: 50, Height: 50}) {
		t.Fatalf("first rect = %+v", rois[0].Rect)
	}
	if g := e.Gesture(); g.Mode != "drawing" || g.ROIID != rois[1].ID {
		t.Fatalf("gesture = %+v", g)
	}
}

func TestDeleteDuringGestureEndsIt(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	intent := e.PointerDown(pf(50, 50), 1)
	if err := e.Delete(intent.ROIID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Gesture().Mode != "idle" || e.SelectedID() != "" {
		t.Fatalf("gesture=%+v selected=%q", e.Gesture(), e.SelectedID())
	}
	e.PointerMove(pf(90, 90), 1)
	if len(e.ROIs()) != 0 {
		t.Fatal("ROI resurrected")
	}
	if err := e.DeleteSelected(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("DeleteSelected err = %v", err)
	}
}

func TestIconActions(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	drag(e, pf(50, 50), pf(150, 120))
	src := e.ROIs()[0]

	gear, dup, ok := e.IconZones()
	if !ok {
		t.Fatal("no icon zones with a selection")
	}
	if gear != (Rect{X: 129, Y: 29, Width: 16, Height: 16}) || dup != (Rect{X: 108, Y: 29, Width: 16, Height: 16}) {
		t.Fatalf("zones gear=%+v dup=%+v", gear, dup)
	}

	if got := e.PointerDown(pf(135, 35), 1); got.Kind != IntentOpenEditor || got.ROIID != src.ID {
		t.Fatalf("gear intent = %+v", got)
	}
	if e.Gesture().Mode != "idle" || len(e.ROIs()) != 1 {
		t.Fatal("gear press changed gesture or collection")
	}

	got := e.PointerDown(pf(112, 35), 1)
	e.PointerUp()
	if got.Kind != IntentDuplicate {
		t.Fatalf("duplicate intent = %+v", got)
	}
	rois := e.ROIs()
	if len(rois) != 2 || e.SelectedID() != got.ROIID || rois[1].ID != got.ROIID {
		t.Fatalf("after duplicate: %d rois, selected %q", len(rois), e.SelectedID())
	}
	if rois[1].Rect != (geom.Rect{X: 60, Y: 60, Width: 100, Height: 70}) || rois[1].Name != "ROI_2" {
		t.Fatalf("duplicate = %+v", rois[1])
	}
}

func TestHoverPresentation(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	drag(e, pf(50, 50), pf(150, 120))

	e.PointerMove(pf(135, 35), 1)
	sel, _ := e.Selected()
	if sel.IconOpacity != roi.IconOpacityHover || sel.IconBackground != roi.IconBackgroundHover {
		t.Fatalf("hover presentation = %v/%d", sel.IconOpacity, sel.IconBackground)
	}
	if e.Cursor() != roi.CursorPointer {
		t.Fatalf("cursor over icon = %s", e.Cursor())
	}

	e.PointerMove(pf(300, 250), 1)
	sel, _ = e.Selected()
	if sel.IconOpacity != roi.IconOpacityIdle || sel.IconBackground != roi.IconBackgroundIdle {
		t.Fatalf("idle presentation = %v/%d", sel.IconOpacity, sel.IconBackground)
	}
	if e.Cursor() != roi.CursorCrosshair {
		t.Fatalf("cursor on background = %s", e.Cursor())
	}

	tests := []struct {
		p    geom.PointF
		want roi.Cursor
	}{
		{pf(100, 85), roi.CursorMove},
		{pf(150, 90), roi.CursorResizeHorizontal},
		{pf(100, 120), roi.CursorResizeVertical},
		{pf(48, 48), roi.CursorResizeNWSE},
		{pf(152, 52), roi.CursorResizeNESW},
	}
	for _, tt := range tests {
		e.PointerMove(tt.p, 1)
		if got := e.Cursor(); got != tt.want {
			t.Errorf("cursor at %v = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestOverlapPrecedence(t *testing.T) {
	tests := []struct {
		order HitOrder
		want  string
	}{
		{HitOldest, "A"},
		{HitTopmost, "B"},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			opts := DefaultOptions()
			opts.HitOrder = tt.order
			e := newTestEngine(t, opts)
			if err := e.LoadROISet(twoOverlapping()); err != nil {
				t.Fatalf("LoadROISet: %v", err)
			}
			e.PointerDown(pf(80, 80), 1)
			sel, ok := e.Selected()
			if !ok || sel.Name != tt.want {
				t.Fatalf("selected %q, want %q", sel.Name, tt.want)
			}
		})
	}
}

func TestDoubleClick(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	if err := e.LoadROISet(twoOverlapping()); err != nil {
		t.Fatalf("LoadROISet: %v", err)
	}
	got := e.DoubleClick(pf(80, 80), 1)
	sel, _ := e.Selected()
	if got.Kind != IntentOpenEditor || got.ROIID != sel.ID || sel.Name != "A" {
		t.Fatalf("intent = %+v, selected = %q", got, sel.Name)
	}
	if got := e.DoubleClick(pf(300, 250), 1); got.Kind != IntentNone {
		t.Fatalf("background double-click = %+v", got)
	}
}

func TestEditorRoundTrip(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	drag(e, pf(10, 10), pf(20, 20))
	drag(e, pf(100, 100), pf(120, 120))
	first, second := e.ROIs()[0], e.ROIs()[1]

	err := e.ApplyMetadata(second.ID, Metadata{Name: first.Name})
	if !errors.Is(err, roi.ErrNameTaken) {
		t.Fatalf("duplicate name err = %v", err)
	}
	if got, _ := e.ROI(second.ID); got.Name != second.Name {
		t.Fatal("rejected edit renamed the ROI")
	}

	err = e.ApplyMetadata(second.ID, Metadata{
		Name:        "  nucleus ",
		Description: "bright spot",
		Tags:        []string{" cell", "cell", "", "stained "},
	})
	if err != nil {
		t.Fatalf("ApplyMetadata: %v", err)
	}
	view, err := e.EditorView(second.ID)
	if err != nil {
		t.Fatalf("EditorView: %v", err)
	}
	if view.Metadata.Name != "nucleus" || view.Metadata.Description != "bright spot" ||
		!slices.Equal(view.Metadata.Tags, []string{"cell", "stained"}) {
		t.Fatalf("editor view = %+v", view)
	}
	if _, err := e.EditorView("roi_missing"); !errors.Is(err, roi.ErrNotFound) {
		t.Fatalf("missing EditorView err = %v", err)
	}
}

func TestLoadROISetAdvancesNames(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	drag(e, pf(10, 10), pf(20, 20))

	set := document.ROISet{
		ImagePath: "other.png",
		ROIs: []document.ROIRecord{
			{Start: geom.Pt(0, 0), End: geom.Pt(5, 5), Name: "ROI_3"},
			{Start: geom.Pt(9, 9), End: geom.Pt(1, 1), Tags: []string{"a", "a"}},
		},
	}
	if err := e.LoadROISet(set); err != nil {
		t.Fatalf("LoadROISet: %v", err)
	}
	rois := e.ROIs()
	if len(rois) != 2 || rois[1].Name != "ROI_4" || !slices.Equal(rois[1].Tags, []string{"a"}) {
		t.Fatalf("loaded = %+v", rois)
	}
	if e.SelectedID() != "" {
		t.Fatal("selection survived load")
	}
	if e.ImageMatches("other.png") || !e.ImageMatches("slide.png") {
		t.Fatal("ImageMatches wrong")
	}

	drag(e, pf(200, 200), pf(220, 220))
	if got := e.ROIs()[2].Name; got != "ROI_5" {
		t.Fatalf("next drawn name = %s", got)
	}

	bad := twoOverlapping()
	bad.ROIs[1].Name = "A"
	if err := e.LoadROISet(bad); !errors.Is(err, roi.ErrNameTaken) {
		t.Fatalf("duplicate names err = %v", err)
	}
	if len(e.ROIs()) != 3 {
		t.Fatal("failed load changed the collection")
	}
}

func TestLoadROISetRenumbersRepeatedNames(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	set, err := document.DecodeBytes([]byte(`{"image_path":"slide.png","rois":[
		{"start":{"x":0,"y":0},"end":{"x":10,"y":10},"name":"ROI_2"},
		{"start":{"x":20,"y":20},"end":{"x":30,"y":30},"name":"ROI_2"},
		{"start":{"x":40,"y":40},"end":{"x":50,"y":50},"name":"tumour"},
		{"start":{"x":60,"y":60},"end":{"x":70,"y":70},"name":"tumour"}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := e.LoadROISet(set); err != nil {
		t.Fatalf("LoadROISet: %v", err)
	}
	var names []string
	for _, r := range e.ROIs() {
		names = append(names, r.Name)
	}
	if !slices.Equal(names, []string{"ROI_2", "ROI_3", "tumour", "ROI_4"}) {
		t.Fatalf("names = %q", names)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	if err := e.LoadROISet(document.NewSampleSet("slide.png")); err != nil {
		t.Fatalf("LoadROISet: %v", err)
	}
	set, err := e.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}

	other := newTestEngine(t, DefaultOptions())
	if err := other.LoadROISet(set); err != nil {
		t.Fatalf("LoadROISet: %v", err)
	}
	a, b := e.ROIs(), other.ROIs()
	if len(a) != len(b) {
		t.Fatalf("len %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Rect != b[i].Rect || a[i].Name != b[i].Name || a[i].Description != b[i].Description ||
			!slices.Equal(a[i].Tags, b[i].Tags) {
			t.Errorf("roi %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestClearAllAndLoadImageResetNames(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	drag(e, pf(10, 10), pf(20, 20))
	drag(e, pf(100, 100), pf(120, 120))
	e.ClearAll()
	drag(e, pf(10, 10), pf(20, 20))
	if got := e.ROIs()[0].Name; got != "ROI_1" {
		t.Fatalf("name after clear = %s", got)
	}

	if err := e.SetScale(2); err != nil {
		t.Fatalf("SetScale: %v", err)
	}
	if err := e.LoadImage("next.png", geom.Size{Width: 10, Height: 10}); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if len(e.ROIs()) != 0 || e.Viewport().Scale != 1 || e.ImagePath() != "next.png" {
		t.Fatalf("state after LoadImage: %d rois, scale %v", len(e.ROIs()), e.Viewport().Scale)
	}
	if err := e.LoadImage("x.png", geom.Size{}); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("empty image err = %v", err)
	}
}

func TestZoom(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	if err := e.ZoomIn(); err != nil {
		t.Fatalf("ZoomIn: %v", err)
	}
	if got := e.Viewport().Scale; got != 1.25 {
		t.Fatalf("scale = %v", got)
	}
	if err := e.ZoomOut(); err != nil {
		t.Fatalf("ZoomOut: %v", err)
	}
	if got := e.Viewport().Scale; got != 1 {
		t.Fatalf("scale = %v", got)
	}
	if err := e.FitTo(800, 600); err != nil {
		t.Fatalf("FitTo: %v", err)
	}
	if got := e.Viewport().Scale; got != 2 {
		t.Fatalf("fit scale = %v", got)
	}
	if err := e.FitTo(800, 150); err != nil {
		t.Fatalf("FitTo: %v", err)
	}
	if got := e.Viewport().Scale; got != 0.5 {
		t.Fatalf("fit scale = %v", got)
	}
	if err := e.SetScale(0); !errors.Is(err, ErrInvalidScale) {
		t.Fatalf("SetScale(0) err = %v", err)
	}
	if err := e.SetScale(1000); err != nil {
		t.Fatalf("SetScale: %v", err)
	}
	if got := e.Viewport().Scale; got != DefaultOptions().MaxScale {
		t.Fatalf("clamped scale = %v", got)
	}
}

func TestPointerAtScale(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	e.PointerDown(pf(100, 100), 2)
	e.PointerMove(pf(300, 240), 2)
	e.PointerUp()
	if got := e.Viewport().Scale; got != 2 {
		t.Fatalf("scale = %v", got)
	}
	if want := (geom.Rect{X: 50, Y: 50, Width: 100, Height: 70}); e.ROIs()[0].Rect != want {
		t.Fatalf("rect at scale 2 = %+v", e.ROIs()[0].Rect)
	}
	if e.PointerDown(pf(800, 10), 2).Kind != IntentNone {
		t.Fatal("press at scaled boundary was handled")
	}
}

func TestStatus(t *testing.T) {
	e := newTestEngine(t, DefaultOptions())
	if got, want := e.Status().String(), "Image dimensions: 400×300 | Zoom: 1.00× | Number of ROIs:0"; got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}
	drag(e, pf(50, 50), pf(150, 120))
	id := e.SelectedID()
	if err := e.ApplyMetadata(id, Metadata{Name: "ROI_1", Tags: []string{"a", "b"}}); err != nil {
		t.Fatalf("ApplyMetadata: %v", err)
	}
	want := "Image dimensions: 400×300 | Zoom: 1.00× | Number of ROIs:1 | ROI: ROI_1 (50, 50, 100, 70) | Tags: a, b"
	if got := e.Status().String(); got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}
}
