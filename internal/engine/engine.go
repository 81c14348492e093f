package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/roiboard/roiboard/internal/document"
	"github.com/roiboard/roiboard/internal/geom"
	"github.com/roiboard/roiboard/internal/roi"
)

var (
	ErrNoImage      = errors.New("no image loaded")
	ErrInvalidImage = errors.New("image size must be positive")
	ErrInvalidScale = errors.New("scale factor must be positive")
	ErrNoSelection  = errors.New("no roi selected")
)

// IntentKind tells the host what a pointer event turned into.
type IntentKind string

const (
	IntentNone       IntentKind = ""
	IntentDraw       IntentKind = "draw"
	IntentMove       IntentKind = "move"
	IntentResize     IntentKind = "resize"
	IntentOpenEditor IntentKind = "open_editor"
	IntentDuplicate  IntentKind = "duplicate"
)

// Intent is the outcome of a press or double-click. OpenEditor asks the host to show the
// metadata dialog; the engine applies the result later through ApplyMetadata.
type Intent struct {
	Kind   IntentKind `json:"kind"`
	ROIID  string     `json:"roiId,omitempty"`
	Anchor roi.Anchor `json:"anchor,omitempty"`
}

type gestureMode int

const (
	gestureIdle gestureMode = iota
	gestureDrawing
	gestureMoving
	gestureResizing
)

func (m gestureMode) String() string {
	switch m {
	case gestureDrawing:
		return "drawing"
	case gestureMoving:
		return "moving"
	case gestureResizing:
		return "resizing"
	default:
		return "idle"
	}
}

type gesture struct {
	mode   gestureMode
	roiID  string
	anchor roi.Anchor
	last   geom.Point
}

// Engine owns the ROI collection, the selection and the pointer gesture for one image.
// It is not safe for concurrent use; hosts feed it one event at a time.
type Engine struct {
	opts Options

	// Image state
	imagePath string
	loaded    bool
	view      Viewport

	rois    *roi.Collection
	gesture gesture
	cursor  roi.Cursor
}

// New creates an engine with typeid ROI ids. It panics if opts fails Validate; hosts load
// profiles through config.LoadEngine or start from DefaultOptions.
func New(opts Options) *Engine {
	return NewWithIDs(opts, nil)
}

// NewWithIDs creates an engine that allocates ROI ids with newID. Like New, it panics on
// invalid options.
func NewWithIDs(opts Options, newID func() string) *Engine {
	if err := opts.Validate(); err != nil {
		panic(fmt.Sprintf("engine: invalid options: %v", err))
	}
	return &Engine{
		opts: opts,
		view: Viewport{Scale: 1},
		rois: roi.NewCollection(newID),
	}
}

// Options returns the engine's interaction profile.
func (e *Engine) Options() Options { return e.opts }

// --- Commands (host → engine) ---

// LoadImage switches to a new image. The collection, name sequence, selection and gesture
// are reset and the scale returns to 1.
func (e *Engine) LoadImage(path string, size geom.Size) error {
	if size.Empty() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImage, size.Width, size.Height)
	}
	e.imagePath = path
	e.loaded = true
	e.view = Viewport{Scale: 1, Image: size}
	e.rois.Clear()
	e.gesture = gesture{}
	e.cursor = roi.CursorCrosshair
	return nil
}

// SetScale sets the zoom factor, clamped to the profile's range.
func (e *Engine) SetScale(f float64) error {
	if !e.loaded {
		return ErrNoImage
	}
	if !validScale(f) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, f)
	}
	e.view.Scale = e.clampScale(f)
	return nil
}

// ZoomIn multiplies the scale by the zoom-in factor.
func (e *Engine) ZoomIn() error {
	return e.SetScale(e.view.Scale * e.opts.ZoomInFactor)
}

// ZoomOut multiplies the scale by the zoom-out factor.
func (e *Engine) ZoomOut() error {
	return e.SetScale(e.view.Scale * e.opts.ZoomOutFactor)
}

// FitTo picks the largest scale at which the whole image fits a viewW×viewH viewport.
func (e *Engine) FitTo(viewW, viewH float64) error {
	if !e.loaded {
		return ErrNoImage
	}
	if viewW <= 0 || viewH <= 0 {
		return fmt.Errorf("%w: viewport %vx%v", ErrInvalidScale, viewW, viewH)
	}
	return e.SetScale(min(viewW/float64(e.view.Image.Width), viewH/float64(e.view.Image.Height)))
}

// PointerDown handles a button press at a display-space point. Presses off the image are
// ignored. A press while a gesture is still active commits that gesture first.
func (e *Engine) PointerDown(p geom.PointF, scale float64) Intent {
	pt, ok := e.project(p, scale)
	if !ok {
		return Intent{}
	}
	if e.gesture.mode != gestureIdle {
		e.PointerUp()
	}

	hit := HitTest(e.rois, pt, e.view.Scale, e.opts)
	switch hit.Kind {
	case TargetIcon:
		if hit.Icon == roi.IconGear {
			return Intent{Kind: IntentOpenEditor, ROIID: hit.ROIID}
		}
		dup, err := e.rois.Duplicate(hit.ROIID, e.duplicateOffset())
		if err != nil {
			return Intent{}
		}
		return Intent{Kind: IntentDuplicate, ROIID: dup.ID}

	case TargetHandle, TargetEdge:
		_ = e.rois.Select(hit.ROIID)
		e.gesture = gesture{mode: gestureResizing, roiID: hit.ROIID, anchor: hit.Anchor, last: pt}
		return Intent{Kind: IntentResize, ROIID: hit.ROIID, Anchor: hit.Anchor}

	case TargetBody:
		_ = e.rois.Select(hit.ROIID)
		e.gesture = gesture{mode: gestureMoving, roiID: hit.ROIID, last: pt}
		return Intent{Kind: IntentMove, ROIID: hit.ROIID}
	}

	r := e.rois.Create(pt, pt)
	r.EdgeThickness = e.opts.EdgeThickness
	_ = e.rois.Select(r.ID)
	e.gesture = gesture{mode: gestureDrawing, roiID: r.ID, last: pt}
	return Intent{Kind: IntentDraw, ROIID: r.ID}
}

// PointerMove updates hover presentation and advances the active gesture. It reports whether
// the point was on the image.
func (e *Engine) PointerMove(p geom.PointF, scale float64) bool {
	pt, ok := e.project(p, scale)
	if !ok {
		return false
	}
	e.hover(pt)

	if e.gesture.mode == gestureIdle {
		return true
	}
	r, ok := e.rois.Get(e.gesture.roiID)
	if !ok {
		e.gesture = gesture{}
		return true
	}
	d := pt.Sub(e.gesture.last)
	switch e.gesture.mode {
	case gestureDrawing:
		r.End = pt
	case gestureMoving:
		r.Translate(d.X, d.Y)
	case gestureResizing:
		r.Resize(e.gesture.anchor, d.X, d.Y)
	}
	e.gesture.last = pt
	return true
}

// PointerUp ends the active gesture. The edited bounds and the selection are kept.
func (e *Engine) PointerUp() {
	e.gesture = gesture{}
}

// DoubleClick selects the first ROI whose body contains p and asks the host to open the editor.
func (e *Engine) DoubleClick(p geom.PointF, scale float64) Intent {
	pt, ok := e.project(p, scale)
	if !ok {
		return Intent{}
	}
	r, ok := BodyAt(e.rois, pt, e.opts.HitOrder)
	if !ok {
		return Intent{}
	}
	_ = e.rois.Select(r.ID)
	return Intent{Kind: IntentOpenEditor, ROIID: r.ID}
}

// Select makes id the current selection.
func (e *Engine) Select(id string) error {
	return e.rois.Select(id)
}

// Deselect clears the selection.
func (e *Engine) Deselect() {
	e.rois.Deselect()
}

// Delete removes a ROI. Removing the ROI under an active gesture ends the gesture.
func (e *Engine) Delete(id string) error {
	if err := e.rois.Remove(id); err != nil {
		return err
	}
	if e.gesture.roiID == id {
		e.gesture = gesture{}
	}
	return nil
}

// DeleteSelected removes the selected ROI.
func (e *Engine) DeleteSelected() error {
	id := e.rois.SelectedID()
	if id == "" {
		return ErrNoSelection
	}
	return e.Delete(id)
}

// ClearAll removes every ROI and restarts naming at ROI_1.
func (e *Engine) ClearAll() {
	e.rois.Clear()
	e.gesture = gesture{}
}

// Duplicate copies a ROI offset by the duplicate offset and selects the copy. An empty id
// duplicates the selection.
func (e *Engine) Duplicate(id string) (ROIView, error) {
	if id == "" {
		id = e.rois.SelectedID()
		if id == "" {
			return ROIView{}, ErrNoSelection
		}
	}
	dup, err := e.rois.Duplicate(id, e.duplicateOffset())
	if err != nil {
		return ROIView{}, err
	}
	return e.snapshot(dup), nil
}

// Metadata is the editable annotation of a ROI.
type Metadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// EditorView is what the host's metadata dialog shows.
type EditorView struct {
	ID       string    `json:"id"`
	Metadata Metadata  `json:"metadata"`
	Rect     geom.Rect `json:"rect"`
}

// EditorView returns the current metadata of a ROI for editing.
func (e *Engine) EditorView(id string) (EditorView, error) {
	r, ok := e.rois.Get(id)
	if !ok {
		return EditorView{}, roi.ErrNotFound
	}
	return EditorView{
		ID: r.ID,
		Metadata: Metadata{
			Name:        r.Name,
			Description: r.Description,
			Tags:        append([]string{}, r.Tags...),
		},
		Rect: r.Rect(),
	}, nil
}

// ApplyMetadata stores an accepted edit. The name is trimmed and must be unique; tags are
// normalised and de-duplicated. A rejected name leaves the ROI unchanged.
func (e *Engine) ApplyMetadata(id string, m Metadata) error {
	r, ok := e.rois.Get(id)
	if !ok {
		return roi.ErrNotFound
	}
	if err := e.rois.Rename(id, m.Name); err != nil {
		return err
	}
	r.Description = m.Description
	r.SetTags(m.Tags)
	return nil
}

// LoadROISet replaces the collection with a persisted set. The whole set is validated before
// the swap; the selection and gesture are cleared. The image is left as is, so the set may
// describe a different image than the one displayed.
func (e *Engine) LoadROISet(set document.ROISet) error {
	rois := make([]*roi.ROI, 0, len(set.ROIs))
	for _, rec := range set.ROIs {
		r := roi.New(e.newID(), rec.Name, rec.Start, rec.End)
		r.Description = rec.Description
		r.SetTags(rec.Tags)
		r.EdgeThickness = e.opts.EdgeThickness
		rois = append(rois, r)
	}
	if err := e.rois.Replace(rois); err != nil {
		return fmt.Errorf("load roi set: %w", err)
	}
	e.gesture = gesture{}
	return nil
}

// --- Queries (host ← engine) ---

// HasImage reports whether an image is loaded.
func (e *Engine) HasImage() bool { return e.loaded }

// ImagePath returns the path of the loaded image.
func (e *Engine) ImagePath() string { return e.imagePath }

// ImageMatches reports whether path is the loaded image, compared verbatim.
func (e *Engine) ImageMatches(path string) bool {
	return e.loaded && e.imagePath == path
}

// Viewport returns the current view state.
func (e *Engine) Viewport() Viewport { return e.view }

// Cursor returns the hover cursor computed on the last pointer move.
func (e *Engine) Cursor() roi.Cursor { return e.cursor }

// ROIView is a read-only snapshot of one ROI.
type ROIView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Tags           []string   `json:"tags"`
	Start          geom.Point `json:"start"`
	End            geom.Point `json:"end"`
	Rect           geom.Rect  `json:"rect"`
	Selected       bool       `json:"selected"`
	IconOpacity    float64    `json:"iconOpacity"`
	IconBackground uint8      `json:"iconBackground"`
}

// ROIs returns every ROI in collection order.
func (e *Engine) ROIs() []ROIView {
	all := e.rois.All()
	views := make([]ROIView, 0, len(all))
	for _, r := range all {
		views = append(views, e.snapshot(r))
	}
	return views
}

// ROI looks up one ROI by id.
func (e *Engine) ROI(id string) (ROIView, bool) {
	r, ok := e.rois.Get(id)
	if !ok {
		return ROIView{}, false
	}
	return e.snapshot(r), true
}

// Selected returns the selected ROI.
func (e *Engine) Selected() (ROIView, bool) {
	r, ok := e.rois.Selected()
	if !ok {
		return ROIView{}, false
	}
	return e.snapshot(r), true
}

// SelectedID returns the selected ROI id or "".
func (e *Engine) SelectedID() string { return e.rois.SelectedID() }

// GestureState describes the active pointer gesture.
type GestureState struct {
	Mode   string     `json:"mode"`
	ROIID  string     `json:"roiId,omitempty"`
	Anchor roi.Anchor `json:"anchor,omitempty"`
}

// Gesture returns the active gesture; Mode is "idle" when none is in progress.
func (e *Engine) Gesture() GestureState {
	return GestureState{Mode: e.gesture.mode.String(), ROIID: e.gesture.roiID, Anchor: e.gesture.anchor}
}

// IconZones returns the selected ROI's gear and duplicate hot-zones in display space.
func (e *Engine) IconZones() (gear, duplicate Rect, ok bool) {
	r, ok := e.rois.Selected()
	if !ok {
		return Rect{}, Rect{}, false
	}
	g, d := r.IconZones(e.view.Scale, e.opts.Icons)
	return toRect(g), toRect(d), true
}

// Document builds the persisted record for the loaded image.
func (e *Engine) Document() (document.ROISet, error) {
	if !e.loaded {
		return document.ROISet{}, ErrNoImage
	}
	all := e.rois.All()
	set := document.ROISet{ImagePath: e.imagePath, ROIs: make([]document.ROIRecord, 0, len(all))}
	for _, r := range all {
		set.ROIs = append(set.ROIs, document.ROIRecord{
			Start:       r.Start,
			End:         r.End,
			Name:        r.Name,
			Description: r.Description,
			Tags:        append([]string{}, r.Tags...),
		})
	}
	return set, nil
}

func (e *Engine) snapshot(r *roi.ROI) ROIView {
	return ROIView{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Tags:           append([]string{}, r.Tags...),
		Start:          r.Start,
		End:            r.End,
		Rect:           r.Rect(),
		Selected:       r.ID == e.rois.SelectedID(),
		IconOpacity:    r.IconOpacity,
		IconBackground: r.IconBackground,
	}
}

// project applies the host's scale and maps p into image space.
func (e *Engine) project(p geom.PointF, scale float64) (geom.Point, bool) {
	if !e.loaded {
		return geom.Point{}, false
	}
	if validScale(scale) {
		e.view.Scale = e.clampScale(scale)
	}
	return e.view.ToImageSpace(p)
}

func (e *Engine) hover(pt geom.Point) {
	if sel, ok := e.rois.Selected(); ok {
		sel.SetIconHover(sel.IconAt(pt, e.view.Scale, e.opts.Icons) != roi.IconNone)
	}
	e.cursor = CursorAt(e.rois, pt, e.view.Scale, e.opts)
}

func (e *Engine) duplicateOffset() geom.Point {
	return geom.Pt(e.opts.DuplicateOffset, e.opts.DuplicateOffset)
}

func (e *Engine) newID() string {
	return e.rois.NewID()
}

func (e *Engine) clampScale(f float64) float64 {
	return max(e.opts.MinScale, min(f, e.opts.MaxScale))
}

func validScale(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func toRect(r geom.Rect) Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}
