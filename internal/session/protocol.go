package session

import (
	"encoding/json"

	"github.com/roiboard/roiboard/internal/engine"
	"github.com/roiboard/roiboard/internal/roi"
)

// Message is the envelope for every frame in both directions. Replies carry the seq of the
// request they answer.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client → server
	TypeImageLoad    = "image.load"
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypeDoubleClick  = "pointer.dblclick"
	TypeViewScale    = "view.scale"
	TypeViewZoomIn   = "view.zoom_in"
	TypeViewZoomOut  = "view.zoom_out"
	TypeViewFit      = "view.fit"
	TypeROISelect    = "roi.select"
	TypeROIDelete    = "roi.delete"
	TypeROIClear     = "roi.clear"
	TypeROIDuplicate = "roi.duplicate"
	TypeROIEdit      = "roi.edit"
	TypeSetSave      = "set.save"
	TypeSetLoad      = "set.load"

	// Server → client
	TypeWelcome     = "welcome"
	TypeViewState   = "view.state"
	TypeEditorOpen  = "editor.open"
	TypeSetMismatch = "set.mismatch"
	TypeSetSaved    = "set.saved"
	TypeError       = "error"
)

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
}

// ImageLoadPayload names an uploaded asset, or a host-side image with its intrinsic size.
type ImageLoadPayload struct {
	AssetID string `json:"assetId,omitempty"`
	Path    string `json:"path,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// PointerPayload is a display-space point. A zero scale means the session's current zoom.
type PointerPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale,omitempty"`
}

type ScalePayload struct {
	Scale float64 `json:"scale"`
}

type FitPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TargetPayload addresses one ROI. An empty id means the selection.
type TargetPayload struct {
	ID string `json:"id,omitempty"`
}

type EditPayload struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type SetSavePayload struct {
	SetID string `json:"setId,omitempty"`
}

// SetLoadPayload opens a stored set. When the set was drawn on another image the host answers
// the set.mismatch prompt by re-sending with SwitchImage (open the set's image too) or
// KeepImage (put the ROIs on the current image). Width and Height give the size of a
// non-asset image to switch to.
type SetLoadPayload struct {
	SetID       string `json:"setId"`
	SwitchImage bool   `json:"switchImage,omitempty"`
	KeepImage   bool   `json:"keepImage,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type SetSavedPayload struct {
	SetID    string `json:"setId"`
	ROICount int    `json:"roiCount"`
}

// SetMismatchPayload asks the host to confirm switching to the image a set was drawn on.
type SetMismatchPayload struct {
	SetID        string `json:"setId"`
	SetImage     string `json:"setImage"`
	CurrentImage string `json:"currentImage,omitempty"`
}

type ViewStatePayload struct {
	ImagePath  string               `json:"imagePath,omitempty"`
	Viewport   engine.Viewport      `json:"viewport"`
	ROIs       []engine.ROIView     `json:"rois"`
	SelectedID string               `json:"selectedId,omitempty"`
	Cursor     roi.Cursor           `json:"cursor"`
	Gesture    engine.GestureState  `json:"gesture"`
	Status     string               `json:"status"`
	Overlay    []engine.DrawCommand `json:"overlay"`
	Intent     *engine.Intent       `json:"intent,omitempty"`
}

type ErrorPayload struct {
	Request string `json:"request"`
	Message string `json:"message"`
}
