package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roiboard/roiboard/internal/engine"
	"github.com/roiboard/roiboard/internal/geom"
	"github.com/roiboard/roiboard/internal/typeid"
)

var (
	ErrUnknownType  = errors.New("unknown message type")
	ErrBadPayload   = errors.New("invalid payload")
	ErrAnonymous    = errors.New("sign in required")
	ErrUnavailable  = errors.New("not available on this server")
	ErrImageMissing = errors.New("image not available")
)

func (c *Client) handleMessage(ctx context.Context, msg *Message) {
	var (
		intent  engine.Intent
		changed = true
		err     error
	)

	switch msg.Type {
	case TypeImageLoad:
		err = c.handleImageLoad(msg)

	case TypePointerDown:
		var p PointerPayload
		if err = decode(msg, &p); err == nil {
			intent = c.engine.PointerDown(geom.PointF{X: p.X, Y: p.Y}, c.scale(p.Scale))
		}
	case TypePointerMove:
		var p PointerPayload
		if err = decode(msg, &p); err == nil {
			changed = c.engine.PointerMove(geom.PointF{X: p.X, Y: p.Y}, c.scale(p.Scale))
		}
	case TypePointerUp:
		c.engine.PointerUp()
	case TypeDoubleClick:
		var p PointerPayload
		if err = decode(msg, &p); err == nil {
			intent = c.engine.DoubleClick(geom.PointF{X: p.X, Y: p.Y}, c.scale(p.Scale))
		}

	case TypeViewScale:
		var p ScalePayload
		if err = decode(msg, &p); err == nil {
			err = c.engine.SetScale(p.Scale)
		}
	case TypeViewZoomIn:
		err = c.engine.ZoomIn()
	case TypeViewZoomOut:
		err = c.engine.ZoomOut()
	case TypeViewFit:
		var p FitPayload
		if err = decode(msg, &p); err == nil {
			err = c.engine.FitTo(p.Width, p.Height)
		}

	case TypeROISelect:
		var p TargetPayload
		if err = decode(msg, &p); err == nil {
			if p.ID == "" {
				c.engine.Deselect()
			} else {
				err = c.engine.Select(p.ID)
			}
		}
	case TypeROIDelete:
		var p TargetPayload
		if err = decode(msg, &p); err == nil {
			if p.ID == "" {
				err = c.engine.DeleteSelected()
			} else {
				err = c.engine.Delete(p.ID)
			}
		}
	case TypeROIClear:
		c.engine.ClearAll()
	case TypeROIDuplicate:
		var p TargetPayload
		if err = decode(msg, &p); err == nil {
			var dup engine.ROIView
			if dup, err = c.engine.Duplicate(c.target(p.ID)); err == nil {
				intent = engine.Intent{Kind: engine.IntentDuplicate, ROIID: dup.ID}
			}
		}
	case TypeROIEdit:
		var p EditPayload
		if err = decode(msg, &p); err == nil {
			err = c.engine.ApplyMetadata(c.target(p.ID), engine.Metadata{
				Name:        p.Name,
				Description: p.Description,
				Tags:        p.Tags,
			})
		}

	case TypeSetSave:
		err = c.handleSetSave(ctx, msg)
		changed = false
	case TypeSetLoad:
		changed, err = c.handleSetLoad(ctx, msg)

	default:
		err = fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}

	if err != nil {
		slog.Debug("request failed", "type", msg.Type, "error", err, "session", c.SessionID)
		c.sendError(msg, err)
		return
	}
	if intent.Kind == engine.IntentOpenEditor {
		if view, err := c.engine.EditorView(intent.ROIID); err == nil {
			c.reply(msg, TypeEditorOpen, view)
		}
	}
	if changed {
		c.sendState(msg, intent)
	}
}

// scale falls back to the current zoom when the host does not send one.
func (c *Client) scale(s float64) float64 {
	if s == 0 {
		return c.engine.Viewport().Scale
	}
	return s
}

func (c *Client) target(id string) string {
	if id == "" {
		return c.engine.SelectedID()
	}
	return id
}

func (c *Client) sendState(req *Message, intent engine.Intent) {
	state := ViewStatePayload{
		ImagePath:  c.engine.ImagePath(),
		Viewport:   c.engine.Viewport(),
		ROIs:       c.engine.ROIs(),
		SelectedID: c.engine.SelectedID(),
		Cursor:     c.engine.Cursor(),
		Gesture:    c.engine.Gesture(),
		Status:     c.engine.Status().String(),
		Overlay:    c.engine.Overlay(),
	}
	if intent.Kind != "" {
		state.Intent = &intent
	}
	c.reply(req, TypeViewState, state)
}

func (c *Client) handleImageLoad(msg *Message) error {
	var p ImageLoadPayload
	if err := decode(msg, &p); err != nil {
		return err
	}
	if p.AssetID != "" {
		return c.loadAsset(p.AssetID)
	}
	if p.Path == "" {
		return fmt.Errorf("%w: assetId or path is required", ErrBadPayload)
	}
	return c.engine.LoadImage(p.Path, geom.Size{Width: p.Width, Height: p.Height})
}

// loadAsset loads an uploaded image. The asset id doubles as the image path, so saved sets
// can be matched and reopened later.
func (c *Client) loadAsset(id string) error {
	if c.manager.assets == nil {
		return fmt.Errorf("assets: %w", ErrUnavailable)
	}
	info, err := c.manager.assets.Info(id)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrImageMissing, id, err)
	}
	return c.engine.LoadImage(info.ID, info.Size)
}

func (c *Client) handleSetSave(ctx context.Context, msg *Message) error {
	if err := c.requireSets(); err != nil {
		return err
	}
	var p SetSavePayload
	if err := decode(msg, &p); err != nil {
		return err
	}
	doc, err := c.engine.Document()
	if err != nil {
		return err
	}

	setID := p.SetID
	if setID == "" {
		set, err := c.manager.sets.Create(ctx, c.UserID, doc)
		if err != nil {
			return err
		}
		setID = set.ID
	} else if _, err := c.manager.sets.Update(ctx, setID, c.UserID, doc); err != nil {
		return err
	}

	c.reply(msg, TypeSetSaved, SetSavedPayload{SetID: setID, ROICount: len(doc.ROIs)})
	return nil
}

// handleSetLoad replaces the collection with a stored set. A set drawn on another image is
// only applied once the host answers with switchImage or keepImage.
func (c *Client) handleSetLoad(ctx context.Context, msg *Message) (bool, error) {
	if err := c.requireSets(); err != nil {
		return false, err
	}
	var p SetLoadPayload
	if err := decode(msg, &p); err != nil {
		return false, err
	}
	set, err := c.manager.sets.Get(ctx, p.SetID, c.UserID)
	if err != nil {
		return false, err
	}
	doc := set.Document

	if !c.engine.ImageMatches(doc.ImagePath) {
		switch {
		case p.SwitchImage:
			if err := c.switchImage(doc.ImagePath, p.Width, p.Height); err != nil {
				return false, err
			}
		case p.KeepImage:
		default:
			c.reply(msg, TypeSetMismatch, SetMismatchPayload{
				SetID:        set.ID,
				SetImage:     doc.ImagePath,
				CurrentImage: c.engine.ImagePath(),
			})
			return false, nil
		}
	}
	if err := c.engine.LoadROISet(doc); err != nil {
		return false, err
	}
	return true, nil
}

// switchImage opens the image a set was drawn on: an asset by id, or a host-side path when the
// host supplies its size.
func (c *Client) switchImage(path string, width, height int) error {
	if typeid.Validate(path, typeid.PrefixAsset) == nil {
		return c.loadAsset(path)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %s: send width and height, or keepImage", ErrImageMissing, path)
	}
	return c.engine.LoadImage(path, geom.Size{Width: width, Height: height})
}

func (c *Client) requireSets() error {
	if c.manager.sets == nil {
		return fmt.Errorf("roi sets: %w", ErrUnavailable)
	}
	if c.UserID == "" {
		return ErrAnonymous
	}
	return nil
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}
