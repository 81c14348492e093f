package engine

import (
	"slices"

	"github.com/roiboard/roiboard/internal/geom"
	"github.com/roiboard/roiboard/internal/roi"
)

// TargetKind classifies what a pointer press landed on.
type TargetKind int

const (
	TargetBackground TargetKind = iota
	TargetIcon
	TargetHandle
	TargetEdge
	TargetBody
)

func (k TargetKind) String() string {
	switch k {
	case TargetIcon:
		return "icon"
	case TargetHandle:
		return "handle"
	case TargetEdge:
		return "edge"
	case TargetBody:
		return "body"
	default:
		return "background"
	}
}

// Hit is the resolved target under an image-space point.
type Hit struct {
	Kind   TargetKind
	ROIID  string
	Anchor roi.Anchor
	Icon   roi.Icon
}

// HitTest resolves p against the collection. The selected ROI's icons are tested first; then
// ROIs in hit order, each checked handle, edge, body. The first match wins.
func HitTest(c *roi.Collection, p geom.Point, scale float64, opts Options) Hit {
	if sel, ok := c.Selected(); ok {
		if icon := sel.IconAt(p, scale, opts.Icons); icon != roi.IconNone {
			return Hit{Kind: TargetIcon, ROIID: sel.ID, Icon: icon}
		}
	}
	for _, r := range ordered(c, opts.HitOrder) {
		if h, ok := r.HandleAt(p, opts.HandleSize); ok {
			return Hit{Kind: TargetHandle, ROIID: r.ID, Anchor: h}
		}
		if e, ok := r.EdgeAt(p); ok {
			return Hit{Kind: TargetEdge, ROIID: r.ID, Anchor: e}
		}
		if r.Contains(p) {
			return Hit{Kind: TargetBody, ROIID: r.ID}
		}
	}
	return Hit{Kind: TargetBackground}
}

// CursorAt computes the hover cursor for p. Icons of the selected ROI show a pointer; grab
// handles show the corner's diagonal even outside the tight edge band.
func CursorAt(c *roi.Collection, p geom.Point, scale float64, opts Options) roi.Cursor {
	hit := HitTest(c, p, scale, opts)
	switch hit.Kind {
	case TargetIcon:
		return roi.CursorPointer
	case TargetHandle, TargetEdge:
		return roi.CursorFor(hit.Anchor)
	case TargetBody:
		return roi.CursorMove
	default:
		return roi.CursorCrosshair
	}
}

// BodyAt returns the first ROI, in hit order, whose body contains p.
func BodyAt(c *roi.Collection, p geom.Point, order HitOrder) (*roi.ROI, bool) {
	for _, r := range ordered(c, order) {
		if r.Contains(p) {
			return r, true
		}
	}
	return nil, false
}

func ordered(c *roi.Collection, order HitOrder) []*roi.ROI {
	rois := c.All()
	if order == HitTopmost {
		slices.Reverse(rois)
	}
	return rois
}
