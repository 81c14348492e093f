package engine

import (
	"errors"
	"fmt"

	"github.com/roiboard/roiboard/internal/roi"
)

// HitOrder selects which ROI wins when several overlap under the pointer.
type HitOrder string

const (
	// HitOldest tests ROIs in creation order, so the oldest overlapping ROI is picked.
	HitOldest HitOrder = "oldest"
	// HitTopmost tests ROIs in reverse creation order, matching paint order.
	HitTopmost HitOrder = "topmost"
)

// Options tunes hit tolerances, zoom steps and overlap precedence.
type Options struct {
	HandleSize      int
	EdgeThickness   int
	DuplicateOffset int
	Icons           roi.IconLayout
	ZoomInFactor    float64
	ZoomOutFactor   float64
	MinScale        float64
	MaxScale        float64
	HitOrder        HitOrder
}

// DefaultOptions returns the stock interaction profile.
func DefaultOptions() Options {
	return Options{
		HandleSize:      roi.DefaultHandleSize,
		EdgeThickness:   roi.DefaultEdgeThickness,
		DuplicateOffset: 10,
		Icons:           roi.DefaultIconLayout,
		ZoomInFactor:    1.25,
		ZoomOutFactor:   0.8,
		MinScale:        0.01,
		MaxScale:        64,
		HitOrder:        HitOldest,
	}
}

// Validate checks that every tolerance and factor is usable.
func (o Options) Validate() error {
	var errs []error
	if o.HandleSize <= 0 {
		errs = append(errs, fmt.Errorf("handle size must be positive, got %d", o.HandleSize))
	}
	if o.EdgeThickness <= 0 {
		errs = append(errs, fmt.Errorf("edge thickness must be positive, got %d", o.EdgeThickness))
	}
	if o.DuplicateOffset <= 0 {
		errs = append(errs, fmt.Errorf("duplicate offset must be positive, got %d", o.DuplicateOffset))
	}
	if o.Icons.Size <= 0 || o.Icons.Margin < 0 {
		errs = append(errs, fmt.Errorf("invalid icon layout %+v", o.Icons))
	}
	if o.ZoomInFactor <= 1 {
		errs = append(errs, fmt.Errorf("zoom in factor must be > 1, got %v", o.ZoomInFactor))
	}
	if o.ZoomOutFactor <= 0 || o.ZoomOutFactor >= 1 {
		errs = append(errs, fmt.Errorf("zoom out factor must be in (0, 1), got %v", o.ZoomOutFactor))
	}
	if o.MinScale <= 0 || o.MaxScale < o.MinScale {
		errs = append(errs, fmt.Errorf("invalid scale range [%v, %v]", o.MinScale, o.MaxScale))
	}
	if o.HitOrder != HitOldest && o.HitOrder != HitTopmost {
		errs = append(errs, fmt.Errorf("unknown hit order %q", o.HitOrder))
	}
	return errors.Join(errs...)
}
