package engine

import (
	"fmt"
	"strings"

	"github.com/roiboard/roiboard/internal/geom"
)

// Status is the one-line summary a host shows in its status bar.
type Status struct {
	ImageLoaded bool       `json:"imageLoaded"`
	Image       geom.Size  `json:"image"`
	Zoom        float64    `json:"zoom"`
	ROICount    int        `json:"roiCount"`
	Selected    string     `json:"selected,omitempty"`
	SelectedBox *geom.Rect `json:"selectedRect,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// Status summarises the image, zoom, ROI count and selection.
func (e *Engine) Status() Status {
	if !e.loaded {
		return Status{}
	}
	s := Status{
		ImageLoaded: true,
		Image:       e.view.Image,
		Zoom:        e.view.Scale,
		ROICount:    e.rois.Len(),
	}
	if r, ok := e.rois.Selected(); ok {
		rect := r.Rect()
		s.Selected = r.Name
		s.SelectedBox = &rect
		s.Tags = append([]string{}, r.Tags...)
	}
	return s
}

func (s Status) String() string {
	if !s.ImageLoaded {
		return "Image not loaded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Image dimensions: %d×%d | Zoom: %.2f× | Number of ROIs:%d",
		s.Image.Width, s.Image.Height, s.Zoom, s.ROICount)
	if s.SelectedBox != nil {
		r := s.SelectedBox
		fmt.Fprintf(&b, " | ROI: %s (%d, %d, %d, %d)", s.Selected, r.X, r.Y, r.Width, r.Height)
		if len(s.Tags) > 0 {
			fmt.Fprintf(&b, " | Tags: %s", strings.Join(s.Tags, ", "))
		}
	}
	return b.String()
}
