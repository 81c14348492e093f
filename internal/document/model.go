// Package document defines the persisted ROI-set record and its JSON codec.
package document

import "github.com/roiboard/roiboard/internal/geom"

// ROISet binds a list of ROIs to the image they annotate. ImagePath is stored verbatim.
type ROISet struct {
	ImagePath string      `json:"image_path"`
	ROIs      []ROIRecord `json:"rois"`
}

type ROIRecord struct {
	Start       geom.Point `json:"start"`
	End         geom.Point `json:"end"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
}

// Rect returns the normalised bounds of the record.
func (r ROIRecord) Rect() geom.Rect {
	return geom.Normalize(r.Start, r.End)
}

// SetInfo is the listing view of a stored set.
type SetInfo struct {
	ID        string `json:"id"`
	ImagePath string `json:"imagePath"`
	ROICount  int    `json:"roiCount"`
	UpdatedAt string `json:"updatedAt"`
}
