package document

import "github.com/roiboard/roiboard/internal/geom"

// NewSampleSet returns a small annotated set for demos and smoke tests.
func NewSampleSet(imagePath string) ROISet {
	return ROISet{
		ImagePath: imagePath,
		ROIs: []ROIRecord{
			{
				Start:       geom.Pt(40, 30),
				End:         geom.Pt(160, 110),
				Name:        "ROI_1",
				Description: "Upper left specimen",
				Tags:        []string{"specimen", "reviewed"},
			},
			{
				Start:       geom.Pt(220, 140),
				End:         geom.Pt(180, 90),
				Name:        "ROI_2",
				Description: "",
				Tags:        []string{"artifact"},
			},
			{
				Start: geom.Pt(250, 200),
				End:   geom.Pt(330, 260),
				Name:  "label",
				Tags:  []string{},
			},
		},
	}
}
