package document

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the ROI areas of a set, in square image pixels.
type Summary struct {
	Count      int            `json:"count"`
	TotalArea  float64        `json:"totalArea"`
	MeanArea   float64        `json:"meanArea"`
	StdDevArea float64        `json:"stdDevArea"`
	MedianArea float64        `json:"medianArea"`
	MinArea    float64        `json:"minArea"`
	MaxArea    float64        `json:"maxArea"`
	Tags       map[string]int `json:"tags"`
}

func Summarize(set ROISet) Summary {
	s := Summary{Count: len(set.ROIs), Tags: make(map[string]int)}
	if s.Count == 0 {
		return s
	}

	areas := make([]float64, 0, s.Count)
	for _, r := range set.ROIs {
		rect := r.Rect()
		a := float64(rect.Width) * float64(rect.Height)
		areas = append(areas, a)
		s.TotalArea += a
		for _, t := range r.Tags {
			s.Tags[t]++
		}
	}
	sort.Float64s(areas)

	s.MeanArea, s.StdDevArea = stat.MeanStdDev(areas, nil)
	if s.Count < 2 {
		s.StdDevArea = 0
	}
	s.MedianArea = stat.Quantile(0.5, stat.Empirical, areas, nil)
	s.MinArea = areas[0]
	s.MaxArea = areas[len(areas)-1]
	return s
}

// TagNames returns the tags seen in the summary, sorted.
func (s Summary) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for t := range s.Tags {
		names = append(names, t)
	}
	slices.Sort(names)
	return names
}
