// Package export renders ROI sets as CSV or JSON downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roiboard/roiboard/internal/document"
)

// TagSeparator joins tags into a single CSV cell.
const TagSeparator = ";"

var csvHeader = []string{"name", "x", "y", "width", "height", "description", "tags"}

// WriteCSV writes one row per ROI with its normalised bounds.
func WriteCSV(w io.Writer, set document.ROISet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range set.ROIs {
		rect := r.Rect()
		row := []string{
			r.Name,
			strconv.Itoa(rect.X),
			strconv.Itoa(rect.Y),
			strconv.Itoa(rect.Width),
			strconv.Itoa(rect.Height),
			r.Description,
			strings.Join(r.Tags, TagSeparator),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the set in the ROI-set file format.
func WriteJSON(w io.Writer, set document.ROISet) error {
	return document.Encode(w, set)
}
