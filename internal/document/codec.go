package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/roiboard/roiboard/internal/geom"
)

var ErrMalformed = errors.New("malformed roi set")

type rawSet struct {
	ImagePath *string      `json:"image_path"`
	ROIs      *[]rawRecord `json:"rois"`
}

type rawRecord struct {
	Start       *geom.Point `json:"start"`
	End         *geom.Point `json:"end"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
}

// Decode reads a ROI set. image_path and rois are required, as are start and end on every
// record; name, description and tags default to empty for files saved without metadata.
// A name already used by an earlier record is cleared so the loader numbers that ROI afresh.
func Decode(r io.Reader) (ROISet, error) {
	var raw rawSet
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return ROISet{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.ImagePath == nil {
		return ROISet{}, fmt.Errorf("%w: missing image_path", ErrMalformed)
	}
	if raw.ROIs == nil {
		return ROISet{}, fmt.Errorf("%w: missing rois", ErrMalformed)
	}

	set := ROISet{ImagePath: *raw.ImagePath, ROIs: make([]ROIRecord, 0, len(*raw.ROIs))}
	names := make(map[string]struct{}, len(*raw.ROIs))
	for i, rec := range *raw.ROIs {
		if rec.Start == nil || rec.End == nil {
			return ROISet{}, fmt.Errorf("%w: roi %d missing start or end", ErrMalformed, i)
		}
		if _, dup := names[rec.Name]; dup {
			rec.Name = ""
		} else if rec.Name != "" {
			names[rec.Name] = struct{}{}
		}
		tags := rec.Tags
		if tags == nil {
			tags = []string{}
		}
		set.ROIs = append(set.ROIs, ROIRecord{
			Start:       *rec.Start,
			End:         *rec.End,
			Name:        rec.Name,
			Description: rec.Description,
			Tags:        tags,
		})
	}
	return set, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (ROISet, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes set as indented JSON.
func Encode(w io.Writer, set ROISet) error {
	set.ROIs = slices.Clone(set.ROIs)
	if set.ROIs == nil {
		set.ROIs = []ROIRecord{}
	}
	for i := range set.ROIs {
		if set.ROIs[i].Tags == nil {
			set.ROIs[i].Tags = []string{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(set)
}

// ReadFile loads a ROI set from disk.
func ReadFile(path string) (ROISet, error) {
	f, err := os.Open(path)
	if err != nil {
		return ROISet{}, fmt.Errorf("open roi set: %w", err)
	}
	defer f.Close()

	set, err := Decode(f)
	if err != nil {
		return ROISet{}, fmt.Errorf("read %s: %w", path, err)
	}
	return set, nil
}

// WriteFile saves a ROI set, replacing path atomically.
func WriteFile(path string, set ROISet) error {
	var buf bytes.Buffer
	if err := Encode(&buf, set); err != nil {
		return fmt.Errorf("encode roi set: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".roiset-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write roi set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close roi set: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
