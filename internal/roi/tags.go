package roi

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptyTag     = errors.New("tag is empty")
	ErrDuplicateTag = errors.New("tag already present")
)

// NormalizeTag trims surrounding space and converts to NFC so visually identical tags compare equal.
func NormalizeTag(tag string) string {
	return norm.NFC.String(strings.TrimSpace(tag))
}

// SetTags replaces the ROI's tags. Each tag goes through AddTag, so empties and later
// duplicates are dropped and the order of the rest is kept.
func (r *ROI) SetTags(tags []string) {
	r.Tags = make([]string, 0, len(tags))
	for _, t := range tags {
		_ = r.AddTag(t)
	}
}

// AddTag appends a normalised tag. Empty and already present tags are rejected.
func (r *ROI) AddTag(tag string) error {
	tag = NormalizeTag(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	if slices.Contains(r.Tags, tag) {
		return ErrDuplicateTag
	}
	r.Tags = append(r.Tags, tag)
	return nil
}
