package roi

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roiboard/roiboard/internal/geom"
	"github.com/roiboard/roiboard/internal/typeid"
)

var (
	ErrNotFound  = errors.New("roi not found")
	ErrNameTaken = errors.New("roi name already in use")
	ErrEmptyName = errors.New("roi name is empty")
	ErrDuplicate = errors.New("roi id already in collection")
)

// Collection is the ordered set of ROIs for one image. Order is append order; selection is held
// as an id so removing a ROI can never leave a dangling reference.
type Collection struct {
	items    []*ROI
	seq      Sequence
	selected string
	newID    func() string
}

// NewCollection returns an empty collection. newID defaults to typeid ROI ids.
func NewCollection(newID func() string) *Collection {
	if newID == nil {
		newID = typeid.NewROIID
	}
	return &Collection{newID: newID}
}

// Len returns the number of ROIs.
func (c *Collection) Len() int { return len(c.items) }

// All returns the ROIs in collection order. The slice is a copy; the ROIs are not.
func (c *Collection) All() []*ROI {
	return slices.Clone(c.items)
}

// Get looks up a ROI by id.
func (c *Collection) Get(id string) (*ROI, bool) {
	i := c.index(id)
	if i < 0 {
		return nil, false
	}
	return c.items[i], true
}

// Create allocates a ROI spanning start and end with a fresh id and name, and appends it.
func (c *Collection) Create(start, end geom.Point) *ROI {
	r := New(c.newID(), c.nextName(), start, end)
	c.items = append(c.items, r)
	return r
}

// Remove deletes a ROI, clearing the selection if it pointed at it.
func (c *Collection) Remove(id string) error {
	i := c.index(id)
	if i < 0 {
		return ErrNotFound
	}
	c.items = slices.Delete(c.items, i, i+1)
	if c.selected == id {
		c.selected = ""
	}
	return nil
}

// Clear removes every ROI, clears the selection and restarts naming.
func (c *Collection) Clear() {
	c.items = nil
	c.selected = ""
	c.seq.Reset()
}

// Replace swaps in a whole set of ROIs. The set is validated before anything changes.
// Explicit ROI_<n> names advance the sequence so later names do not collide.
func (c *Collection) Replace(rois []*ROI) error {
	names := make(map[string]struct{}, len(rois))
	ids := make(map[string]struct{}, len(rois))
	for _, r := range rois {
		if _, dup := ids[r.ID]; dup || r.ID == "" {
			return fmt.Errorf("%w: %q", ErrDuplicate, r.ID)
		}
		ids[r.ID] = struct{}{}
		if r.Name == "" {
			continue
		}
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("%w: %s", ErrNameTaken, r.Name)
		}
		names[r.Name] = struct{}{}
	}

	c.items = slices.Clone(rois)
	c.selected = ""
	c.seq.Reset()
	for _, r := range c.items {
		c.seq.Observe(r.Name)
	}
	for _, r := range c.items {
		if r.Name == "" {
			r.Name = c.nextName()
		}
	}
	return nil
}

// Duplicate clones a ROI offset by delta, appends the copy and selects it.
func (c *Collection) Duplicate(id string, delta geom.Point) (*ROI, error) {
	src, ok := c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	dup := src.Clone(c.newID(), c.nextName(), delta)
	c.items = append(c.items, dup)
	c.selected = dup.ID
	return dup, nil
}

// Select makes id the current selection.
func (c *Collection) Select(id string) error {
	if c.index(id) < 0 {
		return ErrNotFound
	}
	c.selected = id
	return nil
}

// Deselect clears the selection.
func (c *Collection) Deselect() { c.selected = "" }

// SelectedID returns the selected ROI id, or "" when nothing is selected.
func (c *Collection) SelectedID() string { return c.selected }

// Selected returns the selected ROI.
func (c *Collection) Selected() (*ROI, bool) {
	if c.selected == "" {
		return nil, false
	}
	return c.Get(c.selected)
}

// Rename changes a ROI's name. Names are trimmed and must be unique.
func (c *Collection) Rename(id, name string) error {
	r, ok := c.Get(id)
	if !ok {
		return ErrNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if c.NameTaken(name, id) {
		return fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	r.Name = name
	c.seq.Observe(name)
	return nil
}

// NameTaken reports whether a ROI other than exceptID uses name.
func (c *Collection) NameTaken(name, exceptID string) bool {
	for _, r := range c.items {
		if r.Name == name && r.ID != exceptID {
			return true
		}
	}
	return false
}

func (c *Collection) nextName() string {
	for {
		name := c.seq.Next()
		if !c.NameTaken(name, "") {
			return name
		}
	}
}

func (c *Collection) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.items, func(r *ROI) bool { return r.ID == id })
}

// NewID allocates an id from the collection's id source.
func (c *Collection) NewID() string {
	return c.newID()
}
