package roi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/roiboard/roiboard/internal/geom"
)

func testCollection() *Collection {
	n := 0
	return NewCollection(func() string {
		n++
		return fmt.Sprintf("roi_%d", n)
	})
}

func TestCreateAllocatesSequentialNames(t *testing.T) {
	c := testCollection()
	a := c.Create(geom.Pt(0, 0), geom.Pt(1, 1))
	b := c.Create(geom.Pt(0, 0), geom.Pt(1, 1))
	if a.Name != "ROI_1" || b.Name != "ROI_2" {
		t.Fatalf("names = %s, %s", a.Name, b.Name)
	}
	if a.ID == b.ID {
		t.Fatal("ids not unique")
	}
}

func TestRemoveClearsSelection(t *testing.T) {
	c := testCollection()
	a := c.Create(geom.Pt(0, 0), geom.Pt(1, 1))
	if err := c.Select(a.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := c.Remove(a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := c.Selected(); ok || c.SelectedID() != "" {
		t.Fatal("selection survived removal")
	}
	if err := c.Remove(a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove err = %v", err)
	}
}

func TestClearResetsSequence(t *testing.T) {
	c := testCollection()
	c.Create(geom.Pt(0, 0), geom.Pt(1, 1))
	c.Create(geom.Pt(0, 0), geom.Pt(1, 1))
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len = %d", c.Len())
	}
	if r := c.Create(geom.Pt(0, 0), geom.Pt(1, 1)); r.Name != "ROI_1" {
		t.Fatalf("name after clear = %s", r.Name)
	}
}

func TestDuplicate(t *testing.T) {
	c := testCollection()
	src := c.Create(geom.Pt(0, 0), geom.Pt(20, 20))
	src.Description = "d"
	src.Tags = []string{"x", "y"}

	dup, err := c.Duplicate(src.ID, geom.Pt(10, 10))
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.Start != geom.Pt(10, 10) || dup.End != geom.Pt(30, 30) {
		t.Fatalf("bounds = %v-%v", dup.Start, dup.End)
	}
	if dup.Name == src.Name || dup.ID == src.ID {
		t.Fatal("duplicate shares identity with source")
	}
	if c.SelectedID() != dup.ID {
		t.Fatal("duplicate not selected")
	}
	dup.Tags = append(dup.Tags, "z")
	dup.Description = "changed"
	if len(src.Tags) != 2 || src.Description != "d" {
		t.Fatal("mutating duplicate changed source")
	}
}

func TestRename(t *testing.T) {
	c := testCollection()
	a := c.Create(geom.Pt(0, 0), geom.Pt(1, 1))
	b := c.Create(geom.Pt(0, 0), geom.Pt(1, 1))

	if err := c.Rename(a.ID, "  "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("empty rename err = %v", err)
	}
	if err := c.Rename(a.ID, b.Name); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("taken rename err = %v", err)
	}
	if err := c.Rename(a.ID, a.Name); err != nil {
		t.Fatalf("rename to own name: %v", err)
	}
	if err := c.Rename(a.ID, "ROI_7"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if r := c.Create(geom.Pt(0, 0), geom.Pt(1, 1)); r.Name != "ROI_8" {
		t.Fatalf("next name = %s, want ROI_8", r.Name)
	}
}

func TestReplace(t *testing.T) {
	c := testCollection()
	c.Create(geom.Pt(0, 0), geom.Pt(1, 1))

	loaded := []*ROI{
		New("roi_x", "ROI_4", geom.Pt(0, 0), geom.Pt(5, 5)),
		New("roi_y", "", geom.Pt(1, 1), geom.Pt(6, 6)),
	}
	if err := c.Replace(loaded); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if c.Len() != 2 || loaded[1].Name != "ROI_5" {
		t.Fatalf("len=%d unnamed=%s", c.Len(), loaded[1].Name)
	}

	bad := []*ROI{
		New("roi_p", "same", geom.Pt(0, 0), geom.Pt(1, 1)),
		New("roi_q", "same", geom.Pt(0, 0), geom.Pt(1, 1)),
	}
	if err := c.Replace(bad); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("Replace with duplicate names err = %v", err)
	}
	if c.Len() != 2 {
		t.Fatal("failed Replace modified the collection")
	}
}

func TestSequenceObserve(t *testing.T) {
	var s Sequence
	s.Observe("ROI_3")
	s.Observe("ROI_x")
	s.Observe("ROI_2")
	s.Observe("cell")
	if got := s.Next(); got != "ROI_4" {
		t.Fatalf("Next = %s", got)
	}
}
