package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/roiboard/roiboard/internal/db"
	"github.com/roiboard/roiboard/internal/document"
)

func TestPGStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	s := NewPGStore(pool)
	rec, err := s.Create(ctx, "user_pgtest", document.NewSampleSet("slide.png"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Delete(ctx, rec.ID)

	got, err := s.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Set.ROIs) != 3 || got.Set.ImagePath != "slide.png" {
		t.Fatalf("loaded %+v", got.Set)
	}

	infos, err := s.List(ctx, "user_pgtest")
	if err != nil || len(infos) == 0 || infos[0].ROICount != 3 {
		t.Fatalf("List = %+v, %v", infos, err)
	}

	if _, err := s.Load(ctx, "set_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing Load err = %v", err)
	}
}
