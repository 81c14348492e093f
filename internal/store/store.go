// Package store persists ROI sets by id, on disk or in Postgres.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/roiboard/roiboard/internal/document"
)

var ErrNotFound = errors.New("roi set not found")

// Record is a stored ROI set with its ownership and timestamps.
type Record struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	Set       document.ROISet `json:"set"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Info returns the listing view of r.
func (r *Record) Info() document.SetInfo {
	return document.SetInfo{
		ID:        r.ID,
		ImagePath: r.Set.ImagePath,
		ROICount:  len(r.Set.ROIs),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type Store interface {
	Create(ctx context.Context, ownerID string, set document.ROISet) (*Record, error)
	Save(ctx context.Context, id string, set document.ROISet) (*Record, error)
	Load(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, ownerID string) ([]document.SetInfo, error)
	Delete(ctx context.Context, id string) error
}
