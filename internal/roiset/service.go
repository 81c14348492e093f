// Package roiset exposes stored ROI sets to their owners.
package roiset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roiboard/roiboard/internal/document"
	"github.com/roiboard/roiboard/internal/store"
)

var (
	ErrNotFound  = errors.New("roi set not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid roi set")
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Set is the API view of a stored ROI set.
type Set struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	Document  document.ROISet `json:"document"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, userID string, set document.ROISet) (*Set, error) {
	if err := validate(set); err != nil {
		return nil, err
	}
	rec, err := s.store.Create(ctx, userID, set)
	if err != nil {
		return nil, fmt.Errorf("create roi set: %w", err)
	}
	return recordToSet(rec), nil
}

func (s *Service) Get(ctx context.Context, setID, userID string) (*Set, error) {
	rec, err := s.owned(ctx, setID, userID)
	if err != nil {
		return nil, err
	}
	return recordToSet(rec), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]document.SetInfo, error) {
	infos, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list roi sets: %w", err)
	}
	return infos, nil
}

func (s *Service) Update(ctx context.Context, setID, userID string, set document.ROISet) (*Set, error) {
	if err := validate(set); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, setID, userID); err != nil {
		return nil, err
	}
	rec, err := s.store.Save(ctx, setID, set)
	if err != nil {
		return nil, mapStoreError("save roi set", err)
	}
	return recordToSet(rec), nil
}

func (s *Service) Delete(ctx context.Context, setID, userID string) error {
	if _, err := s.owned(ctx, setID, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, setID); err != nil {
		return mapStoreError("delete roi set", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, setID, userID string) (*store.Record, error) {
	rec, err := s.store.Load(ctx, setID)
	if err != nil {
		return nil, mapStoreError("load roi set", err)
	}
	if rec.OwnerID != userID {
		return nil, ErrForbidden
	}
	return rec, nil
}

func validate(set document.ROISet) error {
	if set.ImagePath == "" {
		return fmt.Errorf("%w: image_path is required", ErrInvalid)
	}
	seen := make(map[string]struct{}, len(set.ROIs))
	for i, r := range set.ROIs {
		if r.Name == "" {
			continue
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("%w: roi %d reuses name %q", ErrInvalid, i, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

func mapStoreError(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func recordToSet(rec *store.Record) *Set {
	info := rec.Info()
	return &Set{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Document:  rec.Set,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: info.UpdatedAt,
	}
}
