package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/roiboard/roiboard/internal/db"
	"github.com/roiboard/roiboard/internal/document"
	"github.com/roiboard/roiboard/internal/typeid"
)

// PGStore keeps sets in the roi_sets table with the document as JSONB.
type PGStore struct {
	db db.DBTX
}

func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{db: conn}
}

const (
	insertSet = `INSERT INTO roi_sets (id, owner_id, image_path, document)
VALUES ($1, $2, $3, $4)
RETURNING id, owner_id, document, created_at, updated_at`

	updateSet = `UPDATE roi_sets SET image_path = $2, document = $3, updated_at = now()
WHERE id = $1
RETURNING id, owner_id, document, created_at, updated_at`

	selectSet = `SELECT id, owner_id, document, created_at, updated_at FROM roi_sets WHERE id = $1`

	listSets = `SELECT id, image_path, jsonb_array_length(document->'rois'), updated_at
FROM roi_sets WHERE owner_id = $1 ORDER BY updated_at DESC`

	deleteSet = `DELETE FROM roi_sets WHERE id = $1`
)

func (s *PGStore) Create(ctx context.Context, ownerID string, set document.ROISet) (*Record, error) {
	doc, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("marshal roi set: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRow(ctx, insertSet, typeid.NewSetID(), ownerID, set.ImagePath, doc))
	if err != nil {
		return nil, fmt.Errorf("create roi set: %w", err)
	}
	return rec, nil
}

func (s *PGStore) Save(ctx context.Context, id string, set document.ROISet) (*Record, error) {
	doc, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("marshal roi set: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRow(ctx, updateSet, id, set.ImagePath, doc))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save roi set: %w", err)
	}
	return rec, nil
}

func (s *PGStore) Load(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRow(ctx, selectSet, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load roi set: %w", err)
	}
	return rec, nil
}

func (s *PGStore) List(ctx context.Context, ownerID string) ([]document.SetInfo, error) {
	rows, err := s.db.Query(ctx, listSets, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list roi sets: %w", err)
	}
	infos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (document.SetInfo, error) {
		var info document.SetInfo
		var updated time.Time
		if err := row.Scan(&info.ID, &info.ImagePath, &info.ROICount, &updated); err != nil {
			return info, err
		}
		info.UpdatedAt = updated.UTC().Format(time.RFC3339)
		return info, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan roi sets: %w", err)
	}
	return infos, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, deleteSet, id)
	if err != nil {
		return fmt.Errorf("delete roi set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var doc []byte
	if err := row.Scan(&rec.ID, &rec.OwnerID, &doc, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	set, err := document.DecodeBytes(doc)
	if err != nil {
		return nil, err
	}
	rec.Set = set
	return &rec, nil
}
