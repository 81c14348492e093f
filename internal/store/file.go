package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/roiboard/roiboard/internal/document"
	"github.com/roiboard/roiboard/internal/typeid"
)

// FileStore keeps each set as <id>.json in the ROI-set file format, with ownership and
// timestamps in a <id>.meta.json sidecar.
type FileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

type fileMeta struct {
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create set dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) Create(ctx context.Context, ownerID string, set document.ROISet) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := &Record{ID: typeid.NewSetID(), OwnerID: ownerID, Set: set, CreatedAt: now, UpdatedAt: now}
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) Save(ctx context.Context, id string, set document.ROISet) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(id)
	if err != nil {
		return nil, err
	}
	rec.Set = set
	rec.UpdatedAt = s.now().UTC()
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

func (s *FileStore) List(ctx context.Context, ownerID string) ([]document.SetInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	var recs []*Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".meta.json") {
			continue
		}
		rec, err := s.read(strings.TrimSuffix(name, ".meta.json"))
		if err != nil {
			return nil, err
		}
		if rec.OwnerID == ownerID {
			recs = append(recs, rec)
		}
	}
	slices.SortFunc(recs, func(a, b *Record) int { return b.UpdatedAt.Compare(a.UpdatedAt) })

	infos := make([]document.SetInfo, 0, len(recs))
	for _, rec := range recs {
		infos = append(infos, rec.Info())
	}
	return infos, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setPath, metaPath, err := s.paths(id)
	if err != nil {
		return err
	}
	if err := os.Remove(metaPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete set: %w", err)
	}
	if err := os.Remove(setPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete set: %w", err)
	}
	return nil
}

func (s *FileStore) read(id string) (*Record, error) {
	setPath, metaPath, err := s.paths(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read set meta: %w", err)
	}
	var meta fileMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode set meta %s: %w", id, err)
	}
	set, err := document.ReadFile(setPath)
	if err != nil {
		return nil, err
	}
	return &Record{ID: id, OwnerID: meta.OwnerID, Set: set, CreatedAt: meta.CreatedAt, UpdatedAt: meta.UpdatedAt}, nil
}

// write saves the set before the sidecar, so a listed set always has its document.
func (s *FileStore) write(rec *Record) error {
	setPath, metaPath, err := s.paths(rec.ID)
	if err != nil {
		return err
	}
	if err := document.WriteFile(setPath, rec.Set); err != nil {
		return err
	}
	data, err := json.Marshal(fileMeta{OwnerID: rec.OwnerID, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt})
	if err != nil {
		return fmt.Errorf("encode set meta: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("write set meta: %w", err)
	}
	return nil
}

// paths rejects anything but a set typeid so ids can never escape the directory.
func (s *FileStore) paths(id string) (string, string, error) {
	if err := typeid.Validate(id, typeid.PrefixSet); err != nil {
		return "", "", ErrNotFound
	}
	return filepath.Join(s.dir, id+".json"), filepath.Join(s.dir, id+".meta.json"), nil
}
