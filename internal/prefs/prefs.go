// Package prefs persists per-user desktop preferences (recently opened files and the last
// zoom) in the platform data directory.
package prefs

import (
	"fmt"
	"slices"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	AppName   = "roiboard"
	MaxRecent = 10

	prefsObject   = "prefs"
	prefsProperty = "user"
)

type Prefs struct {
	Recent []string `yaml:"recent"`
	Zoom   float64  `yaml:"zoom"`
}

func Default() Prefs {
	return Prefs{Zoom: 1}
}

// Store holds the preferences in memory and writes them through gdata. A nil manager keeps
// them in memory only.
type Store struct {
	data  *gdata.Manager
	prefs Prefs
}

// Open opens the gdata storage for appName and loads the saved preferences.
func Open(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	s := New(m)
	if err := s.Load(); err != nil {
		return s, err
	}
	return s, nil
}

func New(m *gdata.Manager) *Store {
	return &Store{data: m, prefs: Default()}
}

// Load replaces the in-memory preferences with the saved ones. Missing or unreadable data
// leaves the defaults in place.
func (s *Store) Load() error {
	s.prefs = Default()
	if s.data == nil || !s.data.ObjectPropExists(prefsObject, prefsProperty) {
		return nil
	}
	raw, err := s.data.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	var p Prefs
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("decode preferences: %w", err)
	}
	if p.Zoom <= 0 {
		p.Zoom = 1
	}
	if len(p.Recent) > MaxRecent {
		p.Recent = p.Recent[:MaxRecent]
	}
	s.prefs = p
	return nil
}

func (s *Store) Save() error {
	if s.data == nil {
		return nil
	}
	raw, err := yaml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.data.SaveObjectProp(prefsObject, prefsProperty, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Recent returns the recently used files, newest first.
func (s *Store) Recent() []string {
	return slices.Clone(s.prefs.Recent)
}

// AddRecent moves path to the front of the recent list, dropping the oldest entry past
// MaxRecent.
func (s *Store) AddRecent(path string) {
	if path == "" {
		return
	}
	recent := slices.DeleteFunc(s.prefs.Recent, func(p string) bool { return p == path })
	recent = slices.Insert(recent, 0, path)
	if len(recent) > MaxRecent {
		recent = recent[:MaxRecent]
	}
	s.prefs.Recent = recent
}

func (s *Store) ClearRecent() { s.prefs.Recent = nil }

func (s *Store) Zoom() float64 { return s.prefs.Zoom }

// SetZoom records the last zoom. Non-positive values are ignored.
func (s *Store) SetZoom(f float64) {
	if f > 0 {
		s.prefs.Zoom = f
	}
}
