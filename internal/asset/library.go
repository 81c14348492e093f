// Package asset stores uploaded source images and reports their intrinsic size.
package asset

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/roiboard/roiboard/internal/geom"
	"github.com/roiboard/roiboard/internal/typeid"
)

var (
	ErrNotFound    = errors.New("asset not found")
	ErrUnsupported = errors.New("unsupported image format")
)

var extensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"tiff": ".tif",
	"webp": ".webp",
}

// Info describes a stored image.
type Info struct {
	ID     string    `json:"id"`
	Path   string    `json:"path"`
	Format string    `json:"format"`
	Size   geom.Size `json:"size"`
}

// Library keeps images on disk as <asset id>.<ext>, byte for byte as uploaded.
type Library struct {
	dir string
}

func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Library{dir: dir}, nil
}

// Dir returns the storage directory.
func (l *Library) Dir() string { return l.dir }

// Save stores an uploaded image under a new id. The stream is spooled to disk first so
// formats whose header is not at the front (TIFF) can still be probed.
func (l *Library) Save(r io.Reader) (*Info, error) {
	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write asset: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("rewind asset: %w", err)
	}
	size, format, err := probe(tmp)
	tmp.Close()
	if err != nil {
		return nil, err
	}

	id := typeid.NewAssetID()
	path := filepath.Join(l.dir, id+extensions[format])
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("store asset: %w", err)
	}
	return &Info{ID: id, Path: path, Format: format, Size: size}, nil
}

// Info resolves an asset id to its file and decodes the header for the intrinsic size.
func (l *Library) Info(id string) (*Info, error) {
	if err := typeid.Validate(id, typeid.PrefixAsset); err != nil {
		return nil, ErrNotFound
	}
	for format, ext := range extensions {
		path := filepath.Join(l.dir, id+ext)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		size, _, err := probe(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", id, err)
		}
		return &Info{ID: id, Path: path, Format: format, Size: size}, nil
	}
	return nil, ErrNotFound
}

// Delete removes an asset file.
func (l *Library) Delete(id string) error {
	info, err := l.Info(id)
	if err != nil {
		return err
	}
	return os.Remove(info.Path)
}

// ProbeFile returns the intrinsic size of an image file on disk.
func ProbeFile(path string) (geom.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.Size{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	size, _, err := probe(f)
	return size, err
}

// probe decodes only the image header.
func probe(r io.Reader) (geom.Size, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return geom.Size{}, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if _, ok := extensions[format]; !ok {
		return geom.Size{}, "", fmt.Errorf("%w: %s", ErrUnsupported, format)
	}
	size := geom.Size{Width: cfg.Width, Height: cfg.Height}
	if size.Empty() {
		return geom.Size{}, "", fmt.Errorf("%w: empty image", ErrUnsupported)
	}
	return size, format, nil
}
