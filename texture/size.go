// SPDX-License-Identifier: GPL-2.0-or-later

// Package texture resolves texture names used by map faces to their pixel
// dimensions and tracks which scene objects hold on to which texture.
package texture

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"brushmesh/filesystem"
	"brushmesh/wad"
)

// Dir is the directory loose textures are looked up in.
const Dir = "textures"

// ErrNotFound is returned by Lookup for names neither a wad nor an image
// file provides.
var ErrNotFound = errors.New("texture not found")

type decoder struct {
	ext    string
	config func(io.Reader) (image.Config, error)
}

// Tried in order, first hit wins.
var decoders = []decoder{
	{".png", png.DecodeConfig},
	{".tga", tga.DecodeConfig},
	{".jpg", jpeg.DecodeConfig},
	{".jpeg", jpeg.DecodeConfig},
	{".bmp", bmp.DecodeConfig},
	{".webp", webp.DecodeConfig},
}

type size struct {
	width, height int
}

// Sizer answers texture size queries for the map parser. Wads are asked
// first, then image files below Dir in the game filesystem. Unknown textures
// are 1x1. All methods are safe for concurrent use.
type Sizer struct {
	mu    sync.RWMutex
	wads  []*wad.Wad
	sizes map[string]size
}

func NewSizer(wads ...*wad.Wad) *Sizer {
	return &Sizer{
		wads:  wads,
		sizes: make(map[string]size),
	}
}

// AddWad makes the textures of w visible. Cached misses are forgotten.
func (s *Sizer) AddWad(w *wad.Wad) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wads = append(s.wads, w)
	for k, v := range s.sizes {
		if v.width == 0 {
			delete(s.sizes, k)
		}
	}
}

// Size implements mapfile.TextureSizeFunc.
func (s *Sizer) Size(name string) (float32, float32) {
	key := strings.ToLower(name)
	s.mu.RLock()
	sz, ok := s.sizes[key]
	s.mu.RUnlock()
	if !ok {
		w, h, err := s.Lookup(name)
		s.mu.Lock()
		if sz, ok = s.sizes[key]; !ok {
			sz = size{w, h}
			s.sizes[key] = sz
			if err != nil {
				slog.Warn("Missing texture", "name", name, "err", err)
			}
		}
		s.mu.Unlock()
	}
	if sz.width == 0 {
		return 1, 1
	}
	return float32(sz.width), float32(sz.height)
}

// Lookup resolves name without caching. Missing textures report 0x0 and
// ErrNotFound.
func (s *Sizer) Lookup(name string) (int, int, error) {
	s.mu.RLock()
	wads := s.wads
	s.mu.RUnlock()
	for _, w := range wads {
		if t, ok := w.Texture(name); ok {
			return int(t.Width), int(t.Height), nil
		}
	}
	base := path.Join(Dir, name)
	for _, d := range decoders {
		f, err := filesystem.Open(base + d.ext)
		if err != nil {
			continue
		}
		cfg, err := d.config(f)
		f.Close()
		if err != nil {
			return 0, 0, errors.Wrapf(err, "%s%s", base, d.ext)
		}
		if cfg.Width <= 0 || cfg.Height <= 0 {
			return 0, 0, errors.Errorf("%s%s: empty image", base, d.ext)
		}
		return cfg.Width, cfg.Height, nil
	}
	return 0, 0, errors.Wrap(ErrNotFound, name)
}
