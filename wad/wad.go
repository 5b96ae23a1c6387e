// SPDX-License-Identifier: GPL-2.0-or-later

// Package wad reads the texture directory of Quake (WAD2) and Half-Life
// (WAD3) texture wads.
package wad

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"brushmesh/filesystem"
)

const (
	typPalette    = 0x40
	typQPic       = 0x42 // 66
	typMipTex     = 0x44
	typConsolePic = 0x45
	typMipTex3    = 0x43 // WAD3
)

var (
	magic2 = [4]byte{'W', 'A', 'D', '2'}
	magic3 = [4]byte{'W', 'A', 'D', '3'}
)

type header struct {
	M          [4]byte
	EntryCount uint32
	DirOffset  uint32
}

type lump struct {
	Offset      int32
	Dsize       int32
	Size        int32
	Typ         byte
	Compression byte
	Dummy       int16
	Name        [16]byte
}

type mipHeader struct {
	Name    [16]byte
	Width   uint32
	Height  uint32
	Offsets [4]uint32
}

// MipTex is the directory entry of one texture.
type MipTex struct {
	Name   string
	Width  int32
	Height int32
}

type Wad struct {
	name     string
	textures map[string]MipTex
}

func cString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n != -1 {
		b = b[:n]
	}
	return string(b)
}

func getLumps(data []byte) ([]lump, error) {
	buf := bytes.NewReader(data)
	h := header{}
	if err := binary.Read(buf, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "header")
	}
	if h.M != magic2 && h.M != magic3 {
		return nil, errors.Errorf("no WAD2 or WAD3 id")
	}
	if uint64(h.DirOffset)+uint64(h.EntryCount)*32 > uint64(len(data)) {
		return nil, errors.Errorf("directory exceeds file")
	}
	lumps := make([]lump, h.EntryCount)
	if _, err := buf.Seek(int64(h.DirOffset), io.SeekStart); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &lumps); err != nil {
		return nil, errors.Wrap(err, "directory")
	}
	return lumps, nil
}

// Read parses the texture directory of a wad held in memory.
func Read(name string, data []byte) (*Wad, error) {
	lumps, err := getLumps(data)
	if err != nil {
		return nil, errors.Wrapf(err, "wad %s", name)
	}
	w := &Wad{name: name, textures: make(map[string]MipTex)}
	for _, l := range lumps {
		if l.Typ != typMipTex && l.Typ != typMipTex3 {
			continue
		}
		if l.Compression != 0 {
			continue
		}
		if l.Offset < 0 || int64(l.Offset)+40 > int64(len(data)) {
			return nil, errors.Errorf("wad %s: lump %s exceeds file", name, cString(l.Name[:]))
		}
		var mh mipHeader
		if err := binary.Read(bytes.NewReader(data[l.Offset:]), binary.LittleEndian, &mh); err != nil {
			return nil, errors.Wrapf(err, "wad %s: lump %s", name, cString(l.Name[:]))
		}
		tn := cString(l.Name[:])
		w.textures[strings.ToLower(tn)] = MipTex{
			Name:   tn,
			Width:  int32(mh.Width),
			Height: int32(mh.Height),
		}
	}
	return w, nil
}

// Load reads the named wad from the game filesystem.
func Load(name string) (*Wad, error) {
	data, err := filesystem.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "wad %s", name)
	}
	return Read(name, data)
}

func (w *Wad) String() string {
	return w.name
}

// Texture looks up a texture case insensitively.
func (w *Wad) Texture(name string) (MipTex, bool) {
	t, ok := w.textures[strings.ToLower(name)]
	return t, ok
}

// Names returns the texture names in sorted order.
func (w *Wad) Names() []string {
	n := make([]string, 0, len(w.textures))
	for _, t := range w.textures {
		n = append(n, t.Name)
	}
	sort.Strings(n)
	return n
}

// Write stores a WAD2 with one blank miptex lump per entry. Only the
// directory and the mip headers carry information.
func Write(w io.Writer, textures []MipTex) error {
	var data bytes.Buffer
	data.Write(make([]byte, 12))
	dir := make([]lump, 0, len(textures))
	for _, t := range textures {
		if len(t.Name) > 15 {
			return errors.Errorf("texture name too long: %s", t.Name)
		}
		if t.Width <= 0 || t.Height <= 0 {
			return errors.Errorf("texture %s: bad size %dx%d", t.Name, t.Width, t.Height)
		}
		l := lump{Offset: int32(data.Len()), Typ: typMipTex}
		copy(l.Name[:], t.Name)
		mh := mipHeader{Width: uint32(t.Width), Height: uint32(t.Height)}
		copy(mh.Name[:], t.Name)
		if err := binary.Write(&data, binary.LittleEndian, &mh); err != nil {
			return err
		}
		data.Write(make([]byte, t.Width*t.Height))
		l.Size = int32(data.Len()) - l.Offset
		l.Dsize = l.Size
		dir = append(dir, l)
	}
	h := header{M: magic2, EntryCount: uint32(len(dir)), DirOffset: uint32(data.Len())}
	if err := binary.Write(&data, binary.LittleEndian, dir); err != nil {
		return err
	}
	b := data.Bytes()
	var hb bytes.Buffer
	if err := binary.Write(&hb, binary.LittleEndian, &h); err != nil {
		return err
	}
	copy(b, hb.Bytes())
	_, err := w.Write(b)
	return err
}
