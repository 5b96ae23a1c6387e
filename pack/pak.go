// SPDX-License-Identifier: GPL-2.0-or-later

// Package pack reads Quake PAK archives.
package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

const entrySize = 64

type Pack struct {
	f     *os.File
	files map[string]*qfile
	name  string
}

type qfile struct {
	name   string
	offset int64
	size   int64
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}

// Open returns a io.SectionReader or os.ErrNotExist if the pak has no entry
// with the provided name. Names are matched case insensitively.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[normalize(name)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NewSectionReader(p.f, q.offset, q.size), nil
}

// Size returns the size of the named entry.
func (p *Pack) Size(name string) (int64, bool) {
	q, ok := p.files[normalize(name)]
	if !ok {
		return 0, false
	}
	return q.size, true
}

// Names returns all entry names in sorted order.
func (p *Pack) Names() []string {
	n := make([]string, 0, len(p.files))
	for _, q := range p.files {
		n = append(n, q.name)
	}
	sort.Strings(n)
	return n
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	return p.f.Close()
}

func (p *Pack) init() error {
	var h header
	if err := binary.Read(p.f, binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "header")
	}
	if !bytes.Equal([]byte("PACK"), h.ID[:]) {
		return errors.New("not a pack")
	}
	if h.Offset < 0 || h.Size < 0 || h.Size%entrySize != 0 {
		return errors.New("bad directory")
	}
	r, err := p.f.Seek(int64(h.Offset), io.SeekStart)
	if err != nil {
		return err
	}
	if r != int64(h.Offset) {
		return errors.New("not long enough")
	}
	filenum := h.Size / entrySize
	p.files = make(map[string]*qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := binary.Read(p.f, binary.LittleEndian, &e); err != nil {
			return errors.Wrap(err, "directory")
		}
		name := string(e.Name[:])
		if n := bytes.IndexByte(e.Name[:], 0); n != -1 {
			name = string(e.Name[:n])
		}
		key := normalize(name)
		if p.files[key] != nil {
			return errors.Errorf("files in pack are not unique: %s", name)
		}
		p.files[key] = &qfile{
			name:   name,
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

func NewPackReader(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	p := &Pack{f: f, name: name}
	if err := p.init(); err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "pack %s", name)
	}
	return p, nil
}

// Write stores files as a PAK archive. Names longer than 55 bytes are
// rejected.
func Write(w io.Writer, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for n := range files {
		if len(n) > 55 {
			return errors.Errorf("name too long: %s", n)
		}
		names = append(names, n)
	}
	sort.Strings(names)
	var data bytes.Buffer
	dir := make([]entry, 0, len(names))
	off := int32(12)
	for _, n := range names {
		var e entry
		copy(e.Name[:], n)
		e.Offset = off + int32(data.Len())
		e.Size = int32(len(files[n]))
		data.Write(files[n])
		dir = append(dir, e)
	}
	h := header{
		ID:     [4]byte{'P', 'A', 'C', 'K'},
		Offset: off + int32(data.Len()),
		Size:   int32(len(dir) * entrySize),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, dir)
}
