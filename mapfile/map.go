// SPDX-License-Identifier: GPL-2.0-or-later

// Package mapfile reads the TrenchBroom flavoured Quake map format (Valve 220
// texture axes) into maps, entities, brushes and planes.
package mapfile

import (
	"io"

	"github.com/pkg/errors"

	"brushmesh/filesystem"
)

// Map is the ordered list of entities of a map file.
type Map struct {
	entities []*Entity
}

func NewMap(entities ...*Entity) *Map {
	return &Map{entities: entities}
}

func (m *Map) Entities() []*Entity {
	return m.entities
}

// Worldspawn returns the first entity with classname worldspawn.
func (m *Map) Worldspawn() (*Entity, bool) {
	for _, e := range m.entities {
		if n, _ := e.ClassName(); n == "worldspawn" {
			return e, true
		}
	}
	return nil, false
}

// Read parses a complete map. size is called once per plane to normalize
// texture coordinates.
func Read(in io.Reader, size TextureSizeFunc) (*Map, error) {
	r := newLineReader(in)
	m := &Map{}
	for {
		l, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return m, nil
		}
		switch l[0] {
		case '/':
			continue
		case '{':
			e, err := readEntity(r, size)
			if err != nil {
				return nil, err
			}
			m.entities = append(m.entities, e)
		default:
			return nil, formatError("map", r.line, "unexpected character "+string(l[0]))
		}
	}
}

// ReadFile parses the named map from the game filesystem.
func ReadFile(name string, size TextureSizeFunc) (*Map, error) {
	f, err := filesystem.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open map %s", name)
	}
	defer f.Close()
	m, err := Read(f, size)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return m, nil
}
