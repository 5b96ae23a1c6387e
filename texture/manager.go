// SPDX-License-Identifier: GPL-2.0-or-later

package texture

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

type Texture struct {
	ID     uuid.UUID
	Name   string
	Width  int
	Height int
	// Dummy is set for names that could not be resolved.
	Dummy bool
}

type entry struct {
	tex    *Texture
	owners map[uuid.UUID]struct{}
}

// Manager hands out one Texture per name and keeps it alive as long as at
// least one owner holds it.
type Manager struct {
	mu       sync.Mutex
	sizer    *Sizer
	textures map[string]*entry
	owned    map[uuid.UUID][]string
}

func NewManager(s *Sizer) *Manager {
	return &Manager{
		sizer:    s,
		textures: make(map[string]*entry),
		owned:    make(map[uuid.UUID][]string),
	}
}

// Load returns the texture called name and records owner as one of its
// holders. Loading the same name twice for one owner counts once.
func (m *Manager) Load(name string, owner uuid.UUID) *Texture {
	key := strings.ToLower(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.textures[key]
	if !ok {
		w, h, err := m.sizer.Lookup(name)
		t := &Texture{
			ID:     uuid.Must(uuid.NewV7()),
			Name:   name,
			Width:  w,
			Height: h,
		}
		if err != nil {
			t.Width, t.Height, t.Dummy = 1, 1, true
		}
		e = &entry{tex: t, owners: make(map[uuid.UUID]struct{})}
		m.textures[key] = e
	}
	if _, held := e.owners[owner]; !held {
		e.owners[owner] = struct{}{}
		m.owned[owner] = append(m.owned[owner], key)
	}
	return e.tex
}

// Unload drops every texture reference of owner and returns the textures
// no one holds anymore.
func (m *Manager) Unload(owner uuid.UUID) []*Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	var freed []*Texture
	for _, key := range m.owned[owner] {
		e := m.textures[key]
		delete(e.owners, owner)
		if len(e.owners) == 0 {
			freed = append(freed, e.tex)
			delete(m.textures, key)
		}
	}
	delete(m.owned, owner)
	return freed
}

// Len returns the number of live textures.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.textures)
}

// Close releases everything regardless of owners.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures = make(map[string]*entry)
	m.owned = make(map[uuid.UUID][]string)
}
