// SPDX-License-Identifier: GPL-2.0-or-later

// Package mesh holds the triangle meshes reconstructed from brushes.
package mesh

import (
	"math"

	"github.com/google/uuid"

	"brushmesh/math/vec"
)

type Vertex struct {
	Position vec.Vec3
	Normal   vec.Vec3
	UV       vec.Vec2
}

// Mesh is an indexed triangle list sharing one texture. ID is the handle a
// renderer keys its GPU buffers on.
type Mesh struct {
	ID       uuid.UUID
	Texture  string
	Vertices []Vertex
	Indices  []uint32
}

func New(texture string) *Mesh {
	return &Mesh{
		ID:      uuid.Must(uuid.NewV7()),
		Texture: texture,
	}
}

// AddFace appends a convex polygon and fans it into triangles. Polygons with
// fewer than three vertices are ignored.
func (m *Mesh) AddFace(vs []Vertex) {
	if len(vs) < 3 {
		return
	}
	first := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, vs...)
	for i := 0; i < len(vs)-2; i++ {
		m.Indices = append(m.Indices, first, first+uint32(i+1), first+uint32(i+2))
	}
}

// Merge appends o to m, offsetting the indices of o by the current vertex
// count of m.
func (m *Mesh) Merge(o *Mesh) {
	off := uint32(len(m.Vertices))
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, i+off)
	}
	m.Vertices = append(m.Vertices, o.Vertices...)
}

func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Fits16 reports whether the mesh can be drawn with 16 bit indices.
func (m *Mesh) Fits16() bool {
	return len(m.Vertices) <= math.MaxUint16+1
}

// Indices16 returns the index list narrowed to 16 bit. It must only be called
// if Fits16 is true.
func (m *Mesh) Indices16() []uint16 {
	r := make([]uint16, len(m.Indices))
	for n, i := range m.Indices {
		r[n] = uint16(i)
	}
	return r
}

// Bounds returns the axis aligned bounding box of all vertices.
func (m *Mesh) Bounds() (mins, maxs vec.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	mins = m.Vertices[0].Position
	maxs = mins
	for _, v := range m.Vertices[1:] {
		mins, _ = vec.MinMax(mins, v.Position)
		_, maxs = vec.MinMax(maxs, v.Position)
	}
	return
}
