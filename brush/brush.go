// SPDX-License-Identifier: GPL-2.0-or-later

// Package brush reconstructs textured triangle meshes from the convex brushes
// of a map.
package brush

import (
	"runtime"
	"sort"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/stat/combin"

	"brushmesh/mapfile"
	"brushmesh/math/vec"
	"brushmesh/mesh"
)

const (
	// DefaultEpsilon is the tolerance for parallel plane triples, half-space
	// containment and degenerate texture bases.
	DefaultEpsilon = 1.0 / 16

	// EmptyTexture marks faces TrenchBroom should not draw.
	EmptyTexture = "__TB_empty"
)

type Options struct {
	// Epsilon defaults to DefaultEpsilon.
	Epsilon float32
	// ContainEpsilon overrides Epsilon for the half-space test if not 0.
	ContainEpsilon float32
	// EmptyTexture defaults to EmptyTexture.
	EmptyTexture string
	// SkipTextures are further no-draw textures, e.g. clip or trigger.
	SkipTextures []string
	// Workers bounds the goroutines used by MeshEntity and MeshMap.
	// 0 means runtime.NumCPU().
	Workers int
}

type Mesher struct {
	eps     float32
	contain float32
	skip    map[string]bool
	workers int
}

func NewMesher(o Options) *Mesher {
	m := &Mesher{
		eps:     o.Epsilon,
		contain: o.ContainEpsilon,
		skip:    make(map[string]bool),
		workers: o.Workers,
	}
	if m.eps <= 0 {
		m.eps = DefaultEpsilon
	}
	if m.contain <= 0 {
		m.contain = m.eps
	}
	if o.EmptyTexture == "" {
		o.EmptyTexture = EmptyTexture
	}
	m.skip[o.EmptyTexture] = true
	for _, t := range o.SkipTextures {
		m.skip[t] = true
	}
	if m.workers <= 0 {
		m.workers = runtime.NumCPU()
	}
	return m
}

// intersection returns the point shared by the three planes. It fails if two
// of them are (nearly) parallel.
func (m *Mesher) intersection(a, b, c *mapfile.Plane) (vec.Vec3, bool) {
	na, nb, nc := a.Normal(), b.Normal(), c.Normal()
	bc := vec.Cross(nb, nc)
	denom := vec.Dot(na, bc)
	if math32.Abs(denom) < m.eps {
		return vec.Vec3{}, false
	}
	p := vec.Add(vec.Add(
		bc.Scale(a.Distance()),
		vec.Cross(nc, na).Scale(b.Distance())),
		vec.Cross(na, nb).Scale(c.Distance()))
	return p.Div(denom), true
}

// inside reports whether p is within every half-space of the brush.
func (m *Mesher) inside(planes []*mapfile.Plane, p vec.Vec3) bool {
	for _, pl := range planes {
		if vec.Dot(pl.Normal(), p)-pl.Distance() > m.contain {
			return false
		}
	}
	return true
}

// corners returns the polyhedron vertices of the brush grouped by the index
// of the plane they lie on.
func (m *Mesher) corners(planes []*mapfile.Plane) [][]vec.Vec3 {
	faces := make([][]vec.Vec3, len(planes))
	if len(planes) < 3 {
		return faces
	}
	gen := combin.NewCombinationGenerator(len(planes), 3)
	idx := make([]int, 3)
	for gen.Next() {
		gen.Combination(idx)
		p, ok := m.intersection(planes[idx[0]], planes[idx[1]], planes[idx[2]])
		if !ok || !m.inside(planes, p) {
			continue
		}
		for _, i := range idx {
			faces[i] = append(faces[i], p)
		}
	}
	return faces
}

func dedupe(ps []vec.Vec3) []vec.Vec3 {
	r := ps[:0:0]
outer:
	for _, p := range ps {
		for _, q := range r {
			if p == q {
				continue outer
			}
		}
		r = append(r, p)
	}
	return r
}

// wind sorts the points of a convex face by descending angle around their
// centroid in a basis spanned on the plane.
func (m *Mesher) wind(n vec.Vec3, ps []vec.Vec3) {
	var c vec.Vec3
	for _, p := range ps {
		c = vec.Add(c, p)
	}
	c = c.Div(float32(len(ps)))

	seed := vec.UnitX
	if vec.Sub(n, vec.UnitX).Length() < m.eps || vec.Add(n, vec.UnitX).Length() < m.eps {
		seed = vec.UnitY
	}
	u := vec.Cross(n, seed).Normalize()
	v := vec.Cross(n, u).Normalize()

	angles := make([]float32, len(ps))
	for i, p := range ps {
		d := vec.Sub(p, c)
		angles[i] = math32.Atan2(vec.Dot(d, v), vec.Dot(d, u))
	}
	sort.Sort(byAngle{ps, angles})
}

type byAngle struct {
	ps     []vec.Vec3
	angles []float32
}

func (a byAngle) Len() int           { return len(a.ps) }
func (a byAngle) Less(i, j int) bool { return a.angles[i] > a.angles[j] }
func (a byAngle) Swap(i, j int) {
	a.ps[i], a.ps[j] = a.ps[j], a.ps[i]
	a.angles[i], a.angles[j] = a.angles[j], a.angles[i]
}

// uv interpolates the texture coordinates of the plane's reference vertices.
func (m *Mesher) uv(pl *mapfile.Plane, p vec.Vec3) vec.Vec2 {
	r1, r2, r3 := pl.Vertex1(), pl.Vertex2(), pl.Vertex3()
	v0 := vec.Sub(r2.Position, r1.Position)
	v1 := vec.Sub(r3.Position, r1.Position)
	v2 := vec.Sub(p, r1.Position)

	dot00 := vec.Dot(v0, v0)
	dot01 := vec.Dot(v0, v1)
	dot02 := vec.Dot(v0, v2)
	dot11 := vec.Dot(v1, v1)
	dot12 := vec.Dot(v1, v2)

	denom := dot00*dot11 - dot01*dot01
	if math32.Abs(denom) < m.eps {
		return vec.Vec2{}
	}
	u := (dot11*dot02 - dot01*dot12) / denom
	v := (dot00*dot12 - dot01*dot02) / denom

	uv := vec.Add2(r1.UV, vec.Sub2(r2.UV, r1.UV).Scale(u))
	return vec.Add2(uv, vec.Sub2(r3.UV, r1.UV).Scale(v))
}

// MeshBrush returns one mesh per drawn texture of the brush, ordered by the
// first plane using the texture. Output positions and normals are y-up.
// Degenerate brushes give fewer or no meshes, never an error.
func (m *Mesher) MeshBrush(b *mapfile.Brush) []*mesh.Mesh {
	planes := b.Planes()
	var out []*mesh.Mesh
	byTex := make(map[string]*mesh.Mesh)
	for i, ps := range m.corners(planes) {
		pl := planes[i]
		if len(ps) == 0 || m.skip[pl.Texture()] {
			continue
		}
		ps = dedupe(ps)
		if len(ps) < 3 {
			continue
		}
		m.wind(pl.Normal(), ps)
		n := pl.Normal().SwapYZ()
		vs := make([]mesh.Vertex, len(ps))
		for j, p := range ps {
			vs[j] = mesh.Vertex{
				Position: p.SwapYZ(),
				Normal:   n,
				UV:       m.uv(pl, p),
			}
		}
		t := pl.Texture()
		msh, ok := byTex[t]
		if !ok {
			msh = mesh.New(t)
			byTex[t] = msh
			out = append(out, msh)
		}
		msh.AddFace(vs)
	}
	return out
}
