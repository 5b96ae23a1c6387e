// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"brushmesh/mapfile"
	"brushmesh/mesh"
)

// Constructor creates the node for one entity.
type Constructor func(g *Graph, e *mapfile.Entity) (NodeID, error)

// Loader maps entity classnames to constructors.
type Loader struct {
	ctors map[string]Constructor
}

// NewLoader returns a loader that knows the stock brush and point entities.
func NewLoader() *Loader {
	l := &Loader{ctors: make(map[string]Constructor)}
	for _, c := range []string{"worldspawn", "func_group", "func_detail", "func_wall", "func_door", "func_door_sliding"} {
		l.Register(c, Brushes)
	}
	for _, c := range []string{"info_player_start", "info_player_deathmatch", "light", "info_null"} {
		l.Register(c, Point)
	}
	return l
}

func (l *Loader) Register(className string, c Constructor) {
	l.ctors[className] = c
}

// Load creates the node for e. Entities without a registered classname get
// an empty node.
func (l *Loader) Load(g *Graph, e *mapfile.Entity) (NodeID, error) {
	cn, _ := e.ClassName()
	c, ok := l.ctors[cn]
	if !ok {
		slog.Info("Unknown entity", "classname", cn)
		id := g.New(cn)
		g.Node(id).Entity = e
		return id, nil
	}
	id, err := c(g, e)
	if err != nil {
		return NoParent, errors.Wrapf(err, "entity %s", cn)
	}
	return id, nil
}

// Brushes creates a node for an entity whose geometry is already in world
// space.
func Brushes(g *Graph, e *mapfile.Entity) (NodeID, error) {
	cn, _ := e.ClassName()
	id := g.New(cn)
	g.Node(id).Entity = e
	return id, nil
}

// Point creates a node placed at the entity origin and turned by its angle.
func Point(g *Graph, e *mapfile.Entity) (NodeID, error) {
	o, _, err := Origin(e)
	if err != nil {
		return NoParent, err
	}
	m := mgl32.Translate3D(o.X(), o.Y(), o.Z())
	if a, ok := e.Property("angle"); ok {
		deg, err := strconv.ParseFloat(strings.TrimSpace(a), 32)
		if err != nil {
			return NoParent, errors.Wrapf(err, "angle %q", a)
		}
		// yaw turns x towards y, which is z after the axis swap
		m = m.Mul4(mgl32.HomogRotate3DY(-mgl32.DegToRad(float32(deg))))
	}
	cn, _ := e.ClassName()
	id := g.New(cn)
	g.Node(id).Entity = e
	g.SetLocal(id, m)
	return id, nil
}

// Origin parses the origin property and swaps it into the same y-up space
// the meshes use.
func Origin(e *mapfile.Entity) (mgl32.Vec3, bool, error) {
	s, ok := e.Property("origin")
	if !ok {
		return mgl32.Vec3{}, false, nil
	}
	f := strings.Fields(s)
	if len(f) != 3 {
		return mgl32.Vec3{}, true, errors.Errorf("origin %q: want 3 values", s)
	}
	var v [3]float32
	for i, t := range f {
		x, err := strconv.ParseFloat(t, 32)
		if err != nil {
			return mgl32.Vec3{}, true, errors.Wrapf(err, "origin %q", s)
		}
		v[i] = float32(x)
	}
	return mgl32.Vec3{v[0], v[2], v[1]}, true, nil
}

// Build adds one node per entity of m below the root. meshes holds the
// meshes of each entity in map order, as returned by the entity mesher.
func Build(g *Graph, l *Loader, m *mapfile.Map, meshes [][]*mesh.Mesh) ([]NodeID, error) {
	ents := m.Entities()
	if len(meshes) != len(ents) {
		return nil, errors.Errorf("%d entities but %d mesh sets", len(ents), len(meshes))
	}
	ids := make([]NodeID, 0, len(ents))
	for i, e := range ents {
		id, err := l.Load(g, e)
		if err != nil {
			return ids, err
		}
		g.AttachMeshes(id, meshes[i])
		if err := g.Add(Root, id, true); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
