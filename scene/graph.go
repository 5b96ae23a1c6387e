// SPDX-License-Identifier: GPL-2.0-or-later

// Package scene holds map entities in a transform hierarchy. Nodes live in
// an arena owned by the Graph and refer to each other by NodeID.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"brushmesh/mapfile"
	"brushmesh/mesh"
	"brushmesh/texture"
)

type NodeID int

const (
	NoParent NodeID = -1
	Root     NodeID = 0
)

type Node struct {
	ClassName string
	Entity    *mapfile.Entity
	Meshes    []*mesh.Mesh
	Textures  []*texture.Texture
	// Owner identifies the node towards the texture manager.
	Owner uuid.UUID

	parent   NodeID
	children []NodeID
	local    mgl32.Mat4
	global   mgl32.Mat4
}

type Graph struct {
	nodes    []*Node
	free     []NodeID
	textures *texture.Manager
}

// NewGraph returns a graph holding only the root node. tm may be nil if no
// textures should be tracked.
func NewGraph(tm *texture.Manager) *Graph {
	g := &Graph{textures: tm}
	g.New("root")
	return g
}

// New creates a detached node with identity transforms.
func (g *Graph) New(className string) NodeID {
	n := &Node{
		ClassName: className,
		Owner:     uuid.Must(uuid.NewV7()),
		parent:    NoParent,
		local:     mgl32.Ident4(),
		global:    mgl32.Ident4(),
	}
	if l := len(g.free); l > 0 {
		id := g.free[l-1]
		g.free = g.free[:l-1]
		g.nodes[id] = n
		return id
	}
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// Node returns nil for deleted or unknown ids.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

func (g *Graph) mustNode(id NodeID) (*Node, error) {
	n := g.Node(id)
	if n == nil {
		return nil, errors.Errorf("no node %d", id)
	}
	return n, nil
}

// Len returns the number of live nodes including the root.
func (g *Graph) Len() int {
	return len(g.nodes) - len(g.free)
}

func (g *Graph) Parent(id NodeID) NodeID {
	if n := g.Node(id); n != nil {
		return n.parent
	}
	return NoParent
}

func (g *Graph) Children(id NodeID) []NodeID {
	if n := g.Node(id); n != nil {
		return append([]NodeID(nil), n.children...)
	}
	return nil
}

func (g *Graph) Local(id NodeID) mgl32.Mat4 {
	if n := g.Node(id); n != nil {
		return n.local
	}
	return mgl32.Ident4()
}

func (g *Graph) Global(id NodeID) mgl32.Mat4 {
	if n := g.Node(id); n != nil {
		return n.global
	}
	return mgl32.Ident4()
}

// SetLocal sets the transform relative to the parent and moves the subtree.
func (g *Graph) SetLocal(id NodeID, m mgl32.Mat4) {
	if n := g.Node(id); n != nil {
		n.local = m
		g.updateGlobal(id)
	}
}

// SetGlobal sets the world transform and derives the local one from it.
func (g *Graph) SetGlobal(id NodeID, m mgl32.Mat4) {
	if n := g.Node(id); n != nil {
		n.global = m
		g.updateLocal(id)
	}
}

func (g *Graph) updateGlobal(id NodeID) {
	n := g.nodes[id]
	if n.parent != NoParent {
		n.global = g.nodes[n.parent].global.Mul4(n.local)
	} else {
		n.global = n.local
	}
	for _, c := range n.children {
		g.updateGlobal(c)
	}
}

func (g *Graph) updateLocal(id NodeID) {
	n := g.nodes[id]
	if n.parent != NoParent {
		n.local = g.nodes[n.parent].global.Inv().Mul4(n.global)
	} else {
		n.local = n.global
	}
	for _, c := range n.children {
		g.updateGlobal(c)
	}
}

func (g *Graph) realign(id NodeID, keepLocal bool) {
	if keepLocal {
		g.updateGlobal(id)
	} else {
		g.updateLocal(id)
	}
}

// Add makes child a child of parent. With realign the child keeps its local
// transform and moves along with the new parent, otherwise it keeps its
// place in the world.
func (g *Graph) Add(parent, child NodeID, realign bool) error {
	p, err := g.mustNode(parent)
	if err != nil {
		return err
	}
	c, err := g.mustNode(child)
	if err != nil {
		return err
	}
	for a := parent; a != NoParent; a = g.nodes[a].parent {
		if a == child {
			return errors.Errorf("node %d is an ancestor of %d", child, parent)
		}
	}
	g.detach(child)
	p.children = append(p.children, child)
	c.parent = parent
	g.realign(child, realign)
	return nil
}

// Remove detaches child from its parent. realign has the same meaning as
// for Add.
func (g *Graph) Remove(child NodeID, realign bool) {
	if g.Node(child) == nil {
		return
	}
	g.detach(child)
	g.realign(child, realign)
}

func (g *Graph) detach(child NodeID) {
	c := g.nodes[child]
	if c.parent == NoParent {
		return
	}
	p := g.nodes[c.parent]
	for i, id := range p.children {
		if id == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	c.parent = NoParent
}

// Delete removes id and its whole subtree from the graph and releases their
// textures. The root cannot be deleted.
func (g *Graph) Delete(id NodeID) error {
	if id == Root {
		return errors.New("cannot delete the root node")
	}
	n, err := g.mustNode(id)
	if err != nil {
		return err
	}
	for len(n.children) > 0 {
		if err := g.Delete(n.children[0]); err != nil {
			return err
		}
	}
	g.detach(id)
	if g.textures != nil {
		g.textures.Unload(n.Owner)
	}
	g.nodes[id] = nil
	g.free = append(g.free, id)
	return nil
}

// Walk visits id and its descendants depth first. Returning false from f
// skips the children of the visited node.
func (g *Graph) Walk(id NodeID, f func(NodeID, *Node) bool) {
	n := g.Node(id)
	if n == nil || !f(id, n) {
		return
	}
	for _, c := range n.children {
		g.Walk(c, f)
	}
}

// AttachMeshes hands the meshes to the node and acquires their textures.
func (g *Graph) AttachMeshes(id NodeID, meshes []*mesh.Mesh) {
	n := g.Node(id)
	if n == nil {
		return
	}
	n.Meshes = append(n.Meshes, meshes...)
	if g.textures == nil {
		return
	}
	for _, m := range meshes {
		n.Textures = append(n.Textures, g.textures.Load(m.Texture, n.Owner))
	}
}
