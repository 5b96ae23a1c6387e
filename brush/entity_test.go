// SPDX-License-Identifier: GPL-2.0-or-later

package brush

import (
	"strings"
	"testing"

	"brushmesh/mapfile"
	"brushmesh/math/vec"
)

// shifted returns the planes of a cube of half size h centered at c.
func shifted(t *testing.T, c vec.Vec3, h float32, tex string) *mapfile.Brush {
	t.Helper()
	ps := make([]*mapfile.Plane, len(cubeNormals))
	for i, n := range cubeNormals {
		ps[i] = plane(t, n, vec.Dot(n, c)+h, tex, 16)
	}
	return mapfile.NewBrush(ps...)
}

func TestMeshEntity(t *testing.T) {
	e := mapfile.NewEntity(map[string]string{"classname": "func_wall"},
		shifted(t, vec.Vec3{X: 0, Y: 0, Z: 0}, 1, "stone"),
		shifted(t, vec.Vec3{X: 4, Y: 0, Z: 0}, 1, "wood"),
		shifted(t, vec.Vec3{X: 8, Y: 0, Z: 0}, 1, "stone"),
	)
	ms := NewMesher(Options{Workers: 4}).MeshEntity(e)
	if len(ms) != 2 {
		t.Fatalf("got %d meshes, want 2", len(ms))
	}
	if ms[0].Texture != "stone" || ms[1].Texture != "wood" {
		t.Errorf("textures = %q, %q, want stone, wood", ms[0].Texture, ms[1].Texture)
	}
	stone := ms[0]
	if len(stone.Vertices) != 48 || stone.Triangles() != 24 {
		t.Errorf("stone has %d vertices, %d triangles, want 48, 24", len(stone.Vertices), stone.Triangles())
	}
	// the second brush's indices are offset by the first brush's vertices
	for _, i := range stone.Indices[36:] {
		if i < 24 || i >= 48 {
			t.Errorf("merged index %d out of range [24,48)", i)
		}
	}
	for _, v := range stone.Vertices[24:] {
		if v.Position.X < 7 {
			t.Errorf("vertex %v of the second stone brush is misplaced", v.Position)
		}
	}
}

func TestMeshEntityDeterministic(t *testing.T) {
	var bs []*mapfile.Brush
	for i := 0; i < 20; i++ {
		tex := []string{"a", "b", "c"}[i%3]
		bs = append(bs, shifted(t, vec.Vec3{X: float32(3 * i), Y: 0, Z: 0}, 1, tex))
	}
	e := mapfile.NewEntity(nil, bs...)
	serial := NewMesher(Options{Workers: 1}).MeshEntity(e)
	concurrent := NewMesher(Options{Workers: 8}).MeshEntity(e)
	if len(serial) != len(concurrent) {
		t.Fatalf("got %d and %d meshes", len(serial), len(concurrent))
	}
	for i := range serial {
		s, c := serial[i], concurrent[i]
		if s.Texture != c.Texture || len(s.Vertices) != len(c.Vertices) {
			t.Fatalf("mesh %d differs: %s/%d vs %s/%d", i, s.Texture, len(s.Vertices), c.Texture, len(c.Vertices))
		}
		for j := range s.Vertices {
			if s.Vertices[j] != c.Vertices[j] {
				t.Errorf("mesh %d vertex %d differs: %v vs %v", i, j, s.Vertices[j], c.Vertices[j])
			}
		}
	}
}

func TestMeshEntityWithoutBrushes(t *testing.T) {
	e := mapfile.NewEntity(map[string]string{"classname": "light"})
	if ms := NewMesher(Options{}).MeshEntity(e); len(ms) != 0 {
		t.Errorf("point entity gave %d meshes", len(ms))
	}
}

const room = `{
"classname" "worldspawn"
{
( -64 -64 -16 ) ( -64 -63 -16 ) ( -64 -64 -15 ) rock [ 0 -1 0 0 ] [ 0 0 -1 0 ] 0 1 1
( -64 -64 -16 ) ( -64 -64 -15 ) ( -63 -64 -16 ) rock [ 1 0 0 0 ] [ 0 0 -1 0 ] 0 1 1
( -64 -64 -16 ) ( -63 -64 -16 ) ( -64 -63 -16 ) floor [ -1 0 0 0 ] [ 0 -1 0 0 ] 0 1 1
( 64 64 16 ) ( 64 65 16 ) ( 65 64 16 ) __TB_empty [ 1 0 0 0 ] [ 0 -1 0 0 ] 0 1 1
( 64 64 16 ) ( 65 64 16 ) ( 64 64 17 ) rock [ -1 0 0 0 ] [ 0 0 -1 0 ] 0 1 1
( 64 64 16 ) ( 64 64 17 ) ( 64 65 16 ) rock [ 0 1 0 0 ] [ 0 0 -1 0 ] 0 1 1
}
}
{
"classname" "info_player_start"
"origin" "0 0 0"
}
`

func TestMeshMap(t *testing.T) {
	m, err := mapfile.Read(strings.NewReader(room), size)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	all := NewMesher(Options{}).MeshMap(m)
	if len(all) != 2 {
		t.Fatalf("got %d entity results, want 2", len(all))
	}
	if len(all[1]) != 0 {
		t.Errorf("point entity gave %d meshes", len(all[1]))
	}
	ws := all[0]
	if len(ws) != 2 || ws[0].Texture != "rock" || ws[1].Texture != "floor" {
		t.Fatalf("worldspawn meshes = %v", ws)
	}
	if ws[0].Triangles() != 8 || ws[1].Triangles() != 2 {
		t.Errorf("got %d rock and %d floor triangles, want 8 and 2", ws[0].Triangles(), ws[1].Triangles())
	}
	mins, maxs := ws[0].Bounds()
	if mins != (vec.Vec3{X: -64, Y: -16, Z: -64}) || maxs != (vec.Vec3{X: 64, Y: 16, Z: 64}) {
		t.Errorf("rock bounds = %v %v", mins, maxs)
	}
}
