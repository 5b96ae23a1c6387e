// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"brushmesh/math/vec"
)

func sizeOf(w, h float32) TextureSizeFunc {
	return func(string) (float32, float32) { return w, h }
}

func near(a, b float32) bool {
	return math32.Abs(a-b) < 1e-5
}

func TestParsePlane(t *testing.T) {
	l := "( 64 64 16 ) ( 64 65 16 ) ( 65 64 16 ) rock [ 1 0 0 0 ] [ 0 -1 0 0 ] 0 1 1"
	p, err := ParsePlane(l, sizeOf(128, 64))
	if err != nil {
		t.Fatalf("ParsePlane(%q): %v", l, err)
	}
	if got, want := p.Normal(), (vec.Vec3{X: 0, Y: 0, Z: 1}); got != want {
		t.Errorf("Normal = %v, want %v", got, want)
	}
	if got := p.Distance(); got != 16 {
		t.Errorf("Distance = %v, want 16", got)
	}
	if got := p.Texture(); got != "rock" {
		t.Errorf("Texture = %q, want rock", got)
	}
	// second and third point are stored swapped
	if got, want := p.Vertex2().Position, (vec.Vec3{X: 65, Y: 64, Z: 16}); got != want {
		t.Errorf("Vertex2 = %v, want %v", got, want)
	}
	if got, want := p.Vertex3().Position, (vec.Vec3{X: 64, Y: 65, Z: 16}); got != want {
		t.Errorf("Vertex3 = %v, want %v", got, want)
	}
	if got, want := p.Vertex1().UV, (vec.Vec2{X: 0.5, Y: -1}); got != want {
		t.Errorf("Vertex1 UV = %v, want %v", got, want)
	}
}

func TestParsePlaneNormalFormula(t *testing.T) {
	l := "( 0.5 -2.25 3 ) ( 7 1.5 -4 ) ( -3.125 6 2 ) brick [ 0.6 0.8 0 4 ] [ 0 0 -1 8 ] 15 0.5 2"
	p, err := ParsePlane(l, sizeOf(32, 16))
	if err != nil {
		t.Fatalf("ParsePlane(%q): %v", l, err)
	}
	p1 := vec.Vec3{X: 0.5, Y: -2.25, Z: 3}
	p2 := vec.Vec3{X: 7, Y: 1.5, Z: -4}
	p3 := vec.Vec3{X: -3.125, Y: 6, Z: 2}
	n := vec.Cross(vec.Sub(p3, p1), vec.Sub(p2, p1)).Normalize()
	if !vec.Near(p.Normal(), n, 1e-5) {
		t.Errorf("Normal = %v, want %v", p.Normal(), n)
	}
	if d := vec.Dot(n, p1); !near(p.Distance(), d) {
		t.Errorf("Distance = %v, want %v", p.Distance(), d)
	}
	if !near(p.Normal().Length(), 1) {
		t.Errorf("Normal %v is not unit length", p.Normal())
	}
	// u = (dot(p, axis/scale) + offset) / width
	axisU := vec.Vec3{X: 0.6, Y: 0.8, Z: 0}.Div(0.5)
	wantU := (vec.Dot(p3, axisU) + 4) / 32
	if got := p.Vertex2().UV.X; !near(got, wantU) {
		t.Errorf("Vertex2 U = %v, want %v", got, wantU)
	}
	axisV := vec.Vec3{X: 0, Y: 0, Z: -1}.Div(2)
	wantV := (vec.Dot(p2, axisV) + 8) / 16
	if got := p.Vertex3().UV.Y; !near(got, wantV) {
		t.Errorf("Vertex3 V = %v, want %v", got, wantV)
	}
	if got := p.Projection().Rotation; got != 15 {
		t.Errorf("Rotation = %v, want 15", got)
	}
}

func TestParsePlaneErrors(t *testing.T) {
	for _, l := range []string{
		"",
		"( 0 0 0 ) ( 1 0 0 ) ( 0 1 0 ) tex [ 1 0 0 0 ] [ 0 1 0 0 ] 0 1",
		"( 0 0 0 ) ( 1 0 0 ) ( 0 1 0 ) tex 0 0 0 0 1 1",
		"( 0 0 0 ) ( 1 0 0 ) ( 0 1 x ) tex [ 1 0 0 0 ] [ 0 1 0 0 ] 0 1 1",
		"( 0 0 0 ) ( 1 0 0 ) ( 0 1 0 ) tex [ 1 0 0 0 ] [ 0 1 0 0 ] 0 0 1",
		"( 0 0 0 ) ( 1 0 0 ) ( 0 1 0 ) tex [ 1 0 0 0 ] [ 0 1 0 0 ] 0 1 0",
		"( 0 0 NaN ) ( 1 0 0 ) ( 0 1 0 ) tex [ 1 0 0 0 ] [ 0 1 0 0 ] 0 1 1",
		"( 0 0 1e99 ) ( 1 0 0 ) ( 0 1 0 ) tex [ 1 0 0 0 ] [ 0 1 0 0 ] 0 1 1",
	} {
		_, err := ParsePlane(l, sizeOf(64, 64))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("ParsePlane(%q) = %v, want FormatError", l, err)
		}
	}
}

func TestParsePlaneTextureSize(t *testing.T) {
	l := "( 0 0 0 ) ( 1 0 0 ) ( 0 1 0 ) missing [ 1 0 0 0 ] [ 0 1 0 0 ] 0 1 1"
	var asked []string
	size := func(name string) (float32, float32) {
		asked = append(asked, name)
		return 0, 0
	}
	if _, err := ParsePlane(l, size); err == nil {
		t.Errorf("ParsePlane with zero texture size succeeded")
	}
	if len(asked) != 1 || asked[0] != "missing" {
		t.Errorf("size lookups = %v, want [missing]", asked)
	}
}
