// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"math"
	"regexp"
	"strconv"

	"brushmesh/math/vec"
)

// TextureSizeFunc returns the pixel dimensions of the named texture.
// It must be safe for concurrent use if maps are parsed concurrently.
type TextureSizeFunc func(name string) (width, height float32)

// Vertex is one of the three reference points of a plane together with its
// texture coordinate.
type Vertex struct {
	Position vec.Vec3
	UV       vec.Vec2
}

// Projection is the texture projection basis of a plane as written in the map.
type Projection struct {
	AxisU    vec.Vec3
	OffsetU  float32
	AxisV    vec.Vec3
	OffsetV  float32
	Rotation float32
	ScaleU   float32
	ScaleV   float32
}

// Plane is one face of a brush. Points p with Dot(Normal, p) <= Distance are
// inside the half-space.
type Plane struct {
	v1, v2, v3 Vertex
	texture    string
	proj       Projection
	normal     vec.Vec3
	distance   float32
}

func (p *Plane) Vertex1() Vertex        { return p.v1 }
func (p *Plane) Vertex2() Vertex        { return p.v2 }
func (p *Plane) Vertex3() Vertex        { return p.v3 }
func (p *Plane) Texture() string        { return p.texture }
func (p *Plane) Projection() Projection { return p.proj }
func (p *Plane) Normal() vec.Vec3       { return p.normal }
func (p *Plane) Distance() float32      { return p.distance }

const (
	valueRE  = `([^\s]+)`
	vertexRE = `\( ` + valueRE + ` ` + valueRE + ` ` + valueRE + ` \)`
	axisRE   = `\[ ` + valueRE + ` ` + valueRE + ` ` + valueRE + ` ` + valueRE + ` \]`
)

var planeRE = regexp.MustCompile(`^` + vertexRE + ` ` + vertexRE + ` ` + vertexRE +
	` (.+) ` + axisRE + ` ` + axisRE + ` ` + valueRE + ` ` + valueRE + ` ` + valueRE + `$`)

// ParsePlane parses a single plane record:
//
//	( x1 y1 z1 ) ( x2 y2 z2 ) ( x3 y3 z3 ) tex [ ux uy uz uo ] [ vx vy vz vo ] rot su sv
func ParsePlane(line string, size TextureSizeFunc) (*Plane, error) {
	m := planeRE.FindStringSubmatch(line)
	if m == nil {
		return nil, formatError("plane", 0, "invalid format")
	}
	var f [21]float32
	for i := 1; i < len(m); i++ {
		if i == 10 {
			continue
		}
		v, err := strconv.ParseFloat(m[i], 32)
		if err != nil {
			return nil, wrapFormatError(err, "plane", "invalid number "+strconv.Quote(m[i]))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, formatError("plane", 0, "unsupported number "+strconv.Quote(m[i]))
		}
		f[i-1] = float32(v)
	}
	points := [3]vec.Vec3{
		{X: f[0], Y: f[1], Z: f[2]},
		{X: f[3], Y: f[4], Z: f[5]},
		{X: f[6], Y: f[7], Z: f[8]},
	}
	proj := Projection{
		AxisU:    vec.Vec3{X: f[10], Y: f[11], Z: f[12]},
		OffsetU:  f[13],
		AxisV:    vec.Vec3{X: f[14], Y: f[15], Z: f[16]},
		OffsetV:  f[17],
		Rotation: f[18],
		ScaleU:   f[19],
		ScaleV:   f[20],
	}
	return NewPlane(points, m[10], proj, size)
}

// NewPlane builds a plane from its three defining points in file order.
// Vertex2 holds the third point and Vertex3 the second one; the face winding
// downstream depends on this order.
func NewPlane(points [3]vec.Vec3, texture string, proj Projection, size TextureSizeFunc) (*Plane, error) {
	if texture == "" {
		return nil, formatError("plane", 0, "missing texture")
	}
	if proj.ScaleU == 0 || proj.ScaleV == 0 {
		return nil, formatError("plane", 0, "zero texture scale")
	}
	w, h := size(texture)
	if w <= 0 || h <= 0 {
		return nil, formatError("plane", 0, "invalid size for texture "+strconv.Quote(texture))
	}
	axisU := proj.AxisU.Div(proj.ScaleU)
	axisV := proj.AxisV.Div(proj.ScaleV)
	uv := func(p vec.Vec3) vec.Vec2 {
		return vec.Vec2{
			X: (vec.Dot(p, axisU) + proj.OffsetU) / w,
			Y: (vec.Dot(p, axisV) + proj.OffsetV) / h,
		}
	}
	p1, p2, p3 := points[0], points[1], points[2]
	n := vec.Cross(vec.Sub(p3, p1), vec.Sub(p2, p1)).Normalize()
	return &Plane{
		v1:       Vertex{p1, uv(p1)},
		v2:       Vertex{p3, uv(p3)},
		v3:       Vertex{p2, uv(p2)},
		texture:  texture,
		proj:     proj,
		normal:   n,
		distance: vec.Dot(n, p1),
	}, nil
}
