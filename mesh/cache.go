// SPDX-License-Identifier: GPL-2.0-or-later

package mesh

import (
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"brushmesh/math/vec"
)

// The cache is protobuf wire format without a schema compiler:
//
//	message Cache { uint32 version = 1; repeated Mesh meshes = 2; uint32 source = 3; }
//	message Mesh {
//	  bytes id = 1; string texture = 2;
//	  repeated float positions = 3 [packed]; repeated float normals = 4 [packed];
//	  repeated float uvs = 5 [packed]; repeated uint32 indices = 6 [packed];
//	}
const cacheVersion = 1

const (
	fieldVersion = 1
	fieldMesh    = 2
	fieldSource  = 3

	fieldID        = 1
	fieldTexture   = 2
	fieldPositions = 3
	fieldNormals   = 4
	fieldUVs       = 5
	fieldIndices   = 6
)

func appendFloats(b []byte, num protowire.Number, fs []float32) []byte {
	if len(fs) == 0 {
		return b
	}
	var p []byte
	for _, f := range fs {
		p = protowire.AppendFixed32(p, math.Float32bits(f))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, p)
}

func marshalMesh(m *Mesh) []byte {
	pos := make([]float32, 0, 3*len(m.Vertices))
	nrm := make([]float32, 0, 3*len(m.Vertices))
	uvs := make([]float32, 0, 2*len(m.Vertices))
	for _, v := range m.Vertices {
		pos = append(pos, v.Position.X, v.Position.Y, v.Position.Z)
		nrm = append(nrm, v.Normal.X, v.Normal.Y, v.Normal.Z)
		uvs = append(uvs, v.UV.X, v.UV.Y)
	}
	var b []byte
	b = protowire.AppendTag(b, fieldID, protowire.BytesType)
	b = protowire.AppendBytes(b, m.ID[:])
	b = protowire.AppendTag(b, fieldTexture, protowire.BytesType)
	b = protowire.AppendString(b, m.Texture)
	b = appendFloats(b, fieldPositions, pos)
	b = appendFloats(b, fieldNormals, nrm)
	b = appendFloats(b, fieldUVs, uvs)
	if len(m.Indices) > 0 {
		var p []byte
		for _, i := range m.Indices {
			p = protowire.AppendVarint(p, uint64(i))
		}
		b = protowire.AppendTag(b, fieldIndices, protowire.BytesType)
		b = protowire.AppendBytes(b, p)
	}
	return b
}

// Cache is a converted map as stored on disk.
type Cache struct {
	// Source is the crc.Checksum of the map text the meshes were built from.
	Source uint16
	Meshes []*Mesh
}

// Encode writes c in the cache format.
func Encode(w io.Writer, c *Cache) error {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, cacheVersion)
	b = protowire.AppendTag(b, fieldSource, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Source))
	for _, m := range c.Meshes {
		b = protowire.AppendTag(b, fieldMesh, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalMesh(m))
	}
	_, err := w.Write(b)
	return errors.Wrap(err, "write mesh cache")
}

func consumeFloats(b []byte) ([]float32, error) {
	var r []float32
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		r = append(r, math.Float32frombits(v))
		b = b[n:]
	}
	return r, nil
}

func unmarshalMesh(b []byte) (*Mesh, error) {
	m := &Mesh{}
	var pos, nrm, uvs []float32
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
		var err error
		switch num {
		case fieldID:
			m.ID, err = uuid.FromBytes(v)
		case fieldTexture:
			m.Texture = string(v)
		case fieldPositions:
			pos, err = consumeFloats(v)
		case fieldNormals:
			nrm, err = consumeFloats(v)
		case fieldUVs:
			uvs, err = consumeFloats(v)
		case fieldIndices:
			for len(v) > 0 {
				i, n := protowire.ConsumeVarint(v)
				if n < 0 {
					return nil, protowire.ParseError(n)
				}
				m.Indices = append(m.Indices, uint32(i))
				v = v[n:]
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if len(pos)%3 != 0 || len(nrm) != len(pos) || len(uvs)/2 != len(pos)/3 || len(uvs)%2 != 0 {
		return nil, errors.Errorf("mesh %s: inconsistent vertex arrays", m.Texture)
	}
	m.Vertices = make([]Vertex, len(pos)/3)
	for i := range m.Vertices {
		m.Vertices[i] = Vertex{
			Position: vec.Vec3{X: pos[3*i], Y: pos[3*i+1], Z: pos[3*i+2]},
			Normal:   vec.Vec3{X: nrm[3*i], Y: nrm[3*i+1], Z: nrm[3*i+2]},
			UV:       vec.Vec2{X: uvs[2*i], Y: uvs[2*i+1]},
		}
	}
	if len(m.Indices)%3 != 0 {
		return nil, errors.Errorf("mesh %s: index count %d is not a multiple of 3", m.Texture, len(m.Indices))
	}
	for _, i := range m.Indices {
		if int(i) >= len(m.Vertices) {
			return nil, errors.Errorf("mesh %s: index %d out of range", m.Texture, i)
		}
	}
	return m, nil
}

// Decode reads a cache written by Encode.
func Decode(r io.Reader) (*Cache, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read mesh cache")
	}
	c := &Cache{}
	version := uint64(0)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrap(protowire.ParseError(n), "mesh cache")
		}
		b = b[n:]
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			version, n = protowire.ConsumeVarint(b)
		case num == fieldSource && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			c.Source = uint16(v)
		case num == fieldMesh && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				m, err := unmarshalMesh(v)
				if err != nil {
					return nil, errors.Wrap(err, "mesh cache")
				}
				c.Meshes = append(c.Meshes, m)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, errors.Wrap(protowire.ParseError(n), "mesh cache")
		}
		b = b[n:]
	}
	if version != cacheVersion {
		return nil, errors.Errorf("mesh cache: unsupported version %d", version)
	}
	return c, nil
}
