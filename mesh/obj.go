// SPDX-License-Identifier: GPL-2.0-or-later

package mesh

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes the meshes as one Wavefront OBJ object each. Materials are
// referenced by texture name; no .mtl file is written.
func WriteOBJ(w io.Writer, name string, meshes []*Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", name)
	base := 1
	for _, m := range meshes {
		fmt.Fprintf(bw, "g %s\nusemtl %s\n", m.Texture, m.Texture)
		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X, v.Position.Y, v.Position.Z)
		}
		for _, v := range m.Vertices {
			// OBJ puts the texture origin bottom left
			fmt.Fprintf(bw, "vt %g %g\n", v.UV.X, 1-v.UV.Y)
		}
		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			a, b, c := base+int(m.Indices[i]), base+int(m.Indices[i+1]), base+int(m.Indices[i+2])
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
		base += len(m.Vertices)
	}
	return bw.Flush()
}
