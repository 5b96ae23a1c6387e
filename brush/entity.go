// SPDX-License-Identifier: GPL-2.0-or-later

package brush

import (
	"sync"

	"brushmesh/mapfile"
	"brushmesh/mesh"
)

// parallel calls f for 0..n-1 on at most m.workers goroutines.
func (m *Mesher) parallel(n int, f func(i int)) {
	workers := min(m.workers, n)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}
	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				f(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
}

// merge folds per brush meshes into one mesh per texture, in order of first
// appearance.
func merge(perBrush [][]*mesh.Mesh) []*mesh.Mesh {
	var out []*mesh.Mesh
	byTex := make(map[string]*mesh.Mesh)
	for _, ms := range perBrush {
		for _, bm := range ms {
			if acc, ok := byTex[bm.Texture]; ok {
				acc.Merge(bm)
				continue
			}
			byTex[bm.Texture] = bm
			out = append(out, bm)
		}
	}
	return out
}

func (m *Mesher) meshEntity(e *mapfile.Entity, concurrent bool) []*mesh.Mesh {
	brushes := e.Brushes()
	perBrush := make([][]*mesh.Mesh, len(brushes))
	f := func(i int) {
		perBrush[i] = m.MeshBrush(brushes[i])
	}
	if concurrent {
		m.parallel(len(brushes), f)
	} else {
		for i := range brushes {
			f(i)
		}
	}
	return merge(perBrush)
}

// MeshEntity returns one mesh per texture used by any brush of the entity.
// The result does not depend on the number of workers.
func (m *Mesher) MeshEntity(e *mapfile.Entity) []*mesh.Mesh {
	return m.meshEntity(e, true)
}

// MeshMap meshes all entities of the map concurrently. The result is indexed
// like mp.Entities(); entities without brushes get a nil slice.
func (m *Mesher) MeshMap(mp *mapfile.Map) [][]*mesh.Mesh {
	es := mp.Entities()
	out := make([][]*mesh.Mesh, len(es))
	m.parallel(len(es), func(i int) {
		out[i] = m.meshEntity(es[i], false)
	})
	return out
}
