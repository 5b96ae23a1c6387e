// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"brushmesh/brush"
	"brushmesh/conlog"
	"brushmesh/crc"
	"brushmesh/filesystem"
	"brushmesh/mapfile"
	"brushmesh/mesh"
	"brushmesh/scene"
	"brushmesh/texture"
	"brushmesh/wad"
)

type tool struct {
	sizer  *texture.Sizer
	mesher *brush.Mesher
	wads   map[string]bool
	out    string
	obj    string
	// unchanged maps are skipped if set; sums holds the last converted
	// checksum per map.
	skipUnchanged bool
	sums          map[string]uint16
}

type result struct {
	source    uint16
	entities  int
	meshes    int
	triangles int
	missing   []string
}

// newTool mounts baseDir/id1 and baseDir/game and loads the given wads. If
// no wad is named all wads in the filesystem root are used.
func newTool(baseDir, game string, wads []string, o brush.Options) (*tool, error) {
	dirs := []string{"id1"}
	if game != "" && !strings.EqualFold(game, "id1") {
		dirs = append(dirs, game)
	}
	for _, d := range dirs {
		if err := filesystem.Mount(filepath.Join(baseDir, d)); err != nil {
			slog.Warn("Game directory not mounted", "dir", d, "err", err)
		}
	}
	t := &tool{
		sizer:  texture.NewSizer(),
		mesher: brush.NewMesher(o),
		wads:   make(map[string]bool),
		sums:   make(map[string]uint16),
	}
	if len(wads) == 0 {
		infos, _ := filesystem.ReadDir("/")
		for _, fi := range infos {
			if !fi.IsDir() && strings.EqualFold(filesystem.Ext(fi.Name()), ".wad") {
				wads = append(wads, fi.Name())
			}
		}
	}
	for _, w := range wads {
		if _, err := t.loadWad(w); err != nil {
			t.close()
			return nil, err
		}
	}
	return t, nil
}

func (t *tool) close() {
	filesystem.Reset()
}

// loadWad reports whether name was loaded by this call.
func (t *tool) loadWad(name string) (bool, error) {
	key := strings.ToLower(filepath.ToSlash(name))
	if t.wads[key] {
		return false, nil
	}
	var (
		w   *wad.Wad
		err error
	)
	if data, rerr := os.ReadFile(name); rerr == nil {
		w, err = wad.Read(name, data)
	} else {
		w, err = wad.Load(name)
	}
	if err != nil {
		return false, err
	}
	t.wads[key] = true
	t.sizer.AddWad(w)
	slog.Debug("Loaded wad", "name", name, "textures", len(w.Names()))
	return true, nil
}

// worldspawnWads loads the wads the map names in its worldspawn. Editors
// store them as absolute paths separated by ';', so the path is tried as
// is, relative to the game root and as gfx/<base>.
func (t *tool) worldspawnWads(m *mapfile.Map) bool {
	ws, ok := m.Worldspawn()
	if !ok {
		return false
	}
	list, ok := ws.Property("wad")
	if !ok {
		return false
	}
	added := false
	for _, w := range strings.Split(list, ";") {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		base := path.Base(filepath.ToSlash(w))
		var err error
		for _, c := range []string{w, strings.TrimPrefix(filepath.ToSlash(w), "/"), path.Join("gfx", base), base} {
			var loaded bool
			if loaded, err = t.loadWad(c); err == nil {
				added = added || loaded
				break
			}
		}
		if err != nil {
			slog.Warn("Wad not found", "wad", w, "err", err)
		}
	}
	return added
}

func openMap(name string) (io.ReadCloser, error) {
	if f, err := os.Open(name); err == nil {
		return f, nil
	}
	return filesystem.Open(name)
}

// read parses the map from the OS filesystem or, failing that, from the game
// filesystem and returns it with the checksum of its text.
func (t *tool) read(name string) (*mapfile.Map, uint16, error) {
	r, err := openMap(name)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "map %s", name)
	}
	defer r.Close()
	d := crc.New()
	m, err := mapfile.Read(io.TeeReader(r, d), t.sizer.Size)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "map %s", name)
	}
	return m, d.Sum16(), nil
}

func (t *tool) load(name string) (*mapfile.Map, uint16, error) {
	m, sum, err := t.read(name)
	if err != nil {
		return nil, 0, err
	}
	if t.worldspawnWads(m) {
		// texture sizes changed, the plane UVs have to be computed again
		return t.read(name)
	}
	return m, sum, nil
}

func (t *tool) mesh(name string) ([][]*mesh.Mesh, *result, error) {
	m, sum, err := t.load(name)
	if err != nil {
		return nil, nil, err
	}
	if t.skipUnchanged {
		if last, ok := t.sums[name]; ok && last == sum {
			return nil, nil, nil
		}
	}
	meshes := t.mesher.MeshMap(m)

	g := scene.NewGraph(texture.NewManager(t.sizer))
	if _, err := scene.Build(g, scene.NewLoader(), m, meshes); err != nil {
		return nil, nil, err
	}
	r := &result{source: sum, entities: len(m.Entities())}
	seen := make(map[string]bool)
	g.Walk(scene.Root, func(_ scene.NodeID, n *scene.Node) bool {
		for _, tex := range n.Textures {
			if tex.Dummy && !seen[tex.Name] {
				seen[tex.Name] = true
				r.missing = append(r.missing, tex.Name)
			}
		}
		for _, ms := range n.Meshes {
			r.meshes++
			r.triangles += ms.Triangles()
			if !ms.Fits16() {
				slog.Debug("Mesh needs 32 bit indices", "entity", n.ClassName, "texture", ms.Texture, "vertices", len(ms.Vertices))
			}
		}
		return true
	})
	return meshes, r, nil
}

func (t *tool) convert(name string) error {
	meshes, r, err := t.mesh(name)
	if err != nil {
		return err
	}
	if r == nil {
		slog.Debug("Map unchanged", "map", name)
		return nil
	}
	var flat []*mesh.Mesh
	for _, ms := range meshes {
		flat = append(flat, ms...)
	}
	if t.out != "" {
		if err := writeFile(t.out, func(w io.Writer) error { return mesh.Encode(w, &mesh.Cache{Source: r.source, Meshes: flat}) }); err != nil {
			return err
		}
	}
	if t.obj != "" {
		obj := filesystem.StripExt(filepath.Base(name))
		if err := writeFile(t.obj, func(w io.Writer) error { return mesh.WriteOBJ(w, obj, flat) }); err != nil {
			return err
		}
	}
	if len(r.missing) > 0 {
		slog.Warn("Textures without size", "map", name, "textures", r.missing)
	}
	t.sums[name] = r.source
	conlog.Printf("%s: %d entities, %d meshes, %d triangles\n", name, r.entities, r.meshes, r.triangles)
	return nil
}

func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", name)
	}
	return errors.WithStack(f.Close())
}
