// SPDX-License-Identifier: GPL-2.0-or-later

// Package filesystem layers game directories and their PAK archives into a
// single namespace. Later mounts shadow earlier ones, archives shadow loose
// files of the same directory and pakN.pak shadows pak(N-1).pak.
package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/tools/godoc/vfs"

	"brushmesh/pack"
)

var (
	mounts []string
	paks   []*pack.Pack
	ns     = vfs.NameSpace{}
	mutex  sync.RWMutex
)

type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

type packFileSystem struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (f *fileInfo) Name() string {
	return f.name
}
func (f *fileInfo) Size() int64 {
	return f.size
}
func (f *fileInfo) Mode() fs.FileMode {
	if f.dir {
		return fs.ModeDir | 0555
	}
	return 0444
}
func (f *fileInfo) ModTime() time.Time {
	return time.Time{}
}
func (f *fileInfo) IsDir() bool {
	return f.dir
}
func (f *fileInfo) Sys() any {
	return nil
}

// inside a pack file there is no 'root'. all files are relative to '.'
func packPath(p string) string {
	return strings.Trim(p, "/")
}

func (p packFileSystem) Open(name string) (vfs.ReadSeekCloser, error) {
	f, err := p.p.Open(packPath(name))
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packFileSystem) Stat(name string) (os.FileInfo, error) {
	name = packPath(name)
	if s, ok := p.p.Size(name); ok {
		return &fileInfo{name: path.Base(name), size: s}, nil
	}
	if _, err := p.ReadDir(name); err != nil {
		return nil, err
	}
	return &fileInfo{name: path.Base("/" + name), dir: true}, nil
}

func (p packFileSystem) Lstat(name string) (os.FileInfo, error) {
	return p.Stat(name)
}

func (p packFileSystem) ReadDir(name string) ([]os.FileInfo, error) {
	prefix := strings.ToLower(packPath(name))
	if prefix != "" {
		prefix += "/"
	}
	seen := make(map[string]bool)
	var infos []os.FileInfo
	for _, n := range p.p.Names() {
		if !strings.HasPrefix(strings.ToLower(n), prefix) {
			continue
		}
		rest := n[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			sub := rest[:i]
			if !seen[sub] {
				seen[sub] = true
				infos = append(infos, &fileInfo{name: sub, dir: true})
			}
			continue
		}
		s, _ := p.p.Size(n)
		infos = append(infos, &fileInfo{name: rest, size: s})
	}
	if len(infos) == 0 {
		return nil, os.ErrNotExist
	}
	return infos, nil
}

func (p packFileSystem) RootType(string) vfs.RootType {
	return ""
}

func (p packFileSystem) String() string {
	return p.p.String()
}

// Mount adds dir and its pak0.pak, pak1.pak, ... archives in front of
// everything mounted before.
func Mount(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return errors.WithStack(err)
	}
	if !fi.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}
	mutex.Lock()
	defer mutex.Unlock()
	ns.Bind("/", vfs.OS(dir), "/", vfs.BindBefore)
	for i := 0; ; i++ {
		pfp := filepath.Join(dir, fmt.Sprintf("pak%d.pak", i))
		if _, err := os.Stat(pfp); err != nil {
			break
		}
		p, err := pack.NewPackReader(pfp)
		if err != nil {
			return err
		}
		paks = append(paks, p)
		ns.Bind("/", packFileSystem{p}, "/", vfs.BindBefore)
	}
	mounts = append(mounts, dir)
	return nil
}

// Mounted returns the mounted directories, most recent last.
func Mounted() []string {
	mutex.RLock()
	defer mutex.RUnlock()
	return append([]string(nil), mounts...)
}

// Reset unmounts everything and closes all open archives.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	for _, p := range paks {
		p.Close()
	}
	paks = nil
	mounts = nil
	ns = vfs.NameSpace{}
}

func Stat(name string) (os.FileInfo, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	return ns.Stat(path.Join("/", filepath.ToSlash(name)))
}

// ReadDir merges the directory listings of all mounts.
func ReadDir(name string) ([]os.FileInfo, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	infos, err := ns.ReadDir(path.Join("/", filepath.ToSlash(name)))
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

func Open(name string) (File, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	nf, err := ns.Open(path.Join("/", filepath.ToSlash(name)))
	if err != nil {
		return nil, err
	}
	f, ok := nf.(File)
	if !ok {
		nf.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func ReadFile(name string) ([]byte, error) {
	file, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
