// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline holds the tool settings. They come from flags and an
// optional TOML file named by -config; flags given explicitly win over the
// file.
package commandline

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type Config struct {
	BaseDir        string   `toml:"basedir"`
	Game           string   `toml:"game"`
	Wads           []string `toml:"wads"`
	Skip           []string `toml:"skip"`
	Out            string   `toml:"out"`
	OBJ            string   `toml:"obj"`
	Epsilon        float64  `toml:"epsilon"`
	ContainEpsilon float64  `toml:"contain_epsilon"`
	Workers        int      `toml:"workers"`
	Debug          bool     `toml:"debug"`
	Watch          boolInt  `toml:"watch"`

	file string
	args []string
}

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

// UnmarshalText accepts the same values as the flag, so `watch = 500` and
// `watch = true` both work in the config file.
func (b *boolInt) UnmarshalText(t []byte) error {
	return b.Set(string(t))
}

type list struct {
	l *[]string
}

func (l list) Set(s string) error {
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			*l.l = append(*l.l, e)
		}
	}
	return nil
}

func (l list) String() string {
	if l.l == nil {
		return ""
	}
	return strings.Join(*l.l, ",")
}

func defaults() Config {
	return Config{
		BaseDir: ".",
		Game:    "id1",
		Epsilon: 1.0 / 16,
		Watch:   boolInt{false, 200},
	}
}

func register(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.BaseDir, "basedir", c.BaseDir, "directory holding the game directories")
	fs.StringVar(&c.Game, "game", c.Game, "game directory mounted on top of the base directory")
	fs.Var(list{&c.Wads}, "wad", "texture wad inside the game filesystem, repeatable")
	fs.Var(list{&c.Skip}, "skip", "texture that produces no faces, repeatable")
	fs.StringVar(&c.Out, "out", c.Out, "write the mesh cache to this file")
	fs.StringVar(&c.OBJ, "obj", c.OBJ, "write a Wavefront OBJ to this file")
	fs.Float64Var(&c.Epsilon, "epsilon", c.Epsilon, "tolerance for parallel planes and containment")
	fs.Float64Var(&c.ContainEpsilon, "containepsilon", c.ContainEpsilon, "containment tolerance, 0 uses -epsilon")
	fs.IntVar(&c.Workers, "workers", c.Workers, "meshing goroutines, 0 is one per CPU")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "debug logging")
	fs.Var(&c.Watch, "watch", "convert again when the map changes, optional debounce in ms")
	fs.StringVar(&c.file, "config", "", "TOML config file")
}

func parse(fs *flag.FlagSet, c *Config, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if c.file == "" {
		return nil
	}
	b, err := os.ReadFile(c.file)
	if err != nil {
		return errors.WithStack(err)
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	d := toml.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()
	if err := d.Decode(c); err != nil {
		return errors.Wrapf(err, "config %s", c.file)
	}
	if explicit["wad"] {
		c.Wads = nil
	}
	if explicit["skip"] {
		c.Skip = nil
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	return nil
}

var cfg = defaults()

func init() {
	register(flag.CommandLine, &cfg)
}

// Parse reads the process arguments and the config file.
func Parse() error {
	return parse(flag.CommandLine, &cfg, os.Args[1:])
}

func BaseDirectory() string {
	return cfg.BaseDir
}

func Game() string {
	return cfg.Game
}

func Wads() []string {
	return cfg.Wads
}

func SkipTextures() []string {
	return cfg.Skip
}

func Out() string {
	return cfg.Out
}

func OBJ() string {
	return cfg.OBJ
}

func Epsilon() float32 {
	return float32(cfg.Epsilon)
}

func ContainEpsilon() float32 {
	return float32(cfg.ContainEpsilon)
}

func Workers() int {
	return cfg.Workers
}

func Debug() bool {
	return cfg.Debug
}

func Watch() bool {
	return cfg.Watch.set
}

// WatchDelay is the debounce in milliseconds.
func WatchDelay() int {
	return cfg.Watch.num
}

// Maps returns the positional arguments.
func Maps() []string {
	return cfg.args
}
