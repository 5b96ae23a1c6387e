// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestBoolInt(t *testing.T) {
	var flags flag.FlagSet
	flags.Init("test", flag.ContinueOnError)
	a := boolInt{false, 4}
	b := boolInt{false, 5}
	c := boolInt{true, 6}
	d := boolInt{false, 7}
	e := boolInt{false, 8}
	f := boolInt{true, 9}
	flags.Var(&a, "a", "usage")
	flags.Var(&b, "b", "usage")
	flags.Var(&c, "c", "usage")
	flags.Var(&d, "d", "usage")
	flags.Var(&e, "e", "usage")
	flags.Var(&f, "f", "usage")
	if err := flags.Parse([]string{"-a", "-b=3", "-e=true", "-f=false"}); err != nil {
		t.Error(err)
	}
	if a.set != true {
		t.Errorf("a.set = %v", a.set)
	}
	if b.set != true {
		t.Errorf("b.set = %v", b.set)
	}
	if c.set != true {
		t.Errorf("c.set = %v", c.set)
	}
	if d.set != false {
		t.Errorf("d.set = %v", d.set)
	}
	if e.set != true {
		t.Errorf("e.set = %v", e.set)
	}
	if f.set != false {
		t.Errorf("f.set = %v", f.set)
	}
	if a.num != 4 {
		t.Errorf("a.num = %v", a.num)
	}
	if b.num != 3 {
		t.Errorf("b.num = %v", b.num)
	}
	if c.num != 6 {
		t.Errorf("c.num = %v", c.num)
	}
	if d.num != 7 {
		t.Errorf("d.num = %v", d.num)
	}
}

func newFlags() (*flag.FlagSet, *Config) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c := defaults()
	register(fs, &c)
	return fs, &c
}

func writeConfig(t *testing.T, s string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "brushmesh.toml")
	if err := os.WriteFile(name, []byte(s), 0644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestFlags(t *testing.T) {
	fs, c := newFlags()
	err := parse(fs, c, []string{
		"-basedir", "/quake", "-wad", "gfx/base.wad", "-wad", "a.wad,b.wad",
		"-skip", "clip", "-epsilon", "0.25", "-watch=500", "-workers", "3",
		"maps/start.map", "maps/e1m1.map",
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseDir != "/quake" || c.Game != "id1" {
		t.Errorf("BaseDir, Game = %q, %q", c.BaseDir, c.Game)
	}
	if len(c.Wads) != 3 || c.Wads[0] != "gfx/base.wad" || c.Wads[2] != "b.wad" {
		t.Errorf("Wads = %v", c.Wads)
	}
	if len(c.Skip) != 1 || c.Skip[0] != "clip" {
		t.Errorf("Skip = %v", c.Skip)
	}
	if c.Epsilon != 0.25 || c.Workers != 3 {
		t.Errorf("Epsilon, Workers = %v, %v", c.Epsilon, c.Workers)
	}
	if !c.Watch.set || c.Watch.num != 500 {
		t.Errorf("Watch = %+v", c.Watch)
	}
	if len(c.args) != 2 || c.args[1] != "maps/e1m1.map" {
		t.Errorf("args = %v", c.args)
	}
}

func TestDefaults(t *testing.T) {
	fs, c := newFlags()
	if err := parse(fs, c, nil); err != nil {
		t.Fatal(err)
	}
	if c.Epsilon != 1.0/16 || c.Watch.set || c.Watch.num != 200 || c.Game != "id1" {
		t.Errorf("defaults = %+v", c)
	}
}

func TestConfigFile(t *testing.T) {
	name := writeConfig(t, `
basedir = "/games/quake"
game = "mymod"
wads = ["gfx/base.wad", "gfx/mod.wad"]
skip = ["clip", "trigger"]
epsilon = 0.125
workers = 2
watch = true
`)
	fs, c := newFlags()
	err := parse(fs, c, []string{"-config", name, "-game", "othermod", "-skip", "hint", "start.map"})
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseDir != "/games/quake" {
		t.Errorf("BaseDir = %q, want file value", c.BaseDir)
	}
	if c.Game != "othermod" {
		t.Errorf("Game = %q, want flag value", c.Game)
	}
	if len(c.Wads) != 2 || c.Wads[1] != "gfx/mod.wad" {
		t.Errorf("Wads = %v", c.Wads)
	}
	if len(c.Skip) != 1 || c.Skip[0] != "hint" {
		t.Errorf("Skip = %v, want only the flag value", c.Skip)
	}
	if c.Epsilon != 0.125 || c.Workers != 2 {
		t.Errorf("Epsilon, Workers = %v, %v", c.Epsilon, c.Workers)
	}
	if !c.Watch.set || c.Watch.num != 200 {
		t.Errorf("Watch = %+v", c.Watch)
	}
	if len(c.args) != 1 || c.args[0] != "start.map" {
		t.Errorf("args = %v", c.args)
	}
}

func TestConfigFileErrors(t *testing.T) {
	fs, c := newFlags()
	if err := parse(fs, c, []string{"-config", filepath.Join(t.TempDir(), "missing.toml")}); err == nil {
		t.Errorf("missing config file accepted")
	}
	fs, c = newFlags()
	if err := parse(fs, c, []string{"-config", writeConfig(t, "colour = \"red\"\n")}); err == nil {
		t.Errorf("unknown key accepted")
	}
	fs, c = newFlags()
	if err := parse(fs, c, []string{"-config", writeConfig(t, "workers = \"many\"\n")}); err == nil {
		t.Errorf("mistyped value accepted")
	}
}
