// SPDX-License-Identifier: GPL-2.0-or-later

// brushmesh converts TrenchBroom/Quake .map files into textured triangle
// meshes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"

	"brushmesh/brush"
	"brushmesh/commandline"
	"brushmesh/conlog"
)

func main() {
	if err := commandline.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level := slog.LevelInfo
	if commandline.Debug() {
		level = slog.LevelDebug
	}
	conlog.New(os.Stderr, level)
	conlog.SetPrintf(func(format string, v ...interface{}) {
		fmt.Printf(format, v...)
	})
	if err := run(); err != nil {
		slog.Error("brushmesh failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	maps := commandline.Maps()
	if len(maps) == 0 {
		return errors.New("no map given")
	}
	if len(maps) > 1 && (commandline.Out() != "" || commandline.OBJ() != "") {
		return errors.New("-out and -obj take a single map")
	}
	t, err := newTool(commandline.BaseDirectory(), commandline.Game(), commandline.Wads(), brush.Options{
		Epsilon:        commandline.Epsilon(),
		ContainEpsilon: commandline.ContainEpsilon(),
		SkipTextures:   commandline.SkipTextures(),
		Workers:        commandline.Workers(),
	})
	if err != nil {
		return err
	}
	t.out = commandline.Out()
	t.obj = commandline.OBJ()
	defer t.close()

	convert := func(name string) {
		if err := t.convert(name); err != nil {
			slog.Error("Conversion failed", "map", name, "err", err)
		}
	}
	if !commandline.Watch() {
		for _, m := range maps {
			if err := t.convert(m); err != nil {
				return err
			}
		}
		return nil
	}
	t.skipUnchanged = true
	for _, m := range maps {
		convert(m)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	delay := time.Duration(commandline.WatchDelay()) * time.Millisecond
	slog.Info("Watching", "maps", maps, "delay", delay)
	return watch(ctx, maps, delay, convert)
}
