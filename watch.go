// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// watch calls run for each map that was written, once the map has been quiet
// for delay. Editors often save by renaming a temp file, so the directories
// are watched instead of the files.
func watch(ctx context.Context, maps []string, delay time.Duration, run func(string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()

	targets := make(map[string]string)
	dirs := make(map[string]bool)
	for _, m := range maps {
		abs, err := filepath.Abs(m)
		if err != nil {
			return errors.WithStack(err)
		}
		targets[abs] = m
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return errors.Wrapf(err, "watch %s", d)
		}
	}

	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			m, ok := targets[filepath.Clean(event.Name)]
			if !ok || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("Map changed", "map", m, "op", event.Op)
			pending[m] = true
			fire = time.After(delay)
		case <-fire:
			fire = nil
			names := make([]string, 0, len(pending))
			for m := range pending {
				names = append(names, m)
			}
			sort.Strings(names)
			for _, m := range names {
				delete(pending, m)
				run(m)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watch", "err", err)
		}
	}
}
