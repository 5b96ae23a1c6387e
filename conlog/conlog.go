// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog sets up logging for the tool. Structured notices go through
// log/slog, plain console output through Printf.
package conlog

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

var (
	mu sync.Mutex
	p  = func(format string, v ...interface{}) {
		slog.Info(fmt.Sprintf(format, v...))
	}
)

// New returns a text logger for w and makes it the slog default.
func New(w io.Writer, level slog.Level) *slog.Logger {
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}

func SetPrintf(f func(string, ...interface{})) {
	mu.Lock()
	defer mu.Unlock()
	p = f
}

// Printf writes console output. It is safe for concurrent use.
func Printf(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	p(format, v...)
}
