// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const maxLineLength = 1 << 20

// lineReader hands out trimmed, non-empty lines and counts them.
type lineReader struct {
	s    *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &lineReader{s: s}
}

// next returns false at the end of input.
func (r *lineReader) next() (string, bool, error) {
	for r.s.Scan() {
		r.line++
		l := strings.TrimSpace(r.s.Text())
		if l == "" {
			continue
		}
		return l, true, nil
	}
	if err := r.s.Err(); err != nil {
		return "", false, errors.Wrapf(err, "line %d", r.line+1)
	}
	return "", false, nil
}
