// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatError reports malformed map input. It is always fatal to the parse
// of the enclosing stream.
type FormatError struct {
	Scope string // plane, brush, entity or map
	Line  int    // 1-based, 0 if unknown
	Msg   string
	Err   error // underlying cause, may be nil
}

func (e *FormatError) Error() string {
	s := fmt.Sprintf("%s:%d: %s", e.Scope, e.Line, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatError(scope string, line int, msg string) error {
	return errors.WithStack(&FormatError{Scope: scope, Line: line, Msg: msg})
}

func wrapFormatError(err error, scope string, msg string) error {
	return errors.WithStack(&FormatError{Scope: scope, Msg: msg, Err: err})
}

// atLine stamps the line number onto a FormatError produced without one.
func atLine(err error, line int) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Line == 0 {
		fe.Line = line
	}
	return err
}
