// Package diag renders the compiler's caret-style diagnostics: the
// offending source line, a run of spaces up to the reported column, a
// caret, and a message.
//
// This plays the role of the source's ExitWithErrorAt, but returns an
// error instead of calling exit(1) directly - only the CLI driver in
// cmd/jcc terminates the process, per the design note on propagating
// failures as values instead of exceptional control flow.
package diag

import (
	"fmt"
	"strings"
)

// Error is a single fatal diagnostic tied to a byte offset in the
// original source.
type Error struct {
	// Source is the complete program text, echoed verbatim on the
	// first line of the rendered message.
	Source string

	// Pos is the byte offset of the offending token/character.
	Pos int

	// Message is the human-readable description of the problem.
	Message string
}

// Error implements the error interface, rendering the exact wire format
// the specification requires: the source on one line, a line of blanks
// padded to Pos, then "^ " and the message.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	b.WriteString("\n")
	if e.Pos > 0 {
		b.WriteString(strings.Repeat(" ", e.Pos))
	}
	b.WriteString("^ ")
	b.WriteString(e.Message)
	return b.String()
}

// New builds a caret-annotated *Error at byte offset pos within source.
func New(source string, pos int, format string, args ...interface{}) error {
	return &Error{Source: source, Pos: pos, Message: fmt.Sprintf(format, args...)}
}
