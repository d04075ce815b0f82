// Package codebuf provides the append-only string builder used by the
// GLSL generator (spec §4.7, §9 "String builders": "use an append-only
// byte-vector-backed builder with an Ok/Err append API, not ad-hoc string
// concatenation that allocates on every step").
package codebuf

import (
	"fmt"
	"strings"
)

// Buffer is a write-only text builder that remembers the first error any
// append call hit, so a long chain of Printf/Line calls doesn't need to be
// checked after every step — callers check Err once at the end, matching
// the generator's "total function, typed error on anything unsupported"
// contract (spec §4.7).
type Buffer struct {
	b   strings.Builder
	err error
}

// New returns an empty Buffer.
func New() *Buffer { return &Buffer{} }

// Line appends s followed by a newline.
func (b *Buffer) Line(s string) *Buffer {
	if b.err != nil {
		return b
	}
	b.b.WriteString(s)
	b.b.WriteByte('\n')
	return b
}

// Printf appends a formatted line.
func (b *Buffer) Printf(format string, args ...any) *Buffer {
	if b.err != nil {
		return b
	}
	fmt.Fprintf(&b.b, format, args...)
	b.b.WriteByte('\n')
	return b
}

// Raw appends s with no trailing newline.
func (b *Buffer) Raw(s string) *Buffer {
	if b.err != nil {
		return b
	}
	b.b.WriteString(s)
	return b
}

// Fail records err if none has been recorded yet. Subsequent append calls
// become no-ops; String still returns whatever was built before the
// failure, for debugging, but callers must check Err.
func (b *Buffer) Fail(err error) *Buffer {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first error recorded via Fail, if any.
func (b *Buffer) Err() error { return b.err }

// String returns the built text so far, regardless of Err.
func (b *Buffer) String() string { return b.b.String() }
