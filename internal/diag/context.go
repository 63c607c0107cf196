package diag

import (
	"fmt"
	"runtime"
	"strings"
)

// maxFrames bounds how much of the call stack a Context retains.
// Deep application stacks add noise without aiding diagnosis.
const maxFrames = 8

// Frame is one retained call-stack entry.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Context is the captured call-origin of an operation: the release site
// of a released object, or the call site of an offending access.
type Context []Frame

// Capture records the current call stack, skipping skip frames above the
// caller of Capture itself. Engine entry points pass the number of
// internal frames between them and application code.
func Capture(skip int) Context {
	pcs := make([]uintptr, maxFrames)
	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	ctx := make(Context, 0, n)
	for {
		fr, more := frames.Next()
		ctx = append(ctx, Frame{
			Function: fr.Function,
			File:     fr.File,
			Line:     fr.Line,
		})
		if !more {
			break
		}
	}
	return ctx
}

// String renders the context as a single line, innermost frame first.
func (c Context) String() string {
	if len(c) == 0 {
		return "<no context>"
	}
	parts := make([]string, len(c))
	for i, fr := range c {
		parts[i] = fmt.Sprintf("%s (%s:%d)", fr.Function, fr.File, fr.Line)
	}
	return strings.Join(parts, " <- ")
}

// Top returns the innermost frame, or a zero Frame if the context is empty.
func (c Context) Top() Frame {
	if len(c) == 0 {
		return Frame{}
	}
	return c[0]
}
