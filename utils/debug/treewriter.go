// Package debug has helpers to produce human readable dumps of internal
// structures.
package debug

import (
	"fmt"
	"strings"
)

const indentUnit = "  "

// TreeWriter accumulates indented lines of a tree dump.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

// Line adds formatted line indented according to depth.
func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.w.WriteString(strings.Repeat(indentUnit, max(depth, 0)))
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}
