package fragment

import (
	"fmt"
	"regexp"
	"strconv"
)

// HeaderLines is number of header lines every fragment starts with. Those
// are skipped when fragments are put back together.
const HeaderLines = 1

const markerTag = "%cellsplit"

// Marker line references child fragment from its parent:
//
//	<indent><fragment-stem> %cellsplit<index>
var markerRe = regexp.MustCompile(`^\s*(\S+) ` + markerTag + `<(\d+)>$`)

// Ref is parsed marker line.
type Ref struct {
	Stem  string
	Index int
}

// FormatMarker returns marker line text (without indentation and terminator).
func FormatMarker(stem string, index int) string {
	return fmt.Sprintf("%s %s<%d>", stem, markerTag, index)
}

// ParseMarker recognizes marker line.
func ParseMarker(text string) (Ref, bool) {
	m := markerRe.FindStringSubmatch(text)
	if m == nil {
		return Ref{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		// index does not fit, cannot be ours
		return Ref{}, false
	}
	return Ref{Stem: m[1], Index: n}, true
}

// FormatHeader returns the first line of fragment with given index produced
// from source.
func FormatHeader(comment string, index int, source string) string {
	return fmt.Sprintf("%s part %d of %s", comment, index, source)
}
