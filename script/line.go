// Package script models cell-mode script sources: lines as they were read
// and the keyword dialect used to classify them.
package script

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Line is a single record of a source file. Text never contains the line
// terminator, EOL keeps it ("\n", "\r\n" or empty for last unterminated
// line) so sources could be reproduced exactly.
type Line struct {
	Text string
	EOL  string
}

// Indent returns leading whitespace of the line.
func (l Line) Indent() string {
	return l.Text[:len(l.Text)-len(l.Trimmed())]
}

// Trimmed returns line text without leading whitespace.
func (l Line) Trimmed() string {
	return strings.TrimLeft(l.Text, " \t\v\f")
}

// Terminator returns line terminator to use when writing line out. Last
// unterminated line of a source gets "\n" since something may follow it in
// the destination.
func (l Line) Terminator() string {
	if len(l.EOL) == 0 {
		return "\n"
	}
	return l.EOL
}

// ReadLines reads all lines from r preserving line terminators.
func ReadLines(r io.Reader) ([]Line, error) {
	var (
		lines []Line
		br    = bufio.NewReader(r)
	)
	for {
		s, err := br.ReadString('\n')
		if len(s) > 0 {
			lines = append(lines, splitEOL(s))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
	}
}

func splitEOL(s string) Line {
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return Line{Text: s[:len(s)-2], EOL: "\r\n"}
	case strings.HasSuffix(s, "\n"):
		return Line{Text: s[:len(s)-1], EOL: "\n"}
	default:
		return Line{Text: s}
	}
}
