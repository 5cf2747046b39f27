package script

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category is what a single source line means for segmentation.
type Category int

const (
	Plain Category = iota
	CellBreak
	Terminator
	Opener
	Reentry
	Unsupported
)

var categoryNames = [...]string{"plain", "cell-break", "terminator", "opener", "reentry", "unsupported"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Dialect describes keywords and markers of the scripting language.
type Dialect struct {
	// CellBreak starts a new cell when found at the beginning of trimmed line.
	CellBreak string
	// Comment is a line comment prefix, used for fragment headers.
	Comment string
	// Terminator closes a block when trimmed line is equal to it.
	Terminator  string
	Openers     []string
	Reentries   []string
	Unsupported []string
}

// Matlab returns dialect for MATLAB/Octave cell-mode scripts.
func Matlab() *Dialect {
	return &Dialect{
		CellBreak:   "%%",
		Comment:     "%",
		Terminator:  "end",
		Openers:     []string{"for", "while", "parfor", "if", "try"},
		Reentries:   []string{"else", "elseif", "catch"},
		Unsupported: []string{"switch"},
	}
}

// Classify returns category of the line. Checks are done in order of
// precedence: cell break, terminator, opener, re-entry, unsupported.
func (d *Dialect) Classify(l Line) Category {
	text := l.Trimmed()
	switch {
	case len(d.CellBreak) > 0 && strings.HasPrefix(text, d.CellBreak):
		return CellBreak
	case text == d.Terminator:
		return Terminator
	case startsWithKeyword(text, d.Openers):
		return Opener
	case startsWithKeyword(text, d.Reentries):
		return Reentry
	case startsWithKeyword(text, d.Unsupported):
		return Unsupported
	}
	return Plain
}

// CellTitle returns text of the cell break line without marker characters.
func (d *Dialect) CellTitle(l Line) string {
	return strings.TrimLeft(l.Trimmed(), d.CellBreak)
}

// startsWithKeyword reports whether text begins with one of keywords as a
// whole word: "if(x)" and "if x" match, "iffy = 1" does not.
func startsWithKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if len(kw) == 0 || !strings.HasPrefix(text, kw) {
			continue
		}
		rest := text[len(kw):]
		if len(rest) == 0 {
			return true
		}
		if r, _ := utf8.DecodeRuneInString(rest); !isIdentRune(r) {
			return true
		}
	}
	return false
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
