package fragment

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const rootToken = "gen"

// Pattern names fragment files of a single source "<dir>/<stem>.<ext>" as
// "<dir>/<stem>_<token>.<ext>". Root fragment token is "gen", numbered ones
// use "<slug>_<index>".
type Pattern struct {
	dir, stem, ext string
}

// NewPattern prepares naming pattern for fragments of source file at path.
// Path is expected to be canonical already.
func NewPattern(path string) (Pattern, error) {
	if len(path) == 0 {
		return Pattern{}, InvalidPath(path, "no file name")
	}
	if !utf8.ValidString(path) {
		return Pattern{}, InvalidPath(path, "file name is not valid UTF-8")
	}
	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return Pattern{}, InvalidPath(path, "no file name")
	}
	ext := filepath.Ext(base)
	if len(ext) <= 1 {
		return Pattern{}, InvalidPath(path, "no file name extension")
	}
	stem := strings.TrimSuffix(base, ext)
	if len(stem) == 0 {
		return Pattern{}, InvalidPath(path, "no file name")
	}
	// marker lines separate stem from the tag with a space
	if strings.ContainsFunc(stem, unicode.IsSpace) {
		return Pattern{}, InvalidPath(path, "file name contains white space")
	}
	return Pattern{dir: filepath.Dir(path), stem: stem, ext: ext}, nil
}

// PatternFromRoot restores naming pattern from root fragment path.
func PatternFromRoot(root string) (Pattern, error) {
	if !IsRoot(root) {
		return Pattern{}, InvalidPath(root, "not a root fragment name")
	}
	stem := strings.TrimSuffix(Stem(root), "_"+rootToken)
	return NewPattern(filepath.Join(filepath.Dir(root), stem+filepath.Ext(root)))
}

// IsRoot reports whether path names a root fragment.
func IsRoot(path string) bool {
	stem, ok := strings.CutSuffix(Stem(path), "_"+rootToken)
	return ok && len(stem) > 0
}

// Root returns path of the root fragment.
func (p Pattern) Root() string {
	return p.name(rootToken)
}

// Fragment returns path of numbered fragment.
func (p Pattern) Fragment(slug string, index int) string {
	return p.name(slug + "_" + strconv.Itoa(index))
}

// IsFragment reports whether stem from a marker line names numbered fragment
// of this pattern with the same index: "<stem>_<slug>_<index>" where slug
// is what Slugify produces.
func (p Pattern) IsFragment(stem string, index int) bool {
	rest, ok := strings.CutPrefix(stem, p.stem+"_")
	if !ok {
		return false
	}
	slug, ok := strings.CutSuffix(rest, "_"+strconv.Itoa(index))
	if !ok {
		return false
	}
	for _, r := range slug {
		if r != '_' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Source returns path of the file fragments were produced from.
func (p Pattern) Source() string {
	return filepath.Join(p.dir, p.stem+p.ext)
}

// Wildcard returns human readable form of pattern for messages.
func (p Pattern) Wildcard() string {
	return p.name("*")
}

// Resolve returns path of fragment referenced by stem from a marker line.
func (p Pattern) Resolve(stem string) string {
	return filepath.Join(p.dir, stem+p.ext)
}

func (p Pattern) name(token string) string {
	return filepath.Join(p.dir, p.stem+"_"+token+p.ext)
}

// Stem returns file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
