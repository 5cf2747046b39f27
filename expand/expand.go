// Package expand splits cell-mode script into fragments: one per cell and one
// per block body, with parent fragments referencing children by marker lines.
package expand

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"cellsplit/collapse"
	"cellsplit/fragment"
	"cellsplit/script"
)

// Options controls expand.
type Options struct {
	Dialect *script.Dialect
	// Overwrite removes fragments of previous run and replaces existing files.
	Overwrite bool
	// Strict fails on unbalanced blocks instead of doing best effort split.
	Strict bool
	// SlugLimit is maximum number of characters in slug part of fragment names.
	SlugLimit int
	// BlockIndent is added to opener line indentation for markers of block
	// fragments.
	BlockIndent string
	// Charset of the source, nil for UTF-8.
	Charset encoding.Encoding
}

// DefaultOptions returns options for MATLAB scripts.
func DefaultOptions() Options {
	return Options{
		Dialect:     script.Matlab(),
		SlugLimit:   fragment.DefaultSlugLimit,
		BlockIndent: "    ",
	}
}

// Result describes finished expand.
type Result struct {
	Source    string
	Root      string
	Fragments []string // numbered fragments in order of creation
	Lines     int
}

// Process splits script at path into fragments placed next to it. On error
// fragments written so far are left as they are.
func Process(ctx context.Context, store fragment.Store, path string, opts Options, log *zap.Logger) (res *Result, err error) {
	if opts.Dialect == nil {
		opts.Dialect = script.Matlab()
	}
	if opts.SlugLimit <= 0 {
		opts.SlugLimit = fragment.DefaultSlugLimit
	}

	src, err := store.Canonicalize(path)
	if err != nil {
		return nil, fragment.IoFailed("canonicalize", path, err)
	}
	pattern, err := fragment.NewPattern(src)
	if err != nil {
		return nil, err
	}
	if err := checkText(store, src, opts.Charset != nil); err != nil {
		return nil, err
	}

	if root := pattern.Root(); opts.Overwrite && store.Exists(root) {
		n, err := collapse.Delete(ctx, store, root, log)
		if err != nil {
			return nil, err
		}
		log.Debug("Fragments of previous run removed", zap.String("root", root), zap.Int("count", n))
	}

	lines, err := fragment.ReadLines(store, src, opts.Charset)
	if err != nil {
		return nil, err
	}

	s := &segmenter{
		store:   store,
		pattern: pattern,
		dialect: opts.Dialect,
		opts:    &opts,
		log:     log,
	}
	defer func() {
		if err = multierr.Append(err, s.closeAll()); err != nil {
			res = nil
		}
	}()

	eol := "\n"
	if len(lines) > 0 {
		eol = lines[0].Terminator()
	}
	if err := s.begin(eol); err != nil {
		return nil, err
	}
	for _, l := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.feed(l); err != nil {
			return nil, err
		}
	}
	if err := s.finish(); err != nil {
		return nil, err
	}

	return &Result{
		Source:    src,
		Root:      pattern.Root(),
		Fragments: s.created,
		Lines:     len(lines),
	}, nil
}
