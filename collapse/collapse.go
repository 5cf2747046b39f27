// Package collapse puts fragments produced by expand back together into a
// single script and knows how to find (and remove) all of them.
package collapse

import (
	"context"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cellsplit/fragment"
	"cellsplit/script"
)

// Options controls collapse.
type Options struct {
	// Overwrite allows replacing existing output file.
	Overwrite bool
	// Cleanup removes root and all fragments after successful collapse.
	Cleanup bool
}

// Result describes finished collapse.
type Result struct {
	Root      string
	Output    string
	Fragments int // number of inlined numbered fragments
}

// Process reconstructs original script. Path is either root fragment
// ("<stem>_gen.<ext>", output goes to "<stem>.<ext>" next to it) or path of
// the script to reconstruct (root fragment is looked for next to it).
func Process(ctx context.Context, store fragment.Store, path string, opts Options, log *zap.Logger) (*Result, error) {
	root, output, err := locate(store, path)
	if err != nil {
		return nil, err
	}
	pattern, err := fragment.PatternFromRoot(root)
	if err != nil {
		return nil, err
	}

	log.Debug("Collapsing fragments", zap.String("root", root), zap.String("to", output))

	out, err := fragment.Create(store, output, opts.Overwrite)
	if err != nil {
		return nil, err
	}
	c := &collapser{
		ctx:     ctx,
		store:   store,
		pattern: pattern,
		out:     out,
		active:  make(map[string]bool),
	}
	err = c.inline(root)
	if err = multierr.Append(err, out.Close()); err != nil {
		return nil, err
	}

	res := &Result{Root: root, Output: output, Fragments: c.count}
	if opts.Cleanup {
		n, err := Delete(ctx, store, root, log)
		if err != nil {
			return nil, err
		}
		if err := store.Remove(root); err != nil {
			return nil, fragment.IoFailed("delete", root, err)
		}
		log.Debug("Fragments removed", zap.String("root", root), zap.Int("count", n+1))
	}
	return res, nil
}

func locate(store fragment.Store, path string) (root, output string, err error) {
	if fragment.IsRoot(path) {
		if root, err = store.Canonicalize(path); err != nil {
			return "", "", fragment.IoFailed("canonicalize", path, err)
		}
		pattern, err := fragment.PatternFromRoot(root)
		if err != nil {
			return "", "", err
		}
		return root, pattern.Source(), nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fragment.IoFailed("canonicalize", path, err)
	}
	pattern, err := fragment.NewPattern(abs)
	if err != nil {
		return "", "", err
	}
	if root, err = store.Canonicalize(pattern.Root()); err != nil {
		return "", "", fragment.IoFailed("canonicalize", pattern.Root(), err)
	}
	return root, filepath.Join(filepath.Dir(root), filepath.Base(abs)), nil
}

type collapser struct {
	ctx     context.Context
	store   fragment.Store
	pattern fragment.Pattern
	out     *fragment.Writer
	active  map[string]bool // fragments being inlined right now
	count   int
	pending bool // previous line had no terminator
}

// emit copies line to output. Only the very last line of output may stay
// unterminated, so a fragment edited to lose its final newline does not
// glue its last line to whatever follows it.
func (c *collapser) emit(l script.Line) error {
	if c.pending {
		if err := c.out.WriteLine("", "\n"); err != nil {
			return err
		}
	}
	c.pending = len(l.EOL) == 0
	return c.out.WriteLine(l.Text, l.EOL)
}

// inline copies fragment body into output replacing marker lines with
// referenced fragments, depth first.
func (c *collapser) inline(name string) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}

	lines, err := fragment.ReadLines(c.store, name, nil)
	if err != nil {
		return err
	}

	c.active[name] = true
	defer delete(c.active, name)

	for _, l := range skipHeader(lines) {
		ref, ok := parseRef(c.pattern, l)
		if !ok {
			if err := c.emit(l); err != nil {
				return err
			}
			continue
		}
		child := c.pattern.Resolve(ref.Stem)
		if c.active[child] {
			return &fragment.Error{Kind: fragment.KindCycle, Target: child, Text: name}
		}
		c.count++
		if err := c.inline(child); err != nil {
			return err
		}
	}
	return nil
}
