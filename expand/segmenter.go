package expand

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cellsplit/fragment"
	"cellsplit/script"
)

type frameKind int

const (
	frameRoot frameKind = iota
	frameCell
	frameBlock
)

// frame is an open fragment on the stack, it owns its writer until popped.
type frame struct {
	kind  frameKind
	index int
	w     *fragment.Writer
}

// segmenter distributes source lines between fragments. Stack is never
// empty between begin and finish, its first element is the root fragment.
type segmenter struct {
	store   fragment.Store
	pattern fragment.Pattern
	dialect *script.Dialect
	opts    *Options
	log     *zap.Logger

	stack   []*frame
	next    int      // index of the next fragment
	created []string // numbered fragments in order of creation
	lineNo  int
}

func (s *segmenter) top() *frame {
	return s.stack[len(s.stack)-1]
}

// depth returns number of open fragments, root included.
func (s *segmenter) depth() int {
	return len(s.stack)
}

// push opens next fragment. The new fragment gets its header line first,
// then reference to it is written into the current top.
func (s *segmenter) push(kind frameKind, title, indent, eol string) error {
	index := s.next
	name := s.pattern.Root()
	if kind != frameRoot {
		name = s.pattern.Fragment(fragment.Slugify(title, s.opts.SlugLimit), index)
	}

	w, err := fragment.Create(s.store, name, s.opts.Overwrite)
	if err != nil {
		return err
	}
	s.next++
	s.stack = append(s.stack, &frame{kind: kind, index: index, w: w})

	if err := w.WriteLine(fragment.FormatHeader(s.dialect.Comment, index, s.pattern.Source()), eol); err != nil {
		return err
	}
	if kind == frameRoot {
		s.log.Debug("Root fragment created", zap.String("file", name))
		return nil
	}
	s.created = append(s.created, name)
	parent := s.stack[len(s.stack)-2]
	if err := parent.w.WriteLine(indent+fragment.FormatMarker(fragment.Stem(name), index), eol); err != nil {
		return err
	}
	s.log.Debug("Fragment created", zap.String("file", name), zap.Int("index", index), zap.Int("parent", parent.index))
	return nil
}

// pop closes the innermost fragment. Root is never popped.
func (s *segmenter) pop() error {
	if s.depth() <= 1 {
		panic("attempt to pop root fragment")
	}
	f := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	return f.w.Close()
}

// closeAll releases every fragment still open, innermost first.
func (s *segmenter) closeAll() (err error) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.stack[i].w.Close())
	}
	s.stack = nil
	return err
}

// write copies line into the innermost fragment. Unterminated last line of
// the source stays unterminated.
func (s *segmenter) write(l script.Line) error {
	return s.top().w.WriteLine(l.Text, l.EOL)
}

func (s *segmenter) unbalanced(l script.Line, format string, args ...any) error {
	return &fragment.Error{
		Kind:   fragment.KindUnbalanced,
		Target: s.pattern.Source(),
		Line:   s.lineNo,
		Text:   fmt.Sprintf(format, args...) + fmt.Sprintf(" at %q", l.Trimmed()),
	}
}

// begin opens root fragment.
func (s *segmenter) begin(eol string) error {
	return s.push(frameRoot, "", "", eol)
}

// feed processes a single source line. Cell break line is kept as is as
// the first body line of its cell fragment, it is a comment, so fragment
// remains runnable and nothing is lost when fragments are put back together.
func (s *segmenter) feed(l script.Line) error {
	s.lineNo++

	switch cat := s.dialect.Classify(l); cat {
	case script.CellBreak:
		if top := s.top(); top.kind != frameRoot {
			if s.opts.Strict && top.kind == frameBlock {
				return s.unbalanced(l, "new cell inside open block")
			}
			if err := s.pop(); err != nil {
				return err
			}
		}
		if err := s.push(frameCell, s.dialect.CellTitle(l), l.Indent(), l.Terminator()); err != nil {
			return err
		}
		return s.write(l)

	case script.Terminator:
		if top := s.top(); top.kind != frameBlock {
			if s.opts.Strict {
				return s.unbalanced(l, "no open block to terminate")
			}
			if top.kind == frameRoot {
				return s.write(l)
			}
		}
		if err := s.pop(); err != nil {
			return err
		}
		return s.write(l)

	case script.Reentry:
		if top := s.top(); top.kind != frameBlock {
			if s.opts.Strict {
				return s.unbalanced(l, "no open block to continue")
			}
			if top.kind == frameRoot {
				return s.open(l)
			}
		}
		if err := s.pop(); err != nil {
			return err
		}
		return s.open(l)

	case script.Opener:
		return s.open(l)

	case script.Unsupported:
		return &fragment.Error{
			Kind:   fragment.KindUnsupportedConstruct,
			Target: s.pattern.Source(),
			Line:   s.lineNo,
			Text:   l.Trimmed(),
		}

	default:
		return s.write(l)
	}
}

// open writes block opening line and starts fragment for the block body.
func (s *segmenter) open(l script.Line) error {
	// marker follows, line must be terminated
	if err := s.top().w.WriteLine(l.Text, l.Terminator()); err != nil {
		return err
	}
	return s.push(frameBlock, l.Trimmed(), l.Indent()+s.opts.BlockIndent, l.Terminator())
}

// finish checks that nothing is left open.
func (s *segmenter) finish() error {
	if !s.opts.Strict {
		return nil
	}
	blocks := 0
	for _, f := range s.stack {
		if f.kind == frameBlock {
			blocks++
		}
	}
	if blocks > 0 {
		return &fragment.Error{
			Kind:   fragment.KindUnbalanced,
			Target: s.pattern.Source(),
			Text:   fmt.Sprintf("%d block(s) not terminated at end of input", blocks),
		}
	}
	return nil
}
