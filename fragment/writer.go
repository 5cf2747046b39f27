package fragment

import (
	"bufio"
	"io"
	"os"
)

// Writer is line oriented sink exclusively owning underlying file until
// closed.
type Writer struct {
	name string
	f    io.WriteCloser
	w    *bufio.Writer
}

// Create creates named sink using store with requested overwrite policy.
func Create(store Store, name string, overwrite bool) (*Writer, error) {
	f, err := store.Create(name, overwrite)
	if err != nil {
		return nil, IoFailed("create", name, err)
	}
	return &Writer{name: name, f: f, w: bufio.NewWriter(f)}, nil
}

// Name returns path of the sink.
func (w *Writer) Name() string {
	return w.name
}

// WriteLine writes text followed by line terminator.
func (w *Writer) WriteLine(text, eol string) error {
	if w.f == nil {
		return IoFailed("write line to", w.name, os.ErrClosed)
	}
	if _, err := w.w.WriteString(text); err != nil {
		return IoFailed("write line to", w.name, err)
	}
	if _, err := w.w.WriteString(eol); err != nil {
		return IoFailed("write line to", w.name, err)
	}
	return nil
}

// Close flushes buffered lines and releases the sink. It is safe to call
// Close more than once.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	f := w.f
	w.f = nil
	if err := w.w.Flush(); err != nil {
		f.Close()
		return IoFailed("write line to", w.name, err)
	}
	if err := f.Close(); err != nil {
		return IoFailed("close", w.name, err)
	}
	return nil
}
