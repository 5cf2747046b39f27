package fragment

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"cellsplit/script"
)

// Store is everything expand and collapse need from the file system.
// Implementations return plain errors, callers attach context.
type Store interface {
	// Open opens named text source for reading.
	Open(name string) (io.ReadCloser, error)
	// Create creates named text sink, truncating existing file when overwrite
	// is allowed and failing if the file exists otherwise.
	Create(name string, overwrite bool) (io.WriteCloser, error)
	// Remove deletes named file.
	Remove(name string) error
	// Exists reports whether named file is present.
	Exists(name string) bool
	// Canonicalize resolves path to its absolute form with symbolic links
	// evaluated. Path must exist.
	Canonicalize(path string) (string, error)
}

// FS is Store backed by the local file system.
type FS struct{}

func (FS) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (FS) Create(name string, overwrite bool) (io.WriteCloser, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	return os.OpenFile(name, flags, 0644)
}

func (FS) Remove(name string) error {
	return os.Remove(name)
}

func (FS) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (FS) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ReadLines reads all lines of named source. When enc is not nil source is
// decoded from it into UTF-8.
func ReadLines(store Store, name string, enc encoding.Encoding) ([]script.Line, error) {
	f, err := store.Open(name)
	if err != nil {
		return nil, IoFailed("open", name, err)
	}
	defer f.Close()

	var r io.Reader = f
	if enc != nil {
		r = transform.NewReader(f, enc.NewDecoder())
	}
	lines, err := script.ReadLines(r)
	if err != nil {
		return nil, IoFailed("read line from", name, err)
	}
	return lines, nil
}
