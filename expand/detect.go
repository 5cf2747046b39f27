package expand

import (
	"bytes"
	"errors"
	"io"

	"github.com/h2non/filetype"

	"cellsplit/fragment"
)

// sniffLen is enough for every filetype matcher.
const sniffLen = 262

// checkText refuses sources which are known binary formats. Unless source
// is in an explicitly specified character set, NUL bytes are not expected
// either.
func checkText(store fragment.Store, name string, decoded bool) error {
	f, err := store.Open(name)
	if err != nil {
		return fragment.IoFailed("open", name, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fragment.IoFailed("read", name, err)
	}
	head = head[:n]

	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return &fragment.Error{Kind: fragment.KindNotText, Target: name, Text: kind.MIME.Value}
	}
	if !decoded && bytes.IndexByte(head, 0) >= 0 {
		return &fragment.Error{Kind: fragment.KindNotText, Target: name, Text: "contains NUL bytes"}
	}
	return nil
}
