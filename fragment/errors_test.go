package fragment

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := IoFailed("create", "/w/a_gen.m", fs.ErrExist)

	assert.ErrorIs(t, err, ErrIoFailed)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.NotErrorIs(t, err, ErrInvalidPath)

	wrapped := fmt.Errorf("expand: %w", err)
	var fe *Error
	require.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, KindIoFailed, fe.Kind)
	assert.Equal(t, "create", fe.Action)
	assert.Equal(t, "/w/a_gen.m", fe.Target)
}

func TestError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"io", IoFailed("delete", "/w/a_x_1.m", fs.ErrNotExist), `failed to delete "/w/a_x_1.m": file does not exist`},
		{"path", InvalidPath("/w/a", "no file name extension"), `invalid path "/w/a": no file name extension`},
		{"unsupported", &Error{Kind: KindUnsupportedConstruct, Target: "/w/a.m", Line: 4, Text: "switch x"}, `/w/a.m:4: unsupported construct "switch x"`},
		{"unbalanced at line", &Error{Kind: KindUnbalanced, Target: "/w/a.m", Line: 2, Text: `"end" without opened block`}, `/w/a.m:2: unbalanced blocks: "end" without opened block`},
		{"unbalanced at eof", &Error{Kind: KindUnbalanced, Target: "/w/a.m", Text: "1 block(s) not closed"}, `/w/a.m: unbalanced blocks: 1 block(s) not closed`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_KindSentinels(t *testing.T) {
	kinds := map[Kind]error{
		KindIoFailed:             ErrIoFailed,
		KindInvalidPath:          ErrInvalidPath,
		KindUnsupportedConstruct: ErrUnsupportedConstruct,
		KindUnbalanced:           ErrUnbalanced,
		KindCycle:                ErrCycle,
		KindNotText:              ErrNotText,
	}
	for k, sentinel := range kinds {
		err := &Error{Kind: k}
		assert.ErrorIs(t, err, sentinel)
		for other, s := range kinds {
			if other != k {
				assert.NotErrorIs(t, err, s)
			}
		}
	}
}
