// Package fragment implements everything expand and collapse share: naming of
// fragment files, marker and header lines, the error taxonomy and the storage
// collaborator used to access files.
package fragment

import (
	"errors"
	"fmt"
)

// Kind identifies class of failure.
type Kind int

const (
	KindIoFailed Kind = iota + 1
	KindInvalidPath
	KindUnsupportedConstruct
	KindUnbalanced
	KindCycle
	KindNotText
)

// Sentinel errors, one per kind, to be used with errors.Is.
var (
	ErrIoFailed             = errors.New("io failed")
	ErrInvalidPath          = errors.New("invalid path")
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	ErrUnbalanced           = errors.New("unbalanced blocks")
	ErrCycle                = errors.New("fragment cycle")
	ErrNotText              = errors.New("not a text file")
)

func (k Kind) sentinel() error {
	switch k {
	case KindIoFailed:
		return ErrIoFailed
	case KindInvalidPath:
		return ErrInvalidPath
	case KindUnsupportedConstruct:
		return ErrUnsupportedConstruct
	case KindUnbalanced:
		return ErrUnbalanced
	case KindCycle:
		return ErrCycle
	case KindNotText:
		return ErrNotText
	}
	return nil
}

// Error carries enough context to diagnose failure without rerunning: what
// was attempted on which target and, for source problems, where.
type Error struct {
	Kind   Kind
	Action string // for KindIoFailed: "open", "create", "write line to"...
	Target string // path of the file involved
	Line   int    // 1-based source line number, 0 if not applicable
	Text   string // offending source text or short reason
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindIoFailed:
		msg = fmt.Sprintf("failed to %s %q", e.Action, e.Target)
	case KindInvalidPath:
		msg = fmt.Sprintf("invalid path %q: %s", e.Target, e.Text)
	case KindUnsupportedConstruct:
		msg = fmt.Sprintf("%s:%d: unsupported construct %q", e.Target, e.Line, e.Text)
	case KindUnbalanced:
		if e.Line > 0 {
			msg = fmt.Sprintf("%s:%d: unbalanced blocks: %s", e.Target, e.Line, e.Text)
		} else {
			msg = fmt.Sprintf("%s: unbalanced blocks: %s", e.Target, e.Text)
		}
	case KindCycle:
		msg = fmt.Sprintf("fragment %q references itself through %q", e.Target, e.Text)
	case KindNotText:
		msg = fmt.Sprintf("%q does not look like a script (%s)", e.Target, e.Text)
	default:
		msg = "unknown failure"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// IoFailed wraps failed storage operation.
func IoFailed(action, target string, err error) error {
	return &Error{Kind: KindIoFailed, Action: action, Target: target, Err: err}
}

// InvalidPath reports path which cannot be used to name fragments.
func InvalidPath(target, reason string) error {
	return &Error{Kind: KindInvalidPath, Target: target, Text: reason}
}
