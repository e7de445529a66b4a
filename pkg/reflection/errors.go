package reflection

import (
	"errors"
	"fmt"
)

var (
	// ErrNullArgument is returned when a required handle or argument is absent.
	ErrNullArgument = errors.New("null argument")
	// ErrNoData is returned when a required attribute or child is missing, or
	// an attribute uses an unsupported encoding.
	ErrNoData = errors.New("no data available")
	// ErrNotFound is returned when a name-based lookup finds no match.
	ErrNotFound = errors.New("no such entry")
	// ErrInvalidHandle is returned when a handle's offset does not resolve in
	// its domain, or the domain has been closed.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrCannotOpenFile is returned when a binary cannot be opened.
	ErrCannotOpenFile = errors.New("could not open file")
	// ErrCannotParseDebugInfo is returned when a binary carries no readable
	// debugging information.
	ErrCannotParseDebugInfo = errors.New("could not read debugging info")
)

// Error describes a failed reflection operation. Err wraps one of the
// package sentinels, so callers match with errors.Is.
type Error struct {
	// Op is the operation that failed, e.g. "TypeByName" or "Member.Offset".
	Op string
	// Name is the name being looked up, if any.
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("reflection: %s %q: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("reflection: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) error {
	return &Error{Op: op, Err: err}
}

func newNamedError(op, name string, err error) error {
	return &Error{Op: op, Name: name, Err: err}
}
