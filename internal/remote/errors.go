package remote

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned by CurrentPrincipal when nobody is signed in.
var ErrNoSession = errors.New("no session")

// ReadError wraps a failed query. Reads are non-fatal: callers log and keep
// the previous projection.
type ReadError struct {
	Table Table
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Table, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed insert/update/delete. Writes are surfaced to the
// user by whoever issued them.
type WriteError struct {
	Table Table
	Op    string // "insert", "update", "delete"
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
