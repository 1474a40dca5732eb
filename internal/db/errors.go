package db

import "errors"

// ErrKeyNotFound signals a missing key in the KV store.
var ErrKeyNotFound = errors.New("db: key not found")

// Op constants name the failing command or query for error context.
const (
	OpGet   = "GET"
	OpSet   = "SET"
	OpPing  = "PING"
	OpQuery = "QUERY"
	OpExec  = "EXEC"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
