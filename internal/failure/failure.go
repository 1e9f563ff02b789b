// Package failure classifies fatal sampler errors and maps them to process
// exit codes understood by the monitoring agent that invokes the sampler.
package failure

import (
	"errors"
	"fmt"
)

// Kind is the category of a fatal error.
type Kind int

const (
	Unclassified Kind = iota
	Config
	Collection
	StorageCreate
	StorageWrite
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitGeneric       = 1
	ExitStorageCreate = 21
	ExitStorageWrite  = 22
	ExitCollection    = 31
)

var exitCodes = map[Kind]int{
	Unclassified:  ExitGeneric,
	Config:        ExitGeneric,
	Collection:    ExitCollection,
	StorageCreate: ExitStorageCreate,
	StorageWrite:  ExitStorageWrite,
}

var kindNames = map[Kind]string{
	Unclassified:  "unclassified",
	Config:        "config",
	Collection:    "collection",
	StorageCreate: "storage_create",
	StorageWrite:  "storage_write",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ExitCode returns the process exit code for k.
func (k Kind) ExitCode() int {
	if code, ok := exitCodes[k]; ok {
		return code
	}
	return ExitGeneric
}

// Error is a classified error. Msg, when set, replaces the wrapped error's
// text in Error() so the operator sees the same message the agent expects.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil && e.Op != "":
		return e.Op + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return e.Op
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a classified error wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf returns a classified error with a fixed message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first classified error in err's chain,
// or Unclassified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unclassified
}

// ExitCode maps err to a process exit code. A nil error is success.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return KindOf(err).ExitCode()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
