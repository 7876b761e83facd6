// Package dberr carries the two error categories the REPL distinguishes:
// user-visible recoverable errors (reported to stdout, loop continues) and
// fatal errors (invariant breaches or resource exhaustion, reported to
// stdout, then the process exits non-zero).
package dberr

import (
	"fmt"

	"github.com/pkg/errors"
)

// RecoverableError is a user-visible statement preparation or execution
// error. The REPL prints its message and keeps reading input.
type RecoverableError struct {
	msg string
}

func (e *RecoverableError) Error() string { return e.msg }

// Recoverable wraps msg as a RecoverableError.
func Recoverable(msg string) error {
	return &RecoverableError{msg: msg}
}

// FatalError marks an invariant breach or resource exhaustion. The REPL
// prints its message and the process exits non-zero.
type FatalError struct {
	msg   string
	cause error
}

func (e *FatalError) Error() string { return e.msg }
func (e *FatalError) Unwrap() error { return e.cause }

// Fatal wraps msg as a FatalError with no underlying cause.
func Fatal(msg string) error {
	return &FatalError{msg: msg}
}

// Fatalf formats a FatalError.
func Fatalf(format string, args ...interface{}) error {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// WrapFatal marks err as fatal, using a formatted message while preserving
// err as the unwrap cause. The FatalError itself formats as its message
// only; the pkg/errors stack stays reachable through Unwrap.
func WrapFatal(err error, format string, args ...interface{}) error {
	return &FatalError{msg: fmt.Sprintf(format, args...), cause: err}
}

// IsFatal reports whether err (or something it wraps) is a FatalError.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}

// IsRecoverable reports whether err (or something it wraps) is a
// RecoverableError.
func IsRecoverable(err error) bool {
	var r *RecoverableError
	return errors.As(err, &r)
}

// Sentinel recoverable errors with fixed text, matched with errors.Is.
var (
	ErrNegativeID    = Recoverable("ID must be positive.")
	ErrStringTooLong = Recoverable("String is too long.")
	ErrSyntaxError   = Recoverable("Syntax error. Could not parse statement.")
	ErrDuplicateKey  = Recoverable("Error: Duplicate key.")
)

// UnrecognizedStatement reports a statement whose keyword repl.Prepare
// does not recognize.
func UnrecognizedStatement(input string) error {
	return Recoverable(fmt.Sprintf("Unrecognized keyword at start of '%s'.", input))
}

// UnrecognizedCommand reports a meta-command (line starting with '.') that
// is not one of .exit, .btree, .constants.
func UnrecognizedCommand(input string) error {
	return Recoverable(fmt.Sprintf("Unrecognized command '%s'", input))
}
