// Package errors provides panic recovery for the tree builders.
//
// Tree growth asserts its internal invariants with Assert, which panics with an
// *InvariantError. Public entry points install Recover so that such a panic
// reaches the caller as an ordinary error carrying the stack at the panic site.

package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
)

// InvariantError is the panic value raised by Assert.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "treelab: invariant violated: " + e.Message
}

// Assert panics with an *InvariantError when cond is false.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
	}
}

// PanicError represents an error that was created from a recovered panic.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap exposes a panic value that was itself an error, such as *InvariantError.
func (e *PanicError) Unwrap() error {
	if err, ok := e.PanicValue.(error); ok {
		return err
	}
	return nil
}

// NewPanicError creates a new PanicError with the given operation context and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error assigned to *err. It must be deferred.
//
//	func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) (err error) {
//	    defer errors.Recover(&err, "DecisionTreeClassifier.Fit")
//	    ...
//	}
//
// An error already held in *err is kept as the cause.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	panicErr := NewPanicError(operation, r)
	if *err != nil {
		*err = errors.Wrapf(*err, "%s", panicErr.Error())
		return
	}
	*err = errors.WithStack(panicErr)
}

// SafeExecute executes fn and converts any panic into an error.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
