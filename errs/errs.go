// Package errs holds the error taxonomy shared by the document model,
// the refresh pipeline and the layout.
package errs

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// PreconditionError reports an operation that was asked to run on a
// document that does not satisfy its structural assumptions, such as
// asking for the first bar of an empty song.
type PreconditionError struct {
	Msg  string
	File string
	Line int
	Func string

	cause error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s (%s:%d %s)", e.Msg, e.File, e.Line, e.Func)
}

func (e *PreconditionError) Cause() error {
	return e.cause
}

func (e *PreconditionError) Unwrap() error {
	return e.cause
}

// Format prints the stack recorded at creation for %+v.
func (e *PreconditionError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v", e.cause)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Precondition builds a PreconditionError tagged with the caller's
// file, line and function.
func Precondition(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	e := &PreconditionError{Msg: msg, cause: errors.New(msg)}
	if pc, file, line, ok := runtime.Caller(1); ok {
		e.File, e.Line = file, line
		if fn := runtime.FuncForPC(pc); fn != nil {
			e.Func = fn.Name()
		}
	}
	return e
}

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// Wrap annotates err keeping its stack.
func Wrap(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
