package exitcode

import (
	"errors"
	"fmt"
)

const (
	Success = 0

	// The input could not be rewritten. The reason has already been logged.
	Failure = 1

	// The command line itself was invalid
	Usage = 2
)

// Coder is an interface to control what value Get returns.
type Coder interface {
	error
	ExitCode() int
}

// Get gets the exit code associated with an error. Cases:
//
//	nil => Success
//	errors implementing Coder => value returned by ExitCode
//	all other errors => Failure
func Get(err error) int {
	if err == nil {
		return Success
	}

	if coder := Coder(nil); errors.As(err, &coder) {
		return coder.ExitCode()
	}

	return Failure
}

// Set wraps an error in a Coder, setting its error code.
func Set(err error, code int) error {
	if err == nil {
		return nil
	}
	return coder{err, code}
}

// Usagef returns a usage error that exits with the Usage code
func Usagef(format string, args ...any) error {
	return Set(fmt.Errorf(format, args...), Usage)
}

var _ Coder = coder{}

type coder struct {
	error
	int
}

func (co coder) ExitCode() int {
	return co.int
}

func (co coder) Unwrap() error {
	return co.error
}
