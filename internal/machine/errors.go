package machine

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned when a program does not fit between the
	// program start and the end of memory.
	ErrProgramTooLarge = errors.New("program too large")

	// ErrStackOverflow is returned when a subroutine is called with a full call stack.
	ErrStackOverflow = errors.New("call stack overflow")

	// ErrStackUnderflow is returned when returning from a subroutine with an empty call stack.
	ErrStackUnderflow = errors.New("call stack underflow")
)

// IOError wraps a failure of the byte source a program is read from.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
