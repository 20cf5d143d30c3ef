package systemd

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Error is returned when a libsystemd function returns a negative value.
type Error struct {
	// Op is the name of the libsystemd function returning the error.
	Op string
	// Errno is the negated return value.
	Errno syscall.Errno
}

func (e *Error) Error() string {
	if name := unix.ErrnoName(e.Errno); name != "" {
		return e.Op + ": " + name + " (" + e.Errno.Error() + ")"
	}
	return e.Op + ": " + e.Errno.Error()
}

// Message returns a user-facing error message.
func (e *Error) Message() string { return "cannot " + e.Op + ": " + e.Errno.Error() }

func (e *Error) Unwrap() error { return e.Errno }

// Code returns the value returned by the native call.
func (e *Error) Code() int { return -int(e.Errno) }

func (e *Error) Is(err error) bool {
	var target *Error
	if !errors.As(err, &target) {
		return false
	}
	return target != nil && e.Op == target.Op && e.Errno == target.Errno
}

// NewError returns the [*Error] corresponding to the native return value code.
// The returned error is nil for non-negative code.
func NewError(op string, code int) error {
	if code >= 0 {
		return nil
	}
	return &Error{Op: op, Errno: syscall.Errno(-int64(code))}
}

// Result maps the return value of a libsystemd function. A negative value is
// returned as [*Error], anything else is returned as is.
func Result(op string, r int32) (int, error) {
	if r < 0 {
		return 0, NewError(op, int(r))
	}
	return int(r), nil
}

// Check is like [Result] but discards the non-negative value.
func Check(op string, r int32) error {
	_, err := Result(op, r)
	return err
}

// Bool is like [Result] but reports a positive value as true.
func Bool(op string, r int32) (bool, error) {
	n, err := Result(op, r)
	return n > 0, err
}

// ErrClosed is returned by any operation on a released handle.
var ErrClosed = os.ErrClosed
