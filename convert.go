package systemd

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNull is returned for a null pointer handed back by a successful native call.
	ErrNull = errors.New("unexpected null pointer")
	// ErrInvalidUTF8 is returned for string data that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
	// ErrMalformed is returned for data not in the format documented for the native call.
	ErrMalformed = errors.New("malformed data")
	// ErrNUL is returned for a string argument containing a NUL byte.
	ErrNUL = errors.New("string contains NUL byte")
)

// ConversionError is returned when a native call succeeds but its data
// cannot be represented, or when an argument cannot be represented natively.
type ConversionError struct {
	// Op is the name of the libsystemd function.
	Op string
	// Err is one of [ErrNull], [ErrInvalidUTF8], [ErrMalformed] or [ErrNUL].
	Err error
}

func (e *ConversionError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(err error) bool {
	var target *ConversionError
	if !errors.As(err, &target) {
		return false
	}
	return target != nil && e.Op == target.Op && e.Err == target.Err
}

// Message returns a user-facing error message.
func (e *ConversionError) Message() string {
	return "cannot convert data of " + e.Op + ": " + e.Err.Error()
}

// String copies b into a Go string if it holds valid UTF-8.
func String(op string, b []byte) (string, error) {
	if b == nil {
		return "", &ConversionError{op, ErrNull}
	}
	if !utf8.Valid(b) {
		return "", &ConversionError{op, ErrInvalidUTF8}
	}
	return string(b), nil
}

// Strings is like [String] for every element of v. Conversion stops at the first invalid element.
func Strings(op string, v [][]byte) ([]string, error) {
	s := make([]string, len(v))
	for i, b := range v {
		var err error
		if s[i], err = String(op, b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CheckString returns [*ConversionError] if s cannot be passed as a C string.
func CheckString(op string, s ...string) error {
	for _, v := range s {
		if strings.IndexByte(v, 0) != -1 {
			return &ConversionError{op, ErrNUL}
		}
	}
	return nil
}

// Field splits a KEY=VALUE record at its first '='.
func Field(op string, b []byte) (key, value string, err error) {
	k, v, ok := strings.Cut(string(b), "=")
	if !ok || k == "" {
		return "", "", &ConversionError{op, ErrMalformed}
	}
	return k, v, nil
}
