// Package stub provides call level stubbing and validation of native
// functions for tests that cannot reach libsystemd.
package stub

import (
	"reflect"
	"slices"
	"testing"
)

// this should prevent stub from being inadvertently imported outside tests
var _ = func() {
	if !testing.Testing() {
		panic("stub imported while not in a test")
	}
}

// ExpectArgs is an array primarily for storing expected function arguments.
// Its actual use is defined by the implementation.
type ExpectArgs = [5]any

// A Call holds expected arguments of a native call and its outcome.
type Call struct {
	// Name is the name of the native function.
	Name string
	// Args are the expected arguments of this Call.
	Args ExpectArgs
	// Ret is the return value of this Call.
	Ret any
	// Err is the returned error of this Call, if the implementation returns one.
	Err error
}

// Error returns [Call.Err] if all arguments are true, or [ErrCheck] otherwise.
func (k *Call) Error(ok ...bool) error {
	if !slices.Contains(ok, false) {
		return k.Err
	}
	return ErrCheck
}

// A Stub walks a sequence of expected calls in order.
type Stub struct {
	testing.TB

	// want holds every expected call.
	want []Call
	// pos is the current position in want.
	pos int
	// counts holds the number of times each name was reached.
	counts map[string]int
}

// New returns a [Stub] expecting calls in the order they appear in want.
func New(tb testing.TB, want ...Call) *Stub {
	return &Stub{TB: tb, want: want, counts: make(map[string]int)}
}

func (s *Stub) FailNow()          { s.Helper(); panic(panicFailNow) }
func (s *Stub) Fatal(args ...any) { s.Helper(); s.Error(args...); panic(panicFatal) }
func (s *Stub) Fatalf(format string, args ...any) {
	s.Helper()
	s.Errorf(format, args...)
	panic(panicFatalf)
}

// Pos returns the number of calls consumed so far.
func (s *Stub) Pos() int { return s.pos }

// Len returns the number of expected calls.
func (s *Stub) Len() int { return len(s.want) }

// Count returns the number of times a call named name was made.
func (s *Stub) Count(name string) int { return s.counts[name] }

// Expects checks the name of and returns the current [Call] and advances pos.
func (s *Stub) Expects(name string) (expect *Call) {
	s.Helper()

	if len(s.want) == s.pos {
		s.Fatalf("Expects: %s advancing beyond expected calls", name)
	}
	expect = &s.want[s.pos]
	if name != expect.Name {
		s.Fatalf("Expects: func = %s, want %s (%d)", name, expect.Name, s.pos)
	}
	s.counts[name]++
	s.pos++
	return
}

// Finish fails the test if not every expected call was made.
func (s *Stub) Finish() {
	s.Helper()
	if s.pos != len(s.want) {
		s.Errorf("Finish: %d calls made, want %d (next %s)", s.pos, len(s.want), s.want[s.pos].Name)
	}
}

// CheckArg checks an argument comparable with the == operator. Avoid using this with pointers.
func CheckArg[T comparable](s *Stub, arg string, got T, n int) bool {
	s.Helper()

	pos := s.pos - 1
	if pos < 0 || pos >= len(s.want) {
		panic("invalid call to CheckArg")
	}
	expect := s.want[pos]
	want, ok := expect.Args[n].(T)
	if !ok || got != want {
		s.Errorf("%s: %s = %#v, want %#v (%d)", expect.Name, arg, got, want, pos)
		return false
	}
	return true
}

// CheckArgReflect checks an argument of any type.
func CheckArgReflect(s *Stub, arg string, got any, n int) bool {
	s.Helper()

	pos := s.pos - 1
	if pos < 0 || pos >= len(s.want) {
		panic("invalid call to CheckArgReflect")
	}
	expect := s.want[pos]
	want := expect.Args[n]
	if !reflect.DeepEqual(got, want) {
		s.Errorf("%s: %s = %#v, want %#v (%d)", expect.Name, arg, got, want, pos)
		return false
	}
	return true
}
