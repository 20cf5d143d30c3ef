package stub

import (
	"errors"
	"fmt"
)

// ErrCheck is returned by [Call.Error] when a stub received unexpected arguments.
var ErrCheck = errors.New("native call received unexpected arguments")

// UniqueError is an error injected into a wrapper by a stub, for asserting
// that the wrapper returns it unchanged. Two values only match if equal.
type UniqueError uintptr

func (e UniqueError) Error() string { return fmt.Sprintf("injected error %#x", uintptr(e)) }

func (e UniqueError) Is(target error) bool {
	u, ok := target.(UniqueError)
	return ok && e == u
}
