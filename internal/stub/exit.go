package stub

import "testing"

const (
	panicFailNow = 0xcafe0000 + iota
	panicFatal
	panicFatalf
)

// HandleExit must be deferred before calling with the stub.
// It recovers from the panic used to abort a failed test.
func HandleExit(tb testing.TB) {
	r := recover()
	switch r {
	case nil:
		return
	case panicFailNow, panicFatal, panicFatalf:
		tb.FailNow()
	default:
		panic(r)
	}
}
