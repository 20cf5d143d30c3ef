//go:build !systemd_nojournal

package journal

import (
	"testing"
	"unsafe"

	"git.gensokyo.uk/security/systemd/internal/sd"
	"git.gensokyo.uk/security/systemd/internal/stub"
)

// out holds the output parameters and result of a native call.
type out struct {
	v any
	r int32
}

// monotonic is the output of sd_journal_get_monotonic_usec.
type monotonic struct {
	usec uint64
	boot sd.ID128
}

var (
	// fakeJournal is never dereferenced.
	fakeJournal = sd.Journal(unsafe.Pointer(new(uintptr)))
)

// cstr returns a NUL-terminated copy of s in Go memory.
func cstr(s string) sd.Str {
	b := append([]byte(s), 0)
	return sd.Str(unsafe.Pointer(&b[0]))
}

// kstub implements [native] with a [stub.Stub].
type kstub struct{ *stub.Stub }

func newStub(t *testing.T, calls ...stub.Call) kstub { return kstub{stub.New(t, calls...)} }

func (k kstub) checkJournal(j sd.Journal) {
	k.Helper()
	if j != fakeJournal {
		k.Errorf("journal = %p, want %p", j, fakeJournal)
	}
}

// code returns the result of a call returning only a result.
func (k kstub) code(name string, j sd.Journal) *stub.Call {
	k.Helper()
	expect := k.Expects(name)
	k.checkJournal(j)
	return expect
}

func (k kstub) sendv(fields []string) int32 {
	k.Helper()
	expect := k.Expects("sd_journal_sendv")
	stub.CheckArg(k.Stub, "n", len(fields), 1)
	stub.CheckArgReflect(k.Stub, "fields", fields, 0)
	return expect.Ret.(int32)
}

func (k kstub) open(flags int32) (sd.Journal, int32) {
	k.Helper()
	expect := k.Expects("sd_journal_open")
	stub.CheckArg(k.Stub, "flags", flags, 0)
	o := expect.Ret.(out)
	j, _ := o.v.(sd.Journal)
	return j, o.r
}

func (k kstub) openDirectory(path string, flags int32) (sd.Journal, int32) {
	k.Helper()
	expect := k.Expects("sd_journal_open_directory")
	stub.CheckArg(k.Stub, "path", path, 0)
	stub.CheckArg(k.Stub, "flags", flags, 1)
	o := expect.Ret.(out)
	j, _ := o.v.(sd.Journal)
	return j, o.r
}

func (k kstub) openFiles(paths []string, flags int32) (sd.Journal, int32) {
	k.Helper()
	expect := k.Expects("sd_journal_open_files")
	stub.CheckArgReflect(k.Stub, "paths", paths, 0)
	stub.CheckArg(k.Stub, "flags", flags, 1)
	o := expect.Ret.(out)
	j, _ := o.v.(sd.Journal)
	return j, o.r
}

func (k kstub) close(j sd.Journal) { k.Helper(); k.code("sd_journal_close", j) }

func (k kstub) next(j sd.Journal) int32 {
	k.Helper()
	return k.code("sd_journal_next", j).Ret.(int32)
}
func (k kstub) previous(j sd.Journal) int32 {
	k.Helper()
	return k.code("sd_journal_previous", j).Ret.(int32)
}
func (k kstub) nextSkip(j sd.Journal, skip uint64) int32 {
	k.Helper()
	expect := k.code("sd_journal_next_skip", j)
	stub.CheckArg(k.Stub, "skip", skip, 0)
	return expect.Ret.(int32)
}
func (k kstub) previousSkip(j sd.Journal, skip uint64) int32 {
	k.Helper()
	expect := k.code("sd_journal_previous_skip", j)
	stub.CheckArg(k.Stub, "skip", skip, 0)
	return expect.Ret.(int32)
}

func (k kstub) seekHead(j sd.Journal) int32 {
	k.Helper()
	return k.code("sd_journal_seek_head", j).Ret.(int32)
}
func (k kstub) seekTail(j sd.Journal) int32 {
	k.Helper()
	return k.code("sd_journal_seek_tail", j).Ret.(int32)
}
func (k kstub) seekRealtimeUsec(j sd.Journal, usec uint64) int32 {
	k.Helper()
	expect := k.code("sd_journal_seek_realtime_usec", j)
	stub.CheckArg(k.Stub, "usec", usec, 0)
	return expect.Ret.(int32)
}
func (k kstub) seekMonotonicUsec(j sd.Journal, boot sd.ID128, usec uint64) int32 {
	k.Helper()
	expect := k.code("sd_journal_seek_monotonic_usec", j)
	stub.CheckArg(k.Stub, "boot", boot, 0)
	stub.CheckArg(k.Stub, "usec", usec, 1)
	return expect.Ret.(int32)
}
func (k kstub) seekCursor(j sd.Journal, cursor string) int32 {
	k.Helper()
	expect := k.code("sd_journal_seek_cursor", j)
	stub.CheckArg(k.Stub, "cursor", cursor, 0)
	return expect.Ret.(int32)
}
func (k kstub) getCursor(j sd.Journal) (sd.Str, int32) {
	k.Helper()
	o := k.code("sd_journal_get_cursor", j).Ret.(out)
	p, _ := o.v.(sd.Str)
	return p, o.r
}
func (k kstub) testCursor(j sd.Journal, cursor string) int32 {
	k.Helper()
	expect := k.code("sd_journal_test_cursor", j)
	stub.CheckArg(k.Stub, "cursor", cursor, 0)
	return expect.Ret.(int32)
}

func (k kstub) getRealtimeUsec(j sd.Journal) (uint64, int32) {
	k.Helper()
	o := k.code("sd_journal_get_realtime_usec", j).Ret.(out)
	usec, _ := o.v.(uint64)
	return usec, o.r
}
func (k kstub) getMonotonicUsec(j sd.Journal) (uint64, sd.ID128, int32) {
	k.Helper()
	o := k.code("sd_journal_get_monotonic_usec", j).Ret.(out)
	m, _ := o.v.(monotonic)
	return m.usec, m.boot, o.r
}
func (k kstub) getData(j sd.Journal, field string) ([]byte, int32) {
	k.Helper()
	expect := k.code("sd_journal_get_data", j)
	stub.CheckArg(k.Stub, "field", field, 0)
	o := expect.Ret.(out)
	data, _ := o.v.([]byte)
	return data, o.r
}
func (k kstub) enumerateData(j sd.Journal) ([]byte, int32) {
	k.Helper()
	o := k.code("sd_journal_enumerate_data", j).Ret.(out)
	data, _ := o.v.([]byte)
	return data, o.r
}
func (k kstub) restartData(j sd.Journal) { k.Helper(); k.code("sd_journal_restart_data", j) }
func (k kstub) setDataThreshold(j sd.Journal, sz uint64) int32 {
	k.Helper()
	expect := k.code("sd_journal_set_data_threshold", j)
	stub.CheckArg(k.Stub, "sz", sz, 0)
	return expect.Ret.(int32)
}

func (k kstub) addMatch(j sd.Journal, data []byte) int32 {
	k.Helper()
	expect := k.code("sd_journal_add_match", j)
	stub.CheckArgReflect(k.Stub, "data", data, 0)
	return expect.Ret.(int32)
}
func (k kstub) addDisjunction(j sd.Journal) int32 {
	k.Helper()
	return k.code("sd_journal_add_disjunction", j).Ret.(int32)
}
func (k kstub) addConjunction(j sd.Journal) int32 {
	k.Helper()
	return k.code("sd_journal_add_conjunction", j).Ret.(int32)
}
func (k kstub) flushMatches(j sd.Journal) { k.Helper(); k.code("sd_journal_flush_matches", j) }

func (k kstub) wait(j sd.Journal, usec uint64) int32 {
	k.Helper()
	expect := k.code("sd_journal_wait", j)
	stub.CheckArg(k.Stub, "usec", usec, 0)
	return expect.Ret.(int32)
}
func (k kstub) getUsage(j sd.Journal) (uint64, int32) {
	k.Helper()
	o := k.code("sd_journal_get_usage", j).Ret.(out)
	n, _ := o.v.(uint64)
	return n, o.r
}

func (k kstub) queryUnique(j sd.Journal, field string) int32 {
	k.Helper()
	expect := k.code("sd_journal_query_unique", j)
	stub.CheckArg(k.Stub, "field", field, 0)
	return expect.Ret.(int32)
}
func (k kstub) enumerateUnique(j sd.Journal) ([]byte, int32) {
	k.Helper()
	o := k.code("sd_journal_enumerate_unique", j).Ret.(out)
	data, _ := o.v.([]byte)
	return data, o.r
}
func (k kstub) restartUnique(j sd.Journal) { k.Helper(); k.code("sd_journal_restart_unique", j) }

func (k kstub) free(p unsafe.Pointer) {
	k.Helper()
	k.Expects("free")
	stub.CheckArg(k.Stub, "p", p, 0)
}

// call returns a [stub.Call] for a native call on fakeJournal.
func call(name string, ret any, args ...any) stub.Call {
	var a stub.ExpectArgs
	copy(a[:], args)
	return stub.Call{Name: name, Args: a, Ret: ret}
}

// opened returns the calls made by a successful open.
func opened(flags int32) []stub.Call {
	return []stub.Call{
		call("sd_journal_open", out{fakeJournal, 0}, flags),
		call("sd_journal_seek_head", int32(0)),
	}
}
