//go:build !systemd_nojournal

package sd

/*
#include <stdlib.h>
#include <sys/uio.h>
#include <systemd/sd-journal.h>
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// HaveJournal is whether the journal functions are available.
const HaveJournal = true

// Journal is an sd_journal handle.
type Journal unsafe.Pointer

func (j Journal) c() *C.sd_journal { return (*C.sd_journal)(j) }

// JournalSendv calls sd_journal_sendv with one iovec per field.
func JournalSendv(fields []string) int32 {
	if len(fields) == 0 {
		return int32(C.sd_journal_sendv(nil, 0))
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()

	iov := make([]C.struct_iovec, len(fields))
	for i, f := range fields {
		if f == "" {
			continue
		}
		p := unsafe.StringData(f)
		pinner.Pin(p)
		iov[i].iov_base = unsafe.Pointer(p)
		iov[i].iov_len = C.size_t(len(f))
	}
	return int32(C.sd_journal_sendv(&iov[0], C.int(len(iov))))
}

// JournalOpen calls sd_journal_open.
func JournalOpen(flags int32) (Journal, int32) {
	var j *C.sd_journal
	r := C.sd_journal_open(&j, C.int(flags))
	return Journal(j), int32(r)
}

// JournalOpenDirectory calls sd_journal_open_directory.
func JournalOpenDirectory(path string, flags int32) (Journal, int32) {
	p := cstr(path, false)
	defer freeStr(p)

	var j *C.sd_journal
	r := C.sd_journal_open_directory(&j, p, C.int(flags))
	return Journal(j), int32(r)
}

// JournalOpenFiles calls sd_journal_open_files.
func JournalOpenFiles(paths []string, flags int32) (Journal, int32) {
	v := make([]*C.char, len(paths)+1)
	for i, p := range paths {
		v[i] = cstr(p, false)
	}
	defer func() {
		for _, p := range v {
			freeStr(p)
		}
	}()

	var j *C.sd_journal
	r := C.sd_journal_open_files(&j, &v[0], C.int(flags))
	return Journal(j), int32(r)
}

// JournalClose calls sd_journal_close.
func JournalClose(j Journal) { C.sd_journal_close(j.c()) }

// JournalNext calls sd_journal_next.
func JournalNext(j Journal) int32 { return int32(C.sd_journal_next(j.c())) }

// JournalPrevious calls sd_journal_previous.
func JournalPrevious(j Journal) int32 { return int32(C.sd_journal_previous(j.c())) }

// JournalNextSkip calls sd_journal_next_skip.
func JournalNextSkip(j Journal, skip uint64) int32 {
	return int32(C.sd_journal_next_skip(j.c(), C.uint64_t(skip)))
}

// JournalPreviousSkip calls sd_journal_previous_skip.
func JournalPreviousSkip(j Journal, skip uint64) int32 {
	return int32(C.sd_journal_previous_skip(j.c(), C.uint64_t(skip)))
}

// JournalSeekHead calls sd_journal_seek_head.
func JournalSeekHead(j Journal) int32 { return int32(C.sd_journal_seek_head(j.c())) }

// JournalSeekTail calls sd_journal_seek_tail.
func JournalSeekTail(j Journal) int32 { return int32(C.sd_journal_seek_tail(j.c())) }

// JournalSeekRealtimeUsec calls sd_journal_seek_realtime_usec.
func JournalSeekRealtimeUsec(j Journal, usec uint64) int32 {
	return int32(C.sd_journal_seek_realtime_usec(j.c(), C.uint64_t(usec)))
}

// JournalSeekMonotonicUsec calls sd_journal_seek_monotonic_usec.
func JournalSeekMonotonicUsec(j Journal, boot ID128, usec uint64) int32 {
	return int32(C.sd_journal_seek_monotonic_usec(j.c(), id128(boot), C.uint64_t(usec)))
}

// JournalSeekCursor calls sd_journal_seek_cursor.
func JournalSeekCursor(j Journal, cursor string) int32 {
	p := cstr(cursor, false)
	defer freeStr(p)
	return int32(C.sd_journal_seek_cursor(j.c(), p))
}

// JournalGetCursor calls sd_journal_get_cursor. The returned string must be freed.
func JournalGetCursor(j Journal) (Str, int32) {
	var p *C.char
	r := C.sd_journal_get_cursor(j.c(), &p)
	return Str(p), int32(r)
}

// JournalTestCursor calls sd_journal_test_cursor.
func JournalTestCursor(j Journal, cursor string) int32 {
	p := cstr(cursor, false)
	defer freeStr(p)
	return int32(C.sd_journal_test_cursor(j.c(), p))
}

// JournalGetRealtimeUsec calls sd_journal_get_realtime_usec.
func JournalGetRealtimeUsec(j Journal) (uint64, int32) {
	var usec C.uint64_t
	r := C.sd_journal_get_realtime_usec(j.c(), &usec)
	return uint64(usec), int32(r)
}

// JournalGetMonotonicUsec calls sd_journal_get_monotonic_usec.
func JournalGetMonotonicUsec(j Journal) (uint64, ID128, int32) {
	var (
		usec C.uint64_t
		boot C.sd_id128_t
	)
	r := C.sd_journal_get_monotonic_usec(j.c(), &usec, &boot)
	return uint64(usec), goID128(&boot), int32(r)
}

// JournalGetData calls sd_journal_get_data. The returned view is valid
// until the next call on j.
func JournalGetData(j Journal, field string) ([]byte, int32) {
	p := cstr(field, false)
	defer freeStr(p)

	var (
		data unsafe.Pointer
		n    C.size_t
	)
	r := C.sd_journal_get_data(j.c(), p, &data, &n)
	return view(data, n), int32(r)
}

// JournalEnumerateData calls sd_journal_enumerate_data. The returned view is
// valid until the next call on j.
func JournalEnumerateData(j Journal) ([]byte, int32) {
	var (
		data unsafe.Pointer
		n    C.size_t
	)
	r := C.sd_journal_enumerate_data(j.c(), &data, &n)
	return view(data, n), int32(r)
}

// JournalRestartData calls sd_journal_restart_data.
func JournalRestartData(j Journal) { C.sd_journal_restart_data(j.c()) }

// JournalSetDataThreshold calls sd_journal_set_data_threshold.
func JournalSetDataThreshold(j Journal, sz uint64) int32 {
	return int32(C.sd_journal_set_data_threshold(j.c(), C.size_t(sz)))
}

// JournalAddMatch calls sd_journal_add_match.
func JournalAddMatch(j Journal, data []byte) int32 {
	if len(data) == 0 {
		return int32(C.sd_journal_add_match(j.c(), nil, 0))
	}
	return int32(C.sd_journal_add_match(j.c(), unsafe.Pointer(&data[0]), C.size_t(len(data))))
}

// JournalAddDisjunction calls sd_journal_add_disjunction.
func JournalAddDisjunction(j Journal) int32 { return int32(C.sd_journal_add_disjunction(j.c())) }

// JournalAddConjunction calls sd_journal_add_conjunction.
func JournalAddConjunction(j Journal) int32 { return int32(C.sd_journal_add_conjunction(j.c())) }

// JournalFlushMatches calls sd_journal_flush_matches.
func JournalFlushMatches(j Journal) { C.sd_journal_flush_matches(j.c()) }

// JournalWait calls sd_journal_wait.
func JournalWait(j Journal, usec uint64) int32 {
	return int32(C.sd_journal_wait(j.c(), C.uint64_t(usec)))
}

// JournalGetUsage calls sd_journal_get_usage.
func JournalGetUsage(j Journal) (uint64, int32) {
	var n C.uint64_t
	r := C.sd_journal_get_usage(j.c(), &n)
	return uint64(n), int32(r)
}

// JournalQueryUnique calls sd_journal_query_unique.
func JournalQueryUnique(j Journal, field string) int32 {
	p := cstr(field, false)
	defer freeStr(p)
	return int32(C.sd_journal_query_unique(j.c(), p))
}

// JournalEnumerateUnique calls sd_journal_enumerate_unique. The returned view
// is valid until the next call on j.
func JournalEnumerateUnique(j Journal) ([]byte, int32) {
	var (
		data unsafe.Pointer
		n    C.size_t
	)
	r := C.sd_journal_enumerate_unique(j.c(), &data, &n)
	return view(data, n), int32(r)
}

// JournalRestartUnique calls sd_journal_restart_unique.
func JournalRestartUnique(j Journal) { C.sd_journal_restart_unique(j.c()) }
