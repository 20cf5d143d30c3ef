//go:build !systemd_nojournal

package journal

import (
	"unsafe"

	"git.gensokyo.uk/security/systemd/internal/sd"
)

// native provides methods for every libsystemd function used by this package.
// The [direct] implementation calls libsystemd, tests substitute a stub.
type native interface {
	sendv(fields []string) int32

	open(flags int32) (sd.Journal, int32)
	openDirectory(path string, flags int32) (sd.Journal, int32)
	openFiles(paths []string, flags int32) (sd.Journal, int32)
	close(j sd.Journal)

	next(j sd.Journal) int32
	previous(j sd.Journal) int32
	nextSkip(j sd.Journal, skip uint64) int32
	previousSkip(j sd.Journal, skip uint64) int32

	seekHead(j sd.Journal) int32
	seekTail(j sd.Journal) int32
	seekRealtimeUsec(j sd.Journal, usec uint64) int32
	seekMonotonicUsec(j sd.Journal, boot sd.ID128, usec uint64) int32
	seekCursor(j sd.Journal, cursor string) int32
	getCursor(j sd.Journal) (sd.Str, int32)
	testCursor(j sd.Journal, cursor string) int32

	getRealtimeUsec(j sd.Journal) (uint64, int32)
	getMonotonicUsec(j sd.Journal) (uint64, sd.ID128, int32)
	getData(j sd.Journal, field string) ([]byte, int32)
	enumerateData(j sd.Journal) ([]byte, int32)
	restartData(j sd.Journal)
	setDataThreshold(j sd.Journal, sz uint64) int32

	addMatch(j sd.Journal, data []byte) int32
	addDisjunction(j sd.Journal) int32
	addConjunction(j sd.Journal) int32
	flushMatches(j sd.Journal)

	wait(j sd.Journal, usec uint64) int32
	getUsage(j sd.Journal) (uint64, int32)

	queryUnique(j sd.Journal, field string) int32
	enumerateUnique(j sd.Journal) ([]byte, int32)
	restartUnique(j sd.Journal)

	free(p unsafe.Pointer)
}

// direct implements [native] by calling libsystemd.
type direct struct{}

func (direct) sendv(fields []string) int32 { return sd.JournalSendv(fields) }

func (direct) open(flags int32) (sd.Journal, int32) { return sd.JournalOpen(flags) }
func (direct) openDirectory(path string, flags int32) (sd.Journal, int32) {
	return sd.JournalOpenDirectory(path, flags)
}
func (direct) openFiles(paths []string, flags int32) (sd.Journal, int32) {
	return sd.JournalOpenFiles(paths, flags)
}
func (direct) close(j sd.Journal) { sd.JournalClose(j) }

func (direct) next(j sd.Journal) int32     { return sd.JournalNext(j) }
func (direct) previous(j sd.Journal) int32 { return sd.JournalPrevious(j) }
func (direct) nextSkip(j sd.Journal, skip uint64) int32 {
	return sd.JournalNextSkip(j, skip)
}
func (direct) previousSkip(j sd.Journal, skip uint64) int32 {
	return sd.JournalPreviousSkip(j, skip)
}

func (direct) seekHead(j sd.Journal) int32 { return sd.JournalSeekHead(j) }
func (direct) seekTail(j sd.Journal) int32 { return sd.JournalSeekTail(j) }
func (direct) seekRealtimeUsec(j sd.Journal, usec uint64) int32 {
	return sd.JournalSeekRealtimeUsec(j, usec)
}
func (direct) seekMonotonicUsec(j sd.Journal, boot sd.ID128, usec uint64) int32 {
	return sd.JournalSeekMonotonicUsec(j, boot, usec)
}
func (direct) seekCursor(j sd.Journal, cursor string) int32 {
	return sd.JournalSeekCursor(j, cursor)
}
func (direct) getCursor(j sd.Journal) (sd.Str, int32) { return sd.JournalGetCursor(j) }
func (direct) testCursor(j sd.Journal, cursor string) int32 {
	return sd.JournalTestCursor(j, cursor)
}

func (direct) getRealtimeUsec(j sd.Journal) (uint64, int32) { return sd.JournalGetRealtimeUsec(j) }
func (direct) getMonotonicUsec(j sd.Journal) (uint64, sd.ID128, int32) {
	return sd.JournalGetMonotonicUsec(j)
}
func (direct) getData(j sd.Journal, field string) ([]byte, int32) {
	return sd.JournalGetData(j, field)
}
func (direct) enumerateData(j sd.Journal) ([]byte, int32) { return sd.JournalEnumerateData(j) }
func (direct) restartData(j sd.Journal)                   { sd.JournalRestartData(j) }
func (direct) setDataThreshold(j sd.Journal, sz uint64) int32 {
	return sd.JournalSetDataThreshold(j, sz)
}

func (direct) addMatch(j sd.Journal, data []byte) int32 { return sd.JournalAddMatch(j, data) }
func (direct) addDisjunction(j sd.Journal) int32        { return sd.JournalAddDisjunction(j) }
func (direct) addConjunction(j sd.Journal) int32        { return sd.JournalAddConjunction(j) }
func (direct) flushMatches(j sd.Journal)                { sd.JournalFlushMatches(j) }

func (direct) wait(j sd.Journal, usec uint64) int32  { return sd.JournalWait(j, usec) }
func (direct) getUsage(j sd.Journal) (uint64, int32) { return sd.JournalGetUsage(j) }

func (direct) queryUnique(j sd.Journal, field string) int32 {
	return sd.JournalQueryUnique(j, field)
}
func (direct) enumerateUnique(j sd.Journal) ([]byte, int32) { return sd.JournalEnumerateUnique(j) }
func (direct) restartUnique(j sd.Journal)                   { sd.JournalRestartUnique(j) }

func (direct) free(p unsafe.Pointer) { sd.Free(p) }
