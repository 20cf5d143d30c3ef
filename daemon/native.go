package daemon

import (
	"os"
	"unsafe"

	"git.gensokyo.uk/security/systemd/internal/sd"
)

// native provides methods for every libsystemd function used by this package,
// and for the environment it modifies.
type native interface {
	listenFds() int32
	listenFdsWithNames() (sd.StrV, int32)
	free(p unsafe.Pointer)

	notify(state string) int32
	pidNotify(pid int, state string) int32
	pidNotifyWithFds(pid int, state string, fds []int) int32

	booted() int32
	watchdogEnabled() (uint64, int32)

	isFifo(fd int, path string) int32
	isSpecial(fd int, path string) int32
	isSocket(fd, family, typ, listening int) int32
	isSocketInet(fd, family, typ, listening int, port uint16) int32
	isSocketUnix(fd, typ, listening int, path string) int32
	isMQ(fd int, path string) int32

	// unsetenv removes key from the environment seen by both Go and libsystemd.
	unsetenv(key string) error
}

// direct implements [native] by calling libsystemd. Native functions never
// unset the environment themselves since Go keeps its own copy of it.
type direct struct{}

func (direct) listenFds() int32                      { return sd.ListenFds(false) }
func (direct) listenFdsWithNames() (sd.StrV, int32)  { return sd.ListenFdsWithNames(false) }
func (direct) free(p unsafe.Pointer)                 { sd.Free(p) }
func (direct) notify(state string) int32             { return sd.Notify(false, state) }
func (direct) pidNotify(pid int, state string) int32 { return sd.PidNotify(pid, false, state) }
func (direct) pidNotifyWithFds(pid int, state string, fds []int) int32 {
	return sd.PidNotifyWithFds(pid, false, state, fds)
}
func (direct) booted() int32                       { return sd.Booted() }
func (direct) watchdogEnabled() (uint64, int32)    { return sd.WatchdogEnabled(false) }
func (direct) isFifo(fd int, path string) int32    { return sd.IsFifo(fd, path) }
func (direct) isSpecial(fd int, path string) int32 { return sd.IsSpecial(fd, path) }
func (direct) isSocket(fd, family, typ, listening int) int32 {
	return sd.IsSocket(fd, family, typ, listening)
}
func (direct) isSocketInet(fd, family, typ, listening int, port uint16) int32 {
	return sd.IsSocketInet(fd, family, typ, listening, port)
}
func (direct) isSocketUnix(fd, typ, listening int, path string) int32 {
	return sd.IsSocketUnix(fd, typ, listening, path)
}
func (direct) isMQ(fd int, path string) int32 { return sd.IsMQ(fd, path) }
func (direct) unsetenv(key string) error      { return os.Unsetenv(key) }
