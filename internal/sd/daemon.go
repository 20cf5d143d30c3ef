package sd

/*
#include <stdlib.h>
#include <systemd/sd-daemon.h>
*/
import "C"

import "unsafe"

// ListenFdsStart is SD_LISTEN_FDS_START.
const ListenFdsStart = C.SD_LISTEN_FDS_START

func cbool(v bool) C.int {
	if v {
		return 1
	}
	return 0
}

// ListenFds calls sd_listen_fds.
func ListenFds(unset bool) int32 { return int32(C.sd_listen_fds(cbool(unset))) }

// ListenFdsWithNames calls sd_listen_fds_with_names. The returned array and
// every string in it must be freed.
func ListenFdsWithNames(unset bool) (StrV, int32) {
	var names **C.char
	r := C.sd_listen_fds_with_names(cbool(unset), &names)
	return StrV(unsafe.Pointer(names)), int32(r)
}

// Notify calls sd_notify.
func Notify(unset bool, state string) int32 {
	p := cstr(state, false)
	defer freeStr(p)
	return int32(C.sd_notify(cbool(unset), p))
}

// PidNotify calls sd_pid_notify.
func PidNotify(pid int, unset bool, state string) int32 {
	p := cstr(state, false)
	defer freeStr(p)
	return int32(C.sd_pid_notify(C.pid_t(pid), cbool(unset), p))
}

// PidNotifyWithFds calls sd_pid_notify_with_fds.
func PidNotifyWithFds(pid int, unset bool, state string, fds []int) int32 {
	p := cstr(state, false)
	defer freeStr(p)

	v := make([]C.int, len(fds)+1)
	for i, fd := range fds {
		v[i] = C.int(fd)
	}
	return int32(C.sd_pid_notify_with_fds(C.pid_t(pid), cbool(unset), p, &v[0], C.uint(len(fds))))
}

// Booted calls sd_booted.
func Booted() int32 { return int32(C.sd_booted()) }

// WatchdogEnabled calls sd_watchdog_enabled.
func WatchdogEnabled(unset bool) (uint64, int32) {
	var usec C.uint64_t
	r := C.sd_watchdog_enabled(cbool(unset), &usec)
	return uint64(usec), int32(r)
}

// IsFifo calls sd_is_fifo. An empty path is passed as NULL.
func IsFifo(fd int, path string) int32 {
	p := cstr(path, true)
	defer freeStr(p)
	return int32(C.sd_is_fifo(C.int(fd), p))
}

// IsSpecial calls sd_is_special. An empty path is passed as NULL.
func IsSpecial(fd int, path string) int32 {
	p := cstr(path, true)
	defer freeStr(p)
	return int32(C.sd_is_special(C.int(fd), p))
}

// IsSocket calls sd_is_socket.
func IsSocket(fd, family, typ, listening int) int32 {
	return int32(C.sd_is_socket(C.int(fd), C.int(family), C.int(typ), C.int(listening)))
}

// IsSocketInet calls sd_is_socket_inet.
func IsSocketInet(fd, family, typ, listening int, port uint16) int32 {
	return int32(C.sd_is_socket_inet(C.int(fd), C.int(family), C.int(typ), C.int(listening), C.uint16_t(port)))
}

// IsSocketUnix calls sd_is_socket_unix. An empty path is passed as NULL.
// A path starting with NUL is an abstract socket address.
func IsSocketUnix(fd, typ, listening int, path string) int32 {
	if path == "" {
		return int32(C.sd_is_socket_unix(C.int(fd), C.int(typ), C.int(listening), nil, 0))
	}
	p := C.CBytes([]byte(path))
	defer C.free(p)
	return int32(C.sd_is_socket_unix(C.int(fd), C.int(typ), C.int(listening), (*C.char)(p), C.size_t(len(path))))
}

// IsMQ calls sd_is_mq. An empty path is passed as NULL.
func IsMQ(fd int, path string) int32 {
	p := cstr(path, true)
	defer freeStr(p)
	return int32(C.sd_is_mq(C.int(fd), p))
}
