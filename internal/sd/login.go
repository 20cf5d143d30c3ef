package sd

/*
#include <stdlib.h>
#include <systemd/sd-login.h>
*/
import "C"

import "unsafe"

type pidStrFunc func(C.pid_t, **C.char) C.int

func pidStr(f pidStrFunc, pid int) (Str, int32) {
	var p *C.char
	r := f(C.pid_t(pid), &p)
	return Str(p), int32(r)
}

// PidGetUnit calls sd_pid_get_unit. The returned string must be freed.
func PidGetUnit(pid int) (Str, int32) {
	return pidStr(func(pid C.pid_t, p **C.char) C.int { return C.sd_pid_get_unit(pid, p) }, pid)
}

// PidGetUserUnit calls sd_pid_get_user_unit. The returned string must be freed.
func PidGetUserUnit(pid int) (Str, int32) {
	return pidStr(func(pid C.pid_t, p **C.char) C.int { return C.sd_pid_get_user_unit(pid, p) }, pid)
}

// PidGetSlice calls sd_pid_get_slice. The returned string must be freed.
func PidGetSlice(pid int) (Str, int32) {
	return pidStr(func(pid C.pid_t, p **C.char) C.int { return C.sd_pid_get_slice(pid, p) }, pid)
}

// PidGetUserSlice calls sd_pid_get_user_slice. The returned string must be freed.
func PidGetUserSlice(pid int) (Str, int32) {
	return pidStr(func(pid C.pid_t, p **C.char) C.int { return C.sd_pid_get_user_slice(pid, p) }, pid)
}

// PidGetMachineName calls sd_pid_get_machine_name. The returned string must be freed.
func PidGetMachineName(pid int) (Str, int32) {
	return pidStr(func(pid C.pid_t, p **C.char) C.int { return C.sd_pid_get_machine_name(pid, p) }, pid)
}

// PidGetCgroup calls sd_pid_get_cgroup. The returned string must be freed.
func PidGetCgroup(pid int) (Str, int32) {
	return pidStr(func(pid C.pid_t, p **C.char) C.int { return C.sd_pid_get_cgroup(pid, p) }, pid)
}

// PidGetSession calls sd_pid_get_session. The returned string must be freed.
func PidGetSession(pid int) (Str, int32) {
	return pidStr(func(pid C.pid_t, p **C.char) C.int { return C.sd_pid_get_session(pid, p) }, pid)
}

// PidGetOwnerUID calls sd_pid_get_owner_uid.
func PidGetOwnerUID(pid int) (uint32, int32) {
	var uid C.uid_t
	r := C.sd_pid_get_owner_uid(C.pid_t(pid), &uid)
	return uint32(uid), int32(r)
}

type sessionStrFunc func(*C.char, **C.char) C.int

func sessionStr(f sessionStrFunc, session string) (Str, int32) {
	s := cstr(session, true)
	defer freeStr(s)

	var p *C.char
	r := f(s, &p)
	return Str(p), int32(r)
}

// SessionGetSeat calls sd_session_get_seat. The returned string must be freed.
func SessionGetSeat(session string) (Str, int32) {
	return sessionStr(func(s *C.char, p **C.char) C.int { return C.sd_session_get_seat(s, p) }, session)
}

// SessionGetTTY calls sd_session_get_tty. The returned string must be freed.
func SessionGetTTY(session string) (Str, int32) {
	return sessionStr(func(s *C.char, p **C.char) C.int { return C.sd_session_get_tty(s, p) }, session)
}

// SessionGetDisplay calls sd_session_get_display. The returned string must be freed.
func SessionGetDisplay(session string) (Str, int32) {
	return sessionStr(func(s *C.char, p **C.char) C.int { return C.sd_session_get_display(s, p) }, session)
}

// SessionGetType calls sd_session_get_type. The returned string must be freed.
func SessionGetType(session string) (Str, int32) {
	return sessionStr(func(s *C.char, p **C.char) C.int { return C.sd_session_get_type(s, p) }, session)
}

// SessionGetClass calls sd_session_get_class. The returned string must be freed.
func SessionGetClass(session string) (Str, int32) {
	return sessionStr(func(s *C.char, p **C.char) C.int { return C.sd_session_get_class(s, p) }, session)
}

// SessionGetState calls sd_session_get_state. The returned string must be freed.
func SessionGetState(session string) (Str, int32) {
	return sessionStr(func(s *C.char, p **C.char) C.int { return C.sd_session_get_state(s, p) }, session)
}

// SessionGetRemoteHost calls sd_session_get_remote_host. The returned string must be freed.
func SessionGetRemoteHost(session string) (Str, int32) {
	return sessionStr(func(s *C.char, p **C.char) C.int { return C.sd_session_get_remote_host(s, p) }, session)
}

// SessionGetUID calls sd_session_get_uid. An empty session refers to the caller's session.
func SessionGetUID(session string) (uint32, int32) {
	s := cstr(session, true)
	defer freeStr(s)

	var uid C.uid_t
	r := C.sd_session_get_uid(s, &uid)
	return uint32(uid), int32(r)
}

// SessionGetVT calls sd_session_get_vt.
func SessionGetVT(session string) (uint32, int32) {
	s := cstr(session, true)
	defer freeStr(s)

	var vt C.uint
	r := C.sd_session_get_vt(s, &vt)
	return uint32(vt), int32(r)
}

// SessionIsActive calls sd_session_is_active.
func SessionIsActive(session string) int32 {
	s := cstr(session, true)
	defer freeStr(s)
	return int32(C.sd_session_is_active(s))
}

// GetSessions calls sd_get_sessions. The returned array and every string in it must be freed.
func GetSessions() (StrV, int32) {
	var v **C.char
	r := C.sd_get_sessions(&v)
	return StrV(unsafe.Pointer(v)), int32(r)
}

// GetSeats calls sd_get_seats. The returned array and every string in it must be freed.
func GetSeats() (StrV, int32) {
	var v **C.char
	r := C.sd_get_seats(&v)
	return StrV(unsafe.Pointer(v)), int32(r)
}
