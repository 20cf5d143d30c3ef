package login

import (
	"unsafe"

	"git.gensokyo.uk/security/systemd/internal/sd"
)

// native provides methods for every libsystemd function used by this package.
// Functions sharing a signature are selected by their name.
type native interface {
	pidStr(op string, pid int) (sd.Str, int32)
	pidGetOwnerUID(pid int) (uint32, int32)

	sessionStr(op string, session string) (sd.Str, int32)
	sessionGetUID(session string) (uint32, int32)
	sessionGetVT(session string) (uint32, int32)
	sessionIsActive(session string) int32

	getSessions() (sd.StrV, int32)
	getSeats() (sd.StrV, int32)

	free(p unsafe.Pointer)
}

// direct implements [native] by calling libsystemd.
type direct struct{}

var (
	pidStrFuncs = map[string]func(pid int) (sd.Str, int32){
		"sd_pid_get_unit":         sd.PidGetUnit,
		"sd_pid_get_user_unit":    sd.PidGetUserUnit,
		"sd_pid_get_slice":        sd.PidGetSlice,
		"sd_pid_get_user_slice":   sd.PidGetUserSlice,
		"sd_pid_get_machine_name": sd.PidGetMachineName,
		"sd_pid_get_cgroup":       sd.PidGetCgroup,
		"sd_pid_get_session":      sd.PidGetSession,
	}
	sessionStrFuncs = map[string]func(session string) (sd.Str, int32){
		"sd_session_get_seat":        sd.SessionGetSeat,
		"sd_session_get_tty":         sd.SessionGetTTY,
		"sd_session_get_display":     sd.SessionGetDisplay,
		"sd_session_get_type":        sd.SessionGetType,
		"sd_session_get_class":       sd.SessionGetClass,
		"sd_session_get_state":       sd.SessionGetState,
		"sd_session_get_remote_host": sd.SessionGetRemoteHost,
	}
)

func (direct) pidStr(op string, pid int) (sd.Str, int32)     { return pidStrFuncs[op](pid) }
func (direct) pidGetOwnerUID(pid int) (uint32, int32)        { return sd.PidGetOwnerUID(pid) }
func (direct) sessionStr(op, session string) (sd.Str, int32) { return sessionStrFuncs[op](session) }
func (direct) sessionGetUID(session string) (uint32, int32)  { return sd.SessionGetUID(session) }
func (direct) sessionGetVT(session string) (uint32, int32)   { return sd.SessionGetVT(session) }
func (direct) sessionIsActive(session string) int32          { return sd.SessionIsActive(session) }
func (direct) getSessions() (sd.StrV, int32)                 { return sd.GetSessions() }
func (direct) getSeats() (sd.StrV, int32)                    { return sd.GetSeats() }
func (direct) free(p unsafe.Pointer)                         { sd.Free(p) }
