// Package login queries the login, session and seat state tracked by
// systemd-logind, and the unit and slice membership of processes.
//
// Queries for information that does not apply to the process or session,
// such as the seat of a remote session, report false without an error.
package login

import (
	"errors"
	"syscall"
	"unsafe"

	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/internal/sd"
)

// absent reports whether err indicates the queried value is not set.
func absent(err error) bool {
	return errors.Is(err, syscall.ENODATA) || errors.Is(err, syscall.ENXIO)
}

// optional copies and frees a string returned by libsystemd.
func optional(k native, op string, p sd.Str, r int32) (string, bool, error) {
	if err := systemd.Check(op, r); err != nil {
		if absent(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if p == nil {
		return "", false, &systemd.ConversionError{Op: op, Err: systemd.ErrNull}
	}
	defer k.free(unsafe.Pointer(p))
	s, err := systemd.String(op, p.Bytes())
	return s, err == nil, err
}

// strv copies and frees a string array of length n returned by libsystemd.
func strv(k native, op string, v sd.StrV, r int32) ([]string, error) {
	n, err := systemd.Result(op, r)
	if err != nil || v == nil {
		return nil, err
	}
	defer k.free(unsafe.Pointer(v))

	s := make([]string, 0, n)
	for _, p := range v.Slice(n) {
		e, convErr := systemd.String(op, p.Bytes())
		k.free(unsafe.Pointer(p))
		if err == nil {
			err = convErr
		}
		s = append(s, e)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func pidStr(k native, op string, pid int) (string, bool, error) {
	p, r := k.pidStr(op, pid)
	return optional(k, op, p, r)
}

// PidUnit returns the system unit process pid belongs to. A zero pid
// refers to the calling process.
func PidUnit(pid int) (string, bool, error) { return pidStr(direct{}, "sd_pid_get_unit", pid) }

// PidUserUnit returns the user unit process pid belongs to.
func PidUserUnit(pid int) (string, bool, error) {
	return pidStr(direct{}, "sd_pid_get_user_unit", pid)
}

// PidSlice returns the system slice process pid belongs to.
func PidSlice(pid int) (string, bool, error) { return pidStr(direct{}, "sd_pid_get_slice", pid) }

// PidUserSlice returns the user slice process pid belongs to.
func PidUserSlice(pid int) (string, bool, error) {
	return pidStr(direct{}, "sd_pid_get_user_slice", pid)
}

// PidMachineName returns the name of the container or VM process pid belongs to.
func PidMachineName(pid int) (string, bool, error) {
	return pidStr(direct{}, "sd_pid_get_machine_name", pid)
}

// PidCgroup returns the control group path of process pid.
func PidCgroup(pid int) (string, bool, error) { return pidStr(direct{}, "sd_pid_get_cgroup", pid) }

// PidSession returns the session process pid belongs to.
func PidSession(pid int) (Session, bool, error) {
	s, ok, err := pidStr(direct{}, "sd_pid_get_session", pid)
	return Session(s), ok, err
}

// PidOwnerUID returns the owner of the session process pid belongs to.
func PidOwnerUID(pid int) (uint32, bool, error) { return pidOwnerUID(direct{}, pid) }

func pidOwnerUID(k native, pid int) (uint32, bool, error) {
	uid, r := k.pidGetOwnerUID(pid)
	return number(systemd.Check("sd_pid_get_owner_uid", r), uid)
}

// number maps the outcome of a call returning a number.
func number(err error, v uint32) (uint32, bool, error) {
	if err != nil {
		if absent(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return v, true, nil
}

// Session identifies a login session. The empty Session refers to the
// session of the calling process.
type Session string

// Sessions returns every current login session.
func Sessions() ([]Session, error) { return sessions(direct{}) }

func sessions(k native) ([]Session, error) {
	v, r := k.getSessions()
	s, err := strv(k, "sd_get_sessions", v, r)
	if s == nil {
		return nil, err
	}
	sessions := make([]Session, len(s))
	for i := range s {
		sessions[i] = Session(s[i])
	}
	return sessions, err
}

// Seats returns every available seat.
func Seats() ([]string, error) { return seats(direct{}) }

func seats(k native) ([]string, error) {
	v, r := k.getSeats()
	return strv(k, "sd_get_seats", v, r)
}

// session is a [Session] bound to a native implementation.
type session struct {
	k  native
	id string
}

func (s Session) bind() session { return session{direct{}, string(s)} }

func (s session) str(op string) (string, bool, error) {
	if err := systemd.CheckString(op, s.id); err != nil {
		return "", false, err
	}
	p, r := s.k.sessionStr(op, s.id)
	return optional(s.k, op, p, r)
}

// Seat returns the seat the session is attached to.
func (s Session) Seat() (string, bool, error) { return s.bind().str("sd_session_get_seat") }

// TTY returns the terminal of the session.
func (s Session) TTY() (string, bool, error) { return s.bind().str("sd_session_get_tty") }

// Display returns the X11 display of the session.
func (s Session) Display() (string, bool, error) { return s.bind().str("sd_session_get_display") }

// Type returns the type of the session, like "x11", "wayland" or "tty".
func (s Session) Type() (string, bool, error) { return s.bind().str("sd_session_get_type") }

// Class returns the class of the session, like "user" or "greeter".
func (s Session) Class() (string, bool, error) { return s.bind().str("sd_session_get_class") }

// State returns the state of the session, like "online", "active" or "closing".
func (s Session) State() (string, bool, error) { return s.bind().str("sd_session_get_state") }

// RemoteHost returns the remote host of the session.
func (s Session) RemoteHost() (string, bool, error) {
	return s.bind().str("sd_session_get_remote_host")
}

// UID returns the user owning the session.
func (s Session) UID() (uint32, error) { return s.bind().uid() }

func (s session) uid() (uint32, error) {
	const op = "sd_session_get_uid"
	if err := systemd.CheckString(op, s.id); err != nil {
		return 0, err
	}
	uid, r := s.k.sessionGetUID(s.id)
	if err := systemd.Check(op, r); err != nil {
		return 0, err
	}
	return uid, nil
}

// VT returns the virtual terminal of the session.
func (s Session) VT() (uint32, bool, error) { return s.bind().vt() }

func (s session) vt() (uint32, bool, error) {
	const op = "sd_session_get_vt"
	if err := systemd.CheckString(op, s.id); err != nil {
		return 0, false, err
	}
	vt, r := s.k.sessionGetVT(s.id)
	return number(systemd.Check(op, r), vt)
}

// IsActive reports whether the session is active in the foreground of its seat.
func (s Session) IsActive() (bool, error) { return s.bind().isActive() }

func (s session) isActive() (bool, error) {
	const op = "sd_session_is_active"
	if err := systemd.CheckString(op, s.id); err != nil {
		return false, err
	}
	return systemd.Bool(op, s.k.sessionIsActive(s.id))
}
