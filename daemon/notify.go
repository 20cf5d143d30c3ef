package daemon

import (
	"errors"
	"strconv"
	"strings"
	"syscall"
	"time"

	sdnotify "github.com/coreos/go-systemd/v22/daemon"

	"git.gensokyo.uk/security/systemd"
)

// EnvNotifySocket is the environment variable holding the notification socket address.
const EnvNotifySocket = "NOTIFY_SOCKET"

// Var is a state variable sent to the service manager.
type Var struct{ Key, Value string }

func (v Var) String() string { return v.Key + "=" + v.Value }

// valid reports whether v can be represented in a notification.
func (v Var) valid() bool {
	return v.Key != "" &&
		!strings.ContainsAny(v.Key, "=\n\x00") &&
		!strings.ContainsAny(v.Value, "\n\x00")
}

// mustVar returns the [Var] of a well-known assignment.
func mustVar(s string) Var {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		panic("invalid assignment " + s)
	}
	return Var{k, v}
}

var (
	ready     = mustVar(sdnotify.SdNotifyReady)
	reloading = mustVar(sdnotify.SdNotifyReloading)
	stopping  = mustVar(sdnotify.SdNotifyStopping)
	watchdog  = mustVar(sdnotify.SdNotifyWatchdog)
)

// Ready tells the service manager that startup is complete.
func Ready() Var { return ready }

// Reloading tells the service manager that the service is reloading its configuration.
func Reloading() Var { return reloading }

// Stopping tells the service manager that the service is shutting down.
func Stopping() Var { return stopping }

// Watchdog updates the watchdog timestamp.
func Watchdog() Var { return watchdog }

// WatchdogTrigger tells the service manager that the service is unhealthy.
func WatchdogTrigger() Var { return Var{"WATCHDOG", "trigger"} }

// Status sets a free-form status string shown by systemctl status.
func Status(s string) Var { return Var{"STATUS", s} }

// Errno reports the reason of a failure as an errno.
func Errno(errno syscall.Errno) Var { return Var{"ERRNO", strconv.Itoa(int(errno))} }

// MainPID tells the service manager the main process of the service.
func MainPID(pid int) Var { return Var{"MAINPID", strconv.Itoa(pid)} }

// ExtendTimeout extends the current startup, runtime or shutdown timeout by d.
func ExtendTimeout(d time.Duration) Var {
	return Var{"EXTEND_TIMEOUT_USEC", strconv.FormatInt(d.Microseconds(), 10)}
}

// FDStore asks the service manager to keep file descriptors sent with [PidNotifyWithFds].
func FDStore() Var { return Var{"FDSTORE", "1"} }

// FDName names file descriptors sent with [PidNotifyWithFds].
func FDName(name string) Var { return Var{"FDNAME", name} }

// state joins vars into a notification. A [systemd.ConversionError] is
// returned if any variable cannot be represented.
func state(op string, vars []Var) (string, error) {
	s := make([]string, len(vars))
	for i, v := range vars {
		if !v.valid() {
			if strings.IndexByte(v.Key+v.Value, 0) != -1 {
				return "", &systemd.ConversionError{Op: op, Err: systemd.ErrNUL}
			}
			return "", &systemd.ConversionError{Op: op, Err: systemd.ErrMalformed}
		}
		s[i] = v.String()
	}
	return strings.Join(s, "\n"), nil
}

// Notify sends vars to the service manager. It returns false without error
// if the process is not supervised. If unset is true, [EnvNotifySocket] is
// removed regardless of the outcome and further notifications are not sent.
func Notify(unset bool, vars ...Var) (bool, error) { return notify(direct{}, unset, vars) }

func notify(k native, unset bool, vars []Var) (bool, error) {
	const op = "sd_notify"
	return sendState(k, op, unset, vars, func(s string) int32 { return k.notify(s) })
}

// PidNotify is like [Notify] but sends on behalf of process pid.
func PidNotify(pid int, unset bool, vars ...Var) (bool, error) {
	return pidNotify(direct{}, pid, unset, vars)
}

func pidNotify(k native, pid int, unset bool, vars []Var) (bool, error) {
	const op = "sd_pid_notify"
	return sendState(k, op, unset, vars, func(s string) int32 { return k.pidNotify(pid, s) })
}

// PidNotifyWithFds is like [PidNotify] but also sends file descriptors fds.
// The descriptors remain owned by the caller.
func PidNotifyWithFds(pid int, unset bool, fds []int, vars ...Var) (bool, error) {
	return pidNotifyWithFds(direct{}, pid, unset, fds, vars)
}

func pidNotifyWithFds(k native, pid int, unset bool, fds []int, vars []Var) (bool, error) {
	const op = "sd_pid_notify_with_fds"
	return sendState(k, op, unset, vars, func(s string) int32 { return k.pidNotifyWithFds(pid, s, fds) })
}

func sendState(k native, op string, unset bool, vars []Var, f func(state string) int32) (ok bool, err error) {
	if unset {
		defer func() { err = errors.Join(err, unsetenv(k, EnvNotifySocket)) }()
	}
	var s string
	if s, err = state(op, vars); err != nil {
		return
	}
	return systemd.Bool(op, f(s))
}

// Booted reports whether the system was booted with systemd.
func Booted() (bool, error) { return booted(direct{}) }

func booted(k native) (bool, error) { return systemd.Bool("sd_booted", k.booted()) }

// Environment variables describing the watchdog.
const (
	EnvWatchdogUsec = "WATCHDOG_USEC"
	EnvWatchdogPID  = "WATCHDOG_PID"
)

// WatchdogEnabled returns the watchdog interval the service manager expects
// [Watchdog] to be sent within, or zero if the watchdog is disabled for this
// process. If unset is true, the environment variables describing the
// watchdog are removed regardless of the outcome.
func WatchdogEnabled(unset bool) (time.Duration, error) { return watchdogEnabled(direct{}, unset) }

func watchdogEnabled(k native, unset bool) (d time.Duration, err error) {
	if unset {
		defer func() { err = errors.Join(err, unsetenv(k, EnvWatchdogUsec, EnvWatchdogPID)) }()
	}
	usec, r := k.watchdogEnabled()
	var ok bool
	if ok, err = systemd.Bool("sd_watchdog_enabled", r); err != nil || !ok {
		return
	}
	return time.Duration(usec) * time.Microsecond, nil
}
