// Package daemon implements the service side of the systemd service
// manager protocol: socket activation, readiness notification and the
// watchdog.
package daemon

import (
	"errors"
	"net"
	"os"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"

	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/internal/sd"
)

// ListenFdsStart is the first file descriptor passed by socket activation.
const ListenFdsStart = sd.ListenFdsStart

// Environment variables describing passed file descriptors.
const (
	EnvListenPID     = "LISTEN_PID"
	EnvListenFds     = "LISTEN_FDS"
	EnvListenFdNames = "LISTEN_FDNAMES"
)

// Fds describes the file descriptors passed to the process by socket
// activation. The descriptors belong to the process and are only closed
// through Fds by [Fds.Listeners].
type Fds struct {
	n     int
	names []string
}

// Len returns the number of passed file descriptors.
func (f Fds) Len() int { return f.n }

// Fds returns the passed file descriptors, starting at [ListenFdsStart].
func (f Fds) Fds() []int {
	if f.n <= 0 {
		return nil
	}
	fds := make([]int, f.n)
	for i := range fds {
		fds[i] = ListenFdsStart + i
	}
	return fds
}

// Names returns the name of every passed file descriptor, in order. It is
// nil unless obtained through [ListenFdsWithNames].
func (f Fds) Names() []string { return f.names }

// Lookup returns the file descriptors named name.
func (f Fds) Lookup(name string) []int {
	var fds []int
	for i, n := range f.names {
		if n == name {
			fds = append(fds, ListenFdsStart+i)
		}
	}
	return fds
}

// Listeners returns a [net.Listener] for every passed descriptor, in order.
// Every listening socket is duplicated into its listener and closed. The
// entry of any other descriptor is nil and the descriptor is left open.
func (f Fds) Listeners() []net.Listener {
	fds := f.Fds()
	var names []string
	if len(f.names) == len(fds) {
		names = f.names
	}
	return fileListeners(fds, names)
}

// fileListeners implements [Fds.Listeners] for arbitrary descriptors.
func fileListeners(fds []int, names []string) []net.Listener {
	if len(fds) == 0 {
		return nil
	}
	listeners := make([]net.Listener, len(fds))
	for i, fd := range fds {
		name := "LISTEN_FD_" + strconv.Itoa(fd)
		if names != nil {
			name = names[i]
		}
		dup, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
		if err != nil {
			continue
		}
		file := os.NewFile(uintptr(dup), name)
		l, err := net.FileListener(file)
		_ = file.Close()
		if err == nil {
			listeners[i] = l
			_ = unix.Close(fd)
		}
	}
	return listeners
}

// ListenFds returns the file descriptors passed by socket activation.
// If unset is true, the environment variables describing them are removed
// regardless of the outcome.
func ListenFds(unset bool) (Fds, error) { return listenFds(direct{}, unset) }

func listenFds(k native, unset bool) (f Fds, err error) {
	if unset {
		defer func() { err = errors.Join(err, unsetenv(k, EnvListenPID, EnvListenFds, EnvListenFdNames)) }()
	}
	f.n, err = systemd.Result("sd_listen_fds", k.listenFds())
	return
}

// ListenFdsWithNames is like [ListenFds] but also returns the name of
// every descriptor as set by FileDescriptorName=.
func ListenFdsWithNames(unset bool) (Fds, error) { return listenFdsWithNames(direct{}, unset) }

func listenFdsWithNames(k native, unset bool) (f Fds, err error) {
	const op = "sd_listen_fds_with_names"
	if unset {
		defer func() { err = errors.Join(err, unsetenv(k, EnvListenPID, EnvListenFds, EnvListenFdNames)) }()
	}

	v, r := k.listenFdsWithNames()
	if f.n, err = systemd.Result(op, r); err != nil {
		return Fds{}, err
	}
	if v == nil {
		return
	}
	defer k.free(unsafe.Pointer(v))

	f.names = make([]string, 0, f.n)
	for _, p := range v.Slice(f.n) {
		s, convErr := systemd.String(op, p.Bytes())
		k.free(unsafe.Pointer(p))
		if err == nil {
			err = convErr
		}
		f.names = append(f.names, s)
	}
	if err != nil {
		return Fds{}, err
	}
	return
}

// unsetenv removes every key from the environment.
func unsetenv(k native, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := k.unsetenv(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
