package daemon

import (
	"strings"

	"git.gensokyo.uk/security/systemd"
)

// Listening selects sockets by whether they are in listening mode.
type Listening int

const (
	// ListeningAny matches sockets regardless of listening mode.
	ListeningAny Listening = -1 + iota
	// ListeningNo matches sockets not in listening mode.
	ListeningNo
	// ListeningYes matches sockets in listening mode.
	ListeningYes
)

// IsFifo reports whether fd is a FIFO. A non-empty path additionally
// requires the FIFO to be at path.
func IsFifo(fd int, path string) (bool, error) { return isFifo(direct{}, fd, path) }

func isFifo(k native, fd int, path string) (bool, error) {
	const op = "sd_is_fifo"
	if err := systemd.CheckString(op, path); err != nil {
		return false, err
	}
	return systemd.Bool(op, k.isFifo(fd, path))
}

// IsSpecial reports whether fd is a special file, like a character device
// or a file in /proc. A non-empty path additionally requires the file to be at path.
func IsSpecial(fd int, path string) (bool, error) { return isSpecial(direct{}, fd, path) }

func isSpecial(k native, fd int, path string) (bool, error) {
	const op = "sd_is_special"
	if err := systemd.CheckString(op, path); err != nil {
		return false, err
	}
	return systemd.Bool(op, k.isSpecial(fd, path))
}

// IsSocket reports whether fd is a socket of family and typ. A zero family
// or typ matches any, like [unix.AF_UNSPEC].
func IsSocket(fd, family, typ int, listening Listening) (bool, error) {
	return isSocket(direct{}, fd, family, typ, listening)
}

func isSocket(k native, fd, family, typ int, listening Listening) (bool, error) {
	return systemd.Bool("sd_is_socket", k.isSocket(fd, family, typ, int(listening)))
}

// IsSocketInet is like [IsSocket] for [unix.AF_INET] or [unix.AF_INET6]
// sockets. A non-zero port additionally requires the socket to be bound to port.
func IsSocketInet(fd, family, typ int, listening Listening, port uint16) (bool, error) {
	return isSocketInet(direct{}, fd, family, typ, listening, port)
}

func isSocketInet(k native, fd, family, typ int, listening Listening, port uint16) (bool, error) {
	return systemd.Bool("sd_is_socket_inet", k.isSocketInet(fd, family, typ, int(listening), port))
}

// IsSocketUnix is like [IsSocket] for [unix.AF_UNIX] sockets. A non-empty
// path additionally requires the socket to be bound to path. A path starting
// with a NUL byte is an abstract address.
func IsSocketUnix(fd, typ int, listening Listening, path string) (bool, error) {
	return isSocketUnix(direct{}, fd, typ, listening, path)
}

func isSocketUnix(k native, fd, typ int, listening Listening, path string) (bool, error) {
	const op = "sd_is_socket_unix"
	if path != "" && path[0] != 0 && strings.IndexByte(path, 0) != -1 {
		return false, &systemd.ConversionError{Op: op, Err: systemd.ErrNUL}
	}
	return systemd.Bool(op, k.isSocketUnix(fd, typ, int(listening), path))
}

// IsMQ reports whether fd is a POSIX message queue. A non-empty path
// additionally requires the queue to be named path.
func IsMQ(fd int, path string) (bool, error) { return isMQ(direct{}, fd, path) }

func isMQ(k native, fd int, path string) (bool, error) {
	const op = "sd_is_mq"
	if err := systemd.CheckString(op, path); err != nil {
		return false, err
	}
	return systemd.Bool(op, k.isMQ(fd, path))
}
