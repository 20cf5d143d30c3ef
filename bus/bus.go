//go:build !systemd_nobus

// Package bus constructs, sends and calls D-Bus messages through sd-bus.
//
// A [Bus] must only be used from one goroutine at a time. The per-thread
// default bus of sd-bus is deliberately not exposed since goroutines
// migrate between threads.
package bus

import (
	"errors"
	"math"
	"time"
	"unsafe"

	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/id128"
	"git.gensokyo.uk/security/systemd/internal/sd"
)

// NameFlag is passed to [Bus.RequestName].
type NameFlag uint64

const (
	// ReplaceExisting takes over the name from its current owner if allowed.
	ReplaceExisting NameFlag = 1 << iota
	// AllowReplacement allows another connection to take over the name.
	AllowReplacement
	// Queue queues the request if the name is currently owned.
	Queue
)

// Bus is a connection to a message bus. It owns an sd_bus handle
// released by Close.
type Bus struct {
	k native
	b sd.Bus
}

func openBus(k native, op string, f func(k native) (sd.Bus, int32)) (*Bus, error) {
	b, r := f(k)
	if err := systemd.Check(op, r); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, &systemd.ConversionError{Op: op, Err: systemd.ErrNull}
	}
	return &Bus{k: k, b: b}, nil
}

// Open connects to the bus appropriate for the calling context:
// the user bus in a user session and the system bus otherwise.
func Open() (*Bus, error) { return openBus(direct{}, "sd_bus_open", native.open) }

// OpenUser connects to the user bus.
func OpenUser() (*Bus, error) { return openBus(direct{}, "sd_bus_open_user", native.openUser) }

// OpenSystem connects to the system bus.
func OpenSystem() (*Bus, error) {
	return openBus(direct{}, "sd_bus_open_system", native.openSystem)
}

// OpenSystemRemote connects to the system bus of host over SSH.
func OpenSystemRemote(host string) (*Bus, error) {
	const op = "sd_bus_open_system_remote"
	if err := systemd.CheckString(op, host); err != nil {
		return nil, err
	}
	return openBus(direct{}, op, func(k native) (sd.Bus, int32) { return k.openSystemRemote(host) })
}

// OpenSystemMachine connects to the system bus of a local container.
func OpenSystemMachine(machine string) (*Bus, error) {
	const op = "sd_bus_open_system_machine"
	if err := systemd.CheckString(op, machine); err != nil {
		return nil, err
	}
	return openBus(direct{}, op, func(k native) (sd.Bus, int32) { return k.openSystemMachine(machine) })
}

// Use calls open, then f, and closes the bus regardless of how f returns.
func Use(open func() (*Bus, error), f func(b *Bus) error) (err error) {
	var b *Bus
	if b, err = open(); err != nil {
		return
	}
	defer func() { err = errors.Join(err, b.Close()) }()
	return f(b)
}

// Close flushes outstanding messages and releases the connection. Every
// later call on b, including Close, returns [systemd.ErrClosed].
// Messages created on b remain valid until closed.
func (b *Bus) Close() error {
	h, err := b.handle()
	if err != nil {
		return err
	}
	b.b = nil
	b.k.flushCloseUnref(h)
	return nil
}

func (b *Bus) handle() (sd.Bus, error) {
	if b == nil || b.b == nil {
		return nil, systemd.ErrClosed
	}
	return b.b, nil
}

// UniqueName returns the unique name of the connection.
func (b *Bus) UniqueName() (BusName, error) {
	const op = "sd_bus_get_unique_name"
	h, err := b.handle()
	if err != nil {
		return "", err
	}
	p, r := b.k.getUniqueName(h)
	if err = systemd.Check(op, r); err != nil {
		return "", err
	}
	s, err := systemd.String(op, p.Bytes())
	return BusName(s), err
}

// ID returns the ID of the bus the connection is attached to.
func (b *Bus) ID() (id128.ID, error) {
	h, err := b.handle()
	if err != nil {
		return id128.ID{}, err
	}
	id, r := b.k.getBusID(h)
	if err = systemd.Check("sd_bus_get_bus_id", r); err != nil {
		return id128.ID{}, err
	}
	return id128.ID(id), nil
}

// Fd returns the file descriptor used by the connection. It remains owned by b.
func (b *Bus) Fd() (int, error) {
	h, err := b.handle()
	if err != nil {
		return -1, err
	}
	return systemd.Result("sd_bus_get_fd", b.k.getFd(h))
}

// Process processes one pending event. It returns whether anything was
// processed and any message left unhandled, which the caller must close.
func (b *Bus) Process() (bool, *Message, error) {
	h, err := b.handle()
	if err != nil {
		return false, nil, err
	}
	m, r := b.k.process(h)
	ok, err := systemd.Bool("sd_bus_process", r)
	if err != nil || m == nil {
		return ok, nil, err
	}
	return ok, &Message{k: b.k, m: m}, nil
}

// Wait blocks until the connection has pending events or timeout elapses.
// A negative timeout waits indefinitely.
func (b *Bus) Wait(timeout time.Duration) (bool, error) {
	h, err := b.handle()
	if err != nil {
		return false, err
	}
	return systemd.Bool("sd_bus_wait", b.k.wait(h, usec(timeout)))
}

// Events returns the poll events to wait for on [Bus.Fd], suitable for
// the Events field of unix.PollFd.
func (b *Bus) Events() (int16, error) {
	h, err := b.handle()
	if err != nil {
		return 0, err
	}
	n, err := systemd.Result("sd_bus_get_events", b.k.getEvents(h))
	return int16(n), err
}

// Timeout returns the CLOCK_MONOTONIC deadline by which [Bus.Process] must
// be called regardless of events on [Bus.Fd]. It returns false if there is
// no deadline.
func (b *Bus) Timeout() (time.Duration, bool, error) {
	h, err := b.handle()
	if err != nil {
		return 0, false, err
	}
	v, r := b.k.getTimeout(h)
	if err = systemd.Check("sd_bus_get_timeout", r); err != nil {
		return 0, false, err
	}
	if v == math.MaxUint64 {
		return 0, false, nil
	}
	return time.Duration(v) * time.Microsecond, true, nil
}

// Flush blocks until every queued outgoing message is written.
func (b *Bus) Flush() error {
	h, err := b.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_bus_flush", b.k.flush(h))
}

// RequestName requests ownership of a well-known name.
func (b *Bus) RequestName(name BusName, flags NameFlag) error {
	const op = "sd_bus_request_name"
	h, err := b.handle()
	if err != nil {
		return err
	}
	if err = systemd.CheckString(op, string(name)); err != nil {
		return err
	}
	return systemd.Check(op, b.k.requestName(h, string(name), uint64(flags)))
}

// ReleaseName releases ownership of a well-known name.
func (b *Bus) ReleaseName(name BusName) error {
	const op = "sd_bus_release_name"
	h, err := b.handle()
	if err != nil {
		return err
	}
	if err = systemd.CheckString(op, string(name)); err != nil {
		return err
	}
	return systemd.Check(op, b.k.releaseName(h, string(name)))
}

func newMessage(k native, op string, m sd.Message, r int32) (*Message, error) {
	if err := systemd.Check(op, r); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &systemd.ConversionError{Op: op, Err: systemd.ErrNull}
	}
	return &Message{k: k, m: m}, nil
}

// NewMethodCall creates a method call message. An empty destination or
// iface is omitted from the message.
func (b *Bus) NewMethodCall(destination BusName, path ObjectPath, iface InterfaceName, member MemberName) (*Message, error) {
	const op = "sd_bus_message_new_method_call"
	h, err := b.handle()
	if err != nil {
		return nil, err
	}
	if err = systemd.CheckString(op, string(destination), string(path), string(iface), string(member)); err != nil {
		return nil, err
	}
	m, r := b.k.newMethodCall(h, string(destination), string(path), string(iface), string(member))
	return newMessage(b.k, op, m, r)
}

// NewSignal creates a signal message.
func (b *Bus) NewSignal(path ObjectPath, iface InterfaceName, member MemberName) (*Message, error) {
	const op = "sd_bus_message_new_signal"
	h, err := b.handle()
	if err != nil {
		return nil, err
	}
	if err = systemd.CheckString(op, string(path), string(iface), string(member)); err != nil {
		return nil, err
	}
	m, r := b.k.newSignal(h, string(path), string(iface), string(member))
	return newMessage(b.k, op, m, r)
}

// usec returns timeout in microseconds, or the maximum value for a negative timeout.
func usec(timeout time.Duration) uint64 {
	if timeout < 0 {
		return math.MaxUint64
	}
	return uint64(timeout.Microseconds())
}

// ptr returns an untyped pointer to v.
func ptr[T any](v *T) unsafe.Pointer { return unsafe.Pointer(v) }
