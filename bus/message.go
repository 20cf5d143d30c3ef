//go:build !systemd_nobus

package bus

import (
	"fmt"
	"io"
	"strconv"
	"syscall"
	"time"
	"unsafe"

	"github.com/godbus/dbus/v5"

	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/internal/sd"
)

// MessageType is the type of a [Message].
type MessageType uint8

const (
	MethodCall MessageType = 1 + iota
	MethodReturn
	MethodError
	Signal
)

func (t MessageType) String() string {
	switch t {
	case MethodCall:
		return "method_call"
	case MethodReturn:
		return "method_return"
	case MethodError:
		return "error"
	case Signal:
		return "signal"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// UnixFD is a file descriptor passed over the bus.
type UnixFD int32

// TypeError is returned for a value with no corresponding D-Bus type.
type TypeError struct{ Value any }

func (e *TypeError) Error() string { return fmt.Sprintf("unsupported type %T", e.Value) }

// Error is a D-Bus error, as returned in reply to a method call.
type Error struct {
	// Name is the D-Bus error name, like org.freedesktop.DBus.Error.ServiceUnknown.
	Name string
	// Description is the human-readable error message, possibly empty.
	Description string
	// Errno is the errno corresponding to Name.
	Errno syscall.Errno
}

func (e *Error) Error() string {
	if e.Description == "" {
		return e.Name
	}
	return e.Name + ": " + e.Description
}

// Message returns a user-facing error message.
func (e *Error) Message() string { return e.Error() }

func (e *Error) Unwrap() error {
	if e.Errno == 0 {
		return nil
	}
	return e.Errno
}

// Message is a D-Bus message. It owns a reference to an sd_bus_message
// released by Close. Appending and reading must happen in signature order.
type Message struct {
	k native
	m sd.Message
}

// Close releases the message. Every later call on m, including Close,
// returns [systemd.ErrClosed].
func (m *Message) Close() error {
	h, err := m.handle()
	if err != nil {
		return err
	}
	m.m = nil
	m.k.messageUnref(h)
	return nil
}

func (m *Message) handle() (sd.Message, error) {
	if m == nil || m.m == nil {
		return nil, systemd.ErrClosed
	}
	return m.m, nil
}

// Append appends args to the message. Supported types are byte, bool,
// int16, uint16, int32, uint32, int64, uint64, float64, string,
// [ObjectPath], [dbus.Signature], [UnixFD] and []string. An array left
// partially appended by a failing element is closed before returning; after
// an error reported by sd-bus the message cannot be appended to further.
func (m *Message) Append(args ...any) error {
	h, err := m.handle()
	if err != nil {
		return err
	}
	for _, arg := range args {
		if err = m.append(h, arg); err != nil {
			return err
		}
	}
	return nil
}

func (m *Message) append(h sd.Message, arg any) error {
	var r int32
	switch v := arg.(type) {
	case byte:
		r = m.k.appendBasic(h, 'y', ptr(&v))
	case bool:
		var b int32
		if v {
			b = 1
		}
		r = m.k.appendBasic(h, 'b', ptr(&b))
	case int16:
		r = m.k.appendBasic(h, 'n', ptr(&v))
	case uint16:
		r = m.k.appendBasic(h, 'q', ptr(&v))
	case int32:
		r = m.k.appendBasic(h, 'i', ptr(&v))
	case uint32:
		r = m.k.appendBasic(h, 'u', ptr(&v))
	case int64:
		r = m.k.appendBasic(h, 'x', ptr(&v))
	case uint64:
		r = m.k.appendBasic(h, 't', ptr(&v))
	case float64:
		r = m.k.appendBasic(h, 'd', ptr(&v))
	case UnixFD:
		r = m.k.appendBasic(h, 'h', ptr(&v))

	case string:
		return m.appendString(h, 's', v)
	case ObjectPath:
		return m.appendString(h, 'o', string(v))
	case dbus.Signature:
		return m.appendString(h, 'g', v.String())

	case []string:
		if err := systemd.Check("sd_bus_message_open_container", m.k.openContainer(h, 'a', "s")); err != nil {
			return err
		}
		for _, s := range v {
			if err := m.appendString(h, 's', s); err != nil {
				m.k.closeContainer(h)
				return err
			}
		}
		return systemd.Check("sd_bus_message_close_container", m.k.closeContainer(h))

	default:
		return &TypeError{arg}
	}
	return systemd.Check("sd_bus_message_append_basic", r)
}

func (m *Message) appendString(h sd.Message, typ byte, s string) error {
	const op = "sd_bus_message_append_basic"
	if err := systemd.CheckString(op, s); err != nil {
		return err
	}
	b := append([]byte(s), 0)
	return systemd.Check(op, m.k.appendBasic(h, typ, unsafe.Pointer(&b[0])))
}

// Read reads values into ptrs. Every element of ptrs must be a pointer to
// one of the types supported by [Message.Append]. Reading past the end of
// the message returns [io.ErrUnexpectedEOF]. An array failing partway is
// exited, so reading continues after it.
func (m *Message) Read(ptrs ...any) error {
	h, err := m.handle()
	if err != nil {
		return err
	}
	for _, p := range ptrs {
		if err = m.read(h, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *Message) read(h sd.Message, p any) error {
	switch v := p.(type) {
	case *byte:
		return readFixed(m.k, h, 'y', v)
	case *bool:
		var b int32
		if err := readFixed(m.k, h, 'b', &b); err != nil {
			return err
		}
		*v = b != 0
		return nil
	case *int16:
		return readFixed(m.k, h, 'n', v)
	case *uint16:
		return readFixed(m.k, h, 'q', v)
	case *int32:
		return readFixed(m.k, h, 'i', v)
	case *uint32:
		return readFixed(m.k, h, 'u', v)
	case *int64:
		return readFixed(m.k, h, 'x', v)
	case *uint64:
		return readFixed(m.k, h, 't', v)
	case *float64:
		return readFixed(m.k, h, 'd', v)
	case *UnixFD:
		return readFixed(m.k, h, 'h', v)

	case *string:
		s, ok, err := readString(m.k, h, 's')
		if err == nil && !ok {
			err = io.ErrUnexpectedEOF
		}
		*v = s
		return err
	case *ObjectPath:
		s, ok, err := readString(m.k, h, 'o')
		if err == nil && !ok {
			err = io.ErrUnexpectedEOF
		}
		*v = ObjectPath(s)
		return err
	case *dbus.Signature:
		s, ok, err := readString(m.k, h, 'g')
		if err == nil && !ok {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
		*v, err = dbus.ParseSignature(s)
		return err

	case *[]string:
		if ok, err := systemd.Bool("sd_bus_message_enter_container", m.k.enterContainer(h, 'a', "s")); err != nil {
			return err
		} else if !ok {
			return io.ErrUnexpectedEOF
		}
		var a []string
		for {
			s, ok, err := readString(m.k, h, 's')
			if err != nil {
				m.k.exitContainer(h)
				return err
			}
			if !ok {
				break
			}
			a = append(a, s)
		}
		*v = a
		return systemd.Check("sd_bus_message_exit_container", m.k.exitContainer(h))

	default:
		return &TypeError{p}
	}
}

// readFixed reads a fixed size value of type typ into p.
func readFixed[T any](k native, h sd.Message, typ byte, p *T) error {
	if ok, err := systemd.Bool("sd_bus_message_read_basic", k.readBasic(h, typ, ptr(p))); err != nil {
		return err
	} else if !ok {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// readString reads and copies a string of type typ. It returns false at the
// end of the enclosing container.
func readString(k native, h sd.Message, typ byte) (string, bool, error) {
	const op = "sd_bus_message_read_basic"
	var p sd.Str
	if ok, err := systemd.Bool(op, k.readBasic(h, typ, ptr(&p))); err != nil || !ok {
		return "", false, err
	}
	s, err := systemd.String(op, p.Bytes())
	return s, err == nil, err
}

// PeekType returns the type of the next value and, for containers, the
// signature of its contents. It returns [io.EOF] at the end of the message.
func (m *Message) PeekType() (byte, string, error) {
	const op = "sd_bus_message_peek_type"
	h, err := m.handle()
	if err != nil {
		return 0, "", err
	}
	typ, contents, r := m.k.peekType(h)
	if ok, err := systemd.Bool(op, r); err != nil {
		return 0, "", err
	} else if !ok {
		return 0, "", io.EOF
	}
	if contents == nil {
		return typ, "", nil
	}
	s, err := systemd.String(op, contents.Bytes())
	return typ, s, err
}

// Type returns the type of the message.
func (m *Message) Type() (MessageType, error) {
	h, err := m.handle()
	if err != nil {
		return 0, err
	}
	typ, r := m.k.getType(h)
	return MessageType(typ), systemd.Check("sd_bus_message_get_type", r)
}

// header returns a header field of the message, or the zero value if it is not set.
func (m *Message) header(op string, f func(k native, m sd.Message) sd.Str) (string, error) {
	h, err := m.handle()
	if err != nil {
		return "", err
	}
	p := f(m.k, h)
	if p == nil {
		return "", nil
	}
	return systemd.String(op, p.Bytes())
}

// Path returns the object path of the message.
func (m *Message) Path() (ObjectPath, error) {
	s, err := m.header("sd_bus_message_get_path", native.getPath)
	return ObjectPath(s), err
}

// Interface returns the interface of the message.
func (m *Message) Interface() (InterfaceName, error) {
	s, err := m.header("sd_bus_message_get_interface", native.getInterface)
	return InterfaceName(s), err
}

// Member returns the method or signal name of the message.
func (m *Message) Member() (MemberName, error) {
	s, err := m.header("sd_bus_message_get_member", native.getMember)
	return MemberName(s), err
}

// Sender returns the unique name of the sender of the message.
func (m *Message) Sender() (BusName, error) {
	s, err := m.header("sd_bus_message_get_sender", native.getSender)
	return BusName(s), err
}

// Destination returns the destination of the message.
func (m *Message) Destination() (BusName, error) {
	s, err := m.header("sd_bus_message_get_destination", native.getDestination)
	return BusName(s), err
}

// Signature returns the complete signature of the message body.
func (m *Message) Signature() (dbus.Signature, error) {
	s, err := m.header("sd_bus_message_get_signature", func(k native, m sd.Message) sd.Str {
		return k.getSignature(m, true)
	})
	if err != nil {
		return dbus.Signature{}, err
	}
	return dbus.ParseSignature(s)
}

// Monotonic returns the CLOCK_MONOTONIC timestamp of a received message.
// The timestamp is only present if requested on the receiving bus.
func (m *Message) Monotonic() (time.Duration, error) {
	h, err := m.handle()
	if err != nil {
		return 0, err
	}
	v, r := m.k.getMonotonicUsec(h)
	if err = systemd.Check("sd_bus_message_get_monotonic_usec", r); err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Microsecond, nil
}

// Realtime returns the CLOCK_REALTIME timestamp of a received message.
func (m *Message) Realtime() (time.Time, error) {
	h, err := m.handle()
	if err != nil {
		return time.Time{}, err
	}
	v, r := m.k.getRealtimeUsec(h)
	if err = systemd.Check("sd_bus_message_get_realtime_usec", r); err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(int64(v)), nil
}

// Seqnum returns the sequence number of a received message.
func (m *Message) Seqnum() (uint64, error) {
	h, err := m.handle()
	if err != nil {
		return 0, err
	}
	v, r := m.k.getSeqnum(h)
	if err = systemd.Check("sd_bus_message_get_seqnum", r); err != nil {
		return 0, err
	}
	return v, nil
}

// SetExpectReply sets whether a method call expects a reply.
func (m *Message) SetExpectReply(b bool) error {
	h, err := m.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_bus_message_set_expect_reply", m.k.setExpectReply(h, b))
}

// SetAutoStart sets whether the destination may be activated to receive the message.
func (m *Message) SetAutoStart(b bool) error {
	h, err := m.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_bus_message_set_auto_start", m.k.setAutoStart(h, b))
}

// SetDestination sets the destination of a message not yet sealed.
func (m *Message) SetDestination(destination BusName) error {
	const op = "sd_bus_message_set_destination"
	h, err := m.handle()
	if err != nil {
		return err
	}
	if err = systemd.CheckString(op, string(destination)); err != nil {
		return err
	}
	return systemd.Check(op, m.k.setDestination(h, string(destination)))
}

// IsEmpty returns whether the message has an empty body.
func (m *Message) IsEmpty() (bool, error) {
	h, err := m.handle()
	if err != nil {
		return false, err
	}
	return systemd.Bool("sd_bus_message_is_empty", m.k.isEmpty(h))
}

// Send sends the message on the bus it was created on and returns its cookie.
func (m *Message) Send() (uint64, error) {
	h, err := m.handle()
	if err != nil {
		return 0, err
	}
	cookie, r := m.k.send(nil, h)
	return cookie, systemd.Check("sd_bus_send", r)
}

// SendNoReply is like Send but marks a method call as not expecting a reply.
func (m *Message) SendNoReply() (uint64, error) {
	if err := m.SetExpectReply(false); err != nil {
		return 0, err
	}
	return m.Send()
}

// SendTo is like Send but overrides the destination of the message.
func (m *Message) SendTo(destination BusName) (uint64, error) {
	const op = "sd_bus_send_to"
	h, err := m.handle()
	if err != nil {
		return 0, err
	}
	if err = systemd.CheckString(op, string(destination)); err != nil {
		return 0, err
	}
	cookie, r := m.k.sendTo(nil, h, string(destination))
	return cookie, systemd.Check(op, r)
}

// Call sends a method call message and waits for its reply. A zero timeout
// uses the default of sd-bus, a negative timeout waits indefinitely. An error
// reply is returned as [*Error].
func (m *Message) Call(timeout time.Duration) (*Message, error) {
	const op = "sd_bus_call"
	h, err := m.handle()
	if err != nil {
		return nil, err
	}

	reply, e, r := m.k.call(nil, h, usec(timeout))
	if e.IsSet() {
		defer m.k.errorFree(&e)
		return nil, newError(m.k, op, &e)
	}
	return newMessage(m.k, op, reply, r)
}

// newError copies e into an [*Error].
func newError(k native, op string, e *sd.BusError) error {
	name, err := systemd.String(op, e.Name.Bytes())
	if err != nil {
		return err
	}
	var desc string
	if e.Message != nil {
		if desc, err = systemd.String(op, e.Message.Bytes()); err != nil {
			return err
		}
	}
	return &Error{Name: name, Description: desc, Errno: syscall.Errno(k.errorGetErrno(e))}
}

// NewMethodReturn creates a reply to a method call message.
func (m *Message) NewMethodReturn() (*Message, error) {
	h, err := m.handle()
	if err != nil {
		return nil, err
	}
	reply, r := m.k.newMethodReturn(h)
	return newMessage(m.k, "sd_bus_message_new_method_return", reply, r)
}

// NewMethodError creates an error reply to a method call message. The
// Errno field of e is ignored and a missing name fails with EINVAL.
func (m *Message) NewMethodError(e *Error) (*Message, error) {
	const op = "sd_bus_message_new_method_error"
	h, err := m.handle()
	if err != nil {
		return nil, err
	}
	if e == nil || e.Name == "" {
		return nil, &systemd.Error{Op: op, Errno: syscall.EINVAL}
	}
	if err = systemd.CheckString(op, e.Name, e.Description); err != nil {
		return nil, err
	}
	reply, r := m.k.newMethodError(h, e.Name, e.Description)
	return newMessage(m.k, op, reply, r)
}
