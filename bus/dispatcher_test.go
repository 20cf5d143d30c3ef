//go:build !systemd_nobus

package bus

import (
	"testing"
	"unsafe"

	"git.gensokyo.uk/security/systemd/internal/sd"
	"git.gensokyo.uk/security/systemd/internal/stub"
)

// out holds the output parameters and result of a native call.
type out struct {
	v any
	r int32
}

// peek is the output of sd_bus_message_peek_type.
type peek struct {
	typ      byte
	contents sd.Str
}

// callOut is the output of sd_bus_call.
type callOut struct {
	reply sd.Message
	e     sd.BusError
}

var (
	// fakeBus, fakeMessage and fakeReply are never dereferenced.
	fakeBus     = sd.Bus(unsafe.Pointer(new(uintptr)))
	fakeMessage = sd.Message(unsafe.Pointer(new(uintptr)))
	fakeReply   = sd.Message(unsafe.Pointer(new(uintptr)))
)

// cstr returns a NUL-terminated copy of s in Go memory.
func cstr(s string) sd.Str {
	b := append([]byte(s), 0)
	return sd.Str(unsafe.Pointer(&b[0]))
}

// kstub implements [native] with a [stub.Stub].
type kstub struct{ *stub.Stub }

func newStub(t *testing.T, calls ...stub.Call) kstub { return kstub{stub.New(t, calls...)} }

// call returns a [stub.Call] with args.
func call(name string, ret any, args ...any) stub.Call {
	var a stub.ExpectArgs
	copy(a[:], args)
	return stub.Call{Name: name, Args: a, Ret: ret}
}

func (k kstub) bus(name string, b sd.Bus) *stub.Call {
	k.Helper()
	expect := k.Expects(name)
	if b != fakeBus {
		k.Errorf("%s: bus = %p, want %p", name, b, fakeBus)
	}
	return expect
}

func (k kstub) message(name string, m sd.Message) *stub.Call {
	k.Helper()
	expect := k.Expects(name)
	if m != fakeMessage && m != fakeReply {
		k.Errorf("%s: message = %p", name, m)
	}
	stub.CheckArg(k.Stub, "message", m, 4)
	return expect
}

func openOut(expect *stub.Call) (sd.Bus, int32) {
	o := expect.Ret.(out)
	b, _ := o.v.(sd.Bus)
	return b, o.r
}

func msgOut(expect *stub.Call) (sd.Message, int32) {
	o := expect.Ret.(out)
	m, _ := o.v.(sd.Message)
	return m, o.r
}

func u64Out(expect *stub.Call) (uint64, int32) {
	o := expect.Ret.(out)
	v, _ := o.v.(uint64)
	return v, o.r
}

func (k kstub) open() (sd.Bus, int32)       { k.Helper(); return openOut(k.Expects("sd_bus_open")) }
func (k kstub) openUser() (sd.Bus, int32)   { k.Helper(); return openOut(k.Expects("sd_bus_open_user")) }
func (k kstub) openSystem() (sd.Bus, int32) { k.Helper(); return openOut(k.Expects("sd_bus_open_system")) }
func (k kstub) openSystemRemote(host string) (sd.Bus, int32) {
	k.Helper()
	expect := k.Expects("sd_bus_open_system_remote")
	stub.CheckArg(k.Stub, "host", host, 0)
	return openOut(expect)
}
func (k kstub) openSystemMachine(machine string) (sd.Bus, int32) {
	k.Helper()
	expect := k.Expects("sd_bus_open_system_machine")
	stub.CheckArg(k.Stub, "machine", machine, 0)
	return openOut(expect)
}
func (k kstub) flushCloseUnref(b sd.Bus) { k.Helper(); k.bus("sd_bus_flush_close_unref", b) }

func (k kstub) getUniqueName(b sd.Bus) (sd.Str, int32) {
	k.Helper()
	o := k.bus("sd_bus_get_unique_name", b).Ret.(out)
	p, _ := o.v.(sd.Str)
	return p, o.r
}
func (k kstub) getBusID(b sd.Bus) (sd.ID128, int32) {
	k.Helper()
	o := k.bus("sd_bus_get_bus_id", b).Ret.(out)
	id, _ := o.v.(sd.ID128)
	return id, o.r
}
func (k kstub) getFd(b sd.Bus) int32 { k.Helper(); return k.bus("sd_bus_get_fd", b).Ret.(int32) }
func (k kstub) process(b sd.Bus) (sd.Message, int32) {
	k.Helper()
	return msgOut(k.bus("sd_bus_process", b))
}
func (k kstub) wait(b sd.Bus, usec uint64) int32 {
	k.Helper()
	expect := k.bus("sd_bus_wait", b)
	stub.CheckArg(k.Stub, "usec", usec, 0)
	return expect.Ret.(int32)
}
func (k kstub) flush(b sd.Bus) int32 { k.Helper(); return k.bus("sd_bus_flush", b).Ret.(int32) }
func (k kstub) getEvents(b sd.Bus) int32 {
	k.Helper()
	return k.bus("sd_bus_get_events", b).Ret.(int32)
}
func (k kstub) getTimeout(b sd.Bus) (uint64, int32) {
	k.Helper()
	return u64Out(k.bus("sd_bus_get_timeout", b))
}
func (k kstub) requestName(b sd.Bus, name string, flags uint64) int32 {
	k.Helper()
	expect := k.bus("sd_bus_request_name", b)
	stub.CheckArg(k.Stub, "name", name, 0)
	stub.CheckArg(k.Stub, "flags", flags, 1)
	return expect.Ret.(int32)
}
func (k kstub) releaseName(b sd.Bus, name string) int32 {
	k.Helper()
	expect := k.bus("sd_bus_release_name", b)
	stub.CheckArg(k.Stub, "name", name, 0)
	return expect.Ret.(int32)
}

func (k kstub) newMethodCall(b sd.Bus, destination, path, iface, member string) (sd.Message, int32) {
	k.Helper()
	expect := k.bus("sd_bus_message_new_method_call", b)
	stub.CheckArg(k.Stub, "destination", destination, 0)
	stub.CheckArg(k.Stub, "path", path, 1)
	stub.CheckArg(k.Stub, "iface", iface, 2)
	stub.CheckArg(k.Stub, "member", member, 3)
	return msgOut(expect)
}
func (k kstub) newSignal(b sd.Bus, path, iface, member string) (sd.Message, int32) {
	k.Helper()
	expect := k.bus("sd_bus_message_new_signal", b)
	stub.CheckArg(k.Stub, "path", path, 0)
	stub.CheckArg(k.Stub, "iface", iface, 1)
	stub.CheckArg(k.Stub, "member", member, 2)
	return msgOut(expect)
}
func (k kstub) newMethodReturn(m sd.Message) (sd.Message, int32) {
	k.Helper()
	return msgOut(k.message("sd_bus_message_new_method_return", m))
}
func (k kstub) newMethodError(m sd.Message, name, message string) (sd.Message, int32) {
	k.Helper()
	expect := k.message("sd_bus_message_new_method_error", m)
	stub.CheckArg(k.Stub, "name", name, 0)
	stub.CheckArg(k.Stub, "message", message, 1)
	return msgOut(expect)
}
func (k kstub) messageUnref(m sd.Message) { k.Helper(); k.message("sd_bus_message_unref", m) }

func (k kstub) setExpectReply(m sd.Message, b bool) int32 {
	k.Helper()
	expect := k.message("sd_bus_message_set_expect_reply", m)
	stub.CheckArg(k.Stub, "b", b, 0)
	return expect.Ret.(int32)
}
func (k kstub) setAutoStart(m sd.Message, b bool) int32 {
	k.Helper()
	expect := k.message("sd_bus_message_set_auto_start", m)
	stub.CheckArg(k.Stub, "b", b, 0)
	return expect.Ret.(int32)
}
func (k kstub) setDestination(m sd.Message, destination string) int32 {
	k.Helper()
	expect := k.message("sd_bus_message_set_destination", m)
	stub.CheckArg(k.Stub, "destination", destination, 0)
	return expect.Ret.(int32)
}

// decode returns the value of type typ at p.
func decode(typ byte, p unsafe.Pointer) any {
	switch typ {
	case 'y':
		return *(*byte)(p)
	case 'b', 'i', 'h':
		return *(*int32)(p)
	case 'n':
		return *(*int16)(p)
	case 'q':
		return *(*uint16)(p)
	case 'u':
		return *(*uint32)(p)
	case 'x':
		return *(*int64)(p)
	case 't':
		return *(*uint64)(p)
	case 'd':
		return *(*float64)(p)
	case 's', 'o', 'g':
		return string(sd.Str(p).Bytes())
	default:
		panic("invalid type " + string(typ))
	}
}

func (k kstub) appendBasic(m sd.Message, typ byte, p unsafe.Pointer) int32 {
	k.Helper()
	expect := k.message("sd_bus_message_append_basic", m)
	stub.CheckArg(k.Stub, "typ", typ, 0)
	stub.CheckArgReflect(k.Stub, "value", decode(typ, p), 1)
	return expect.Ret.(int32)
}
func (k kstub) openContainer(m sd.Message, typ byte, contents string) int32 {
	k.Helper()
	expect := k.message("sd_bus_message_open_container", m)
	stub.CheckArg(k.Stub, "typ", typ, 0)
	stub.CheckArg(k.Stub, "contents", contents, 1)
	return expect.Ret.(int32)
}
func (k kstub) closeContainer(m sd.Message) int32 {
	k.Helper()
	return k.message("sd_bus_message_close_container", m).Ret.(int32)
}
func (k kstub) enterContainer(m sd.Message, typ byte, contents string) int32 {
	k.Helper()
	expect := k.message("sd_bus_message_enter_container", m)
	stub.CheckArg(k.Stub, "typ", typ, 0)
	stub.CheckArg(k.Stub, "contents", contents, 1)
	return expect.Ret.(int32)
}
func (k kstub) exitContainer(m sd.Message) int32 {
	k.Helper()
	return k.message("sd_bus_message_exit_container", m).Ret.(int32)
}

// readBasic writes the value held by the expected call to p.
func (k kstub) readBasic(m sd.Message, typ byte, p unsafe.Pointer) int32 {
	k.Helper()
	expect := k.message("sd_bus_message_read_basic", m)
	stub.CheckArg(k.Stub, "typ", typ, 0)
	o := expect.Ret.(out)
	switch v := o.v.(type) {
	case nil:
	case byte:
		*(*byte)(p) = v
	case int32:
		*(*int32)(p) = v
	case int16:
		*(*int16)(p) = v
	case uint16:
		*(*uint16)(p) = v
	case uint32:
		*(*uint32)(p) = v
	case int64:
		*(*int64)(p) = v
	case uint64:
		*(*uint64)(p) = v
	case float64:
		*(*float64)(p) = v
	case sd.Str:
		*(*sd.Str)(p) = v
	default:
		panic("invalid value")
	}
	return o.r
}
func (k kstub) peekType(m sd.Message) (byte, sd.Str, int32) {
	k.Helper()
	o := k.message("sd_bus_message_peek_type", m).Ret.(out)
	v, _ := o.v.(peek)
	return v.typ, v.contents, o.r
}

func (k kstub) getType(m sd.Message) (uint8, int32) {
	k.Helper()
	o := k.message("sd_bus_message_get_type", m).Ret.(out)
	typ, _ := o.v.(uint8)
	return typ, o.r
}
func (k kstub) str(name string, m sd.Message) sd.Str {
	k.Helper()
	p, _ := k.message(name, m).Ret.(sd.Str)
	return p
}
func (k kstub) getPath(m sd.Message) sd.Str { k.Helper(); return k.str("sd_bus_message_get_path", m) }
func (k kstub) getInterface(m sd.Message) sd.Str {
	k.Helper()
	return k.str("sd_bus_message_get_interface", m)
}
func (k kstub) getMember(m sd.Message) sd.Str { k.Helper(); return k.str("sd_bus_message_get_member", m) }
func (k kstub) getSender(m sd.Message) sd.Str { k.Helper(); return k.str("sd_bus_message_get_sender", m) }
func (k kstub) getDestination(m sd.Message) sd.Str {
	k.Helper()
	return k.str("sd_bus_message_get_destination", m)
}
func (k kstub) getSignature(m sd.Message, complete bool) sd.Str {
	k.Helper()
	p := k.str("sd_bus_message_get_signature", m)
	stub.CheckArg(k.Stub, "complete", complete, 0)
	return p
}
func (k kstub) isEmpty(m sd.Message) int32 {
	k.Helper()
	return k.message("sd_bus_message_is_empty", m).Ret.(int32)
}
func (k kstub) getMonotonicUsec(m sd.Message) (uint64, int32) {
	k.Helper()
	return u64Out(k.message("sd_bus_message_get_monotonic_usec", m))
}
func (k kstub) getRealtimeUsec(m sd.Message) (uint64, int32) {
	k.Helper()
	return u64Out(k.message("sd_bus_message_get_realtime_usec", m))
}
func (k kstub) getSeqnum(m sd.Message) (uint64, int32) {
	k.Helper()
	return u64Out(k.message("sd_bus_message_get_seqnum", m))
}

func (k kstub) send(b sd.Bus, m sd.Message) (uint64, int32) {
	k.Helper()
	expect := k.message("sd_bus_send", m)
	if b != nil {
		k.Errorf("sd_bus_send: bus = %p", b)
	}
	o := expect.Ret.(out)
	cookie, _ := o.v.(uint64)
	return cookie, o.r
}
func (k kstub) sendTo(b sd.Bus, m sd.Message, destination string) (uint64, int32) {
	k.Helper()
	expect := k.message("sd_bus_send_to", m)
	if b != nil {
		k.Errorf("sd_bus_send_to: bus = %p", b)
	}
	stub.CheckArg(k.Stub, "destination", destination, 0)
	o := expect.Ret.(out)
	cookie, _ := o.v.(uint64)
	return cookie, o.r
}
func (k kstub) call(b sd.Bus, m sd.Message, usec uint64) (sd.Message, sd.BusError, int32) {
	k.Helper()
	expect := k.message("sd_bus_call", m)
	if b != nil {
		k.Errorf("sd_bus_call: bus = %p", b)
	}
	stub.CheckArg(k.Stub, "usec", usec, 0)
	o := expect.Ret.(out)
	v, _ := o.v.(callOut)
	return v.reply, v.e, o.r
}
func (k kstub) errorFree(e *sd.BusError) {
	k.Helper()
	k.Expects("sd_bus_error_free")
	stub.CheckArg(k.Stub, "name", e.Name, 0)
	*e = sd.BusError{}
}
func (k kstub) errorGetErrno(e *sd.BusError) int32 {
	k.Helper()
	expect := k.Expects("sd_bus_error_get_errno")
	stub.CheckArg(k.Stub, "name", e.Name, 0)
	return expect.Ret.(int32)
}

// mcall is like call but also expects the message handle m.
func mcall(name string, m sd.Message, ret any, args ...any) stub.Call {
	c := call(name, ret, args...)
	c.Args[4] = m
	return c
}

// opened sets up b as if returned by a successful open on k.
func opened(b *Bus, k native) *Bus {
	b.k, b.b = k, fakeBus
	return b
}
