//go:build !systemd_nobus

package sd

/*
#include <stdlib.h>
#include <systemd/sd-bus.h>

static int sd_go_bus_error_need_free(const sd_bus_error *e) { return e->_need_free; }

static void sd_go_bus_error_free(const char *name, const char *message, int need_free) {
	sd_bus_error e = { name, message, need_free };
	sd_bus_error_free(&e);
}

static int sd_go_bus_error_get_errno(const char *name, const char *message) {
	sd_bus_error e = { name, message, 0 };
	return sd_bus_error_get_errno(&e);
}

static int sd_go_bus_message_new_method_error(sd_bus_message *call, sd_bus_message **m, const char *name, const char *message) {
	sd_bus_error e = { name, message, 0 };
	return sd_bus_message_new_method_error(call, m, &e);
}
*/
import "C"

import "unsafe"

// HaveBus is whether the sd-bus functions are available.
const HaveBus = true

type (
	// Bus is an sd_bus handle.
	Bus unsafe.Pointer
	// Message is an sd_bus_message handle.
	Message unsafe.Pointer
)

func (b Bus) c() *C.sd_bus             { return (*C.sd_bus)(b) }
func (m Message) c() *C.sd_bus_message { return (*C.sd_bus_message)(m) }

// BusError holds the fields of sd_bus_error. The zero value is SD_BUS_ERROR_NULL.
type BusError struct {
	Name, Message Str
	needFree      int32
}

// IsSet returns whether e holds an error.
func (e *BusError) IsSet() bool { return e.Name != nil }

// BusErrorFree calls sd_bus_error_free and resets e.
func BusErrorFree(e *BusError) {
	C.sd_go_bus_error_free((*C.char)(e.Name), (*C.char)(e.Message), C.int(e.needFree))
	*e = BusError{}
}

// BusErrorGetErrno calls sd_bus_error_get_errno.
func BusErrorGetErrno(e *BusError) int32 {
	return int32(C.sd_go_bus_error_get_errno((*C.char)(e.Name), (*C.char)(e.Message)))
}

func busOpen(f func(**C.sd_bus) C.int) (Bus, int32) {
	var b *C.sd_bus
	r := f(&b)
	return Bus(b), int32(r)
}

// BusOpen calls sd_bus_open.
func BusOpen() (Bus, int32) {
	return busOpen(func(b **C.sd_bus) C.int { return C.sd_bus_open(b) })
}

// BusOpenUser calls sd_bus_open_user.
func BusOpenUser() (Bus, int32) {
	return busOpen(func(b **C.sd_bus) C.int { return C.sd_bus_open_user(b) })
}

// BusOpenSystem calls sd_bus_open_system.
func BusOpenSystem() (Bus, int32) {
	return busOpen(func(b **C.sd_bus) C.int { return C.sd_bus_open_system(b) })
}

// BusOpenSystemRemote calls sd_bus_open_system_remote.
func BusOpenSystemRemote(host string) (Bus, int32) {
	p := cstr(host, false)
	defer freeStr(p)
	return busOpen(func(b **C.sd_bus) C.int { return C.sd_bus_open_system_remote(b, p) })
}

// BusOpenSystemMachine calls sd_bus_open_system_machine.
func BusOpenSystemMachine(machine string) (Bus, int32) {
	p := cstr(machine, false)
	defer freeStr(p)
	return busOpen(func(b **C.sd_bus) C.int { return C.sd_bus_open_system_machine(b, p) })
}

// BusFlushCloseUnref calls sd_bus_flush_close_unref.
func BusFlushCloseUnref(b Bus) { C.sd_bus_flush_close_unref(b.c()) }

// BusGetUniqueName calls sd_bus_get_unique_name. The returned string is owned by b.
func BusGetUniqueName(b Bus) (Str, int32) {
	var p *C.char
	r := C.sd_bus_get_unique_name(b.c(), &p)
	return Str(p), int32(r)
}

// BusGetBusID calls sd_bus_get_bus_id.
func BusGetBusID(b Bus) (ID128, int32) {
	var v C.sd_id128_t
	r := C.sd_bus_get_bus_id(b.c(), &v)
	return goID128(&v), int32(r)
}

// BusGetFd calls sd_bus_get_fd.
func BusGetFd(b Bus) int32 { return int32(C.sd_bus_get_fd(b.c())) }

// BusProcess calls sd_bus_process. The returned message holds a reference.
func BusProcess(b Bus) (Message, int32) {
	var m *C.sd_bus_message
	r := C.sd_bus_process(b.c(), &m)
	return Message(m), int32(r)
}

// BusWait calls sd_bus_wait.
func BusWait(b Bus, usec uint64) int32 { return int32(C.sd_bus_wait(b.c(), C.uint64_t(usec))) }

// BusGetEvents calls sd_bus_get_events.
func BusGetEvents(b Bus) int32 { return int32(C.sd_bus_get_events(b.c())) }

// BusGetTimeout calls sd_bus_get_timeout.
func BusGetTimeout(b Bus) (uint64, int32) {
	var usec C.uint64_t
	r := C.sd_bus_get_timeout(b.c(), &usec)
	return uint64(usec), int32(r)
}

// BusFlush calls sd_bus_flush.
func BusFlush(b Bus) int32 { return int32(C.sd_bus_flush(b.c())) }

// BusRequestName calls sd_bus_request_name.
func BusRequestName(b Bus, name string, flags uint64) int32 {
	p := cstr(name, false)
	defer freeStr(p)
	return int32(C.sd_bus_request_name(b.c(), p, C.uint64_t(flags)))
}

// BusReleaseName calls sd_bus_release_name.
func BusReleaseName(b Bus, name string) int32 {
	p := cstr(name, false)
	defer freeStr(p)
	return int32(C.sd_bus_release_name(b.c(), p))
}

// BusMessageNewMethodCall calls sd_bus_message_new_method_call.
// An empty destination or iface is passed as NULL.
func BusMessageNewMethodCall(b Bus, destination, path, iface, member string) (Message, int32) {
	d, p, i, m := cstr(destination, true), cstr(path, false), cstr(iface, true), cstr(member, false)
	defer func() { freeStr(d); freeStr(p); freeStr(i); freeStr(m) }()

	var msg *C.sd_bus_message
	r := C.sd_bus_message_new_method_call(b.c(), &msg, d, p, i, m)
	return Message(msg), int32(r)
}

// BusMessageNewSignal calls sd_bus_message_new_signal.
func BusMessageNewSignal(b Bus, path, iface, member string) (Message, int32) {
	p, i, m := cstr(path, false), cstr(iface, false), cstr(member, false)
	defer func() { freeStr(p); freeStr(i); freeStr(m) }()

	var msg *C.sd_bus_message
	r := C.sd_bus_message_new_signal(b.c(), &msg, p, i, m)
	return Message(msg), int32(r)
}

// BusMessageNewMethodReturn calls sd_bus_message_new_method_return.
func BusMessageNewMethodReturn(call Message) (Message, int32) {
	var msg *C.sd_bus_message
	r := C.sd_bus_message_new_method_return(call.c(), &msg)
	return Message(msg), int32(r)
}

// BusMessageNewMethodError calls sd_bus_message_new_method_error with an
// sd_bus_error holding name and message. An empty message is passed as NULL.
func BusMessageNewMethodError(call Message, name, message string) (Message, int32) {
	n, d := cstr(name, false), cstr(message, true)
	defer func() { freeStr(n); freeStr(d) }()

	var msg *C.sd_bus_message
	r := C.sd_go_bus_message_new_method_error(call.c(), &msg, n, d)
	return Message(msg), int32(r)
}

// BusMessageSetExpectReply calls sd_bus_message_set_expect_reply.
func BusMessageSetExpectReply(m Message, b bool) int32 {
	return int32(C.sd_bus_message_set_expect_reply(m.c(), cbool(b)))
}

// BusMessageSetAutoStart calls sd_bus_message_set_auto_start.
func BusMessageSetAutoStart(m Message, b bool) int32 {
	return int32(C.sd_bus_message_set_auto_start(m.c(), cbool(b)))
}

// BusMessageSetDestination calls sd_bus_message_set_destination.
func BusMessageSetDestination(m Message, destination string) int32 {
	p := cstr(destination, false)
	defer freeStr(p)
	return int32(C.sd_bus_message_set_destination(m.c(), p))
}

// BusMessageGetMonotonicUsec calls sd_bus_message_get_monotonic_usec.
func BusMessageGetMonotonicUsec(m Message) (uint64, int32) {
	var usec C.uint64_t
	r := C.sd_bus_message_get_monotonic_usec(m.c(), &usec)
	return uint64(usec), int32(r)
}

// BusMessageGetRealtimeUsec calls sd_bus_message_get_realtime_usec.
func BusMessageGetRealtimeUsec(m Message) (uint64, int32) {
	var usec C.uint64_t
	r := C.sd_bus_message_get_realtime_usec(m.c(), &usec)
	return uint64(usec), int32(r)
}

// BusMessageGetSeqnum calls sd_bus_message_get_seqnum.
func BusMessageGetSeqnum(m Message) (uint64, int32) {
	var seqnum C.uint64_t
	r := C.sd_bus_message_get_seqnum(m.c(), &seqnum)
	return uint64(seqnum), int32(r)
}

// BusMessageUnref calls sd_bus_message_unref.
func BusMessageUnref(m Message) { C.sd_bus_message_unref(m.c()) }

// BusMessageAppendBasic calls sd_bus_message_append_basic. For string types
// p points to the first byte of a NUL-terminated string.
func BusMessageAppendBasic(m Message, typ byte, p unsafe.Pointer) int32 {
	return int32(C.sd_bus_message_append_basic(m.c(), C.char(typ), p))
}

// BusMessageOpenContainer calls sd_bus_message_open_container.
func BusMessageOpenContainer(m Message, typ byte, contents string) int32 {
	p := cstr(contents, false)
	defer freeStr(p)
	return int32(C.sd_bus_message_open_container(m.c(), C.char(typ), p))
}

// BusMessageCloseContainer calls sd_bus_message_close_container.
func BusMessageCloseContainer(m Message) int32 {
	return int32(C.sd_bus_message_close_container(m.c()))
}

// BusMessageEnterContainer calls sd_bus_message_enter_container.
// An empty contents is passed as NULL.
func BusMessageEnterContainer(m Message, typ byte, contents string) int32 {
	p := cstr(contents, true)
	defer freeStr(p)
	return int32(C.sd_bus_message_enter_container(m.c(), C.char(typ), p))
}

// BusMessageExitContainer calls sd_bus_message_exit_container.
func BusMessageExitContainer(m Message) int32 {
	return int32(C.sd_bus_message_exit_container(m.c()))
}

// BusMessageReadBasic calls sd_bus_message_read_basic. For string types the
// value written to p is a [Str] owned by m.
func BusMessageReadBasic(m Message, typ byte, p unsafe.Pointer) int32 {
	return int32(C.sd_bus_message_read_basic(m.c(), C.char(typ), p))
}

// BusMessagePeekType calls sd_bus_message_peek_type. The returned contents is owned by m.
func BusMessagePeekType(m Message) (byte, Str, int32) {
	var (
		typ      C.char
		contents *C.char
	)
	r := C.sd_bus_message_peek_type(m.c(), &typ, &contents)
	return byte(typ), Str(contents), int32(r)
}

// BusMessageGetType calls sd_bus_message_get_type.
func BusMessageGetType(m Message) (uint8, int32) {
	var typ C.uint8_t
	r := C.sd_bus_message_get_type(m.c(), &typ)
	return uint8(typ), int32(r)
}

// BusMessageGetPath calls sd_bus_message_get_path.
func BusMessageGetPath(m Message) Str { return Str(C.sd_bus_message_get_path(m.c())) }

// BusMessageGetInterface calls sd_bus_message_get_interface.
func BusMessageGetInterface(m Message) Str { return Str(C.sd_bus_message_get_interface(m.c())) }

// BusMessageGetMember calls sd_bus_message_get_member.
func BusMessageGetMember(m Message) Str { return Str(C.sd_bus_message_get_member(m.c())) }

// BusMessageGetSender calls sd_bus_message_get_sender.
func BusMessageGetSender(m Message) Str { return Str(C.sd_bus_message_get_sender(m.c())) }

// BusMessageGetDestination calls sd_bus_message_get_destination.
func BusMessageGetDestination(m Message) Str {
	return Str(C.sd_bus_message_get_destination(m.c()))
}

// BusMessageGetSignature calls sd_bus_message_get_signature.
func BusMessageGetSignature(m Message, complete bool) Str {
	return Str(C.sd_bus_message_get_signature(m.c(), cbool(complete)))
}

// BusMessageIsEmpty calls sd_bus_message_is_empty.
func BusMessageIsEmpty(m Message) int32 { return int32(C.sd_bus_message_is_empty(m.c())) }

// BusSend calls sd_bus_send. A nil b sends on the bus m is attached to.
func BusSend(b Bus, m Message) (uint64, int32) {
	var cookie C.uint64_t
	r := C.sd_bus_send(b.c(), m.c(), &cookie)
	return uint64(cookie), int32(r)
}

// BusSendTo calls sd_bus_send_to.
func BusSendTo(b Bus, m Message, destination string) (uint64, int32) {
	p := cstr(destination, false)
	defer freeStr(p)

	var cookie C.uint64_t
	r := C.sd_bus_send_to(b.c(), m.c(), p, &cookie)
	return uint64(cookie), int32(r)
}

// BusCall calls sd_bus_call. A nil b calls on the bus m is attached to.
// A set e must be released with [BusErrorFree].
func BusCall(b Bus, m Message, usec uint64) (reply Message, e BusError, r int32) {
	var (
		err C.sd_bus_error
		msg *C.sd_bus_message
	)
	r = int32(C.sd_bus_call(b.c(), m.c(), C.uint64_t(usec), &err, &msg))
	e = BusError{Str(err.name), Str(err.message), int32(C.sd_go_bus_error_need_free(&err))}
	reply = Message(msg)
	return
}
