//go:build !systemd_nobus

package bus

import (
	"unsafe"

	"git.gensokyo.uk/security/systemd/internal/sd"
)

// native provides methods for every libsystemd function used by this package.
// The [direct] implementation calls libsystemd, tests substitute a stub.
type native interface {
	open() (sd.Bus, int32)
	openUser() (sd.Bus, int32)
	openSystem() (sd.Bus, int32)
	openSystemRemote(host string) (sd.Bus, int32)
	openSystemMachine(machine string) (sd.Bus, int32)
	flushCloseUnref(b sd.Bus)

	getUniqueName(b sd.Bus) (sd.Str, int32)
	getBusID(b sd.Bus) (sd.ID128, int32)
	getFd(b sd.Bus) int32
	process(b sd.Bus) (sd.Message, int32)
	wait(b sd.Bus, usec uint64) int32
	getEvents(b sd.Bus) int32
	getTimeout(b sd.Bus) (uint64, int32)
	flush(b sd.Bus) int32
	requestName(b sd.Bus, name string, flags uint64) int32
	releaseName(b sd.Bus, name string) int32

	newMethodCall(b sd.Bus, destination, path, iface, member string) (sd.Message, int32)
	newSignal(b sd.Bus, path, iface, member string) (sd.Message, int32)
	newMethodReturn(call sd.Message) (sd.Message, int32)
	newMethodError(call sd.Message, name, message string) (sd.Message, int32)
	messageUnref(m sd.Message)

	setExpectReply(m sd.Message, b bool) int32
	setAutoStart(m sd.Message, b bool) int32
	setDestination(m sd.Message, destination string) int32

	appendBasic(m sd.Message, typ byte, p unsafe.Pointer) int32
	openContainer(m sd.Message, typ byte, contents string) int32
	closeContainer(m sd.Message) int32
	enterContainer(m sd.Message, typ byte, contents string) int32
	exitContainer(m sd.Message) int32
	readBasic(m sd.Message, typ byte, p unsafe.Pointer) int32
	peekType(m sd.Message) (byte, sd.Str, int32)

	getType(m sd.Message) (uint8, int32)
	getPath(m sd.Message) sd.Str
	getInterface(m sd.Message) sd.Str
	getMember(m sd.Message) sd.Str
	getSender(m sd.Message) sd.Str
	getDestination(m sd.Message) sd.Str
	getSignature(m sd.Message, complete bool) sd.Str
	isEmpty(m sd.Message) int32
	getMonotonicUsec(m sd.Message) (uint64, int32)
	getRealtimeUsec(m sd.Message) (uint64, int32)
	getSeqnum(m sd.Message) (uint64, int32)

	send(b sd.Bus, m sd.Message) (uint64, int32)
	sendTo(b sd.Bus, m sd.Message, destination string) (uint64, int32)
	call(b sd.Bus, m sd.Message, usec uint64) (sd.Message, sd.BusError, int32)
	errorFree(e *sd.BusError)
	errorGetErrno(e *sd.BusError) int32
}

// direct implements [native] by calling libsystemd.
type direct struct{}

func (direct) open() (sd.Bus, int32)       { return sd.BusOpen() }
func (direct) openUser() (sd.Bus, int32)   { return sd.BusOpenUser() }
func (direct) openSystem() (sd.Bus, int32) { return sd.BusOpenSystem() }
func (direct) openSystemRemote(host string) (sd.Bus, int32) {
	return sd.BusOpenSystemRemote(host)
}
func (direct) openSystemMachine(machine string) (sd.Bus, int32) {
	return sd.BusOpenSystemMachine(machine)
}
func (direct) flushCloseUnref(b sd.Bus) { sd.BusFlushCloseUnref(b) }

func (direct) getUniqueName(b sd.Bus) (sd.Str, int32)  { return sd.BusGetUniqueName(b) }
func (direct) getBusID(b sd.Bus) (sd.ID128, int32)     { return sd.BusGetBusID(b) }
func (direct) getFd(b sd.Bus) int32                    { return sd.BusGetFd(b) }
func (direct) process(b sd.Bus) (sd.Message, int32)    { return sd.BusProcess(b) }
func (direct) wait(b sd.Bus, usec uint64) int32        { return sd.BusWait(b, usec) }
func (direct) flush(b sd.Bus) int32                    { return sd.BusFlush(b) }
func (direct) getEvents(b sd.Bus) int32                { return sd.BusGetEvents(b) }
func (direct) getTimeout(b sd.Bus) (uint64, int32)     { return sd.BusGetTimeout(b) }
func (direct) releaseName(b sd.Bus, name string) int32 { return sd.BusReleaseName(b, name) }
func (direct) requestName(b sd.Bus, name string, flags uint64) int32 {
	return sd.BusRequestName(b, name, flags)
}

func (direct) newMethodCall(b sd.Bus, destination, path, iface, member string) (sd.Message, int32) {
	return sd.BusMessageNewMethodCall(b, destination, path, iface, member)
}
func (direct) newSignal(b sd.Bus, path, iface, member string) (sd.Message, int32) {
	return sd.BusMessageNewSignal(b, path, iface, member)
}
func (direct) newMethodReturn(call sd.Message) (sd.Message, int32) {
	return sd.BusMessageNewMethodReturn(call)
}
func (direct) newMethodError(call sd.Message, name, message string) (sd.Message, int32) {
	return sd.BusMessageNewMethodError(call, name, message)
}
func (direct) messageUnref(m sd.Message) { sd.BusMessageUnref(m) }

func (direct) setExpectReply(m sd.Message, b bool) int32 { return sd.BusMessageSetExpectReply(m, b) }
func (direct) setAutoStart(m sd.Message, b bool) int32   { return sd.BusMessageSetAutoStart(m, b) }
func (direct) setDestination(m sd.Message, destination string) int32 {
	return sd.BusMessageSetDestination(m, destination)
}

func (direct) appendBasic(m sd.Message, typ byte, p unsafe.Pointer) int32 {
	return sd.BusMessageAppendBasic(m, typ, p)
}
func (direct) openContainer(m sd.Message, typ byte, contents string) int32 {
	return sd.BusMessageOpenContainer(m, typ, contents)
}
func (direct) closeContainer(m sd.Message) int32 { return sd.BusMessageCloseContainer(m) }
func (direct) enterContainer(m sd.Message, typ byte, contents string) int32 {
	return sd.BusMessageEnterContainer(m, typ, contents)
}
func (direct) exitContainer(m sd.Message) int32 { return sd.BusMessageExitContainer(m) }
func (direct) readBasic(m sd.Message, typ byte, p unsafe.Pointer) int32 {
	return sd.BusMessageReadBasic(m, typ, p)
}
func (direct) peekType(m sd.Message) (byte, sd.Str, int32) { return sd.BusMessagePeekType(m) }

func (direct) getType(m sd.Message) (uint8, int32) { return sd.BusMessageGetType(m) }
func (direct) getPath(m sd.Message) sd.Str         { return sd.BusMessageGetPath(m) }
func (direct) getInterface(m sd.Message) sd.Str    { return sd.BusMessageGetInterface(m) }
func (direct) getMember(m sd.Message) sd.Str       { return sd.BusMessageGetMember(m) }
func (direct) getSender(m sd.Message) sd.Str       { return sd.BusMessageGetSender(m) }
func (direct) getDestination(m sd.Message) sd.Str  { return sd.BusMessageGetDestination(m) }
func (direct) isEmpty(m sd.Message) int32          { return sd.BusMessageIsEmpty(m) }
func (direct) getMonotonicUsec(m sd.Message) (uint64, int32) {
	return sd.BusMessageGetMonotonicUsec(m)
}
func (direct) getRealtimeUsec(m sd.Message) (uint64, int32) { return sd.BusMessageGetRealtimeUsec(m) }
func (direct) getSeqnum(m sd.Message) (uint64, int32)       { return sd.BusMessageGetSeqnum(m) }
func (direct) getSignature(m sd.Message, complete bool) sd.Str {
	return sd.BusMessageGetSignature(m, complete)
}

func (direct) send(b sd.Bus, m sd.Message) (uint64, int32) { return sd.BusSend(b, m) }
func (direct) sendTo(b sd.Bus, m sd.Message, destination string) (uint64, int32) {
	return sd.BusSendTo(b, m, destination)
}
func (direct) call(b sd.Bus, m sd.Message, usec uint64) (sd.Message, sd.BusError, int32) {
	return sd.BusCall(b, m, usec)
}
func (direct) errorFree(e *sd.BusError)           { sd.BusErrorFree(e) }
func (direct) errorGetErrno(e *sd.BusError) int32 { return sd.BusErrorGetErrno(e) }
