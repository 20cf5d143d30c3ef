package daemon

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

// kstub implements [native] with a [stub.Stub].
type kstub struct{ *stub.Stub }

func newStub(t *testing.T, calls ...stub.Call) kstub { return kstub{stub.New(t, calls...)} }

// call returns a [stub.Call] with args.
func call(name string, ret any, args ...any) stub.Call {
	var a stub.ExpectArgs
	copy(a[:], args)
	return stub.Call{Name: name, Args: a, Ret: ret}
}

// strv returns a C array of C strings in Go memory.
func strv(s ...string) sd.StrV {
	v := make([]sd.Str, len(s)+1)
	for i := range s {
		b := append([]byte(s[i]), 0)
		v[i] = sd.Str(unsafe.Pointer(&b[0]))
	}
	return sd.StrV(unsafe.Pointer(&v[0]))
}

func (k kstub) listenFds() int32 { k.Helper(); return k.Expects("sd_listen_fds").Ret.(int32) }
func (k kstub) listenFdsWithNames() (sd.StrV, int32) {
	k.Helper()
	o := k.Expects("sd_listen_fds_with_names").Ret.(out)
	v, _ := o.v.(sd.StrV)
	return v, o.r
}
func (k kstub) free(p unsafe.Pointer) {
	k.Helper()
	k.Expects("free")
	if p == nil {
		k.Error("free: nil pointer")
	}
}

func (k kstub) notify(state string) int32 {
	k.Helper()
	expect := k.Expects("sd_notify")
	stub.CheckArg(k.Stub, "state", state, 0)
	return expect.Ret.(int32)
}
func (k kstub) pidNotify(pid int, state string) int32 {
	k.Helper()
	expect := k.Expects("sd_pid_notify")
	stub.CheckArg(k.Stub, "pid", pid, 0)
	stub.CheckArg(k.Stub, "state", state, 1)
	return expect.Ret.(int32)
}
func (k kstub) pidNotifyWithFds(pid int, state string, fds []int) int32 {
	k.Helper()
	expect := k.Expects("sd_pid_notify_with_fds")
	stub.CheckArg(k.Stub, "pid", pid, 0)
	stub.CheckArg(k.Stub, "state", state, 1)
	stub.CheckArgReflect(k.Stub, "fds", fds, 2)
	return expect.Ret.(int32)
}

func (k kstub) booted() int32 { k.Helper(); return k.Expects("sd_booted").Ret.(int32) }
func (k kstub) watchdogEnabled() (uint64, int32) {
	k.Helper()
	o := k.Expects("sd_watchdog_enabled").Ret.(out)
	usec, _ := o.v.(uint64)
	return usec, o.r
}

func (k kstub) check(name string, fd int, path string) int32 {
	k.Helper()
	expect := k.Expects(name)
	stub.CheckArg(k.Stub, "fd", fd, 0)
	stub.CheckArg(k.Stub, "path", path, 1)
	return expect.Ret.(int32)
}
func (k kstub) isFifo(fd int, path string) int32    { k.Helper(); return k.check("sd_is_fifo", fd, path) }
func (k kstub) isSpecial(fd int, path string) int32 { k.Helper(); return k.check("sd_is_special", fd, path) }
func (k kstub) isMQ(fd int, path string) int32      { k.Helper(); return k.check("sd_is_mq", fd, path) }
func (k kstub) isSocket(fd, family, typ, listening int) int32 {
	k.Helper()
	expect := k.Expects("sd_is_socket")
	stub.CheckArgReflect(k.Stub, "args", []int{fd, family, typ, listening}, 0)
	return expect.Ret.(int32)
}
func (k kstub) isSocketInet(fd, family, typ, listening int, port uint16) int32 {
	k.Helper()
	expect := k.Expects("sd_is_socket_inet")
	stub.CheckArgReflect(k.Stub, "args", []int{fd, family, typ, listening}, 0)
	stub.CheckArg(k.Stub, "port", port, 1)
	return expect.Ret.(int32)
}
func (k kstub) isSocketUnix(fd, typ, listening int, path string) int32 {
	k.Helper()
	expect := k.Expects("sd_is_socket_unix")
	stub.CheckArgReflect(k.Stub, "args", []int{fd, typ, listening}, 0)
	stub.CheckArg(k.Stub, "path", path, 1)
	return expect.Ret.(int32)
}

func (k kstub) unsetenv(key string) error {
	k.Helper()
	expect := k.Expects("unsetenv")
	stub.CheckArg(k.Stub, "key", key, 0)
	return expect.Err
}
