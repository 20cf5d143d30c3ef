package sd

/*
#include <systemd/sd-id128.h>
*/
import "C"

import "unsafe"

func id128(id ID128) (v C.sd_id128_t) {
	copy((*[16]byte)(unsafe.Pointer(&v))[:], id[:])
	return
}

func goID128(v *C.sd_id128_t) (id ID128) {
	copy(id[:], (*[16]byte)(unsafe.Pointer(v))[:])
	return
}

// ID128FromString calls sd_id128_from_string.
func ID128FromString(s string) (ID128, int32) {
	p := cstr(s, false)
	defer freeStr(p)

	var v C.sd_id128_t
	r := C.sd_id128_from_string(p, &v)
	return goID128(&v), int32(r)
}

// ID128Randomize calls sd_id128_randomize.
func ID128Randomize() (ID128, int32) {
	var v C.sd_id128_t
	r := C.sd_id128_randomize(&v)
	return goID128(&v), int32(r)
}

// ID128GetMachine calls sd_id128_get_machine.
func ID128GetMachine() (ID128, int32) {
	var v C.sd_id128_t
	r := C.sd_id128_get_machine(&v)
	return goID128(&v), int32(r)
}

// ID128GetBoot calls sd_id128_get_boot.
func ID128GetBoot() (ID128, int32) {
	var v C.sd_id128_t
	r := C.sd_id128_get_boot(&v)
	return goID128(&v), int32(r)
}

// ID128GetMachineAppSpecific calls sd_id128_get_machine_app_specific.
func ID128GetMachineAppSpecific(app ID128) (ID128, int32) {
	var v C.sd_id128_t
	r := C.sd_id128_get_machine_app_specific(id128(app), &v)
	return goID128(&v), int32(r)
}

// ID128GetBootAppSpecific calls sd_id128_get_boot_app_specific.
func ID128GetBootAppSpecific(app ID128) (ID128, int32) {
	var v C.sd_id128_t
	r := C.sd_id128_get_boot_app_specific(id128(app), &v)
	return goID128(&v), int32(r)
}
