// Package sd declares the libsystemd functions used by this module.
//
// Every function here corresponds to exactly one C function and returns its
// result unchanged. Output parameters are returned as additional values and
// are only meaningful when the result is not negative. Handles and strings
// are opaque pointers owned by libsystemd; this package never frees anything
// on behalf of the caller.
//
// Link flags are held in zlink.go, which is written by cmd/sdlocate.
package sd

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

//go:generate go run ../../cmd/sdlocate generate -o zlink.go

// Str is a NUL-terminated C string.
type Str unsafe.Pointer

// Bytes returns a view of the bytes of s, excluding the terminating NUL.
// The view aliases the memory of s and is valid for as long as s is.
// A nil s returns nil.
func (s Str) Bytes() []byte {
	if s == nil {
		return nil
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(s), n)) != 0 {
		n++
	}
	return unsafe.Slice((*byte)(s), n)
}

// StrV is a C array of C strings.
type StrV unsafe.Pointer

// Slice returns a view of the first n elements of v.
func (v StrV) Slice(n int) []Str {
	if v == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*Str)(v), n)
}

// Free passes p to free(3).
func Free(p unsafe.Pointer) { C.free(p) }

// ID128 has the memory layout of sd_id128_t.
type ID128 = [16]byte

// cstr returns a C string for s, or nil for an empty s if nullable is true.
// The caller must free the result.
func cstr(s string, nullable bool) *C.char {
	if nullable && s == "" {
		return nil
	}
	return C.CString(s)
}

// freeStr frees a string returned by cstr.
func freeStr(p *C.char) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

// view returns a view of native memory of length n.
func view(p unsafe.Pointer, n C.size_t) []byte {
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), int(n))
}
