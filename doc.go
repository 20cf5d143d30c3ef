// Package systemd holds the error taxonomy and data conversion shared by the
// libsystemd bindings in its subpackages.
//
// Every wrapped native call either succeeds or returns an [*Error] carrying
// the name of the libsystemd function and the errno it returned. Data handed
// back by a successful native call that cannot be represented in Go is
// reported as a [*ConversionError] instead.
//
// The subsystem packages [git.gensokyo.uk/security/systemd/journal],
// [git.gensokyo.uk/security/systemd/bus] and
// [git.gensokyo.uk/security/systemd/daemon] are gated by build tags written
// by cmd/sdlocate; a subsystem whose capability is missing from the located
// library is not compiled.
package systemd
