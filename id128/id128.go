// Package id128 provides the 128-bit identifiers used by systemd.
package id128

import (
	"encoding/hex"

	"github.com/google/uuid"

	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/internal/sd"
)

// ID is a 128-bit identifier, formatted as 32 lowercase hexadecimal characters.
type ID [16]byte

// String returns the 32 character hexadecimal representation of id.
func (id ID) String() string { return hex.EncodeToString(id[:]) }

// IsZero returns whether id is SD_ID128_NULL.
func (id ID) IsZero() bool { return id == ID{} }

// UUID returns id as a [uuid.UUID].
func (id ID) UUID() uuid.UUID { return uuid.UUID(id) }

// FromUUID returns the [ID] holding the bytes of u.
func FromUUID(u uuid.UUID) ID { return ID(u) }

func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText accepts both the 32 character and the UUID representation.
func (id *ID) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// native provides methods for every libsystemd function used by this package.
type native interface {
	fromString(s string) (sd.ID128, int32)
	randomize() (sd.ID128, int32)
	getMachine() (sd.ID128, int32)
	getBoot() (sd.ID128, int32)
	getMachineAppSpecific(app sd.ID128) (sd.ID128, int32)
	getBootAppSpecific(app sd.ID128) (sd.ID128, int32)
}

// direct implements [native] by calling libsystemd.
type direct struct{}

func (direct) fromString(s string) (sd.ID128, int32) { return sd.ID128FromString(s) }
func (direct) randomize() (sd.ID128, int32)          { return sd.ID128Randomize() }
func (direct) getMachine() (sd.ID128, int32)         { return sd.ID128GetMachine() }
func (direct) getBoot() (sd.ID128, int32)            { return sd.ID128GetBoot() }
func (direct) getMachineAppSpecific(app sd.ID128) (sd.ID128, int32) {
	return sd.ID128GetMachineAppSpecific(app)
}
func (direct) getBootAppSpecific(app sd.ID128) (sd.ID128, int32) {
	return sd.ID128GetBootAppSpecific(app)
}

func result(op string, id sd.ID128, r int32) (ID, error) {
	if err := systemd.Check(op, r); err != nil {
		return ID{}, err
	}
	return ID(id), nil
}

// Parse parses the 32 character or the UUID representation of an [ID].
func Parse(s string) (ID, error) { return parse(direct{}, s) }

func parse(k native, s string) (ID, error) {
	const op = "sd_id128_from_string"
	if err := systemd.CheckString(op, s); err != nil {
		return ID{}, err
	}
	id, r := k.fromString(s)
	return result(op, id, r)
}

// Random returns a new random [ID].
func Random() (ID, error) { return random(direct{}) }

func random(k native) (ID, error) {
	id, r := k.randomize()
	return result("sd_id128_randomize", id, r)
}

// Machine returns the machine ID of the local host.
func Machine() (ID, error) { return machine(direct{}) }

func machine(k native) (ID, error) {
	id, r := k.getMachine()
	return result("sd_id128_get_machine", id, r)
}

// Boot returns the ID of the current boot.
func Boot() (ID, error) { return boot(direct{}) }

func boot(k native) (ID, error) {
	id, r := k.getBoot()
	return result("sd_id128_get_boot", id, r)
}

// MachineAppSpecific returns the machine ID hashed with app.
func MachineAppSpecific(app ID) (ID, error) { return machineAppSpecific(direct{}, app) }

func machineAppSpecific(k native, app ID) (ID, error) {
	id, r := k.getMachineAppSpecific(sd.ID128(app))
	return result("sd_id128_get_machine_app_specific", id, r)
}

// BootAppSpecific returns the boot ID hashed with app.
func BootAppSpecific(app ID) (ID, error) { return bootAppSpecific(direct{}, app) }

func bootAppSpecific(k native, app ID) (ID, error) {
	id, r := k.getBootAppSpecific(sd.ID128(app))
	return result("sd_id128_get_boot_app_specific", id, r)
}
