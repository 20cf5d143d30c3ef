package id128

import (
	"encoding/json"
	"errors"
	"reflect"
	"syscall"
	"testing"

	"github.com/google/uuid"

	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/internal/sd"
	"git.gensokyo.uk/security/systemd/internal/stub"
)

type out struct {
	id sd.ID128
	r  int32
}

type kstub struct{ *stub.Stub }

func (k kstub) fromString(s string) (sd.ID128, int32) {
	k.Helper()
	expect := k.Expects("sd_id128_from_string")
	stub.CheckArg(k.Stub, "s", s, 0)
	o := expect.Ret.(out)
	return o.id, o.r
}

func (k kstub) ret(name string) (sd.ID128, int32) {
	k.Helper()
	o := k.Expects(name).Ret.(out)
	return o.id, o.r
}

func (k kstub) randomize() (sd.ID128, int32)  { return k.ret("sd_id128_randomize") }
func (k kstub) getMachine() (sd.ID128, int32) { return k.ret("sd_id128_get_machine") }
func (k kstub) getBoot() (sd.ID128, int32)    { return k.ret("sd_id128_get_boot") }
func (k kstub) appSpecific(name string, app sd.ID128) (sd.ID128, int32) {
	k.Helper()
	expect := k.Expects(name)
	stub.CheckArg(k.Stub, "app", app, 0)
	o := expect.Ret.(out)
	return o.id, o.r
}
func (k kstub) getMachineAppSpecific(app sd.ID128) (sd.ID128, int32) {
	k.Helper()
	return k.appSpecific("sd_id128_get_machine_app_specific", app)
}
func (k kstub) getBootAppSpecific(app sd.ID128) (sd.ID128, int32) {
	k.Helper()
	return k.appSpecific("sd_id128_get_boot_app_specific", app)
}

var sample = ID{0xe9, 0x03, 0x4c, 0x2a, 0x8b, 0x8c, 0x4b, 0x5e, 0x9e, 0x2c, 0x3e, 0x61, 0x29, 0x6f, 0x16, 0x0d}

func TestString(t *testing.T) {
	t.Parallel()

	if got, want := sample.String(), "e9034c2a8b8c4b5e9e2c3e61296f160d"; got != want {
		t.Errorf("String: %q, want %q", got, want)
	}
	if got, want := sample.UUID().String(), "e9034c2a-8b8c-4b5e-9e2c-3e61296f160d"; got != want {
		t.Errorf("UUID: %q, want %q", got, want)
	}
	if FromUUID(uuid.UUID(sample)) != sample {
		t.Errorf("FromUUID: unexpected value")
	}
	if sample.IsZero() || !(ID{}).IsZero() {
		t.Errorf("IsZero: unexpected result")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		s       string
		calls   []stub.Call
		want    ID
		wantErr error
	}{
		{"hex", "e9034c2a8b8c4b5e9e2c3e61296f160d", []stub.Call{
			{"sd_id128_from_string", stub.ExpectArgs{"e9034c2a8b8c4b5e9e2c3e61296f160d"}, out{sd.ID128(sample), 0}, nil},
		}, sample, nil},
		{"invalid", "meow", []stub.Call{
			{"sd_id128_from_string", stub.ExpectArgs{"meow"}, out{sd.ID128{}, -int32(syscall.EINVAL)}, nil},
		}, ID{}, &systemd.Error{Op: "sd_id128_from_string", Errno: syscall.EINVAL}},
		{"nul", "e903\x00", nil, ID{}, &systemd.ConversionError{Op: "sd_id128_from_string", Err: systemd.ErrNUL}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			defer stub.HandleExit(t)
			k := kstub{stub.New(t, tc.calls...)}

			got, err := parse(k, tc.s)
			if got != tc.want {
				t.Errorf("parse: %v, want %v", got, tc.want)
			}
			if !reflect.DeepEqual(err, tc.wantErr) {
				t.Errorf("parse: error = %v, want %v", err, tc.wantErr)
			}
			k.Finish()
		})
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	app := ID{0xde, 0xad, 0xbe, 0xef}
	testCases := []struct {
		name    string
		f       func(k native) (ID, error)
		call    stub.Call
		want    ID
		wantErr error
	}{
		{"random", random,
			stub.Call{"sd_id128_randomize", stub.ExpectArgs{}, out{sd.ID128(sample), 0}, nil}, sample, nil},
		{"machine", machine,
			stub.Call{"sd_id128_get_machine", stub.ExpectArgs{}, out{sd.ID128(sample), 0}, nil}, sample, nil},
		{"machine unset", machine,
			stub.Call{"sd_id128_get_machine", stub.ExpectArgs{}, out{sd.ID128{}, -int32(syscall.ENOMEDIUM)}, nil},
			ID{}, &systemd.Error{Op: "sd_id128_get_machine", Errno: syscall.ENOMEDIUM}},
		{"boot", boot,
			stub.Call{"sd_id128_get_boot", stub.ExpectArgs{}, out{sd.ID128(sample), 0}, nil}, sample, nil},
		{"machine app", func(k native) (ID, error) { return machineAppSpecific(k, app) },
			stub.Call{"sd_id128_get_machine_app_specific", stub.ExpectArgs{sd.ID128(app)}, out{sd.ID128(sample), 0}, nil}, sample, nil},
		{"boot app", func(k native) (ID, error) { return bootAppSpecific(k, app) },
			stub.Call{"sd_id128_get_boot_app_specific", stub.ExpectArgs{sd.ID128(app)}, out{sd.ID128{}, -int32(syscall.ENOSYS)}, nil},
			ID{}, &systemd.Error{Op: "sd_id128_get_boot_app_specific", Errno: syscall.ENOSYS}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			defer stub.HandleExit(t)
			k := kstub{stub.New(t, tc.call)}

			got, err := tc.f(k)
			if got != tc.want {
				t.Errorf("%s: %v, want %v", tc.name, got, tc.want)
			}
			if !reflect.DeepEqual(err, tc.wantErr) {
				t.Errorf("%s: error = %v, want %v", tc.name, err, tc.wantErr)
			}
			k.Finish()
		})
	}
}

func TestResult(t *testing.T) {
	t.Parallel()

	if id, err := result("sd_id128_get_machine", sd.ID128(sample), 0); err != nil || id != sample {
		t.Errorf("result: %v, %v", id, err)
	}
	if _, err := result("sd_id128_get_machine", sd.ID128{}, -int32(syscall.ENOMEDIUM)); !errors.Is(err, syscall.ENOMEDIUM) {
		t.Errorf("result: error = %v", err)
	}
}

func TestMarshalText(t *testing.T) {
	t.Parallel()

	v, err := json.Marshal(struct{ Boot ID }{sample})
	if err != nil {
		t.Fatalf("Marshal: error = %v", err)
	}
	if want := `{"Boot":"e9034c2a8b8c4b5e9e2c3e61296f160d"}`; string(v) != want {
		t.Errorf("Marshal: %s, want %s", v, want)
	}
}
