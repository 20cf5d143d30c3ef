package systemd_test

import (
	"errors"
	"math"
	"os"
	"reflect"
	"syscall"
	"testing"

	"git.gensokyo.uk/security/systemd"
)

func TestError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		op   string
		r    int32

		want    int
		wantErr error
		msg     string
		text    string
	}{
		{"zero", "sd_journal_next", 0, 0, nil, "", ""},
		{"positive", "sd_listen_fds", 3, 3, nil, "", ""},
		{"enoent", "sd_journal_open", -2, 0,
			&systemd.Error{Op: "sd_journal_open", Errno: syscall.ENOENT},
			"cannot sd_journal_open: no such file or directory",
			"sd_journal_open: ENOENT (no such file or directory)"},
		{"eaddrnotavail", "sd_journal_get_cursor", -int32(syscall.EADDRNOTAVAIL), 0,
			&systemd.Error{Op: "sd_journal_get_cursor", Errno: syscall.EADDRNOTAVAIL},
			"cannot sd_journal_get_cursor: cannot assign requested address",
			"sd_journal_get_cursor: EADDRNOTAVAIL (cannot assign requested address)"},
		{"unknown", "sd_bus_call", -4095, 0,
			&systemd.Error{Op: "sd_bus_call", Errno: 4095},
			"cannot sd_bus_call: errno 4095",
			"sd_bus_call: errno 4095"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := systemd.Result(tc.op, tc.r)
			if got != tc.want {
				t.Errorf("Result: %d, want %d", got, tc.want)
			}
			if !reflect.DeepEqual(err, tc.wantErr) {
				t.Fatalf("Result: error = %#v, want %#v", err, tc.wantErr)
			}
			if err == nil {
				return
			}

			var e *systemd.Error
			if !errors.As(err, &e) {
				t.Fatalf("Result: error = %#v", err)
			}
			if code := e.Code(); code != int(tc.r) {
				t.Errorf("Code: %d, want %d", code, tc.r)
			}
			if !errors.Is(err, syscall.Errno(-tc.r)) {
				t.Errorf("Is: %v is not %v", err, syscall.Errno(-tc.r))
			}
			if msg := e.Message(); msg != tc.msg {
				t.Errorf("Message: %q, want %q", msg, tc.msg)
			}
			if text := e.Error(); text != tc.text {
				t.Errorf("Error: %q, want %q", text, tc.text)
			}
		})
	}
}

func TestErrorRoundTrip(t *testing.T) {
	t.Parallel()

	for _, code := range []int{-1, -2, -22, -110, -4095, math.MinInt32} {
		var e *systemd.Error
		if err := systemd.NewError("sd_bus_open", code); !errors.As(err, &e) {
			t.Fatalf("NewError: %#v", err)
		} else if e.Code() != code {
			t.Errorf("Code: %d, want %d", e.Code(), code)
		}
	}
	if err := systemd.NewError("sd_bus_open", 0); err != nil {
		t.Errorf("NewError: %v", err)
	}
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := systemd.Check("sd_notify", -int32(syscall.EPERM))
	if !errors.Is(err, &systemd.Error{Op: "sd_notify", Errno: syscall.EPERM}) {
		t.Errorf("Is: %v", err)
	}
	if errors.Is(err, &systemd.Error{Op: "sd_pid_notify", Errno: syscall.EPERM}) {
		t.Errorf("Is: unexpected match on op")
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("Is: %v is not %v", err, os.ErrPermission)
	}
}

func TestBool(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		r       int32
		want    bool
		wantErr bool
	}{
		{0, false, false},
		{1, true, false},
		{-int32(syscall.EINVAL), false, true},
	}
	for _, tc := range testCases {
		got, err := systemd.Bool("sd_booted", tc.r)
		if got != tc.want || (err != nil) != tc.wantErr {
			t.Errorf("Bool(%d): %v, %v", tc.r, got, err)
		}
	}
}
