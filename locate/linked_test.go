package locate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLdd(t *testing.T) {
	t.Parallel()

	t.Run("glibc", func(t *testing.T) {
		t.Parallel()
		deps, err := ParseLdd(strings.NewReader(`	linux-vdso.so.1 (0x00007ffc0f5e6000)
	libsystemd.so.0 => /usr/lib/libsystemd.so.0 (0x00007f3b6d3f2000)
	libc.so.6 => /usr/lib/libc.so.6 (0x00007f3b6d200000)
	libcap.so.2 => not found
	/lib64/ld-linux-x86-64.so.2 => /usr/lib64/ld-linux-x86-64.so.2 (0x00007f3b6d5e1000)
`))
		require.NoError(t, err)
		assert.Equal(t, []Dependency{
			{"linux-vdso.so.1", "", 0x7ffc0f5e6000},
			{"libsystemd.so.0", "/usr/lib/libsystemd.so.0", 0x7f3b6d3f2000},
			{"libc.so.6", "/usr/lib/libc.so.6", 0x7f3b6d200000},
			{"libcap.so.2", "", 0},
			{"/lib64/ld-linux-x86-64.so.2", "/usr/lib64/ld-linux-x86-64.so.2", 0x7f3b6d5e1000},
		}, deps)

		d, err := findDependency(deps, "systemd")
		require.NoError(t, err)
		assert.Equal(t, "/usr/lib/libsystemd.so.0", d.Pathname())

		_, err = findDependency(deps, "systemd-shared")
		assert.ErrorIs(t, err, ErrNotLinked)
		assert.Empty(t, deps[3].Pathname())
	})

	t.Run("musl", func(t *testing.T) {
		t.Parallel()
		deps, err := ParseLdd(strings.NewReader(`
	/lib/ld-musl-x86_64.so.1 (0x7ff71c0a4000)
	libsystemd.so.0 => /usr/lib/libsystemd.so.0 (0x7ff71bfd2000)
	libc.musl-x86_64.so.1 => /lib/ld-musl-x86_64.so.1 (0x7ff71c0a4000)
`))
		require.NoError(t, err)
		require.Len(t, deps, 3)
		assert.Equal(t, "/lib/ld-musl-x86_64.so.1", deps[0].Pathname())
	})

	t.Run("old vdso", func(t *testing.T) {
		t.Parallel()
		deps, err := ParseLdd(strings.NewReader("\tlinux-vdso.so.1 =>  (0x00007ffd4f3e2000)\n"))
		require.NoError(t, err)
		assert.Equal(t, []Dependency{{"linux-vdso.so.1", "", 0x7ffd4f3e2000}}, deps)
	})

	testCases := []struct {
		name, out string
		wantErr   error
	}{
		{"relative path", "libsystemd.so.0 => usr/lib/libsystemd.so.0 (0x7ff71bfd2000)",
			LddLineError("libsystemd.so.0 => usr/lib/libsystemd.so.0 (0x7ff71bfd2000)")},
		{"segments", "meow libsystemd.so.0 => /usr/lib/libsystemd.so.0 (0x7ff71bfd2000)",
			LddLineError("meow libsystemd.so.0 => /usr/lib/libsystemd.so.0 (0x7ff71bfd2000)")},
		{"separator", "libsystemd.so.0 = /usr/lib/libsystemd.so.0 (0x7ff71bfd2000)",
			LddLineError("libsystemd.so.0 = /usr/lib/libsystemd.so.0 (0x7ff71bfd2000)")},
		{"location", "libsystemd.so.0 => /usr/lib/libsystemd.so.0 7ff71bfd2000", ErrBadLocation},
		{"location hex", "libsystemd.so.0 => /usr/lib/libsystemd.so.0 (0xzz)", ErrBadLocation},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLdd(strings.NewReader(tc.out))
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
